package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OwnerType distinguishes personal wallets from group wallets.
type OwnerType string

const (
	OwnerUser  OwnerType = "user"
	OwnerGroup OwnerType = "group"
)

// Wallet holds the balance for a single owner. One wallet per owner;
// the balance never goes negative outside an in-flight transaction.
type Wallet struct {
	ID         string
	OwnerID    string
	OwnerType  OwnerType
	Currency   string
	Balance    decimal.Decimal
	Visibility map[string]any // group wallets only, passed through to clients unchanged
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ValidateDebit checks the wallet can be debited by amount.
func (w *Wallet) ValidateDebit(amount decimal.Decimal) error {
	if w.Balance.Sub(amount).IsNegative() {
		return ErrInsufficientBalance
	}
	return nil
}

// ApplyDebit returns the balance after a debit.
func (w *Wallet) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return w.Balance.Sub(amount)
}

// ApplyCredit returns the balance after a credit.
func (w *Wallet) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return w.Balance.Add(amount)
}

// NewWallet returns a zero-balance wallet for an owner.
func NewWallet(id, ownerID string, ownerType OwnerType, currency string, now time.Time) *Wallet {
	return &Wallet{
		ID:        id,
		OwnerID:   ownerID,
		OwnerType: ownerType,
		Currency:  currency,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
