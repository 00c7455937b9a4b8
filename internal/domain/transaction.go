package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType enumerates every kind of ledger movement.
type TransactionType string

const (
	TxTopUp       TransactionType = "TOP_UP"
	TxTransferIn  TransactionType = "TRANSFER_IN"
	TxTransferOut TransactionType = "TRANSFER_OUT"
	TxRidePayment TransactionType = "RIDE_PAYMENT"
	TxRideEarn    TransactionType = "RIDE_EARN"
	TxAdminAdjust TransactionType = "ADMIN_ADJUST"
	TxDeposit     TransactionType = "DEPOSIT"
	TxWithdrawal  TransactionType = "WITHDRAWAL"
)

// ParseTransactionType rejects unknown type strings instead of defaulting.
func ParseTransactionType(s string) (TransactionType, error) {
	switch t := TransactionType(s); t {
	case TxTopUp, TxTransferIn, TxTransferOut, TxRidePayment,
		TxRideEarn, TxAdminAdjust, TxDeposit, TxWithdrawal:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown transaction type %q", ErrInvalidArgument, s)
}

// TransactionStatus is the lifecycle state of a log entry.
type TransactionStatus string

const (
	TxPending TransactionStatus = "PENDING"
	TxSuccess TransactionStatus = "SUCCESS"
	TxFailed  TransactionStatus = "FAILED"
)

// Direction says which way an entry moves the wallet balance. Amount is
// always positive; Direction carries the sign.
type Direction string

const (
	Credit Direction = "CREDIT"
	Debit  Direction = "DEBIT"
)

// Transaction is one immutable ledger log entry. Written once inside the
// same store transaction that moves the balance; never mutated after.
type Transaction struct {
	ID               string
	WalletID         string
	Type             TransactionType
	Direction        Direction
	Amount           decimal.Decimal
	Currency         string
	Status           TransactionStatus
	CounterpartyID   string
	GatewayPaymentID string
	PaymentMethod    string
	PlatformFee      decimal.Decimal
	Note             string
	CreatedAt        time.Time
}

// Signed returns the balance effect of the entry.
func (t *Transaction) Signed() decimal.Decimal {
	if t.Direction == Debit {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Validate enforces the write-once entry invariants.
func (t *Transaction) Validate() error {
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if t.Direction != Credit && t.Direction != Debit {
		return fmt.Errorf("%w: unknown direction %q", ErrInvalidArgument, t.Direction)
	}
	if _, err := ParseTransactionType(string(t.Type)); err != nil {
		return err
	}
	return nil
}
