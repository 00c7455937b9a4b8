package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderKind selects the ledger entry types used at settlement.
type OrderKind string

const (
	KindRide  OrderKind = "ride"
	KindOrder OrderKind = "order"
)

// OrderStatus is the settlement state of a ride or marketplace order.
// SETTLED is terminal; settling an already-SETTLED order is a no-op.
type OrderStatus string

const (
	OrderCompleted OrderStatus = "COMPLETED"
	OrderSettled   OrderStatus = "SETTLED"
)

// Order is the side-effect record updated atomically with the settlement
// money movement. BuyerID pays the full amount; SellerID receives the
// amount minus the platform fee.
type Order struct {
	ID                   string
	BuyerID              string
	SellerID             string
	Amount               decimal.Decimal
	Kind                 OrderKind
	Status               OrderStatus
	SettledTransactionID string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// EntryTypes returns the (buyer, seller) ledger entry types for the order.
func (o *Order) EntryTypes() (TransactionType, TransactionType) {
	if o.Kind == KindRide {
		return TxRidePayment, TxRideEarn
	}
	return TxWithdrawal, TxDeposit
}
