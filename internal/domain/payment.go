package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the pending-payment state machine. COMPLETED is
// absorbing: the PENDING -> COMPLETED transition happens exactly once and
// is the sole trigger for crediting the wallet.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
)

// PendingPayment stages a top-up before the user is handed to the external
// gateway. Its ID doubles as the gateway-facing payment reference
// (m_payment_id) and is the only trustworthy de-duplication key for
// crediting. Rows are never deleted; they are the audit trail.
type PendingPayment struct {
	ID               string
	OwnerID          string
	Amount           decimal.Decimal
	Currency         string
	Status           PaymentStatus
	Provider         string
	GatewayPaymentID string // populated by the first gateway callback
	PaymentMethod    string
	Payload          map[string]string // echoed request fields kept for audit
	CreatedAt        time.Time
	CompletedAt      *time.Time
}

// Completed reports whether the payment has already been credited.
func (p *PendingPayment) Completed() bool {
	return p.Status == PaymentCompleted
}
