package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/domain"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/usecase"
)

// PaymentRepository implements usecase.PaymentRepository. Pending payments
// are never deleted; they are the gateway audit trail.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

const paymentColumns = `id, owner_id, amount, currency, status, provider,
	gateway_payment_id, payment_method, payload, created_at, completed_at`

// Create stages a PENDING payment before the user is handed to the gateway.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.PendingPayment) error {
	payload, err := json.Marshal(payment.Payload)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO pending_payments (`+paymentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		payment.ID, payment.OwnerID, decimalToNumeric(payment.Amount), payment.Currency,
		string(payment.Status), payment.Provider,
		nullIfEmpty(payment.GatewayPaymentID), nullIfEmpty(payment.PaymentMethod),
		payload, timeToPgTimestamptz(payment.CreatedAt), nil,
	)
	return err
}

// GetByID retrieves a payment by its reference id.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.PendingPayment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM pending_payments WHERE id = $1`, id)
	return scanPayment(row)
}

// GetByIDForUpdate retrieves a payment with a FOR UPDATE lock. This lock is
// the serialization point between the webhook and verify paths.
func (r *PaymentRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.PendingPayment, error) {
	row := querier(tx, r.pool).QueryRow(ctx, `
		SELECT `+paymentColumns+` FROM pending_payments WHERE id = $1 FOR UPDATE`, id)
	return scanPayment(row)
}

// UpdateGatewayRef records the gateway-side payment id without touching
// status. Only fills an empty column; a known id never changes.
func (r *PaymentRepository) UpdateGatewayRef(ctx context.Context, id, gatewayPaymentID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE pending_payments SET gateway_payment_id = $2
		WHERE id = $1 AND gateway_payment_id IS NULL`,
		id, gatewayPaymentID)
	return err
}

// MarkCompleted performs the PENDING -> COMPLETED transition. The guard in
// the WHERE clause makes re-marking a no-op at the store level too.
func (r *PaymentRepository) MarkCompleted(ctx context.Context, tx usecase.Transaction, id, gatewayPaymentID, paymentMethod string, completedAt time.Time) error {
	_, err := querier(tx, r.pool).Exec(ctx, `
		UPDATE pending_payments
		SET status = $2,
		    gateway_payment_id = COALESCE(gateway_payment_id, $3),
		    payment_method = COALESCE($4, payment_method),
		    completed_at = $5
		WHERE id = $1 AND status = $6`,
		id, string(domain.PaymentCompleted), nullIfEmpty(gatewayPaymentID),
		nullIfEmpty(paymentMethod), timeToPgTimestamptz(completedAt),
		string(domain.PaymentPending))
	return err
}

func scanPayment(row pgx.Row) (*domain.PendingPayment, error) {
	var (
		p                domain.PendingPayment
		amount           pgtype.Numeric
		status           string
		gatewayPaymentID *string
		paymentMethod    *string
		payload          []byte
		createdAt        pgtype.Timestamptz
		completedAt      pgtype.Timestamptz
	)

	err := row.Scan(&p.ID, &p.OwnerID, &amount, &p.Currency, &status, &p.Provider,
		&gatewayPaymentID, &paymentMethod, &payload, &createdAt, &completedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}

	p.Amount = numericToDecimal(amount)
	p.Status = domain.PaymentStatus(status)
	p.CreatedAt = createdAt.Time
	if gatewayPaymentID != nil {
		p.GatewayPaymentID = *gatewayPaymentID
	}
	if paymentMethod != nil {
		p.PaymentMethod = *paymentMethod
	}
	if completedAt.Valid {
		t := completedAt.Time
		p.CompletedAt = &t
	}
	if payload != nil {
		_ = json.Unmarshal(payload, &p.Payload)
	}
	return &p, nil
}
