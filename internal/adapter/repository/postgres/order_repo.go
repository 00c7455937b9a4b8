package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/domain"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/usecase"
)

// OrderRepository implements usecase.OrderRepository.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const orderColumns = `id, buyer_id, seller_id, amount, kind, status, settled_transaction_id, created_at, updated_at`

// Create records a settleable order or ride.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		order.ID, order.BuyerID, order.SellerID, decimalToNumeric(order.Amount),
		string(order.Kind), string(order.Status), nullIfEmpty(order.SettledTransactionID),
		timeToPgTimestamptz(order.CreatedAt), timeToPgTimestamptz(order.UpdatedAt),
	)
	return err
}

// GetByID retrieves an order.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

// GetByIDForUpdate retrieves an order with a FOR UPDATE lock; the lock makes
// the settled-state check and the settlement atomic.
func (r *OrderRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Order, error) {
	row := querier(tx, r.pool).QueryRow(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
	return scanOrder(row)
}

// MarkSettled flips the order to SETTLED inside the settlement transaction.
func (r *OrderRepository) MarkSettled(ctx context.Context, tx usecase.Transaction, id, settledTransactionID string, updatedAt time.Time) error {
	_, err := querier(tx, r.pool).Exec(ctx, `
		UPDATE orders SET status = $2, settled_transaction_id = $3, updated_at = $4
		WHERE id = $1 AND status = $5`,
		id, string(domain.OrderSettled), settledTransactionID,
		timeToPgTimestamptz(updatedAt), string(domain.OrderCompleted))
	return err
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o          domain.Order
		amount     pgtype.Numeric
		kind       string
		status     string
		settledTxn *string
		createdAt  pgtype.Timestamptz
		updatedAt  pgtype.Timestamptz
	)

	err := row.Scan(&o.ID, &o.BuyerID, &o.SellerID, &amount, &kind, &status, &settledTxn, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}

	o.Amount = numericToDecimal(amount)
	o.Kind = domain.OrderKind(kind)
	o.Status = domain.OrderStatus(status)
	o.CreatedAt = createdAt.Time
	o.UpdatedAt = updatedAt.Time
	if settledTxn != nil {
		o.SettledTransactionID = *settledTxn
	}
	return &o, nil
}
