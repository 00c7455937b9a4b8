package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/domain"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository over the
// append-only transactions table.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const txnColumns = `id, wallet_id, type, direction, amount, currency, status,
	counterparty_id, gateway_payment_id, payment_method, platform_fee, note, created_at`

// Create appends one log entry. Entries are write-once; there is no update.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Transaction) error {
	var fee pgtype.Numeric
	if !entry.PlatformFee.IsZero() {
		fee = decimalToNumeric(entry.PlatformFee)
	}

	_, err := querier(tx, r.pool).Exec(ctx, `
		INSERT INTO transactions (`+txnColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		entry.ID, entry.WalletID, string(entry.Type), string(entry.Direction),
		decimalToNumeric(entry.Amount), entry.Currency, string(entry.Status),
		nullIfEmpty(entry.CounterpartyID), nullIfEmpty(entry.GatewayPaymentID),
		nullIfEmpty(entry.PaymentMethod), fee, nullIfEmpty(entry.Note),
		timeToPgTimestamptz(entry.CreatedAt),
	)
	return err
}

// GetByID retrieves one entry.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+txnColumns+` FROM transactions WHERE id = $1`, id)
	entry, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return entry, nil
}

// ListByWallet pages entries most-recent-first. ULID ids are time-ordered,
// so descending id order is descending creation order and the cursor is a
// plain id comparison.
func (r *TransactionRepository) ListByWallet(ctx context.Context, walletID string, limit int, cursor string) ([]*domain.Transaction, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if cursor == "" {
		rows, err = r.pool.Query(ctx, `
			SELECT `+txnColumns+` FROM transactions
			WHERE wallet_id = $1
			ORDER BY id DESC
			LIMIT $2`, walletID, int32(limit))
	} else {
		rows, err = r.pool.Query(ctx, `
			SELECT `+txnColumns+` FROM transactions
			WHERE wallet_id = $1 AND id < $2
			ORDER BY id DESC
			LIMIT $3`, walletID, cursor, int32(limit))
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*domain.Transaction, 0, limit)
	for rows.Next() {
		entry, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// SumByWallet returns the signed sum of SUCCESS entries for one wallet.
func (r *TransactionRepository) SumByWallet(ctx context.Context, walletID string) (decimal.Decimal, error) {
	var sum pgtype.Numeric
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE WHEN direction = 'DEBIT' THEN -amount ELSE amount END), 0)
		FROM transactions
		WHERE wallet_id = $1 AND status = 'SUCCESS'`, walletID).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return numericToDecimal(sum), nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		t                domain.Transaction
		txType           string
		direction        string
		amount           pgtype.Numeric
		status           string
		counterpartyID   *string
		gatewayPaymentID *string
		paymentMethod    *string
		fee              pgtype.Numeric
		note             *string
		createdAt        pgtype.Timestamptz
	)

	err := row.Scan(&t.ID, &t.WalletID, &txType, &direction, &amount, &t.Currency, &status,
		&counterpartyID, &gatewayPaymentID, &paymentMethod, &fee, &note, &createdAt)
	if err != nil {
		return nil, err
	}

	t.Type = domain.TransactionType(txType)
	t.Direction = domain.Direction(direction)
	t.Amount = numericToDecimal(amount)
	t.Status = domain.TransactionStatus(status)
	t.PlatformFee = numericToDecimal(fee)
	t.CreatedAt = createdAt.Time
	if counterpartyID != nil {
		t.CounterpartyID = *counterpartyID
	}
	if gatewayPaymentID != nil {
		t.GatewayPaymentID = *gatewayPaymentID
	}
	if paymentMethod != nil {
		t.PaymentMethod = *paymentMethod
	}
	if note != nil {
		t.Note = *note
	}
	return &t, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
