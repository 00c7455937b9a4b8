package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/domain"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/usecase"
)

// WalletRepository implements usecase.WalletRepository.
type WalletRepository struct {
	pool *pgxpool.Pool
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(pool *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{pool: pool}
}

const walletColumns = `id, owner_id, owner_type, currency, balance, visibility, created_at, updated_at`

// Create creates a new wallet outside a transaction.
func (r *WalletRepository) Create(ctx context.Context, wallet *domain.Wallet) error {
	return r.create(ctx, r.pool, wallet)
}

// CreateTx creates a new wallet inside a transaction.
func (r *WalletRepository) CreateTx(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	return r.create(ctx, querier(tx, r.pool), wallet)
}

func (r *WalletRepository) create(ctx context.Context, q queryRunner, wallet *domain.Wallet) error {
	var visibility []byte
	if wallet.Visibility != nil {
		var err error
		visibility, err = json.Marshal(wallet.Visibility)
		if err != nil {
			return err
		}
	}

	_, err := q.Exec(ctx, `
		INSERT INTO wallets (`+walletColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		wallet.ID, wallet.OwnerID, string(wallet.OwnerType), wallet.Currency,
		decimalToNumeric(wallet.Balance), visibility,
		timeToPgTimestamptz(wallet.CreatedAt), timeToPgTimestamptz(wallet.UpdatedAt),
	)
	return err
}

// GetByOwner retrieves a wallet by owner id.
func (r *WalletRepository) GetByOwner(ctx context.Context, ownerID string) (*domain.Wallet, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+walletColumns+` FROM wallets WHERE owner_id = $1`, ownerID)
	return scanWallet(row)
}

// GetByOwnerForUpdate retrieves a wallet with a FOR UPDATE lock.
func (r *WalletRepository) GetByOwnerForUpdate(ctx context.Context, tx usecase.Transaction, ownerID string) (*domain.Wallet, error) {
	row := querier(tx, r.pool).QueryRow(ctx, `
		SELECT `+walletColumns+` FROM wallets WHERE owner_id = $1 FOR UPDATE`, ownerID)
	return scanWallet(row)
}

// GetByOwnersForUpdate locks multiple wallets. Callers pass owner ids in
// sorted order; the ORDER BY keeps the lock acquisition order stable.
func (r *WalletRepository) GetByOwnersForUpdate(ctx context.Context, tx usecase.Transaction, ownerIDs []string) ([]*domain.Wallet, error) {
	rows, err := querier(tx, r.pool).Query(ctx, `
		SELECT `+walletColumns+` FROM wallets
		WHERE owner_id = ANY($1)
		ORDER BY owner_id
		FOR UPDATE`, ownerIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wallets []*domain.Wallet
	for rows.Next() {
		wallet, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, wallet)
	}
	return wallets, rows.Err()
}

// UpdateBalance updates a wallet balance.
func (r *WalletRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	_, err := querier(tx, r.pool).Exec(ctx, `
		UPDATE wallets SET balance = $2, updated_at = $3 WHERE id = $1`,
		id, decimalToNumeric(balance), timeToPgTimestamptz(updatedAt))
	return err
}

// List lists wallets with pagination.
func (r *WalletRepository) List(ctx context.Context, limit, offset int) ([]*domain.Wallet, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+walletColumns+` FROM wallets ORDER BY id LIMIT $1 OFFSET $2`,
		int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	wallets := make([]*domain.Wallet, 0, limit)
	for rows.Next() {
		wallet, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, wallet)
	}
	return wallets, rows.Err()
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var (
		w          domain.Wallet
		ownerType  string
		balance    pgtype.Numeric
		visibility []byte
		createdAt  pgtype.Timestamptz
		updatedAt  pgtype.Timestamptz
	)

	err := row.Scan(&w.ID, &w.OwnerID, &ownerType, &w.Currency, &balance, &visibility, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}
		return nil, err
	}

	w.OwnerType = domain.OwnerType(ownerType)
	w.Balance = numericToDecimal(balance)
	w.CreatedAt = createdAt.Time
	w.UpdatedAt = updatedAt.Time
	if visibility != nil {
		_ = json.Unmarshal(visibility, &w.Visibility)
	}
	return &w, nil
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
