package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/domain"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/infrastructure/payfast"
)

// WalletRepository defines data access for wallets.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	CreateTx(ctx context.Context, tx Transaction, wallet *domain.Wallet) error
	GetByOwner(ctx context.Context, ownerID string) (*domain.Wallet, error)
	GetByOwnerForUpdate(ctx context.Context, tx Transaction, ownerID string) (*domain.Wallet, error)
	GetByOwnersForUpdate(ctx context.Context, tx Transaction, ownerIDs []string) ([]*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Wallet, error)
}

// TransactionRepository defines data access for the append-only log.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	// ListByWallet pages most-recent-first; cursor is the id of the last
	// entry of the previous page, empty for the first page.
	ListByWallet(ctx context.Context, walletID string, limit int, cursor string) ([]*domain.Transaction, error)
	// SumByWallet returns the signed sum of SUCCESS entries.
	SumByWallet(ctx context.Context, walletID string) (decimal.Decimal, error)
}

// PaymentRepository defines data access for pending payments.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.PendingPayment) error
	GetByID(ctx context.Context, id string) (*domain.PendingPayment, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.PendingPayment, error)
	// UpdateGatewayRef records the gateway-side payment id as soon as a
	// signed callback reveals it, without touching status.
	UpdateGatewayRef(ctx context.Context, id, gatewayPaymentID string) error
	MarkCompleted(ctx context.Context, tx Transaction, id, gatewayPaymentID, paymentMethod string, completedAt time.Time) error
}

// OrderRepository defines data access for settleable orders and rides.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Order, error)
	MarkSettled(ctx context.Context, tx Transaction, id, settledTransactionID string, updatedAt time.Time) error
}

// GatewayClient is the payment-gateway capability handed to the
// reconciliation engine at construction, never reached for via globals.
type GatewayClient interface {
	Configured() bool
	Passphrase() string
	BuildPaymentRequest(req payfast.CreateRequest) (*payfast.PaymentRequest, error)
	QueryStatus(ctx context.Context, gatewayPaymentID string) (*payfast.Status, error)
}

// CurrencyConverter is the best-effort FX lookup. It is not part of the
// ledger's correctness and never runs inside a credit transaction.
type CurrencyConverter interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (converted, rate decimal.Decimal, err error)
}

// Transaction represents a store transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on write-conflict. Operations passed to it
// must be pure read-compute-write against the store: no external calls.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
