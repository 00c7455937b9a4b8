package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/domain"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/infrastructure/payfast"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/usecase"
)

// MockWalletRepository is a mock implementation of WalletRepository.
type MockWalletRepository struct {
	mu      sync.RWMutex
	wallets map[string]*domain.Wallet // keyed by owner id

	CreateFunc               func(ctx context.Context, wallet *domain.Wallet) error
	CreateTxFunc             func(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error
	GetByOwnerFunc           func(ctx context.Context, ownerID string) (*domain.Wallet, error)
	GetByOwnerForUpdateFunc  func(ctx context.Context, tx usecase.Transaction, ownerID string) (*domain.Wallet, error)
	GetByOwnersForUpdateFunc func(ctx context.Context, tx usecase.Transaction, ownerIDs []string) ([]*domain.Wallet, error)
	UpdateBalanceFunc        func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	ListFunc                 func(ctx context.Context, limit, offset int) ([]*domain.Wallet, error)
}

func NewMockWalletRepository() *MockWalletRepository {
	return &MockWalletRepository{
		wallets: make(map[string]*domain.Wallet),
	}
}

func (m *MockWalletRepository) Create(ctx context.Context, wallet *domain.Wallet) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, wallet)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets[wallet.OwnerID] = wallet
	return nil
}

func (m *MockWalletRepository) CreateTx(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, wallet)
	}
	return m.Create(ctx, wallet)
}

func (m *MockWalletRepository) GetByOwner(ctx context.Context, ownerID string) (*domain.Wallet, error) {
	if m.GetByOwnerFunc != nil {
		return m.GetByOwnerFunc(ctx, ownerID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if w, ok := m.wallets[ownerID]; ok {
		return w, nil
	}
	return nil, domain.ErrWalletNotFound
}

func (m *MockWalletRepository) GetByOwnerForUpdate(ctx context.Context, tx usecase.Transaction, ownerID string) (*domain.Wallet, error) {
	if m.GetByOwnerForUpdateFunc != nil {
		return m.GetByOwnerForUpdateFunc(ctx, tx, ownerID)
	}
	return m.GetByOwner(ctx, ownerID)
}

func (m *MockWalletRepository) GetByOwnersForUpdate(ctx context.Context, tx usecase.Transaction, ownerIDs []string) ([]*domain.Wallet, error) {
	if m.GetByOwnersForUpdateFunc != nil {
		return m.GetByOwnersForUpdateFunc(ctx, tx, ownerIDs)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var wallets []*domain.Wallet
	for _, ownerID := range ownerIDs {
		if w, ok := m.wallets[ownerID]; ok {
			wallets = append(wallets, w)
		}
	}
	return wallets, nil
}

func (m *MockWalletRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.wallets {
		if w.ID == id {
			w.Balance = balance
			w.UpdatedAt = updatedAt
			return nil
		}
	}
	return domain.ErrWalletNotFound
}

func (m *MockWalletRepository) List(ctx context.Context, limit, offset int) ([]*domain.Wallet, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var wallets []*domain.Wallet
	for _, w := range m.wallets {
		wallets = append(wallets, w)
	}
	sort.Slice(wallets, func(i, j int) bool { return wallets[i].ID < wallets[j].ID })
	if offset >= len(wallets) {
		return nil, nil
	}
	wallets = wallets[offset:]
	if len(wallets) > limit {
		wallets = wallets[:limit]
	}
	return wallets, nil
}

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.Transaction

	CreateFunc       func(ctx context.Context, tx usecase.Transaction, entry *domain.Transaction) error
	GetByIDFunc      func(ctx context.Context, id string) (*domain.Transaction, error)
	ListByWalletFunc func(ctx context.Context, walletID string, limit int, cursor string) ([]*domain.Transaction, error)
	SumByWalletFunc  func(ctx context.Context, walletID string) (decimal.Decimal, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		entries: make(map[string]*domain.Transaction),
	}
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.ID] = entry
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[id]; ok {
		return e, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) ListByWallet(ctx context.Context, walletID string, limit int, cursor string) ([]*domain.Transaction, error) {
	if m.ListByWalletFunc != nil {
		return m.ListByWalletFunc(ctx, walletID, limit, cursor)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.Transaction
	for _, e := range m.entries {
		if e.WalletID != walletID {
			continue
		}
		if cursor != "" && e.ID >= cursor {
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID > entries[j].ID })
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (m *MockTransactionRepository) SumByWallet(ctx context.Context, walletID string) (decimal.Decimal, error) {
	if m.SumByWalletFunc != nil {
		return m.SumByWalletFunc(ctx, walletID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, e := range m.entries {
		if e.WalletID == walletID && e.Status == domain.TxSuccess {
			sum = sum.Add(e.Signed())
		}
	}
	return sum, nil
}

// Entries returns all stored entries, for assertions.
func (m *MockTransactionRepository) Entries() []*domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.Transaction
	for _, e := range m.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries
}

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.PendingPayment

	CreateFunc           func(ctx context.Context, payment *domain.PendingPayment) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.PendingPayment, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.PendingPayment, error)
	UpdateGatewayRefFunc func(ctx context.Context, id, gatewayPaymentID string) error
	MarkCompletedFunc    func(ctx context.Context, tx usecase.Transaction, id, gatewayPaymentID, paymentMethod string, completedAt time.Time) error
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[string]*domain.PendingPayment),
	}
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.PendingPayment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, payment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.PendingPayment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.payments[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, domain.ErrPaymentNotFound
}

func (m *MockPaymentRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.PendingPayment, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockPaymentRepository) UpdateGatewayRef(ctx context.Context, id, gatewayPaymentID string) error {
	if m.UpdateGatewayRefFunc != nil {
		return m.UpdateGatewayRefFunc(ctx, id, gatewayPaymentID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return domain.ErrPaymentNotFound
	}
	if p.GatewayPaymentID == "" {
		p.GatewayPaymentID = gatewayPaymentID
	}
	return nil
}

func (m *MockPaymentRepository) MarkCompleted(ctx context.Context, tx usecase.Transaction, id, gatewayPaymentID, paymentMethod string, completedAt time.Time) error {
	if m.MarkCompletedFunc != nil {
		return m.MarkCompletedFunc(ctx, tx, id, gatewayPaymentID, paymentMethod, completedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return domain.ErrPaymentNotFound
	}
	if p.Status != domain.PaymentPending {
		return nil
	}
	p.Status = domain.PaymentCompleted
	if gatewayPaymentID != "" {
		p.GatewayPaymentID = gatewayPaymentID
	}
	if paymentMethod != "" {
		p.PaymentMethod = paymentMethod
	}
	p.CompletedAt = &completedAt
	return nil
}

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order

	CreateFunc           func(ctx context.Context, order *domain.Order) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Order, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Order, error)
	MarkSettledFunc      func(ctx context.Context, tx usecase.Transaction, id, settledTransactionID string, updatedAt time.Time) error
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]*domain.Order),
	}
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, order)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = order
	return nil
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if o, ok := m.orders[id]; ok {
		copied := *o
		return &copied, nil
	}
	return nil, domain.ErrOrderNotFound
}

func (m *MockOrderRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Order, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockOrderRepository) MarkSettled(ctx context.Context, tx usecase.Transaction, id, settledTransactionID string, updatedAt time.Time) error {
	if m.MarkSettledFunc != nil {
		return m.MarkSettledFunc(ctx, tx, id, settledTransactionID, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if o.Status != domain.OrderCompleted {
		return nil
	}
	o.Status = domain.OrderSettled
	o.SettledTransactionID = settledTransactionID
	o.UpdatedAt = updatedAt
	return nil
}

// MockGatewayClient is a mock implementation of GatewayClient.
type MockGatewayClient struct {
	ConfiguredFunc          func() bool
	PassphraseFunc          func() string
	BuildPaymentRequestFunc func(req payfast.CreateRequest) (*payfast.PaymentRequest, error)
	QueryStatusFunc         func(ctx context.Context, gatewayPaymentID string) (*payfast.Status, error)
}

func (m *MockGatewayClient) Configured() bool {
	if m.ConfiguredFunc != nil {
		return m.ConfiguredFunc()
	}
	return true
}

func (m *MockGatewayClient) Passphrase() string {
	if m.PassphraseFunc != nil {
		return m.PassphraseFunc()
	}
	return "test-passphrase"
}

func (m *MockGatewayClient) BuildPaymentRequest(req payfast.CreateRequest) (*payfast.PaymentRequest, error) {
	if m.BuildPaymentRequestFunc != nil {
		return m.BuildPaymentRequestFunc(req)
	}
	return &payfast.PaymentRequest{
		Fields: map[string]string{
			"m_payment_id": req.PaymentID,
			"amount":       req.Amount.StringFixed(2),
		},
		URL: "https://sandbox.payfast.co.za/eng/process",
	}, nil
}

func (m *MockGatewayClient) QueryStatus(ctx context.Context, gatewayPaymentID string) (*payfast.Status, error) {
	if m.QueryStatusFunc != nil {
		return m.QueryStatusFunc(ctx, gatewayPaymentID)
	}
	return &payfast.Status{PaymentStatus: payfast.StatusComplete, GatewayPaymentID: gatewayPaymentID}, nil
}

// MockCurrencyConverter is a mock implementation of CurrencyConverter.
type MockCurrencyConverter struct {
	ConvertFunc func(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, decimal.Decimal, error)
}

func (m *MockCurrencyConverter) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, decimal.Decimal, error) {
	if m.ConvertFunc != nil {
		return m.ConvertFunc(ctx, amount, from, to)
	}
	return amount, decimal.NewFromInt(1), nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockRetrier runs the operation exactly once.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%04d", m.counter)
}

// MockCache is a mock implementation of Cache.
type MockCache struct {
	mu   sync.RWMutex
	data map[string][]byte

	GetFunc    func(ctx context.Context, key string) ([]byte, error)
	SetFunc    func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
}

func NewMockCache() *MockCache {
	return &MockCache{data: make(map[string][]byte)}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("cache miss: %s", key)
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}
