package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/domain"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/infrastructure/payfast"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/usecase"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/usecase/mocks"
)

const testPassphrase = "test-passphrase"

type paymentFixture struct {
	uc          *usecase.PaymentUseCase
	walletRepo  *mocks.MockWalletRepository
	txnRepo     *mocks.MockTransactionRepository
	paymentRepo *mocks.MockPaymentRepository
	gateway     *mocks.MockGatewayClient
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		walletRepo:  mocks.NewMockWalletRepository(),
		txnRepo:     mocks.NewMockTransactionRepository(),
		paymentRepo: mocks.NewMockPaymentRepository(),
		gateway:     &mocks.MockGatewayClient{},
	}
	f.uc = usecase.NewPaymentUseCase(
		mocks.NewMockTransactionManager(),
		&mocks.MockRetrier{},
		f.walletRepo,
		f.txnRepo,
		f.paymentRepo,
		f.gateway,
		mocks.NewMockIDGenerator(),
		"ZAR",
	)
	return f
}

func (f *paymentFixture) seedWallet(ownerID string, balance decimal.Decimal) *domain.Wallet {
	w := domain.NewWallet("wal-"+ownerID, ownerID, domain.OwnerUser, "ZAR", time.Now().UTC())
	w.Balance = balance
	f.walletRepo.Create(context.Background(), w)
	return w
}

func (f *paymentFixture) seedPendingPayment(id, ownerID string, amount decimal.Decimal) *domain.PendingPayment {
	p := &domain.PendingPayment{
		ID:        id,
		OwnerID:   ownerID,
		Amount:    amount,
		Currency:  "ZAR",
		Status:    domain.PaymentPending,
		Provider:  "payfast",
		CreatedAt: time.Now().UTC(),
	}
	f.paymentRepo.Create(context.Background(), p)
	return p
}

// signedNotify builds a webhook field set signed the way the gateway signs
// callbacks: over every field as sent, empties included.
func signedNotify(fields map[string]string) map[string]string {
	fields[payfast.SignatureField] = payfast.Sign(fields, testPassphrase, payfast.CanonicalOpts{IncludeEmpty: true})
	return fields
}

func TestCreatePayment(t *testing.T) {
	f := newPaymentFixture()

	result, err := f.uc.CreatePayment(context.Background(), usecase.CreatePaymentInput{
		OwnerID: "user-1",
		Amount:  decimal.RequireFromString("250.00"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.PaymentID == "" {
		t.Error("expected a payment id")
	}
	if result.PaymentURL == "" || len(result.PaymentData) == 0 {
		t.Error("expected redirect URL and signed form fields")
	}

	// Wallet is provisioned on first touch.
	if _, err := f.walletRepo.GetByOwner(context.Background(), "user-1"); err != nil {
		t.Errorf("wallet should have been provisioned: %v", err)
	}

	// Payment persisted PENDING before returning.
	payment, err := f.paymentRepo.GetByID(context.Background(), result.PaymentID)
	if err != nil {
		t.Fatalf("payment not persisted: %v", err)
	}
	if payment.Status != domain.PaymentPending {
		t.Errorf("expected PENDING, got %s", payment.Status)
	}
	if payment.Completed() {
		t.Error("fresh payment must not read as completed")
	}
}

func TestCreatePaymentInvalidAmount(t *testing.T) {
	f := newPaymentFixture()

	tests := []struct {
		name   string
		amount decimal.Decimal
	}{
		{"zero", decimal.Zero},
		{"negative", decimal.NewFromInt(-5)},
		{"too many decimals", decimal.RequireFromString("10.001")},
		{"over cap", decimal.RequireFromString("1000000001")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.CreatePayment(context.Background(), usecase.CreatePaymentInput{
				OwnerID: "user-1",
				Amount:  tt.amount,
			})
			if !errors.Is(err, domain.ErrInvalidAmount) {
				t.Errorf("expected ErrInvalidAmount, got %v", err)
			}
		})
	}
}

func TestHandleNotifyCreditsOnce(t *testing.T) {
	f := newPaymentFixture()
	f.seedWallet("user-1", decimal.Zero)
	f.seedPendingPayment("pay-1", "user-1", decimal.RequireFromString("100.00"))

	fields := signedNotify(map[string]string{
		"m_payment_id":   "pay-1",
		"pf_payment_id":  "pf-55",
		"payment_status": "COMPLETE",
		"payment_method": "cc",
		"amount_gross":   "100.00",
	})

	outcome, err := f.uc.HandleNotify(context.Background(), fields)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != usecase.NotifyCredited {
		t.Fatalf("expected NotifyCredited, got %v", outcome)
	}

	wallet, _ := f.walletRepo.GetByOwner(context.Background(), "user-1")
	if !wallet.Balance.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("expected balance 100.00, got %s", wallet.Balance)
	}

	payment, _ := f.paymentRepo.GetByID(context.Background(), "pay-1")
	if !payment.Completed() {
		t.Error("payment should be COMPLETED")
	}
	if payment.GatewayPaymentID != "pf-55" {
		t.Errorf("gateway payment id not recorded: %s", payment.GatewayPaymentID)
	}

	entries := f.txnRepo.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Type != domain.TxTopUp || entry.Direction != domain.Credit {
		t.Errorf("expected TOP_UP credit, got %s %s", entry.Type, entry.Direction)
	}
	if entry.Status != domain.TxSuccess {
		t.Errorf("expected SUCCESS entry, got %s", entry.Status)
	}

	// At-least-once delivery: the second identical webhook must be a no-op.
	outcome, err = f.uc.HandleNotify(context.Background(), fields)
	if err != nil {
		t.Fatalf("unexpected error on duplicate: %v", err)
	}
	if outcome != usecase.NotifyDuplicate {
		t.Errorf("expected NotifyDuplicate, got %v", outcome)
	}

	wallet, _ = f.walletRepo.GetByOwner(context.Background(), "user-1")
	if !wallet.Balance.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("duplicate webhook must not move the balance, got %s", wallet.Balance)
	}
	if got := len(f.txnRepo.Entries()); got != 1 {
		t.Errorf("duplicate webhook must not append entries, got %d", got)
	}
}

func TestHandleNotifyBadSignature(t *testing.T) {
	f := newPaymentFixture()
	f.seedWallet("user-1", decimal.Zero)
	f.seedPendingPayment("pay-1", "user-1", decimal.RequireFromString("100.00"))

	fields := signedNotify(map[string]string{
		"m_payment_id":   "pay-1",
		"payment_status": "COMPLETE",
		"amount_gross":   "100.00",
	})
	fields["amount_gross"] = "999.00" // tamper after signing

	_, err := f.uc.HandleNotify(context.Background(), fields)
	if !errors.Is(err, domain.ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}

	wallet, _ := f.walletRepo.GetByOwner(context.Background(), "user-1")
	if !wallet.Balance.IsZero() {
		t.Error("tampered webhook must not move the balance")
	}
}

func TestHandleNotifyMissingFields(t *testing.T) {
	f := newPaymentFixture()

	tests := []struct {
		name   string
		fields map[string]string
	}{
		{"no m_payment_id", map[string]string{"payment_status": "COMPLETE", "signature": "x"}},
		{"no signature", map[string]string{"m_payment_id": "pay-1", "payment_status": "COMPLETE"}},
		{"no payment_status", map[string]string{"m_payment_id": "pay-1", "signature": "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.HandleNotify(context.Background(), tt.fields)
			if !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestHandleNotifyUnknownPayment(t *testing.T) {
	f := newPaymentFixture()

	fields := signedNotify(map[string]string{
		"m_payment_id":   "never-created",
		"payment_status": "COMPLETE",
	})

	outcome, err := f.uc.HandleNotify(context.Background(), fields)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != usecase.NotifyUnknownPayment {
		t.Errorf("expected NotifyUnknownPayment, got %v", outcome)
	}
}

func TestHandleNotifyNonCompleteRecordsGatewayRef(t *testing.T) {
	f := newPaymentFixture()
	f.seedWallet("user-1", decimal.Zero)
	f.seedPendingPayment("pay-1", "user-1", decimal.RequireFromString("100.00"))

	fields := signedNotify(map[string]string{
		"m_payment_id":   "pay-1",
		"pf_payment_id":  "pf-55",
		"payment_status": "PENDING",
	})

	outcome, err := f.uc.HandleNotify(context.Background(), fields)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != usecase.NotifyIgnored {
		t.Errorf("expected NotifyIgnored, got %v", outcome)
	}

	// The gateway-side id is recorded so the verify path can query status
	// before a COMPLETE ever arrives.
	payment, _ := f.paymentRepo.GetByID(context.Background(), "pay-1")
	if payment.GatewayPaymentID != "pf-55" {
		t.Errorf("gateway ref not recorded: %q", payment.GatewayPaymentID)
	}
	if payment.Completed() {
		t.Error("non-COMPLETE status must not complete the payment")
	}

	wallet, _ := f.walletRepo.GetByOwner(context.Background(), "user-1")
	if !wallet.Balance.IsZero() {
		t.Error("non-COMPLETE status must not move the balance")
	}
}

func TestVerifyPaymentWrongOwner(t *testing.T) {
	f := newPaymentFixture()
	f.seedPendingPayment("pay-1", "user-1", decimal.NewFromInt(50))

	_, err := f.uc.VerifyPayment(context.Background(), "intruder", "pay-1")
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestVerifyPaymentNotFound(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.uc.VerifyPayment(context.Background(), "user-1", "missing")
	if !errors.Is(err, domain.ErrPaymentNotFound) {
		t.Errorf("expected ErrPaymentNotFound, got %v", err)
	}
}

func TestVerifyPaymentAlreadyCompleted(t *testing.T) {
	f := newPaymentFixture()
	p := f.seedPendingPayment("pay-1", "user-1", decimal.RequireFromString("75.00"))
	now := time.Now().UTC()
	p.Status = domain.PaymentCompleted
	p.PaymentMethod = "eft"
	p.CompletedAt = &now
	f.paymentRepo.Create(context.Background(), p)

	result, err := f.uc.VerifyPayment(context.Background(), "user-1", "pay-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != usecase.VerifySuccess {
		t.Errorf("expected SUCCESS, got %s", result.Status)
	}
	if !result.Credited.Equal(decimal.RequireFromString("75.00")) {
		t.Errorf("unexpected credited amount: %s", result.Credited)
	}
	if result.PaymentMethod != "eft" {
		t.Errorf("unexpected payment method: %s", result.PaymentMethod)
	}
}

func TestVerifyPaymentNoGatewayRefIsPending(t *testing.T) {
	f := newPaymentFixture()
	f.seedPendingPayment("pay-1", "user-1", decimal.NewFromInt(50))

	f.gateway.QueryStatusFunc = func(ctx context.Context, id string) (*payfast.Status, error) {
		t.Fatal("QueryStatus must not be called without a gateway payment id")
		return nil, nil
	}

	result, err := f.uc.VerifyPayment(context.Background(), "user-1", "pay-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != usecase.VerifyPending {
		t.Errorf("expected PENDING, got %s", result.Status)
	}
}

func TestVerifyPaymentGatewayUnavailableIsPending(t *testing.T) {
	f := newPaymentFixture()
	p := f.seedPendingPayment("pay-1", "user-1", decimal.NewFromInt(50))
	p.GatewayPaymentID = "pf-1"
	f.paymentRepo.Create(context.Background(), p)

	f.gateway.QueryStatusFunc = func(ctx context.Context, id string) (*payfast.Status, error) {
		return nil, domain.ErrGatewayUnavailable
	}

	result, err := f.uc.VerifyPayment(context.Background(), "user-1", "pay-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != usecase.VerifyPending {
		t.Errorf("expected PENDING on gateway outage, got %s", result.Status)
	}
}

func TestVerifyPaymentCreditsOnGatewayComplete(t *testing.T) {
	f := newPaymentFixture()
	f.seedWallet("user-1", decimal.Zero)
	p := f.seedPendingPayment("pay-1", "user-1", decimal.RequireFromString("60.00"))
	p.GatewayPaymentID = "pf-1"
	f.paymentRepo.Create(context.Background(), p)

	f.gateway.QueryStatusFunc = func(ctx context.Context, id string) (*payfast.Status, error) {
		return &payfast.Status{PaymentStatus: payfast.StatusComplete, GatewayPaymentID: id, PaymentMethod: "cc"}, nil
	}

	result, err := f.uc.VerifyPayment(context.Background(), "user-1", "pay-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != usecase.VerifySuccess {
		t.Fatalf("expected SUCCESS, got %s", result.Status)
	}

	wallet, _ := f.walletRepo.GetByOwner(context.Background(), "user-1")
	if !wallet.Balance.Equal(decimal.RequireFromString("60.00")) {
		t.Errorf("expected balance 60.00, got %s", wallet.Balance)
	}

	// Re-verify is idempotent: no second credit.
	if _, err := f.uc.VerifyPayment(context.Background(), "user-1", "pay-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wallet, _ = f.walletRepo.GetByOwner(context.Background(), "user-1")
	if !wallet.Balance.Equal(decimal.RequireFromString("60.00")) {
		t.Errorf("re-verify must not double-credit, got %s", wallet.Balance)
	}
}

func TestVerifyPaymentGatewayPendingIsPending(t *testing.T) {
	f := newPaymentFixture()
	p := f.seedPendingPayment("pay-1", "user-1", decimal.NewFromInt(50))
	p.GatewayPaymentID = "pf-1"
	f.paymentRepo.Create(context.Background(), p)

	f.gateway.QueryStatusFunc = func(ctx context.Context, id string) (*payfast.Status, error) {
		return &payfast.Status{PaymentStatus: "PENDING", GatewayPaymentID: id}, nil
	}

	result, err := f.uc.VerifyPayment(context.Background(), "user-1", "pay-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != usecase.VerifyPending {
		t.Errorf("expected PENDING, got %s", result.Status)
	}
}
