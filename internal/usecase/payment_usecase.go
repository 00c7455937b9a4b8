package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/domain"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/infrastructure/payfast"
)

// PaymentUseCase is the reconciliation engine: it creates pending payments,
// and converges the gateway webhook and the client verification poll onto
// one idempotent credit operation.
type PaymentUseCase struct {
	txManager    TransactionManager
	retrier      Retrier
	walletRepo   WalletRepository
	txnRepo      TransactionRepository
	paymentRepo  PaymentRepository
	gateway      GatewayClient
	idGen        IDGenerator
	baseCurrency string
}

// NewPaymentUseCase creates a new PaymentUseCase.
func NewPaymentUseCase(
	txManager TransactionManager,
	retrier Retrier,
	walletRepo WalletRepository,
	txnRepo TransactionRepository,
	paymentRepo PaymentRepository,
	gateway GatewayClient,
	idGen IDGenerator,
	baseCurrency string,
) *PaymentUseCase {
	return &PaymentUseCase{
		txManager:    txManager,
		retrier:      retrier,
		walletRepo:   walletRepo,
		txnRepo:      txnRepo,
		paymentRepo:  paymentRepo,
		gateway:      gateway,
		idGen:        idGen,
		baseCurrency: baseCurrency,
	}
}

// CreatePaymentInput is the client-facing top-up request.
type CreatePaymentInput struct {
	OwnerID         string
	Amount          decimal.Decimal
	ItemName        string
	ItemDescription string
	Email           string
	CellNumber      string
}

// CreatePaymentResult is handed back to the client for the browser redirect.
type CreatePaymentResult struct {
	PaymentID   string
	PaymentURL  string
	PaymentData map[string]string
}

// CreatePayment validates the amount, builds the signed gateway request and
// persists the PENDING payment before returning. The generated payment id is
// both the local primary key and the gateway-facing m_payment_id.
func (uc *PaymentUseCase) CreatePayment(ctx context.Context, input CreatePaymentInput) (*CreatePaymentResult, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	wallet, err := uc.ensureWallet(ctx, input.OwnerID)
	if err != nil {
		return nil, err
	}

	itemName := input.ItemName
	if itemName == "" {
		itemName = "Wallet top-up"
	}

	paymentID := uc.idGen.Generate()
	request, err := uc.gateway.BuildPaymentRequest(payfast.CreateRequest{
		PaymentID:       paymentID,
		Amount:          input.Amount,
		OwnerID:         input.OwnerID,
		Purpose:         "wallet_topup",
		ItemName:        itemName,
		ItemDescription: input.ItemDescription,
		Email:           input.Email,
		CellNumber:      input.CellNumber,
	})
	if err != nil {
		return nil, err
	}

	payment := &domain.PendingPayment{
		ID:        paymentID,
		OwnerID:   input.OwnerID,
		Amount:    input.Amount,
		Currency:  wallet.Currency,
		Status:    domain.PaymentPending,
		Provider:  "payfast",
		Payload:   request.Fields,
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	return &CreatePaymentResult{
		PaymentID:   paymentID,
		PaymentURL:  request.URL,
		PaymentData: request.Fields,
	}, nil
}

// NotifyOutcome tells the webhook handler what happened; every outcome is
// acknowledged with 200 upstream.
type NotifyOutcome int

const (
	NotifyCredited NotifyOutcome = iota
	NotifyDuplicate
	NotifyIgnored
	NotifyUnknownPayment
)

// HandleNotify processes one gateway webhook delivery. Delivery is
// at-least-once over an unauthenticated transport; the signature over the
// received fields is the only trust anchor. Signature or field problems are
// errors (the handler turns them into 400); everything past the signature
// check resolves to an acknowledged outcome.
func (uc *PaymentUseCase) HandleNotify(ctx context.Context, fields map[string]string) (NotifyOutcome, error) {
	paymentID := fields["m_payment_id"]
	signature := fields[payfast.SignatureField]
	if paymentID == "" || signature == "" || fields["payment_status"] == "" {
		return 0, fmt.Errorf("%w: missing required webhook fields", domain.ErrInvalidArgument)
	}

	// Verification over the fields as received, empties included.
	if !payfast.Verify(fields, uc.gateway.Passphrase(), signature, payfast.CanonicalOpts{IncludeEmpty: true}) {
		return 0, domain.ErrBadSignature
	}

	payment, err := uc.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			// Not ours: acknowledge and drop so the gateway stops retrying.
			return NotifyUnknownPayment, nil
		}
		return 0, err
	}

	// Record the gateway's payment id as soon as we learn it, so the
	// client verify path can query status even before a COMPLETE arrives.
	gatewayPaymentID := fields["pf_payment_id"]
	if gatewayPaymentID != "" && payment.GatewayPaymentID == "" && !payment.Completed() {
		if err := uc.paymentRepo.UpdateGatewayRef(ctx, payment.ID, gatewayPaymentID); err != nil {
			return 0, err
		}
	}

	if fields["payment_status"] != payfast.StatusComplete {
		return NotifyIgnored, nil
	}
	if payment.Completed() {
		return NotifyDuplicate, nil
	}

	credited, err := uc.credit(ctx, payment.ID, gatewayPaymentID, fields["payment_method"])
	if err != nil {
		return 0, err
	}
	if !credited {
		return NotifyDuplicate, nil
	}
	return NotifyCredited, nil
}

// VerifyStatus is the client-visible verification outcome.
type VerifyStatus string

const (
	VerifySuccess VerifyStatus = "SUCCESS"
	VerifyPending VerifyStatus = "PENDING"
)

// VerifyResult is returned to the client after the browser flow.
type VerifyResult struct {
	Status        VerifyStatus
	Credited      decimal.Decimal
	Currency      string
	PaymentMethod string
}

// VerifyPayment is the client-triggered reconciliation path. PENDING is a
// normal answer, not a failure: the webhook may land moments later.
func (uc *PaymentUseCase) VerifyPayment(ctx context.Context, callerID, paymentID string) (*VerifyResult, error) {
	payment, err := uc.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.OwnerID != callerID {
		return nil, domain.ErrPermissionDenied
	}

	if payment.Completed() {
		return uc.successResult(payment), nil
	}

	// Webhook hasn't told us the gateway-side id yet; nothing to query.
	if payment.GatewayPaymentID == "" {
		return &VerifyResult{Status: VerifyPending}, nil
	}

	status, err := uc.gateway.QueryStatus(ctx, payment.GatewayPaymentID)
	if err != nil {
		if errors.Is(err, domain.ErrGatewayUnavailable) {
			// A slow or unreachable gateway is indistinguishable from a
			// payment still in flight; the caller polls again.
			return &VerifyResult{Status: VerifyPending}, nil
		}
		return nil, err
	}
	if !status.Complete() {
		return &VerifyResult{Status: VerifyPending}, nil
	}

	if _, err := uc.credit(ctx, payment.ID, payment.GatewayPaymentID, status.PaymentMethod); err != nil {
		return nil, err
	}

	payment, err = uc.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	return uc.successResult(payment), nil
}

func (uc *PaymentUseCase) successResult(payment *domain.PendingPayment) *VerifyResult {
	return &VerifyResult{
		Status:        VerifySuccess,
		Credited:      payment.Amount,
		Currency:      payment.Currency,
		PaymentMethod: payment.PaymentMethod,
	}
}

// credit is the single idempotent credit operation both entry points share.
// One store transaction: re-read the payment under lock, gate on PENDING,
// move the balance, append the TOP_UP entry, mark COMPLETED. All four
// effects commit together or not at all, so re-entry after a crash or a
// concurrent duplicate delivery is safe. No external calls inside.
func (uc *PaymentUseCase) credit(ctx context.Context, paymentID, gatewayPaymentID, paymentMethod string) (bool, error) {
	credited := false

	err := uc.retrier.Retry(ctx, func() error {
		credited = false

		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		payment, err := uc.paymentRepo.GetByIDForUpdate(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if payment.Completed() {
			return nil // lost the race; nothing to do
		}

		wallet, err := uc.walletRepo.GetByOwnerForUpdate(ctx, tx, payment.OwnerID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		entry := &domain.Transaction{
			ID:               uc.idGen.Generate(),
			WalletID:         wallet.ID,
			Type:             domain.TxTopUp,
			Direction:        domain.Credit,
			Amount:           payment.Amount,
			Currency:         payment.Currency,
			Status:           domain.TxSuccess,
			GatewayPaymentID: gatewayPaymentID,
			PaymentMethod:    paymentMethod,
			CreatedAt:        now,
		}
		if err := entry.Validate(); err != nil {
			return err
		}
		if err := uc.txnRepo.Create(ctx, tx, entry); err != nil {
			return err
		}
		if err := uc.walletRepo.UpdateBalance(ctx, tx, wallet.ID, wallet.ApplyCredit(payment.Amount), now); err != nil {
			return err
		}
		if err := uc.paymentRepo.MarkCompleted(ctx, tx, payment.ID, gatewayPaymentID, paymentMethod, now); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}
		credited = true
		return nil
	})

	return credited, err
}

func (uc *PaymentUseCase) ensureWallet(ctx context.Context, ownerID string) (*domain.Wallet, error) {
	wallet, err := uc.walletRepo.GetByOwner(ctx, ownerID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, domain.ErrWalletNotFound) {
		return nil, err
	}

	wallet = domain.NewWallet(uc.idGen.Generate(), ownerID, domain.OwnerUser, uc.baseCurrency, time.Now().UTC())
	if err := uc.walletRepo.Create(ctx, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}
