package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/domain"
)

// TransferUseCase handles atomic multi-wallet movements that never touch
// the gateway: peer-to-peer transfers, ride/order settlement, and
// privileged adjustments.
type TransferUseCase struct {
	txManager  TransactionManager
	retrier    Retrier
	walletRepo WalletRepository
	txnRepo    TransactionRepository
	orderRepo  OrderRepository
	idGen      IDGenerator
	feeRate    decimal.Decimal
}

// NewTransferUseCase creates a new TransferUseCase. feeRate is the platform
// cut withheld at settlement, in [0, 0.95].
func NewTransferUseCase(
	txManager TransactionManager,
	retrier Retrier,
	walletRepo WalletRepository,
	txnRepo TransactionRepository,
	orderRepo OrderRepository,
	idGen IDGenerator,
	feeRate decimal.Decimal,
) *TransferUseCase {
	return &TransferUseCase{
		txManager:  txManager,
		retrier:    retrier,
		walletRepo: walletRepo,
		txnRepo:    txnRepo,
		orderRepo:  orderRepo,
		idGen:      idGen,
		feeRate:    feeRate,
	}
}

// TransferInput is a peer-to-peer movement.
type TransferInput struct {
	FromOwnerID string
	ToOwnerID   string
	Amount      decimal.Decimal
	Note        string
}

// TransferResult reports the committed movement.
type TransferResult struct {
	OutTransactionID string
	InTransactionID  string
	FromBalance      decimal.Decimal
}

// Transfer debits the sender and credits the receiver with two mirrored log
// entries, all inside one store transaction. The sender's balance check
// happens on the locked row, so a stale read can never overdraw.
func (uc *TransferUseCase) Transfer(ctx context.Context, input TransferInput) (*TransferResult, error) {
	if input.FromOwnerID == input.ToOwnerID {
		return nil, domain.ErrSameWallet
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	var result *TransferResult

	err := uc.retrier.Retry(ctx, func() error {
		result = nil

		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		sender, receiver, err := uc.lockPair(ctx, tx, input.FromOwnerID, input.ToOwnerID)
		if err != nil {
			return err
		}
		if err := sender.ValidateDebit(input.Amount); err != nil {
			return err
		}

		now := time.Now().UTC()
		outEntry := &domain.Transaction{
			ID:             uc.idGen.Generate(),
			WalletID:       sender.ID,
			Type:           domain.TxTransferOut,
			Direction:      domain.Debit,
			Amount:         input.Amount,
			Currency:       sender.Currency,
			Status:         domain.TxSuccess,
			CounterpartyID: receiver.OwnerID,
			Note:           input.Note,
			CreatedAt:      now,
		}
		inEntry := &domain.Transaction{
			ID:             uc.idGen.Generate(),
			WalletID:       receiver.ID,
			Type:           domain.TxTransferIn,
			Direction:      domain.Credit,
			Amount:         input.Amount,
			Currency:       receiver.Currency,
			Status:         domain.TxSuccess,
			CounterpartyID: sender.OwnerID,
			Note:           input.Note,
			CreatedAt:      now,
		}

		if err := uc.txnRepo.Create(ctx, tx, outEntry); err != nil {
			return err
		}
		if err := uc.txnRepo.Create(ctx, tx, inEntry); err != nil {
			return err
		}
		if err := uc.walletRepo.UpdateBalance(ctx, tx, sender.ID, sender.ApplyDebit(input.Amount), now); err != nil {
			return err
		}
		if err := uc.walletRepo.UpdateBalance(ctx, tx, receiver.ID, receiver.ApplyCredit(input.Amount), now); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		result = &TransferResult{
			OutTransactionID: outEntry.ID,
			InTransactionID:  inEntry.ID,
			FromBalance:      sender.ApplyDebit(input.Amount),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RecordOrderInput registers a completed ride or marketplace order awaiting
// settlement. The buyer is the authenticated caller.
type RecordOrderInput struct {
	BuyerID  string
	SellerID string
	Amount   decimal.Decimal
	Kind     domain.OrderKind
}

// RecordOrder persists the order in COMPLETED state. No money moves here;
// settlement is a separate, explicitly triggered step.
func (uc *TransferUseCase) RecordOrder(ctx context.Context, input RecordOrderInput) (*domain.Order, error) {
	if input.BuyerID == input.SellerID {
		return nil, domain.ErrSameWallet
	}
	if input.Kind != domain.KindRide && input.Kind != domain.KindOrder {
		return nil, domain.ErrInvalidArgument
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:        uc.idGen.Generate(),
		BuyerID:   input.BuyerID,
		SellerID:  input.SellerID,
		Amount:    input.Amount,
		Kind:      input.Kind,
		Status:    domain.OrderCompleted,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// SettleResult reports a settlement, including the withheld fee.
type SettleResult struct {
	OrderID       string
	Payout        decimal.Decimal
	PlatformFee   decimal.Decimal
	AlreadyDone   bool
	TransactionID string
}

// SettleOrder moves the order amount from buyer to seller minus the
// platform fee, and flips the order to SETTLED in the same transaction.
// Settling an already-SETTLED order is a safe no-op.
func (uc *TransferUseCase) SettleOrder(ctx context.Context, orderID string) (*SettleResult, error) {
	var result *SettleResult

	err := uc.retrier.Retry(ctx, func() error {
		result = nil

		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		order, err := uc.orderRepo.GetByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.Status == domain.OrderSettled {
			result = &SettleResult{OrderID: order.ID, AlreadyDone: true, TransactionID: order.SettledTransactionID}
			return nil
		}
		if order.Status != domain.OrderCompleted {
			return domain.ErrOrderNotSettleable
		}

		fee := order.Amount.Mul(uc.feeRate).Round(domain.MoneyScale)
		payout := order.Amount.Sub(fee)

		buyer, seller, err := uc.lockPair(ctx, tx, order.BuyerID, order.SellerID)
		if err != nil {
			return err
		}
		if err := buyer.ValidateDebit(order.Amount); err != nil {
			return err
		}

		buyerType, sellerType := order.EntryTypes()
		now := time.Now().UTC()
		payEntry := &domain.Transaction{
			ID:             uc.idGen.Generate(),
			WalletID:       buyer.ID,
			Type:           buyerType,
			Direction:      domain.Debit,
			Amount:         order.Amount,
			Currency:       buyer.Currency,
			Status:         domain.TxSuccess,
			CounterpartyID: seller.OwnerID,
			PlatformFee:    fee,
			Note:           string(order.Kind) + " " + order.ID,
			CreatedAt:      now,
		}
		earnEntry := &domain.Transaction{
			ID:             uc.idGen.Generate(),
			WalletID:       seller.ID,
			Type:           sellerType,
			Direction:      domain.Credit,
			Amount:         payout,
			Currency:       seller.Currency,
			Status:         domain.TxSuccess,
			CounterpartyID: buyer.OwnerID,
			PlatformFee:    fee,
			Note:           string(order.Kind) + " " + order.ID,
			CreatedAt:      now,
		}

		if err := uc.txnRepo.Create(ctx, tx, payEntry); err != nil {
			return err
		}
		if err := uc.txnRepo.Create(ctx, tx, earnEntry); err != nil {
			return err
		}
		if err := uc.walletRepo.UpdateBalance(ctx, tx, buyer.ID, buyer.ApplyDebit(order.Amount), now); err != nil {
			return err
		}
		if err := uc.walletRepo.UpdateBalance(ctx, tx, seller.ID, seller.ApplyCredit(payout), now); err != nil {
			return err
		}
		// The order flip rides the same transaction: an order must never
		// read as paid without the funds having moved, or vice versa.
		if err := uc.orderRepo.MarkSettled(ctx, tx, order.ID, payEntry.ID, now); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		result = &SettleResult{
			OrderID:       order.ID,
			Payout:        payout,
			PlatformFee:   fee,
			TransactionID: payEntry.ID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AdminAdjustInput applies a signed delta to a wallet. The elevated-privilege
// check happens at the HTTP layer before the transaction begins.
type AdminAdjustInput struct {
	TargetOwnerID string
	Delta         decimal.Decimal
	Reason        string
}

// AdminAdjust applies the delta and records an ADMIN_ADJUST entry. A delta
// that would push the balance negative is rejected with no mutation.
func (uc *TransferUseCase) AdminAdjust(ctx context.Context, input AdminAdjustInput) (decimal.Decimal, error) {
	if input.Delta.IsZero() {
		return decimal.Zero, domain.ErrInvalidAmount
	}
	if err := domain.ValidateAmount(input.Delta.Abs()); err != nil {
		return decimal.Zero, err
	}

	var newBalance decimal.Decimal

	err := uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		wallet, err := uc.walletRepo.GetByOwnerForUpdate(ctx, tx, input.TargetOwnerID)
		if err != nil {
			return err
		}

		direction := domain.Credit
		if input.Delta.IsNegative() {
			direction = domain.Debit
			if err := wallet.ValidateDebit(input.Delta.Abs()); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		entry := &domain.Transaction{
			ID:        uc.idGen.Generate(),
			WalletID:  wallet.ID,
			Type:      domain.TxAdminAdjust,
			Direction: direction,
			Amount:    input.Delta.Abs(),
			Currency:  wallet.Currency,
			Status:    domain.TxSuccess,
			Note:      input.Reason,
			CreatedAt: now,
		}
		if err := uc.txnRepo.Create(ctx, tx, entry); err != nil {
			return err
		}

		updated := wallet.Balance.Add(input.Delta)
		if err := uc.walletRepo.UpdateBalance(ctx, tx, wallet.ID, updated, now); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}
		newBalance = updated
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return newBalance, nil
}

// lockPair locks two wallets in sorted owner order to prevent deadlock and
// returns them as (first, second) matching the argument order.
func (uc *TransferUseCase) lockPair(ctx context.Context, tx Transaction, firstOwner, secondOwner string) (*domain.Wallet, *domain.Wallet, error) {
	ownerIDs := []string{firstOwner, secondOwner}
	sort.Strings(ownerIDs)

	wallets, err := uc.walletRepo.GetByOwnersForUpdate(ctx, tx, ownerIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(wallets) != 2 {
		return nil, nil, domain.ErrWalletNotFound
	}

	byOwner := map[string]*domain.Wallet{}
	for _, w := range wallets {
		byOwner[w.OwnerID] = w
	}
	first, second := byOwner[firstOwner], byOwner[secondOwner]
	if first == nil || second == nil {
		return nil, nil, domain.ErrWalletNotFound
	}
	return first, second, nil
}

// FeeSplit exposes the settlement split for a given amount without touching
// the store; payout + fee always equals amount.
func (uc *TransferUseCase) FeeSplit(amount decimal.Decimal) (payout, fee decimal.Decimal) {
	fee = amount.Mul(uc.feeRate).Round(domain.MoneyScale)
	return amount.Sub(fee), fee
}
