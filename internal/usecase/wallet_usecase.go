package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/domain"
)

// WalletUseCase handles wallet reads: balance, transaction history and the
// ledger consistency check.
type WalletUseCase struct {
	walletRepo   WalletRepository
	txnRepo      TransactionRepository
	idGen        IDGenerator
	baseCurrency string
}

// NewWalletUseCase creates a new WalletUseCase.
func NewWalletUseCase(walletRepo WalletRepository, txnRepo TransactionRepository, idGen IDGenerator, baseCurrency string) *WalletUseCase {
	return &WalletUseCase{
		walletRepo:   walletRepo,
		txnRepo:      txnRepo,
		idGen:        idGen,
		baseCurrency: baseCurrency,
	}
}

// GetBalance returns the caller's wallet, provisioning a zero-balance one
// on first touch.
func (uc *WalletUseCase) GetBalance(ctx context.Context, ownerID string) (*domain.Wallet, error) {
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

// ListTransactionsInput pages the caller's log, most recent first.
type ListTransactionsInput struct {
	OwnerID string
	Limit   int
	Cursor  string
}

// ListTransactionsResult carries one page and the cursor for the next.
type ListTransactionsResult struct {
	Items      []*domain.Transaction
	NextCursor string
}

// ListTransactions returns one page of the owner's transaction log.
// Transaction ids are ULIDs, so descending id order is descending time
// order and the last id of a page is the next cursor.
func (uc *WalletUseCase) ListTransactions(ctx context.Context, input ListTransactionsInput) (*ListTransactionsResult, error) {
	wallet, err := uc.GetBalance(ctx, input.OwnerID)
	if err != nil {
		return nil, err
	}

	limit := domain.ClampLimit(input.Limit)
	items, err := uc.txnRepo.ListByWallet(ctx, wallet.ID, limit+1, input.Cursor)
	if err != nil {
		return nil, err
	}

	next := ""
	if len(items) > limit {
		items = items[:limit]
		next = items[len(items)-1].ID
	}
	return &ListTransactionsResult{Items: items, NextCursor: next}, nil
}

// WalletConsistency is one wallet's balance checked against its entries.
type WalletConsistency struct {
	WalletID string
	OwnerID  string
	Balance  decimal.Decimal
	EntrySum decimal.Decimal
}

// ConsistencyReport is the ledger-wide check result.
type ConsistencyReport struct {
	Wallets       int
	Discrepancies []WalletConsistency
	CheckedAt     time.Time
}

// CheckConsistency verifies every wallet's balance equals the signed sum of
// its SUCCESS entries. A discrepancy means a balance write escaped its log
// entry, which the transactional write paths should make impossible.
func (uc *WalletUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	report := &ConsistencyReport{CheckedAt: time.Now().UTC()}

	const page = 500
	for offset := 0; ; offset += page {
		wallets, err := uc.walletRepo.List(ctx, page, offset)
		if err != nil {
			return nil, err
		}
		if len(wallets) == 0 {
			break
		}

		for _, w := range wallets {
			sum, err := uc.txnRepo.SumByWallet(ctx, w.ID)
			if err != nil {
				return nil, err
			}
			report.Wallets++
			if !w.Balance.Equal(sum) {
				report.Discrepancies = append(report.Discrepancies, WalletConsistency{
					WalletID: w.ID,
					OwnerID:  w.OwnerID,
					Balance:  w.Balance,
					EntrySum: sum,
				})
			}
		}
		if len(wallets) < page {
			break
		}
	}

	return report, nil
}
