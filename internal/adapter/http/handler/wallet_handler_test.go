package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/adapter/http/dto"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/domain"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/usecase"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/usecase/mocks"
)

type walletHandlerFixture struct {
	handler *WalletHandler
	txnRepo *mocks.MockTransactionRepository
}

func newWalletHandlerFixture() *walletHandlerFixture {
	f := &walletHandlerFixture{
		txnRepo: mocks.NewMockTransactionRepository(),
	}
	uc := usecase.NewWalletUseCase(
		mocks.NewMockWalletRepository(),
		f.txnRepo,
		mocks.NewMockIDGenerator(),
		"ZAR",
	)
	f.handler = NewWalletHandler(uc)
	return f
}

func TestWalletHandler_GetBalance(t *testing.T) {
	f := newWalletHandlerFixture()

	req := asCaller(httptest.NewRequest(http.MethodGet, "/wallet", nil), "user-1")
	rec := httptest.NewRecorder()

	f.handler.GetBalance(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.WalletResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.OwnerID != "user-1" || resp.Currency != "ZAR" {
		t.Errorf("unexpected wallet: %+v", resp)
	}
	if !resp.Balance.IsZero() {
		t.Errorf("first touch provisions a zero wallet, got %s", resp.Balance)
	}
}

func TestWalletHandler_GetBalance_Unauthenticated(t *testing.T) {
	f := newWalletHandlerFixture()

	req := httptest.NewRequest(http.MethodGet, "/wallet", nil)
	rec := httptest.NewRecorder()

	f.handler.GetBalance(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestWalletHandler_ListTransactions(t *testing.T) {
	f := newWalletHandlerFixture()

	// Provision the wallet, then seed entries directly.
	req := asCaller(httptest.NewRequest(http.MethodGet, "/wallet", nil), "user-1")
	f.handler.GetBalance(httptest.NewRecorder(), req)

	var resp dto.WalletResponse
	rec := httptest.NewRecorder()
	f.handler.GetBalance(rec, req)
	json.Unmarshal(rec.Body.Bytes(), &resp)

	for i := 1; i <= 5; i++ {
		f.txnRepo.Create(context.Background(), nil, &domain.Transaction{
			ID:        fmt.Sprintf("txn-%04d", i),
			WalletID:  resp.ID,
			Type:      domain.TxTopUp,
			Direction: domain.Credit,
			Amount:    decimal.NewFromInt(int64(i)),
			Currency:  "ZAR",
			Status:    domain.TxSuccess,
			CreatedAt: time.Now().UTC(),
		})
	}

	listReq := asCaller(httptest.NewRequest(http.MethodGet, "/wallet/transactions?limit=3", nil), "user-1")
	listRec := httptest.NewRecorder()
	f.handler.ListTransactions(listRec, listReq)

	if listRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", listRec.Code, listRec.Body.String())
	}

	var page dto.TransactionListResponse
	if err := json.Unmarshal(listRec.Body.Bytes(), &page); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(page.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(page.Items))
	}
	if page.Items[0].ID != "txn-0005" {
		t.Errorf("expected newest first, got %s", page.Items[0].ID)
	}
	if page.NextCursor == "" {
		t.Error("expected a next cursor on a partial page")
	}
}

func TestWalletHandler_CheckConsistency(t *testing.T) {
	f := newWalletHandlerFixture()

	req := asCaller(httptest.NewRequest(http.MethodGet, "/admin/ledger/consistency", nil), "admin-1")
	rec := httptest.NewRecorder()

	f.handler.CheckConsistency(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.ConsistencyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Discrepancies) != 0 {
		t.Errorf("empty ledger must report no discrepancies, got %+v", resp.Discrepancies)
	}
}
