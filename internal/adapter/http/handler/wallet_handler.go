package handler

import (
	"net/http"

	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/adapter/http/dto"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/adapter/http/middleware"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/usecase"
)

// WalletHandler handles wallet read requests.
type WalletHandler struct {
	walletUC *usecase.WalletUseCase
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletUC *usecase.WalletUseCase) *WalletHandler {
	return &WalletHandler{walletUC: walletUC}
}

// GetBalance returns the caller's wallet, provisioning one on first touch.
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "")
		return
	}

	wallet, err := h.walletUC.GetBalance(r.Context(), caller.UserID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get wallet", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletFromDomain(wallet))
}

// ListTransactions returns one page of the caller's transaction log,
// most recent first.
func (h *WalletHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "")
		return
	}

	result, err := h.walletUC.ListTransactions(r.Context(), usecase.ListTransactionsInput{
		OwnerID: caller.UserID,
		Limit:   parseIntQuery(r, "limit", 20),
		Cursor:  r.URL.Query().Get("cursor"),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionListFromResult(result))
}

// CheckConsistency runs the ledger-wide consistency check. Admin only.
func (h *WalletHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.walletUC.CheckConsistency(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "consistency check failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyFromReport(report))
}
