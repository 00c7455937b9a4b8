package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/adapter/http/dto"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/adapter/http/middleware"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/domain"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/infrastructure/metrics"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/usecase"
)

// TransferHandler handles transfers, order settlement and admin adjustments.
type TransferHandler struct {
	transferUC *usecase.TransferUseCase
	metrics    *metrics.Metrics
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferUC *usecase.TransferUseCase, m *metrics.Metrics) *TransferHandler {
	return &TransferHandler{transferUC: transferUC, metrics: m}
}

// Create moves funds from the caller to another owner.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "")
		return
	}

	var req dto.CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.transferUC.Transfer(r.Context(), req.ToUseCaseInput(caller.UserID))
	if err != nil {
		status := mapDomainError(err)
		if h.metrics != nil && status != http.StatusInternalServerError {
			h.metrics.TransferErrors.WithLabelValues(errorType(err)).Inc()
		}
		writeError(w, status, "failed to create transfer", err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.TransfersCreated.Inc()
	}
	writeJSON(w, http.StatusCreated, dto.TransferResponse{
		OutTransactionID: result.OutTransactionID,
		InTransactionID:  result.InTransactionID,
		Balance:          result.FromBalance,
	})
}

// CreateOrder records a completed ride or marketplace order awaiting
// settlement, with the caller as buyer.
func (h *TransferHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "")
		return
	}

	var req dto.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	order, err := h.transferUC.RecordOrder(r.Context(), usecase.RecordOrderInput{
		BuyerID:  caller.UserID,
		SellerID: req.SellerID,
		Amount:   req.Amount,
		Kind:     domain.OrderKind(req.Kind),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to record order", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.OrderFromDomain(order))
}

// Settle moves the order amount from buyer to seller minus the platform fee.
// Settling an already-settled order is a safe no-op.
func (h *TransferHandler) Settle(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		writeError(w, http.StatusBadRequest, "missing order ID", "")
		return
	}

	result, err := h.transferUC.SettleOrder(r.Context(), orderID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to settle order", err.Error())
		return
	}

	if h.metrics != nil && !result.AlreadyDone {
		h.metrics.OrdersSettled.Inc()
		fee, _ := result.PlatformFee.Float64()
		h.metrics.PlatformFees.Observe(fee)
	}
	writeJSON(w, http.StatusOK, dto.SettleResponse{
		OrderID:        result.OrderID,
		Payout:         result.Payout,
		PlatformFee:    result.PlatformFee,
		AlreadySettled: result.AlreadyDone,
		TransactionID:  result.TransactionID,
	})
}

// AdminAdjust applies a signed balance delta to any wallet. The route is
// gated by the admin-role middleware before this handler runs.
func (h *TransferHandler) AdminAdjust(w http.ResponseWriter, r *http.Request) {
	var req dto.AdminAdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Reason == "" {
		writeError(w, http.StatusBadRequest, "missing reason", "")
		return
	}

	balance, err := h.transferUC.AdminAdjust(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to adjust wallet", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AdjustResponse{
		OwnerID: req.OwnerID,
		Balance: balance,
	})
}

func errorType(err error) string {
	switch mapDomainError(err) {
	case http.StatusUnprocessableEntity:
		return "insufficient_balance"
	case http.StatusNotFound:
		return "wallet_not_found"
	default:
		return "invalid_argument"
	}
}
