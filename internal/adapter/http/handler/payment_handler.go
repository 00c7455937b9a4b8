package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/adapter/http/dto"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/adapter/http/middleware"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/infrastructure/metrics"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/usecase"
)

// PaymentHandler handles gateway top-up requests.
type PaymentHandler struct {
	paymentUC *usecase.PaymentUseCase
	metrics   *metrics.Metrics
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentUC *usecase.PaymentUseCase, m *metrics.Metrics) *PaymentHandler {
	return &PaymentHandler{paymentUC: paymentUC, metrics: m}
}

// Create starts a top-up: builds the signed gateway request, persists the
// PENDING payment and hands the redirect data back to the client.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "")
		return
	}

	var req dto.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.paymentUC.CreatePayment(r.Context(), req.ToUseCaseInput(caller.UserID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create payment", err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.PaymentsCreated.Inc()
	}
	writeJSON(w, http.StatusCreated, dto.CreatePaymentResponse{
		PaymentID:   result.PaymentID,
		PaymentURL:  result.PaymentURL,
		PaymentData: result.PaymentData,
	})
}

// Verify is the client-triggered reconciliation path after the browser flow.
// PENDING is a normal answer; the client polls.
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "")
		return
	}

	paymentID := chi.URLParam(r, "id")
	if paymentID == "" {
		writeError(w, http.StatusBadRequest, "missing payment ID", "")
		return
	}

	result, err := h.paymentUC.VerifyPayment(r.Context(), caller.UserID, paymentID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to verify payment", err.Error())
		return
	}

	if result.Status == usecase.VerifySuccess && h.metrics != nil {
		h.metrics.PaymentsCredited.WithLabelValues("verify").Inc()
	}
	writeJSON(w, http.StatusOK, dto.VerifyPaymentResponse{
		Status:        string(result.Status),
		Credited:      result.Credited,
		Currency:      result.Currency,
		PaymentMethod: result.PaymentMethod,
	})
}
