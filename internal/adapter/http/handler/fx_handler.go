package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/adapter/http/dto"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/infrastructure/metrics"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/usecase"
)

// FXHandler serves best-effort currency conversion quotes. Quotes never
// touch the ledger.
type FXHandler struct {
	converter usecase.CurrencyConverter
	metrics   *metrics.Metrics
}

// NewFXHandler creates a new FXHandler.
func NewFXHandler(converter usecase.CurrencyConverter, m *metrics.Metrics) *FXHandler {
	return &FXHandler{converter: converter, metrics: m}
}

// Convert answers GET /fx/convert?amount&from&to.
func (h *FXHandler) Convert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, err := decimal.NewFromString(q.Get("amount"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}
	from, to := q.Get("from"), q.Get("to")

	converted, rate, err := h.converter.Convert(r.Context(), amount, from, to)
	if err != nil {
		if h.metrics != nil {
			h.metrics.FXLookups.WithLabelValues("error").Inc()
		}
		writeError(w, mapDomainError(err), "conversion failed", err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.FXLookups.WithLabelValues("ok").Inc()
	}
	writeJSON(w, http.StatusOK, dto.ConvertResponse{
		Amount:    amount,
		From:      from,
		To:        to,
		Converted: converted,
		Rate:      rate,
	})
}
