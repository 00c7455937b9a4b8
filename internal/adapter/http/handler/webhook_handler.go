package handler

import (
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/domain"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/infrastructure/metrics"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/usecase"
)

const maxWebhookBody = 64 << 10

// WebhookHandler receives gateway payment notifications. The endpoint is
// public and unauthenticated; the field signature is the only trust anchor.
type WebhookHandler struct {
	paymentUC *usecase.PaymentUseCase
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(paymentUC *usecase.PaymentUseCase, m *metrics.Metrics, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{paymentUC: paymentUC, metrics: m, logger: logger}
}

// Notify handles one webhook delivery. Delivery is at-least-once: any
// outcome past the signature check is acknowledged with 200 and body "OK"
// so the gateway stops retrying; the client verify path covers anything
// the webhook could not finish.
func (h *WebhookHandler) Notify(w http.ResponseWriter, r *http.Request) {
	fields, err := parseWebhookBody(r)
	if err != nil {
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}

	outcome, err := h.paymentUC.HandleNotify(r.Context(), fields)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBadSignature):
			h.count("bad_signature")
			if h.metrics != nil {
				h.metrics.WebhookBadSignatures.Inc()
			}
			h.logger.Warn().Str("m_payment_id", fields["m_payment_id"]).Msg("webhook signature mismatch")
			http.Error(w, "bad signature", http.StatusBadRequest)
		case errors.Is(err, domain.ErrInvalidArgument):
			h.count("malformed")
			http.Error(w, "missing fields", http.StatusBadRequest)
		default:
			// Signature checked out but the credit failed. Acknowledge
			// anyway: a retry storm will not fix a store problem, and the
			// client verify path re-drives the credit.
			h.count("credit_failed")
			if h.metrics != nil {
				h.metrics.WebhookCreditFailures.Inc()
			}
			h.logger.Error().Err(err).Str("m_payment_id", fields["m_payment_id"]).Msg("webhook credit failed")
			h.ack(w)
		}
		return
	}

	switch outcome {
	case usecase.NotifyCredited:
		h.count("credited")
		if h.metrics != nil {
			h.metrics.PaymentsCredited.WithLabelValues("webhook").Inc()
		}
	case usecase.NotifyDuplicate:
		h.count("duplicate")
	case usecase.NotifyIgnored:
		h.count("ignored")
	case usecase.NotifyUnknownPayment:
		h.count("unknown_payment")
		h.logger.Warn().Str("m_payment_id", fields["m_payment_id"]).Msg("webhook for unknown payment")
	}
	h.ack(w)
}

func (h *WebhookHandler) ack(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *WebhookHandler) count(outcome string) {
	if h.metrics != nil {
		h.metrics.WebhookDeliveries.WithLabelValues(outcome).Inc()
	}
}

// parseWebhookBody decodes the form-encoded body into a flat field map.
// The body is read raw and parsed with url.ParseQuery rather than
// r.ParseForm so query-string parameters can never shadow body fields on
// this unauthenticated endpoint.
func parseWebhookBody(r *http.Request) (map[string]string, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		return nil, err
	}
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, err
	}

	fields := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			fields[key] = vals[0]
		}
	}
	return fields, nil
}
