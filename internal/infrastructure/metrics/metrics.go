package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the wallet service's Prometheus metrics.
type Metrics struct {
	// Payment metrics
	PaymentsCreated       prometheus.Counter
	PaymentsCredited      *prometheus.CounterVec // by path: webhook | verify
	WebhookDeliveries     *prometheus.CounterVec // by outcome
	WebhookBadSignatures  prometheus.Counter
	WebhookCreditFailures prometheus.Counter

	// Transfer metrics
	TransfersCreated prometheus.Counter
	TransferErrors   *prometheus.CounterVec
	OrdersSettled    prometheus.Counter
	PlatformFees     prometheus.Histogram

	// FX metrics
	FXLookups *prometheus.CounterVec // by result: ok | error
}

// New creates and registers all metrics.
func New() *Metrics {
	return &Metrics{
		PaymentsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wallet_payments_created_total",
			Help: "Total number of pending payments created",
		}),
		PaymentsCredited: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_payments_credited_total",
				Help: "Total number of top-ups credited, by reconciliation path",
			},
			[]string{"path"},
		),
		WebhookDeliveries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_webhook_deliveries_total",
				Help: "Total number of gateway webhook deliveries, by outcome",
			},
			[]string{"outcome"},
		),
		WebhookBadSignatures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wallet_webhook_bad_signatures_total",
			Help: "Total number of webhook deliveries rejected for a bad signature",
		}),
		WebhookCreditFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wallet_webhook_credit_failures_total",
			Help: "Total number of webhook credits that failed after a valid signature",
		}),
		TransfersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wallet_transfers_created_total",
			Help: "Total number of peer-to-peer transfers",
		}),
		TransferErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_transfer_errors_total",
				Help: "Total number of transfer errors by type",
			},
			[]string{"error_type"},
		),
		OrdersSettled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wallet_orders_settled_total",
			Help: "Total number of orders and rides settled",
		}),
		PlatformFees: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "wallet_platform_fee_amount",
			Help:    "Platform fees withheld at settlement",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000},
		}),
		FXLookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_fx_lookups_total",
				Help: "Total number of FX rate lookups by result",
			},
			[]string{"result"},
		),
	}
}
