package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/adapter/http/handler"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/adapter/http/middleware"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/infrastructure/auth"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	WalletHandler    *handler.WalletHandler
	PaymentHandler   *handler.PaymentHandler
	WebhookHandler   *handler.WebhookHandler
	TransferHandler  *handler.TransferHandler
	FXHandler        *handler.FXHandler
	HealthHandler    *handler.HealthHandler
	Verifier         *auth.Verifier
	IdempotencyStore usecase.IdempotencyStore
	RateLimiter      *middleware.RateLimiter
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)

	// Health and observability endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// Public gateway callback; the field signature is the only trust anchor.
	r.Post("/webhooks/payfast", cfg.WebhookHandler.Notify)

	// API v1: bearer-token callers only.
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}
		r.Use(middleware.Auth(cfg.Verifier))
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Wallet
		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", cfg.WalletHandler.GetBalance)
			r.Get("/transactions", cfg.WalletHandler.ListTransactions)
		})

		// Payments
		r.Route("/payments", func(r chi.Router) {
			r.Post("/", cfg.PaymentHandler.Create)
			r.Get("/{id}/verify", cfg.PaymentHandler.Verify)
		})

		// Transfers
		r.Post("/transfers", cfg.TransferHandler.Create)

		// Orders
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", cfg.TransferHandler.CreateOrder)
			r.Post("/{id}/settle", cfg.TransferHandler.Settle)
		})

		// Currency conversion
		r.Get("/fx/convert", cfg.FXHandler.Convert)

		// Admin
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Post("/adjust", cfg.TransferHandler.AdminAdjust)
			r.Get("/ledger/consistency", cfg.WalletHandler.CheckConsistency)
		})
	})

	return r
}
