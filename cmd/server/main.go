package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	httpAdapter "github.com/molefempho783-eng/Dayly-fiat-wallet/internal/adapter/http"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/adapter/http/handler"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/adapter/http/middleware"
	postgresRepo "github.com/molefempho783-eng/Dayly-fiat-wallet/internal/adapter/repository/postgres"
	redisRepo "github.com/molefempho783-eng/Dayly-fiat-wallet/internal/adapter/repository/redis"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/infrastructure/auth"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/infrastructure/config"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/infrastructure/fx"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/infrastructure/logger"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/infrastructure/metrics"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/infrastructure/payfast"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/infrastructure/postgres"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/infrastructure/redis"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Run migrations
	if err := postgres.RunMigrations(log, cfg.DatabaseURL, "migrations"); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	walletRepo := postgresRepo.NewWalletRepository(pool)
	txnRepo := postgresRepo.NewTransactionRepository(pool)
	paymentRepo := postgresRepo.NewPaymentRepository(pool)
	orderRepo := postgresRepo.NewOrderRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	cache := redisRepo.NewCache(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log)

	// Payment gateway
	gateway := payfast.NewClient(payfast.Config{
		MerchantID:   cfg.PayfastMerchantID,
		MerchantKey:  cfg.PayfastMerchantKey,
		Passphrase:   cfg.PayfastPassphrase,
		Sandbox:      cfg.PayfastSandbox,
		NotifyURL:    cfg.PayfastNotifyURL,
		ReturnURL:    cfg.PayfastReturnURL,
		CancelURL:    cfg.PayfastCancelURL,
		QueryTimeout: cfg.PayfastQueryTimeout,
	}, log)
	if !gateway.Configured() {
		log.Warn().Msg("payment gateway not configured; top-ups disabled")
	}

	// Currency conversion
	converter := fx.NewConverter(cfg.FXProviderURLs, cache, cfg.FXCacheTTL, log)

	// Initialize use cases
	feeRate := decimal.NewFromFloat(cfg.PlatformFeeRate)
	walletUC := usecase.NewWalletUseCase(walletRepo, txnRepo, idGen, cfg.BaseCurrency)
	paymentUC := usecase.NewPaymentUseCase(txManager, retrier, walletRepo, txnRepo, paymentRepo, gateway, idGen, cfg.BaseCurrency)
	transferUC := usecase.NewTransferUseCase(txManager, retrier, walletRepo, txnRepo, orderRepo, idGen, feeRate)

	// Initialize handlers
	m := metrics.New()
	walletHandler := handler.NewWalletHandler(walletUC)
	paymentHandler := handler.NewPaymentHandler(paymentUC, m)
	webhookHandler := handler.NewWebhookHandler(paymentUC, m, log)
	transferHandler := handler.NewTransferHandler(transferUC, m)
	fxHandler := handler.NewFXHandler(converter, m)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		WalletHandler:    walletHandler,
		PaymentHandler:   paymentHandler,
		WebhookHandler:   webhookHandler,
		TransferHandler:  transferHandler,
		FXHandler:        fxHandler,
		HealthHandler:    healthHandler,
		Verifier:         auth.NewVerifier(cfg.JWTSecret),
		IdempotencyStore: idempotencyStore,
		RateLimiter:      middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst),
		Logger:           log,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
