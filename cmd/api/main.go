package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"digital-wallet/api"
	"digital-wallet/config"
	httpHandler "digital-wallet/internal/adapter/http/handler"
	"digital-wallet/internal/adapter/http/middleware"
	redisStorage "digital-wallet/internal/adapter/storage/redis"
	"digital-wallet/internal/core/ports"
	"digital-wallet/internal/service"
	"digital-wallet/pkg/logger"

	"github.com/joho/godotenv"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("DW_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	log.Info().
		Str("mode", cfg.Server.Mode).
		Str("storage", cfg.Storage.Driver).
		Int("port", cfg.Server.Port).
		Msg("Starting Digital Wallet")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("jwt.secret is required (DW_JWT_SECRET)")
	}

	ctx := context.Background()

	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialise storage")
	}
	defer st.close()

	healthCheckers := []ports.HealthChecker{st.health}

	// Redis is optional: without it there is no idempotency fast path
	// and no rate limiting.
	var (
		idempotencyCache ports.IdempotencyCache
		rateLimitStore   middleware.RateLimitStore
	)
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		log.Info().Msg("Redis connected")

		idempotencyCache = redisStorage.NewIdempotencyCache(rdb)
		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
	} else {
		log.Warn().Msg("Redis disabled: rate limiting and idempotency cache are off")
	}

	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:   service.NewAuthService(st.users, hashSvc, tokenSvc),
		WalletSvc: service.NewWalletService(st.wallets, st.transactions, st.transactor, log),
		SettlementSvc: service.NewSettlementService(
			st.transactions,
			st.wallets,
			st.items,
			st.idempotency,
			idempotencyCache,
			st.transactor,
			log,
		),
		QuerySvc:       service.NewQueryService(st.transactions),
		CatalogSvc:     service.NewCatalogService(st.merchants, st.items),
		TokenSvc:       tokenSvc,
		AuditSvc:       service.NewAuditService(st.audit, log),
		RateLimitStore: rateLimitStore,
		HealthCheckers: healthCheckers,
		OpenAPISpec:    api.OpenAPI,
		PageSize:       cfg.Pagination.PageSize,
		RequestTimeout: cfg.Server.RequestTimeout,
		Mode:           cfg.Server.Mode,
		Logger:         log,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
