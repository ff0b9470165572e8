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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/fxledger/internal/adapter/http"
	"github.com/iho/fxledger/internal/adapter/http/dto"
	"github.com/iho/fxledger/internal/adapter/http/handler"
	"github.com/iho/fxledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/fxledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/fxledger/internal/adapter/repository/redis"
	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/infrastructure/config"
	"github.com/iho/fxledger/internal/infrastructure/logger"
	"github.com/iho/fxledger/internal/infrastructure/metrics"
	"github.com/iho/fxledger/internal/infrastructure/postgres"
	"github.com/iho/fxledger/internal/infrastructure/redis"
	"github.com/iho/fxledger/internal/usecase"
)

const limiterCleanupInterval = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Logger = logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: os.Stderr,
	})

	if err := run(cfg, log.Logger); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.DatabaseTimeout)
	pool, err := postgres.NewPoolWithConfig(connectCtx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
	})
	cancel()
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer pool.Close()
	logger.Info().Msg("connected to postgres")

	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer redisClient.Close()
		logger.Info().Msg("connected to redis")
	} else {
		logger.Warn().Msg("REDIS_URL is empty, running without currency cache and request replay")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	routerCfg := buildRouterConfig(cfg, pool, redisClient, m, logger)
	routerCfg.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})

	if routerCfg.RateLimiter != nil {
		go cleanupLimiters(ctx, routerCfg.RateLimiter, limiterCleanupInterval)
	}

	server := &http.Server{
		Addr:         listenAddr(cfg),
		Handler:      httpAdapter.NewRouter(routerCfg),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}

// buildRouterConfig wires repositories, use cases and handlers. redisClient
// may be nil.
func buildRouterConfig(
	cfg *config.Config,
	pool *pgxpool.Pool,
	redisClient *goredis.Client,
	m *metrics.Metrics,
	logger zerolog.Logger,
) httpAdapter.RouterConfig {
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	journalRepo := postgresRepo.NewJournalRepository(pool)
	eventRepo := postgresRepo.NewRateEventRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(logger)

	var currencyRepo usecase.CurrencyRepository = postgresRepo.NewCurrencyRepository(pool)
	var idempotencyStore usecase.IdempotencyStore
	var redisPinger handler.Pinger
	if redisClient != nil {
		currencyRepo = redisRepo.NewCurrencyCache(currencyRepo, redisRepo.NewCache(redisClient), cfg.CurrencyCacheTTL, logger)
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		redisPinger = handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	ledgerUC := usecase.NewLedgerUseCase(txManager, accountRepo, currencyRepo, journalRepo, eventRepo, idGen, retrier, m,
		usecase.LedgerOptions{ForbidSelfReference: cfg.ForbidSelfReference})
	balanceUC := usecase.NewBalanceUseCase(journalRepo, currencyRepo, m)
	accountUC := usecase.NewAccountUseCase(accountRepo, currencyRepo, idGen, domain.SystemClock)
	currencyUC := usecase.NewCurrencyUseCase(txManager, currencyRepo, eventRepo, idGen, domain.SystemClock, logger)
	fxAuditUC := usecase.NewFXAuditUseCase(txManager, eventRepo, domain.SystemClock, m, logger)

	return httpAdapter.RouterConfig{
		TransactionHandler: handler.NewTransactionHandler(ledgerUC),
		BalanceHandler:     handler.NewBalanceHandler(balanceUC),
		AccountHandler:     handler.NewAccountHandler(accountUC),
		CurrencyHandler:    handler.NewCurrencyHandler(currencyUC),
		FXAuditHandler:     handler.NewFXAuditHandler(fxAuditUC, ttlDefaults(cfg)),
		HealthHandler:      handler.NewHealthHandler(pool, redisPinger),
		IdempotencyStore:   idempotencyStore,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		RateLimiter:        newRateLimiter(cfg, m),
		Metrics:            m,
		Logger:             logger,
	}
}

func listenAddr(cfg *config.Config) string {
	return fmt.Sprintf(":%s", cfg.HTTPPort)
}

func ttlDefaults(cfg *config.Config) dto.TTLDefaults {
	return dto.TTLDefaults{
		RetentionDays: cfg.TTLRetentionDays,
		BatchSize:     cfg.TTLBatchSize,
		Mode:          cfg.TTLMode,
	}
}

// newRateLimiter returns nil when limiting is disabled (RATE_LIMIT_RPS <= 0).
func newRateLimiter(cfg *config.Config, m *metrics.Metrics) *middleware.RateLimiter {
	if cfg.RateLimitRPS <= 0 {
		return nil
	}

	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 1
	}

	rl := middleware.NewRateLimiter(cfg.RateLimitRPS, burst)
	if m != nil {
		rl = rl.WithHitCounter(m.RateLimitHits)
	}
	return rl
}

func cleanupLimiters(ctx context.Context, rl *middleware.RateLimiter, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.CleanupLimiters()
		}
	}
}
