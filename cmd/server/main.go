package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/arefin/diamondledger/internal/adapter/chat"
	httpAdapter "github.com/arefin/diamondledger/internal/adapter/http"
	"github.com/arefin/diamondledger/internal/adapter/http/handler"
	"github.com/arefin/diamondledger/internal/adapter/repository/jsonfile"
	"github.com/arefin/diamondledger/internal/adapter/repository/memory"
	"github.com/arefin/diamondledger/internal/infrastructure/auth"
	"github.com/arefin/diamondledger/internal/infrastructure/config"
	"github.com/arefin/diamondledger/internal/infrastructure/lock"
	"github.com/arefin/diamondledger/internal/infrastructure/logger"
	"github.com/arefin/diamondledger/internal/infrastructure/metrics"
	"github.com/arefin/diamondledger/internal/infrastructure/redis"
	"github.com/arefin/diamondledger/internal/usecase"
)

func main() {
	// Setup bootstrap logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	appLog := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	defaultRate, err := decimal.NewFromString(cfg.DefaultRate)
	if err != nil {
		log.Fatal().Err(err).Str("value", cfg.DefaultRate).Msg("invalid DEFAULT_RATE")
	}
	maxDeposit, err := decimal.NewFromString(cfg.MaxDeposit)
	if err != nil {
		log.Fatal().Err(err).Str("value", cfg.MaxDeposit).Msg("invalid MAX_DEPOSIT")
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	// Open the flat-file store
	store, err := jsonfile.NewStore(cfg.DataDir, appLog, jsonfile.Hooks{
		OnSelfHeal:  func(name string) { m.StoreSelfHeals.WithLabelValues(name).Inc() },
		OnWriteFail: func(name string) { m.StoreWriteFails.WithLabelValues(name).Inc() },
	})
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("failed to open data dir")
	}
	appLog.Info().Str("dir", cfg.DataDir).Msg("data store ready")

	// Connect to Redis when configured; without it the API simply runs
	// without the idempotency layer.
	ctx := context.Background()
	var redisClient *goredis.Client
	var idempotencyStore usecase.IdempotencyStore
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		idempotencyStore = redis.NewIdempotencyStore(redisClient)
		appLog.Info().Msg("connected to redis")
	}

	// Initialize repositories
	accountRepo := jsonfile.NewAccountRepository(store)
	transactionRepo := jsonfile.NewTransactionRepository(store)
	groupRepo := jsonfile.NewGroupRepository(store, defaultRate)
	settingsRepo := jsonfile.NewSettingsRepository(store)
	adminRepo := jsonfile.NewAdminRepository(store, cfg.AdminPIN)
	depositStore := memory.NewDepositStore()
	idGen := memory.NewULIDGenerator()
	locks := lock.NewKeyed(cfg.LockTimeout)

	// Initialize use cases
	ledgerUC := usecase.NewLedgerUseCase(accountRepo, transactionRepo, groupRepo, locks, appLog)
	orderUC := usecase.NewOrderUseCase(groupRepo, settingsRepo, ledgerUC, appLog)
	depositUC := usecase.NewDepositUseCase(depositStore, ledgerUC, idGen, maxDeposit, appLog)
	settingsUC := usecase.NewSettingsUseCase(settingsRepo, appLog)
	adminUC := usecase.NewAdminUseCase(adminRepo, accountRepo, transactionRepo, groupRepo, locks, appLog)
	statsUC := usecase.NewStatsUseCase(accountRepo, transactionRepo, groupRepo, appLog)

	// Drop malformed ledger rows left behind by earlier versions.
	if dropped, err := adminUC.CleanTransactions(); err != nil {
		appLog.Warn().Err(err).Msg("transaction cleanup failed")
	} else if dropped > 0 {
		appLog.Info().Int("dropped", dropped).Msg("cleaned malformed transactions")
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	chatRouter := chat.NewRouter(ledgerUC, orderUC, depositUC, settingsUC, adminUC, m, appLog)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AuthHandler:        handler.NewAuthHandler(adminUC, jwtManager),
		UserHandler:        handler.NewUserHandler(ledgerUC, adminUC),
		GroupHandler:       handler.NewGroupHandler(orderUC),
		DepositHandler:     handler.NewDepositHandler(depositUC),
		SettingsHandler:    handler.NewSettingsHandler(settingsUC),
		StatsHandler:       handler.NewStatsHandler(statsUC),
		MaintenanceHandler: handler.NewMaintenanceHandler(adminUC),
		MessageHandler:     handler.NewMessageHandler(chatRouter),
		HealthHandler:      handler.NewHealthHandler(cfg.DataDir, redisClient),
		JWTManager:         jwtManager,
		IdempotencyStore:   idempotencyStore,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
		Logger:             appLog,
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
		appLog.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLog.Info().Msg("server stopped")
}
