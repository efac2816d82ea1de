package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/mpavlik/tillbook/internal/adapter/http"
	"github.com/mpavlik/tillbook/internal/adapter/http/handler"
	postgresRepo "github.com/mpavlik/tillbook/internal/adapter/repository/postgres"
	redisRepo "github.com/mpavlik/tillbook/internal/adapter/repository/redis"
	"github.com/mpavlik/tillbook/internal/infrastructure/config"
	"github.com/mpavlik/tillbook/internal/infrastructure/logger"
	"github.com/mpavlik/tillbook/internal/infrastructure/metrics"
	"github.com/mpavlik/tillbook/internal/infrastructure/postgres"
	"github.com/mpavlik/tillbook/internal/infrastructure/redis"
	"github.com/mpavlik/tillbook/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	zerolog.DefaultContextLogger = &log.Logger

	ctx := context.Background()

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	saleRepo := postgresRepo.NewSaleRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	retrier := postgresRepo.NewRetrier()

	// Initialize use cases
	m := metrics.New()
	saleUC := usecase.NewSaleUseCase(txManager, saleRepo, entryRepo, m).WithRetrier(retrier)
	ledgerUC := usecase.NewLedgerUseCase(txManager, entryRepo, saleUC, m).WithRetrier(retrier)

	// Initialize handlers
	drawerHandler := handler.NewDrawerHandler(ledgerUC)
	entryHandler := handler.NewEntryHandler(ledgerUC)
	saleHandler := handler.NewSaleHandler(saleUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		DrawerHandler:    drawerHandler,
		EntryHandler:     entryHandler,
		SaleHandler:      saleHandler,
		HealthHandler:    healthHandler,
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		Logger:           log.Logger,
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
