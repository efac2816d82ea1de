package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/mpavlik/tillbook/internal/adapter/http/handler"
	"github.com/mpavlik/tillbook/internal/adapter/http/middleware"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	DrawerHandler    *handler.DrawerHandler
	EntryHandler     *handler.EntryHandler
	SaleHandler      *handler.SaleHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore middleware.IdempotencyStore
	IdempotencyTTL   time.Duration
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)

	// Health and observability endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Drawer
		r.Route("/drawer", func(r chi.Router) {
			r.Get("/balance", cfg.DrawerHandler.Balance)
			r.Post("/deposits", cfg.DrawerHandler.Deposit)
			r.Post("/withdrawals", cfg.DrawerHandler.Withdraw)
		})

		// Entries
		r.Route("/entries", func(r chi.Router) {
			r.Get("/", cfg.EntryHandler.List)
			r.Delete("/", cfg.EntryHandler.DeleteAll)
			r.Get("/{id}", cfg.EntryHandler.Get)
			r.Delete("/{id}", cfg.EntryHandler.Delete)
		})

		// Sales
		r.Route("/sales", func(r chi.Router) {
			r.Post("/", cfg.SaleHandler.Create)
			r.Get("/", cfg.SaleHandler.List)
			r.Delete("/", cfg.SaleHandler.DeleteAll)
			r.Get("/{id}", cfg.SaleHandler.Get)
			r.Delete("/{id}", cfg.SaleHandler.Delete)
		})
	})

	return r
}
