package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/walletfy/internal/adapter/http/handler"
	"github.com/iho/walletfy/internal/adapter/http/middleware"
	"github.com/iho/walletfy/internal/infrastructure/metrics"
	"github.com/iho/walletfy/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	EventHandler    *handler.EventHandler
	BalanceHandler  *handler.BalanceHandler
	SettingsHandler *handler.SettingsHandler
	HealthHandler   *handler.HealthHandler

	Logger           zerolog.Logger
	Metrics          *metrics.Metrics
	Gatherer         prometheus.Gatherer
	RateLimiter      *middleware.RateLimiter
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Events
		r.Route("/events", func(r chi.Router) {
			r.Get("/", cfg.EventHandler.List)
			r.Post("/", cfg.EventHandler.Create)
			r.Get("/{id}", cfg.EventHandler.Get)
			r.Patch("/{id}", cfg.EventHandler.Update)
			r.Delete("/{id}", cfg.EventHandler.Delete)
		})

		// Derived views
		r.Get("/balances", cfg.BalanceHandler.Months)
		r.Get("/summary", cfg.BalanceHandler.Summary)

		// Settings
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", cfg.SettingsHandler.Get)
			r.Get("/initial-balance", cfg.SettingsHandler.Get)
			r.Put("/initial-balance", cfg.SettingsHandler.SetInitialBalance)
			r.Post("/initial-balance/add", cfg.SettingsHandler.AddToInitialBalance)
			r.Put("/theme", cfg.SettingsHandler.SetTheme)
			r.Post("/theme/toggle", cfg.SettingsHandler.ToggleTheme)
		})
	})

	return r
}
