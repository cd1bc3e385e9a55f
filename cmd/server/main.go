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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/walletfy/internal/adapter/http"
	"github.com/iho/walletfy/internal/adapter/http/handler"
	"github.com/iho/walletfy/internal/adapter/http/middleware"
	"github.com/iho/walletfy/internal/app"
	"github.com/iho/walletfy/internal/infrastructure/config"
	"github.com/iho/walletfy/internal/infrastructure/logger"
)

const limiterCleanupInterval = 10 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a, err := app.New(ctx, cfg, log, app.Options{Registerer: registry})
	defer func() {
		if cerr := a.Close(); cerr != nil {
			log.Error().Err(cerr).Msg("failed to release resources")
		}
	}()
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      newHandler(cfg, a, registry, log),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return a.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newHandler(cfg *config.Config, a *app.App, registry *prometheus.Registry, log zerolog.Logger) http.Handler {
	checks := make(map[string]handler.HealthCheck, len(a.Checks))
	for name, check := range a.Checks {
		checks[name] = handler.HealthCheck(check)
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).
			OnReject(a.Metrics.RateLimitHits.Inc)
		go func() {
			ticker := time.NewTicker(limiterCleanupInterval)
			defer ticker.Stop()
			for range ticker.C {
				limiter.CleanupLimiters(limiterCleanupInterval)
			}
		}()
	}

	return httpAdapter.NewRouter(httpAdapter.RouterConfig{
		EventHandler:     handler.NewEventHandler(a.Store),
		BalanceHandler:   handler.NewBalanceHandler(a.Balances),
		SettingsHandler:  handler.NewSettingsHandler(a.Store),
		HealthHandler:    handler.NewHealthHandler(checks),
		Logger:           log.With().Str("component", "http").Logger(),
		Metrics:          a.Metrics,
		Gatherer:         registry,
		RateLimiter:      limiter,
		IdempotencyStore: a.Idempotency,
		IdempotencyTTL:   cfg.IdempotencyTTL,
	})
}
