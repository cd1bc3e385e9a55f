// Package app wires configuration into a running ledger: storage backend,
// aggregation cache, change publisher and metrics.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/walletfy/internal/adapter/repository"
	"github.com/iho/walletfy/internal/adapter/repository/file"
	"github.com/iho/walletfy/internal/adapter/repository/memory"
	pgrepo "github.com/iho/walletfy/internal/adapter/repository/postgres"
	redisrepo "github.com/iho/walletfy/internal/adapter/repository/redis"
	sqliterepo "github.com/iho/walletfy/internal/adapter/repository/sqlite"
	"github.com/iho/walletfy/internal/domain"
	"github.com/iho/walletfy/internal/infrastructure/config"
	"github.com/iho/walletfy/internal/infrastructure/eventpublisher"
	"github.com/iho/walletfy/internal/infrastructure/metrics"
	"github.com/iho/walletfy/internal/infrastructure/postgres"
	redisinfra "github.com/iho/walletfy/internal/infrastructure/redis"
	"github.com/iho/walletfy/internal/infrastructure/sqlite"
	"github.com/iho/walletfy/internal/usecase"
)

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

// App holds the wired services.
type App struct {
	Store       *usecase.EventStore
	Balances    *usecase.BalanceService
	Metrics     *metrics.Metrics
	Publisher   *eventpublisher.EventPublisher
	Idempotency usecase.IdempotencyStore
	Checks      map[string]Check

	logger  zerolog.Logger
	closers []func() error
}

// Options adjust wiring that is not part of the environment.
type Options struct {
	// Registerer receives the metrics. Nil uses the default registerer.
	Registerer prometheus.Registerer
	// KV replaces the configured backend.
	KV repository.KVStore
}

// New builds the application from cfg. Close must be called to release
// connections even when New returns an error.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts Options) (*App, error) {
	a := &App{
		Metrics: metrics.New(opts.Registerer),
		Checks:  make(map[string]Check),
		logger:  logger,
	}

	locale, err := domain.ParseLocale(cfg.Locale)
	if err != nil {
		return a, err
	}

	var redisClient *goredis.Client
	if cfg.UsesRedis() {
		redisClient, err = redisinfra.NewClientWithRetry(ctx, cfg.RedisURL, cfg.ConnectMaxElapsed, logger)
		if err != nil {
			return a, fmt.Errorf("connect redis: %w", err)
		}
		a.onClose(redisClient.Close)
		a.Checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		a.Idempotency = redisrepo.NewIdempotencyStore(redisClient)
	}

	kv := opts.KV
	if kv == nil {
		kv, err = a.openBackend(ctx, cfg, redisClient)
		if err != nil {
			return a, err
		}
	}

	var notifier usecase.ChangeNotifier
	if cfg.Publisher != config.PublisherNone {
		publisher, err := a.newPublisher(cfg)
		if err != nil {
			return a, err
		}
		a.Publisher = eventpublisher.NewEventPublisher(eventpublisher.Config{
			Publisher: publisher,
			Stats:     a.Metrics,
			Logger:    logger.With().Str("component", "publisher").Logger(),
		})
		notifier = a.Publisher
	}

	a.Store, err = usecase.OpenEventStore(ctx,
		repository.NewLedgerRepository(kv),
		repository.NewULIDGenerator(),
		usecase.WithNotifier(notifier),
		usecase.WithRecorder(a.Metrics),
		usecase.WithLogger(logger.With().Str("component", "store").Logger()),
		usecase.WithSampleData(cfg.SeedSampleData),
	)
	if err != nil {
		return a, fmt.Errorf("open ledger: %w", err)
	}

	balanceOpts := []usecase.BalanceOption{
		usecase.WithBalanceLocale(locale),
		usecase.WithBalanceLocation(cfg.Location()),
		usecase.WithBalanceRecorder(a.Metrics),
		usecase.WithBalanceLogger(logger.With().Str("component", "balances").Logger()),
	}
	if cfg.CacheEnabled && redisClient != nil {
		balanceOpts = append(balanceOpts, usecase.WithBalanceCache(redisrepo.NewCache(redisClient), cfg.CacheTTL))
	}
	a.Balances = usecase.NewBalanceService(a.Store, balanceOpts...)

	logger.Info().
		Str("backend", cfg.StorageBackend).
		Str("publisher", cfg.Publisher).
		Str("locale", locale.String()).
		Bool("cache", cfg.CacheEnabled).
		Int("events", len(a.Store.ListEvents())).
		Msg("ledger ready")

	return a, nil
}

func (a *App) openBackend(ctx context.Context, cfg *config.Config, redisClient *goredis.Client) (repository.KVStore, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return memory.NewStore(), nil

	case config.BackendFile:
		store, err := file.NewStore(cfg.DataDir, a.logger)
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		return store, nil

	case config.BackendSQLite:
		db, err := sqlite.Open(ctx, filepath.Clean(cfg.SQLitePath), a.logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		a.onClose(db.Close)
		a.Checks["sqlite"] = db.PingContext
		return sqliterepo.NewStore(db), nil

	case config.BackendPostgres:
		if err := postgres.RunMigrations(cfg.DatabaseURL, a.logger); err != nil {
			return nil, err
		}
		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:       cfg.DatabaseURL,
			MaxConns:          cfg.DatabaseMaxConns,
			MinConns:          cfg.DatabaseMinConns,
			ConnectMaxElapsed: cfg.ConnectMaxElapsed,
			Logger:            a.logger,
		})
		if err != nil {
			return nil, err
		}
		a.onClose(func() error { pool.Close(); return nil })
		a.Checks["postgres"] = pool.Ping
		return pgrepo.NewStore(pool, pgrepo.NewRetrier(a.logger)), nil

	case config.BackendRedis:
		if redisClient == nil {
			return nil, errors.New("redis backend requires a redis client")
		}
		return redisrepo.NewStore(redisClient), nil

	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.StorageBackend)
	}
}

func (a *App) newPublisher(cfg *config.Config) (eventpublisher.Publisher, error) {
	switch cfg.Publisher {
	case config.PublisherLog:
		return eventpublisher.NewLogPublisher(a.logger.With().Str("component", "changes").Logger()), nil
	case config.PublisherAMQP:
		p, err := eventpublisher.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, a.logger)
		if err != nil {
			return nil, fmt.Errorf("connect amqp: %w", err)
		}
		a.onClose(p.Close)
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported publisher: %s", cfg.Publisher)
	}
}

// Run starts background workers and blocks until ctx is done.
func (a *App) Run(ctx context.Context) error {
	if a.Publisher == nil {
		<-ctx.Done()
		return nil
	}

	if err := a.Publisher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (a *App) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
