package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/iho/walletfy/internal/infrastructure/retry"
)

// PoolConfig configures the connection pool.
type PoolConfig struct {
	DatabaseURL string
	MaxConns    int
	MinConns    int
	// ConnectMaxElapsed bounds how long connecting is retried. Zero means one attempt.
	ConnectMaxElapsed time.Duration
	Logger            zerolog.Logger
}

// NewPoolWithConfig creates a pool and waits until the database answers a ping.
func NewPoolWithConfig(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	if cfg.MaxConns > 0 {
		config.MaxConns = int32(cfg.MaxConns)
	}
	config.MinConns = int32(cfg.MinConns)

	var pool *pgxpool.Pool

	err = retry.Connect(ctx, cfg.Logger, "postgres", cfg.ConnectMaxElapsed, func(ctx context.Context) error {
		p, err := pgxpool.NewWithConfig(ctx, config)
		if err != nil {
			return retry.Permanent(fmt.Errorf("failed to create connection pool: %w", err))
		}

		// Verify connection
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return fmt.Errorf("failed to ping database: %w", err)
		}

		pool = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	return pool, nil
}
