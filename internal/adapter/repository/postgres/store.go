// Package postgres stores ledger keys in the ledger_kv table of a PostgreSQL database.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iho/walletfy/internal/domain"
)

const (
	getQuery    = `SELECT value FROM ledger_kv WHERE key = $1`
	upsertQuery = `INSERT INTO ledger_kv (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
)

// querier is satisfied by *pgxpool.Pool, pgx.Tx and *pgx.Conn.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store implements repository.KVStore.
type Store struct {
	db      querier
	retrier *Retrier
}

// NewStore creates a new Store.
func NewStore(db querier, retrier *Retrier) *Store {
	return &Store{db: db, retrier: retrier}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	if err := s.db.QueryRow(ctx, getQuery, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStateNotFound
		}
		return nil, fmt.Errorf("select %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	err := s.retrier.Retry(ctx, func() error {
		_, err := s.db.Exec(ctx, upsertQuery, key, string(value))
		return err
	})
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}
