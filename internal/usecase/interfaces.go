package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/walletfy/internal/domain"
)

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// LedgerRepository persists the two independent parts of the ledger.
// Load methods return domain.ErrStateNotFound when nothing was ever saved.
type LedgerRepository interface {
	LoadEvents(ctx context.Context) ([]domain.FinancialEvent, error)
	SaveEvents(ctx context.Context, events []domain.FinancialEvent) error
	LoadSettings(ctx context.Context) (domain.Settings, error)
	SaveSettings(ctx context.Context, settings domain.Settings) error
}

// LedgerReader exposes a consistent copy of the ledger.
type LedgerReader interface {
	Snapshot() domain.LedgerState
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// ChangeNotifier is told about every committed mutation.
// Implementations must not block.
type ChangeNotifier interface {
	Notify(ctx context.Context, change domain.LedgerChange)
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release frees a key whose request failed so it can be retried.
	Release(ctx context.Context, key string) error
}

// IsIdempotencyProcessing reports whether a stored value is the in-flight marker.
func IsIdempotencyProcessing(value []byte) bool {
	return string(value) == IdempotencyProcessing
}

// Recorder receives operational measurements.
type Recorder interface {
	MutationCompleted(op string, err error)
	AggregationComputed(d time.Duration, months int)
	CacheLookup(hit bool)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, domain.LedgerChange) {}

type nopRecorder struct{}

func (nopRecorder) MutationCompleted(string, error) {}
func (nopRecorder) AggregationComputed(time.Duration, int) {}
func (nopRecorder) CacheLookup(bool) {}
