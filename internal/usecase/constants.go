package usecase

import "time"

const (
	// DefaultPersistTimeout bounds a single durable write.
	DefaultPersistTimeout = 10 * time.Second

	// DefaultBalanceCacheTTL is how long computed monthly balances are cached.
	DefaultBalanceCacheTTL = 5 * time.Minute

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// IdempotencyProcessing is stored under a key while its first request runs.
	IdempotencyProcessing = "processing"

	balanceCacheKeyPrefix = "walletfy:balances:"
)

// Mutation names reported to the Recorder.
const (
	OpCreateEvent         = "create_event"
	OpUpdateEvent         = "update_event"
	OpDeleteEvent         = "delete_event"
	OpSetInitialBalance   = "set_initial_balance"
	OpAddToInitialBalance = "add_to_initial_balance"
	OpSetTheme            = "set_theme"
	OpToggleTheme         = "toggle_theme"
)
