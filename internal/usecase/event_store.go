package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/walletfy/internal/domain"
)

// EventStore is the single source of truth for events and settings.
// Every successful mutation is persisted before it becomes visible; a
// failed write leaves the in-memory state untouched.
type EventStore struct {
	mu    sync.RWMutex
	state domain.LedgerState

	repo     LedgerRepository
	idGen    IDGenerator
	notifier ChangeNotifier
	recorder Recorder
	logger   zerolog.Logger
	seed     bool
	clock    func() time.Time
}

// StoreOption configures an EventStore.
type StoreOption func(*EventStore)

// WithNotifier registers the observer told about committed mutations.
func WithNotifier(n ChangeNotifier) StoreOption {
	return func(s *EventStore) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) StoreOption {
	return func(s *EventStore) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *EventStore) {
		s.logger = logger
	}
}

// WithSampleData controls whether a never-saved ledger starts with the
// sample events and default initial balance. Enabled by default.
func WithSampleData(enabled bool) StoreOption {
	return func(s *EventStore) {
		s.seed = enabled
	}
}

// WithClock overrides the time source used to stamp changes.
func WithClock(clock func() time.Time) StoreOption {
	return func(s *EventStore) {
		s.clock = clock
	}
}

// OpenEventStore loads the ledger from repo, seeding it when nothing was saved yet.
func OpenEventStore(ctx context.Context, repo LedgerRepository, idGen IDGenerator, opts ...StoreOption) (*EventStore, error) {
	s := &EventStore{
		repo:     repo,
		idGen:    idGen,
		notifier: nopNotifier{},
		recorder: nopRecorder{},
		logger:   zerolog.Nop(),
		seed:     true,
		clock:    func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(s)
	}

	if err := s.load(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *EventStore) load(ctx context.Context) error {
	events, err := s.repo.LoadEvents(ctx)
	seedEvents := errors.Is(err, domain.ErrStateNotFound)

	switch {
	case seedEvents && s.seed:
		events = domain.SampleEvents()
	case seedEvents:
		events = []domain.FinancialEvent{}
	case err != nil:
		return fmt.Errorf("load events: %w", err)
	}

	settings, err := s.repo.LoadSettings(ctx)
	seedSettings := errors.Is(err, domain.ErrStateNotFound)

	switch {
	case seedSettings && s.seed:
		settings = domain.DefaultSettings()
	case seedSettings:
		settings = domain.Settings{InitialBalance: decimal.Zero, Theme: domain.ThemeLight}
	case err != nil:
		return fmt.Errorf("load settings: %w", err)
	}

	if seedEvents && s.seed {
		if err := s.repo.SaveEvents(ctx, events); err != nil {
			return &domain.PersistenceError{Op: "seed events", Err: err}
		}
		s.logger.Info().Int("events", len(events)).Msg("seeded sample events")
	}

	if seedSettings && s.seed {
		if err := s.repo.SaveSettings(ctx, settings); err != nil {
			return &domain.PersistenceError{Op: "seed settings", Err: err}
		}
		s.logger.Info().Str("initial_balance", settings.InitialBalance.String()).Msg("seeded default settings")
	}

	s.state = domain.LedgerState{Settings: settings, Events: events}

	return nil
}

// CreateEvent validates the draft, assigns a fresh id and stores the event.
func (s *EventStore) CreateEvent(ctx context.Context, draft domain.EventDraft) (domain.FinancialEvent, error) {
	var created domain.FinancialEvent

	err := s.apply(ctx, OpCreateEvent, func() (domain.LedgerChange, error) {
		valid, err := domain.ParseDraft(draft)
		if err != nil {
			return domain.LedgerChange{}, err
		}

		event := valid.NewEvent(s.idGen.Generate())
		if s.indexOf(event.ID) >= 0 {
			return domain.LedgerChange{}, fmt.Errorf("generated id %s is already in use", event.ID)
		}

		next := append(domain.CloneEvents(s.state.Events), event)
		if err := s.saveEvents(ctx, next); err != nil {
			return domain.LedgerChange{}, err
		}

		created = event
		return domain.LedgerChange{Kind: domain.ChangeEventCreated, EventID: event.ID}, nil
	})

	return created, err
}

// UpdateEvent merges patch into the event and re-validates the result.
// The id is never changed.
func (s *EventStore) UpdateEvent(ctx context.Context, id string, patch domain.EventPatch) (domain.FinancialEvent, error) {
	var updated domain.FinancialEvent

	err := s.apply(ctx, OpUpdateEvent, func() (domain.LedgerChange, error) {
		idx := s.indexOf(id)
		if idx < 0 {
			return domain.LedgerChange{}, &domain.NotFoundError{ID: id}
		}

		valid, err := domain.ParseDraft(patch.Apply(s.state.Events[idx].Draft()))
		if err != nil {
			return domain.LedgerChange{}, err
		}

		next := domain.CloneEvents(s.state.Events)
		next[idx] = valid.NewEvent(id)

		if err := s.saveEvents(ctx, next); err != nil {
			return domain.LedgerChange{}, err
		}

		updated = next[idx]
		return domain.LedgerChange{Kind: domain.ChangeEventUpdated, EventID: id}, nil
	})

	return updated, err
}

// DeleteEvent removes the event. Deleting an absent id is a NotFoundError.
func (s *EventStore) DeleteEvent(ctx context.Context, id string) error {
	return s.apply(ctx, OpDeleteEvent, func() (domain.LedgerChange, error) {
		idx := s.indexOf(id)
		if idx < 0 {
			return domain.LedgerChange{}, &domain.NotFoundError{ID: id}
		}

		next := make([]domain.FinancialEvent, 0, len(s.state.Events)-1)
		next = append(next, s.state.Events[:idx]...)
		next = append(next, s.state.Events[idx+1:]...)

		if err := s.saveEvents(ctx, next); err != nil {
			return domain.LedgerChange{}, err
		}

		return domain.LedgerChange{Kind: domain.ChangeEventDeleted, EventID: id}, nil
	})
}

// SetInitialBalance replaces the initial balance. Negative values are allowed.
func (s *EventStore) SetInitialBalance(ctx context.Context, value decimal.Decimal) (domain.Settings, error) {
	var settings domain.Settings

	err := s.apply(ctx, OpSetInitialBalance, func() (domain.LedgerChange, error) {
		next := s.state.Settings
		next.InitialBalance = value

		if err := s.saveSettings(ctx, next); err != nil {
			return domain.LedgerChange{}, err
		}

		settings = next
		return domain.LedgerChange{Kind: domain.ChangeBalanceUpdated}, nil
	})

	return settings, err
}

// AddToInitialBalance tops up the initial balance by a positive amount.
func (s *EventStore) AddToInitialBalance(ctx context.Context, amount decimal.Decimal) (domain.Settings, error) {
	var settings domain.Settings

	err := s.apply(ctx, OpAddToInitialBalance, func() (domain.LedgerChange, error) {
		if err := domain.ValidateTopUp(amount); err != nil {
			return domain.LedgerChange{}, err
		}

		next := s.state.Settings
		next.InitialBalance = next.InitialBalance.Add(amount)

		if err := s.saveSettings(ctx, next); err != nil {
			return domain.LedgerChange{}, err
		}

		settings = next
		return domain.LedgerChange{Kind: domain.ChangeBalanceUpdated}, nil
	})

	return settings, err
}

// SetTheme stores the display preference.
func (s *EventStore) SetTheme(ctx context.Context, theme domain.Theme) (domain.Settings, error) {
	return s.updateTheme(ctx, OpSetTheme, func(domain.Theme) domain.Theme { return theme })
}

// ToggleTheme flips between light and dark.
func (s *EventStore) ToggleTheme(ctx context.Context) (domain.Settings, error) {
	return s.updateTheme(ctx, OpToggleTheme, domain.Theme.Toggle)
}

// updateTheme derives the new theme from the current one under the write lock.
func (s *EventStore) updateTheme(ctx context.Context, op string, next func(domain.Theme) domain.Theme) (domain.Settings, error) {
	var settings domain.Settings

	err := s.apply(ctx, op, func() (domain.LedgerChange, error) {
		updated := s.state.Settings
		updated.Theme = next(updated.Theme)

		if err := domain.ValidateTheme(updated.Theme); err != nil {
			return domain.LedgerChange{}, err
		}

		if err := s.saveSettings(ctx, updated); err != nil {
			return domain.LedgerChange{}, err
		}

		settings = updated
		return domain.LedgerChange{Kind: domain.ChangeThemeUpdated}, nil
	})

	return settings, err
}

// GetEvent returns a single event.
func (s *EventStore) GetEvent(id string) (domain.FinancialEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return domain.FinancialEvent{}, &domain.NotFoundError{ID: id}
	}

	return s.state.Events[idx], nil
}

// ListEvents returns a copy of the collection in storage order.
func (s *EventStore) ListEvents() []domain.FinancialEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.CloneEvents(s.state.Events)
}

// Settings returns the current settings.
func (s *EventStore) Settings() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.Settings
}

// Snapshot returns a consistent copy of the whole ledger.
func (s *EventStore) Snapshot() domain.LedgerState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.LedgerState{
		Settings: s.state.Settings,
		Events:   domain.CloneEvents(s.state.Events),
	}
}

// apply runs fn under the write lock, then reports and announces the outcome
// once the lock is released.
func (s *EventStore) apply(ctx context.Context, op string, fn func() (domain.LedgerChange, error)) error {
	s.mu.Lock()
	change, err := fn()
	s.mu.Unlock()

	s.recorder.MutationCompleted(op, err)

	if err != nil {
		event := s.logger.Debug()
		if errors.Is(err, domain.ErrPersistence) {
			event = s.logger.Error()
		}
		event.Err(err).Str("op", op).Msg("ledger mutation failed")
		return err
	}

	change.OccurredAt = s.clock()
	s.notifier.Notify(ctx, change)

	s.logger.Debug().Str("op", op).Str("event_id", change.EventID).Msg("ledger mutation committed")

	return nil
}

func (s *EventStore) saveEvents(ctx context.Context, next []domain.FinancialEvent) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultPersistTimeout)
	defer cancel()

	if err := s.repo.SaveEvents(ctx, next); err != nil {
		return &domain.PersistenceError{Op: "save events", Err: err}
	}

	s.state.Events = next
	return nil
}

func (s *EventStore) saveSettings(ctx context.Context, next domain.Settings) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultPersistTimeout)
	defer cancel()

	if err := s.repo.SaveSettings(ctx, next); err != nil {
		return &domain.PersistenceError{Op: "save settings", Err: err}
	}

	s.state.Settings = next
	return nil
}

func (s *EventStore) indexOf(id string) int {
	for i := range s.state.Events {
		if s.state.Events[i].ID == id {
			return i
		}
	}
	return -1
}
