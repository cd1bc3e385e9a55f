package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iho/walletfy/internal/domain"
)

// FakeLedgerRepository keeps the ledger in memory. Setting a Func field
// overrides the corresponding method.
type FakeLedgerRepository struct {
	mu          sync.RWMutex
	events      []domain.FinancialEvent
	settings    *domain.Settings
	SavedEvents int

	LoadEventsFunc   func(ctx context.Context) ([]domain.FinancialEvent, error)
	SaveEventsFunc   func(ctx context.Context, events []domain.FinancialEvent) error
	LoadSettingsFunc func(ctx context.Context) (domain.Settings, error)
	SaveSettingsFunc func(ctx context.Context, settings domain.Settings) error
}

func NewFakeLedgerRepository() *FakeLedgerRepository {
	return &FakeLedgerRepository{}
}

// NewSeededLedgerRepository returns a repository that already holds state.
func NewSeededLedgerRepository(settings domain.Settings, events []domain.FinancialEvent) *FakeLedgerRepository {
	return &FakeLedgerRepository{
		events:   domain.CloneEvents(events),
		settings: &settings,
	}
}

func (m *FakeLedgerRepository) LoadEvents(ctx context.Context) ([]domain.FinancialEvent, error) {
	if m.LoadEventsFunc != nil {
		return m.LoadEventsFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.events == nil {
		return nil, domain.ErrStateNotFound
	}
	return domain.CloneEvents(m.events), nil
}

func (m *FakeLedgerRepository) SaveEvents(ctx context.Context, events []domain.FinancialEvent) error {
	if m.SaveEventsFunc != nil {
		return m.SaveEventsFunc(ctx, events)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = domain.CloneEvents(events)
	if m.events == nil {
		m.events = []domain.FinancialEvent{}
	}
	m.SavedEvents++
	return nil
}

func (m *FakeLedgerRepository) LoadSettings(ctx context.Context) (domain.Settings, error) {
	if m.LoadSettingsFunc != nil {
		return m.LoadSettingsFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.settings == nil {
		return domain.Settings{}, domain.ErrStateNotFound
	}
	return *m.settings, nil
}

func (m *FakeLedgerRepository) SaveSettings(ctx context.Context, settings domain.Settings) error {
	if m.SaveSettingsFunc != nil {
		return m.SaveSettingsFunc(ctx, settings)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = &settings
	return nil
}

// SequentialIDGenerator returns evt-1, evt-2, ...
type SequentialIDGenerator struct {
	mu sync.Mutex
	n  int

	GenerateFunc func() string
}

func NewSequentialIDGenerator() *SequentialIDGenerator {
	return &SequentialIDGenerator{}
}

func (m *SequentialIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.n++
	return fmt.Sprintf("evt-%d", m.n)
}

// RecordingNotifier keeps every change it is told about.
type RecordingNotifier struct {
	mu      sync.Mutex
	changes []domain.LedgerChange
}

func (m *RecordingNotifier) Notify(_ context.Context, change domain.LedgerChange) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changes = append(m.changes, change)
}

func (m *RecordingNotifier) Changes() []domain.LedgerChange {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.LedgerChange, len(m.changes))
	copy(out, m.changes)
	return out
}

// StaticReader serves a fixed ledger state.
type StaticReader struct {
	mu    sync.RWMutex
	State domain.LedgerState
	Reads int
}

func (m *StaticReader) Snapshot() domain.LedgerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reads++
	return domain.LedgerState{
		Settings: m.State.Settings,
		Events:   domain.CloneEvents(m.State.Events),
	}
}

// Set replaces the served state.
func (m *StaticReader) Set(state domain.LedgerState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.State = state
}

// CountingRecorder tallies recorder calls.
type CountingRecorder struct {
	mu           sync.Mutex
	Mutations    map[string]int
	Failures     map[string]int
	Aggregations int
	CacheHits    int
	CacheMisses  int
}

func NewCountingRecorder() *CountingRecorder {
	return &CountingRecorder{
		Mutations: make(map[string]int),
		Failures:  make(map[string]int),
	}
}

func (m *CountingRecorder) MutationCompleted(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.Failures[op]++
		return
	}
	m.Mutations[op]++
}

func (m *CountingRecorder) AggregationComputed(time.Duration, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Aggregations++
}

func (m *CountingRecorder) CacheLookup(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.CacheHits++
		return
	}
	m.CacheMisses++
}
