// Package repository persists the ledger as two JSON documents in a key-value store.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/walletfy/internal/domain"
)

// Storage keys. Events and settings are written independently.
const (
	EventsKey   = "walletfy-events"
	SettingsKey = "walletfy-settings"
)

// KVStore is a durable key-value medium. Get returns domain.ErrStateNotFound
// for a key that was never written. Put replaces the value atomically.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// LedgerRepository implements usecase.LedgerRepository on top of a KVStore.
type LedgerRepository struct {
	kv KVStore
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(kv KVStore) *LedgerRepository {
	return &LedgerRepository{kv: kv}
}

type eventRecord struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Type        string          `json:"type"`
	Attachment  string          `json:"attachment,omitempty"`
}

type settingsRecord struct {
	InitialBalance decimal.Decimal `json:"initialBalance"`
	Theme          string          `json:"theme,omitempty"`
}

// LoadEvents reads the event collection.
func (r *LedgerRepository) LoadEvents(ctx context.Context) ([]domain.FinancialEvent, error) {
	data, err := r.kv.Get(ctx, EventsKey)
	if err != nil {
		return nil, err
	}

	var records []eventRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCorruptState, EventsKey, err)
	}

	events := make([]domain.FinancialEvent, 0, len(records))
	seen := make(map[string]struct{}, len(records))

	for i, rec := range records {
		eventType := domain.EventType(rec.Type)
		if rec.ID == "" || !eventType.IsValid() {
			return nil, fmt.Errorf("%w: %s: record %d is malformed", domain.ErrCorruptState, EventsKey, i)
		}
		if _, dup := seen[rec.ID]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate id %s", domain.ErrCorruptState, EventsKey, rec.ID)
		}
		seen[rec.ID] = struct{}{}

		events = append(events, domain.FinancialEvent{
			ID:          rec.ID,
			Name:        rec.Name,
			Description: rec.Description,
			Amount:      rec.Amount,
			Date:        rec.Date.UTC(),
			Type:        eventType,
			Attachment:  rec.Attachment,
		})
	}

	return events, nil
}

// SaveEvents replaces the event collection.
func (r *LedgerRepository) SaveEvents(ctx context.Context, events []domain.FinancialEvent) error {
	records := make([]eventRecord, len(events))
	for i, e := range events {
		records[i] = eventRecord{
			ID:          e.ID,
			Name:        e.Name,
			Description: e.Description,
			Amount:      e.Amount,
			Date:        e.Date.UTC(),
			Type:        string(e.Type),
			Attachment:  e.Attachment,
		}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}

	return r.kv.Put(ctx, EventsKey, data)
}

// LoadSettings reads the initial balance and theme.
func (r *LedgerRepository) LoadSettings(ctx context.Context) (domain.Settings, error) {
	data, err := r.kv.Get(ctx, SettingsKey)
	if err != nil {
		return domain.Settings{}, err
	}

	var rec settingsRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.Settings{}, fmt.Errorf("%w: %s: %v", domain.ErrCorruptState, SettingsKey, err)
	}

	theme := domain.Theme(rec.Theme)
	if !theme.IsValid() {
		theme = domain.ThemeLight
	}

	return domain.Settings{InitialBalance: rec.InitialBalance, Theme: theme}, nil
}

// SaveSettings replaces the settings.
func (r *LedgerRepository) SaveSettings(ctx context.Context, settings domain.Settings) error {
	data, err := json.Marshal(settingsRecord{
		InitialBalance: settings.InitialBalance,
		Theme:          string(settings.Theme),
	})
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	return r.kv.Put(ctx, SettingsKey, data)
}
