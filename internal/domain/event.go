package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType tells whether an event adds to or subtracts from the balance.
type EventType string

const (
	EventTypeIncome  EventType = "income"
	EventTypeExpense EventType = "expense"
)

// IsValid checks if the type is one of the known event types.
func (t EventType) IsValid() bool {
	return t == EventTypeIncome || t == EventTypeExpense
}

// FinancialEvent is a single dated income or expense record.
// Amount is always positive; the sign is carried by Type.
type FinancialEvent struct {
	ID          string
	Name        string
	Description string
	Amount      decimal.Decimal
	Date        time.Time
	Type        EventType
	Attachment  string
}

// Draft returns the event's fields as an unvalidated draft.
func (e FinancialEvent) Draft() EventDraft {
	return EventDraft{
		Name:        e.Name,
		Description: e.Description,
		Amount:      e.Amount,
		Date:        e.Date,
		Type:        e.Type,
		Attachment:  e.Attachment,
	}
}

// Theme is the user's display preference, stored next to the initial balance.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// IsValid checks if the theme is supported.
func (t Theme) IsValid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Settings is persisted under its own key, independently from the events.
type Settings struct {
	InitialBalance decimal.Decimal
	Theme          Theme
}

// LedgerState is a point-in-time copy of the whole ledger.
type LedgerState struct {
	Settings Settings
	Events   []FinancialEvent
}

// CloneEvents copies a slice of events.
func CloneEvents(events []FinancialEvent) []FinancialEvent {
	if events == nil {
		return nil
	}
	out := make([]FinancialEvent, len(events))
	copy(out, events)
	return out
}
