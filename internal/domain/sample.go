package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultInitialBalance seeds a ledger that has never been saved.
var DefaultInitialBalance = decimal.NewFromInt(3000)

// DefaultSettings are used when no settings were ever persisted.
func DefaultSettings() Settings {
	return Settings{
		InitialBalance: DefaultInitialBalance,
		Theme:          ThemeLight,
	}
}

// SampleEvents returns the demonstration events a fresh ledger starts with.
func SampleEvents() []FinancialEvent {
	return []FinancialEvent{
		sampleEvent("550e8400-e29b-41d4-a716-446655440001", "January Salary",
			"Monthly salary payment from main job", 500, "2025-01-15T09:00:00Z", EventTypeIncome),
		sampleEvent("550e8400-e29b-41d4-a716-446655440002", "Supermarket",
			"Monthly groceries at the family supermarket", 80, "2025-01-20T14:30:00Z", EventTypeExpense),
		sampleEvent("550e8400-e29b-41d4-a716-446655440003", "Freelance Web",
			"Web development project for a local client", 120, "2025-01-25T16:00:00Z", EventTypeIncome),
		sampleEvent("550e8400-e29b-41d4-a716-446655440004", "Rent",
			"Monthly apartment rent", 150, "2025-02-01T10:00:00Z", EventTypeExpense),
		sampleEvent("550e8400-e29b-41d4-a716-446655440005", "Equipment Sale",
			"Sale of used office equipment", 80, "2025-02-10T12:00:00Z", EventTypeIncome),
		sampleEvent("550e8400-e29b-41d4-a716-446655440006", "Fuel",
			"Fuel for the car this month", 30, "2025-02-15T08:45:00Z", EventTypeExpense),
	}
}

func sampleEvent(id, name, description string, amount int64, date string, eventType EventType) FinancialEvent {
	t, err := time.Parse(time.RFC3339, date)
	if err != nil {
		panic(err)
	}
	return FinancialEvent{
		ID:          id,
		Name:        name,
		Description: description,
		Amount:      decimal.NewFromInt(amount),
		Date:        t.UTC(),
		Type:        eventType,
	}
}
