package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/walletfy/internal/domain"
)

// EventResponse represents an event in API responses.
type EventResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Type        string          `json:"type"`
	Attachment  string          `json:"attachment,omitempty"`
}

// EventFromDomain converts a domain event to a response.
func EventFromDomain(e domain.FinancialEvent) EventResponse {
	return EventResponse{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		Amount:      e.Amount,
		Date:        e.Date.UTC(),
		Type:        string(e.Type),
		Attachment:  e.Attachment,
	}
}

// EventsFromDomain converts domain events to responses.
func EventsFromDomain(events []domain.FinancialEvent) []EventResponse {
	result := make([]EventResponse, len(events))
	for i, e := range events {
		result[i] = EventFromDomain(e)
	}
	return result
}

// ListEventsResponse represents a list of events.
type ListEventsResponse struct {
	Events []EventResponse `json:"events"`
	Total  int             `json:"total"`
}

// MonthlyBalanceResponse represents one month of the ledger.
type MonthlyBalanceResponse struct {
	MonthKey       string          `json:"month_key"`
	MonthLabel     string          `json:"month_label"`
	Events         []EventResponse `json:"events"`
	TotalIncome    decimal.Decimal `json:"total_income"`
	TotalExpenses  decimal.Decimal `json:"total_expenses"`
	MonthlyBalance decimal.Decimal `json:"monthly_balance"`
	GlobalBalance  decimal.Decimal `json:"global_balance"`
}

// MonthsFromDomain converts monthly balances to responses.
func MonthsFromDomain(months []domain.MonthlyBalance) []MonthlyBalanceResponse {
	result := make([]MonthlyBalanceResponse, len(months))
	for i, m := range months {
		result[i] = MonthlyBalanceResponse{
			MonthKey:       m.MonthKey,
			MonthLabel:     m.MonthLabel,
			Events:         EventsFromDomain(m.Events),
			TotalIncome:    m.TotalIncome,
			TotalExpenses:  m.TotalExpenses,
			MonthlyBalance: m.MonthlyBalance,
			GlobalBalance:  m.GlobalBalance,
		}
	}
	return result
}

// ListBalancesResponse represents the filtered month list.
type ListBalancesResponse struct {
	Months []MonthlyBalanceResponse `json:"months"`
	Query  string                   `json:"query,omitempty"`
}

// SummaryResponse represents whole-ledger totals.
type SummaryResponse struct {
	InitialBalance decimal.Decimal          `json:"initial_balance"`
	TotalIncome    decimal.Decimal          `json:"total_income"`
	TotalExpenses  decimal.Decimal          `json:"total_expenses"`
	FinalBalance   decimal.Decimal          `json:"final_balance"`
	EventCount     int                      `json:"event_count"`
	Months         []MonthlyBalanceResponse `json:"months"`
}

// SummaryFromDomain converts a ledger summary to a response.
func SummaryFromDomain(s domain.LedgerSummary) SummaryResponse {
	return SummaryResponse{
		InitialBalance: s.InitialBalance,
		TotalIncome:    s.TotalIncome,
		TotalExpenses:  s.TotalExpenses,
		FinalBalance:   s.FinalBalance,
		EventCount:     s.EventCount,
		Months:         MonthsFromDomain(s.Months),
	}
}

// SettingsResponse represents the persisted settings.
type SettingsResponse struct {
	InitialBalance decimal.Decimal `json:"initial_balance"`
	Theme          string          `json:"theme"`
}

// SettingsFromDomain converts settings to a response.
func SettingsFromDomain(s domain.Settings) SettingsResponse {
	return SettingsResponse{
		InitialBalance: s.InitialBalance,
		Theme:          string(s.Theme),
	}
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error      string   `json:"error"`
	Message    string   `json:"message,omitempty"`
	Violations []string `json:"violations,omitempty"`
}
