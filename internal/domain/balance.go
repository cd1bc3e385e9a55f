package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyBalance is the derived summary of one calendar month. It is never persisted.
type MonthlyBalance struct {
	MonthKey       string
	MonthLabel     string
	Events         []FinancialEvent
	TotalIncome    decimal.Decimal
	TotalExpenses  decimal.Decimal
	MonthlyBalance decimal.Decimal
	GlobalBalance  decimal.Decimal
}

// AggregateOption customizes how months are keyed and labelled.
type AggregateOption func(*aggregateConfig)

type aggregateConfig struct {
	locale   Locale
	location *time.Location
}

// WithLocale sets the language of month labels. English by default.
func WithLocale(locale Locale) AggregateOption {
	return func(c *aggregateConfig) {
		c.locale = locale
	}
}

// WithLocation sets the time zone used to decide which calendar month an event falls in. UTC by default.
func WithLocation(loc *time.Location) AggregateOption {
	return func(c *aggregateConfig) {
		if loc != nil {
			c.location = loc
		}
	}
}

func newAggregateConfig(opts []AggregateOption) aggregateConfig {
	cfg := aggregateConfig{
		locale:   LocaleEnglish,
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// ComputeMonthlyBalances groups events by calendar month and walks the months
// in chronological order, carrying the global balance forward from
// initialBalance. Months without events are omitted; see FillEmptyMonths.
//
// The input slice is not modified. Events are assumed valid.
func ComputeMonthlyBalances(events []FinancialEvent, initialBalance decimal.Decimal, opts ...AggregateOption) []MonthlyBalance {
	cfg := newAggregateConfig(opts)

	groups := make(map[string][]FinancialEvent)
	for _, e := range events {
		key := MonthKey(e.Date, cfg.location)
		groups[key] = append(groups[key], e)
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	balances := make([]MonthlyBalance, 0, len(keys))
	cumulative := initialBalance

	for _, key := range keys {
		monthEvents := groups[key]
		sortByDate(monthEvents)

		income, expenses := decimal.Zero, decimal.Zero
		for _, e := range monthEvents {
			switch e.Type {
			case EventTypeIncome:
				income = income.Add(e.Amount)
			case EventTypeExpense:
				expenses = expenses.Add(e.Amount)
			}
		}

		net := income.Sub(expenses)
		cumulative = cumulative.Add(net)

		first := monthEvents[0].Date.In(cfg.location)
		balances = append(balances, MonthlyBalance{
			MonthKey:       key,
			MonthLabel:     cfg.locale.MonthLabel(first.Year(), first.Month()),
			Events:         monthEvents,
			TotalIncome:    income,
			TotalExpenses:  expenses,
			MonthlyBalance: net,
			GlobalBalance:  cumulative,
		})
	}

	return balances
}

// sortByDate orders events ascending by date; ties are broken by id so the
// output does not depend on input order.
func sortByDate(events []FinancialEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		return events[i].ID < events[j].ID
	})
}

// FillEmptyMonths inserts zero-activity months between non-adjacent months so
// the result is a continuous timeline. Inserted months carry the previous
// global balance forward.
func FillEmptyMonths(balances []MonthlyBalance, opts ...AggregateOption) []MonthlyBalance {
	if len(balances) < 2 {
		return balances
	}

	cfg := newAggregateConfig(opts)
	out := make([]MonthlyBalance, 0, len(balances))

	for i, mb := range balances {
		if i > 0 {
			prev := out[len(out)-1]
			from, errFrom := time.Parse(MonthKeyFormat, prev.MonthKey)
			to, errTo := time.Parse(MonthKeyFormat, mb.MonthKey)
			if errFrom == nil && errTo == nil {
				for cursor := from.AddDate(0, 1, 0); cursor.Before(to); cursor = cursor.AddDate(0, 1, 0) {
					out = append(out, MonthlyBalance{
						MonthKey:       cursor.Format(MonthKeyFormat),
						MonthLabel:     cfg.locale.MonthLabel(cursor.Year(), cursor.Month()),
						Events:         []FinancialEvent{},
						TotalIncome:    decimal.Zero,
						TotalExpenses:  decimal.Zero,
						MonthlyBalance: decimal.Zero,
						GlobalBalance:  prev.GlobalBalance,
					})
				}
			}
		}
		out = append(out, mb)
	}

	return out
}

// LedgerSummary totals the whole ledger.
type LedgerSummary struct {
	InitialBalance decimal.Decimal
	TotalIncome    decimal.Decimal
	TotalExpenses  decimal.Decimal
	FinalBalance   decimal.Decimal
	EventCount     int
	Months         []MonthlyBalance
}

// Summarize totals monthly balances. FinalBalance is the last month's global
// balance, or the initial balance when there are no months.
func Summarize(initialBalance decimal.Decimal, months []MonthlyBalance) LedgerSummary {
	summary := LedgerSummary{
		InitialBalance: initialBalance,
		TotalIncome:    decimal.Zero,
		TotalExpenses:  decimal.Zero,
		FinalBalance:   initialBalance,
		Months:         months,
	}

	for _, m := range months {
		summary.TotalIncome = summary.TotalIncome.Add(m.TotalIncome)
		summary.TotalExpenses = summary.TotalExpenses.Add(m.TotalExpenses)
		summary.EventCount += len(m.Events)
	}

	if len(months) > 0 {
		summary.FinalBalance = months[len(months)-1].GlobalBalance
	}

	return summary
}
