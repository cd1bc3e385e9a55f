package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// FilterByMonthLabel keeps the months whose label contains query, ignoring
// case. A blank query returns the input unchanged. Order is preserved.
func FilterByMonthLabel(balances []MonthlyBalance, query string) []MonthlyBalance {
	query = strings.TrimSpace(query)
	if query == "" {
		return balances
	}

	// A Caser is stateful; use a fresh one per call.
	fold := cases.Fold()
	needle := fold.String(query)

	out := make([]MonthlyBalance, 0, len(balances))
	for _, mb := range balances {
		if strings.Contains(fold.String(mb.MonthLabel), needle) {
			out = append(out, mb)
		}
	}

	return out
}
