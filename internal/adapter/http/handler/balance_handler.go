package handler

import (
	"context"
	"net/http"

	"github.com/iho/walletfy/internal/adapter/http/dto"
	"github.com/iho/walletfy/internal/domain"
)

// BalanceService defines the behavior needed by BalanceHandler.
type BalanceService interface {
	Search(ctx context.Context, query string, fill bool) []domain.MonthlyBalance
	Summary(ctx context.Context) domain.LedgerSummary
}

// BalanceHandler serves the derived monthly view.
type BalanceHandler struct {
	balances BalanceService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balances BalanceService) *BalanceHandler {
	return &BalanceHandler{balances: balances}
}

// Months lists monthly balances, optionally filtered by ?q= and with
// empty months included when ?fill=true.
func (h *BalanceHandler) Months(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	fill := parseBoolQuery(r, "fill", false)

	months := h.balances.Search(r.Context(), query, fill)

	writeJSON(w, http.StatusOK, dto.ListBalancesResponse{
		Months: dto.MonthsFromDomain(months),
		Query:  query,
	})
}

// Summary returns whole-ledger totals.
func (h *BalanceHandler) Summary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.SummaryFromDomain(h.balances.Summary(r.Context())))
}
