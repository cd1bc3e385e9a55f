package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iho/walletfy/internal/adapter/http/dto"
	"github.com/iho/walletfy/internal/domain"
)

func TestParseBoolQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/balances?fill=true", nil)
	if !parseBoolQuery(req, "fill", false) {
		t.Fatal("expected fill=true")
	}

	req = httptest.NewRequest(http.MethodGet, "/balances?fill=maybe", nil)
	if parseBoolQuery(req, "fill", false) {
		t.Fatal("expected fallback to default")
	}

	req = httptest.NewRequest(http.MethodGet, "/balances", nil)
	if !parseBoolQuery(req, "fill", true) {
		t.Fatal("expected default when missing")
	}
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"validation", domain.NewValidationError([]string{domain.MsgNameRequired}), http.StatusUnprocessableEntity},
		{"not found", &domain.NotFoundError{ID: "x"}, http.StatusNotFound},
		{"persistence", &domain.PersistenceError{Op: "save events", Err: errors.New("disk full")}, http.StatusServiceUnavailable},
		{"wrapped not found", fmt.Errorf("lookup: %w", domain.ErrEventNotFound), http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapDomainError(tt.err); got != tt.expected {
				t.Fatalf("mapDomainError(%v) = %d, expected %d", tt.err, got, tt.expected)
			}
		})
	}
}

func TestWriteDomainErrorListsViolations(t *testing.T) {
	rec := httptest.NewRecorder()
	writeDomainError(rec, "failed", domain.NewValidationError([]string{domain.MsgNameRequired, domain.MsgAmountNotPositive}))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Violations) != 2 {
		t.Fatalf("expected 2 violations, got %v", resp.Violations)
	}
}
