package handler

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/iho/walletfy/internal/adapter/http/dto"
	"github.com/iho/walletfy/internal/domain"
)

// SettingsService defines the behavior needed by SettingsHandler.
type SettingsService interface {
	Settings() domain.Settings
	SetInitialBalance(ctx context.Context, value decimal.Decimal) (domain.Settings, error)
	AddToInitialBalance(ctx context.Context, amount decimal.Decimal) (domain.Settings, error)
	SetTheme(ctx context.Context, theme domain.Theme) (domain.Settings, error)
	ToggleTheme(ctx context.Context) (domain.Settings, error)
}

// SettingsHandler handles the initial balance and theme.
type SettingsHandler struct {
	settings SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settings SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get returns the current settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.SettingsFromDomain(h.settings.Settings()))
}

// SetInitialBalance replaces the initial balance.
func (h *SettingsHandler) SetInitialBalance(w http.ResponseWriter, r *http.Request) {
	var req dto.AmountRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	settings, err := h.settings.SetInitialBalance(r.Context(), req.Amount)
	if err != nil {
		writeDomainError(w, "failed to set initial balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SettingsFromDomain(settings))
}

// AddToInitialBalance tops up the initial balance.
func (h *SettingsHandler) AddToInitialBalance(w http.ResponseWriter, r *http.Request) {
	var req dto.AmountRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	settings, err := h.settings.AddToInitialBalance(r.Context(), req.Amount)
	if err != nil {
		writeDomainError(w, "failed to add to initial balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SettingsFromDomain(settings))
}

// SetTheme stores the display theme.
func (h *SettingsHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req dto.ThemeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	settings, err := h.settings.SetTheme(r.Context(), domain.Theme(req.Theme))
	if err != nil {
		writeDomainError(w, "failed to set theme", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SettingsFromDomain(settings))
}

// ToggleTheme flips the display theme.
func (h *SettingsHandler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.ToggleTheme(r.Context())
	if err != nil {
		writeDomainError(w, "failed to toggle theme", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SettingsFromDomain(settings))
}
