package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/walletfy/internal/adapter/http/dto"
	"github.com/iho/walletfy/internal/domain"
)

// EventService defines the behavior needed by EventHandler.
type EventService interface {
	CreateEvent(ctx context.Context, draft domain.EventDraft) (domain.FinancialEvent, error)
	UpdateEvent(ctx context.Context, id string, patch domain.EventPatch) (domain.FinancialEvent, error)
	DeleteEvent(ctx context.Context, id string) error
	GetEvent(id string) (domain.FinancialEvent, error)
	ListEvents() []domain.FinancialEvent
}

// EventHandler handles event-related HTTP requests.
type EventHandler struct {
	events EventService
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(events EventService) *EventHandler {
	return &EventHandler{events: events}
}

// Create records a new event.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEventRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	draft, err := req.ToDraft()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	event, err := h.events.CreateEvent(r.Context(), draft)
	if err != nil {
		writeDomainError(w, "failed to create event", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.EventFromDomain(event))
}

// Get retrieves an event by ID.
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.GetEvent(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get event", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EventFromDomain(event))
}

// List returns every event in storage order.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events := h.events.ListEvents()

	writeJSON(w, http.StatusOK, dto.ListEventsResponse{
		Events: dto.EventsFromDomain(events),
		Total:  len(events),
	})
}

// Update changes the fields present in the body.
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateEventRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	patch, err := req.ToPatch()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	event, err := h.events.UpdateEvent(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeDomainError(w, "failed to update event", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EventFromDomain(event))
}

// Delete removes an event.
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.events.DeleteEvent(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "failed to delete event", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
