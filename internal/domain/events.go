package domain

import "time"

// ChangeKind names a committed ledger mutation.
type ChangeKind string

// Change kinds
const (
	ChangeEventCreated   ChangeKind = "event.created"
	ChangeEventUpdated   ChangeKind = "event.updated"
	ChangeEventDeleted   ChangeKind = "event.deleted"
	ChangeBalanceUpdated ChangeKind = "balance.updated"
	ChangeThemeUpdated   ChangeKind = "theme.updated"
)

// LedgerChange is emitted after a mutation has been persisted. Observers
// re-derive whatever they display from the store; the change only says
// what happened.
type LedgerChange struct {
	Kind       ChangeKind
	EventID    string
	OccurredAt time.Time
}

// ChangePayload is the published body of a change.
type ChangePayload struct {
	Kind       string `json:"kind"`
	EventID    string `json:"event_id,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

// Payload renders the change for publishing.
func (c LedgerChange) Payload() ChangePayload {
	return ChangePayload{
		Kind:       string(c.Kind),
		EventID:    c.EventID,
		OccurredAt: c.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
}
