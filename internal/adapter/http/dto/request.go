package dto

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/walletfy/internal/domain"
)

// DateLayout is the short date form accepted besides RFC 3339.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned for dates in neither accepted layout.
var ErrInvalidDate = errors.New("date must be RFC 3339 or YYYY-MM-DD")

// ParseDate accepts an RFC 3339 timestamp or a plain calendar date, which
// is taken as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// CreateEventRequest represents a request to create an event.
type CreateEventRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Type        string          `json:"type"`
	Attachment  string          `json:"attachment,omitempty"`
}

// ToDraft converts the request to an unvalidated draft.
func (r *CreateEventRequest) ToDraft() (domain.EventDraft, error) {
	date, err := ParseDate(r.Date)
	if err != nil {
		return domain.EventDraft{}, err
	}

	return domain.EventDraft{
		Name:        r.Name,
		Description: r.Description,
		Amount:      r.Amount,
		Date:        date,
		Type:        domain.EventType(r.Type),
		Attachment:  r.Attachment,
	}, nil
}

// UpdateEventRequest carries the fields to change. Omitted fields are kept.
type UpdateEventRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Date        *string          `json:"date,omitempty"`
	Type        *string          `json:"type,omitempty"`
	Attachment  *string          `json:"attachment,omitempty"`
}

// ToPatch converts the request to a patch.
func (r *UpdateEventRequest) ToPatch() (domain.EventPatch, error) {
	patch := domain.EventPatch{
		Name:        r.Name,
		Description: r.Description,
		Amount:      r.Amount,
		Attachment:  r.Attachment,
	}

	if r.Date != nil {
		date, err := ParseDate(*r.Date)
		if err != nil {
			return domain.EventPatch{}, err
		}
		patch.Date = &date
	}

	if r.Type != nil {
		t := domain.EventType(*r.Type)
		patch.Type = &t
	}

	return patch, nil
}

// AmountRequest sets or tops up the initial balance.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// ThemeRequest sets the display theme.
type ThemeRequest struct {
	Theme string `json:"theme"`
}
