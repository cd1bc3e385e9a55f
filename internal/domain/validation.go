package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MinEventNameLength        = 1
	MaxEventNameLength        = 20
	MaxEventDescriptionLength = 100

	// Checked in UTC. The one-year margin keeps the local year within
	// 1..9999 in every time zone.
	MinEventYear = 2
	MaxEventYear = 9998
)

// Violation messages, surfaced verbatim to users.
var (
	MsgNameRequired        = "name is required"
	MsgNameTooLong         = fmt.Sprintf("name must be at most %d characters", MaxEventNameLength)
	MsgDescriptionTooLong  = fmt.Sprintf("description must be at most %d characters", MaxEventDescriptionLength)
	MsgAmountNotPositive   = "amount must be a positive number"
	MsgDateRequired        = "date is required"
	MsgDateOutOfRange      = fmt.Sprintf("date must fall between years %d and %d", MinEventYear, MaxEventYear)
	MsgNameEncoding        = "name must be valid UTF-8 text"
	MsgDescriptionEncoding = "description must be valid UTF-8 text"
	MsgAttachmentEncoding  = "attachment must be valid UTF-8 text"
	MsgInvalidType         = fmt.Sprintf("type must be one of %q or %q", EventTypeIncome, EventTypeExpense)
	MsgInvalidTheme        = fmt.Sprintf("theme must be one of %q or %q", ThemeLight, ThemeDark)
)

var validate = validator.New()

// EventDraft is unvalidated input for creating an event.
type EventDraft struct {
	Name        string
	Description string
	Amount      decimal.Decimal
	Date        time.Time
	Type        EventType
	Attachment  string
}

// EventPatch holds the fields to change on an existing event. Nil fields are left alone.
type EventPatch struct {
	Name        *string
	Description *string
	Amount      *decimal.Decimal
	Date        *time.Time
	Type        *EventType
	Attachment  *string
}

// IsEmpty reports whether the patch changes nothing.
func (p EventPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Amount == nil &&
		p.Date == nil && p.Type == nil && p.Attachment == nil
}

// Apply merges the patch over the draft and returns the result.
func (p EventPatch) Apply(d EventDraft) EventDraft {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.Amount != nil {
		d.Amount = *p.Amount
	}
	if p.Date != nil {
		d.Date = *p.Date
	}
	if p.Type != nil {
		d.Type = *p.Type
	}
	if p.Attachment != nil {
		d.Attachment = *p.Attachment
	}
	return d
}

// ValidDraft is a draft that passed every constraint. It can only be obtained from ParseDraft.
type ValidDraft struct {
	name        string
	description string
	amount      decimal.Decimal
	date        time.Time
	eventType   EventType
	attachment  string
}

// NewEvent builds the stored event for the given id.
func (v ValidDraft) NewEvent(id string) FinancialEvent {
	return FinancialEvent{
		ID:          id,
		Name:        v.name,
		Description: v.description,
		Amount:      v.amount,
		Date:        v.date,
		Type:        v.eventType,
		Attachment:  v.attachment,
	}
}

type draftFields struct {
	Name        string `validate:"required,max=20"`
	Description string `validate:"max=100"`
	Type        string `validate:"oneof=income expense"`
}

// ParseDraft validates a draft and normalizes it: names and descriptions are
// trimmed and the date is converted to UTC. On failure the returned
// *ValidationError lists every violated constraint.
func ParseDraft(d EventDraft) (ValidDraft, error) {
	fields := draftFields{
		Name:        strings.TrimSpace(d.Name),
		Description: strings.TrimSpace(d.Description),
		Type:        string(d.Type),
	}

	var violations []string

	if err := validate.Struct(fields); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return ValidDraft{}, err
		}
		for _, fe := range fieldErrs {
			violations = append(violations, violationMessage(fe))
		}
	}

	if !utf8.ValidString(d.Name) {
		violations = append(violations, MsgNameEncoding)
	}
	if !utf8.ValidString(d.Description) {
		violations = append(violations, MsgDescriptionEncoding)
	}
	if !utf8.ValidString(d.Attachment) {
		violations = append(violations, MsgAttachmentEncoding)
	}

	if !d.Amount.IsPositive() {
		violations = append(violations, MsgAmountNotPositive)
	}

	if msg := validateDate(d.Date); msg != "" {
		violations = append(violations, msg)
	}

	if err := NewValidationError(violations); err != nil {
		return ValidDraft{}, err
	}

	return ValidDraft{
		name:        fields.Name,
		description: fields.Description,
		amount:      d.Amount,
		date:        d.Date.UTC(),
		eventType:   d.Type,
		attachment:  d.Attachment,
	}, nil
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "Name":
		if fe.Tag() == "required" {
			return MsgNameRequired
		}
		return MsgNameTooLong
	case "Description":
		return MsgDescriptionTooLong
	case "Type":
		return MsgInvalidType
	default:
		return fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag())
	}
}

func validateDate(t time.Time) string {
	if t.IsZero() {
		return MsgDateRequired
	}
	year := t.UTC().Year()
	if year < MinEventYear || year > MaxEventYear {
		return MsgDateOutOfRange
	}
	return ""
}

// ValidateTopUp validates an amount added to the initial balance.
func ValidateTopUp(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &ValidationError{Violations: []string{MsgAmountNotPositive}}
	}
	return nil
}

// ValidateTheme validates a display preference.
func ValidateTheme(theme Theme) error {
	if !theme.IsValid() {
		return &ValidationError{Violations: []string{MsgInvalidTheme}}
	}
	return nil
}
