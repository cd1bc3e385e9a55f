package main

import (
	"github.com/spf13/cobra"

	"github.com/iho/walletfy/internal/adapter/http/dto"
	"github.com/iho/walletfy/internal/domain"
)

// eventFlags binds the event fields to command flags.
type eventFlags struct {
	name        string
	description string
	amount      string
	date        string
	kind        string
	attachment  string
}

func (f *eventFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Event name")
	cmd.Flags().StringVar(&f.description, "description", "", "Optional description")
	cmd.Flags().StringVar(&f.amount, "amount", "", "Positive amount")
	cmd.Flags().StringVar(&f.date, "date", "", "Date as YYYY-MM-DD or RFC 3339")
	cmd.Flags().StringVar(&f.kind, "type", "", "income or expense")
	cmd.Flags().StringVar(&f.attachment, "attachment", "", "Attachment reference")
}

func (f *eventFlags) toDraft() (domain.EventDraft, error) {
	req := dto.CreateEventRequest{
		Name:        f.name,
		Description: f.description,
		Date:        f.date,
		Type:        f.kind,
		Attachment:  f.attachment,
	}

	if f.amount != "" {
		amount, err := parseAmount(f.amount)
		if err != nil {
			return domain.EventDraft{}, err
		}
		req.Amount = amount
	}

	return req.ToDraft()
}

// toPatch includes only the flags given on the command line.
func (f *eventFlags) toPatch(cmd *cobra.Command) (domain.EventPatch, error) {
	var req dto.UpdateEventRequest
	changed := cmd.Flags().Changed

	if changed("name") {
		req.Name = &f.name
	}
	if changed("description") {
		req.Description = &f.description
	}
	if changed("amount") {
		amount, err := parseAmount(f.amount)
		if err != nil {
			return domain.EventPatch{}, err
		}
		req.Amount = &amount
	}
	if changed("date") {
		req.Date = &f.date
	}
	if changed("type") {
		req.Type = &f.kind
	}
	if changed("attachment") {
		req.Attachment = &f.attachment
	}

	return req.ToPatch()
}
