package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/walletfy/internal/adapter/http/dto"
	"github.com/iho/walletfy/internal/app"
	"github.com/iho/walletfy/internal/domain"
)

type opener func(ctx context.Context) (*app.App, error)

var errNothingToUpdate = errors.New("nothing to update: pass at least one field flag")

type cli struct {
	open   opener
	asJSON bool
}

func newRootCmd(open opener) *cobra.Command {
	c := &cli{open: open}

	rootCmd := &cobra.Command{
		Use:           "walletfy",
		Short:         "Walletfy ledger CLI",
		Long:          `Record income and expenses and review monthly balances.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&c.asJSON, "json", false, "Print JSON instead of tables")

	rootCmd.AddCommand(c.eventsCmd(), c.balanceCmd(), c.themeCmd())

	return rootCmd
}

// run opens the ledger for the duration of one command.
func (c *cli) run(fn func(ctx context.Context, a *app.App, out io.Writer, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		a, err := c.open(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		return fn(ctx, a, cmd.OutOrStdout(), args)
	}
}

func (c *cli) eventsCmd() *cobra.Command {
	eventsCmd := &cobra.Command{
		Use:   "events",
		Short: "Manage income and expense events",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List events in storage order",
		Args:  cobra.NoArgs,
		RunE: c.run(func(_ context.Context, a *app.App, out io.Writer, _ []string) error {
			events := a.Store.ListEvents()
			if c.asJSON {
				return printJSON(out, dto.EventsFromDomain(events))
			}
			printEvents(out, events)
			return nil
		}),
	}

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one event",
		Args:  cobra.ExactArgs(1),
		RunE: c.run(func(_ context.Context, a *app.App, out io.Writer, args []string) error {
			event, err := a.Store.GetEvent(args[0])
			if err != nil {
				return err
			}
			return c.printEvent(out, event)
		}),
	}

	var draft eventFlags
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new event",
		Args:  cobra.NoArgs,
		RunE: c.run(func(ctx context.Context, a *app.App, out io.Writer, _ []string) error {
			d, err := draft.toDraft()
			if err != nil {
				return err
			}
			event, err := a.Store.CreateEvent(ctx, d)
			if err != nil {
				return err
			}
			return c.printEvent(out, event)
		}),
	}
	draft.register(addCmd)

	var patch eventFlags
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of an event",
		Args:  cobra.ExactArgs(1),
	}
	updateCmd.RunE = c.run(func(ctx context.Context, a *app.App, out io.Writer, args []string) error {
		p, err := patch.toPatch(updateCmd)
		if err != nil {
			return err
		}
		if p.IsEmpty() {
			return errNothingToUpdate
		}
		event, err := a.Store.UpdateEvent(ctx, args[0], p)
		if err != nil {
			return err
		}
		return c.printEvent(out, event)
	})
	patch.register(updateCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an event",
		Args:  cobra.ExactArgs(1),
		RunE: c.run(func(ctx context.Context, a *app.App, out io.Writer, args []string) error {
			if err := a.Store.DeleteEvent(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(out, "deleted %s\n", args[0])
			return nil
		}),
	}

	eventsCmd.AddCommand(listCmd, showCmd, addCmd, updateCmd, deleteCmd)
	return eventsCmd
}

func (c *cli) balanceCmd() *cobra.Command {
	balanceCmd := &cobra.Command{
		Use:   "balance",
		Short: "Monthly balances and the initial balance",
	}

	var search string
	var fill bool
	monthsCmd := &cobra.Command{
		Use:   "months",
		Short: "Show monthly balances, oldest first",
		Args:  cobra.NoArgs,
		RunE: c.run(func(ctx context.Context, a *app.App, out io.Writer, _ []string) error {
			months := a.Balances.Search(ctx, search, fill)
			if c.asJSON {
				return printJSON(out, dto.MonthsFromDomain(months))
			}
			printMonths(out, months)
			return nil
		}),
	}
	monthsCmd.Flags().StringVar(&search, "search", "", "Only months whose label contains this text")
	monthsCmd.Flags().BoolVar(&fill, "fill", false, "Include months without events")

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Show totals for the whole ledger",
		Args:  cobra.NoArgs,
		RunE: c.run(func(ctx context.Context, a *app.App, out io.Writer, _ []string) error {
			summary := a.Balances.Summary(ctx)
			if c.asJSON {
				return printJSON(out, dto.SummaryFromDomain(summary))
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "Initial balance\t%s\n", summary.InitialBalance.StringFixed(2))
			fmt.Fprintf(tw, "Income\t%s\n", summary.TotalIncome.StringFixed(2))
			fmt.Fprintf(tw, "Expenses\t%s\n", summary.TotalExpenses.StringFixed(2))
			fmt.Fprintf(tw, "Final balance\t%s\n", summary.FinalBalance.StringFixed(2))
			fmt.Fprintf(tw, "Events\t%d\n", summary.EventCount)
			fmt.Fprintf(tw, "Months\t%d\n", len(summary.Months))
			return tw.Flush()
		}),
	}

	setCmd := &cobra.Command{
		Use:   "set-initial <amount>",
		Short: "Replace the initial balance",
		Args:  cobra.ExactArgs(1),
		RunE: c.run(func(ctx context.Context, a *app.App, out io.Writer, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			settings, err := a.Store.SetInitialBalance(ctx, amount)
			if err != nil {
				return err
			}
			return c.printSettings(out, settings)
		}),
	}

	addCmd := &cobra.Command{
		Use:   "add <amount>",
		Short: "Add money to the initial balance",
		Args:  cobra.ExactArgs(1),
		RunE: c.run(func(ctx context.Context, a *app.App, out io.Writer, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			settings, err := a.Store.AddToInitialBalance(ctx, amount)
			if err != nil {
				return err
			}
			return c.printSettings(out, settings)
		}),
	}

	balanceCmd.AddCommand(monthsCmd, summaryCmd, setCmd, addCmd)
	return balanceCmd
}

func (c *cli) themeCmd() *cobra.Command {
	themeCmd := &cobra.Command{
		Use:   "theme",
		Short: "Display preference",
	}

	setCmd := &cobra.Command{
		Use:       "set <light|dark>",
		Short:     "Set the theme",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(domain.ThemeLight), string(domain.ThemeDark)},
		RunE: c.run(func(ctx context.Context, a *app.App, out io.Writer, args []string) error {
			settings, err := a.Store.SetTheme(ctx, domain.Theme(args[0]))
			if err != nil {
				return err
			}
			return c.printSettings(out, settings)
		}),
	}

	toggleCmd := &cobra.Command{
		Use:   "toggle",
		Short: "Switch between light and dark",
		Args:  cobra.NoArgs,
		RunE: c.run(func(ctx context.Context, a *app.App, out io.Writer, _ []string) error {
			settings, err := a.Store.ToggleTheme(ctx)
			if err != nil {
				return err
			}
			return c.printSettings(out, settings)
		}),
	}

	themeCmd.AddCommand(setCmd, toggleCmd)
	return themeCmd
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q", s)
	}
	return amount, nil
}

func (c *cli) printEvent(out io.Writer, event domain.FinancialEvent) error {
	if c.asJSON {
		return printJSON(out, dto.EventFromDomain(event))
	}
	printEvents(out, []domain.FinancialEvent{event})
	return nil
}

func (c *cli) printSettings(out io.Writer, settings domain.Settings) error {
	if c.asJSON {
		return printJSON(out, dto.SettingsFromDomain(settings))
	}
	fmt.Fprintf(out, "initial balance %s, theme %s\n", settings.InitialBalance.StringFixed(2), settings.Theme)
	return nil
}

func printEvents(out io.Writer, events []domain.FinancialEvent) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTYPE\tAMOUNT\tNAME\tDESCRIPTION")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Date.UTC().Format(dto.DateLayout), e.Type, e.Amount.StringFixed(2), e.Name, truncate(e.Description, 30))
	}
	tw.Flush()
}

func printMonths(out io.Writer, months []domain.MonthlyBalance) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "MONTH\tEVENTS\tINCOME\tEXPENSES\tMONTHLY\tGLOBAL\t")
	for _, m := range months {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t\n",
			m.MonthLabel, len(m.Events),
			m.TotalIncome.StringFixed(2), m.TotalExpenses.StringFixed(2),
			m.MonthlyBalance.StringFixed(2), m.GlobalBalance.StringFixed(2))
	}
	tw.Flush()
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
