package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/evcraddock/realty-crm/internal/apiclient"
	"github.com/evcraddock/realty-crm/internal/visit"
)

func newVisitsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "visits",
		Short: "Schedule and review property visits",
	}

	cmd.AddCommand(
		newVisitsListCmd(),
		newVisitsTodayCmd(),
		newVisitsCalendarCmd(),
		newVisitsStatsCmd(),
		newVisitsAddCmd(),
		newVisitsStatusCmd(),
		newVisitsDeleteCmd(),
	)
	return cmd
}

func newVisitsListCmd() *cobra.Command {
	var opts apiclient.VisitListOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List visits, latest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			visits, err := newAPIClient().ListVisits(opts)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), visits)
			}
			return printVisitTable(cmd.OutOrStdout(), visits)
		},
	}

	cmd.Flags().StringVar(&opts.Status, "status", "", "filter by status (Agendada, Realizada, Cancelada, Reagendada)")
	cmd.Flags().Int64Var(&opts.ClientID, "client", 0, "filter by client ID")
	cmd.Flags().Int64Var(&opts.PropertyID, "property", 0, "filter by property ID")
	cmd.Flags().StringVar(&opts.DateFrom, "from", "", "earliest date or datetime (inclusive)")
	cmd.Flags().StringVar(&opts.DateTo, "to", "", "latest date or datetime (inclusive)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum results (default 100)")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "results to skip")

	return cmd
}

func newVisitsTodayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's scheduled visits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			visits, err := newAPIClient().TodayVisits()
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), visits)
			}
			return printVisitTable(cmd.OutOrStdout(), visits)
		},
	}
}

func newVisitsCalendarCmd() *cobra.Command {
	var month, year int

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show scheduled visits for a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if month == 0 {
				month = int(now.Month())
			}
			if year == 0 {
				year = now.Year()
			}
			if month < 1 || month > 12 {
				return fmt.Errorf("month must be 1-12, got %d", month)
			}

			visits, err := newAPIClient().Calendar(month, year)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), visits)
			}
			return printVisitTable(cmd.OutOrStdout(), visits)
		},
	}

	cmd.Flags().IntVar(&month, "month", 0, "month 1-12 (default: current)")
	cmd.Flags().IntVar(&year, "year", 0, "year (default: current)")

	return cmd
}

func newVisitsStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show visit statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sum, err := newAPIClient().VisitSummary()
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), sum)
			}
			printSummary(cmd.OutOrStdout(), sum)
			return nil
		},
	}
}

func newVisitsAddCmd() *cobra.Command {
	var (
		in       visit.Input
		status   string
		notes    string
		duration int
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Schedule a visit",
		Long: `Schedule a visit of a client to a property.

The time is an ISO datetime; values without a zone use the server's timezone.

Examples:
  crm visits add --client 1 --property 3 --at 2026-03-01T14:30
  crm visits add --client 1 --property 3 --at "2026-03-01 14:30" --duration 90 --notes "bring keys"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("status") {
				in.Status = &status
			}
			if cmd.Flags().Changed("notes") {
				in.Notes = &notes
			}
			if cmd.Flags().Changed("duration") {
				in.DurationMinutes = &duration
			}

			v, err := newAPIClient().CreateVisit(in)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), v)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Visit #%d scheduled for %s (%d min).\n",
				v.ID, formatWhen(v.ScheduledDatetime), v.DurationMinutes)
			return nil
		},
	}

	cmd.Flags().Int64Var(&in.ClientID, "client", 0, "client ID (required)")
	cmd.Flags().Int64Var(&in.PropertyID, "property", 0, "property ID (required)")
	cmd.Flags().StringVar(&in.ScheduledDatetime, "at", "", "scheduled date and time (required)")
	cmd.Flags().StringVar(&status, "status", "", "initial status (default Agendada)")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "notes about the visit")
	cmd.Flags().IntVar(&duration, "duration", visit.DefaultDuration, "duration in minutes (15-480)")
	for _, f := range []string{"client", "property", "at"} {
		_ = cmd.MarkFlagRequired(f)
	}

	return cmd
}

func newVisitsStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Change a visit's status",
		Long: `Change a visit's status.

Statuses: Agendada (scheduled), Realizada (completed), Cancelada (canceled), Reagendada (rescheduled)`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseVisitID(args[0])
			if err != nil {
				return err
			}
			v, err := newAPIClient().UpdateVisitStatus(id, args[1])
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), v)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Visit #%d is now %s.\n", v.ID, statusText(v.Status))
			return nil
		},
	}
}

func newVisitsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a visit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseVisitID(args[0])
			if err != nil {
				return err
			}
			if err := newAPIClient().DeleteVisit(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Visit #%d deleted.\n", id)
			return nil
		},
	}
}

func parseVisitID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid visit ID: %s", s)
	}
	return id, nil
}
