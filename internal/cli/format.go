package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/evcraddock/realty-crm/internal/client"
	"github.com/evcraddock/realty-crm/internal/property"
	"github.com/evcraddock/realty-crm/internal/visit"
)

// printJSON marshals v as indented JSON and writes it to out.
func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// table writes tab-separated rows under a header and a dashed separator.
func table(out io.Writer, header []string, rows [][]string) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	sep := make([]string, len(header))
	for i, h := range header {
		sep[i] = strings.Repeat("-", len(h))
	}

	for _, row := range append([][]string{header, sep}, rows...) {
		if _, err := fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}
	return nil
}

// printVisitTable prints visits as a formatted table.
func printVisitTable(out io.Writer, visits []*visit.Visit) error {
	if len(visits) == 0 {
		fmt.Fprintln(out, "No visits found.")
		return nil
	}

	rows := make([][]string, 0, len(visits))
	for _, v := range visits {
		rows = append(rows, []string{
			fmt.Sprintf("%d", v.ID),
			formatWhen(v.ScheduledDatetime),
			statusText(v.Status),
			orDash(v.ClientName, 24),
			orDash(v.PropertyLocation, 32),
			fmt.Sprintf("%dm", v.DurationMinutes),
		})
	}

	if err := table(out, []string{"ID", "WHEN", "STATUS", "CLIENT", "PROPERTY", "DURATION"}, rows); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nTotal: %d visits\n", len(visits))
	return nil
}

// printSummary prints visit statistics in text format.
func printSummary(out io.Writer, s *visit.Summary) {
	fmt.Fprintf(out, "Total:        %d\n", s.Total)
	fmt.Fprintf(out, "Scheduled:    %d\n", s.Scheduled)
	fmt.Fprintf(out, "Completed:    %d\n", s.Completed)
	fmt.Fprintf(out, "Canceled:     %d\n", s.Canceled)
	fmt.Fprintf(out, "Rescheduled:  %d\n", s.Rescheduled)
	fmt.Fprintf(out, "Today:        %d\n", s.Today)
	fmt.Fprintf(out, "Completion:   %.2f%%\n", s.CompletionRatePercent)

	// Statuses outside the known four (legacy rows) only show up here.
	var other []string
	for status := range s.ByStatus {
		if !visit.Status(status).IsValid() {
			other = append(other, status)
		}
	}
	sort.Strings(other)
	for _, status := range other {
		fmt.Fprintf(out, "%-13s %d\n", status+":", s.ByStatus[status])
	}
}

// printPropertyTable prints properties as a formatted table.
func printPropertyTable(out io.Writer, props []*property.Property) error {
	if len(props) == 0 {
		fmt.Fprintln(out, "No properties found.")
		return nil
	}

	rows := make([][]string, 0, len(props))
	for _, p := range props {
		rows = append(rows, []string{
			fmt.Sprintf("%d", p.ID), p.Type, truncate(p.Location, 40), formatValue(p.Value), p.Status,
		})
	}
	if err := table(out, []string{"ID", "TYPE", "LOCATION", "VALUE", "STATUS"}, rows); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nTotal: %d properties\n", len(props))
	return nil
}

// printClientTable prints clients as a formatted table.
func printClientTable(out io.Writer, clients []*client.Client) error {
	if len(clients) == 0 {
		fmt.Fprintln(out, "No clients found.")
		return nil
	}

	rows := make([][]string, 0, len(clients))
	for _, c := range clients {
		rows = append(rows, []string{
			fmt.Sprintf("%d", c.ID), truncate(c.Name, 30), c.Phone, c.Email, c.InterestType, c.Status,
		})
	}
	if err := table(out, []string{"ID", "NAME", "PHONE", "EMAIL", "INTEREST", "STATUS"}, rows); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nTotal: %d clients\n", len(clients))
	return nil
}

// formatWhen renders a visit time in the local zone.
func formatWhen(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

// formatValue formats a currency amount with thousands separators and cents.
func formatValue(v float64) string {
	cents := int64(math.Round(v * 100))
	neg := cents < 0
	if neg {
		cents = -cents
	}

	s := fmt.Sprintf("%d", cents/100)
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)

	out := fmt.Sprintf("%s.%02d", strings.Join(parts, ","), cents%100)
	if neg {
		out = "-" + out
	}
	return out
}

// statusText shows a visit status with its English label, e.g. "Realizada (Completed)".
func statusText(s visit.Status) string {
	if label := s.Label(); label != string(s) {
		return fmt.Sprintf("%s (%s)", s, label)
	}
	return string(s)
}

func orDash(s *string, maxLen int) string {
	if s == nil || *s == "" {
		return "-"
	}
	return truncate(*s, maxLen)
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
