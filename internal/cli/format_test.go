package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/evcraddock/realty-crm/internal/visit"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected string
	}{
		{"zero", 0, "0.00"},
		{"small", 999, "999.00"},
		{"thousands", 250000.5, "250,000.50"},
		{"millions", 1000000, "1,000,000.00"},
		{"negative", -1234.56, "-1,234.56"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatValue(tt.value); got != tt.expected {
				t.Errorf("formatValue(%v) = %q, want %q", tt.value, got, tt.expected)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("a very long location name", 10); got != "a very ..." {
		t.Errorf("truncate long = %q", got)
	}
}

func TestPrintVisitTable(t *testing.T) {
	var buf bytes.Buffer
	if err := printVisitTable(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No visits found.") {
		t.Errorf("empty output = %q", buf.String())
	}

	name := "Ana"
	buf.Reset()
	visits := []*visit.Visit{{
		ID: 7, ScheduledDatetime: time.Date(2025, 3, 1, 14, 30, 0, 0, time.UTC),
		Status: visit.Scheduled, DurationMinutes: 60, ClientName: &name,
	}}
	if err := printVisitTable(&buf, visits); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"ID", "STATUS", "Agendada (Scheduled)", "Ana", "60m", "Total: 1 visits"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, &visit.Summary{
		Total: 3, Completed: 1, CompletionRatePercent: 33.33,
		ByStatus: map[string]int{"Agendada": 1, "Realizada": 1, "Pendente": 1},
	})
	out := buf.String()
	if !strings.Contains(out, "33.33%") {
		t.Errorf("missing completion rate:\n%s", out)
	}
	if !strings.Contains(out, "Pendente:") {
		t.Errorf("missing legacy status:\n%s", out)
	}
}

func TestStatusText(t *testing.T) {
	tests := []struct {
		status visit.Status
		want   string
	}{
		{visit.Scheduled, "Agendada (Scheduled)"},
		{visit.Completed, "Realizada (Completed)"},
		{visit.Canceled, "Cancelada (Canceled)"},
		{visit.Rescheduled, "Reagendada (Rescheduled)"},
		{visit.Status("Pendente"), "Pendente"},
	}

	for _, tt := range tests {
		if got := statusText(tt.status); got != tt.want {
			t.Errorf("statusText(%q) = %q, want %q", tt.status, got, tt.want)
		}
	}
}
