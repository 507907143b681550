package visit

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/evcraddock/realty-crm/internal/clock"
)

// ErrValidation is matched by every visit validation failure.
var ErrValidation = errors.New("invalid visit")

var (
	ErrInvalidFormat   = fmt.Errorf("%w: invalid format", ErrValidation)
	ErrNotFuture       = fmt.Errorf("%w: not in the future", ErrValidation)
	ErrInvalidStatus   = fmt.Errorf("%w: invalid status", ErrValidation)
	ErrInvalidDuration = fmt.Errorf("%w: invalid duration", ErrValidation)
)

// ErrConflict is returned when the property already has an active visit at the
// requested time.
var ErrConflict = errors.New("visit conflict")

// ValidationError describes which field failed and why. Kind is one of the
// ErrInvalid*/ErrNotFuture sentinels.
type ValidationError struct {
	Kind    error
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.Kind }

func invalid(kind error, field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Layouts without a zone are read in the validator's location.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Validator checks visit inputs against the current time.
type Validator struct {
	clock clock.Clock
	loc   *time.Location
}

// NewValidator returns a validator. A nil clock uses the system clock and a nil
// location uses time.Local.
func NewValidator(clk clock.Clock, loc *time.Location) *Validator {
	if clk == nil {
		clk = clock.System{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &Validator{clock: clk, loc: loc}
}

// Location returns the zone naive datetimes are interpreted in.
func (v *Validator) Location() *time.Location { return v.loc }

// Now returns the validator's current time.
func (v *Validator) Now() time.Time { return v.clock.Now() }

// ParseDatetime parses an RFC 3339 or naive ISO datetime.
func (v *Validator) ParseDatetime(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, v.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, invalid(ErrInvalidFormat, field,
		"%s: invalid datetime %q, expected ISO format such as 2025-03-01T14:30:00", field, s)
}

// ParseRangeBound parses a date_from/date_to value. A bare date is the start of
// that day, or its last second when endOfDay is set.
func (v *Validator) ParseRangeBound(field, s string, endOfDay bool) (time.Time, error) {
	if d, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), v.loc); err == nil {
		if endOfDay {
			return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, v.loc), nil
		}
		return d, nil
	}
	return v.ParseDatetime(field, s)
}

// ParseStatus checks s against the allowed statuses.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.TrimSpace(s))
	if st.IsValid() {
		return st, nil
	}
	allowed := make([]string, len(ValidStatuses))
	for i, v := range ValidStatuses {
		allowed[i] = string(v)
	}
	return "", invalid(ErrInvalidStatus, "status",
		"invalid status %q: must be one of %s", s, strings.Join(allowed, ", "))
}

// CheckDuration enforces the allowed visit length in minutes.
func CheckDuration(minutes int) error {
	if minutes < MinDuration || minutes > MaxDuration {
		return invalid(ErrInvalidDuration, "duration_minutes",
			"duration_minutes must be between %d and %d, got %d", MinDuration, MaxDuration, minutes)
	}
	return nil
}

// ValidateCreate checks a creation request and returns the visit to store with
// defaults applied. Checks run in order: datetime format, future, status, duration.
func (v *Validator) ValidateCreate(in Input) (*Visit, error) {
	at, err := v.ParseDatetime("scheduled_datetime", in.ScheduledDatetime)
	if err != nil {
		return nil, err
	}
	if !at.After(v.clock.Now()) {
		return nil, invalid(ErrNotFuture, "scheduled_datetime",
			"scheduled_datetime must be in the future")
	}

	out := &Visit{
		ClientID:          in.ClientID,
		PropertyID:        in.PropertyID,
		ScheduledDatetime: at.UTC(),
		Status:            Scheduled,
		Notes:             in.Notes,
		DurationMinutes:   DefaultDuration,
		AgentNotes:        in.AgentNotes,
		ClientFeedback:    in.ClientFeedback,
	}

	if in.Status != nil {
		if out.Status, err = ParseStatus(*in.Status); err != nil {
			return nil, err
		}
	}
	if in.DurationMinutes != nil {
		if err := CheckDuration(*in.DurationMinutes); err != nil {
			return nil, err
		}
		out.DurationMinutes = *in.DurationMinutes
	}
	return out, nil
}

// ApplyPatch validates the present fields of p and merges them into cur.
// A new scheduled time is checked for format only.
func (v *Validator) ApplyPatch(cur *Visit, p Patch) error {
	if p.ScheduledDatetime != nil {
		at, err := v.ParseDatetime("scheduled_datetime", *p.ScheduledDatetime)
		if err != nil {
			return err
		}
		cur.ScheduledDatetime = at.UTC()
	}
	if p.Status != nil {
		st, err := ParseStatus(*p.Status)
		if err != nil {
			return err
		}
		cur.Status = st
	}
	if p.DurationMinutes != nil {
		if err := CheckDuration(*p.DurationMinutes); err != nil {
			return err
		}
		cur.DurationMinutes = *p.DurationMinutes
	}
	if p.Notes != nil {
		cur.Notes = p.Notes
	}
	if p.AgentNotes != nil {
		cur.AgentNotes = p.AgentNotes
	}
	if p.ClientFeedback != nil {
		cur.ClientFeedback = p.ClientFeedback
	}
	return nil
}
