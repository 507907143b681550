// Package visit schedules client visits to properties and answers the agenda queries
// built on them: filtered listings, the monthly calendar, today's agenda and summary
// statistics.
package visit

import "time"

// Status is the lifecycle state of a visit. Values are stored as-is.
type Status string

const (
	Scheduled   Status = "Agendada"
	Completed   Status = "Realizada"
	Canceled    Status = "Cancelada"
	Rescheduled Status = "Reagendada"
)

// ValidStatuses is the set of allowed visit statuses.
var ValidStatuses = []Status{Scheduled, Completed, Canceled, Rescheduled}

// activeStatuses are the statuses shown on the calendar and today's agenda.
var activeStatuses = []Status{Scheduled, Rescheduled}

// IsValid checks if a status is recognized.
func (s Status) IsValid() bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Label returns an English label for the status.
func (s Status) Label() string {
	switch s {
	case Scheduled:
		return "Scheduled"
	case Completed:
		return "Completed"
	case Canceled:
		return "Canceled"
	case Rescheduled:
		return "Rescheduled"
	default:
		return string(s)
	}
}

const (
	DefaultDuration = 60
	MinDuration     = 15
	MaxDuration     = 480
)

// Visit is a scheduled visit of a client to a property. The client and property
// display fields are filled on reads and are nil when the referenced row is gone.
type Visit struct {
	ID                int64      `json:"id"`
	ClientID          int64      `json:"client_id"`
	PropertyID        int64      `json:"property_id"`
	ScheduledDatetime time.Time  `json:"scheduled_datetime"`
	Status            Status     `json:"status"`
	Notes             *string    `json:"notes"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         *time.Time `json:"updated_at"`
	DurationMinutes   int        `json:"duration_minutes"`
	AgentNotes        *string    `json:"agent_notes"`
	ClientFeedback    *string    `json:"client_feedback"`

	ClientName       *string `json:"client_name"`
	ClientPhone      *string `json:"client_phone"`
	PropertyLocation *string `json:"property_location"`
	PropertyType     *string `json:"property_type"`
}

// Input is a visit creation request.
type Input struct {
	ClientID          int64   `json:"client_id"`
	PropertyID        int64   `json:"property_id"`
	ScheduledDatetime string  `json:"scheduled_datetime"`
	Status            *string `json:"status"`
	Notes             *string `json:"notes"`
	DurationMinutes   *int    `json:"duration_minutes"`
	AgentNotes        *string `json:"agent_notes"`
	ClientFeedback    *string `json:"client_feedback"`
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	ScheduledDatetime *string `json:"scheduled_datetime"`
	Status            *string `json:"status"`
	Notes             *string `json:"notes"`
	DurationMinutes   *int    `json:"duration_minutes"`
	AgentNotes        *string `json:"agent_notes"`
	ClientFeedback    *string `json:"client_feedback"`
}

// Filter narrows a visit listing. Zero values mean "any".
type Filter struct {
	Status     Status
	ClientID   int64
	PropertyID int64
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
	Offset     int
}

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Summary holds aggregate visit counts.
type Summary struct {
	Total                 int            `json:"total"`
	Scheduled             int            `json:"scheduled"`
	Completed             int            `json:"completed"`
	Canceled              int            `json:"canceled"`
	Rescheduled           int            `json:"rescheduled"`
	Today                 int            `json:"today"`
	CompletionRatePercent float64        `json:"completion_rate_percent"`
	ByStatus              map[string]int `json:"by_status"`
}
