// Package property provides the property listing domain model and data access.
package property

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalid is returned when a property payload is missing required fields.
var ErrInvalid = errors.New("invalid property")

// Property is a listing managed by the agency.
type Property struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Location    string    `json:"location"`
	Value       float64   `json:"value"`
	Description *string   `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Input carries the writable fields for create and update.
type Input struct {
	Type        string  `json:"type"`
	Location    string  `json:"location"`
	Value       float64 `json:"value"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
}

// Validate trims the input and checks required fields.
func (in *Input) Validate() error {
	in.Type = strings.TrimSpace(in.Type)
	in.Location = strings.TrimSpace(in.Location)
	in.Status = strings.TrimSpace(in.Status)

	switch {
	case in.Type == "":
		return fmt.Errorf("%w: type is required", ErrInvalid)
	case in.Location == "":
		return fmt.Errorf("%w: location is required", ErrInvalid)
	case in.Status == "":
		return fmt.Errorf("%w: status is required", ErrInvalid)
	case in.Value < 0:
		return fmt.Errorf("%w: value must not be negative", ErrInvalid)
	}
	return nil
}

// scanProperty scans a property from a database row.
func scanProperty(row interface{ Scan(...interface{}) error }) (*Property, error) {
	var p Property
	var description sql.NullString

	if err := row.Scan(&p.ID, &p.Type, &p.Location, &p.Value, &description, &p.Status, &p.CreatedAt); err != nil {
		return nil, err
	}
	if description.Valid {
		p.Description = &description.String
	}
	return &p, nil
}
