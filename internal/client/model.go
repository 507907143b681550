// Package client provides the client (lead) domain model and data access.
package client

import (
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// DefaultStatus is assigned to clients created without a status.
const DefaultStatus = "Lead"

// ErrInvalid is returned when a client payload fails validation.
var ErrInvalid = errors.New("invalid client")

// Client is a prospect or customer of the agency.
type Client struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	InterestType string    `json:"interest_type"`
	Status       string    `json:"status"`
	Preferences  *string   `json:"preferences"`
	CreatedAt    time.Time `json:"created_at"`
}

// Input carries the writable fields for create and update.
type Input struct {
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	Email        string  `json:"email"`
	InterestType string  `json:"interest_type"`
	Status       string  `json:"status"`
	Preferences  *string `json:"preferences"`
}

// Validate normalizes the input and checks required fields.
func (in *Input) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	in.InterestType = strings.TrimSpace(in.InterestType)
	in.Status = strings.TrimSpace(in.Status)
	if in.Status == "" {
		in.Status = DefaultStatus
	}

	switch {
	case in.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalid)
	case in.Phone == "":
		return fmt.Errorf("%w: phone is required", ErrInvalid)
	case in.InterestType == "":
		return fmt.Errorf("%w: interest_type is required", ErrInvalid)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return fmt.Errorf("%w: invalid email %q", ErrInvalid, in.Email)
	}
	return nil
}

func scanClient(row interface{ Scan(...interface{}) error }) (*Client, error) {
	var c Client
	var prefs sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.InterestType, &c.Status, &prefs, &c.CreatedAt); err != nil {
		return nil, err
	}
	if prefs.Valid {
		c.Preferences = &prefs.String
	}
	return &c, nil
}
