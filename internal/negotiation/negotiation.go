// Package negotiation tracks price negotiations between clients and properties.
package negotiation

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/evcraddock/realty-crm/internal/clock"
	"github.com/evcraddock/realty-crm/internal/db"
)

// ErrInvalid is returned when a negotiation payload fails validation.
var ErrInvalid = errors.New("invalid negotiation")

// Negotiation is an open or closed deal discussion.
type Negotiation struct {
	ID         int64      `json:"id"`
	ClientID   int64      `json:"client_id"`
	PropertyID int64      `json:"property_id"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

// Input carries the writable fields for create and update.
type Input struct {
	ClientID   int64  `json:"client_id"`
	PropertyID int64  `json:"property_id"`
	Status     string `json:"status"`
}

func (in *Input) validate() error {
	in.Status = strings.TrimSpace(in.Status)
	if in.Status == "" {
		return fmt.Errorf("%w: status is required", ErrInvalid)
	}
	return nil
}

// ExistenceChecker reports whether a referenced row exists.
type ExistenceChecker interface {
	Exists(id int64) (bool, error)
}

// Repository provides CRUD operations for negotiations.
type Repository struct {
	db         *sql.DB
	clock      clock.Clock
	clients    ExistenceChecker
	properties ExistenceChecker
}

// NewRepository creates a negotiation repository. A nil clock uses the system clock.
func NewRepository(database *sql.DB, clients, properties ExistenceChecker, clk clock.Clock) *Repository {
	if clk == nil {
		clk = clock.System{}
	}
	return &Repository{db: database, clock: clk, clients: clients, properties: properties}
}

const selectColumns = `id, client_id, property_id, status, created_at, updated_at`

func (r *Repository) checkRefs(in Input) error {
	refs := []struct {
		kind    string
		id      int64
		checker ExistenceChecker
	}{
		{"client", in.ClientID, r.clients},
		{"property", in.PropertyID, r.properties},
	}
	for _, ref := range refs {
		ok, err := ref.checker.Exists(ref.id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s %d: %w", ref.kind, ref.id, db.ErrNotFound)
		}
	}
	return nil
}

// Create validates and inserts a negotiation.
func (r *Repository) Create(in Input) (*Negotiation, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := r.checkRefs(in); err != nil {
		return nil, err
	}

	result, err := r.db.Exec(
		"INSERT INTO negotiations (client_id, property_id, status, created_at) VALUES (?, ?, ?, ?)",
		in.ClientID, in.PropertyID, in.Status, db.FormatTime(r.clock.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting negotiation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting insert id: %w", err)
	}
	return r.GetByID(id)
}

// GetByID returns a negotiation by ID.
func (r *Repository) GetByID(id int64) (*Negotiation, error) {
	n, err := scanNegotiation(r.db.QueryRow("SELECT "+selectColumns+" FROM negotiations WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("negotiation %d: %w", id, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying negotiation %d: %w", id, err)
	}
	return n, nil
}

// List returns all negotiations in insertion order.
func (r *Repository) List() (list []*Negotiation, err error) {
	rows, err := r.db.Query("SELECT " + selectColumns + " FROM negotiations ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing negotiations: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	list = make([]*Negotiation, 0)
	for rows.Next() {
		n, err := scanNegotiation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning negotiation: %w", err)
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

// Update replaces the client, property and status and stamps updated_at.
func (r *Repository) Update(id int64, in Input) (*Negotiation, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := r.GetByID(id); err != nil {
		return nil, err
	}
	if err := r.checkRefs(in); err != nil {
		return nil, err
	}

	_, err := r.db.Exec(
		"UPDATE negotiations SET client_id = ?, property_id = ?, status = ?, updated_at = ? WHERE id = ?",
		in.ClientID, in.PropertyID, in.Status, db.FormatTime(r.clock.Now()), id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating negotiation: %w", err)
	}
	return r.GetByID(id)
}

// Delete removes a negotiation by ID.
func (r *Repository) Delete(id int64) error {
	result, err := r.db.Exec("DELETE FROM negotiations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting negotiation: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("negotiation %d: %w", id, db.ErrNotFound)
	}
	return nil
}

func scanNegotiation(row interface{ Scan(...interface{}) error }) (*Negotiation, error) {
	var n Negotiation
	var created string
	var updated sql.NullString
	if err := row.Scan(&n.ID, &n.ClientID, &n.PropertyID, &n.Status, &created, &updated); err != nil {
		return nil, err
	}

	var err error
	if n.CreatedAt, err = db.ParseTime(created); err != nil {
		return nil, err
	}
	if updated.Valid {
		t, err := db.ParseTime(updated.String)
		if err != nil {
			return nil, err
		}
		n.UpdatedAt = &t
	}
	return &n, nil
}
