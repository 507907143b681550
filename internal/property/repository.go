package property

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/evcraddock/realty-crm/internal/db"
)

// Repository provides CRUD operations for properties.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a property repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectColumns = `id, type, location, value, description, status, created_at`

// Create validates and inserts a property, returning it with its generated ID.
func (r *Repository) Create(in Input) (*Property, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	result, err := r.db.Exec(
		"INSERT INTO properties (type, location, value, description, status) VALUES (?, ?, ?, ?, ?)",
		in.Type, in.Location, in.Value, in.Description, in.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting property: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting insert id: %w", err)
	}

	return r.GetByID(id)
}

// GetByID returns a property by its ID.
func (r *Repository) GetByID(id int64) (*Property, error) {
	row := r.db.QueryRow("SELECT "+selectColumns+" FROM properties WHERE id = ?", id)

	p, err := scanProperty(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("property %d: %w", id, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying property %d: %w", id, err)
	}

	return p, nil
}

// Exists reports whether a property with id is stored.
func (r *Repository) Exists(id int64) (bool, error) {
	var one int
	err := r.db.QueryRow("SELECT 1 FROM properties WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking property %d: %w", id, err)
	}
	return true, nil
}

// List returns all properties in insertion order.
func (r *Repository) List() (props []*Property, err error) {
	rows, err := r.db.Query("SELECT " + selectColumns + " FROM properties ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	props = make([]*Property, 0)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning property: %w", err)
		}
		props = append(props, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating properties: %w", err)
	}

	return props, nil
}

// Update replaces the writable fields of a property.
func (r *Repository) Update(id int64, in Input) (*Property, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	result, err := r.db.Exec(
		"UPDATE properties SET type = ?, location = ?, value = ?, description = ?, status = ? WHERE id = ?",
		in.Type, in.Location, in.Value, in.Description, in.Status, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating property: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("property %d: %w", id, db.ErrNotFound)
	}

	return r.GetByID(id)
}

// Delete removes a property by ID.
func (r *Repository) Delete(id int64) error {
	result, err := r.db.Exec("DELETE FROM properties WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting property: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("property %d: %w", id, db.ErrNotFound)
	}

	return nil
}
