package client

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/evcraddock/realty-crm/internal/db"
)

// Repository provides CRUD operations for clients.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a client repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectColumns = `id, name, phone, email, interest_type, status, preferences, created_at`

// Create validates and inserts a client.
func (r *Repository) Create(in Input) (*Client, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	result, err := r.db.Exec(
		"INSERT INTO clients (name, phone, email, interest_type, status, preferences) VALUES (?, ?, ?, ?, ?, ?)",
		in.Name, in.Phone, in.Email, in.InterestType, in.Status, in.Preferences,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting client: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting insert id: %w", err)
	}

	return r.GetByID(id)
}

// GetByID returns a client by ID.
func (r *Repository) GetByID(id int64) (*Client, error) {
	c, err := scanClient(r.db.QueryRow("SELECT "+selectColumns+" FROM clients WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("client %d: %w", id, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying client %d: %w", id, err)
	}
	return c, nil
}

// Exists reports whether a client with id is stored.
func (r *Repository) Exists(id int64) (bool, error) {
	var one int
	err := r.db.QueryRow("SELECT 1 FROM clients WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking client %d: %w", id, err)
	}
	return true, nil
}

// List returns all clients in insertion order.
func (r *Repository) List() (clients []*Client, err error) {
	rows, err := r.db.Query("SELECT " + selectColumns + " FROM clients ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	clients = make([]*Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning client: %w", err)
		}
		clients = append(clients, c)
	}

	return clients, rows.Err()
}

// Update replaces the writable fields of a client.
func (r *Repository) Update(id int64, in Input) (*Client, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	result, err := r.db.Exec(
		`UPDATE clients SET name = ?, phone = ?, email = ?, interest_type = ?, status = ?, preferences = ?
		 WHERE id = ?`,
		in.Name, in.Phone, in.Email, in.InterestType, in.Status, in.Preferences, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating client: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("client %d: %w", id, db.ErrNotFound)
	}

	return r.GetByID(id)
}

// Delete removes a client by ID.
func (r *Repository) Delete(id int64) error {
	result, err := r.db.Exec("DELETE FROM clients WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting client: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("client %d: %w", id, db.ErrNotFound)
	}

	return nil
}
