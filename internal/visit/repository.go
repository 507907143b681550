package visit

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/evcraddock/realty-crm/internal/db"
)

// Repository provides SQL access to visits. Reads join the client and property
// display fields.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a visit repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const enrichedSelect = `SELECT v.id, v.client_id, v.property_id, v.scheduled_datetime, v.status,
	v.notes, v.created_at, v.updated_at, v.duration_minutes, v.agent_notes, v.client_feedback,
	c.name, c.phone, p.location, p.type
	FROM visits v
	LEFT JOIN clients c ON c.id = v.client_id
	LEFT JOIN properties p ON p.id = v.property_id`

// Insert stores a new visit and returns its ID.
func (r *Repository) Insert(v *Visit) (int64, error) {
	result, err := r.db.Exec(
		`INSERT INTO visits (client_id, property_id, scheduled_datetime, status, notes,
		 created_at, duration_minutes, agent_notes, client_feedback)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ClientID, v.PropertyID, db.FormatTime(v.ScheduledDatetime), v.Status, v.Notes,
		db.FormatTime(v.CreatedAt), v.DurationMinutes, v.AgentNotes, v.ClientFeedback,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting visit: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting insert id: %w", err)
	}
	return id, nil
}

// Get returns an enriched visit by ID.
func (r *Repository) Get(id int64) (*Visit, error) {
	v, err := scanVisit(r.db.QueryRow(enrichedSelect+" WHERE v.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("visit %d: %w", id, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying visit %d: %w", id, err)
	}
	return v, nil
}

// List returns visits matching f, latest scheduled first. f.Limit must be set.
func (r *Repository) List(f Filter) ([]*Visit, error) {
	var where []string
	var args []interface{}

	if f.Status != "" {
		where = append(where, "v.status = ?")
		args = append(args, f.Status)
	}
	if f.ClientID != 0 {
		where = append(where, "v.client_id = ?")
		args = append(args, f.ClientID)
	}
	if f.PropertyID != 0 {
		where = append(where, "v.property_id = ?")
		args = append(args, f.PropertyID)
	}
	if f.DateFrom != nil {
		where = append(where, "v.scheduled_datetime >= ?")
		args = append(args, db.FormatTime(*f.DateFrom))
	}
	if f.DateTo != nil {
		where = append(where, "v.scheduled_datetime <= ?")
		args = append(args, db.FormatTime(*f.DateTo))
	}

	query := enrichedSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY v.scheduled_datetime DESC, v.id DESC LIMIT ? OFFSET ?"
	args = append(args, f.Limit, f.Offset)

	return r.query(query, args...)
}

// ListActive returns Agendada/Reagendada visits scheduled in [from, to), or
// [from, to] when inclusiveEnd is set, earliest first.
func (r *Repository) ListActive(from, to time.Time, inclusiveEnd bool) ([]*Visit, error) {
	op := "<"
	if inclusiveEnd {
		op = "<="
	}
	query := enrichedSelect + ` WHERE v.status IN (?, ?)
		AND v.scheduled_datetime >= ? AND v.scheduled_datetime ` + op + ` ?
		ORDER BY v.scheduled_datetime ASC, v.id ASC`

	return r.query(query, activeStatuses[0], activeStatuses[1], db.FormatTime(from), db.FormatTime(to))
}

// CountActive counts Agendada/Reagendada visits scheduled in [from, to].
func (r *Repository) CountActive(from, to time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM visits WHERE status IN (?, ?)
		 AND scheduled_datetime >= ? AND scheduled_datetime <= ?`,
		activeStatuses[0], activeStatuses[1], db.FormatTime(from), db.FormatTime(to),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting active visits: %w", err)
	}
	return n, nil
}

// CountByStatus returns the number of visits per stored status value.
func (r *Repository) CountByStatus() (counts map[string]int, err error) {
	rows, err := r.db.Query("SELECT status, COUNT(*) FROM visits GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("counting visits: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	counts = make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// HasActiveAt reports whether the property has an Agendada/Reagendada visit at
// exactly the given instant.
func (r *Repository) HasActiveAt(propertyID int64, at time.Time) (bool, error) {
	var one int
	err := r.db.QueryRow(
		`SELECT 1 FROM visits WHERE property_id = ? AND scheduled_datetime = ?
		 AND status IN (?, ?) LIMIT 1`,
		propertyID, db.FormatTime(at), activeStatuses[0], activeStatuses[1],
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking visit conflict: %w", err)
	}
	return true, nil
}

// Update writes every mutable field of v.
func (r *Repository) Update(v *Visit) error {
	var updatedAt interface{}
	if v.UpdatedAt != nil {
		updatedAt = db.FormatTime(*v.UpdatedAt)
	}
	result, err := r.db.Exec(
		`UPDATE visits SET scheduled_datetime = ?, status = ?, notes = ?, updated_at = ?,
		 duration_minutes = ?, agent_notes = ?, client_feedback = ? WHERE id = ?`,
		db.FormatTime(v.ScheduledDatetime), v.Status, v.Notes, updatedAt,
		v.DurationMinutes, v.AgentNotes, v.ClientFeedback, v.ID,
	)
	if err != nil {
		return fmt.Errorf("updating visit: %w", err)
	}
	return checkAffected(result, v.ID)
}

// UpdateStatus sets the status and updated_at of a visit.
func (r *Repository) UpdateStatus(id int64, status Status, at time.Time) error {
	result, err := r.db.Exec(
		"UPDATE visits SET status = ?, updated_at = ? WHERE id = ?",
		status, db.FormatTime(at), id,
	)
	if err != nil {
		return fmt.Errorf("updating visit status: %w", err)
	}
	return checkAffected(result, id)
}

// Delete removes a visit by ID.
func (r *Repository) Delete(id int64) error {
	result, err := r.db.Exec("DELETE FROM visits WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting visit: %w", err)
	}
	return checkAffected(result, id)
}

func checkAffected(result sql.Result, id int64) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("visit %d: %w", id, db.ErrNotFound)
	}
	return nil
}

func (r *Repository) query(query string, args ...interface{}) (visits []*Visit, err error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing visits: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	visits = make([]*Visit, 0)
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning visit: %w", err)
		}
		visits = append(visits, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating visits: %w", err)
	}
	return visits, nil
}

func scanVisit(row interface{ Scan(...interface{}) error }) (*Visit, error) {
	var v Visit
	var scheduled, created string
	var updated, notes, agentNotes, feedback sql.NullString
	var clientName, clientPhone, location, propType sql.NullString

	err := row.Scan(&v.ID, &v.ClientID, &v.PropertyID, &scheduled, &v.Status,
		&notes, &created, &updated, &v.DurationMinutes, &agentNotes, &feedback,
		&clientName, &clientPhone, &location, &propType)
	if err != nil {
		return nil, err
	}

	if v.ScheduledDatetime, err = parseStored(scheduled); err != nil {
		return nil, fmt.Errorf("visit %d scheduled_datetime: %w", v.ID, err)
	}
	// Rows migrated from the legacy schema have no creation time.
	if created != "" {
		if v.CreatedAt, err = parseStored(created); err != nil {
			return nil, fmt.Errorf("visit %d created_at: %w", v.ID, err)
		}
	}
	if updated.Valid && updated.String != "" {
		t, err := parseStored(updated.String)
		if err != nil {
			return nil, fmt.Errorf("visit %d updated_at: %w", v.ID, err)
		}
		v.UpdatedAt = &t
	}

	v.Notes = nullable(notes)
	v.AgentNotes = nullable(agentNotes)
	v.ClientFeedback = nullable(feedback)
	v.ClientName = nullable(clientName)
	v.ClientPhone = nullable(clientPhone)
	v.PropertyLocation = nullable(location)
	v.PropertyType = nullable(propType)
	return &v, nil
}

// legacyLayouts cover timestamps written before the UTC text format was adopted.
var legacyLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

func parseStored(s string) (time.Time, error) {
	if t, err := db.ParseTime(s); err == nil {
		return t, nil
	}
	for _, layout := range legacyLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
