package db

import (
	"database/sql"
	"fmt"
)

// migrations is an ordered list of SQL statements to run.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		username        TEXT    NOT NULL UNIQUE,
		email           TEXT    NOT NULL UNIQUE,
		hashed_password TEXT    NOT NULL,
		is_active       INTEGER NOT NULL DEFAULT 1,
		created_at      DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS properties (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		type        TEXT    NOT NULL,
		location    TEXT    NOT NULL,
		value       REAL    NOT NULL CHECK (value >= 0),
		description TEXT,
		status      TEXT    NOT NULL,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS clients (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		name          TEXT    NOT NULL,
		phone         TEXT    NOT NULL,
		email         TEXT    NOT NULL,
		interest_type TEXT    NOT NULL,
		created_at    DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	// Visits and negotiations keep their client/property ids after the referenced
	// row is deleted; reads degrade the joined display fields to null.
	`CREATE TABLE IF NOT EXISTS visits (
		id                 INTEGER PRIMARY KEY AUTOINCREMENT,
		client_id          INTEGER NOT NULL,
		property_id        INTEGER NOT NULL,
		scheduled_datetime TEXT    NOT NULL,
		notes              TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS negotiations (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		client_id   INTEGER NOT NULL,
		property_id INTEGER NOT NULL,
		status      TEXT    NOT NULL,
		created_at  TEXT    NOT NULL,
		updated_at  TEXT
	)`,
}

// columnMigrations are applied after the base tables exist.
var columnMigrations = []struct {
	table, column, definition string
}{
	{"clients", "status", "TEXT NOT NULL DEFAULT 'Lead'"},
	{"clients", "preferences", "TEXT"},
	{"visits", "status", "TEXT NOT NULL DEFAULT 'Agendada'"},
	{"visits", "created_at", "TEXT NOT NULL DEFAULT ''"},
	{"visits", "updated_at", "TEXT"},
	{"visits", "duration_minutes", "INTEGER NOT NULL DEFAULT 60"},
	{"visits", "agent_notes", "TEXT"},
	{"visits", "client_feedback", "TEXT"},
}

// indexes support the visit filters and calendar queries.
var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_visits_scheduled ON visits (scheduled_datetime)`,
	`CREATE INDEX IF NOT EXISTS idx_visits_client ON visits (client_id)`,
	`CREATE INDEX IF NOT EXISTS idx_visits_property ON visits (property_id)`,
	`CREATE INDEX IF NOT EXISTS idx_negotiations_client ON negotiations (client_id)`,
}

// Migrate runs all migrations in order. It is safe to run repeatedly.
func Migrate(db *sql.DB) error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}

	if err := renameColumnIfLegacy(db, "visits", "datetime", "scheduled_datetime"); err != nil {
		return fmt.Errorf("renaming visits.datetime: %w", err)
	}

	for _, cm := range columnMigrations {
		if err := addColumnIfNotExists(db, cm.table, cm.column, cm.definition); err != nil {
			return fmt.Errorf("adding %s.%s: %w", cm.table, cm.column, err)
		}
	}

	for i, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return fmt.Errorf("index %d: %w", i, err)
		}
	}

	return nil
}

// addColumnIfNotExists adds a column to a table if it doesn't already exist.
func addColumnIfNotExists(db *sql.DB, table, column, definition string) error {
	exists, err := hasColumn(db, table, column)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	_, err = db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
	return err
}

// renameColumnIfLegacy renames from to to when only the old column exists.
func renameColumnIfLegacy(db *sql.DB, table, from, to string) error {
	legacy, err := hasColumn(db, table, from)
	if err != nil || !legacy {
		return err
	}
	current, err := hasColumn(db, table, to)
	if err != nil || current {
		return err
	}

	_, err = db.Exec(fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s", table, from, to))
	return err
}

func hasColumn(db *sql.DB, table, column string) (found bool, err error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("checking table info: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", cerr)
		}
	}()

	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return false, fmt.Errorf("scanning column info: %w", err)
		}
		if name == column {
			return true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("iterating columns: %w", err)
	}

	return false, nil
}
