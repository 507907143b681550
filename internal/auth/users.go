package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/evcraddock/realty-crm/internal/db"
)

var (
	// ErrUserExists is returned when the username or email is taken.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidUser is returned for missing or malformed registration fields.
	ErrInvalidUser = errors.New("invalid user")
)

// User is an API account.
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// UserStore manages users in SQLite.
type UserStore struct {
	db     *sql.DB
	hasher *Hasher
}

// NewUserStore creates a user store.
func NewUserStore(db *sql.DB, hasher *Hasher) *UserStore {
	return &UserStore{db: db, hasher: hasher}
}

const userColumns = "id, username, email, hashed_password, is_active, created_at"

// Register creates a new active user with a hashed password.
func (s *UserStore) Register(username, email, password string) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidUser)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email %q", ErrInvalidUser, email)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidUser)
	}

	var count int
	if err := s.db.QueryRow(
		"SELECT COUNT(*) FROM users WHERE username = ? OR email = ?", username, email,
	).Scan(&count); err != nil {
		return nil, fmt.Errorf("checking existing user: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUserExists, username)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidUser, err)
	}

	result, err := s.db.Exec(
		"INSERT INTO users (username, email, hashed_password) VALUES (?, ?, ?)",
		username, email, hash,
	)
	if err != nil {
		// Lost a race with a concurrent registration.
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, fmt.Errorf("%w: %s", ErrUserExists, username)
		}
		return nil, fmt.Errorf("adding user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user ID: %w", err)
	}

	return s.GetByID(id)
}

// Authenticate checks a username/password pair and returns the user.
func (s *UserStore) Authenticate(username, password string) (*User, error) {
	u, err := s.GetByUsername(strings.TrimSpace(username))
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !s.hasher.Verify(password, u.HashedPassword) {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrInactiveUser
	}

	return u, nil
}

// GetByID returns a user by ID.
func (s *UserStore) GetByID(id int64) (*User, error) {
	u, err := scanUser(s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return u, nil
}

// GetByUsername returns a user by username.
func (s *UserStore) GetByUsername(username string) (*User, error) {
	u, err := scanUser(s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE username = ?", username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", username, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return u, nil
}

func scanUser(row interface{ Scan(...interface{}) error }) (*User, error) {
	var u User
	var active int
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.HashedPassword, &active, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.IsActive = active != 0
	return &u, nil
}
