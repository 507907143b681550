package auth

import (
	"errors"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/evcraddock/realty-crm/internal/db"
)

func testUserStore(t *testing.T) *UserStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	d, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if cerr := d.Close(); cerr != nil {
			t.Errorf("close db: %v", cerr)
		}
	})
	return NewUserStore(d, NewHasher(bcrypt.MinCost))
}

func TestRegisterAndAuthenticate(t *testing.T) {
	s := testUserStore(t)

	user, err := s.Register("admin", "Admin@CRM.com", "123456")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if user.Email != "admin@crm.com" {
		t.Errorf("email = %q, want lower-cased", user.Email)
	}
	if !user.IsActive {
		t.Error("new user should be active")
	}
	if user.HashedPassword == "123456" {
		t.Error("password stored in plaintext")
	}

	got, err := s.Authenticate("admin", "123456")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("authenticated id = %d, want %d", got.ID, user.ID)
	}
}

func TestAuthenticateFailures(t *testing.T) {
	s := testUserStore(t)

	if _, err := s.Register("admin", "admin@crm.com", "123456"); err != nil {
		t.Fatalf("register: %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "admin", "654321"},
		{"unknown user", "ghost", "123456"},
		{"empty password", "admin", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Authenticate(tt.username, tt.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("err = %v, want ErrInvalidCredentials", err)
			}
			if !errors.Is(err, ErrUnauthenticated) {
				t.Error("expected an authentication failure")
			}
		})
	}
}

func TestAuthenticateInactive(t *testing.T) {
	s := testUserStore(t)

	u, err := s.Register("maria", "maria@crm.com", "pw")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := s.db.Exec("UPDATE users SET is_active = 0 WHERE id = ?", u.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if _, err := s.Authenticate("maria", "pw"); !errors.Is(err, ErrInactiveUser) {
		t.Fatalf("err = %v, want ErrInactiveUser", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	s := testUserStore(t)

	if _, err := s.Register("admin", "admin@crm.com", "pw"); err != nil {
		t.Fatalf("first register: %v", err)
	}

	tests := []struct {
		name, username, email string
	}{
		{"same username", "admin", "other@crm.com"},
		{"same email", "other", "admin@crm.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Register(tt.username, tt.email, "pw")
			if !errors.Is(err, ErrUserExists) {
				t.Fatalf("err = %v, want ErrUserExists", err)
			}
		})
	}
}

func TestRegisterInvalid(t *testing.T) {
	s := testUserStore(t)

	tests := []struct {
		name, username, email, password string
	}{
		{"empty username", "", "a@crm.com", "pw"},
		{"bad email", "a", "not-an-email", "pw"},
		{"empty password", "a", "a@crm.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Register(tt.username, tt.email, tt.password)
			if !errors.Is(err, ErrInvalidUser) {
				t.Fatalf("err = %v, want ErrInvalidUser", err)
			}
		})
	}
}

func TestGetByIDNotFound(t *testing.T) {
	s := testUserStore(t)

	_, err := s.GetByID(999)
	if !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("err = %v, want db.ErrNotFound", err)
	}
}
