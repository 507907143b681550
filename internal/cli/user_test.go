package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

func TestUserCreate(t *testing.T) {
	t.Setenv("CRM_BCRYPT_COST", "4")
	dbPath := filepath.Join(t.TempDir(), "crm.db")

	out, err := executeCommand("--db", dbPath, "--format", "json",
		"user", "create", "--username", "admin", "--email", "Admin@Example.com", "--password", "123456")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	var u struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := json.Unmarshal([]byte(out), &u); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if u.Username != "admin" || u.Email != "admin@example.com" {
		t.Errorf("user = %+v", u)
	}

	_, err = executeCommand("--db", dbPath,
		"user", "create", "--username", "admin", "--email", "other@example.com", "--password", "x")
	if err == nil || !strings.Contains(err.Error(), "admin") {
		t.Errorf("duplicate err = %v", err)
	}
}
