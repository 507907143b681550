package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestLoginSavesToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path != "/users/login" || body["password"] != "123456" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Incorrect username or password"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok-1","token_type":"bearer","expires_at":"2030-01-01T00:00:00Z"}`))
	}))
	defer srv.Close()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("CRM_SERVER_URL", "")

	var buf bytes.Buffer
	if err := runLogin(&buf, srv.URL, "admin", "123456"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(buf.String(), "Logged in as admin") {
		t.Errorf("output = %q", buf.String())
	}

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Token != "tok-1" || cfg.ServerURL != srv.URL || cfg.Username != "admin" {
		t.Errorf("config = %+v", cfg)
	}
	if !cfg.ExpiresAt.Equal(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expires_at = %v", cfg.ExpiresAt)
	}

	err = runLogin(&buf, srv.URL, "admin", "wrong")
	if err == nil || !strings.Contains(err.Error(), "Incorrect username or password") {
		t.Errorf("bad password err = %v", err)
	}
}

func TestReadLine(t *testing.T) {
	got, err := readLine(strings.NewReader("  secret \nignored"))
	if err != nil || got != "secret" {
		t.Errorf("readLine = %q, %v", got, err)
	}
	got, err = readLine(strings.NewReader("noeol"))
	if err != nil || got != "noeol" {
		t.Errorf("readLine without newline = %q, %v", got, err)
	}
}
