package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfigSaveAndLoad(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	cfg := CLIConfig{
		ServerURL: "http://myhost:9090",
		Token:     "eyJtest",
		Username:  "admin",
		ExpiresAt: time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	if err := saveConfig(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	path := filepath.Join(tmp, ".config", "crm", "config.yaml")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not found: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := loadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.ServerURL != cfg.ServerURL || loaded.Token != cfg.Token || loaded.Username != cfg.Username {
		t.Errorf("loaded = %+v, want %+v", loaded, cfg)
	}
	if !loaded.ExpiresAt.Equal(cfg.ExpiresAt) {
		t.Errorf("expires_at = %v, want %v", loaded.ExpiresAt, cfg.ExpiresAt)
	}
}

func TestConfigLoadMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load missing: %v", err)
	}
	if cfg.ServerURL != "" || cfg.Token != "" {
		t.Error("expected zero-value config for missing file")
	}
}

func TestGetServerURL(t *testing.T) {
	t.Run("env", func(t *testing.T) {
		t.Setenv("CRM_SERVER_URL", "http://custom:1234")
		t.Setenv("HOME", t.TempDir())
		if url := getServerURL(); url != "http://custom:1234" {
			t.Errorf("url = %q", url)
		}
	})

	t.Run("config", func(t *testing.T) {
		t.Setenv("CRM_SERVER_URL", "")
		t.Setenv("HOME", t.TempDir())
		if err := saveConfig(CLIConfig{ServerURL: "http://saved:1"}); err != nil {
			t.Fatalf("save: %v", err)
		}
		if url := getServerURL(); url != "http://saved:1" {
			t.Errorf("url = %q", url)
		}
	})

	t.Run("default", func(t *testing.T) {
		t.Setenv("CRM_SERVER_URL", "")
		t.Setenv("HOME", t.TempDir())
		if url := getServerURL(); url != defaultServerURL {
			t.Errorf("url = %q, want %q", url, defaultServerURL)
		}
	})
}

func TestGetToken(t *testing.T) {
	t.Run("env wins", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		t.Setenv("CRM_TOKEN", "envtok")
		if err := saveConfig(CLIConfig{Token: "filetok"}); err != nil {
			t.Fatalf("save: %v", err)
		}
		if tok := getToken(); tok != "envtok" {
			t.Errorf("token = %q", tok)
		}
	})

	t.Run("config", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		t.Setenv("CRM_TOKEN", "")
		if err := saveConfig(CLIConfig{Token: "filetok"}); err != nil {
			t.Fatalf("save: %v", err)
		}
		if tok := getToken(); tok != "filetok" {
			t.Errorf("token = %q", tok)
		}
	})

	t.Run("empty", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		t.Setenv("CRM_TOKEN", "")
		if tok := getToken(); tok != "" {
			t.Errorf("token = %q, want empty", tok)
		}
	})
}

func TestConfigPathOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	t.Setenv("CRM_CONFIG", path)

	if err := saveConfig(CLIConfig{Token: "tok"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config at %s: %v", path, err)
	}
}

func TestCLIConfigExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		cfg  CLIConfig
		want bool
	}{
		{"no token", CLIConfig{ExpiresAt: now.Add(-time.Hour)}, false},
		{"unknown expiry", CLIConfig{Token: "t"}, false},
		{"still valid", CLIConfig{Token: "t", ExpiresAt: now.Add(time.Minute)}, false},
		{"expires now", CLIConfig{Token: "t", ExpiresAt: now}, true},
		{"expired", CLIConfig{Token: "t", ExpiresAt: now.Add(-time.Minute)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Expired(now); got != tt.want {
				t.Errorf("Expired = %v, want %v", got, tt.want)
			}
		})
	}
}
