package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultServerURL = "http://localhost:8000"

// CLIConfig is the client-side state kept between invocations: which server
// to talk to and the session obtained from the last login.
type CLIConfig struct {
	ServerURL string    `yaml:"server_url,omitempty"`
	Token     string    `yaml:"token,omitempty"`
	Username  string    `yaml:"username,omitempty"`
	ExpiresAt time.Time `yaml:"expires_at,omitempty"`
}

// LoggedIn reports whether a token is stored.
func (c CLIConfig) LoggedIn() bool {
	return c.Token != ""
}

// Expired reports whether the stored token has a known expiry at or before now.
func (c CLIConfig) Expired(now time.Time) bool {
	return c.LoggedIn() && !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// clearSession drops the token and everything learned with it.
func (c *CLIConfig) clearSession() {
	c.Token = ""
	c.Username = ""
	c.ExpiresAt = time.Time{}
}

// configPath is CRM_CONFIG when set, else ~/.config/crm/config.yaml.
func configPath() (string, error) {
	if p := os.Getenv("CRM_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "crm", "config.yaml"), nil
}

// loadConfig returns the zero config when no file has been written yet.
func loadConfig() (CLIConfig, error) {
	var cfg CLIConfig

	path, err := configPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cfg, nil
	case err != nil:
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return CLIConfig{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// saveConfig writes cfg with owner-only permissions since it holds a token.
func saveConfig(cfg CLIConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// getServerURL resolves the server: CRM_SERVER_URL, then the config file,
// then the default.
func getServerURL() string {
	if v := os.Getenv("CRM_SERVER_URL"); v != "" {
		return v
	}
	if cfg, err := loadConfig(); err == nil && cfg.ServerURL != "" {
		return cfg.ServerURL
	}
	return defaultServerURL
}

// getToken resolves the bearer token: CRM_TOKEN, then the stored session.
func getToken() string {
	if v := os.Getenv("CRM_TOKEN"); v != "" {
		return v
	}
	cfg, err := loadConfig()
	if err != nil {
		return ""
	}
	return cfg.Token
}
