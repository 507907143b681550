// Package config reads server settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/evcraddock/realty-crm/internal/db"
)

// devSecret signs tokens when no secret is configured in dev mode.
const devSecret = "crm-dev-secret-do-not-use-in-production"

// Config holds server configuration.
type Config struct {
	DatabasePath string
	JWTSecret    string
	TokenTTL     time.Duration
	BcryptCost   int
	FrontendURL  string
	Location     *time.Location
	DevMode      bool
	Port         int
}

// Addr returns the listen address for Port.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate checks the settings needed to serve the API.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("CRM_JWT_SECRET is required (set CRM_DEV_MODE=true to use a development secret)")
	}
	return nil
}

// Load reads a .env file (or the given files) into the environment without
// overriding variables that are already set, then builds a Config.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment.
func FromEnv() (*Config, error) {
	cfg := &Config{
		DevMode:     os.Getenv("CRM_DEV_MODE") == "true",
		FrontendURL: getEnv("", "CRM_FRONTEND_URL", "FRONTEND_URL"),
		BcryptCost:  bcrypt.DefaultCost,
	}

	var err error
	if cfg.DatabasePath, err = db.PathFromURL(getEnv("", "CRM_DATABASE_URL", "DATABASE_URL")); err != nil {
		return nil, err
	}

	cfg.JWTSecret = getEnv("", "CRM_JWT_SECRET", "SECRET_KEY")
	if cfg.JWTSecret == "" && cfg.DevMode {
		cfg.JWTSecret = devSecret
	}

	ttl, err := getEnvInt(30, "CRM_TOKEN_TTL_MINUTES", "ACCESS_TOKEN_EXPIRE_MINUTES")
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %d minutes", ttl)
	}
	cfg.TokenTTL = time.Duration(ttl) * time.Minute

	if cfg.BcryptCost, err = getEnvInt(bcrypt.DefaultCost, "CRM_BCRYPT_COST"); err != nil {
		return nil, err
	}

	if cfg.Port, err = getEnvInt(8000, "CRM_PORT"); err != nil {
		return nil, err
	}

	cfg.Location = time.Local
	if tz := os.Getenv("CRM_TIMEZONE"); tz != "" {
		if cfg.Location, err = time.LoadLocation(tz); err != nil {
			return nil, fmt.Errorf("CRM_TIMEZONE: %w", err)
		}
	}

	return cfg, nil
}

// getEnv returns the first non-empty variable among keys.
func getEnv(defaultVal string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return defaultVal
}

func getEnvInt(defaultVal int, keys ...string) (int, error) {
	for _, k := range keys {
		v := strings.TrimSpace(os.Getenv(k))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%s: invalid integer %q", k, v)
		}
		return n, nil
	}
	return defaultVal, nil
}
