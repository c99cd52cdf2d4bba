// Package config loads service settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the api binary needs to start.
type Config struct {
	ListenAddr  string
	PostgresDSN string

	// HydraAdminURL points at the OAuth2 introspection admin API. When
	// empty, the local HS256 introspector is used with LocalTokenSecret.
	HydraAdminURL    string
	LocalTokenSecret string

	ShutdownTimeout time.Duration
}

// Load reads SADCO_* variables, sourcing .env first if present. Missing
// .env is not an error; a malformed one is.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := Config{
		ListenAddr:       envOr("SADCO_LISTEN_ADDR", ":8080"),
		PostgresDSN:      os.Getenv("SADCO_PG_DSN"),
		HydraAdminURL:    os.Getenv("SADCO_HYDRA_ADMIN_URL"),
		LocalTokenSecret: os.Getenv("SADCO_LOCAL_TOKEN_SECRET"),
		ShutdownTimeout:  10 * time.Second,
	}

	if raw := os.Getenv("SADCO_SHUTDOWN_TIMEOUT_SECONDS"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs < 1 {
			return Config{}, fmt.Errorf("config: SADCO_SHUTDOWN_TIMEOUT_SECONDS must be a positive integer")
		}
		cfg.ShutdownTimeout = time.Duration(secs) * time.Second
	}

	if cfg.PostgresDSN == "" {
		return Config{}, fmt.Errorf("config: SADCO_PG_DSN is required")
	}
	if cfg.HydraAdminURL == "" && cfg.LocalTokenSecret == "" {
		return Config{}, fmt.Errorf("config: set SADCO_HYDRA_ADMIN_URL or SADCO_LOCAL_TOKEN_SECRET")
	}

	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
