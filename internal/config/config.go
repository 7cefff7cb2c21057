// Package config resolves process configuration from the environment.
// A .env file in the working directory is honored for development setups.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// envPrefix namespaces the variables: TRADEPOST_API_URL and so on.
const envPrefix = "tradepost"

const (
	defaultAPIURL      = "https://api.trademaster.lat"
	defaultHTTPTimeout = 30 * time.Second
)

// Config captures everything the client needs from the environment.
type Config struct {
	// APIURL is the base URL of the marketplace REST API.
	APIURL string `envconfig:"API_URL"`
	// DataDir holds the session files and preferences. Defaults to
	// ~/.tradepost.
	DataDir string `envconfig:"DATA_DIR"`
	// Token overrides the stored session token when set. Useful for
	// scripted runs against a test account.
	Token string `envconfig:"TOKEN"`
	// HTTPTimeout bounds each API request. Defaults to 30s.
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT"`
}

// Load reads the .env file (best effort) and parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load() // missing .env is the normal case

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = defaultHTTPTimeout
	}
	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("config.Load: resolve home dir: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".tradepost")
	}
	return cfg, nil
}

// PrefsPath returns the preferences file location inside the data dir.
func (c Config) PrefsPath() string {
	return filepath.Join(c.DataDir, "prefs.toml")
}
