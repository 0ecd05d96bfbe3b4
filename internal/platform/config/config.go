// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const defaultEnvFile = ".env"

// ErrMissingStoreConfig indicates the required backend connection
// parameters are absent. Startup must fail on it.
var ErrMissingStoreConfig = errors.New("config: SUPABASE_URL and SUPABASE_ANON_KEY are required")

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Admin  AdminConfig
	Site   SiteConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Addr         string        `env:"SITE_HTTP_ADDR" envDefault:":8080"`
	ReadTimeout  time.Duration `env:"SITE_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"SITE_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout  time.Duration `env:"SITE_IDLE_TIMEOUT" envDefault:"60s"`
}

// StoreConfig holds the hosted table backend connection parameters.
type StoreConfig struct {
	URL    string `env:"SUPABASE_URL"`
	APIKey string `env:"SUPABASE_ANON_KEY"`
}

// AdminConfig holds the admin credential pair and session cookie keys.
type AdminConfig struct {
	Username string `env:"ADMIN_USERNAME" envDefault:"wassim1"`
	Password string `env:"ADMIN_PASSWORD"`
	// SessionHashKey signs the session cookie. When empty a random key is
	// generated at startup and sessions do not survive restarts.
	SessionHashKey  string `env:"SESSION_HASH_KEY"`
	SessionBlockKey string `env:"SESSION_BLOCK_KEY"`
	CookieSecure    bool   `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
}

// SiteConfig holds storefront parameters.
type SiteConfig struct {
	WhatsAppPhone   string        `env:"WHATSAPP_PHONE" envDefault:"21655338664"`
	RefreshInterval time.Duration `env:"CATALOG_REFRESH_INTERVAL" envDefault:"30s"`
	DefaultLocale   string        `env:"SITE_DEFAULT_LOCALE" envDefault:"fr"`
	// Dev runs against the in-memory store and skips the backend
	// requirement. Never enable in production.
	Dev bool `env:"SITE_DEV" envDefault:"false"`
}

// Load reads the optional .env file and parses the environment into Config.
// Values already present in the environment win over the file.
func Load() (Config, error) {
	if err := loadDotEnv(defaultEnvFile); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks the invariants that must hold before the server starts.
func (c Config) Validate() error {
	if c.Site.Dev {
		return nil
	}
	if strings.TrimSpace(c.Store.URL) == "" || strings.TrimSpace(c.Store.APIKey) == "" {
		return ErrMissingStoreConfig
	}
	return nil
}

// loadDotEnv reads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func loadDotEnv(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("config: set %s: %w", key, err)
		}
	}
	return scanner.Err()
}
