// Package config loads dashboard settings from an optional YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultListen          = ":8080"
	defaultBasePath        = "/admin"
	defaultBackendBaseURL  = "http://localhost:8000"
	defaultBackendTimeout  = 15 * time.Second
	defaultSessionLifetime = 7 * 24 * time.Hour
)

// Duration wraps time.Duration with YAML decoding of Go duration strings.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("config: parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the plain time.Duration value.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Backend locates the tracker backend API.
type Backend struct {
	BaseURL string   `yaml:"base_url"`
	Timeout Duration `yaml:"timeout"`
}

// Session controls the encrypted session cookie.
type Session struct {
	CookieName   string   `yaml:"cookie_name"`
	HashKey      string   `yaml:"hash_key"`
	BlockKey     string   `yaml:"block_key"`
	Lifetime     Duration `yaml:"lifetime"`
	CookieSecure *bool    `yaml:"cookie_secure"`
}

// Config is the root dashboard configuration.
type Config struct {
	Listen      string  `yaml:"listen"`
	BasePath    string  `yaml:"base_path"`
	Environment string  `yaml:"environment"`
	Backend     Backend `yaml:"backend"`
	Session     Session `yaml:"session"`
}

// Load reads the configuration file at path (optional when empty), applies
// environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Listen:   defaultListen,
		BasePath: defaultBasePath,
		Backend: Backend{
			BaseURL: defaultBackendBaseURL,
			Timeout: Duration(defaultBackendTimeout),
		},
		Session: Session{
			Lifetime: Duration(defaultSessionLifetime),
		},
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	overrides := []struct {
		key    string
		target *string
	}{
		{"ADMIN_LISTEN", &cfg.Listen},
		{"ADMIN_BASE_PATH", &cfg.BasePath},
		{"ADMIN_ENVIRONMENT", &cfg.Environment},
		{"TRACKER_BASE_URL", &cfg.Backend.BaseURL},
		{"SESSION_COOKIE_NAME", &cfg.Session.CookieName},
		{"SESSION_HASH_KEY", &cfg.Session.HashKey},
		{"SESSION_BLOCK_KEY", &cfg.Session.BlockKey},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.key); v != "" {
			*o.target = v
		}
	}
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		return fmt.Errorf("config: backend base_url is required")
	}
	if len(c.Session.HashKey) < 32 {
		return fmt.Errorf("config: session hash_key must be at least 32 bytes")
	}
	switch len(c.Session.BlockKey) {
	case 0, 16, 24, 32:
	default:
		return fmt.Errorf("config: session block_key must be 16, 24, or 32 bytes")
	}
	if c.Session.Lifetime.Std() <= 0 {
		c.Session.Lifetime = Duration(defaultSessionLifetime)
	}
	if c.Backend.Timeout.Std() <= 0 {
		c.Backend.Timeout = Duration(defaultBackendTimeout)
	}
	return nil
}
