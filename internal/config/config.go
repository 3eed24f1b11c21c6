// Package config loads client settings from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"shobdo-cli/internal/format"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds settings read from SHOBDO_* variables. CLI flags override them.
type Config struct {
	APIURL    string        `env:"SHOBDO_API_URL" envDefault:"http://localhost:8000"`
	ConfigDir string        `env:"SHOBDO_CONFIG_DIR"` // empty means ~/.shobdo
	Timeout   time.Duration `env:"SHOBDO_TIMEOUT" envDefault:"30s"`

	LogLevel  string `env:"SHOBDO_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"SHOBDO_LOG_FORMAT" envDefault:"text"`
	LogFile   string `env:"SHOBDO_LOG_FILE"`

	Format   string `env:"SHOBDO_FORMAT" envDefault:"json"`
	Schedule string `env:"SHOBDO_SCHEDULE" envDefault:"0 9 * * *"`

	// Password is only read by `shobdo login` when no flag is given.
	Password string `env:"SHOBDO_PASSWORD"`
}

// Load reads the given .env files (missing ones are skipped) and then the process
// environment. Variables already set in the environment win over .env values.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if err := ValidateAPIURL(c.APIURL); err != nil {
		errs = append(errs, err)
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("SHOBDO_TIMEOUT must be positive, got %s", c.Timeout))
	}
	if !format.Known(c.Format) {
		errs = append(errs, fmt.Errorf("SHOBDO_FORMAT must be json or table, got %q", c.Format))
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("SHOBDO_LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

// ValidateAPIURL accepts absolute http(s) URLs.
func ValidateAPIURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid API URL %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API URL %q: want http(s)://host[:port]", raw)
	}
	return nil
}
