// Package config loads process configuration from the environment.
package config

import (
	"fmt"

	env "github.com/caarlos0/env/v11"
)

// Enforcement levels for the quota gate. The ledger itself never rejects on
// quota grounds; this only controls the presentation-layer policy.
const (
	EnforcementWarn  = "warn"
	EnforcementBlock = "block"
)

type Config struct {
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Storage. Driver is "bolt" or "sqlite"; both persist the same two
	// channels at Path.
	DBDriver string `env:"DB_DRIVER" envDefault:"bolt"`
	DBPath   string `env:"DB_PATH" envDefault:"leave.db"`

	// Annual allowances per leave type.
	VacationQuota int `env:"VACATION_QUOTA" envDefault:"20"`
	SickQuota     int `env:"SICK_QUOTA" envDefault:"14"`

	// QuotaEnforcement is "warn" (create succeeds with a warning) or "block"
	// (creation over the remaining balance is refused at the API).
	QuotaEnforcement string `env:"QUOTA_ENFORCEMENT" envDefault:"warn"`

	// Advisor credentials. An empty key disables the feature entirely.
	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	GeminiModel   string `env:"GEMINI_MODEL"`
	GeminiBaseURL string `env:"GEMINI_BASE_URL"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "bolt", "sqlite":
	default:
		return fmt.Errorf("config: unknown DB_DRIVER %q", c.DBDriver)
	}
	switch c.QuotaEnforcement {
	case EnforcementWarn, EnforcementBlock:
	default:
		return fmt.Errorf("config: unknown QUOTA_ENFORCEMENT %q", c.QuotaEnforcement)
	}
	return nil
}
