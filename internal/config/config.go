package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the TimeWise service
// Environment variables are automatically parsed from TIMEWISE_ prefix
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// DevMode accepts the fixed local development token in place of a login session.
	DevMode bool `envconfig:"DEV_MODE" default:"false"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Storage: postgres | sqlite | memory
	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"./data/timewise.db"`

	// TimeZone decides which calendar day "today" is for the missed-day computation.
	TimeZone string `envconfig:"TIME_ZONE" default:"UTC"`

	// Sessions expire after this many hours.
	SessionTTLHours int `envconfig:"SESSION_TTL_HOURS" default:"168"`

	// Suggestions: none | genai | ollama
	SuggestProvider       string `envconfig:"SUGGEST_PROVIDER" default:"none"`
	SuggestModel          string `envconfig:"SUGGEST_MODEL" default:""`
	GenAIAPIKey           string `envconfig:"GENAI_API_KEY" default:""`
	OllamaURL             string `envconfig:"OLLAMA_URL" default:"http://localhost:11434"`
	SuggestTimeoutSeconds int    `envconfig:"SUGGEST_TIMEOUT_SECONDS" default:"10"`

	// Health monitoring
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`
	BootstrapTimeoutSeconds   int `envconfig:"BOOTSTRAP_TIMEOUT_SECONDS" default:"15"`
}

// ResolveDefaults validates driver/provider choices and fills model defaults.
func (c *Config) ResolveDefaults() error {
	switch c.DBDriver {
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("TIMEWISE_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("TIMEWISE_SQLITE_PATH is required when DB_DRIVER=sqlite")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}

	switch c.SuggestProvider {
	case "", "none":
		c.SuggestProvider = "none"
	case "genai":
		if c.SuggestModel == "" {
			c.SuggestModel = "gemini-2.0-flash"
		}
	case "ollama":
		if c.SuggestModel == "" {
			c.SuggestModel = "llama3.2"
		}
	default:
		return fmt.Errorf("unsupported SUGGEST_PROVIDER: %s", c.SuggestProvider)
	}

	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("invalid TIME_ZONE %q: %w", c.TimeZone, err)
	}
	if c.SessionTTLHours <= 0 {
		return fmt.Errorf("SESSION_TTL_HOURS must be positive")
	}
	return nil
}

// New creates a new Config by parsing environment variables
// Environment variables should be prefixed with TIMEWISE_
// Example: TIMEWISE_DB_DRIVER, TIMEWISE_HTTP_PORT
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("TIMEWISE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("db_driver", cfg.DBDriver).
		Int("port", cfg.HTTPPort).
		Str("time_zone", cfg.TimeZone).
		Bool("dev_mode", cfg.DevMode).
		Str("suggest_provider", cfg.SuggestProvider).
		Str("suggest_model", cfg.SuggestModel).
		Str("postgres_dsn_present", func() string {
			if cfg.PostgresDSN != "" {
				return "true"
			}
			return "false"
		}()).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	return &Config{
		Environment:               EnvTesting,
		DevMode:                   true,
		LogLevel:                  "debug",
		HTTPPort:                  8080,
		DBDriver:                  "memory",
		TimeZone:                  "UTC",
		SessionTTLHours:           168,
		SuggestProvider:           "none",
		SuggestTimeoutSeconds:     2,
		HealthIntervalSeconds:     1,
		HealthProbeTimeoutSeconds: 1,
		BootstrapTimeoutSeconds:   1,
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// IsDevMode reports whether the local development token is accepted.
// Dev mode is never honoured in production.
func (c *Config) IsDevMode() bool {
	return c.DevMode && !c.IsProduction()
}

// Location returns the configured time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SessionTTL returns the lifetime of a login session.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
