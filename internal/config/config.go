package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/utafrali/brandhub/pkg/config"
)

// Config holds all configuration for the brandhub web frontend.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"WEB_HTTP_PORT" envDefault:"8080"`

	// Backend REST API
	BackendURL            string `env:"BACKEND_API_URL" envDefault:"http://localhost:8000"`
	BackendTimeoutSeconds int    `env:"BACKEND_TIMEOUT_SECONDS" envDefault:"15"`

	// Session store
	SessionBackend string `env:"SESSION_BACKEND" envDefault:"memory"` // memory | redis
	SessionTTL     string `env:"SESSION_TTL" envDefault:"12h"`
	CookieName     string `env:"SESSION_COOKIE_NAME" envDefault:"brandhub_session"`
	CookieSecure   bool   `env:"SESSION_COOKIE_SECURE" envDefault:"false"`

	// Redis (used when SESSION_BACKEND=redis)
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Logo images are loaded straight from object storage; only these hosts
	// are rendered, everything else falls back to the placeholder.
	LogoAllowedHosts []string `env:"LOGO_ALLOWED_HOSTS" envDefault:"" envSeparator:","`

	// Login rate limiting
	LoginRateRPS   int `env:"LOGIN_RATE_RPS" envDefault:"5"`
	LoginRateBurst int `env:"LOGIN_RATE_BURST" envDefault:"10"`

	// Metrics endpoint CIDR allow-list
	MetricsAllowedCIDRs []string `env:"METRICS_ALLOWED_CIDRS" envDefault:"127.0.0.0/8,10.0.0.0/8" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load web config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	u, err := url.Parse(c.BackendURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("BACKEND_API_URL must be an absolute URL, got %q", c.BackendURL)
	}

	if c.SessionBackend != "memory" && c.SessionBackend != "redis" {
		return fmt.Errorf("SESSION_BACKEND must be memory or redis, got %q", c.SessionBackend)
	}

	if _, err := time.ParseDuration(c.SessionTTL); err != nil {
		return fmt.Errorf("parse SESSION_TTL %q: %w", c.SessionTTL, err)
	}

	// Production deployments must not hand session cookies over plain HTTP
	// and must not rely on the in-process session store.
	if c.Environment != "development" {
		if !c.CookieSecure {
			return fmt.Errorf("SESSION_COOKIE_SECURE must be true in %q mode", c.Environment)
		}
		if c.SessionBackend != "redis" {
			return fmt.Errorf("SESSION_BACKEND must be redis in %q mode", c.Environment)
		}
	}

	return nil
}

// SessionTTLDuration returns the parsed session TTL. validate guarantees the
// value parses, so errors are impossible after Load.
func (c *Config) SessionTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.SessionTTL)
	return d
}

// BackendTimeout returns the per-request timeout for backend calls.
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.BackendTimeoutSeconds) * time.Second
}

// RedisAddr returns the Redis address string.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}
