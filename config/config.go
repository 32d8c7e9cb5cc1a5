package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppAddr     string `envconfig:"APP_ADDR" default:":8080"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Local"`

	DatabaseURL string `envconfig:"DATABASE_URL" default:"postgresql://postgres@localhost:5432/worktime?sslmode=disable"`
	DBLogLevel  string `envconfig:"DB_LOG_LEVEL" default:"warn"`

	JWTSecret     string        `envconfig:"JWT_SECRET" required:"true"`
	JWTExpiration time.Duration `envconfig:"JWT_EXPIRATION" default:"24h"`

	RedisAddr string        `envconfig:"REDIS_ADDR"`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"10m"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	RateLimitPerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`

	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:"admin@worktime.local"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret must be provided")
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Location resolves APP_TIMEZONE. Day windows start at midnight in this location.
func (c *Config) Location() (*time.Location, error) {
	if c.AppTimezone == "" || c.AppTimezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.AppTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.AppTimezone, err)
	}
	return loc, nil
}

// CacheEnabled reports whether a Redis address was configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}
