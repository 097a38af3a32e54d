// Package config loads storefront settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "your-secret-key-change-in-production"

// Config is the full application configuration.
type Config struct {
	Env             string        `envconfig:"APP_ENV" default:"development"`
	HTTPPort        int           `envconfig:"HTTP_PORT" default:"3000"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`

	DB        DBConfig        `envconfig:"DB"`
	JWT       JWTConfig       `envconfig:"JWT"`
	Redis     RedisConfig     `envconfig:"REDIS"`
	Cache     CacheConfig     `envconfig:"CACHE"`
	RateLimit RateLimitConfig `envconfig:"RATE_LIMIT"`
}

// DBConfig selects the storage backend.
type DBConfig struct {
	Driver string `envconfig:"DRIVER" default:"sqlite"`
	DSN    string `envconfig:"DSN" default:"storefront.db"`
	Debug  bool   `envconfig:"DEBUG" default:"false"`
}

// JWTConfig configures token issuance.
type JWTConfig struct {
	SecretKey  string        `envconfig:"SECRET_KEY" default:"your-secret-key-change-in-production"`
	Issuer     string        `envconfig:"ISSUER" default:"beverage-storefront"`
	AccessTTL  time.Duration `envconfig:"ACCESS_TTL" default:"15m"`
	RefreshTTL time.Duration `envconfig:"REFRESH_TTL" default:"168h"`
}

// RedisConfig is shared by the cache plugin and the rate limiter.
type RedisConfig struct {
	Addr string `envconfig:"ADDR" default:"localhost:6379"`
}

// CacheConfig configures the catalog cache plugin.
type CacheConfig struct {
	Enabled  bool          `envconfig:"ENABLED" default:"true"`
	Database int           `envconfig:"DB" default:"1"`
	Prefix   string        `envconfig:"PREFIX" default:"catalog:"`
	TTL      time.Duration `envconfig:"TTL" default:"5m"`
}

// RateLimitConfig configures the Redis sliding-window limiter.
type RateLimitConfig struct {
	Enabled           bool `envconfig:"ENABLED" default:"true"`
	Database          int  `envconfig:"DB" default:"0"`
	IPPerMinute       int  `envconfig:"IP_PER_MINUTE" default:"100"`
	CheckoutPerMinute int  `envconfig:"CHECKOUT_PER_MINUTE" default:"10"`
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDevelopment reports whether internal error details may be exposed.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate rejects settings the application cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.HTTPPort))
	}
	switch c.DB.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DB.Driver))
	}
	if c.DB.DSN == "" {
		errs = append(errs, errors.New("DB_DSN is required"))
	}
	if c.JWT.SecretKey == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY is required"))
	}
	if c.Env == "production" && c.JWT.SecretKey == DefaultJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET_KEY must be changed in production"))
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		errs = append(errs, errors.New("JWT token lifetimes must be positive"))
	}
	if c.RateLimit.IPPerMinute <= 0 || c.RateLimit.CheckoutPerMinute <= 0 {
		errs = append(errs, errors.New("rate limits must be positive"))
	}

	return errors.Join(errs...)
}
