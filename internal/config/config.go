// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8000).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN; required by server, migrate, seed, and worker.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// AccessJWTSecret signs access tokens (HS256). Must differ from the refresh secret.
	AccessJWTSecret string `mapstructure:"ACCESS_JWT_SECRET"`
	// RefreshJWTSecret signs refresh tokens (HS256). Must differ from the access secret.
	RefreshJWTSecret string `mapstructure:"REFRESH_JWT_SECRET"`
	// JWTIssuer is the iss claim set on issued tokens and validated on parse.
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAccessTTL is the access token lifetime (e.g. "1h").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// JWTRefreshTTL is the refresh token lifetime (e.g. "2016h" = 12 weeks).
	JWTRefreshTTL string `mapstructure:"JWT_REFRESH_TTL"`
	// BcryptCost is the bcrypt cost factor (4-31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// EAAPIKey is the eActivities API key used by the membership sync worker.
	EAAPIKey string `mapstructure:"EA_API_KEY"`
	// EABaseURL is the eActivities API base URL.
	EABaseURL string `mapstructure:"EA_BASE_URL"`
	// SyncInterval is how often the worker re-syncs membership records (e.g. "6h").
	SyncInterval string `mapstructure:"SYNC_INTERVAL"`
	// OTLPEndpoint is the OTLP HTTP endpoint for traces; tracing is disabled when empty.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8000")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("ACCESS_JWT_SECRET", "")
	v.SetDefault("REFRESH_JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "membership-portal")
	v.SetDefault("JWT_ACCESS_TTL", "1h")
	v.SetDefault("JWT_REFRESH_TTL", "2016h") // 12 weeks
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("EA_API_KEY", "")
	v.SetDefault("EA_BASE_URL", "https://eactivities.union.ic.ac.uk/API/CSP/658")
	v.SetDefault("SYNC_INTERVAL", "6h")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.AccessJWTSecret != "" && cfg.AccessJWTSecret == cfg.RefreshJWTSecret {
		return nil, errors.New("config: ACCESS_JWT_SECRET and REFRESH_JWT_SECRET must be distinct")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	return &cfg, nil
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 1h if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTAccessTTL)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// RefreshTTL parses JWTRefreshTTL as a time.Duration. Returns 12 weeks if unset or invalid.
func (c *Config) RefreshTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTRefreshTTL)
	if err != nil || d <= 0 {
		return 12 * 7 * 24 * time.Hour
	}
	return d
}

// SyncEvery parses SyncInterval as a time.Duration. Returns 6h if unset or invalid.
func (c *Config) SyncEvery() time.Duration {
	d, err := time.ParseDuration(c.SyncInterval)
	if err != nil || d <= 0 {
		return 6 * time.Hour
	}
	return d
}
