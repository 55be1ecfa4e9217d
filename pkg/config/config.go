package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/velora/storefront/pkg/auth"
	"github.com/velora/storefront/pkg/observability"
)

// Development-only fallbacks; Validate rejects them in production
const (
	devAccessSecret  = "dev-access-secret"
	devRefreshSecret = "dev-refresh-secret"
)

// Config holds all application configuration
type Config struct {
	// Environment is "development" or "production"
	Environment string

	Server    ServerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Storage   StorageConfig

	LogLevel observability.LogLevel
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// AuthConfig holds token signing and password hashing configuration
type AuthConfig struct {
	AccessSecret  string
	AccessTTL     time.Duration
	RefreshSecret string
	RefreshTTL    time.Duration
	HashCost      int
	LookupTimeout time.Duration
}

// RateLimitConfig holds the per-class budgets
type RateLimitConfig struct {
	GeneralMax    int
	GeneralWindow time.Duration
	AuthMax       int
	AuthWindow    time.Duration
	APIMax        int
	APIWindow     time.Duration
}

// StorageConfig selects the backing stores. An empty PostgresURL selects the
// in-memory store; an empty RedisURL selects the in-process rate limiter.
type StorageConfig struct {
	PostgresURL       string
	PostgresMaxConns  int
	RedisURL          string
	RateLimitFailOpen bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("STOREFRONT_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("STOREFRONT_HOST", "0.0.0.0"),
			Port:            getEnv("STOREFRONT_PORT", "8080"),
			ReadTimeout:     getEnvDuration("STOREFRONT_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("STOREFRONT_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("STOREFRONT_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("STOREFRONT_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Auth: AuthConfig{
			AccessSecret:  getEnv("STOREFRONT_JWT_SECRET", devAccessSecret),
			AccessTTL:     getEnvDuration("STOREFRONT_JWT_TTL", 7*24*time.Hour),
			RefreshSecret: getEnv("STOREFRONT_JWT_REFRESH_SECRET", devRefreshSecret),
			RefreshTTL:    getEnvDuration("STOREFRONT_JWT_REFRESH_TTL", 30*24*time.Hour),
			HashCost:      getEnvInt("STOREFRONT_HASH_COST", auth.DefaultHashCost),
			LookupTimeout: getEnvDuration("STOREFRONT_AUTH_LOOKUP_TIMEOUT", 5*time.Second),
		},
		RateLimit: RateLimitConfig{
			GeneralMax:    getEnvInt("STOREFRONT_RATELIMIT_GENERAL_MAX", 100),
			GeneralWindow: getEnvDuration("STOREFRONT_RATELIMIT_GENERAL_WINDOW", 15*time.Minute),
			AuthMax:       getEnvInt("STOREFRONT_RATELIMIT_AUTH_MAX", 5),
			AuthWindow:    getEnvDuration("STOREFRONT_RATELIMIT_AUTH_WINDOW", 15*time.Minute),
			APIMax:        getEnvInt("STOREFRONT_RATELIMIT_API_MAX", 1000),
			APIWindow:     getEnvDuration("STOREFRONT_RATELIMIT_API_WINDOW", 15*time.Minute),
		},
		Storage: StorageConfig{
			PostgresURL:       getEnv("STOREFRONT_POSTGRES_URL", ""),
			PostgresMaxConns:  getEnvInt("STOREFRONT_POSTGRES_MAX_CONNS", 20),
			RedisURL:          getEnv("STOREFRONT_REDIS_URL", ""),
			RateLimitFailOpen: getEnvBool("STOREFRONT_RATELIMIT_FAIL_OPEN", true),
		},
		LogLevel: observability.ParseLogLevel(getEnv("STOREFRONT_LOG_LEVEL", "info")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is safe to run with
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Auth.AccessSecret == "" || c.Auth.RefreshSecret == "" {
		return fmt.Errorf("token secrets must not be empty")
	}
	if c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}

	// Running production traffic on the development fallback secrets would
	// make every deployment's tokens forgeable; refuse to start.
	if c.Environment == "production" {
		if c.Auth.AccessSecret == devAccessSecret {
			return fmt.Errorf("STOREFRONT_JWT_SECRET must be set in production")
		}
		if c.Auth.RefreshSecret == devRefreshSecret {
			return fmt.Errorf("STOREFRONT_JWT_REFRESH_SECRET must be set in production")
		}
	}

	if c.RateLimit.GeneralMax <= 0 || c.RateLimit.AuthMax <= 0 || c.RateLimit.APIMax <= 0 {
		return fmt.Errorf("rate limit budgets must be positive")
	}
	if c.RateLimit.GeneralWindow <= 0 || c.RateLimit.AuthWindow <= 0 || c.RateLimit.APIWindow <= 0 {
		return fmt.Errorf("rate limit windows must be positive")
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
