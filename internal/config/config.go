// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// DefaultMongoURI is used when neither MONGO_URI nor MONGODB_URI is set.
const DefaultMongoURI = "mongodb://127.0.0.1:27017/mernform"

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"PORT" envDefault:"5000"`

	// Store selection
	StoreDriver string `env:"STORE_DRIVER" envDefault:"mongo"`

	// MongoDB. MongoURI holds the resolved connection string after Load.
	MongoURI        string `env:"MONGO_URI"`
	MongoDBURI      string `env:"MONGODB_URI"`
	MongoDatabase   string `env:"MONGO_DATABASE"`
	MongoCollection string `env:"MONGO_COLLECTION"`

	// MongoURISet is false when MongoURI fell back to DefaultMongoURI.
	MongoURISet bool

	// PostgreSQL, required when StoreDriver is "postgres"
	DatabaseURL string `env:"DATABASE_URL"`

	// Store connection bounds
	StoreConnectTimeout   time.Duration `env:"STORE_CONNECT_TIMEOUT" envDefault:"15s"`
	StoreSocketTimeout    time.Duration `env:"STORE_SOCKET_TIMEOUT" envDefault:"45s"`
	StoreOperationTimeout time.Duration `env:"STORE_OPERATION_TIMEOUT" envDefault:"45s"`
	StoreMaxPoolSize      int           `env:"STORE_MAX_POOL_SIZE" envDefault:"10"`
	StoreHealthInterval   time.Duration `env:"STORE_HEALTH_INTERVAL" envDefault:"10s"`

	// Cache (Redis), optional
	RedisURL string `env:"REDIS_URL"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting, active only when Redis is configured
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPS     int  `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst   int  `env:"RATE_LIMIT_BURST" envDefault:"20"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`

	// Field rules
	ValidateEmailFormat bool `env:"VALIDATE_EMAIL_FORMAT" envDefault:"false"`
	MaxNameLength       int  `env:"MAX_NAME_LENGTH" envDefault:"200"`
	MaxEmailLength      int  `env:"MAX_EMAIL_LENGTH" envDefault:"320"`
	MaxMessageLength    int  `env:"MAX_MESSAGE_LENGTH" envDefault:"5000"`

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// LoadDotEnv loads variables from the given files (".env" when none are
// given). Variables already present in the environment are never replaced.
// Missing files are not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load parses environment variables and returns a Config.
// Returns an error if a value does not parse or a driver requirement is unmet.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	switch cfg.StoreDriver {
	case DriverMongo, DriverMemory:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("failed to parse config: DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("failed to parse config: unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	switch {
	case cfg.MongoURI != "":
		cfg.MongoURISet = true
	case cfg.MongoDBURI != "":
		cfg.MongoURI = cfg.MongoDBURI
		cfg.MongoURISet = true
	default:
		cfg.MongoURI = DefaultMongoURI
	}

	return cfg, nil
}

// URISet reports whether the active driver's connection string came from the
// environment.
func (c *Config) URISet() bool {
	switch c.StoreDriver {
	case DriverPostgres:
		return c.DatabaseURL != ""
	case DriverMemory:
		return false
	default:
		return c.MongoURISet
	}
}
