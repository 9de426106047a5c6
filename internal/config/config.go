package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Store backend names.
const (
	BackendAdmin = "admin"
	BackendRedis = "redis"
)

// Config holds all configuration for the routeward worker
type Config struct {
	// Worker configuration
	WorkerID string `env:"WORKER_ID" envDefault:"routeward-1"`

	// Store backend selection: "admin" (proxy admin endpoint) or "redis"
	StoreBackend string `env:"STORE_BACKEND" envDefault:"admin"`

	// Admin endpoint configuration
	AdminEndpoint    string        `env:"ADMIN_ENDPOINT" envDefault:"http://localhost:2019"`
	AdminTimeout     time.Duration `env:"ADMIN_TIMEOUT" envDefault:"10s"`
	AdminRetryBudget time.Duration `env:"ADMIN_RETRY_BUDGET" envDefault:"30s"`

	// Redis configuration
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASS" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Stream configuration
	StreamKey     string        `env:"STREAM_KEY" envDefault:"routes.mutations"`
	ConsumerGroup string        `env:"CONSUMER_GROUP" envDefault:"routeward-workers"`
	ResultStream  string        `env:"RESULT_STREAM" envDefault:"routes.applied"`
	BlockTime     time.Duration `env:"BLOCK_TIME" envDefault:"1s"`

	// One-shot declarative sync on startup (optional). TARGET_SERVER, when
	// set, overrides the server name declared inside the route file.
	RouteFile    string `env:"ROUTE_FILE" envDefault:""`
	TargetServer string `env:"TARGET_SERVER" envDefault:""`

	// Health check configuration
	HealthPort int `env:"HEALTH_PORT" envDefault:"8082"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.WorkerID == "" {
		return fmt.Errorf("WORKER_ID is required")
	}

	switch c.StoreBackend {
	case BackendAdmin:
		if c.AdminEndpoint == "" {
			return fmt.Errorf("ADMIN_ENDPOINT is required for the admin backend")
		}
		if c.AdminTimeout <= 0 {
			return fmt.Errorf("ADMIN_TIMEOUT must be positive")
		}
		if c.AdminRetryBudget <= 0 {
			return fmt.Errorf("ADMIN_RETRY_BUDGET must be positive")
		}
	case BackendRedis:
	default:
		return fmt.Errorf("STORE_BACKEND must be one of: %s, %s", BackendAdmin, BackendRedis)
	}

	// Redis carries the mutation streams regardless of the store backend
	if c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}

	if c.StreamKey == "" {
		return fmt.Errorf("STREAM_KEY is required")
	}

	if c.ConsumerGroup == "" {
		return fmt.Errorf("CONSUMER_GROUP is required")
	}

	if c.ResultStream == "" {
		return fmt.Errorf("RESULT_STREAM is required")
	}

	if c.BlockTime <= 0 {
		return fmt.Errorf("BLOCK_TIME must be positive")
	}

	if c.HealthPort <= 0 || c.HealthPort > 65535 {
		return fmt.Errorf("HEALTH_PORT must be between 1 and 65535")
	}

	if !isValidLogLevel(c.LogLevel) {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error")
	}

	return nil
}

// isValidLogLevel checks if the log level is valid
func isValidLogLevel(level string) bool {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	return validLevels[level]
}

// String returns a string representation of the config (without sensitive data)
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{WorkerID=%s, StoreBackend=%s, AdminEndpoint=%s, RedisAddr=%s, RedisDB=%d, "+
			"StreamKey=%s, ConsumerGroup=%s, ResultStream=%s, RouteFile=%s, TargetServer=%s, "+
			"HealthPort=%d, LogLevel=%s}",
		c.WorkerID,
		c.StoreBackend,
		c.AdminEndpoint,
		c.RedisAddr,
		c.RedisDB,
		c.StreamKey,
		c.ConsumerGroup,
		c.ResultStream,
		c.RouteFile,
		c.TargetServer,
		c.HealthPort,
		c.LogLevel,
	)
}
