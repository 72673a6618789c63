// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/bazaarhq/checkout/pkg/config"
	"github.com/bazaarhq/checkout/pkg/database"
)

// Config is the full service configuration.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"checkout-service"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8084"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	PostgresHost     string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int           `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string        `env:"POSTGRES_USER" envDefault:"checkout"`
	PostgresPassword string        `env:"POSTGRES_PASSWORD" envDefault:"checkout"`
	PostgresDB       string        `env:"POSTGRES_DB" envDefault:"checkout"`
	PostgresSSLMode  string        `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	PostgresMaxConns int32         `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	PostgresMinConns int32         `env:"POSTGRES_MIN_CONNS" envDefault:"2"`
	PostgresConnLife time.Duration `env:"POSTGRES_CONN_LIFETIME" envDefault:"30m"`
	PostgresConnIdle time.Duration `env:"POSTGRES_CONN_IDLE" envDefault:"5m"`

	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`

	CatalogURL string `env:"CATALOG_SERVICE_URL" envDefault:"http://localhost:8081"`

	GatewayURL       string `env:"PAYMENT_GATEWAY_URL" envDefault:"http://localhost:8090"`
	GatewayKeyID     string `env:"PAYMENT_GATEWAY_KEY_ID"`
	GatewayKeySecret string `env:"PAYMENT_GATEWAY_KEY_SECRET"`
	WebhookSecret    string `env:"PAYMENT_WEBHOOK_SECRET"`

	JWTSecret string `env:"JWT_SECRET"`

	CheckoutLockTTL time.Duration `env:"CHECKOUT_LOCK_TTL" envDefault:"30s"`

	WebhookRateLimit int `env:"WEBHOOK_RATE_LIMIT" envDefault:"10"`
	WebhookRateBurst int     `env:"WEBHOOK_RATE_BURST" envDefault:"20"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	TracingEnabled    bool    `env:"TRACING_ENABLED" envDefault:"false"`
	TracingEndpoint   string  `env:"OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TracingSampleRate float64 `env:"TRACING_SAMPLE_RATE" envDefault:"0.1"`
}

// Load reads the configuration from the environment and validates the parts
// that have no safe default.
func Load() (*Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.WebhookSecret == "" {
		return fmt.Errorf("PAYMENT_WEBHOOK_SECRET is required")
	}
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT %d is out of range", c.HTTPPort)
	}
	return nil
}

// PostgresConfig builds the pool configuration for the shared database layer.
func (c *Config) PostgresConfig() *database.PostgresConfig {
	return &database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPassword,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSLMode,
		MaxConns:        c.PostgresMaxConns,
		MinConns:        c.PostgresMinConns,
		MaxConnLifetime: c.PostgresConnLife,
		MaxConnIdleTime: c.PostgresConnIdle,
	}
}

// RedisConfig builds the Redis client configuration.
func (c *Config) RedisConfig() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}
