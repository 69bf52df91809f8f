package config

import (
	"fmt"
	"time"

	domainconfig "voidstate/domain/config"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Store backends
const (
	StoreMemory   = "memory"
	StoreDynamoDB = "dynamodb"
	StorePebble   = "pebble"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress  string `env:"SERVER_ADDRESS" envDefault:":8080" validate:"required"`
	MetricsAddress string `env:"METRICS_ADDRESS" envDefault:":9090"`
	Environment    string `env:"ENVIRONMENT" envDefault:"development" validate:"oneof=development staging production"`
	ServiceName    string `env:"SERVICE_NAME" envDefault:"void-state" validate:"required"`

	// Request handling
	MaxBodyBytes    int64         `env:"MAX_BODY_BYTES" envDefault:"4096" validate:"gt=0"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s" validate:"gt=0"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s" validate:"gt=0"`
	ClientIPHeader  string        `env:"CLIENT_IP_HEADER" envDefault:"CF-Connecting-IP" validate:"required"`

	// Storage
	StoreBackend       string        `env:"STORE_BACKEND" envDefault:"memory" validate:"oneof=memory dynamodb pebble"`
	AWSRegion          string        `env:"AWS_REGION" envDefault:"us-west-2"`
	TableName          string        `env:"TABLE_NAME" envDefault:"void-state" validate:"required_if=StoreBackend dynamodb"`
	DynamoDBEndpoint   string        `env:"DYNAMODB_ENDPOINT" validate:"omitempty,url"`
	ConsistentReads    bool          `env:"DYNAMODB_CONSISTENT_READS" envDefault:"true"`
	PebblePath         string        `env:"PEBBLE_PATH" envDefault:"./data/void" validate:"required_if=StoreBackend pebble"`
	BreakerEnabled     bool          `env:"BREAKER_ENABLED" envDefault:"true"`
	BreakerTimeout     time.Duration `env:"BREAKER_TIMEOUT" envDefault:"10s"`
	BreakerMinRequests uint32        `env:"BREAKER_MIN_REQUESTS" envDefault:"10"`
	BreakerThreshold   float64       `env:"BREAKER_FAILURE_THRESHOLD" envDefault:"0.8" validate:"gt=0,lte=1"`

	// Domain tuning
	PresenceSalt    string        `env:"PRESENCE_SALT" envDefault:"void-salt" validate:"required"`
	EchoProbability float64       `env:"ECHO_PROBABILITY" envDefault:"0.2" validate:"gte=0,lte=1"`
	MaxEchoes       int           `env:"MAX_ECHOES" envDefault:"500" validate:"gt=0"`
	RateLimit       int           `env:"RATE_LIMIT" envDefault:"10" validate:"gt=0"`
	RateWindow      time.Duration `env:"RATE_WINDOW" envDefault:"60s" validate:"gt=0"`
	BlocklistPath   string        `env:"BLOCKLIST_PATH"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	// Feature flags
	EnableMetrics bool `env:"ENABLE_METRICS" envDefault:"true"`
	EnableTracing bool `env:"ENABLE_TRACING" envDefault:"false"`
}

// LoadConfig loads configuration from environment variables. A .env file in
// the working directory is read first when present; real environment
// variables win over it.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.RateWindow > 2*time.Minute {
		// a window must not outlive its rate limit record
		return fmt.Errorf("invalid configuration: RATE_WINDOW must not exceed 2m")
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// DomainConfig returns the business rules with the configured overrides
// applied to the defaults.
func (c *Config) DomainConfig() *domainconfig.DomainConfig {
	d := domainconfig.DefaultDomainConfig()
	d.PresenceSalt = c.PresenceSalt
	d.EchoProbability = c.EchoProbability
	d.MaxEchoes = c.MaxEchoes
	d.RateLimit = c.RateLimit
	d.RateWindow = c.RateWindow
	return d
}
