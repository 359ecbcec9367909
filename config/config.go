package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/Temutjin2k/jwt-auth/pkg/configparser"
	"github.com/Temutjin2k/jwt-auth/pkg/logger"
)

// MinJWTSecretLength is the smallest accepted HMAC-SHA256 key in bytes.
const MinJWTSecretLength = 16

// Storage drivers
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Errors
var (
	ErrShortJWTSecret     = fmt.Errorf("AUTH_JWT_SECRET must be at least %d bytes", MinJWTSecretLength)
	ErrUnknownStorage     = errors.New("unknown STORAGE_DRIVER")
	ErrInvalidLogLevel    = errors.New("invalid LOG_LEVEL")
	ErrHTTPPortNotDefined = errors.New("HTTP_PORT must be provided")
)

// Config contains all configuration variables of the application
type (
	Config struct {
		Log      LogConfig
		HTTP     HTTPConfig
		Storage  StorageConfig
		Database DatabaseConfig
		RabbitMQ RabbitMQConfig
		Auth     Auth
	}

	LogConfig struct {
		Level string `env:"LOG_LEVEL" default:"INFO"`
	}

	HTTPConfig struct {
		Port              string        `env:"HTTP_PORT" default:"3005"`
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" default:"5s"`
		ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
		CORSOrigins       []string      `env:"HTTP_CORS_ORIGINS" default:"http://localhost:3000"` // browser origins allowed to call the API
	}

	StorageConfig struct {
		Driver string `env:"STORAGE_DRIVER" default:"postgres"`
	}

	DatabaseConfig struct {
		Host     string `env:"DATABASE_HOST" default:"localhost"`
		Port     string `env:"DATABASE_PORT" default:"5432"`
		User     string `env:"DATABASE_USER" default:"auth_user"`
		Password string `env:"DATABASE_PASSWORD" default:"auth_pass"`
		Database string `env:"DATABASE_DATABASE" default:"auth_db"`

		MaxConns        int32         `env:"DATABASE_MAXCONNS" default:"20"`         // max open connections
		MinConns        int32         `env:"DATABASE_MINCONNS" default:"2"`          // min connections kept in the pool
		MaxConnLifetime time.Duration `env:"DATABASE_MAXCONNLIFETIME" default:"30m"` // max connection lifetime
		MaxConnIdleTime time.Duration `env:"DATABASE_MAXCONNIDLETIME" default:"5m"`  // max connection idle time

		AutoMigrate bool `env:"DATABASE_AUTOMIGRATE" default:"true"`
	}

	RabbitMQConfig struct {
		Enabled  bool   `env:"RABBITMQ_ENABLED" default:"false"`
		Host     string `env:"RABBITMQ_HOST" default:"localhost"`
		Port     string `env:"RABBITMQ_PORT" default:"5672"`
		User     string `env:"RABBITMQ_USER" default:"guest"`
		Password string `env:"RABBITMQ_PASSWORD" default:"guest"`
		Exchange string `env:"RABBITMQ_EXCHANGE" default:"auth_topic"`
	}

	// Auth configures token issuance and validation. The token lifetime is fixed.
	Auth struct {
		JWTSecret string `env:"AUTH_JWT_SECRET"`
		Issuer    string `env:"AUTH_ISSUER"`
		Audience  string `env:"AUTH_AUDIENCE"`

		EnforceExpiry     bool `env:"AUTH_ENFORCE_EXPIRY" default:"true"`
		RequireExpiration bool `env:"AUTH_REQUIRE_EXPIRATION" default:"true"`
		ValidateIssuer    bool `env:"AUTH_VALIDATE_ISSUER" default:"true"`
		ValidateAudience  bool `env:"AUTH_VALIDATE_AUDIENCE" default:"true"`
	}
)

func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

func (c RabbitMQConfig) GetDSN() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.User,
		c.Password,
		c.Host,
		c.Port,
	)
}

func NewConfig(filepath string) (*Config, error) {
	cfg := &Config{}

	// Loading environment variables and parsing to config struct.
	if err := configparser.LoadAndParseYaml(filepath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load and parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < MinJWTSecretLength {
		return ErrShortJWTSecret
	}

	switch c.Storage.Driver {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorage, c.Storage.Driver)
	}

	if !logger.ValidateLogLevel(c.Log.Level) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level)
	}

	if c.HTTP.Port == "" {
		return ErrHTTPPortNotDefined
	}

	return nil
}
