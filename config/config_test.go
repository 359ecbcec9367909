package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Temutjin2k/jwt-auth/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Log:     LogConfig{Level: logger.LevelInfo},
		HTTP:    HTTPConfig{Port: "3005"},
		Storage: StorageConfig{Driver: StorageMemory},
		Auth:    Auth{JWTSecret: "0123456789abcdef"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "empty secret", mutate: func(c *Config) { c.Auth.JWTSecret = "" }, wantErr: ErrShortJWTSecret},
		{name: "short secret", mutate: func(c *Config) { c.Auth.JWTSecret = "0123456789abcde" }, wantErr: ErrShortJWTSecret},
		{name: "unknown storage", mutate: func(c *Config) { c.Storage.Driver = "sqlite" }, wantErr: ErrUnknownStorage},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "TRACE" }, wantErr: ErrInvalidLogLevel},
		{name: "no port", mutate: func(c *Config) { c.HTTP.Port = "" }, wantErr: ErrHTTPPortNotDefined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewConfig_FromYamlAndDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("AUTH_ENFORCE_EXPIRY", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
auth:
  jwt_secret: "yaml-secret-0123456789"
storage:
  driver: memory
`), 0o600))

	cfg, err := NewConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "yaml-secret-0123456789", cfg.Auth.JWTSecret)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.True(t, cfg.Auth.EnforceExpiry)
	assert.True(t, cfg.Auth.RequireExpiration)
	assert.Equal(t, "3005", cfg.HTTP.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, int32(20), cfg.Database.MaxConns)
	assert.Equal(t, "auth_topic", cfg.RabbitMQ.Exchange)
}

func TestNewConfig_ShortSecretFailsFast(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "short")
	t.Setenv("STORAGE_DRIVER", StorageMemory)

	_, err := NewConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrShortJWTSecret)
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: "5432", Database: "d"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", db.GetDSN())

	mq := RabbitMQConfig{User: "guest", Password: "guest", Host: "mq", Port: "5672"}
	assert.Equal(t, "amqp://guest:guest@mq:5672/", mq.GetDSN())
}

func TestPrintConfig_MasksSecrets(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, "auth", logger.LevelDebug)

	cfg := validConfig()
	cfg.Database.Password = "db-password"
	cfg.Auth.EnforceExpiry = false

	PrintConfig(context.Background(), cfg, log)

	out := buf.String()
	assert.NotContains(t, out, cfg.Auth.JWTSecret)
	assert.NotContains(t, out, "db-password")
	assert.Contains(t, out, masked)
	assert.Equal(t, 2, strings.Count(out, "\n"), "expected config line plus expiry warning")
}
