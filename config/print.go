package config

import (
	"context"

	"github.com/Temutjin2k/jwt-auth/pkg/logger"
	wrap "github.com/Temutjin2k/jwt-auth/pkg/logger/wrapper"
)

const masked = "******"

// PrintConfig logs the effective configuration with secrets masked.
func PrintConfig(ctx context.Context, cfg *Config, log logger.Logger) {
	ctx = wrap.WithAction(ctx, "print_config")

	log.Info(ctx, "configuration loaded",
		"log_level", cfg.Log.Level,
		"http_port", cfg.HTTP.Port,
		"http_cors_origins", cfg.HTTP.CORSOrigins,
		"storage_driver", cfg.Storage.Driver,
		"database_host", cfg.Database.Host,
		"database_port", cfg.Database.Port,
		"database_name", cfg.Database.Database,
		"database_password", mask(cfg.Database.Password),
		"rabbitmq_enabled", cfg.RabbitMQ.Enabled,
		"rabbitmq_host", cfg.RabbitMQ.Host,
		"auth_jwt_secret", mask(cfg.Auth.JWTSecret),
		"auth_issuer", cfg.Auth.Issuer,
		"auth_audience", cfg.Auth.Audience,
		"auth_enforce_expiry", cfg.Auth.EnforceExpiry,
	)

	if !cfg.Auth.EnforceExpiry {
		log.Warn(ctx, "token expiry enforcement is disabled: expired tokens will be accepted")
	}
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return masked
}
