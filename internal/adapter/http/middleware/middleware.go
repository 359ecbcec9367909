package middleware

import (
	"context"

	"github.com/Temutjin2k/jwt-auth/internal/domain/models"
	"github.com/Temutjin2k/jwt-auth/pkg/logger"
)

type (
	// Authenticator validates bearer tokens.
	Authenticator interface {
		Authenticate(ctx context.Context, token string) (*models.Claims, error)
	}

	Middleware struct {
		auth Authenticator
		log  logger.Logger
	}
)

func NewMiddleware(auth Authenticator, log logger.Logger) *Middleware {
	return &Middleware{
		auth: auth,
		log:  log,
	}
}
