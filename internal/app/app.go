package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/Temutjin2k/jwt-auth/config"
	"github.com/Temutjin2k/jwt-auth/internal/app/microservices"
	"github.com/Temutjin2k/jwt-auth/pkg/logger"
)

var ErrServiceNotInitialized = errors.New("service not initialized")

type Service interface {
	Start(ctx context.Context) error
}

type App struct {
	service Service

	cfg config.Config
	log logger.Logger
}

// NewApplication
func NewApplication(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	app := &App{
		cfg: cfg,
		log: log,
	}

	service, err := microservices.NewAuth(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to init service: %w", err)
	}
	app.service = service

	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	if a.service == nil {
		return ErrServiceNotInitialized
	}

	return a.service.Start(ctx)
}
