package auth

import (
	"context"
	"errors"

	"github.com/Temutjin2k/jwt-auth/internal/domain/models"
)

// Publishers fans an event out to every publisher and joins their errors.
type Publishers []EventPublisher

func (p Publishers) PublishUserRegistered(ctx context.Context, event models.UserRegisteredEvent) error {
	var errs []error
	for _, pub := range p {
		if err := pub.PublishUserRegistered(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p Publishers) PublishUserLoggedIn(ctx context.Context, event models.UserLoggedInEvent) error {
	var errs []error
	for _, pub := range p {
		if err := pub.PublishUserLoggedIn(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
