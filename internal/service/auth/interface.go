package auth

import (
	"context"

	"github.com/Temutjin2k/jwt-auth/internal/domain/models"
	"github.com/google/uuid"
)

// UserRepo is the storage backend of the identity store.
// Lookups return types.ErrUserNotFound, duplicates return types.ErrUserAlreadyExists.
type UserRepo interface {
	CreateUser(ctx context.Context, user *models.User) (uuid.UUID, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
	CompareDummy(password string)
}

// Identities finds, verifies and creates principals.
type Identities interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	Create(ctx context.Context, user *models.User, password string) (uuid.UUID, error)
}

type TokenProvider interface {
	Issue(ctx context.Context, user *models.User) (*models.IssuedToken, error)
	Validate(ctx context.Context, token string) (*models.Claims, error)
}

type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event models.UserRegisteredEvent) error
	PublishUserLoggedIn(ctx context.Context, event models.UserLoggedInEvent) error
}
