package auth

import (
	"context"
	"fmt"

	"github.com/Temutjin2k/jwt-auth/internal/domain/models"
	"github.com/google/uuid"
)

// IdentityStore implements Identities on top of a UserRepo and a PasswordHasher.
type IdentityStore struct {
	repo   UserRepo
	hasher PasswordHasher
}

func NewIdentityStore(repo UserRepo, hasher PasswordHasher) *IdentityStore {
	return &IdentityStore{
		repo:   repo,
		hasher: hasher,
	}
}

func (s *IdentityStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repo.GetUserByEmail(ctx, models.NormalizeEmail(email))
}

func (s *IdentityStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// VerifyPassword reports whether password matches the user's stored hash.
// A nil user still costs one hash comparison.
func (s *IdentityStore) VerifyPassword(user *models.User, password string) bool {
	if user == nil || user.PasswordHash == "" {
		s.hasher.CompareDummy(password)
		return false
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	return err == nil && ok
}

// Create hashes password and stores user. The generated id is set on user.
func (s *IdentityStore) Create(ctx context.Context, user *models.User, password string) (uuid.UUID, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user.Email = models.NormalizeEmail(user.Email)
	user.PasswordHash = hash

	return s.repo.CreateUser(ctx, user)
}
