package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Temutjin2k/jwt-auth/internal/domain/models"
	"github.com/Temutjin2k/jwt-auth/internal/domain/types"
	"github.com/google/uuid"
)

// UserRepo keeps users in process memory. Data is lost on restart.
type UserRepo struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]models.User
	byEmail map[string]uuid.UUID
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID:    make(map[uuid.UUID]models.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (r *UserRepo) CreateUser(_ context.Context, u *models.User) (uuid.UUID, error) {
	if u == nil {
		return uuid.Nil, errors.New("nil user")
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return uuid.Nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[u.Email]; exists {
		return uuid.Nil, types.ErrUserAlreadyExists
	}

	now := time.Now().UTC()
	u.ID = id
	u.CreatedAt = now
	u.UpdatedAt = now

	r.byID[id] = *u
	r.byEmail[u.Email] = id

	return id, nil
}

func (r *UserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, types.ErrUserNotFound
	}
	u := r.byID[id]
	return &u, nil
}

func (r *UserRepo) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, types.ErrUserNotFound
	}
	return &u, nil
}
