package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Temutjin2k/jwt-auth/internal/domain/models"
	"github.com/Temutjin2k/jwt-auth/internal/domain/types"
	"github.com/Temutjin2k/jwt-auth/pkg/metrics"
	"github.com/Temutjin2k/jwt-auth/pkg/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserRepo struct {
	db Querier
}

// NewUserRepo accepts a *pgxpool.Pool or anything else that can run queries.
func NewUserRepo(db Querier) *UserRepo {
	return &UserRepo{
		db: db,
	}
}

// CreateUser inserts a user row and fills u.ID, u.CreatedAt and u.UpdatedAt.
// A duplicate email yields types.ErrUserAlreadyExists.
func (r *UserRepo) CreateUser(ctx context.Context, u *models.User) (id uuid.UUID, err error) {
	if u == nil {
		return uuid.Nil, errors.New("nil user")
	}
	defer observe("create_user", time.Now(), &err)

	const q = `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at;
	`

	err = TxorDB(ctx, r.db).QueryRow(ctx, q, u.Name, u.Email, u.PasswordHash).
		Scan(&id, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return uuid.Nil, types.ErrUserAlreadyExists
		}
		return uuid.Nil, fmt.Errorf("%w: insert user: %w", types.ErrDatabaseFailed, err)
	}

	u.ID = id
	return id, nil
}

// GetUserByEmail fetches by email (unique). An empty email matches nobody.
func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (u *models.User, err error) {
	if email == "" {
		return nil, types.ErrUserNotFound
	}
	defer observe("get_user_by_email", time.Now(), &err)

	const q = `
		SELECT id, created_at, updated_at, name, email, password_hash
		FROM users
		WHERE email = $1;
	`

	return r.scanUser(TxorDB(ctx, r.db).QueryRow(ctx, q, email))
}

// GetUserByID fetches by UUID id.
func (r *UserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (u *models.User, err error) {
	if id == uuid.Nil {
		return nil, types.ErrUserNotFound
	}
	defer observe("get_user_by_id", time.Now(), &err)

	const q = `
		SELECT id, created_at, updated_at, name, email, password_hash
		FROM users
		WHERE id = $1;
	`

	return r.scanUser(TxorDB(ctx, r.db).QueryRow(ctx, q, id))
}

func (r *UserRepo) scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: select user: %w", types.ErrDatabaseFailed, err)
	}
	return &u, nil
}

// observe records query metrics; not found is a successful query.
func observe(operation string, start time.Time, errp *error) {
	err := *errp
	if errors.Is(err, types.ErrUserNotFound) || errors.Is(err, types.ErrUserAlreadyExists) {
		err = nil
	}
	metrics.RecordDatabaseQuery(types.ServiceName, operation, err, time.Since(start))
}
