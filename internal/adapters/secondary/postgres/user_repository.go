package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kronos-hms/os-tracker-backend/internal/core/domain"
	apperrors "github.com/kronos-hms/os-tracker-backend/internal/core/errors"
	"github.com/kronos-hms/os-tracker-backend/internal/core/ports"
)

// UserRepository handles database operations for hospital staff accounts.
type UserRepository struct {
	pool *pgxpool.Pool
}

// Ensure implementation matches the interface.
var _ ports.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates a new user repository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a new account and returns its assigned id.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	const query = `
INSERT INTO users (name, email, password_hash, unit)
VALUES ($1, $2, $3, $4)
RETURNING id
`
	var id int64
	err := r.pool.QueryRow(ctx, query, user.Name, user.Email, user.PasswordHash, user.Unit).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 is unique_violation; the only unique column is email.
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, apperrors.ErrUserExists
		}
		return 0, err
	}
	return id, nil
}

// GetByEmail retrieves an account by email for login checks.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
SELECT id, name, email, password_hash, unit
FROM users
WHERE email = $1
`
	var user domain.User
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Unit,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves an account by its id.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `
SELECT id, name, email, password_hash, unit
FROM users
WHERE id = $1
`
	var user domain.User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Unit,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
