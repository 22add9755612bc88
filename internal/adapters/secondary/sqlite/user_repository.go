package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/kronos-hms/os-tracker-backend/internal/core/domain"
	apperrors "github.com/kronos-hms/os-tracker-backend/internal/core/errors"
	"github.com/kronos-hms/os-tracker-backend/internal/core/ports"
)

// UserRepository handles account persistence in the embedded database.
type UserRepository struct {
	db *sql.DB
}

// Ensure implementation matches the interface.
var _ ports.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates a new user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new account and returns its assigned id.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, unit) VALUES (?, ?, ?, ?)",
		user.Name, user.Email, user.PasswordHash, user.Unit,
	)
	if err != nil {
		// The driver exposes constraint failures as plain errors; the only
		// unique column is email.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return 0, apperrors.ErrUserExists
		}
		return 0, err
	}
	return result.LastInsertId()
}

// GetByEmail retrieves an account by email for login checks.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, email, password_hash, unit FROM users WHERE email = ?", email,
	).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Unit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves an account by its id.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, email, password_hash, unit FROM users WHERE id = ?", id,
	).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Unit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
