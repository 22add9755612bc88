package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kronos-hms/os-tracker-backend/internal/core/domain"
	apperrors "github.com/kronos-hms/os-tracker-backend/internal/core/errors"
)

func TestOpen_CreatesParentDirectory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "nested", "orders.db")

	store, err := Open(ctx, path)
	require.NoError(t, err)
	defer store.Close()

	assert.NoError(t, store.Ping(ctx))
}

func TestOpen_MigrationsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "orders.db")

	store, err := Open(ctx, path)
	require.NoError(t, err)
	seedUser(t, store, "maria@hospital.local")
	require.NoError(t, store.Close())

	// Reopening the same file runs the schema again and must not fail or
	// lose data.
	store, err = Open(ctx, path)
	require.NoError(t, err)
	defer store.Close()

	user, err := NewUserRepository(store.DB()).GetByEmail(ctx, "maria@hospital.local")
	require.NoError(t, err)
	assert.Equal(t, "Maria Souza", user.Name)
}

func TestStore_SeedDefaultUser(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	id, err := store.SeedDefaultUser(ctx, "recepcao@hospital.local", "mudar123")
	require.NoError(t, err)
	require.NotZero(t, id)

	user, err := NewUserRepository(store.DB()).GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Recepção", user.Name)
	assert.Equal(t, "Administrativo", user.Unit)
	assert.True(t, user.CheckPassword("mudar123"))

	// Seeding again returns the existing account.
	again, err := store.SeedDefaultUser(ctx, "recepcao@hospital.local", "mudar123")
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	seedUser(t, store, "carlos@hospital.local")

	_, err := NewUserRepository(store.DB()).Create(ctx, &domain.User{
		Name:         "Carlos Lima",
		Email:        "carlos@hospital.local",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		Unit:         "Farmácia",
	})
	assert.ErrorIs(t, err, apperrors.ErrUserExists)
}
