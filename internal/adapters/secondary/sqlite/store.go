// Package sqlite backs the service with an embedded database for single-host
// deployments, the mode small hospital sites run in. It uses the pure-Go
// driver so the binary ships without cgo.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/kronos-hms/os-tracker-backend/internal/core/domain"
	apperrors "github.com/kronos-hms/os-tracker-backend/internal/core/errors"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		unit TEXT NOT NULL DEFAULT ''
	);`,
	`CREATE TABLE IF NOT EXISTS service_orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		requester_id INTEGER NOT NULL,
		origin_team TEXT NOT NULL DEFAULT '',
		destination_team TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		client_label TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL,
		priority TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'Aberto',
		technical_report TEXT,
		materials_used TEXT,
		opened_at TIMESTAMP NOT NULL,
		closed_at TIMESTAMP,
		resolution_hours REAL,
		FOREIGN KEY (requester_id) REFERENCES users(id)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_service_orders_requester ON service_orders(requester_id);`,
	`CREATE INDEX IF NOT EXISTS idx_service_orders_team ON service_orders(destination_team);`,
	`CREATE INDEX IF NOT EXISTS idx_service_orders_status ON service_orders(status);`,
}

// Store owns the embedded database handle.
type Store struct {
	db *sql.DB
}

// Open creates the parent directory if needed, opens the database and applies
// the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// The driver serializes writes; a single connection avoids SQLITE_BUSY
	// storms under concurrent handlers.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite migration #%d failed: %w", i+1, err)
		}
	}
	return nil
}

// DB exposes the handle for the repositories in this package.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping checks connectivity for health probes.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SeedDefaultUser inserts the shared front-desk account older clients post
// orders through when it does not exist yet. Intended for development and
// single-terminal sites only.
func (s *Store) SeedDefaultUser(ctx context.Context, email, password string) (int64, error) {
	users := NewUserRepository(s.db)

	existing, err := users.GetByEmail(ctx, email)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return 0, err
	}

	user, err := domain.NewUser(domain.UserRegistrationParams{
		Name:     "Recepção",
		Email:    email,
		Password: password,
		Unit:     "Administrativo",
	})
	if err != nil {
		return 0, err
	}

	return users.Create(ctx, user)
}
