package database

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed migrations/001_users.up.sql
var usersSchemaSQL string

// EnsureSchema creates the users table and its indexes when they are missing.
// The SQL is idempotent, so it is safe on every start.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if db == nil || db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	return ensureSchema(ctx, db.Pool)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func ensureSchema(ctx context.Context, conn execer) error {
	if _, err := conn.Exec(ctx, usersSchemaSQL); err != nil {
		return fmt.Errorf("apply users schema: %w", err)
	}

	slog.Info("database schema ensured", "tables", "users")
	return nil
}
