package database

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsersSchemaEmbedded(t *testing.T) {
	t.Parallel()

	assert.Contains(t, usersSchemaSQL, "CREATE TABLE IF NOT EXISTS users")
	assert.Contains(t, usersSchemaSQL, "password_hash")
	assert.Contains(t, usersSchemaSQL, "password_salt")
	assert.Contains(t, usersSchemaSQL, "lower(username)")
}

func TestEnsureSchema(t *testing.T) {
	t.Run("applies embedded schema", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users`).
			WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

		require.NoError(t, ensureSchema(context.Background(), mock))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wraps failures", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users`).
			WillReturnError(errors.New("permission denied"))

		err = ensureSchema(context.Background(), mock)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "apply users schema")
	})

	t.Run("nil pool", func(t *testing.T) {
		var db *DB
		require.Error(t, db.EnsureSchema(context.Background()))
	})
}
