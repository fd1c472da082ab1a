package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-api/internal/errors"
)

func TestHandleDatabaseError(t *testing.T) {
	originalErr := stderrors.New("database connection failed")
	result := HandleDatabaseError("test operation", originalErr)

	assert.NotNil(t, result)
	assert.Contains(t, result.Error(), "test operation")
	assert.Contains(t, result.Error(), "database connection failed")
	assert.True(t, errors.IsErrorType(result, errors.ErrorTypeStorage))
}

func openRawDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "raw.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.Exec(`CREATE TABLE items (v INTEGER)`)
	require.NoError(t, err)
	return db
}

func TestWithTransaction(t *testing.T) {
	db := openRawDB(t)
	ctx := context.Background()

	err := WithTransaction(ctx, db, "insert", func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO items (v) VALUES (1)`)
		return err
	})
	require.NoError(t, err)

	err = WithTransaction(ctx, db, "insert", func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO items (v) VALUES (2)`); err != nil {
			return err
		}
		return stderrors.New("abort")
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeStorage))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&count))
	assert.Equal(t, 1, count)
}
