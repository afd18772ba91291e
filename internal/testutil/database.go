// Package testutil provides shared test helpers.
package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mfuentes/insider-scout/internal/storage"
)

// SetupTestDB creates a migrated in-memory database for testing.
// The database is closed automatically when the test finishes.
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err, "failed to create test database")

	err = db.Migrate(context.Background())
	require.NoError(t, err, "failed to migrate test database")

	t.Cleanup(func() {
		require.NoError(t, db.Close(), "failed to close test database")
	})

	return db
}
