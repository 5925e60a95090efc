package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bnema/permstore/internal/infrastructure/persistence/sqlite"
	"github.com/bnema/permstore/internal/logging"
)

func testCtx() context.Context {
	logger := logging.NewFromConfigValues("debug", "console")
	return logging.WithContext(context.Background(), logger)
}

// openTestPermissionDB returns a migrated permission database in a temp dir.
func openTestPermissionDB(t *testing.T) (*sqlite.PermissionDB, *sql.DB) {
	t.Helper()
	ctx := testCtx()

	pdb := sqlite.NewPermissionDB(filepath.Join(t.TempDir(), "permissions.sqlite"), nil)
	t.Cleanup(func() { _ = pdb.Close() })

	db, err := pdb.DB(ctx)
	require.NoError(t, err)
	return pdb, db
}

func openTestPlacesDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlite.OpenPlacesDB(testCtx(), filepath.Join(t.TempDir(), "places.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}
