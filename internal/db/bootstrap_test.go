package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fibermeta/internal/domain"
	"fibermeta/internal/storage"
)

func openBare(t *testing.T) (*sql.DB, string) {
	t.Helper()
	dir := t.TempDir()
	pool, err := OpenSQLite(filepath.Join(dir, "meta.sqlite"), "write", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })
	return pool, filepath.Join(dir, "warehouse")
}

func countTables(t *testing.T, pool *sql.DB) int {
	t.Helper()
	var n int
	err := pool.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`).Scan(&n)
	require.NoError(t, err)
	return n
}

func TestBootstrapper_EmptyStore(t *testing.T) {
	pool, root := openBare(t)
	ctx := context.Background()
	boot := NewBootstrapper(pool, storage.LocalFilesystem{}, root, nil)

	state, err := boot.Verify(ctx, RequiredTables())
	require.NoError(t, err)
	assert.Equal(t, StateAbsent, state)

	require.NoError(t, boot.Run(ctx))

	// Exactly the required table set exists.
	assert.Equal(t, len(RequiredTables()), countTables(t, pool))
	state, err = boot.Verify(ctx, RequiredTables())
	require.NoError(t, err)
	assert.Equal(t, StateComplete, state)

	// Exactly one database was seeded, named "default", with its directory.
	var n int
	require.NoError(t, pool.QueryRow(`SELECT count(*) FROM dbs`).Scan(&n))
	assert.Equal(t, 1, n)

	var name, location string
	require.NoError(t, pool.QueryRow(`SELECT name, location FROM dbs`).Scan(&name, &location))
	assert.Equal(t, "default", name)
	info, err := os.Stat(location)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestBootstrapper_VerifyEmptySet(t *testing.T) {
	pool, root := openBare(t)
	boot := NewBootstrapper(pool, storage.LocalFilesystem{}, root, nil)

	state, err := boot.Verify(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, StateAbsent, state)
}

func TestBootstrapper_Rerun(t *testing.T) {
	pool, root := openBare(t)
	ctx := context.Background()
	boot := NewBootstrapper(pool, storage.LocalFilesystem{}, root, nil)

	require.NoError(t, boot.Run(ctx))
	tables := countTables(t, pool)

	// Second run is a no-op: table set and database count unchanged.
	require.NoError(t, boot.Run(ctx))
	assert.Equal(t, tables, countTables(t, pool))

	var n int
	require.NoError(t, pool.QueryRow(`SELECT count(*) FROM dbs`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestBootstrapper_PartialIsFatal(t *testing.T) {
	pool, root := openBare(t)
	ctx := context.Background()

	// Simulate a half-applied schema: only one backing table exists.
	_, err := pool.Exec(`CREATE TABLE dbs (id INTEGER PRIMARY KEY, name TEXT, comment TEXT, owner TEXT, location TEXT)`)
	require.NoError(t, err)

	boot := NewBootstrapper(pool, storage.LocalFilesystem{}, root, nil)

	state, err := boot.Verify(ctx, RequiredTables())
	require.NoError(t, err)
	assert.Equal(t, StatePartial, state)

	err = boot.Run(ctx)
	require.Error(t, err)
	var corrupted *domain.CorruptedCatalogError
	assert.ErrorAs(t, err, &corrupted)

	// No repair was attempted.
	assert.Equal(t, 1, countTables(t, pool))
}
