package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"fibermeta/internal/storage"
)

// OpenTestSQLite opens a hardened SQLite write/read pool pair in t.TempDir(),
// runs the schema bootstrap on the write pool, and registers cleanup. The
// returned root is the storage-root directory the bootstrap seeded under.
//
// Tests that don't need the read/write split can use writeDB for everything.
func OpenTestSQLite(t *testing.T) (writeDB, readDB *sql.DB, root string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.sqlite")
	root = filepath.Join(dir, "warehouse")

	writeDB, readDB, err := OpenSQLitePair(path, 4)
	if err != nil {
		t.Fatalf("open test sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = readDB.Close()
		_ = writeDB.Close()
	})

	boot := NewBootstrapper(writeDB, storage.LocalFilesystem{}, root, nil)
	if err := boot.Run(context.Background()); err != nil {
		t.Fatalf("bootstrap catalog schema: %v", err)
	}

	return writeDB, readDB, root
}
