package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"fibermeta/internal/domain"
	"fibermeta/internal/storage"
)

// BootstrapState is the result of verifying the backing table set.
type BootstrapState int

const (
	// StateAbsent means none of the required tables exist.
	StateAbsent BootstrapState = iota
	// StatePartial means some but not all required tables exist. This is
	// an unrecoverable startup condition.
	StatePartial
	// StateComplete means every required table exists.
	StateComplete
)

func (s BootstrapState) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StatePartial:
		return "partial"
	case StateComplete:
		return "complete"
	default:
		return fmt.Sprintf("BootstrapState(%d)", int(s))
	}
}

// catalogDDL maps each required backing table to its create statement.
// Built once at package init and never mutated afterwards.
var catalogDDL = map[string]string{
	"dbs": `CREATE TABLE dbs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		comment TEXT NOT NULL DEFAULT '',
		owner TEXT NOT NULL DEFAULT 'default',
		location TEXT NOT NULL
	)`,
	"tbls": `CREATE TABLE tbls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		db_id INTEGER NOT NULL REFERENCES dbs(id),
		db_name TEXT NOT NULL,
		name TEXT NOT NULL,
		location TEXT NOT NULL,
		storage TEXT NOT NULL DEFAULT 'parquet',
		fib_k TEXT NOT NULL DEFAULT '',
		fib_func TEXT NOT NULL DEFAULT '',
		time_k TEXT NOT NULL DEFAULT '',
		UNIQUE (name, db_id)
	)`,
	"cols": `CREATE TABLE cols (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tbl_id INTEGER NOT NULL REFERENCES tbls(id),
		tbl_name TEXT NOT NULL,
		db_name TEXT NOT NULL,
		name TEXT NOT NULL,
		data_type TEXT NOT NULL,
		col_type TEXT NOT NULL DEFAULT 'regular',
		UNIQUE (name, tbl_id)
	)`,
	"fibers": `CREATE TABLE fibers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tbl_id INTEGER NOT NULL REFERENCES tbls(id),
		fiber_v INTEGER NOT NULL,
		UNIQUE (tbl_id, fiber_v)
	)`,
	"fiber_files": `CREATE TABLE fiber_files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		fiber_id INTEGER NOT NULL REFERENCES fibers(id),
		time_begin TIMESTAMP NOT NULL,
		time_end TIMESTAMP NOT NULL,
		path TEXT NOT NULL UNIQUE
	)`,
}

// RequiredTables returns the names of the backing tables in sorted order.
func RequiredTables() []string {
	names := make([]string, 0, len(catalogDDL))
	for name := range catalogDDL {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultDatabase is the database seeded on first bootstrap.
const DefaultDatabase = "default"

// Bootstrapper idempotently ensures the backing tables exist. It runs once,
// single-threaded, strictly before the store accepts any other call.
type Bootstrapper struct {
	db     *sql.DB
	fs     domain.Filesystem
	root   string
	logger *slog.Logger
}

// NewBootstrapper creates a Bootstrapper. root is the storage-root prefix
// under which the seeded default database's directory is created.
func NewBootstrapper(pool *sql.DB, fs domain.Filesystem, root string, logger *slog.Logger) *Bootstrapper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bootstrapper{db: pool, fs: fs, root: root, logger: logger}
}

// Verify counts how many of the required tables exist in the backing store.
func (b *Bootstrapper) Verify(ctx context.Context, tableNames []string) (BootstrapState, error) {
	if len(tableNames) == 0 {
		return StateAbsent, nil
	}

	placeholders := strings.Repeat("?,", len(tableNames))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(tableNames))
	for i, name := range tableNames {
		args[i] = name
	}

	var count int
	query := `SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name IN (` + placeholders + `)`
	if err := b.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return StateAbsent, fmt.Errorf("verify backing tables: %w", err)
	}

	switch count {
	case 0:
		return StateAbsent, nil
	case len(tableNames):
		return StateComplete, nil
	default:
		return StatePartial, nil
	}
}

// Run verifies the backing table set and applies the bootstrap policy:
// absent creates every table and seeds the default database, complete is a
// no-op, partial fails with CorruptedCatalogError.
func (b *Bootstrapper) Run(ctx context.Context) error {
	required := RequiredTables()

	state, err := b.Verify(ctx, required)
	if err != nil {
		return err
	}
	b.logger.Info("catalog schema verified", "state", state.String())

	switch state {
	case StateComplete:
		return nil
	case StatePartial:
		return domain.ErrCorruptedCatalog("backing table set is partial; refusing to start")
	}

	for _, name := range required {
		if _, err := b.db.ExecContext(ctx, catalogDDL[name]); err != nil {
			return fmt.Errorf("create backing table %s: %w", name, err)
		}
		b.logger.Info("created backing table", "table", name)
	}

	return b.seedDefaultDatabase(ctx)
}

// seedDefaultDatabase creates the "default" database: directory first, then
// the metadata row.
func (b *Bootstrapper) seedDefaultDatabase(ctx context.Context) error {
	location := storage.Resolve(b.root, DefaultDatabase)
	if err := b.fs.MkdirAll(location); err != nil {
		return fmt.Errorf("create default database directory: %w", err)
	}

	_, err := b.db.ExecContext(ctx,
		`INSERT INTO dbs (name, comment, owner, location) VALUES (?, ?, ?, ?)`,
		DefaultDatabase, "db "+DefaultDatabase, "default", location)
	if err != nil {
		return fmt.Errorf("seed default database: %w", err)
	}
	b.logger.Info("seeded default database", "location", location)
	return nil
}
