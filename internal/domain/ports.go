package domain

import (
	"context"
	"time"
)

// CatalogRepository is the persistence port over the five backing tables.
// Lookups that must resolve exactly one row return NotFoundError on zero
// matches and AmbiguousError on more than one.
type CatalogRepository interface {
	ListDatabases(ctx context.Context) ([]string, error)
	GetDatabase(ctx context.Context, name string) (*Database, error)
	CreateDatabase(ctx context.Context, db *Database) (*Database, error)

	// ListTables returns (schema, table) pairs. Nil filters match all;
	// non-nil filters are exact-match.
	ListTables(ctx context.Context, schema, table *string) ([]SchemaTableName, error)
	GetTable(ctx context.Context, database, table string) (*Table, error)
	// CreateTable persists the table row and its column rows atomically.
	CreateTable(ctx context.Context, t *Table, columns []Column) (*Table, error)

	ListColumns(ctx context.Context, database, table string) ([]Column, error)
	GetColumn(ctx context.Context, database, table, column string) (*Column, error)

	CreateFiber(ctx context.Context, f *Fiber) (*Fiber, error)
	GetFiber(ctx context.Context, tableID, value int64) (*Fiber, error)
	CreateFiberTimeRange(ctx context.Context, r *FiberTimeRange) (*FiberTimeRange, error)
	// ListFiberTimeRanges returns the segments of a fiber overlapping the
	// given window. Nil bounds are unbounded.
	ListFiberTimeRanges(ctx context.Context, fiberID int64, begin, end *time.Time) ([]FiberTimeRange, error)
}

// Filesystem is the directory-creation capability used when materializing
// database and table locations.
type Filesystem interface {
	MkdirAll(path string) error
}
