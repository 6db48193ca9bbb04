package domain

import (
	"fibermeta/internal/fiber"
	"fibermeta/internal/sqltype"
)

// StorageFormat identifies the file format of a table's data segments.
type StorageFormat string

const (
	FormatParquet StorageFormat = "parquet"
	FormatORC     StorageFormat = "orc"
	FormatCSV     StorageFormat = "csv"
)

// ParseStorageFormat maps a stored format string to a StorageFormat.
func ParseStorageFormat(s string) (StorageFormat, error) {
	switch StorageFormat(s) {
	case FormatParquet, FormatORC, FormatCSV:
		return StorageFormat(s), nil
	case "":
		return FormatParquet, nil
	default:
		return "", ErrValidation("unknown storage format %q", s)
	}
}

// ColumnRole classifies how a column participates in partition pruning.
type ColumnRole string

const (
	RoleFiber   ColumnRole = "fiber"
	RoleTime    ColumnRole = "time"
	RoleRegular ColumnRole = "regular"
)

// ParseColumnRole maps a stored role string to a ColumnRole.
func ParseColumnRole(s string) (ColumnRole, error) {
	switch ColumnRole(s) {
	case RoleFiber, RoleTime, RoleRegular:
		return ColumnRole(s), nil
	default:
		return "", ErrInvalidColumnRole("unknown column role %q", s)
	}
}

// Database is a logical namespace mapped onto a physical directory.
// Immutable once created.
type Database struct {
	ID       int64
	Name     string
	Comment  string
	Owner    string
	Location string
}

// Table is a logical table inside a database. FiberKey, FiberFunction and
// TimeKey are empty for unpartitioned tables.
type Table struct {
	ID            int64
	DatabaseID    int64
	DatabaseName  string
	Name          string
	Location      string
	Format        StorageFormat
	FiberKey      string
	FiberFunction string
	TimeKey       string
}

// Partitioned reports whether the table carries a fiber partitioning scheme.
func (t *Table) Partitioned() bool { return t.FiberKey != "" }

// Column is a single column of a table, carrying its structured type and
// pruning role.
type Column struct {
	ID           int64
	TableID      int64
	TableName    string
	DatabaseName string
	Name         string
	DataType     sqltype.Type
	Role         ColumnRole
}

// ColumnMetadata is the planning-facing view of a column.
type ColumnMetadata struct {
	Name     string       `json:"name"`
	DataType sqltype.Type `json:"-"`
	Type     string       `json:"type"`
	Nullable bool         `json:"nullable"`
}

// SchemaTableName is a (database, table) pair used in listings.
type SchemaTableName struct {
	Schema string `json:"schema"`
	Table  string `json:"table"`
}

// TableHandle identifies a resolved table together with its physical path.
type TableHandle struct {
	Schema   string `json:"schema"`
	Table    string `json:"table"`
	Location string `json:"location"`
}

// TableLayout is the resolved partitioning descriptor of a table, consumed
// by the engine's split generation. FiberColumn, TimeColumn and Function are
// nil for unpartitioned tables.
type TableLayout struct {
	Handle      TableHandle
	FiberColumn *Column
	TimeColumn  *Column
	Function    fiber.Function
	Format      StorageFormat
}
