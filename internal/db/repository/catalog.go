package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"fibermeta/internal/domain"
	"fibermeta/internal/sqltype"
)

// CatalogRepo persists databases, tables, and columns in the SQLite
// metastore using positional parameterized statements. Writes go through
// the single-connection write pool; reads use the larger read pool.
type CatalogRepo struct {
	write  *sql.DB
	read   *sql.DB
	logger *slog.Logger
}

// NewCatalogRepo creates a CatalogRepo on the given write/read pool pair.
func NewCatalogRepo(write, read *sql.DB, logger *slog.Logger) *CatalogRepo {
	if read == nil {
		read = write
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogRepo{write: write, read: read, logger: logger}
}

// ListDatabases returns all database names ordered by name.
func (r *CatalogRepo) ListDatabases(ctx context.Context) ([]string, error) {
	rows, err := r.read.QueryContext(ctx, `SELECT name FROM dbs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// GetDatabase reads a database by name.
func (r *CatalogRepo) GetDatabase(ctx context.Context, name string) (*domain.Database, error) {
	var d domain.Database
	err := r.read.QueryRowContext(ctx,
		`SELECT id, name, comment, owner, location FROM dbs WHERE name = ?`, name).
		Scan(&d.ID, &d.Name, &d.Comment, &d.Owner, &d.Location)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound("database %q not found", name)
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateDatabase persists a database row and reads it back.
func (r *CatalogRepo) CreateDatabase(ctx context.Context, d *domain.Database) (*domain.Database, error) {
	res, err := r.write.ExecContext(ctx,
		`INSERT INTO dbs (name, comment, owner, location) VALUES (?, ?, ?, ?)`,
		d.Name, d.Comment, d.Owner, d.Location)
	if err != nil {
		return nil, mapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	out := *d
	out.ID = id
	return &out, nil
}

// ListTables returns (schema, table) pairs. Nil filters match all rows;
// non-nil filters are exact-match, so "db1" never matches "db10".
func (r *CatalogRepo) ListTables(ctx context.Context, schema, table *string) ([]domain.SchemaTableName, error) {
	query := `SELECT db_name, name FROM tbls`
	var conds []string
	var args []any
	if schema != nil {
		conds = append(conds, `db_name = ?`)
		args = append(args, *schema)
	}
	if table != nil {
		conds = append(conds, `name = ?`)
		args = append(args, *table)
	}
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	query += ` ORDER BY db_name, name`

	rows, err := r.read.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var names []domain.SchemaTableName
	for rows.Next() {
		var n domain.SchemaTableName
		if err := rows.Scan(&n.Schema, &n.Table); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// GetTable resolves exactly one table row. Zero matches yield NotFound;
// more than one yields Ambiguous and the rows are discarded.
func (r *CatalogRepo) GetTable(ctx context.Context, database, table string) (*domain.Table, error) {
	rows, err := r.read.QueryContext(ctx,
		`SELECT id, db_id, db_name, name, location, storage, fib_k, fib_func, time_k
		 FROM tbls WHERE db_name = ? AND name = ?`, database, table)
	if err != nil {
		return nil, fmt.Errorf("get table: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var matches []domain.Table
	for rows.Next() {
		var t domain.Table
		var format string
		if err := rows.Scan(&t.ID, &t.DatabaseID, &t.DatabaseName, &t.Name,
			&t.Location, &format, &t.FiberKey, &t.FiberFunction, &t.TimeKey); err != nil {
			return nil, err
		}
		t.Format, err = domain.ParseStorageFormat(format)
		if err != nil {
			return nil, err
		}
		matches = append(matches, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(matches) {
	case 0:
		return nil, domain.ErrNotFound("table %s.%s not found", database, table)
	case 1:
		return &matches[0], nil
	default:
		r.logger.Error("duplicate table rows", "database", database, "table", table, "count", len(matches))
		return nil, domain.ErrAmbiguous("%d rows match table %s.%s", len(matches), database, table)
	}
}

// CreateTable persists the table row and its column rows in one
// transaction, so a table is either fully defined or not present at all.
func (r *CatalogRepo) CreateTable(ctx context.Context, t *domain.Table, columns []domain.Column) (*domain.Table, error) {
	tx, err := r.write.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create table: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx,
		`INSERT INTO tbls (db_id, db_name, name, location, storage, fib_k, fib_func, time_k)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.DatabaseID, t.DatabaseName, t.Name, t.Location, string(t.Format),
		t.FiberKey, t.FiberFunction, t.TimeKey)
	if err != nil {
		return nil, mapDBError(err)
	}
	tableID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	for _, col := range columns {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO cols (tbl_id, tbl_name, db_name, name, data_type, col_type)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			tableID, t.Name, t.DatabaseName, col.Name, col.DataType.String(), string(col.Role))
		if err != nil {
			return nil, mapDBError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create table: %w", err)
	}

	out := *t
	out.ID = tableID
	return &out, nil
}

// ListColumns returns the column handles of a table, each carrying its
// structured type and role. A stored type that no longer parses is
// surfaced as InvalidType rather than silently propagated.
func (r *CatalogRepo) ListColumns(ctx context.Context, database, table string) ([]domain.Column, error) {
	rows, err := r.read.QueryContext(ctx,
		`SELECT id, tbl_id, tbl_name, db_name, name, data_type, col_type
		 FROM cols WHERE db_name = ? AND tbl_name = ? ORDER BY id`, database, table)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var columns []domain.Column
	for rows.Next() {
		col, err := scanColumn(rows)
		if err != nil {
			return nil, err
		}
		columns = append(columns, *col)
	}
	return columns, rows.Err()
}

// GetColumn resolves exactly one column of a table.
func (r *CatalogRepo) GetColumn(ctx context.Context, database, table, column string) (*domain.Column, error) {
	rows, err := r.read.QueryContext(ctx,
		`SELECT id, tbl_id, tbl_name, db_name, name, data_type, col_type
		 FROM cols WHERE db_name = ? AND tbl_name = ? AND name = ?`, database, table, column)
	if err != nil {
		return nil, fmt.Errorf("get column: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var matches []domain.Column
	for rows.Next() {
		col, err := scanColumn(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(matches) {
	case 0:
		return nil, domain.ErrNotFound("column %s of table %s.%s not found", column, database, table)
	case 1:
		return &matches[0], nil
	default:
		r.logger.Error("duplicate column rows", "database", database, "table", table, "column", column)
		return nil, domain.ErrAmbiguous("%d rows match column %s of %s.%s", len(matches), column, database, table)
	}
}

func scanColumn(rows *sql.Rows) (*domain.Column, error) {
	var col domain.Column
	var dataType, role string
	if err := rows.Scan(&col.ID, &col.TableID, &col.TableName, &col.DatabaseName,
		&col.Name, &dataType, &role); err != nil {
		return nil, err
	}

	col.DataType = sqltype.Parse(dataType)
	if col.DataType.IsUnknown() {
		return nil, domain.ErrInvalidType("stored type %q of column %s is not parseable", dataType, col.Name)
	}

	var err error
	col.Role, err = domain.ParseColumnRole(role)
	if err != nil {
		return nil, err
	}
	return &col, nil
}
