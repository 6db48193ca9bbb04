// Package service implements the public metastore contract on top of the
// catalog repository, the partition-function registry, and the filesystem.
package service

import (
	"context"
	"errors"
	"log/slog"

	"fibermeta/internal/domain"
	"fibermeta/internal/fiber"
	"fibermeta/internal/sqltype"
	"fibermeta/internal/storage"
)

// MetastoreService is the catalog API the query engine calls for every
// metadata need: listings, handle and layout resolution, and DDL. All
// operations are synchronous; concurrency control is delegated to the
// backing store's uniqueness constraints.
type MetastoreService struct {
	repo      domain.CatalogRepository
	fs        domain.Filesystem
	functions *fiber.Registry
	root      string
	logger    *slog.Logger
}

// NewMetastoreService creates a MetastoreService. root is the storage-root
// prefix under which all physical locations are derived.
func NewMetastoreService(repo domain.CatalogRepository, fs domain.Filesystem, functions *fiber.Registry, root string, logger *slog.Logger) *MetastoreService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MetastoreService{
		repo:      repo,
		fs:        fs,
		functions: functions,
		root:      root,
		logger:    logger,
	}
}

// Functions returns the partition-function registry.
func (s *MetastoreService) Functions() *fiber.Registry { return s.functions }

// ListDatabases returns all database names in name order.
func (s *MetastoreService) ListDatabases(ctx context.Context) ([]string, error) {
	return s.repo.ListDatabases(ctx)
}

// CreateDatabase derives the canonical location for name, creates the
// physical directory, then persists the database row. The directory is
// created first so a failed metadata write leaves only an empty directory
// behind, which a retry reuses.
func (s *MetastoreService) CreateDatabase(ctx context.Context, name, comment, owner string) (*domain.Database, error) {
	if name == "" {
		return nil, domain.ErrValidation("database name must not be empty")
	}
	if comment == "" {
		comment = "db " + name
	}
	if owner == "" {
		owner = "default"
	}

	location := storage.Resolve(s.root, name)
	if err := s.fs.MkdirAll(location); err != nil {
		s.logger.Error("create database directory failed", "database", name, "location", location, "error", err)
		return nil, err
	}

	d, err := s.repo.CreateDatabase(ctx, &domain.Database{
		Name:     name,
		Comment:  comment,
		Owner:    owner,
		Location: location,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("created database", "database", name, "location", location)
	return d, nil
}

// ListTables returns (schema, table) pairs. Filters, when present, are
// exact-match; an absent filter matches all.
func (s *MetastoreService) ListTables(ctx context.Context, schema, table *string) ([]domain.SchemaTableName, error) {
	return s.repo.ListTables(ctx, schema, table)
}

// GetTableHandle resolves a table to its handle. Zero matches yield
// NotFound; more than one yields Ambiguous.
func (s *MetastoreService) GetTableHandle(ctx context.Context, database, table string) (*domain.TableHandle, error) {
	t, err := s.repo.GetTable(ctx, database, table)
	if err != nil {
		return nil, err
	}
	return &domain.TableHandle{
		Schema:   t.DatabaseName,
		Table:    t.Name,
		Location: t.Location,
	}, nil
}

// GetTableLayout resolves the partitioning descriptor of a table. For a
// partitioned table the fiber and time columns are resolved by name; a key
// that no longer names a column surfaces as InvalidColumnRole, and an
// unregistered function as UnsupportedFunction.
func (s *MetastoreService) GetTableLayout(ctx context.Context, database, table string) (*domain.TableLayout, error) {
	t, err := s.repo.GetTable(ctx, database, table)
	if err != nil {
		return nil, err
	}

	layout := &domain.TableLayout{
		Handle: domain.TableHandle{
			Schema:   t.DatabaseName,
			Table:    t.Name,
			Location: t.Location,
		},
		Format: t.Format,
	}
	if !t.Partitioned() {
		return layout, nil
	}

	fn, ok := s.functions.Resolve(t.FiberFunction)
	if !ok {
		return nil, domain.ErrUnsupportedFunction("partition function %q of table %s.%s is not registered", t.FiberFunction, database, table)
	}
	layout.Function = fn

	layout.FiberColumn, err = s.resolveKeyColumn(ctx, t, t.FiberKey)
	if err != nil {
		return nil, err
	}
	layout.TimeColumn, err = s.resolveKeyColumn(ctx, t, t.TimeKey)
	if err != nil {
		return nil, err
	}
	return layout, nil
}

func (s *MetastoreService) resolveKeyColumn(ctx context.Context, t *domain.Table, key string) (*domain.Column, error) {
	col, err := s.repo.GetColumn(ctx, t.DatabaseName, t.Name, key)
	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		return nil, domain.ErrInvalidColumnRole("key %q of table %s.%s does not name a column", key, t.DatabaseName, t.Name)
	}
	if err != nil {
		return nil, err
	}
	return col, nil
}

// GetColumns returns the column handles of a table. A table must have at
// least one column; zero rows yield NotFound.
func (s *MetastoreService) GetColumns(ctx context.Context, database, table string) ([]domain.Column, error) {
	cols, err := s.repo.ListColumns(ctx, database, table)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, domain.ErrNotFound("no columns found for table %s.%s", database, table)
	}
	return cols, nil
}

// GetColumnMetadata returns the planning-facing column descriptors of a
// table.
func (s *MetastoreService) GetColumnMetadata(ctx context.Context, database, table string) ([]domain.ColumnMetadata, error) {
	cols, err := s.GetColumns(ctx, database, table)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ColumnMetadata, len(cols))
	for i, col := range cols {
		out[i] = domain.ColumnMetadata{
			Name:     col.Name,
			DataType: col.DataType,
			Type:     col.DataType.String(),
			Nullable: false,
		}
	}
	return out, nil
}

// ColumnDef is one column of a create-table request, with its textual type
// descriptor.
type ColumnDef struct {
	Name string
	Type string
}

// CreateTableRequest is the structured metadata for a create-table
// operation. FiberKey, Function and TimeKey are all empty for an
// unpartitioned table and all required for a partitioned one.
type CreateTableRequest struct {
	Schema   string
	Name     string
	Columns  []ColumnDef
	Format   domain.StorageFormat
	FiberKey string
	Function string
	TimeKey  string
}

func (req *CreateTableRequest) partitioned() bool {
	return req.FiberKey != "" || req.Function != "" || req.TimeKey != ""
}

// CreateTable validates the request, derives the table's location, creates
// its directory, and persists the table and column rows atomically.
// Validation failures perform zero persistence and create no directory.
func (s *MetastoreService) CreateTable(ctx context.Context, req CreateTableRequest) (*domain.Table, error) {
	if req.Name == "" || req.Schema == "" {
		return nil, domain.ErrValidation("table and schema names must not be empty")
	}
	if len(req.Columns) == 0 {
		return nil, domain.ErrValidation("table %s.%s must have at least one column", req.Schema, req.Name)
	}
	if req.Format == "" {
		req.Format = domain.FormatParquet
	}

	if req.partitioned() {
		names := make(map[string]bool, len(req.Columns))
		for _, col := range req.Columns {
			names[col.Name] = true
		}
		if !names[req.FiberKey] {
			return nil, domain.ErrInvalidColumnRole("fiber key %q is not among the supplied columns", req.FiberKey)
		}
		if !names[req.TimeKey] {
			return nil, domain.ErrInvalidColumnRole("time key %q is not among the supplied columns", req.TimeKey)
		}
		if _, ok := s.functions.Resolve(req.Function); !ok {
			return nil, domain.ErrUnsupportedFunction("partition function %q is not registered", req.Function)
		}
	}

	columns := make([]domain.Column, len(req.Columns))
	for i, def := range req.Columns {
		if def.Name == "" {
			return nil, domain.ErrValidation("column names must not be empty")
		}
		parsed := sqltype.Parse(def.Type)
		if parsed.IsUnknown() {
			return nil, domain.ErrInvalidType("type %q of column %s is not parseable", def.Type, def.Name)
		}
		role := domain.RoleRegular
		switch def.Name {
		case req.FiberKey:
			role = domain.RoleFiber
		case req.TimeKey:
			role = domain.RoleTime
		}
		columns[i] = domain.Column{Name: def.Name, DataType: parsed, Role: role}
	}

	d, err := s.repo.GetDatabase(ctx, req.Schema)
	if err != nil {
		return nil, err
	}

	location := storage.Resolve(s.root, req.Schema, req.Name)
	if err := s.fs.MkdirAll(location); err != nil {
		s.logger.Error("create table directory failed", "table", req.Schema+"."+req.Name, "location", location, "error", err)
		return nil, err
	}

	t, err := s.repo.CreateTable(ctx, &domain.Table{
		DatabaseID:    d.ID,
		DatabaseName:  d.Name,
		Name:          req.Name,
		Location:      location,
		Format:        req.Format,
		FiberKey:      req.FiberKey,
		FiberFunction: req.Function,
		TimeKey:       req.TimeKey,
	}, columns)
	if err != nil {
		return nil, err
	}
	s.logger.Info("created table", "table", req.Schema+"."+req.Name,
		"location", location, "partitioned", req.partitioned())
	return t, nil
}
