package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fibermeta/internal/domain"
)

// CreateFiber records a fiber value for a table. Duplicate (table, value)
// pairs surface as ConflictError.
func (r *CatalogRepo) CreateFiber(ctx context.Context, f *domain.Fiber) (*domain.Fiber, error) {
	res, err := r.write.ExecContext(ctx,
		`INSERT INTO fibers (tbl_id, fiber_v) VALUES (?, ?)`, f.TableID, f.Value)
	if err != nil {
		return nil, mapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	out := *f
	out.ID = id
	return &out, nil
}

// GetFiber reads a fiber by its table and value.
func (r *CatalogRepo) GetFiber(ctx context.Context, tableID, value int64) (*domain.Fiber, error) {
	var f domain.Fiber
	err := r.read.QueryRowContext(ctx,
		`SELECT id, tbl_id, fiber_v FROM fibers WHERE tbl_id = ? AND fiber_v = ?`, tableID, value).
		Scan(&f.ID, &f.TableID, &f.Value)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound("fiber %d of table %d not found", value, tableID)
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// CreateFiberTimeRange records the time window of one physical segment.
// Duplicate physical paths surface as ConflictError.
func (r *CatalogRepo) CreateFiberTimeRange(ctx context.Context, tr *domain.FiberTimeRange) (*domain.FiberTimeRange, error) {
	res, err := r.write.ExecContext(ctx,
		`INSERT INTO fiber_files (fiber_id, time_begin, time_end, path) VALUES (?, ?, ?, ?)`,
		tr.FiberID, tr.Begin.UTC(), tr.End.UTC(), tr.Path)
	if err != nil {
		return nil, mapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	out := *tr
	out.ID = id
	return &out, nil
}

// ListFiberTimeRanges returns the segments of a fiber whose window overlaps
// [begin, end]. Nil bounds are unbounded, so scan pruning can ask for "all
// segments since T" or "everything".
func (r *CatalogRepo) ListFiberTimeRanges(ctx context.Context, fiberID int64, begin, end *time.Time) ([]domain.FiberTimeRange, error) {
	query := `SELECT id, fiber_id, time_begin, time_end, path FROM fiber_files WHERE fiber_id = ?`
	args := []any{fiberID}
	if begin != nil {
		query += ` AND time_end >= ?`
		args = append(args, begin.UTC())
	}
	if end != nil {
		query += ` AND time_begin <= ?`
		args = append(args, end.UTC())
	}
	query += ` ORDER BY time_begin`

	rows, err := r.read.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list fiber time ranges: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var ranges []domain.FiberTimeRange
	for rows.Next() {
		var tr domain.FiberTimeRange
		if err := rows.Scan(&tr.ID, &tr.FiberID, &tr.Begin, &tr.End, &tr.Path); err != nil {
			return nil, err
		}
		ranges = append(ranges, tr)
	}
	return ranges, rows.Err()
}
