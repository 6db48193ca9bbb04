package service

import (
	"context"
	"time"

	"fibermeta/internal/domain"
)

// RegisterFiber records the fiber a data batch hashed into. The value is
// the partition-function output already computed by the load path, so the
// table's function is not re-applied here.
func (s *MetastoreService) RegisterFiber(ctx context.Context, database, table string, value int64) (*domain.Fiber, error) {
	t, err := s.repo.GetTable(ctx, database, table)
	if err != nil {
		return nil, err
	}
	if !t.Partitioned() {
		return nil, domain.ErrValidation("table %s.%s is not partitioned", database, table)
	}
	return s.repo.CreateFiber(ctx, &domain.Fiber{TableID: t.ID, Value: value})
}

// RegisterFiberTimeRange records the time window covered by one physical
// segment of a fiber.
func (s *MetastoreService) RegisterFiberTimeRange(ctx context.Context, database, table string, fiberValue int64, begin, end time.Time, path string) (*domain.FiberTimeRange, error) {
	if path == "" {
		return nil, domain.ErrValidation("segment path must not be empty")
	}
	if end.Before(begin) {
		return nil, domain.ErrValidation("segment window end precedes begin")
	}

	t, err := s.repo.GetTable(ctx, database, table)
	if err != nil {
		return nil, err
	}
	f, err := s.repo.GetFiber(ctx, t.ID, fiberValue)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateFiberTimeRange(ctx, &domain.FiberTimeRange{
		FiberID: f.ID,
		Begin:   begin,
		End:     end,
		Path:    path,
	})
}

// ListFiberTimeRanges returns the segments of a fiber overlapping the given
// window, for the engine's split generation. Nil bounds are unbounded.
func (s *MetastoreService) ListFiberTimeRanges(ctx context.Context, database, table string, fiberValue int64, begin, end *time.Time) ([]domain.FiberTimeRange, error) {
	t, err := s.repo.GetTable(ctx, database, table)
	if err != nil {
		return nil, err
	}
	f, err := s.repo.GetFiber(ctx, t.ID, fiberValue)
	if err != nil {
		return nil, err
	}
	return s.repo.ListFiberTimeRanges(ctx, f.ID, begin, end)
}
