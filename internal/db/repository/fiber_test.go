package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fibermeta/internal/domain"
	"fibermeta/internal/sqltype"
)

func setupFiberTable(t *testing.T) (*CatalogRepo, *domain.Table) {
	t.Helper()
	repo, _ := setupCatalogRepo(t)
	d := createTestDatabase(t, repo, "sales")
	tbl := createTestTable(t, repo, d, "orders", []domain.Column{
		{Name: "id", DataType: sqltype.Type{Kind: sqltype.KindBigint}, Role: domain.RoleFiber},
		{Name: "ts", DataType: sqltype.Type{Kind: sqltype.KindTimestamp}, Role: domain.RoleTime},
	})
	return repo, tbl
}

func TestCatalogRepo_Fibers(t *testing.T) {
	repo, tbl := setupFiberTable(t)
	ctx := context.Background()

	f, err := repo.CreateFiber(ctx, &domain.Fiber{TableID: tbl.ID, Value: 7})
	require.NoError(t, err)
	assert.NotZero(t, f.ID)

	got, err := repo.GetFiber(ctx, tbl.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, f.ID, got.ID)

	// (table, value) is unique.
	_, err = repo.CreateFiber(ctx, &domain.Fiber{TableID: tbl.ID, Value: 7})
	var conflict *domain.ConflictError
	assert.ErrorAs(t, err, &conflict)

	_, err = repo.GetFiber(ctx, tbl.ID, 8)
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestCatalogRepo_FiberTimeRanges(t *testing.T) {
	repo, tbl := setupFiberTable(t)
	ctx := context.Background()

	f, err := repo.CreateFiber(ctx, &domain.Fiber{TableID: tbl.ID, Value: 7})
	require.NoError(t, err)

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := repo.CreateFiberTimeRange(ctx, &domain.FiberTimeRange{
			FiberID: f.ID,
			Begin:   base.Add(time.Duration(i) * time.Hour),
			End:     base.Add(time.Duration(i+1) * time.Hour),
			Path:    tbl.Location + "/part-" + string(rune('a'+i)),
		})
		require.NoError(t, err)
	}

	// Unbounded window returns all segments in time order.
	all, err := repo.ListFiberTimeRanges(ctx, f.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].Begin.Before(all[1].Begin))

	// Window pruning keeps only overlapping segments.
	begin := base.Add(90 * time.Minute)
	end := base.Add(150 * time.Minute)
	pruned, err := repo.ListFiberTimeRanges(ctx, f.ID, &begin, &end)
	require.NoError(t, err)
	require.Len(t, pruned, 2)

	// Physical paths are unique.
	_, err = repo.CreateFiberTimeRange(ctx, &domain.FiberTimeRange{
		FiberID: f.ID, Begin: base, End: base.Add(time.Hour),
		Path: tbl.Location + "/part-a",
	})
	var conflict *domain.ConflictError
	assert.ErrorAs(t, err, &conflict)
}
