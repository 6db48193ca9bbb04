package domain

import "time"

// Fiber is a partition unit of a table: the partition-function output for a
// batch of loaded data. Fibers are produced by load operations and consumed
// during layout resolution and split generation.
type Fiber struct {
	ID      int64 `json:"id"`
	TableID int64 `json:"table_id"`
	Value   int64 `json:"value"`
}

// FiberTimeRange records the time window covered by one physical data
// segment of a fiber. Physical paths are unique across the catalog.
type FiberTimeRange struct {
	ID      int64     `json:"id"`
	FiberID int64     `json:"fiber_id"`
	Begin   time.Time `json:"begin"`
	End     time.Time `json:"end"`
	Path    string    `json:"path"`
}
