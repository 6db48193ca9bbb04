// Package fiber provides the partition-function registry used to map a
// table's fiber column values onto fiber identifiers for scan pruning.
package fiber

import (
	"hash/fnv"
	"strconv"
)

// Function maps a fiber column value to the fiber (partition bucket) it
// belongs to. Implementations must be pure: the same input always yields
// the same fiber, since stored segments are pruned against recomputed
// fiber values at scan time.
type Function interface {
	// Name is the registry key persisted in a table's fiber function field.
	Name() string
	// Bucket maps a raw column value to a fiber identifier.
	Bucket(value string) int64
}

// Identity is the built-in "function0" function. Integer-valued columns map
// to themselves, so fibers line up with the column's natural buckets;
// anything non-numeric falls back to an FNV-1a hash.
type Identity struct{}

func (Identity) Name() string { return "function0" }

func (Identity) Bucket(value string) int64 {
	if v, err := strconv.ParseInt(value, 10, 64); err == nil {
		return v
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(value))
	return int64(h.Sum64() & 0x7fffffffffffffff)
}

// Hash buckets values into a fixed number of fibers by FNV-1a hash.
type Hash struct {
	Buckets int64
}

func (Hash) Name() string { return "hash" }

func (f Hash) Bucket(value string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(value))
	n := f.Buckets
	if n <= 0 {
		n = 64
	}
	return int64(h.Sum64() % uint64(n))
}
