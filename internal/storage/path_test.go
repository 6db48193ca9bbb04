package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		name     string
		root     string
		segments []string
		want     string
	}{
		{"single segment", "/warehouse", []string{"db1"}, "/warehouse/db1"},
		{"two segments", "/warehouse", []string{"db1", "t1"}, "/warehouse/db1/t1"},
		{"trailing separator on root", "/warehouse/", []string{"db1"}, "/warehouse/db1"},
		{"many trailing separators", "/warehouse///", []string{"db1"}, "/warehouse/db1"},
		{"leading separator on segment", "/warehouse", []string{"/db1", "/t1"}, "/warehouse/db1/t1"},
		{"surplus separators on segment", "/warehouse", []string{"//db1//"}, "/warehouse/db1"},
		{"empty segment skipped", "/warehouse", []string{"", "t1"}, "/warehouse/t1"},
		{"no segments", "/warehouse/", nil, "/warehouse"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Resolve(tc.root, tc.segments...))
		})
	}
}

func TestResolve_Idempotent(t *testing.T) {
	p := Resolve("/warehouse/", "db1", "t1")
	assert.Equal(t, p, Resolve(p))
	assert.Equal(t, p, Resolve(Resolve(p)))
}

func TestLocalFilesystem_MkdirAll(t *testing.T) {
	fs := LocalFilesystem{}
	path := filepath.Join(t.TempDir(), "db1", "t1")

	require.NoError(t, fs.MkdirAll(path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Repeated creation is a no-op.
	require.NoError(t, fs.MkdirAll(path))
}
