package session_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.trai.ch/pcell/internal/adapters/session"
)

func writeLayout(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestStashAndLookup(t *testing.T) {
	work := t.TempDir()
	store := session.NewStore(filepath.Join(work, "store"))
	layout := writeLayout(t, work, "layout.json", `{"name":"top"}`)

	_, hit, err := store.Lookup(layout)
	require.NoError(t, err)
	assert.False(t, hit)

	location, err := store.Stash(layout)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(location, store.Root()))

	stashed, err := os.ReadFile(location)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"top"}`, string(stashed))

	found, hit, err := store.Lookup(layout)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, location, found)
}

func TestStashIsIdempotent(t *testing.T) {
	work := t.TempDir()
	store := session.NewStore(filepath.Join(work, "store"))
	layout := writeLayout(t, work, "layout.json", "payload")

	first, err := store.Stash(layout)
	require.NoError(t, err)
	second, err := store.Stash(layout)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestContentChangeIsAMiss(t *testing.T) {
	work := t.TempDir()
	store := session.NewStore(filepath.Join(work, "store"))
	layout := writeLayout(t, work, "layout.json", "v1")

	first, err := store.Stash(layout)
	require.NoError(t, err)

	writeLayout(t, work, "layout.json", "v2")
	_, hit, err := store.Lookup(layout)
	require.NoError(t, err)
	assert.False(t, hit)

	second, err := store.Stash(layout)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Equal(t, filepath.Dir(filepath.Dir(first)), filepath.Dir(filepath.Dir(second)),
		"same source path files under the same path hash")
}

func TestDifferentPathsSameContentAreSeparate(t *testing.T) {
	work := t.TempDir()
	store := session.NewStore(filepath.Join(work, "store"))
	a := writeLayout(t, work, "a.json", "same bytes")
	b := writeLayout(t, work, "b.json", "same bytes")

	locA, err := store.Stash(a)
	require.NoError(t, err)
	locB, err := store.Stash(b)
	require.NoError(t, err)
	assert.NotEqual(t, locA, locB)
}

func TestLookupMissingSourceIsAMiss(t *testing.T) {
	store := session.NewStore(filepath.Join(t.TempDir(), "store"))
	_, hit, err := store.Lookup(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestClean(t *testing.T) {
	work := t.TempDir()
	store := session.NewStore(filepath.Join(work, "store"))
	layout := writeLayout(t, work, "layout.json", "payload")

	_, err := store.Stash(layout)
	require.NoError(t, err)
	require.NoError(t, store.Clean())

	_, hit, err := store.Lookup(layout)
	require.NoError(t, err)
	assert.False(t, hit)
	_, statErr := os.Stat(store.Root())
	assert.True(t, os.IsNotExist(statErr))
}
