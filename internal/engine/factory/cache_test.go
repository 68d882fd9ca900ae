package factory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.trai.ch/pcell/internal/core/domain"
	"go.trai.ch/pcell/internal/engine/factory"
)

func key(t *testing.T, name string, width int64) domain.CacheKey {
	t.Helper()
	ps, err := domain.NewParamSet(map[string]any{"width": width})
	require.NoError(t, err)
	return domain.NewCacheKey(name, ps)
}

func newCell(t *testing.T, l *domain.Layout) *domain.Cell {
	t.Helper()
	c, err := l.CreateCell("")
	require.NoError(t, err)
	return c
}

func TestCachePutGetEvict(t *testing.T) {
	l := domain.NewLayout("chip")
	c := factory.NewCache(0)
	k := key(t, "box", 500)

	_, ok := c.Get(k)
	assert.False(t, ok)

	cell := newCell(t, l)
	c.Put(k, cell)
	got, ok := c.Get(k)
	require.True(t, ok)
	assert.Same(t, cell, got)
	assert.Equal(t, 1, c.Len())

	// Re-putting the same key replaces without growing.
	other := newCell(t, l)
	c.Put(k, other)
	assert.Equal(t, 1, c.Len())
	got, _ = c.Get(k)
	assert.Same(t, other, got)

	c.Evict(k)
	_, ok = c.Get(k)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())

	// Evicting a missing key is a no-op.
	c.Evict(k)
}

func TestCacheCapacityEvictsOldest(t *testing.T) {
	l := domain.NewLayout("chip")
	c := factory.NewCache(2)

	k1, k2, k3 := key(t, "box", 1), key(t, "box", 2), key(t, "box", 3)
	c.Put(k1, newCell(t, l))
	c.Put(k2, newCell(t, l))
	c.Put(k3, newCell(t, l))

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get(k1)
	assert.False(t, ok)
	_, ok = c.Get(k2)
	assert.True(t, ok)
	_, ok = c.Get(k3)
	assert.True(t, ok)
}

func TestCacheSweepDestroyed(t *testing.T) {
	l := domain.NewLayout("chip")
	c := factory.NewCache(0)

	alive := newCell(t, l)
	dead1 := newCell(t, l)
	dead2 := newCell(t, l)
	c.Put(key(t, "box", 1), alive)
	c.Put(key(t, "box", 2), dead1)
	c.Put(key(t, "box", 3), dead2)

	l.Delete(dead1)
	l.Delete(dead2)

	assert.Equal(t, 2, c.SweepDestroyed())
	assert.Equal(t, 1, c.Len())
	got, ok := c.Get(key(t, "box", 1))
	require.True(t, ok)
	assert.Same(t, alive, got)

	assert.Equal(t, 0, c.SweepDestroyed())
}
