// Package factory implements the parametric cell build engine: a memoizing
// wrapper around user builder functions with deterministic naming, invariant
// checking and layout-wide build serialization.
package factory

import "go.trai.ch/pcell/internal/core/domain"

// Cache is the content cache: a memoization table from cache keys to built
// cells. It is not internally synchronized; every access happens under the
// owning layout's build lock, which linearizes reads with writes.
type Cache struct {
	capacity int
	order    []domain.CacheKey
	entries  map[domain.CacheKey]*domain.Cell
}

// NewCache creates a cache. A capacity of zero means unbounded; otherwise
// the oldest entry is evicted when the capacity is exceeded.
func NewCache(capacity int) *Cache {
	return &Cache{
		capacity: capacity,
		entries:  make(map[domain.CacheKey]*domain.Cell),
	}
}

// Get returns the cell stored under the key. The caller must still check
// the cell for destruction.
func (c *Cache) Get(key domain.CacheKey) (*domain.Cell, bool) {
	cell, ok := c.entries[key]
	return cell, ok
}

// Put stores a cell, evicting the oldest entry if the cache is bounded and
// full.
func (c *Cache) Put(key domain.CacheKey, cell *domain.Cell) {
	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = cell
	for c.capacity > 0 && len(c.entries) > c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// Evict removes a single entry.
func (c *Cache) Evict(key domain.CacheKey) {
	if _, ok := c.entries[key]; !ok {
		return
	}
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// SweepDestroyed removes every entry whose cell has been destroyed and
// returns how many were evicted. Called when a hit turns out to be a
// dangling handle; a full sweep keeps the table clean in one pass.
func (c *Cache) SweepDestroyed() int {
	var keep []domain.CacheKey
	evicted := 0
	for _, key := range c.order {
		if c.entries[key].Destroyed() {
			delete(c.entries, key)
			evicted++
		} else {
			keep = append(keep, key)
		}
	}
	c.order = keep
	return evicted
}

// Len returns the number of cached cells.
func (c *Cache) Len() int { return len(c.entries) }
