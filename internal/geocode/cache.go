// Package geocode resolves catalog locations to coordinates using a
// process-wide cache, an external lookup service, and a best-effort
// write-back of newly discovered coordinates.
package geocode

import (
	"sync"

	"github.com/geoff-maddock/arcane-city-geo/internal/domain"
)

// Cache is a process-wide store of geocoding results keyed by canonical
// address query. Failed lookups are stored as negative entries so the
// external service is never re-queried for an address that cannot resolve.
// Entries live until Clear; there is no TTL and no eviction.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*domain.ResolvedPlace // nil value = negative entry
}

// NewCache creates an empty cache. Production shares one instance for the
// process lifetime; tests construct isolated instances.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*domain.ResolvedPlace)}
}

// Get returns the cached result for a query. The second return reports
// whether the key is present at all; a present key with a nil place is a
// negative entry.
func (c *Cache) Get(query string) (*domain.ResolvedPlace, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	place, ok := c.entries[query]
	if place == nil {
		return nil, ok
	}
	p := *place
	return &p, ok
}

// Put stores a successful resolution. Writes are idempotent (same key
// resolves to the same value) so last-writer-wins is fine across batches.
func (c *Cache) Put(query string, place domain.ResolvedPlace) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := place
	c.entries[query] = &p
}

// PutNegative records that a query has no geocoding result.
func (c *Cache) PutNegative(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[query] = nil
}

// Clear drops every entry unconditionally. Used for test isolation and
// manual cache-busting, never on a timer.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*domain.ResolvedPlace)
}

// Len reports the number of cached entries, negative entries included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
