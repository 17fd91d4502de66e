// Package cache provides a small in-process TTL cache used to shield the
// listing API from repeated identical queries.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache is a concurrency-safe key/value store where every entry carries
// its own expiry. Expired entries are dropped lazily on read and swept
// opportunistically on write.
type TTLCache[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
}

// NewTTLCache constructs an empty cache.
func NewTTLCache[V any]() *TTLCache[V] {
	return &TTLCache[V]{entries: make(map[string]entry[V])}
}

// Get returns the cached value for key if present and not expired.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key for the given TTL, replacing any prior entry.
func (c *TTLCache[V]) Set(key string, value V, ttl time.Duration) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = entry[V]{value: value, expiresAt: now.Add(ttl)}
}

// Delete removes key if present.
func (c *TTLCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len reports the number of stored entries, expired ones included until the
// next sweep.
func (c *TTLCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
