package cache

import (
	"sync"
	"time"
)

type ReadMode uint8

const (
	// FreshOnly returns a value only while its age is below maxAge.
	FreshOnly ReadMode = iota
	// StaleAllowed behaves like FreshOnly for maxAge > 0 and ignores age otherwise.
	StaleAllowed
)

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Cache is an in-process key/value store with age-based reads.
// Entries are only replaced by Set or dropped by Clear; expiry never deletes them.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	now     func() time.Time
}

func New[V any](now func() time.Time) *Cache[V] {
	if now == nil {
		now = time.Now
	}

	return &Cache[V]{
		entries: make(map[string]entry[V]),
		now:     now,
	}
}

func (c *Cache[V]) Get(key string, maxAge time.Duration, mode ReadMode) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}
	if mode == StaleAllowed && maxAge <= 0 {
		return e.value, true
	}
	if c.now().Sub(e.storedAt) < maxAge {
		return e.value, true
	}
	return zero, false
}

func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, storedAt: c.now()}
	c.mu.Unlock()
}

func (c *Cache[V]) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry[V])
	c.mu.Unlock()
}

func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
