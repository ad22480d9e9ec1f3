// Package cache provides a process-local TTL cache used for query
// results and expansion fingerprints. Entries are immutable once written
// and lazily evicted on read; there is no background sweep and no
// durability guarantee.
package cache

import (
	"sync"
	"time"
)

// Clock abstracts time for deterministic expiry in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock Clock used in production.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type entry struct {
	value     any
	expiresAt time.Time
}

// TTL is a mutex-guarded expiring key-value cache.
type TTL struct {
	mu      sync.Mutex
	clock   Clock
	entries map[string]entry
}

// New creates a TTL cache. A nil clock defaults to the system clock.
func New(clock Clock) *TTL {
	if clock == nil {
		clock = SystemClock{}
	}
	return &TTL{
		clock:   clock,
		entries: make(map[string]entry),
	}
}

// Set stores value under key until ttl elapses.
func (c *TTL) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expiresAt: c.clock.Now().Add(ttl)}
}

// Get returns the cached value and whether it was present and unexpired.
// Expired entries are removed on access.
func (c *TTL) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.clock.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Delete removes key if present.
func (c *TTL) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes all entries.
func (c *TTL) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len returns the number of stored entries, including any that have
// expired but not yet been evicted.
func (c *TTL) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
