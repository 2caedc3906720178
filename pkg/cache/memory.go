package cache

import (
	"context"
	"sync"
	"time"
)

// Memory implements a thread-safe in-memory TTL cache.
//
// Expired entries are dropped lazily on read. The cache is process-local;
// cross-instance staleness is bounded by the TTL the caller chooses.
type Memory[K comparable, V any] struct {
	mu    sync.RWMutex
	data  map[K]entry[V]
	clock Clock
}

type entry[V any] struct {
	value V

	// expiresAt is the zero time for entries without expiry
	expiresAt time.Time
}

// NewMemory creates a new in-memory cache using the system clock.
func NewMemory[K comparable, V any]() *Memory[K, V] {
	return NewMemoryWithClock[K, V](SystemClock)
}

// NewMemoryWithClock creates a new in-memory cache with an injected clock.
func NewMemoryWithClock[K comparable, V any](clock Clock) *Memory[K, V] {
	return &Memory[K, V]{
		data:  make(map[K]entry[V]),
		clock: clock,
	}
}

// Get retrieves an item from the cache.
func (c *Memory[K, V]) Get(_ context.Context, key K) (V, bool) {
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()

	if !ok {
		var zero V
		return zero, false
	}
	if !e.expiresAt.IsZero() && !c.clock.Now().Before(e.expiresAt) {
		// Expired; drop it so the map does not accumulate dead entries.
		c.mu.Lock()
		if cur, still := c.data[key]; still && cur.expiresAt.Equal(e.expiresAt) {
			delete(c.data, key)
		}
		c.mu.Unlock()

		var zero V
		return zero, false
	}
	return e.value, true
}

// Set adds or updates an item in the cache.
func (c *Memory[K, V]) Set(_ context.Context, key K, value V, ttl time.Duration) {
	e := entry[V]{value: value}
	if ttl > 0 {
		e.expiresAt = c.clock.Now().Add(ttl)
	}

	c.mu.Lock()
	c.data[key] = e
	c.mu.Unlock()
}

// Invalidate removes a single item from the cache.
func (c *Memory[K, V]) Invalidate(_ context.Context, key K) {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
}

// InvalidateAll removes all items from the cache.
func (c *Memory[K, V]) InvalidateAll(_ context.Context) {
	c.mu.Lock()
	c.data = make(map[K]entry[V])
	c.mu.Unlock()
}

// Len returns the number of stored entries, including not-yet-collected
// expired ones. Intended for tests and metrics.
func (c *Memory[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
