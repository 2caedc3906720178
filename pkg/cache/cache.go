// Package cache provides a generic TTL cache used by the rule repository.
//
// The cache is an injected capability rather than a module-level singleton:
// callers construct an implementation (in-memory or redis) and pass it into
// the components that need it, which keeps expiry behavior testable with a
// fake clock.
package cache

import (
	"context"
	"time"
)

// Clock abstracts time for deterministic expiry testing.
type Clock interface {
	Now() time.Time
}

// realClock is the production Clock backed by time.Now.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// SystemClock is the default Clock implementation.
var SystemClock Clock = realClock{}

// Cache defines the TTL cache capability.
//
// Implementations must be safe for concurrent use. Writes are idempotent:
// two goroutines racing to populate the same key converge to the same value.
type Cache[K comparable, V any] interface {
	// Get retrieves an item. Expired or corrupted entries report a miss.
	Get(ctx context.Context, key K) (V, bool)

	// Set adds or updates an item with the given time-to-live.
	// A non-positive ttl stores the item without expiry.
	Set(ctx context.Context, key K, value V, ttl time.Duration)

	// Invalidate removes a single item.
	Invalidate(ctx context.Context, key K)

	// InvalidateAll removes every item owned by this cache.
	InvalidateAll(ctx context.Context)
}
