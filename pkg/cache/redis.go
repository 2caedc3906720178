package cache

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"
)

// Redis implements Cache backed by a shared redis instance.
//
// Values are serialized with sonic. A corrupted entry is deleted and
// reported as a miss so callers re-fetch from the source of truth; redis
// connectivity errors degrade to misses rather than failing the caller.
type Redis[V any] struct {
	client *goredis.Client
	prefix string
}

// NewRedis creates a redis-backed cache. All keys are stored under the
// given prefix so InvalidateAll only touches this cache's entries.
func NewRedis[V any](client *goredis.Client, prefix string) *Redis[V] {
	return &Redis[V]{
		client: client,
		prefix: prefix,
	}
}

func (c *Redis[V]) key(key string) string {
	return c.prefix + key
}

// Get retrieves an item from redis.
func (c *Redis[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V

	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			logger.Warnw("redis cache get failed, treating as miss", "key", key, "error", err.Error())
		}
		return zero, false
	}

	var value V
	if err := sonic.Unmarshal(data, &value); err != nil {
		// Corrupted entry: delete and report a miss, never an error.
		logger.Warnw("corrupted cache entry, deleting", "key", key, "error", err.Error())
		_ = c.client.Del(ctx, c.key(key)).Err()
		return zero, false
	}
	return value, true
}

// Set stores an item in redis with the given TTL.
func (c *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) {
	data, err := sonic.Marshal(value)
	if err != nil {
		logger.Warnw("failed to marshal cache value", "key", key, "error", err.Error())
		return
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, c.key(key), data, ttl).Err(); err != nil {
		logger.Warnw("redis cache set failed", "key", key, "error", err.Error())
	}
}

// Invalidate removes a single item from redis.
func (c *Redis[V]) Invalidate(ctx context.Context, key string) {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		logger.Warnw("redis cache delete failed", "key", key, "error", err.Error())
	}
}

// InvalidateAll removes every key under this cache's prefix.
func (c *Redis[V]) InvalidateAll(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warnw("redis cache delete failed", "key", iter.Val(), "error", err.Error())
		}
	}
	if err := iter.Err(); err != nil {
		logger.Warnw("redis cache scan failed", "prefix", c.prefix, "error", err.Error())
	}
}
