// Package cache provides rule cache configuration options.
package cache

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Options configures the per-route rule cache.
type Options struct {
	// Backend selects the cache backend (memory or redis).
	Backend string `json:"backend" mapstructure:"backend"`

	// TTL is how long a cached rule selection stays valid.
	TTL time.Duration `json:"ttl" mapstructure:"ttl"`

	// KeyPrefix namespaces cache keys in shared backends.
	KeyPrefix string `json:"key-prefix" mapstructure:"key-prefix"`
}

// NewOptions creates default cache options.
func NewOptions() *Options {
	return &Options{
		Backend:   BackendMemory,
		TTL:       5 * time.Minute,
		KeyPrefix: "gatekeeper:rules:",
	}
}

// AddFlags adds flags for cache options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Backend, "cache.backend", o.Backend, "Rule cache backend (memory|redis)")
	fs.DurationVar(&o.TTL, "cache.ttl", o.TTL, "Rule cache TTL")
	fs.StringVar(&o.KeyPrefix, "cache.key-prefix", o.KeyPrefix, "Rule cache key prefix")
}

// Validate validates the cache options.
func (o *Options) Validate() error {
	if o.Backend != BackendMemory && o.Backend != BackendRedis {
		return fmt.Errorf("cache.backend must be %q or %q", BackendMemory, BackendRedis)
	}
	if o.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}
	return nil
}
