package cache

import (
	"context"
	"time"
)

// NoOpCache is a cache implementation that does nothing.
// Used when CACHE_PROVIDER=none or Redis is unavailable: all operations
// succeed and every lookup is a miss.
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache instance
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Get always returns nil (cache miss)
func (c *NoOpCache) Get(ctx context.Context, key string) (*Answer, error) {
	return nil, nil
}

// Set does nothing and always succeeds
func (c *NoOpCache) Set(ctx context.Context, key string, answer *Answer, ttl time.Duration) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}
