package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestNoOpCache verifies that NoOpCache never stores anything
func TestNoOpCache(t *testing.T) {
	c := NewNoOpCache()
	ctx := context.Background()

	result, err := c.Get(ctx, "test-key")
	assert.NoError(t, err)
	assert.Nil(t, result)

	err = c.Set(ctx, "test-key", &Answer{Points: []string{"a"}, Topic: "General"}, time.Hour)
	assert.NoError(t, err)

	// Still a miss: nothing was actually cached.
	result, err = c.Get(ctx, "test-key")
	assert.NoError(t, err)
	assert.Nil(t, result)

	assert.NoError(t, c.Close())
}

func TestGenerateCacheKey(t *testing.T) {
	a := GenerateCacheKey("What is a Goroutine?", false)
	assert.Len(t, a, 64)
	assert.Equal(t, a, GenerateCacheKey("  what is   a goroutine? ", false))
	assert.NotEqual(t, a, GenerateCacheKey("What is a Goroutine?", true))
	assert.NotEqual(t, a, GenerateCacheKey("What is a channel?", false))
}

func TestImplementations(t *testing.T) {
	var _ Cache = (*NoOpCache)(nil)
	var _ Cache = (*RedisCache)(nil)
	var _ Cache = (*MockCache)(nil)
}
