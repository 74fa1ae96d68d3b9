package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache provides answer caching
type Cache interface {
	// Get retrieves a cached answer by key
	// Returns nil if not found
	Get(ctx context.Context, key string) (*Answer, error)

	// Set stores an answer with TTL
	Set(ctx context.Context, key string, answer *Answer, ttl time.Duration) error

	// Close closes the cache connection
	Close() error
}

// Answer is the cached outcome of a technical question.
type Answer struct {
	Points   []string `json:"points"`
	Topic    string   `json:"topic"`
	Language string   `json:"language,omitempty"`
	Snippet  string   `json:"snippet,omitempty"`
}

// GenerateCacheKey derives a stable key from the question and whether a
// snippet was requested. Case and whitespace differences map to the same key.
func GenerateCacheKey(question string, withSnippet bool) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(question)), " ")
	if withSnippet {
		normalized += "|snippet"
	}
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
