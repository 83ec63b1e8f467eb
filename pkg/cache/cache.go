// Package cache provides pluggable response caching for repository clients.
//
// Three backends are available:
//   - FileCache: file-based storage for CLI usage (~/.cache/depsize/)
//   - RedisCache: Redis-backed storage for shared or long-lived deployments
//   - NullCache: no-op cache for testing or when caching is disabled
//
// Cache entries carry their own expiration; expired entries are treated as
// misses and removed lazily on read.
package cache

import (
	"context"
	"time"
)

// Cache stores raw byte payloads keyed by string.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given time-to-live.
	// A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}
