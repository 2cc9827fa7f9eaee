// Package cache provides the byte-oriented cache used by registry clients.
//
// Two backends ship with the package: [FileCache] for local CLI use and
// [RedisCache] for build machines that share lookups. [NullCache] disables
// caching entirely.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values for cached entries.
const (
	TTLRegistry = 24 * time.Hour // registry version lookups
)

// Cache stores opaque byte values under string keys.
//
// Implementations must treat a missing or expired entry as a miss
// (hit=false, err=nil) rather than an error.
type Cache interface {
	// Get returns the cached value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases any resources held by the cache.
	Close() error
}
