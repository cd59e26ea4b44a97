// Package cache provides byte-level caches that back the in-process image
// cache.
//
// The composition core keeps decoded images in memory for the process
// lifetime. A [Cache] from this package optionally stores the encoded source
// bytes as well, so a restarted process (or another instance sharing Redis)
// can skip the catalog round trip.
//
// Implementations:
//   - [NullCache]: stores nothing (default, and the --no-cache flag)
//   - [FileCache]: one file per key under a directory (CLI usage)
//   - [RedisCache]: shared cache for multi-instance server deployments
//
// Keys are built with a [Keyer] so that different catalogs never collide.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. The bool reports a hit; a miss is not
	// an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}
