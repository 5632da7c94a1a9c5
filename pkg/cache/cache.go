// Package cache stores rendered artifacts and built graphs by content hash.
//
// # Back ends
//
//   - [FileCache]: one JSON file per entry below a directory, used by the CLI
//   - [RedisCache]: shared cache for the HTTP server
//   - [NullCache]: stores nothing, used with --no-cache
//
// # Keys
//
// Keys are derived by a [Keyer] from the SHA-256 of the input table and the
// options that influence the output, so a changed table or changed option
// never hits a stale entry:
//
//	k := cache.NewDefaultKeyer()
//	key := k.ArtifactKey(cache.Hash(tableJSON), cache.ArtifactKeyOpts{Language: "dot", Format: "svg"})
//
// [ScopedKeyer] prefixes every key, e.g. to keep several deployments apart
// in one Redis instance.
//
// # Observability
//
// [Instrument] wraps a Cache so that hits, misses and writes are reported to
// the global cache hooks.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the data stored under key. A missing or expired entry is a
	// miss (ok == false), not an error.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key. A ttl <= 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// DefaultTTL is how long artifacts are kept unless configured otherwise.
const DefaultTTL = 7 * 24 * time.Hour
