// Package cache stores rendered diagram artifacts keyed by content hash.
//
// Rendering the same DOT description with the same engine and format always
// yields an equivalent image, so the bytes can be reused across runs. Caching
// is opt-in: the CLI uses [NullCache] unless --cache is given.
//
// # Backends
//
//   - [NullCache]: never stores anything (default)
//   - [FileCache]: one JSON file per entry under ~/.cache/cddiagram/
//   - [RedisCache]: shared cache for several preview servers
//
// # Keys
//
// A [Keyer] derives keys from the hash of the graph description plus the
// engine and format. [ScopedKeyer] prefixes keys, for example to separate
// tool versions sharing one Redis instance.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss is reported as (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}

// TTLArtifact is the default lifetime of a rendered artifact. Entries are
// content-addressed, so the TTL only bounds disk and Redis usage.
const TTLArtifact = 7 * 24 * time.Hour

// NullCache never stores anything. It is the default when caching is not
// requested.
type NullCache struct{}

// NewNullCache returns a [NullCache].
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error { return nil }
func (NullCache) Close() error { return nil }

var _ Cache = NullCache{}
