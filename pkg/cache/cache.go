// Package cache stores conversion results keyed by the content of the
// scene they were converted from.
//
// A conversion is a pure function of the material subgraph, the host
// version, the renderer and the conversion options, so a hash of those
// identifies the result. [Key] builds that hash. Backends:
//
//   - [FileCache]: one file per entry under a directory, for the CLI
//   - [RedisCache]: a shared cache for render farm batch jobs
//   - [NullCache]: caching disabled
//
// [Scoped] prefixes keys so several projects can share one backend.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// TTLGraph is the default lifetime of a cached conversion.
const TTLGraph = 7 * 24 * time.Hour

// KeyTypeGraph labels conversion results in cache metrics.
const KeyTypeGraph = "graph"

// KeyOpts are the conversion inputs besides the scene itself.
type KeyOpts struct {
	Renderer    string `json:"renderer"`
	Root        string `json:"root"`
	HostVersion string `json:"host_version"`
	RewriteTx   bool   `json:"rewrite_tx"`
	UDIM        bool   `json:"udim"`
	// Version of the converter, so upgrades do not serve stale results.
	Version string `json:"version"`
}

// Key returns the cache key of a conversion of scene, the serialized
// material subgraph, under opts.
func Key(scene []byte, opts KeyOpts) string {
	return hashKey(KeyTypeGraph, Hash(scene), opts)
}
