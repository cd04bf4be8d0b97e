// Package cache stores rendered artifacts in memory.
//
// The HTTP server answers the same tree query many times against one
// snapshot; rendering (SVG in particular) dominates the cost, so rendered
// bytes are kept keyed by snapshot and options. Entries live only as long
// as the process.
package cache

import (
	"context"
	"time"
)

// Cache stores byte values by key.
type Cache interface {
	// Get returns the value for key and whether it was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases resources.
	Close() error
}

// ArtifactKey identifies a rendered artifact for one snapshot and one set
// of query options.
func ArtifactKey(snapshot, options string) string {
	return hashKey("artifact", snapshot, options)
}
