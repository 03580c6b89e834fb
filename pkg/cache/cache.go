// Package cache provides the two-tier cache that shields rate-limited
// upstreams from repeated queries: a process-local memory layer in front of
// a durable store that survives restarts. Values cross the Store boundary as
// JSON so every layer holds the same representation.
package cache

import (
	"context"
	"time"
)

// Store is one cache layer. Get reports whether the key was found and, on a
// hit, unmarshals the stored value into dest (which must be a pointer).
type Store interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Close() error
}
