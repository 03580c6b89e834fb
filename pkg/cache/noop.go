package cache

import (
	"context"
	"time"
)

// NoOpStore is used when no durable layer is configured. Every read misses
// and every write is discarded.
type NoOpStore struct{}

// Get always reports a miss.
func (NoOpStore) Get(context.Context, string, any) (bool, error) { return false, nil }

// Set discards the value.
func (NoOpStore) Set(context.Context, string, any, time.Duration) error { return nil }

// Close is a no-op.
func (NoOpStore) Close() error { return nil }
