package cache

import (
	"context"
	"fmt"
	"time"
)

// Layered composes the volatile memory layer with a durable store. Reads
// check memory first and backfill it from the durable layer on a miss;
// writes land in both layers before Set returns. The memory layer is only
// ever a mirror of the durable layer, never the source of truth.
type Layered struct {
	memory    Store
	durable   Store
	namespace string
}

// NewLayered creates a layered cache. All keys are namespaced under the
// given prefix so unrelated data sharing the durable store cannot collide.
func NewLayered(memory, durable Store, namespace string) *Layered {
	if durable == nil {
		durable = NoOpStore{}
	}
	return &Layered{memory: memory, durable: durable, namespace: namespace}
}

func (l *Layered) key(key string) string {
	if l.namespace == "" {
		return key
	}
	return l.namespace + "/" + key
}

// Get reads through the layers. A durable hit repopulates the memory layer
// before returning.
func (l *Layered) Get(ctx context.Context, key string, dest any) (bool, error) {
	k := l.key(key)

	hit, err := l.memory.Get(ctx, k, dest)
	if err != nil {
		return false, err
	}
	if hit {
		return true, nil
	}

	hit, err = l.durable.Get(ctx, k, dest)
	if err != nil || !hit {
		return false, err
	}

	if err := l.memory.Set(ctx, k, dest, 0); err != nil {
		return false, fmt.Errorf("failed to repopulate memory layer: %w", err)
	}
	return true, nil
}

// Set writes to both layers synchronously. The ttl applies to the durable
// layer; the memory layer keeps its own fixed expiry.
func (l *Layered) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	k := l.key(key)

	if err := l.memory.Set(ctx, k, value, 0); err != nil {
		return err
	}
	if err := l.durable.Set(ctx, k, value, ttl); err != nil {
		return fmt.Errorf("durable layer write failed: %w", err)
	}
	return nil
}

// Close closes both layers.
func (l *Layered) Close() error {
	memErr := l.memory.Close()
	if err := l.durable.Close(); err != nil {
		return err
	}
	return memErr
}
