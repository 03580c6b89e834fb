package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// DefaultMemoryTTL is the fixed expiry of the process-local layer.
const DefaultMemoryTTL = 300 * time.Second

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore is a thread-safe in-memory cache layer with TTL support.
// Expired entries are invisible to Get and swept by a janitor goroutine.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]memoryEntry
	ttl    time.Duration
	stopCh chan struct{}
}

// NewMemoryStore creates a memory store. A non-positive ttl falls back to
// DefaultMemoryTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultMemoryTTL
	}
	m := &MemoryStore{
		data:   make(map[string]memoryEntry),
		ttl:    ttl,
		stopCh: make(chan struct{}),
	}

	go m.cleanup()

	return m
}

// Get retrieves a value if it exists and has not expired.
func (m *MemoryStore) Get(_ context.Context, key string, dest any) (bool, error) {
	m.mu.RLock()
	entry, ok := m.data[key]
	m.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return false, nil
	}

	if err := json.Unmarshal(entry.data, dest); err != nil {
		return false, fmt.Errorf("failed to decode cached value: %w", err)
	}
	return true, nil
}

// Set stores a value. The ttl argument is ignored: the memory layer always
// uses its own fixed expiry, independent of the durable layer's.
func (m *MemoryStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value for cache: %w", err)
	}

	m.mu.Lock()
	m.data[key] = memoryEntry{data: data, expiresAt: time.Now().Add(m.ttl)}
	m.mu.Unlock()

	return nil
}

// Close stops the janitor goroutine.
func (m *MemoryStore) Close() error {
	close(m.stopCh)
	return nil
}

// cleanup runs periodically to remove expired entries.
func (m *MemoryStore) cleanup() {
	ticker := time.NewTicker(m.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.removeExpired()
		case <-m.stopCh:
			return
		}
	}
}

func (m *MemoryStore) removeExpired() {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	for key, entry := range m.data {
		if now.After(entry.expiresAt) {
			delete(m.data, key)
		}
	}
}
