// Package memory implements an in-process Larder backend. Nothing it holds
// outlives the process; it is the reference backend for tests.
package memory

import (
	"slices"
	"sync"

	"github.com/mesh-intelligence/larder/pkg/types"
)

var _ types.Backend = (*Backend)(nil)

// Backend keeps a single scope in a map.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	quota    int64
	used     int64
	entries  map[string]string
}

// NewBackend creates a new memory backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach initializes an empty scope with the configured quota.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	b.quota = config.Quota
	b.used = 0
	b.entries = make(map[string]string)
	b.attached = true
	return nil
}

// Detach drops every entry. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.attached = false
	b.entries = nil
	b.used = 0
	return nil
}

// GetItem returns the raw value under key.
func (b *Backend) GetItem(key string) (string, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return "", false, types.ErrStoreDetached
	}
	v, ok := b.entries[key]
	return v, ok, nil
}

// SetItem stores value under key unless doing so would exceed the quota.
func (b *Backend) SetItem(key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}

	used := b.used + types.EntrySize(key, value)
	if old, ok := b.entries[key]; ok {
		used -= types.EntrySize(key, old)
	}
	if b.quota > 0 && used > b.quota {
		return types.ErrQuotaExceeded
	}

	b.entries[key] = value
	b.used = used
	return nil
}

// RemoveItem deletes key if present.
func (b *Backend) RemoveItem(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	if old, ok := b.entries[key]; ok {
		b.used -= types.EntrySize(key, old)
		delete(b.entries, key)
	}
	return nil
}

// Clear deletes every entry.
func (b *Backend) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	clear(b.entries)
	b.used = 0
	return nil
}

// Keys returns all keys in ascending order.
func (b *Backend) Keys() ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	keys := make([]string, 0, len(b.entries))
	for k := range b.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

// Used returns the number of bytes currently charged against the quota.
func (b *Backend) Used() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.used
}
