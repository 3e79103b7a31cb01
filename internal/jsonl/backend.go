// Package jsonl implements a file-backed Larder backend. Each scope lives in
// <data_dir>/<scope>.jsonl, one entry per line, and the file is the source of
// truth: it is loaded on Attach and rewritten atomically on every mutation.
package jsonl

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/mesh-intelligence/larder/pkg/types"
)

var (
	_ types.Backend  = (*Backend)(nil)
	_ types.Reloader = (*Backend)(nil)
	_ types.Locator  = (*Backend)(nil)
)

// FileExt is the extension of scope files.
const FileExt = ".jsonl"

// Backend keeps one scope in memory, mirrored to a JSONL file.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	path     string
	quota    int64
	used     int64
	entries  map[string]string
}

// NewBackend creates a new JSONL backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{}
}

// ScopePath returns the file a scope is stored in.
func ScopePath(dataDir, scope string) string {
	if dataDir == "" {
		dataDir = "."
	}
	return filepath.Join(dataDir, scope+FileExt)
}

// Attach creates DataDir and the scope file if needed and loads the scope.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	path := ScopePath(config.DataDir, config.GetScope())
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := ensureFile(path); err != nil {
		return fmt.Errorf("create scope file: %w", err)
	}

	b.path = path
	b.quota = config.Quota
	if err := b.loadLocked(); err != nil {
		return fmt.Errorf("load scope: %w", err)
	}
	b.attached = true
	return nil
}

// Detach releases the in-memory copy. Every mutation is already on disk.
// Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.attached = false
	b.entries = nil
	b.used = 0
	return nil
}

// Reload re-reads the scope file, picking up writes from other processes.
func (b *Backend) Reload() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	return b.loadLocked()
}

// Path returns the scope file.
func (b *Backend) Path() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.path
}

// loadLocked replaces the in-memory scope with the file contents.
// The caller must hold b.mu write lock.
func (b *Backend) loadLocked() error {
	entries, err := readEntries(b.path)
	if err != nil {
		return err
	}
	var used int64
	for k, v := range entries {
		used += types.EntrySize(k, v)
	}
	b.entries = entries
	b.used = used
	return nil
}

// persistLocked writes the in-memory scope to disk.
// The caller must hold b.mu write lock.
func (b *Backend) persistLocked() error {
	keys := slices.Sorted(maps.Keys(b.entries))
	if err := writeEntries(b.path, keys, b.entries); err != nil {
		return fmt.Errorf("persist %s: %w", b.path, err)
	}
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

// SetItem stores value under key and persists the scope. A quota or
// persist failure leaves both memory and file unchanged.
func (b *Backend) SetItem(key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}

	old, existed := b.entries[key]
	used := b.used + types.EntrySize(key, value)
	if existed {
		used -= types.EntrySize(key, old)
	}
	if b.quota > 0 && used > b.quota {
		return types.ErrQuotaExceeded
	}

	b.entries[key] = value
	if err := b.persistLocked(); err != nil {
		if existed {
			b.entries[key] = old
		} else {
			delete(b.entries, key)
		}
		return err
	}
	b.used = used
	return nil
}

// RemoveItem deletes key if present and persists the scope.
func (b *Backend) RemoveItem(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	old, ok := b.entries[key]
	if !ok {
		return nil
	}

	delete(b.entries, key)
	if err := b.persistLocked(); err != nil {
		b.entries[key] = old
		return err
	}
	b.used -= types.EntrySize(key, old)
	return nil
}

// Clear empties the scope file.
func (b *Backend) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	if err := writeEntries(b.path, nil, nil); err != nil {
		return fmt.Errorf("persist %s: %w", b.path, err)
	}
	b.entries = make(map[string]string)
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
	return slices.Sorted(maps.Keys(b.entries)), nil
}
