// Package sqlite implements the SQLite Larder backend. Every scope shares
// one database file, <data_dir>/larder.db, and is isolated by a scope column.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/mesh-intelligence/larder/pkg/types"
)

var (
	_ types.Backend = (*Backend)(nil)
	_ types.Locator = (*Backend)(nil)
)

// DBFileName is the database file inside DataDir.
const DBFileName = "larder.db"

// Backend implements types.Backend on top of SQLite.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	db       *sqlx.DB
	path     string
	scope    string
	quota    int64
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach creates DataDir if it does not exist, opens the database and
// ensures the schema. Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(dataDir, DBFileName)
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	// One connection keeps the pragmas in effect and serializes writers.
	db.SetMaxOpenConns(1)

	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			if closeErr := db.Close(); closeErr != nil {
				return fmt.Errorf("apply schema: %w (also failed to close db: %v)", err, closeErr)
			}
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	b.db = db
	b.path = path
	b.scope = config.GetScope()
	b.quota = config.Quota
	b.attached = true
	return nil
}

// Detach closes the database. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	if b.db != nil {
		err := b.db.Close()
		b.db = nil
		return err
	}
	return nil
}

// Path returns the database file.
func (b *Backend) Path() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.path
}

// GetItem returns the raw value under key in the attached scope.
func (b *Backend) GetItem(key string) (string, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return "", false, types.ErrStoreDetached
	}

	var value string
	err := b.db.Get(&value, queryGet, b.scope, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

// SetItem upserts key. The quota is checked in the same transaction as the
// write, so a rejected write changes nothing.
func (b *Backend) SetItem(key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}

	tx, err := b.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if b.quota > 0 {
		var used int64
		if err := tx.Get(&used, queryUsage, b.scope); err != nil {
			return fmt.Errorf("measure usage: %w", err)
		}
		var old string
		err := tx.Get(&old, queryGet, b.scope, key)
		switch {
		case err == nil:
			used -= types.EntrySize(key, old)
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("get %q: %w", key, err)
		}
		if used+types.EntrySize(key, value) > b.quota {
			return types.ErrQuotaExceeded
		}
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.Exec(queryUpsert, b.scope, key, value, now); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// RemoveItem deletes key if present.
func (b *Backend) RemoveItem(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	if _, err := b.db.Exec(queryDelete, b.scope, key); err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}

// Clear deletes every entry in the attached scope. Other scopes are kept.
func (b *Backend) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	if _, err := b.db.Exec(queryClear, b.scope); err != nil {
		return fmt.Errorf("clear scope %q: %w", b.scope, err)
	}
	return nil
}

// Keys returns the attached scope's keys in ascending byte order.
func (b *Backend) Keys() ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	keys := []string{}
	if err := b.db.Select(&keys, queryKeys, b.scope); err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	return keys, nil
}

// Used returns the bytes charged against the quota in the attached scope.
func (b *Backend) Used() (int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return 0, types.ErrStoreDetached
	}
	var used int64
	if err := b.db.Get(&used, queryUsage, b.scope); err != nil {
		return 0, fmt.Errorf("measure usage: %w", err)
	}
	return used, nil
}
