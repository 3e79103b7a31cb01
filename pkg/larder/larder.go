// Package larder is the public entry point: it opens the backend named by a
// types.Config and wraps it in a fail-soft store.Store.
//
// Example:
//
//	l, err := larder.Open(types.Config{
//	    Backend: types.BackendJSONL,
//	    DataDir: ".larder-db",
//	})
//	if err != nil {
//	    return err
//	}
//	defer l.Close()
//
//	if res := l.Set("theme", "dark"); !res.OK {
//	    // the value was not stored; the failure has been logged
//	}
//	theme := l.Get("theme", "light").Value
package larder

import (
	"github.com/mesh-intelligence/larder/internal/jsonl"
	"github.com/mesh-intelligence/larder/internal/memory"
	"github.com/mesh-intelligence/larder/internal/sqlite"
	"github.com/mesh-intelligence/larder/pkg/store"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// Version is the Larder release version.
const Version = "0.3.0"

// Larder is an attached backend together with the Store over it.
type Larder struct {
	*store.Store
	backend types.Backend
}

// NewBackend returns an unattached backend for the given name.
// Returns ErrBackendEmpty or ErrBackendUnknown for bad names.
func NewBackend(name string) (types.Backend, error) {
	switch name {
	case types.BackendMemory:
		return memory.NewBackend(), nil
	case types.BackendJSONL:
		return jsonl.NewBackend(), nil
	case types.BackendSQLite:
		return sqlite.NewBackend(), nil
	case "":
		return nil, types.ErrBackendEmpty
	default:
		return nil, types.ErrBackendUnknown
	}
}

// Open validates config, attaches the configured backend and returns a
// Larder over it. The caller must Close it.
func Open(config types.Config, opts ...store.Option) (*Larder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	backend, err := NewBackend(config.Backend)
	if err != nil {
		return nil, err
	}
	if err := backend.Attach(config); err != nil {
		return nil, err
	}
	return &Larder{Store: store.New(backend, opts...), backend: backend}, nil
}

// Keys lists the keys of the attached scope in ascending order.
func (l *Larder) Keys() ([]string, error) {
	return l.backend.Keys()
}

// Backend returns the underlying backend.
func (l *Larder) Backend() types.Backend {
	return l.backend
}

// Close detaches the backend. Close is idempotent.
func (l *Larder) Close() error {
	return l.backend.Detach()
}
