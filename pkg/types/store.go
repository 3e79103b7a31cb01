package types

import "errors"

// RawStore is the underlying string-keyed persistent store. It natively
// stores strings only and may reject writes once its capacity is exceeded.
type RawStore interface {
	// GetItem returns the raw value stored under key. ok is false when the
	// key is absent.
	GetItem(key string) (value string, ok bool, err error)

	// SetItem stores value under key, overwriting any existing entry.
	// Returns ErrQuotaExceeded if the write would exceed capacity; the
	// store is left unchanged in that case.
	SetItem(key, value string) error

	// RemoveItem deletes the entry under key. Removing an absent key
	// succeeds.
	RemoveItem(key string) error

	// Clear deletes every entry in the attached scope.
	Clear() error
}

// Backend is a RawStore with an attach/detach lifecycle.
type Backend interface {
	RawStore

	// Attach connects the backend to the scope described by config.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, operations return ErrStoreDetached.
	Detach() error

	// Keys returns every key in the attached scope in ascending order.
	Keys() ([]string, error)
}

// Reloader is implemented by backends that cache the scope in memory and
// can re-read it to observe writes made by other processes.
type Reloader interface {
	Reload() error
}

// Locator is implemented by backends that keep the scope in a file.
type Locator interface {
	// Path returns the file holding the attached scope.
	Path() string
}

// Backend lifecycle and capacity errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrQuotaExceeded   = errors.New("storage quota exceeded")
)

// Value encoding errors reported by the Store.
var (
	ErrMalformedValue = errors.New("stored value is not valid JSON")
	ErrUnserializable = errors.New("value cannot be serialized to JSON")
)

// EntrySize returns the number of bytes an entry is charged against a quota.
func EntrySize(key, value string) int64 {
	return int64(len(key) + len(value))
}
