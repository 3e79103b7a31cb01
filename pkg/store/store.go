// Package store provides Store, a fail-soft JSON-valued facade over a
// types.RawStore. No Store operation returns an error or panics: failures
// are reported to the configured types.Diagnostics and surfaced in the
// returned Lookup or Result.
package store

import (
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// Failure messages written to the diagnostic log.
const (
	msgReadFailed   = "read failed"
	msgWriteFailed  = "write failed"
	msgRemoveFailed = "remove failed"
	msgClearFailed  = "clear failed"
)

// Lookup is the outcome of a read.
type Lookup[T any] struct {
	// Value is the decoded entry, or the caller's default when Found is false.
	Value T
	// Found reports whether an entry existed and decoded.
	Found bool
	// Err is set when an entry existed but could not be read or decoded.
	Err error
}

// Result is the outcome of a mutating operation.
type Result struct {
	OK  bool
	Err error
}

// Store is a typed key-value accessor over a raw string store.
type Store struct {
	raw  types.RawStore
	diag types.Diagnostics
}

// Option configures a Store.
type Option func(*Store)

// WithDiagnostics sets the sink failures are reported to.
func WithDiagnostics(d types.Diagnostics) Option {
	return func(s *Store) {
		if d != nil {
			s.diag = d
		}
	}
}

// New returns a Store over raw. Without WithDiagnostics, failures are
// only visible through return values.
func New(raw types.RawStore, opts ...Option) *Store {
	s := &Store{raw: raw, diag: discard{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the value stored under key decoded as a generic JSON tree
// (map[string]any, []any, string, float64, bool or nil). When the key is
// absent, def is returned as is. Numbers come back as float64, so integers
// beyond 2^53 lose precision; use Load with an integer type to read them
// exactly.
func (s *Store) Get(key string, def any) Lookup[any] {
	return Load(s, key, def)
}

// Load is the typed form of Get: the stored JSON is decoded into a fresh T.
// def is returned as is when the key is absent or the entry is unreadable.
func Load[T any](s *Store, key string, def T) Lookup[T] {
	raw, ok, err := s.raw.GetItem(key)
	if err != nil {
		s.report(types.ReadFailure, msgReadFailed, key, err)
		return Lookup[T]{Value: def, Err: err}
	}
	// An empty string is never produced by Set; treat it like a missing key.
	if !ok || raw == "" {
		return Lookup[T]{Value: def}
	}

	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		err = fmt.Errorf("%w: %w", types.ErrMalformedValue, err)
		s.report(types.ReadFailure, msgReadFailed, key, err)
		return Lookup[T]{Value: def, Err: err}
	}
	return Lookup[T]{Value: v, Found: true}
}

// Set serializes value to JSON and stores it under key, overwriting any
// existing entry. On failure the previous entry is left untouched.
func (s *Store) Set(key string, value any) Result {
	data, err := marshal(value)
	if err != nil {
		err = fmt.Errorf("%w: %w", types.ErrUnserializable, err)
		s.report(types.WriteFailure, msgWriteFailed, key, err)
		return Result{Err: err}
	}
	if err := s.raw.SetItem(key, string(data)); err != nil {
		s.report(types.WriteFailure, msgWriteFailed, key, err)
		return Result{Err: err}
	}
	return Result{OK: true}
}

// Remove deletes the entry under key. Removing an absent key succeeds.
func (s *Store) Remove(key string) Result {
	if err := s.raw.RemoveItem(key); err != nil {
		s.report(types.RemoveFailure, msgRemoveFailed, key, err)
		return Result{Err: err}
	}
	return Result{OK: true}
}

// Clear deletes every entry in the scope.
func (s *Store) Clear() Result {
	if err := s.raw.Clear(); err != nil {
		s.report(types.ClearFailure, msgClearFailed, "", err)
		return Result{Err: err}
	}
	return Result{OK: true}
}

// marshal is json.Marshal with panics from custom marshalers turned into
// errors.
func marshal(value any) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("marshal panicked: %v", r)
		}
	}()
	return json.Marshal(value)
}

func (s *Store) report(kind types.FailureKind, msg, key string, err error) {
	s.diag.Report(types.Failure{Kind: kind, Message: msg, Key: key, Err: err})
}

type discard struct{}

func (discard) Report(types.Failure) {}
