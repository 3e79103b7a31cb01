package types

import "errors"

// Config holds backend selection and parameters for Backend.Attach.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Scope names the storage scope the backend attaches to. Entries in
	// different scopes never see each other. Empty means DefaultScope.
	Scope string `json:"scope,omitempty" yaml:"scope,omitempty"`

	// Quota is the capacity of the scope in bytes, counted as the sum of
	// len(key)+len(value) over all entries. Zero means unlimited.
	Quota int64 `json:"quota,omitempty" yaml:"quota,omitempty"`
}

// Supported backend names.
const (
	BackendMemory = "memory"
	BackendJSONL  = "jsonl"
	BackendSQLite = "sqlite"
)

// DefaultScope is used when Config.Scope is empty.
const DefaultScope = "default"

// DefaultQuota mirrors the usual per-origin browser storage capacity.
const DefaultQuota = 5 * 1024 * 1024

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrQuotaInvalid   = errors.New("quota must not be negative")
	ErrScopeInvalid   = errors.New("scope must not contain path separators")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendMemory: true,
	BackendJSONL:  true,
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Quota < 0 {
		return ErrQuotaInvalid
	}
	for _, r := range c.Scope {
		if r == '/' || r == '\\' {
			return ErrScopeInvalid
		}
	}
	if c.Scope == "." || c.Scope == ".." {
		return ErrScopeInvalid
	}
	return nil
}

// GetScope returns the effective scope name.
func (c Config) GetScope() string {
	if c.Scope == "" {
		return DefaultScope
	}
	return c.Scope
}
