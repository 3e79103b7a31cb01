// Package types defines the raw store contract, the Backend lifecycle
// interface, the diagnostic side channel, configuration, and the standard
// errors shared by every Larder backend.
package types
