package types

// FailureKind classifies a failure recovered by the Store.
type FailureKind string

// Failure kinds, one per Store operation.
const (
	ReadFailure   FailureKind = "read"
	WriteFailure  FailureKind = "write"
	RemoveFailure FailureKind = "remove"
	ClearFailure  FailureKind = "clear"
)

// Failure is one entry of the diagnostic log.
type Failure struct {
	Kind    FailureKind
	Message string
	// Key is empty for ClearFailure.
	Key string
	Err error
}

// Diagnostics is the append-only side channel the Store reports recovered
// failures to. It is written to and never read by the Store.
type Diagnostics interface {
	Report(f Failure)
}
