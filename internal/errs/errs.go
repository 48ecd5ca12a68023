// Package errs defines the Engine's typed error taxonomy.
//
// Every error surfaced across a package boundary is one of the kinds
// below, wrapped with context via fmt.Errorf("...: %w", ...). Callers
// use errors.Is / errors.As against the sentinel Err* values, never
// string matching.
package errs

import "fmt"

// Kind enumerates the error taxonomy kinds from the design's error
// handling section.
type Kind string

const (
	InvalidEvent     Kind = "invalid_event"
	FeatureMismatch  Kind = "feature_mismatch"
	LockTimeout      Kind = "lock_timeout"
	ModelLoadError   Kind = "model_load_error"
	ModelCorrupt     Kind = "model_corrupt"
	PersistenceError Kind = "persistence_error"
	ComputationError Kind = "computation_error"
	NotFound         Kind = "not_found"
)

// Error is a typed error carrying a Kind plus a human-readable reason.
type Error struct {
	Kind   Kind
	Reason string
	Err    error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// Is allows errors.Is(err, errs.ErrLockTimeout)-style matching by Kind:
// any *Error target with the same Kind matches, whatever its Reason.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New creates an *Error of the given kind with a formatted reason.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error of the given kind wrapping a lower-level cause.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...), Err: err}
}

// Sentinel instances for errors.Is comparisons where no extra context is
// needed, e.g. errors.Is(err, errs.ErrNotFound).
var (
	ErrInvalidEvent     = &Error{Kind: InvalidEvent, Reason: "invalid event"}
	ErrFeatureMismatch  = &Error{Kind: FeatureMismatch, Reason: "feature version mismatch"}
	ErrLockTimeout      = &Error{Kind: LockTimeout, Reason: "lock not acquired before deadline"}
	ErrModelLoadError   = &Error{Kind: ModelLoadError, Reason: "model failed to load"}
	ErrModelCorrupt     = &Error{Kind: ModelCorrupt, Reason: "model blob is corrupt"}
	ErrPersistenceError = &Error{Kind: PersistenceError, Reason: "persistence operation failed"}
	ErrComputationError = &Error{Kind: ComputationError, Reason: "non-finite value in computation"}
	ErrNotFound         = &Error{Kind: NotFound, Reason: "record not found"}
)
