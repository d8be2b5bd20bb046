package quote

import "errors"

// Error kinds surfaced by the engine. Handlers map these to HTTP statuses;
// everything else is treated as internal.
var (
	// ErrValidation marks caller input rejected before any state change.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a missing quote, line item, or product reference.
	ErrNotFound = errors.New("not found")
	// ErrDependency marks an external collaborator failure with no fallback.
	ErrDependency = errors.New("dependent service failed")
	// ErrComputation marks an internal totals inconsistency. A mutation
	// that trips it is aborted entirely.
	ErrComputation = errors.New("quote totals inconsistent")
)
