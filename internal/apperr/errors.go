// Package apperr defines the error kinds shared by the domain services.
// Store failures that do not match any of these kinds propagate wrapped
// and are treated as internal.
package apperr

import "errors"

var (
	// ErrInvalid marks malformed input rejected before any store access.
	ErrInvalid = errors.New("invalid input")
	// ErrNotFound marks a missing playlist, membership, rating, or user.
	ErrNotFound = errors.New("not found")
	// ErrForbidden marks a request the current ownership rules deny.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict marks an insert where the unique pair already exists.
	ErrConflict = errors.New("conflict")
)
