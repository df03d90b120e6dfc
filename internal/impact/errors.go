package impact

import "errors"

var (
	// ErrUnauthenticated means no caller identity was presented.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden means the caller may not act on the requested buyer's data.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound marks an absent report, certificate, buyer, or project.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition marks a disallowed report lifecycle move.
	ErrInvalidTransition = errors.New("invalid report status transition")
)
