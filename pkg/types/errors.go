package types

import "errors"

// Domain errors shared across the service boundary
var (
	// ErrBlankText is returned when ingesting empty or whitespace-only text
	ErrBlankText = errors.New("text cannot be blank")
	// ErrBlankQuery is returned when searching with an empty query
	ErrBlankQuery = errors.New("query cannot be blank")
	// ErrInvalidStatus is returned for an unknown status value
	ErrInvalidStatus = errors.New("invalid entry status")
	// ErrInvalidTransition is returned for a disallowed status transition
	ErrInvalidTransition = errors.New("invalid status transition")
)
