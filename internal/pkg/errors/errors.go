package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input,
	// rejected before any state is mutated.
	ErrInvalidArgument = errors.New("invalid argument")
)
