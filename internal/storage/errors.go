package storage

import "errors"

var (
	// ErrNotFound is returned when a referenced ad does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument is returned for unknown media types, auction modes
	// and mistyped ad fields.
	ErrInvalidArgument = errors.New("invalid argument")
)
