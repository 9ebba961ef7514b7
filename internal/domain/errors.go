package domain

import "errors"

var (
	// ErrNotFound is returned by write operations that require an existing row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
)
