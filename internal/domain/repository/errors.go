package repository

import "errors"

var (
	// ErrVersionConflict is returned by optimistic saves when the row was
	// changed by someone else since it was read.
	ErrVersionConflict = errors.New("repository: version conflict")

	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("repository: duplicate record")
)
