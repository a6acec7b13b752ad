package entity

import "errors"

var (
	// ErrNotFound is returned when a transaction, session, or certifier id
	// does not resolve to a known record.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when a caller supplies data the store has
	// no mapping for, e.g. an unknown template name.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStatusConflict is returned by a repository when a compare-and-set
	// status update finds the stored status no longer matches the expected
	// one. The engine surfaces it as an invalid transition.
	ErrStatusConflict = errors.New("status conflict")
)
