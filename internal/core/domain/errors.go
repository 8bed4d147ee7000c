package domain

import "errors"

// Storage-level sentinel errors. Adapters wrap driver errors with these so the
// service layer can classify failures without importing driver packages.
var (
	// ErrDuplicateKey is returned when a unique constraint rejects a write.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrWriteConflict is returned when the store aborts a unit of work because a
	// concurrent transaction touched the same rows (serialization failure,
	// deadlock, lock timeout, failed commit).
	ErrWriteConflict = errors.New("concurrent write conflict")
)
