package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")

	// Content errors
	ErrEntityNotFound    = errors.New("content entity not found")
	ErrInvalidEntityType = errors.New("invalid entity type")

	// Revision errors
	ErrRevisionNotFound = errors.New("revision not found")
	ErrRevisionConflict = errors.New("revision number conflict")
	ErrSnapshotMismatch = errors.New("revision snapshot does not match entity type")

	// Auth errors
	ErrUnauthorized = errors.New("unauthorized")
)
