package store

import "errors"

// Sentinel errors. Services translate these into the typed domain errors
// exposed over the API.
var (
	// ErrNotFound is returned when an entity cannot be found by key or index.
	ErrNotFound = errors.New("resource not found")
	// ErrAlreadyExists is returned when a create would overwrite an existing
	// entity or collide on a unique index.
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrSessionExpired is returned when attempting to use an expired session.
	ErrSessionExpired = errors.New("session expired")
)
