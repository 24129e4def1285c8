package session

import "errors"

// Sentinel errors for session operations.
var (
	// ErrNotFound indicates no session file exists for the id.
	ErrNotFound = errors.New("session not found")

	// ErrInvalidID indicates a session id that cannot be used as a file name.
	ErrInvalidID = errors.New("invalid session id")

	// ErrUnknownVendor indicates an unsupported vendor name.
	ErrUnknownVendor = errors.New("unknown vendor")

	// ErrInvalidSession indicates a session that fails validation.
	ErrInvalidSession = errors.New("invalid session")
)
