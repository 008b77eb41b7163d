package service

import "errors"

// Client-side failures.
var (
	// ErrLocalFault marks a storage or adapter configuration failure on the
	// device. It is never retried and stops the engine loop.
	ErrLocalFault = errors.New("local fault")

	// ErrCycleRejected marks a cycle the server refused or answered with
	// something the engine cannot use. Retrying without remediation cannot
	// converge.
	ErrCycleRejected = errors.New("sync cycle rejected")

	ErrRowNotFound = errors.New("row not found")
	ErrInvalidRow  = errors.New("invalid row")
)

// Server-side failures.
var (
	ErrSchemaMismatch  = errors.New("schema version mismatch")
	ErrUnknownTable    = errors.New("unknown table")
	ErrInvalidRequest  = errors.New("invalid sync request")
	ErrInvalidCursor   = errors.New("invalid pull cursor")
	ErrMissingIdentity = errors.New("no identity in request context")

	ErrTokenIsExpired          = errors.New("token is expired")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")
)
