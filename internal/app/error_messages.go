// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains shared application-layer constants used across the
// sync server handlers and middleware.
//
// All Msg* constants are human-readable message strings written into HTTP
// response bodies or log entries. Keeping them in one place keeps the
// wording of the API consistent.
package app

const (
	// MsgInvalidJSON is returned when the request body cannot be decoded.
	MsgInvalidJSON = "invalid JSON was passed"

	// MsgInternalServerError replaces the message of every 5xx response so
	// storage details never reach the client.
	MsgInternalServerError = "internal server error"

	// MsgMissingAuthorization is returned when the Authorization header is
	// absent or malformed.
	MsgMissingAuthorization = "missing or malformed bearer token"

	// MsgTokenIsExpired is returned when a JWT bearer token is syntactically
	// valid but its expiry time has passed.
	MsgTokenIsExpired = "token is expired"

	// MsgTokenIsExpiredOrInvalid is returned when a JWT bearer token is
	// either expired or cannot be verified (e.g. wrong signature).
	MsgTokenIsExpiredOrInvalid = "token is expired or invalid"

	// MsgHealthy is the status reported by the health endpoint.
	MsgHealthy = "ok"
)
