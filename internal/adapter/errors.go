package adapter

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport covers connection failures, timeouts and cancelled
	// requests. No response was received.
	ErrTransport = errors.New("transport failure")

	ErrUnauthorized      = errors.New("client unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrBadRequest        = errors.New("bad request")
	ErrSchemaMismatch    = errors.New("schema version mismatch")
	ErrServerUnavailable = errors.New("server unavailable")

	// ErrMalformedResponse means a 2xx response could not be decoded.
	ErrMalformedResponse = errors.New("malformed server response")

	// ErrApplication is a failure reported in the response body's error
	// field or by a status code without a more specific mapping.
	ErrApplication = errors.New("server reported error")
)

// ServerError is a failure reported by the server. Message holds the server's
// error text unchanged.
type ServerError struct {
	StatusCode int
	Message    string

	kind error
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s (http %d)", e.kind, e.StatusCode)
	}
	return fmt.Sprintf("%s (http %d): %s", e.kind, e.StatusCode, e.Message)
}

func (e *ServerError) Unwrap() error {
	return e.kind
}

// IsTransient reports whether err is worth retrying without remediation.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransport) || errors.Is(err, ErrServerUnavailable)
}
