// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"

	"github.com/MKhiriev/go-outbox-sync/internal/adapter"
	"github.com/MKhiriev/go-outbox-sync/internal/tableadapter"
)

// FailureKind is the engine's classification of a failed cycle.
type FailureKind int

const (
	// FailureTransient is retried with backoff: network errors, timeouts,
	// unavailable server.
	FailureTransient FailureKind = iota
	// FailureRejected aborts the cycle: schema mismatch, authentication,
	// malformed response, application error.
	FailureRejected
	// FailureLocal propagates: storage I/O or adapter misconfiguration.
	FailureLocal
)

func (k FailureKind) String() string {
	switch k {
	case FailureTransient:
		return "transient"
	case FailureRejected:
		return "rejected"
	case FailureLocal:
		return "local"
	default:
		return "unknown"
	}
}

// classifyFailure maps an error from one cycle attempt to a [FailureKind].
func classifyFailure(err error) FailureKind {
	switch {
	case errors.Is(err, ErrLocalFault),
		errors.Is(err, tableadapter.ErrAdapterNotFound),
		errors.Is(err, tableadapter.ErrColumnMismatch):
		return FailureLocal
	case errors.Is(err, ErrCycleRejected):
		return FailureRejected
	case adapter.IsTransient(err),
		errors.Is(err, context.DeadlineExceeded):
		return FailureTransient
	default:
		return FailureRejected
	}
}
