// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the transport layer between the sync engine and
// the sync server.
//
// The primary abstraction is [ServerAdapter], which decouples the engine from
// the underlying protocol. The package ships an HTTP/JSON implementation
// ([NewHTTPServerAdapter]) built on resty.
//
// The adapter never retries. Every failure is returned as a typed error so
// the engine owns the backoff policy: [ErrTransport] and
// [ErrServerUnavailable] are transient, everything else is a rejection.
// Errors reported by the server keep the server's message verbatim in
// [ServerError].
package adapter

import (
	"context"

	"github.com/MKhiriev/go-outbox-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/server_adapter_mock.go -package=mock

// ServerAdapter defines transport-agnostic communication with the sync
// server.
type ServerAdapter interface {
	// Send posts one SyncRequest to POST /api/sync and returns the decoded
	// response. A response whose error field is set is returned as a
	// [*ServerError] wrapping [ErrApplication].
	Send(ctx context.Context, req models.SyncRequest) (models.SyncResponse, error)

	// Ping probes GET /api/health. It is used by the connectivity worker to
	// detect the offline to online edge.
	Ping(ctx context.Context) error
}

// CredentialProvider supplies the bearer credential attached to every
// request. The adapter treats the value as opaque and never refreshes it.
type CredentialProvider interface {
	Token(ctx context.Context) (string, error)
}
