// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// SyncRequest is the body of POST /api/sync.
//
// The first request of a cycle carries the outgoing batch together with the
// caller's watermark. Continuation requests carry no changes; instead they
// echo the PullCursor and SyncStartedAt values returned by the previous page
// so that the server keeps serving the same consistency window.
type SyncRequest struct {
	// Changes is the outgoing batch. Empty on pull-only continuation requests.
	Changes []SyncChange `json:"changes"`

	// LastSyncAt is the caller's last confirmed watermark. Nil on the very
	// first sync of an identity.
	LastSyncAt *time.Time `json:"lastSyncAt,omitempty"`

	// SchemaVersion is the schema the caller was built against. The server
	// rejects requests whose version does not match its own.
	SchemaVersion int `json:"schemaVersion"`

	// PullCursor is the continuation token of a paginated pull.
	PullCursor string `json:"pullCursor,omitempty"`

	// SyncStartedAt pins the consistency point of a paginated pull.
	SyncStartedAt *time.Time `json:"syncStartedAt,omitempty"`

	// PageSize is a hint; the server may clamp it.
	PageSize int `json:"pageSize,omitempty"`
}

// IsContinuation reports whether the request asks for a follow-up page of an
// already started pull.
func (r SyncRequest) IsContinuation() bool {
	return r.PullCursor != ""
}
