package models

import "time"

// SyncResponse is the body returned by POST /api/sync.
type SyncResponse struct {
	// Changes holds remote changes newer than the request's LastSyncAt, up to
	// one page. The server deduplicates to one current state per row.
	Changes []SyncChange `json:"changes"`

	// SyncedAt is the effective timestamp of the response. After the final
	// page it becomes the caller's new watermark.
	SyncedAt time.Time `json:"syncedAt"`

	// Error is set on application-level failures.
	Error string `json:"error,omitempty"`

	// Debug is a diagnostic trace. It must never drive control flow.
	Debug []string `json:"debug,omitempty"`

	// NextCursor is present iff more pages remain.
	NextCursor string `json:"nextCursor,omitempty"`

	// SyncStartedAt is the pinned consistency point of a multi-page pull and
	// must be echoed back on every continuation request.
	SyncStartedAt *time.Time `json:"syncStartedAt,omitempty"`
}

// HasMore reports whether the pull has further pages.
func (r SyncResponse) HasMore() bool {
	return r.NextCursor != ""
}
