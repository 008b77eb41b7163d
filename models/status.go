package models

import "time"

// SyncState is the phase of the sync engine.
type SyncState string

const (
	StateIdle     SyncState = "IDLE"
	StatePushing  SyncState = "PUSHING"
	StatePulling  SyncState = "PULLING"
	StateApplying SyncState = "APPLYING"
	StateError    SyncState = "ERROR"
)

// SyncOutcome is what the caller is told about the most recent cycle.
type SyncOutcome string

const (
	OutcomeNone      SyncOutcome = ""
	OutcomeSucceeded SyncOutcome = "succeeded"
	OutcomeRetrying  SyncOutcome = "retrying"
	OutcomeFailed    SyncOutcome = "failed"
)

// SyncStatus is a snapshot of the engine for display and diagnostics.
type SyncStatus struct {
	State   SyncState
	Outcome SyncOutcome
	// Reason is a human-readable cause when Outcome is retrying or failed.
	Reason string
	// Attempt counts attempts of the current or last cycle, starting at 1.
	Attempt int

	LastSyncAt *time.Time
	UpdatedAt  time.Time

	// Counters of the last completed cycle.
	Pushed  int
	Pulled  int
	Applied int
	Ignored int

	// Debug is the server's trace from the last response.
	Debug []string
}
