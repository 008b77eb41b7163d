// Package workers runs the background triggers of the sync client.
//
// Each trigger is a [Worker]: the timer asks for a cycle on a fixed interval,
// the connectivity probe asks for one on every offline to online edge, and
// the engine worker consumes those requests. [Workers] runs them together and
// stops all of them when one fails.
package workers

import "context"

// Worker is a background loop. Run blocks until ctx is cancelled or the
// worker fails. A nil error means a clean stop.
type Worker interface {
	Run(ctx context.Context) error
}

// SyncRequester is the subset of the engine used by trigger workers.
type SyncRequester interface {
	RequestSync()
}

// Pinger probes the sync server.
type Pinger interface {
	Ping(ctx context.Context) error
}
