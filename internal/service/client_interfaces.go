package service

import (
	"context"

	"github.com/MKhiriev/go-outbox-sync/models"
)

// SyncRequester asks the engine for a cycle. Requests made while a cycle is
// running collapse into a single follow-up cycle.
type SyncRequester interface {
	RequestSync()
}

// ClientSyncEngine runs outbox-driven sync cycles for one identity on one
// device.
type ClientSyncEngine interface {
	SyncRequester

	// Run consumes sync requests until ctx is cancelled. It returns nil on
	// cancellation and a wrapped [ErrLocalFault] when a cycle hits a local
	// fault. Rejected cycles are reported through Status and do not stop
	// the loop.
	Run(ctx context.Context) error

	// RunCycle performs one cycle now: push, pull every page, apply, advance
	// the watermark. Transient failures are retried with backoff until the
	// cycle succeeds, is rejected, hits a local fault or ctx ends. Concurrent
	// calls are serialized.
	RunCycle(ctx context.Context) error

	// Status returns a snapshot of the engine.
	Status() models.SyncStatus
}

// ClientWriteService is the application's write path into synced tables.
// Every write stamps the sync columns and records an outbox entry in the
// same transaction.
type ClientWriteService interface {
	// Save creates or replaces a row. A missing id is generated. The stored
	// row is returned.
	Save(ctx context.Context, table models.Table, row models.LocalRow) (models.LocalRow, error)

	// Delete tombstones an existing row.
	Delete(ctx context.Context, table models.Table, rowID string) error
}
