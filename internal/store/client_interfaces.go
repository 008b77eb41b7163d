package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-outbox-sync/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_store_mock.go -package=mock

// OutboxRepository is the durable queue of pending local mutations.
type OutboxRepository interface {
	// Record persists a pending change for (table, rowID), overwriting any
	// pending entry for the same row. It must run inside the transaction of
	// the row write; the entry timestamp is the row's lastModifiedAt.
	Record(ctx context.Context, q Querier, table models.Table, rowID string, data models.LocalRow, deleted bool) error
	// Drain returns up to limit pending entries, oldest edit first, without
	// removing them.
	Drain(ctx context.Context, limit int) ([]models.OutboxEntry, error)
	// Acknowledge removes exactly the given (table, rowID, lastModifiedAt)
	// triples. Missing entries are ignored.
	Acknowledge(ctx context.Context, entries []models.OutboxEntry) error
	// DiscardSuperseded removes the pending entry of a row if it is not newer
	// than upTo.
	DiscardSuperseded(ctx context.Context, q Querier, table models.Table, rowID string, upTo time.Time) error
	// Count returns the number of pending entries.
	Count(ctx context.Context) (int, error)
}

// RowRepository reads and writes synced rows in their local shape.
type RowRepository interface {
	Get(ctx context.Context, q Querier, table models.Table, rowID string) (models.LocalRow, bool, error)
	Upsert(ctx context.Context, q Querier, table models.Table, row models.LocalRow) error
	Columns(ctx context.Context, table models.Table) ([]string, error)
}

// WatermarkRepository stores lastSyncAt per authenticated identity.
type WatermarkRepository interface {
	Get(ctx context.Context, identity string) (*time.Time, error)
	Set(ctx context.Context, identity string, at time.Time) error
}

// DeviceRepository stores the identifier of this database's device.
type DeviceRepository interface {
	DeviceID(ctx context.Context) (string, error)
}
