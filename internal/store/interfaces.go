package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-outbox-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/server_store_mock.go -package=mock

// SyncRowRepository is the central store of synced rows, partitioned by owner.
type SyncRowRepository interface {
	// Apply writes changes under last-writer-wins in one transaction and
	// reserves the owner's next stamp. Every applied row carries that stamp
	// and it becomes the consistency point of the pull that follows.
	Apply(ctx context.Context, owner string, changes []models.SyncChange) (ApplyResult, error)
	// Collect returns one page of rows stamped in (Since, Until], ordered by
	// (stamp, table, row id).
	Collect(ctx context.Context, owner string, query CollectQuery) (CollectPage, error)
}

// ApplyResult counts per-change outcomes of [SyncRowRepository.Apply].
type ApplyResult struct {
	Applied    int
	Ignored    int
	Duplicates int
	Stamp      time.Time
}

// CollectQuery selects one page of changes.
type CollectQuery struct {
	Since *time.Time
	Until time.Time
	After *Cursor
	Limit int
}

// CollectPage is one page of changes; Next is nil on the last page.
type CollectPage struct {
	Changes []models.SyncChange
	Next    *Cursor
}
