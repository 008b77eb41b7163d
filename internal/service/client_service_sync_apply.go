package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-outbox-sync/internal/adapter"
	"github.com/MKhiriev/go-outbox-sync/internal/logger"
	"github.com/MKhiriev/go-outbox-sync/internal/resolver"
	"github.com/MKhiriev/go-outbox-sync/internal/tableadapter"
	"github.com/MKhiriev/go-outbox-sync/models"
)

// applyPage writes one page of remote changes in a single local transaction.
// A change that wins over the local row replaces it and drops the older
// pending outbox entry of that row.
func (e *clientSyncEngine) applyPage(ctx context.Context, changes []models.SyncChange) (applied, ignored int, err error) {
	if len(changes) == 0 {
		return 0, 0, nil
	}

	log := logger.FromContext(ctx)

	err = e.db.WithTx(ctx, func(tx *sql.Tx) error {
		applied, ignored = 0, 0
		for _, c := range changes {
			won, err := e.applyChange(ctx, tx, c)
			if err != nil {
				return err
			}
			if won {
				applied++
			} else {
				ignored++
			}
		}
		return nil
	})
	if err != nil {
		log.Err(err).
			Str("func", "clientSyncEngine.applyPage").
			Int("changes", len(changes)).
			Msg("failed to apply page")
		if !errors.Is(err, ErrLocalFault) && !errors.Is(err, ErrCycleRejected) {
			err = fmt.Errorf("%w: apply page: %w", ErrLocalFault, err)
		}
		return 0, 0, err
	}

	return applied, ignored, nil
}

func (e *clientSyncEngine) applyChange(ctx context.Context, tx *sql.Tx, c models.SyncChange) (bool, error) {
	row, err := e.registry.DecodeChange(c)
	switch {
	case errors.Is(err, tableadapter.ErrAdapterNotFound):
		return false, fmt.Errorf("%w: %w", ErrLocalFault, err)
	case err != nil:
		return false, fmt.Errorf("%w: %w: %s/%s: %w", ErrCycleRejected, adapter.ErrMalformedResponse, c.Table, c.RowID, err)
	}

	stored, found, err := e.rows.Get(ctx, tx, c.Table, c.RowID)
	if err != nil {
		return false, fmt.Errorf("%w: read %s/%s: %w", ErrLocalFault, c.Table, c.RowID, err)
	}

	// local rows keep millisecond precision
	incoming := resolver.Version{
		LastModifiedAt: c.LastModifiedAt.UTC().Truncate(time.Millisecond),
		DeviceID:       c.DeviceID(),
	}

	var current *resolver.Version
	if found {
		v, err := localVersion(stored)
		if err != nil {
			return false, fmt.Errorf("%w: stored %s/%s: %w", ErrLocalFault, c.Table, c.RowID, err)
		}
		current = &v
	}

	if resolver.Resolve(incoming, current) != resolver.IncomingWins {
		return false, nil
	}

	if err = e.rows.Upsert(ctx, tx, c.Table, row); err != nil {
		return false, fmt.Errorf("%w: write %s/%s: %w", ErrLocalFault, c.Table, c.RowID, err)
	}
	if err = e.outbox.DiscardSuperseded(ctx, tx, c.Table, c.RowID, incoming.LastModifiedAt); err != nil {
		return false, fmt.Errorf("%w: discard pending %s/%s: %w", ErrLocalFault, c.Table, c.RowID, err)
	}

	return true, nil
}

// localVersion reads the conflict-resolution key of a local row.
func localVersion(row models.LocalRow) (resolver.Version, error) {
	at, err := tableadapter.MillisTime(row[models.ColumnLastModifiedAt])
	if err != nil {
		return resolver.Version{}, err
	}

	device, _ := row[models.ColumnDeviceID].(string)
	return resolver.Version{LastModifiedAt: at, DeviceID: device}, nil
}
