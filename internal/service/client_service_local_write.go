package service

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/MKhiriev/go-outbox-sync/internal/logger"
	"github.com/MKhiriev/go-outbox-sync/internal/store"
	"github.com/MKhiriev/go-outbox-sync/internal/tableadapter"
	"github.com/MKhiriev/go-outbox-sync/models"
)

// IDGenerator produces ids for rows saved without one.
type IDGenerator interface {
	Generate() string
}

type clientWriteService struct {
	db       transactor
	outbox   store.OutboxRepository
	rows     store.RowRepository
	device   store.DeviceRepository
	registry *tableadapter.Registry
	ids      IDGenerator

	// threshold is the outbox size that requests a sync. Zero disables it.
	threshold int
	trigger   SyncRequester

	deviceMu sync.Mutex
	deviceID string

	now    func() time.Time
	logger *logger.Logger
}

// NewClientWriteService wires the application write path. trigger may be nil,
// in which case the outbox threshold is not watched.
func NewClientWriteService(
	storages *store.ClientStorages,
	registry *tableadapter.Registry,
	ids IDGenerator,
	threshold int,
	trigger SyncRequester,
	logger *logger.Logger,
) ClientWriteService {
	return &clientWriteService{
		db:        storages.DB,
		outbox:    storages.Outbox,
		rows:      storages.Rows,
		device:    storages.Device,
		registry:  registry,
		ids:       ids,
		threshold: threshold,
		trigger:   trigger,
		now:       time.Now,
		logger:    logger,
	}
}

// Save implements [ClientWriteService].
func (s *clientWriteService) Save(ctx context.Context, table models.Table, row models.LocalRow) (models.LocalRow, error) {
	log := logger.FromContext(ctx)

	if _, err := s.registry.Get(table); err != nil {
		return nil, err
	}

	next := maps.Clone(row)
	if next == nil {
		next = models.LocalRow{}
	}
	id, ok := next[models.ColumnID].(string)
	if next[models.ColumnID] != nil && !ok {
		return nil, fmt.Errorf("%w: id must be a string, got %T", ErrInvalidRow, next[models.ColumnID])
	}
	if id == "" {
		id = s.ids.Generate()
		next[models.ColumnID] = id
	}

	saved, err := s.write(ctx, table, id, false, func(stored models.LocalRow, found bool) (models.LocalRow, error) {
		return next, nil
	})
	if err != nil {
		log.Err(err).
			Str("func", "clientWriteService.Save").
			Str("table", string(table)).
			Str("row_id", id).
			Msg("failed to save row")
		return nil, err
	}

	s.checkThreshold(ctx)
	return saved, nil
}

// Delete implements [ClientWriteService].
func (s *clientWriteService) Delete(ctx context.Context, table models.Table, rowID string) error {
	log := logger.FromContext(ctx)

	if _, err := s.registry.Get(table); err != nil {
		return err
	}
	if rowID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidRow)
	}

	_, err := s.write(ctx, table, rowID, true, func(stored models.LocalRow, found bool) (models.LocalRow, error) {
		if !found {
			return nil, fmt.Errorf("%w: %s/%s", ErrRowNotFound, table, rowID)
		}
		return models.LocalRow{models.ColumnID: rowID}, nil
	})
	if err != nil {
		log.Err(err).
			Str("func", "clientWriteService.Delete").
			Str("table", string(table)).
			Str("row_id", rowID).
			Msg("failed to delete row")
		return err
	}

	s.checkThreshold(ctx)
	return nil
}

// write stamps the sync columns of the row built by build and stores it
// together with its outbox entry in one transaction. It returns the full
// stored row.
func (s *clientWriteService) write(
	ctx context.Context,
	table models.Table,
	rowID string,
	deleted bool,
	build func(stored models.LocalRow, found bool) (models.LocalRow, error),
) (models.LocalRow, error) {
	deviceID, err := s.currentDeviceID(ctx)
	if err != nil {
		return nil, err
	}

	tableAdapter, err := s.registry.Get(table)
	if err != nil {
		return nil, err
	}

	var full models.LocalRow
	err = s.db.WithTx(ctx, func(tx *sql.Tx) error {
		stored, found, err := s.rows.Get(ctx, tx, table, rowID)
		if err != nil {
			return err
		}

		row, err := build(stored, found)
		if err != nil {
			return err
		}

		at := s.now().UTC().UnixMilli()
		version := int64(0)
		if found {
			// a row never moves backwards in time, even if the clock does
			if prev, err := tableadapter.MillisTime(stored[models.ColumnLastModifiedAt]); err == nil && prev.UnixMilli() >= at {
				at = prev.UnixMilli() + 1
			}
			version, _ = stored[models.ColumnSyncVersion].(int64)
		}

		row[models.ColumnLastModifiedAt] = at
		row[models.ColumnSyncVersion] = version + 1
		row[models.ColumnDeviceID] = deviceID
		row[models.ColumnDeleted] = boolInt(deleted)

		// the outbox carries the full row, not only the written columns
		full = row
		if found {
			full = maps.Clone(stored)
			maps.Copy(full, row)
		}

		// a row the adapter cannot encode would block every later push
		if _, err = tableAdapter.ToWire(full); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRow, err)
		}

		if err = s.rows.Upsert(ctx, tx, table, row); err != nil {
			return err
		}
		return s.outbox.Record(ctx, tx, table, rowID, full, deleted)
	})
	if err != nil {
		return nil, err
	}
	return full, nil
}

func (s *clientWriteService) currentDeviceID(ctx context.Context) (string, error) {
	s.deviceMu.Lock()
	defer s.deviceMu.Unlock()

	if s.deviceID != "" {
		return s.deviceID, nil
	}

	id, err := s.device.DeviceID(ctx)
	if err != nil {
		return "", err
	}
	s.deviceID = id
	return id, nil
}

func (s *clientWriteService) checkThreshold(ctx context.Context) {
	if s.trigger == nil || s.threshold <= 0 {
		return
	}

	n, err := s.outbox.Count(ctx)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "clientWriteService.checkThreshold").
			Msg("failed to count outbox")
		return
	}
	if n >= s.threshold {
		s.trigger.RequestSync()
	}
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
