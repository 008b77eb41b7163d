package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/MKhiriev/go-outbox-sync/internal/logger"
	"github.com/MKhiriev/go-outbox-sync/internal/resolver"
	"github.com/MKhiriev/go-outbox-sync/models"
)

// applyRetries bounds how often a transaction aborted by a serialization
// failure or deadlock is replayed.
const applyRetries = 3

// syncRowRepository is the PostgreSQL-backed implementation of
// [SyncRowRepository]. Rows are stored in their wire shape as JSONB.
type syncRowRepository struct {
	*DB
	backoff func() retry.Backoff
	logger  *logger.Logger
}

func NewSyncRowRepository(db *DB, logger *logger.Logger) SyncRowRepository {
	return &syncRowRepository{
		DB: db,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(applyRetries, retry.WithJitterPercent(20, retry.NewExponential(50*time.Millisecond)))
		},
		logger: logger,
	}
}

func (s *syncRowRepository) Apply(ctx context.Context, owner string, changes []models.SyncChange) (ApplyResult, error) {
	log := logger.FromContext(ctx)

	var result ApplyResult
	err := retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		result = ApplyResult{}
		err := s.WithTx(ctx, func(tx *sql.Tx) error {
			var applyErr error
			result, applyErr = s.applyTx(ctx, tx, owner, changes)
			return applyErr
		})
		if err != nil && isRetryable(s.errorClassificator, err) {
			log.Warn().Err(err).
				Str("func", "syncRowRepository.Apply").
				Str("owner", owner).
				Msg("retrying aborted transaction")
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		log.Err(err).
			Str("func", "syncRowRepository.Apply").
			Str("owner", owner).
			Int("changes", len(changes)).
			Msg("failed to apply changes")
		return ApplyResult{}, err
	}

	return result, nil
}

func (s *syncRowRepository) applyTx(ctx context.Context, tx *sql.Tx, owner string, changes []models.SyncChange) (ApplyResult, error) {
	var result ApplyResult

	if err := tx.QueryRowContext(ctx, reserveOwnerStamp, owner).Scan(&result.Stamp); err != nil {
		return ApplyResult{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	result.Stamp = result.Stamp.UTC()

	for _, c := range changes {
		if err := checkTable(c.Table); err != nil {
			return ApplyResult{}, err
		}

		var stored *resolver.Version
		var storedAt time.Time
		var storedDevice string
		err := tx.QueryRowContext(ctx, selectRowVersionForUpdate, owner, string(c.Table), c.RowID).Scan(&storedAt, &storedDevice)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return ApplyResult{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
		default:
			stored = &resolver.Version{LastModifiedAt: storedAt, DeviceID: storedDevice}
		}

		incoming := resolver.Version{LastModifiedAt: c.LastModifiedAt, DeviceID: c.DeviceID()}
		switch resolver.Resolve(incoming, stored) {
		case resolver.StoredWins:
			result.Ignored++
			continue
		case resolver.Duplicate:
			result.Duplicates++
			continue
		}

		payload, err := json.Marshal(c.Data)
		if err != nil {
			return ApplyResult{}, fmt.Errorf("%w: %w", ErrEncodingPayload, err)
		}

		_, err = tx.ExecContext(ctx, upsertSyncRow,
			owner,
			string(c.Table),
			c.RowID,
			string(payload),
			c.Deleted,
			c.LastModifiedAt.UTC(),
			c.DeviceID(),
			result.Stamp,
		)
		if err != nil {
			return ApplyResult{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		result.Applied++
	}

	return result, nil
}

func (s *syncRowRepository) Collect(ctx context.Context, owner string, q CollectQuery) (CollectPage, error) {
	log := logger.FromContext(ctx)

	if q.Limit <= 0 {
		return CollectPage{}, fmt.Errorf("%w: non-positive page size", ErrBuildingSQLQuery)
	}

	query, args, err := buildCollectQuery(owner, q)
	if err != nil {
		log.Err(err).Str("func", "syncRowRepository.Collect").Str("owner", owner).Msg("failed to create query")
		return CollectPage{}, err
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "syncRowRepository.Collect").Str("owner", owner).Msg("failed to query changes")
		return CollectPage{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	page := CollectPage{Changes: make([]models.SyncChange, 0, q.Limit)}
	var last Cursor
	for rows.Next() {
		if len(page.Changes) == q.Limit {
			next := last
			page.Next = &next
			break
		}

		var (
			c         models.SyncChange
			table     string
			payload   []byte
			updatedAt time.Time
		)
		if err := rows.Scan(&table, &c.RowID, &payload, &c.Deleted, &c.LastModifiedAt, &updatedAt); err != nil {
			log.Err(err).Str("func", "syncRowRepository.Collect").Str("owner", owner).Msg("failed to scan change")
			return CollectPage{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		if err := json.Unmarshal(payload, &c.Data); err != nil {
			log.Err(err).
				Str("func", "syncRowRepository.Collect").
				Str("table", table).
				Str("row_id", c.RowID).
				Msg("failed to decode stored payload")
			return CollectPage{}, fmt.Errorf("%w: %w", ErrEncodingPayload, err)
		}
		c.Table = models.Table(table)
		c.LastModifiedAt = c.LastModifiedAt.UTC()

		page.Changes = append(page.Changes, c)
		last = Cursor{ServerUpdatedAt: updatedAt.UTC(), Table: c.Table, RowID: c.RowID}
	}

	if err := rows.Err(); err != nil {
		log.Err(err).Str("func", "syncRowRepository.Collect").Str("owner", owner).Msg("error occurred during rows iteration")
		return CollectPage{}, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return page, nil
}
