package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MKhiriev/go-outbox-sync/internal/logger"
	"github.com/MKhiriev/go-outbox-sync/internal/tableadapter"
	"github.com/MKhiriev/go-outbox-sync/models"
)

type outboxRepository struct {
	*DB
	logger *logger.Logger
}

func NewOutboxRepository(db *DB, logger *logger.Logger) OutboxRepository {
	return &outboxRepository{
		DB:     db,
		logger: logger,
	}
}

func (o *outboxRepository) Record(ctx context.Context, q Querier, table models.Table, rowID string, data models.LocalRow, deleted bool) error {
	log := logger.FromContext(ctx)

	if err := checkTable(table); err != nil {
		return err
	}
	if rowID == "" {
		return fmt.Errorf("%w: empty row id", ErrInvalidRow)
	}

	lastModifiedAt, err := tableadapter.MillisTime(data[models.ColumnLastModifiedAt])
	if err != nil {
		return fmt.Errorf("%w: %s/%s: %w", ErrInvalidRow, table, rowID, err)
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncodingPayload, err)
	}

	_, err = q.ExecContext(ctx, recordOutboxEntry, string(table), rowID, string(payload), deleted, lastModifiedAt.UnixMilli())
	if err != nil {
		log.Err(err).
			Str("func", "outboxRepository.Record").
			Str("table", string(table)).
			Str("row_id", rowID).
			Msg("failed to record outbox entry")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (o *outboxRepository) Drain(ctx context.Context, limit int) ([]models.OutboxEntry, error) {
	log := logger.FromContext(ctx)

	if limit <= 0 {
		return nil, nil
	}

	rows, err := o.DB.QueryContext(ctx, drainOutbox, limit)
	if err != nil {
		log.Err(err).Str("func", "outboxRepository.Drain").Int("limit", limit).Msg("failed to query outbox")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	entries := make([]models.OutboxEntry, 0, limit)
	for rows.Next() {
		var (
			entry   models.OutboxEntry
			table   string
			payload string
			millis  int64
		)
		if err := rows.Scan(&table, &entry.RowID, &payload, &entry.Deleted, &millis); err != nil {
			log.Err(err).Str("func", "outboxRepository.Drain").Msg("failed to scan outbox entry")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}

		entry.Table = models.Table(table)
		entry.LastModifiedAt = time.UnixMilli(millis).UTC()
		if entry.Data, err = decodeLocalRow(payload); err != nil {
			log.Err(err).
				Str("func", "outboxRepository.Drain").
				Str("table", table).
				Str("row_id", entry.RowID).
				Msg("failed to decode outbox payload")
			return nil, err
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		log.Err(err).Str("func", "outboxRepository.Drain").Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return entries, nil
}

func (o *outboxRepository) Acknowledge(ctx context.Context, entries []models.OutboxEntry) error {
	log := logger.FromContext(ctx)

	if len(entries) == 0 {
		return nil
	}

	return o.WithTx(ctx, func(tx *sql.Tx) error {
		for _, e := range entries {
			_, err := tx.ExecContext(ctx, acknowledgeOutboxEntry, string(e.Table), e.RowID, e.LastModifiedAt.UnixMilli())
			if err != nil {
				log.Err(err).
					Str("func", "outboxRepository.Acknowledge").
					Str("table", string(e.Table)).
					Str("row_id", e.RowID).
					Msg("failed to remove outbox entry")
				return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
			}
		}
		return nil
	})
}

func (o *outboxRepository) DiscardSuperseded(ctx context.Context, q Querier, table models.Table, rowID string, upTo time.Time) error {
	log := logger.FromContext(ctx)

	_, err := q.ExecContext(ctx, discardSupersededOutboxEntry, string(table), rowID, upTo.UnixMilli())
	if err != nil {
		log.Err(err).
			Str("func", "outboxRepository.DiscardSuperseded").
			Str("table", string(table)).
			Str("row_id", rowID).
			Msg("failed to discard superseded outbox entry")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (o *outboxRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := o.DB.QueryRowContext(ctx, countOutbox).Scan(&n); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "outboxRepository.Count").Msg("failed to count outbox entries")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return n, nil
}

// decodeLocalRow restores integral numbers as int64 so integer columns
// survive the round trip through the outbox without turning into floats.
func decodeLocalRow(payload string) (models.LocalRow, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
	dec.UseNumber()

	var row models.LocalRow
	if err := dec.Decode(&row); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodingPayload, err)
	}

	for k, v := range row {
		n, ok := v.(json.Number)
		if !ok {
			continue
		}
		if i, err := n.Int64(); err == nil {
			row[k] = i
			continue
		}
		f, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrEncodingPayload, k, err)
		}
		row[k] = f
	}
	return row, nil
}
