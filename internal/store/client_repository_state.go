package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-outbox-sync/internal/logger"
	"github.com/MKhiriev/go-outbox-sync/models"
)

type watermarkRepository struct {
	*DB
	logger *logger.Logger
}

func NewWatermarkRepository(db *DB, logger *logger.Logger) WatermarkRepository {
	return &watermarkRepository{
		DB:     db,
		logger: logger,
	}
}

// Get returns nil when identity has never completed a pull.
func (w *watermarkRepository) Get(ctx context.Context, identity string) (*time.Time, error) {
	log := logger.FromContext(ctx)

	var raw string
	err := w.DB.QueryRowContext(ctx, getWatermark, identity).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Err(err).Str("func", "watermarkRepository.Get").Str("identity", identity).Msg("failed to read watermark")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	at, err := models.ParseTimestamp(raw)
	if err != nil {
		log.Err(err).Str("func", "watermarkRepository.Get").Str("identity", identity).Msg("stored watermark is corrupt")
		return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return &at, nil
}

func (w *watermarkRepository) Set(ctx context.Context, identity string, at time.Time) error {
	if _, err := w.DB.ExecContext(ctx, setWatermark, identity, models.FormatTimestamp(at)); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "watermarkRepository.Set").
			Str("identity", identity).
			Time("last_sync_at", at).
			Msg("failed to store watermark")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

// IDGenerator produces new device identifiers.
type IDGenerator interface {
	Generate() string
}

type deviceRepository struct {
	*DB
	generator IDGenerator
	logger    *logger.Logger
}

func NewDeviceRepository(db *DB, generator IDGenerator, logger *logger.Logger) DeviceRepository {
	return &deviceRepository{
		DB:        db,
		generator: generator,
		logger:    logger,
	}
}

// DeviceID returns the persisted device id, creating it on first use.
func (d *deviceRepository) DeviceID(ctx context.Context) (string, error) {
	log := logger.FromContext(ctx)

	var id string
	err := d.DB.QueryRowContext(ctx, getDeviceID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		log.Err(err).Str("func", "deviceRepository.DeviceID").Msg("failed to read device id")
		return "", fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	if _, err = d.DB.ExecContext(ctx, insertDeviceID, d.generator.Generate(), time.Now().UnixMilli()); err != nil {
		log.Err(err).Str("func", "deviceRepository.DeviceID").Msg("failed to store device id")
		return "", fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	// re-read so a concurrent first start settles on one id
	if err = d.DB.QueryRowContext(ctx, getDeviceID).Scan(&id); err != nil {
		return "", fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	log.Info().Str("func", "deviceRepository.DeviceID").Str("device_id", id).Msg("device id created")

	return id, nil
}
