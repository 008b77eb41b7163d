package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-outbox-sync/internal/config"
	"github.com/MKhiriev/go-outbox-sync/internal/logger"
	"github.com/MKhiriev/go-outbox-sync/internal/utils"
)

// ClientStorages groups all client-side repositories around one SQLite
// connection so that a row write and its outbox record can share a
// transaction.
type ClientStorages struct {
	DB         *DB
	Outbox     OutboxRepository
	Rows       RowRepository
	Watermarks WatermarkRepository
	Device     DeviceRepository
}

// NewClientStorages opens the SQLite file named by cfg.DB.DSN, creating it
// when missing, bootstraps the schema and wires the repositories.
func NewClientStorages(ctx context.Context, cfg config.ClientStorage, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(ctx, cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.MigrateClient(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return NewClientStoragesFromDB(db, logger), nil
}

// NewClientStoragesFromDB wires the repositories around an already migrated connection.
func NewClientStoragesFromDB(db *DB, logger *logger.Logger) *ClientStorages {
	return &ClientStorages{
		DB:         db,
		Outbox:     NewOutboxRepository(db, logger),
		Rows:       NewRowRepository(db, logger),
		Watermarks: NewWatermarkRepository(db, logger),
		Device:     NewDeviceRepository(db, utils.NewUUIDGenerator(), logger),
	}
}

// Close releases the underlying connection.
func (s *ClientStorages) Close() error {
	return s.DB.Close()
}
