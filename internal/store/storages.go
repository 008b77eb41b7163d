package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-outbox-sync/internal/logger"
)

// Storages groups the server-side repositories.
type Storages struct {
	DB       *DB
	SyncRows SyncRowRepository
}

// NewStorages connects to PostgreSQL, bootstraps the schema and wires the
// repositories.
func NewStorages(ctx context.Context, dsn string, logger *logger.Logger) (*Storages, error) {
	db, err := NewConnectPostgres(ctx, dsn, logger)
	if err != nil {
		return nil, fmt.Errorf("postgres connection error: %w", err)
	}

	if err := db.MigrateServer(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &Storages{
		DB:       db,
		SyncRows: NewSyncRowRepository(db, logger),
	}, nil
}
