package client

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-outbox-sync/internal/adapter"
	"github.com/MKhiriev/go-outbox-sync/internal/config"
	"github.com/MKhiriev/go-outbox-sync/internal/logger"
	"github.com/MKhiriev/go-outbox-sync/internal/service"
	"github.com/MKhiriev/go-outbox-sync/internal/store"
	"github.com/MKhiriev/go-outbox-sync/internal/tableadapter"
	"github.com/MKhiriev/go-outbox-sync/internal/utils"
	"github.com/MKhiriev/go-outbox-sync/internal/workers"
	"github.com/MKhiriev/go-outbox-sync/models"
)

type App struct {
	storages *store.ClientStorages
	services *service.ClientServices
	workers  *workers.Workers
	runOnce  bool

	logger *logger.Logger
}

// NewApp opens the local store and wires the engine for the identity named
// by the configured token.
func NewApp(ctx context.Context, cfg *config.ClientConfig, logger *logger.Logger) (Client, error) {
	identity, err := utils.ParseIdentityFromJWT(cfg.App.Token)
	if err != nil {
		return nil, fmt.Errorf("read identity from token: %w", err)
	}

	storages, err := store.NewClientStorages(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	registry := tableadapter.DefaultRegistry()
	if err = checkSchema(ctx, registry, storages.Rows); err != nil {
		_ = storages.Close()
		return nil, err
	}

	serverAdapter, err := adapter.NewHTTPServerAdapter(cfg.Adapter, adapter.StaticToken(cfg.App.Token), logger)
	if err != nil {
		_ = storages.Close()
		return nil, fmt.Errorf("create server adapter: %w", err)
	}

	services := service.NewClientServices(storages, serverAdapter, registry, cfg, identity, logger)

	logger.Info().Str("identity", identity).Msg("client app created")

	return &App{
		storages: storages,
		services: services,
		workers:  workers.NewClientWorkers(services.SyncEngine, serverAdapter, cfg.Workers, logger),
		runOnce:  cfg.Workers.RunOnce,
		logger:   logger,
	}, nil
}

// Run either performs a single cycle or runs the workers until ctx ends.
func (a *App) Run(ctx context.Context) error {
	if !a.runOnce {
		return a.workers.Run(ctx)
	}

	err := a.services.SyncEngine.RunCycle(ctx)
	status := a.services.SyncEngine.Status()
	a.logger.Info().
		Str("outcome", string(status.Outcome)).
		Int("pushed", status.Pushed).
		Int("pulled", status.Pulled).
		Int("applied", status.Applied).
		Msg("single sync cycle finished")
	return err
}

func (a *App) Close() error {
	return a.storages.Close()
}

// checkSchema fails fast when an adapter and its local table disagree, so a
// bad build never writes half-mapped rows.
func checkSchema(ctx context.Context, registry *tableadapter.Registry, rows store.RowRepository) error {
	if err := registry.Validate(models.AllTables); err != nil {
		return fmt.Errorf("%w: %w", service.ErrLocalFault, err)
	}

	for _, table := range models.AllTables {
		columns, err := rows.Columns(ctx, table)
		if err != nil {
			return fmt.Errorf("%w: columns of %s: %w", service.ErrLocalFault, table, err)
		}
		if err = registry.CheckColumns(table, columns); err != nil {
			return fmt.Errorf("%w: %w", service.ErrLocalFault, err)
		}
	}
	return nil
}
