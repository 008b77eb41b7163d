package service

import (
	"github.com/MKhiriev/go-outbox-sync/internal/adapter"
	"github.com/MKhiriev/go-outbox-sync/internal/config"
	"github.com/MKhiriev/go-outbox-sync/internal/logger"
	"github.com/MKhiriev/go-outbox-sync/internal/store"
	"github.com/MKhiriev/go-outbox-sync/internal/tableadapter"
	"github.com/MKhiriev/go-outbox-sync/internal/utils"
)

type ClientServices struct {
	SyncEngine   ClientSyncEngine
	WriteService ClientWriteService
}

// NewClientServices wires the engine and the write path for one identity.
// The write path requests a sync when the outbox reaches the configured
// threshold.
func NewClientServices(
	storages *store.ClientStorages,
	serverAdapter adapter.ServerAdapter,
	registry *tableadapter.Registry,
	cfg *config.ClientConfig,
	identity string,
	logger *logger.Logger,
) *ClientServices {
	engine := NewClientSyncEngine(storages, serverAdapter, registry, NewEngineConfig(cfg, identity), logger)

	return &ClientServices{
		SyncEngine: engine,
		WriteService: NewClientWriteService(
			storages,
			registry,
			utils.NewUUIDGenerator(),
			cfg.Workers.OutboxThreshold,
			engine,
			logger,
		),
	}
}
