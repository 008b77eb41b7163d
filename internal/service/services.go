package service

import (
	"github.com/MKhiriev/go-outbox-sync/internal/config"
	"github.com/MKhiriev/go-outbox-sync/internal/logger"
	"github.com/MKhiriev/go-outbox-sync/internal/store"
)

type Services struct {
	AuthService AuthService
	SyncService SyncService
}

func NewServices(storages *store.Storages, cfg *config.ServerConfig, logger *logger.Logger) *Services {
	return &Services{
		AuthService: NewAuthService(cfg, logger),
		SyncService: NewSyncService(storages.SyncRows, cfg, logger),
	}
}
