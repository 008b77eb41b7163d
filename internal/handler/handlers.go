package handler

import (
	"github.com/MKhiriev/go-outbox-sync/internal/config"
	"github.com/MKhiriev/go-outbox-sync/internal/handler/http"
	"github.com/MKhiriev/go-outbox-sync/internal/logger"
	"github.com/MKhiriev/go-outbox-sync/internal/service"
	"github.com/MKhiriev/go-outbox-sync/models"
)

type Handlers struct {
	HTTP *http.Handler
}

func NewHandlers(services *service.Services, buildInfo models.AppBuildInfo, cfg *config.ServerConfig, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	if cfg.HTTPAddress == "" {
		return nil, errNoHandlersAreCreated
	}

	return &Handlers{HTTP: http.NewHandler(services, buildInfo, logger)}, nil
}
