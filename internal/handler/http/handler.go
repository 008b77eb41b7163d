package http

import (
	"github.com/MKhiriev/go-outbox-sync/internal/logger"
	"github.com/MKhiriev/go-outbox-sync/internal/service"
	"github.com/MKhiriev/go-outbox-sync/models"
)

type Handler struct {
	services  *service.Services
	buildInfo models.AppBuildInfo

	logger *logger.Logger
}

func NewHandler(services *service.Services, buildInfo models.AppBuildInfo, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services:  services,
		buildInfo: buildInfo,
		logger:    logger,
	}
}
