package main

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-outbox-sync/internal/config"
	"github.com/MKhiriev/go-outbox-sync/internal/handler"
	"github.com/MKhiriev/go-outbox-sync/internal/logger"
	"github.com/MKhiriev/go-outbox-sync/internal/server"
	"github.com/MKhiriev/go-outbox-sync/internal/service"
	"github.com/MKhiriev/go-outbox-sync/internal/store"
	"github.com/MKhiriev/go-outbox-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("sync-server")
	cfg, err := config.GetServerConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	ctx := log.WithContext(context.Background())

	if cfg.IssueToken != "" {
		token, err := service.NewAuthService(cfg, log).CreateToken(ctx, cfg.IssueToken)
		if err != nil {
			log.Fatal().Err(err).Msg("error issuing token")
		}
		fmt.Println(token.SignedString)
		return
	}

	storages, err := store.NewStorages(ctx, cfg.DSN, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer storages.DB.Close()

	services := service.NewServices(storages, cfg, log)

	handlers, err := handler.NewHandlers(services, models.NewAppBuildInfo(buildVersion, buildDate, buildCommit), cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
