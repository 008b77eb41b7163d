package config

import (
	"fmt"
	"time"
)

// Client defaults applied when no source sets a value.
const (
	DefaultRequestTimeout       = 15 * time.Second
	DefaultSyncInterval         = 5 * time.Minute
	DefaultConnectivityInterval = 30 * time.Second
	DefaultOutboxThreshold      = 50
	DefaultBatchSize            = 200
	DefaultPageSize             = 500
	DefaultBackoffMin           = time.Second
	DefaultBackoffMax           = time.Minute
)

// ClientApp holds client credential and protocol settings.
type ClientApp struct {
	// Token is the bearer credential sent with every sync request.
	Token string
	// SchemaVersion is sent with every request and checked by the server.
	SchemaVersion int
}

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	HTTPAddress    string
	RequestTimeout time.Duration
}

// ClientDB contains local database connection settings for the client.
type ClientDB struct {
	// DSN is the SQLite file path.
	DSN string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	DB ClientDB
}

// ClientWorkers contains trigger, batching and retry settings.
type ClientWorkers struct {
	SyncInterval         time.Duration
	ConnectivityInterval time.Duration
	OutboxThreshold      int
	BatchSize            int
	PageSize             int
	BackoffMin           time.Duration
	BackoffMax           time.Duration
	RunOnce              bool
}

// ClientLog contains client log output settings.
type ClientLog struct {
	File string
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	App     ClientApp
	Adapter ClientAdapter
	Storage ClientStorage
	Workers ClientWorkers
	Log     ClientLog
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration.
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	return newClientConfig(cfg)
}

func newClientConfig(cfg *StructuredConfig) (*ClientConfig, error) {
	clientCfg := &ClientConfig{
		App: ClientApp{
			Token:         cfg.App.Token,
			SchemaVersion: cfg.App.SchemaVersion,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: orDuration(cfg.Adapter.RequestTimeout, DefaultRequestTimeout),
		},
		Storage: ClientStorage{
			DB: ClientDB{DSN: cfg.Storage.DB.DSN},
		},
		Workers: ClientWorkers{
			SyncInterval:         orDuration(cfg.Workers.SyncInterval, DefaultSyncInterval),
			ConnectivityInterval: orDuration(cfg.Workers.ConnectivityInterval, DefaultConnectivityInterval),
			OutboxThreshold:      orInt(cfg.Workers.OutboxThreshold, DefaultOutboxThreshold),
			BatchSize:            orInt(cfg.Workers.BatchSize, DefaultBatchSize),
			PageSize:             orInt(cfg.Workers.PageSize, DefaultPageSize),
			BackoffMin:           orDuration(cfg.Workers.BackoffMin, DefaultBackoffMin),
			BackoffMax:           orDuration(cfg.Workers.BackoffMax, DefaultBackoffMax),
			RunOnce:              cfg.Workers.RunOnce,
		},
		Log: ClientLog{File: cfg.Log.File},
	}

	return clientCfg, clientCfg.validate()
}

func orDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func orInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
