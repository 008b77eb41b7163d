package config

import (
	"fmt"
	"time"
)

// Server defaults applied when no source sets a value.
const (
	DefaultServerAddress = ":8080"
	DefaultMaxPageSize   = 1000
)

// ServerConfig is the sync server view of [StructuredConfig].
type ServerConfig struct {
	HTTPAddress    string
	RequestTimeout time.Duration
	MaxPageSize    int
	DSN            string
	TokenSignKey   string
	TokenIssuer    string
	SchemaVersion  int
	IssueToken     string
}

// GetServerConfig builds and validates the server config view from the
// merged structured configuration.
func GetServerConfig() (*ServerConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	return newServerConfig(cfg)
}

func newServerConfig(cfg *StructuredConfig) (*ServerConfig, error) {
	addr := cfg.Server.HTTPAddress
	if addr == "" {
		addr = DefaultServerAddress
	}

	serverCfg := &ServerConfig{
		HTTPAddress:    addr,
		RequestTimeout: orDuration(cfg.Server.RequestTimeout, DefaultRequestTimeout),
		MaxPageSize:    orInt(cfg.Server.MaxPageSize, DefaultMaxPageSize),
		DSN:            cfg.Storage.DB.DSN,
		TokenSignKey:   cfg.App.TokenSignKey,
		TokenIssuer:    cfg.App.TokenIssuer,
		SchemaVersion:  cfg.App.SchemaVersion,
		IssueToken:     cfg.Server.IssueToken,
	}

	return serverCfg, serverCfg.validate()
}
