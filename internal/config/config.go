// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"os"
	"time"
)

// StructuredConfig is the top-level configuration container shared by the
// sync client and the sync server. It is populated by merging values from
// environment variables, command-line flags and an optional JSON file.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds credentials, token parameters and the schema version.
	App App `envPrefix:"APP_"`

	// Storage holds the database connection settings. The client points it
	// at a SQLite file, the server at PostgreSQL.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds listen address and limits of the sync server.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds the remote endpoint used by the client worker.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Workers holds trigger and batching settings of the client engine.
	Workers Workers `envPrefix:"WORKERS_"`

	// Log holds log output settings.
	Log Log `envPrefix:"LOG_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Storage groups the configuration for the storage backend.
type Storage struct {
	DB DB `envPrefix:"DB_"`
}

// App holds credential and protocol settings.
type App struct {
	// Token is the bearer credential presented by the client on every call.
	// Env: APP_TOKEN
	Token string `env:"TOKEN"`

	// TokenSignKey is the secret used by the server to verify JWT tokens.
	// Env: APP_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the expected "iss" claim. Empty disables the check.
	// Env: APP_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// SchemaVersion is the version of the shared table layout. The server
	// rejects requests carrying a different value.
	// Env: APP_SCHEMA_VERSION
	SchemaVersion int `env:"SCHEMA_VERSION"`
}

// Server holds network and paging settings of the sync server.
type Server struct {
	// HTTPAddress is the listen address in "host:port" format.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds a single inbound request.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// MaxPageSize caps the number of changes returned per pull page.
	// Env: SERVER_MAX_PAGE_SIZE
	MaxPageSize int `env:"MAX_PAGE_SIZE"`

	// IssueToken, when set, makes the server print a token for this
	// identity and exit. Flag only.
	IssueToken string
}

// DB holds connection settings for the database backend.
type DB struct {
	// DSN is a SQLite file path on the client and a PostgreSQL connection
	// string on the server.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Adapter holds the remote endpoint used by the client.
type Adapter struct {
	// HTTPAddress is the base URL or host:port of the sync server.
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds one outbound sync request.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Workers holds the client engine settings.
type Workers struct {
	// SyncInterval is the period of the timer trigger.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`

	// ConnectivityInterval is the period of the health probe.
	// Env: WORKERS_CONNECTIVITY_INTERVAL
	ConnectivityInterval time.Duration `env:"CONNECTIVITY_INTERVAL"`

	// OutboxThreshold requests a cycle once this many entries are pending.
	// Env: WORKERS_OUTBOX_THRESHOLD
	OutboxThreshold int `env:"OUTBOX_THRESHOLD"`

	// BatchSize is the maximum number of outbox entries pushed per cycle.
	// Env: WORKERS_BATCH_SIZE
	BatchSize int `env:"BATCH_SIZE"`

	// PageSize is the page size requested when pulling.
	// Env: WORKERS_PAGE_SIZE
	PageSize int `env:"PAGE_SIZE"`

	// BackoffMin and BackoffMax bound the retry delay of a failing cycle.
	// Env: WORKERS_BACKOFF_MIN, WORKERS_BACKOFF_MAX
	BackoffMin time.Duration `env:"BACKOFF_MIN"`
	BackoffMax time.Duration `env:"BACKOFF_MAX"`

	// RunOnce makes the client run one cycle and exit.
	// Env: WORKERS_RUN_ONCE
	RunOnce bool `env:"RUN_ONCE"`
}

// Log holds log output settings.
type Log struct {
	// File is the client log file path. Empty means a "logs" file next to
	// the executable.
	// Env: LOG_FILE
	File string `env:"FILE"`
}

// GetStructuredConfig loads and merges the configuration from all available
// sources in the following priority order (last source wins for non-zero
// fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
func GetStructuredConfig() (*StructuredConfig, error) {
	return loadStructuredConfig(os.Args[1:])
}

func loadStructuredConfig(args []string) (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(args).
		withJSON().
		build()
}
