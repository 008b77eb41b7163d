package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON_Success(t *testing.T) {
	// Arrange
	p := filepath.Join(t.TempDir(), "config.json")

	// Durations in JSON must be strings accepted by time.ParseDuration, or nanoseconds.
	jsonBody := `{
		"app": {"token": "bearer", "token_sign_key": "jwt_secret", "token_issuer": "test_issuer", "schema_version": 4},
		"server": {"http_address": "localhost:8080", "request_timeout": "30s", "max_page_size": 900},
		"adapter": {"http_address": "http://localhost:8080", "request_timeout": 5000000000},
		"workers": {
			"sync_interval": "10m",
			"connectivity_interval": "20s",
			"outbox_threshold": 10,
			"batch_size": 20,
			"page_size": 30,
			"backoff_min": "500ms",
			"backoff_max": "45s"
		},
		"storage": {"db": {"dsn": "/var/lib/sync/client.db"}},
		"log": {"file": "/var/log/sync.log"}
	}`
	require.NoError(t, os.WriteFile(p, []byte(jsonBody), 0o600))

	// Act
	cfg, err := parseJSON(p)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "bearer", cfg.App.Token)
	assert.Equal(t, "jwt_secret", cfg.App.TokenSignKey)
	assert.Equal(t, "test_issuer", cfg.App.TokenIssuer)
	assert.Equal(t, 4, cfg.App.SchemaVersion)

	assert.Equal(t, "localhost:8080", cfg.Server.HTTPAddress)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 900, cfg.Server.MaxPageSize)

	assert.Equal(t, "http://localhost:8080", cfg.Adapter.HTTPAddress)
	assert.Equal(t, 5*time.Second, cfg.Adapter.RequestTimeout)

	assert.Equal(t, 10*time.Minute, cfg.Workers.SyncInterval)
	assert.Equal(t, 20*time.Second, cfg.Workers.ConnectivityInterval)
	assert.Equal(t, 10, cfg.Workers.OutboxThreshold)
	assert.Equal(t, 20, cfg.Workers.BatchSize)
	assert.Equal(t, 30, cfg.Workers.PageSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Workers.BackoffMin)
	assert.Equal(t, 45*time.Second, cfg.Workers.BackoffMax)

	assert.Equal(t, "/var/lib/sync/client.db", cfg.Storage.DB.DSN)
	assert.Equal(t, "/var/log/sync.log", cfg.Log.File)
	assert.Empty(t, cfg.JSONFilePath)
}

func TestParseJSON_MissingFile(t *testing.T) {
	_, err := parseJSON(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading a json file")
}

func TestParseJSON_Malformed(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"workers": {"sync_interval": "whenever"}}`), 0o600))

	_, err := parseJSON(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error decoding json configs")
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := Duration(90 * time.Second).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(b))
}
