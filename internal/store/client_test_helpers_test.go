package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-outbox-sync/internal/config"
	"github.com/MKhiriev/go-outbox-sync/internal/logger"
	"github.com/MKhiriev/go-outbox-sync/models"
)

func newTestClientStorages(t *testing.T) *ClientStorages {
	t.Helper()

	storages, err := NewClientStorages(context.Background(), config.ClientStorage{
		DB: config.ClientDB{DSN: filepath.Join(t.TempDir(), "client.db")},
	}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = storages.Close() })

	return storages
}

func deckRow(id string, ms int64, name string) models.LocalRow {
	return models.LocalRow{
		"id":             id,
		"lastModifiedAt": ms,
		"deleted":        int64(0),
		"syncVersion":    int64(1),
		"deviceId":       "device-a",
		"name":           name,
		"archived":       int64(0),
	}
}

func millis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
