package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-outbox-sync/internal/config"
	"github.com/MKhiriev/go-outbox-sync/internal/handler"
	"github.com/MKhiriev/go-outbox-sync/internal/logger"
	"github.com/MKhiriev/go-outbox-sync/internal/service"
	"github.com/MKhiriev/go-outbox-sync/models"
)

func newTestHandlers(t *testing.T, cfg *config.ServerConfig) *handler.Handlers {
	t.Helper()
	h, err := handler.NewHandlers(&service.Services{}, models.AppBuildInfo{}, cfg, logger.Nop())
	require.NoError(t, err)
	return h
}

func TestNewServer(t *testing.T) {
	cfg := &config.ServerConfig{HTTPAddress: "127.0.0.1:0", RequestTimeout: time.Second}

	s, err := NewServer(newTestHandlers(t, cfg), cfg, logger.Nop())
	require.NoError(t, err)
	assert.NotNil(t, s)

	_, err = NewServer(nil, cfg, logger.Nop())
	assert.ErrorIs(t, err, errNoServersAreCreated)

	_, err = NewServer(&handler.Handlers{}, cfg, logger.Nop())
	assert.ErrorIs(t, err, errNoServersAreCreated)
}

func TestServer_StopsOnCancel(t *testing.T) {
	cfg := &config.ServerConfig{HTTPAddress: "127.0.0.1:0", RequestTimeout: time.Second}
	s, err := NewServer(newTestHandlers(t, cfg), cfg, logger.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.(*server).run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		t.Fatal("server did not stop")
	}
}
