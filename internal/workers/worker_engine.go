package workers

import (
	"context"

	"github.com/MKhiriev/go-outbox-sync/internal/service"
)

type engineWorker struct {
	engine service.ClientSyncEngine
}

// NewEngineWorker runs the engine's request loop as a [Worker].
func NewEngineWorker(engine service.ClientSyncEngine) Worker {
	return &engineWorker{engine: engine}
}

func (w *engineWorker) Run(ctx context.Context) error {
	return w.engine.Run(ctx)
}
