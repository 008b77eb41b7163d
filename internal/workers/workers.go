package workers

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-outbox-sync/internal/config"
	"github.com/MKhiriev/go-outbox-sync/internal/logger"
	"github.com/MKhiriev/go-outbox-sync/internal/service"
)

type Workers struct {
	workers []Worker
	logger  *logger.Logger
}

func NewWorkers(logger *logger.Logger, workers ...Worker) *Workers {
	return &Workers{workers: workers, logger: logger}
}

// NewClientWorkers assembles the engine loop with its timer and connectivity
// triggers.
func NewClientWorkers(engine service.ClientSyncEngine, pinger Pinger, cfg config.ClientWorkers, logger *logger.Logger) *Workers {
	return NewWorkers(logger,
		NewEngineWorker(engine),
		NewTimerWorker(engine, cfg.SyncInterval),
		NewConnectivityWorker(pinger, engine, cfg.ConnectivityInterval, logger),
	)
}

// Run starts every worker and blocks until all of them have stopped. The
// first failure cancels the others and is returned.
func (w *Workers) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, worker := range w.workers {
		g.Go(func() error {
			return worker.Run(ctx)
		})
	}

	err := g.Wait()
	if err != nil && w.logger != nil {
		w.logger.Err(err).Str("func", "Workers.Run").Msg("worker stopped with error")
	}
	return err
}
