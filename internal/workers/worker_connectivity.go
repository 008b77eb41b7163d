package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-outbox-sync/internal/config"
	"github.com/MKhiriev/go-outbox-sync/internal/logger"
)

type connectivityWorker struct {
	pinger    Pinger
	requester SyncRequester
	interval  time.Duration

	online bool

	logger *logger.Logger
}

// NewConnectivityWorker probes the server every interval and requests a sync
// whenever the server becomes reachable after being unreachable. The worker
// starts in the offline state, so the first successful probe also counts.
func NewConnectivityWorker(pinger Pinger, requester SyncRequester, interval time.Duration, logger *logger.Logger) Worker {
	if interval <= 0 {
		interval = config.DefaultConnectivityInterval
	}
	return &connectivityWorker{pinger: pinger, requester: requester, interval: interval, logger: logger}
}

func (w *connectivityWorker) Run(ctx context.Context) error {
	t := time.NewTicker(w.interval)
	defer t.Stop()

	for {
		w.probe(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}

func (w *connectivityWorker) probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, w.interval)
	defer cancel()

	err := w.pinger.Ping(ctx)
	switch {
	case err == nil && !w.online:
		w.online = true
		w.logger.Info().Str("func", "connectivityWorker.probe").Msg("sync server reachable")
		w.requester.RequestSync()
	case err != nil && w.online:
		w.online = false
		w.logger.Warn().Err(err).Str("func", "connectivityWorker.probe").Msg("sync server unreachable")
	}
}
