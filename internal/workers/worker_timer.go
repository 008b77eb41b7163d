package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-outbox-sync/internal/config"
)

type timerWorker struct {
	requester SyncRequester
	interval  time.Duration
}

// NewTimerWorker requests a sync right away and then every interval. A zero
// or negative interval falls back to [config.DefaultSyncInterval].
func NewTimerWorker(requester SyncRequester, interval time.Duration) Worker {
	if interval <= 0 {
		interval = config.DefaultSyncInterval
	}
	return &timerWorker{requester: requester, interval: interval}
}

func (w *timerWorker) Run(ctx context.Context) error {
	t := time.NewTicker(w.interval)
	defer t.Stop()

	w.requester.RequestSync()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			w.requester.RequestSync()
		}
	}
}
