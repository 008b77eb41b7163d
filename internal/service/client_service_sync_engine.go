package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/MKhiriev/go-outbox-sync/internal/adapter"
	"github.com/MKhiriev/go-outbox-sync/internal/config"
	"github.com/MKhiriev/go-outbox-sync/internal/logger"
	"github.com/MKhiriev/go-outbox-sync/internal/store"
	"github.com/MKhiriev/go-outbox-sync/internal/tableadapter"
	"github.com/MKhiriev/go-outbox-sync/models"
)

// transactor runs fn in one local transaction.
type transactor interface {
	WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// EngineConfig holds the per-identity settings of a [ClientSyncEngine].
type EngineConfig struct {
	// Identity namespaces the watermark. It is the subject of the bearer
	// credential.
	Identity      string
	SchemaVersion int
	BatchSize     int
	PageSize      int
	BackoffMin    time.Duration
	BackoffMax    time.Duration
}

// NewEngineConfig builds an [EngineConfig] from the client configuration.
func NewEngineConfig(cfg *config.ClientConfig, identity string) EngineConfig {
	return EngineConfig{
		Identity:      identity,
		SchemaVersion: cfg.App.SchemaVersion,
		BatchSize:     cfg.Workers.BatchSize,
		PageSize:      cfg.Workers.PageSize,
		BackoffMin:    cfg.Workers.BackoffMin,
		BackoffMax:    cfg.Workers.BackoffMax,
	}
}

type clientSyncEngine struct {
	db         transactor
	outbox     store.OutboxRepository
	rows       store.RowRepository
	watermarks store.WatermarkRepository
	registry   *tableadapter.Registry
	server     adapter.ServerAdapter

	cfg        EngineConfig
	newBackoff func() retry.Backoff

	// requests has capacity 1: a trigger arriving while one is pending is
	// dropped, which collapses bursts into one follow-up cycle.
	requests chan struct{}
	cycleMu  sync.Mutex

	statusMu sync.RWMutex
	status   models.SyncStatus

	now    func() time.Time
	logger *logger.Logger
}

// NewClientSyncEngine wires an engine around the client storages. The engine
// is idle until Run or RunCycle is called.
func NewClientSyncEngine(
	storages *store.ClientStorages,
	server adapter.ServerAdapter,
	registry *tableadapter.Registry,
	cfg EngineConfig,
	logger *logger.Logger,
) ClientSyncEngine {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = config.DefaultBatchSize
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = config.DefaultPageSize
	}
	if cfg.BackoffMin <= 0 {
		cfg.BackoffMin = config.DefaultBackoffMin
	}
	if cfg.BackoffMax < cfg.BackoffMin {
		cfg.BackoffMax = cfg.BackoffMin
	}

	e := &clientSyncEngine{
		db:         storages.DB,
		outbox:     storages.Outbox,
		rows:       storages.Rows,
		watermarks: storages.Watermarks,
		registry:   registry,
		server:     server,
		cfg:        cfg,
		requests:   make(chan struct{}, 1),
		status:     models.SyncStatus{State: models.StateIdle},
		now:        time.Now,
		logger:     logger,
	}
	e.newBackoff = func() retry.Backoff {
		b := retry.NewExponential(e.cfg.BackoffMin)
		b = retry.WithJitterPercent(20, b)
		return retry.WithCappedDuration(e.cfg.BackoffMax, b)
	}

	return e
}

// RequestSync implements [SyncRequester]. It never blocks.
func (e *clientSyncEngine) RequestSync() {
	select {
	case e.requests <- struct{}{}:
	default:
	}
}

// Run implements [ClientSyncEngine].
func (e *clientSyncEngine) Run(ctx context.Context) error {
	ctx = e.logger.WithContext(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-e.requests:
		}

		err := e.RunCycle(ctx)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, ErrLocalFault):
			return err
		}
	}
}

// RunCycle implements [ClientSyncEngine].
func (e *clientSyncEngine) RunCycle(ctx context.Context) error {
	e.cycleMu.Lock()
	defer e.cycleMu.Unlock()

	ctx = e.logger.WithContext(ctx)
	log := logger.FromContext(ctx)

	var (
		attempt int
		stats   cycleStats
	)
	err := retry.Do(ctx, e.newBackoff(), func(ctx context.Context) error {
		attempt++
		e.beginAttempt(attempt)

		var err error
		stats, err = e.cycle(ctx)
		if err == nil {
			return nil
		}

		kind := classifyFailure(err)
		if kind == FailureTransient && ctx.Err() == nil {
			log.Warn().Err(err).
				Str("func", "clientSyncEngine.RunCycle").
				Int("attempt", attempt).
				Msg("sync cycle failed, retrying")
			e.setRetrying(attempt, err)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return e.finishFailed(ctx, attempt, err)
	}

	e.finishSucceeded(attempt, stats)
	log.Info().
		Str("func", "clientSyncEngine.RunCycle").
		Int("attempt", attempt).
		Int("pushed", stats.pushed).
		Int("pulled", stats.pulled).
		Int("applied", stats.applied).
		Msg("sync cycle completed")
	return nil
}

// Status implements [ClientSyncEngine].
func (e *clientSyncEngine) Status() models.SyncStatus {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()

	s := e.status
	s.Debug = append([]string(nil), e.status.Debug...)
	if e.status.LastSyncAt != nil {
		at := *e.status.LastSyncAt
		s.LastSyncAt = &at
	}
	return s
}

type cycleStats struct {
	pushed    int
	pulled    int
	applied   int
	ignored   int
	watermark time.Time
	debug     []string
}

// cycle runs one attempt: push the pending batch, then pull and apply every
// page, then advance the watermark. The outbox is only touched after the
// server confirmed the push, the watermark only after the last page.
func (e *clientSyncEngine) cycle(ctx context.Context) (cycleStats, error) {
	var stats cycleStats

	e.setState(models.StatePushing)

	watermark, err := e.watermarks.Get(ctx, e.cfg.Identity)
	if err != nil {
		return stats, fmt.Errorf("%w: read watermark: %w", ErrLocalFault, err)
	}

	entries, err := e.outbox.Drain(ctx, e.cfg.BatchSize)
	if err != nil {
		return stats, fmt.Errorf("%w: drain outbox: %w", ErrLocalFault, err)
	}

	changes := make([]models.SyncChange, 0, len(entries))
	for _, entry := range entries {
		change, err := e.registry.EncodeEntry(entry)
		if err != nil {
			return stats, fmt.Errorf("%w: encode %s/%s: %w", ErrLocalFault, entry.Table, entry.RowID, err)
		}
		changes = append(changes, change)
	}

	resp, err := e.server.Send(ctx, models.SyncRequest{
		Changes:       changes,
		LastSyncAt:    watermark,
		SchemaVersion: e.cfg.SchemaVersion,
		PageSize:      e.cfg.PageSize,
	})
	if err != nil {
		return stats, err
	}

	if len(entries) > 0 {
		if err = e.outbox.Acknowledge(ctx, entries); err != nil {
			return stats, fmt.Errorf("%w: acknowledge outbox: %w", ErrLocalFault, err)
		}
	}
	stats.pushed = len(entries)

	e.setState(models.StatePulling)
	for {
		e.setState(models.StateApplying)
		applied, ignored, err := e.applyPage(ctx, resp.Changes)
		if err != nil {
			return stats, err
		}
		stats.pulled += len(resp.Changes)
		stats.applied += applied
		stats.ignored += ignored
		stats.debug = resp.Debug

		if !resp.HasMore() {
			break
		}
		if resp.SyncStartedAt == nil {
			return stats, fmt.Errorf("%w: %w: continuation without syncStartedAt", ErrCycleRejected, adapter.ErrMalformedResponse)
		}

		e.setState(models.StatePulling)
		resp, err = e.server.Send(ctx, models.SyncRequest{
			LastSyncAt:    watermark,
			SchemaVersion: e.cfg.SchemaVersion,
			PullCursor:    resp.NextCursor,
			SyncStartedAt: resp.SyncStartedAt,
			PageSize:      e.cfg.PageSize,
		})
		if err != nil {
			return stats, err
		}
	}

	if err = e.watermarks.Set(ctx, e.cfg.Identity, resp.SyncedAt); err != nil {
		return stats, fmt.Errorf("%w: advance watermark: %w", ErrLocalFault, err)
	}
	stats.watermark = resp.SyncedAt.UTC()

	return stats, nil
}

func (e *clientSyncEngine) setState(state models.SyncState) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.status.State = state
	e.status.UpdatedAt = e.now()
}

func (e *clientSyncEngine) beginAttempt(attempt int) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.status.Attempt = attempt
	e.status.UpdatedAt = e.now()
}

func (e *clientSyncEngine) setRetrying(attempt int, err error) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.status.State = models.StateError
	e.status.Outcome = models.OutcomeRetrying
	e.status.Reason = err.Error()
	e.status.Attempt = attempt
	e.status.UpdatedAt = e.now()
}

func (e *clientSyncEngine) finishSucceeded(attempt int, stats cycleStats) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()

	watermark := stats.watermark
	e.status = models.SyncStatus{
		State:      models.StateIdle,
		Outcome:    models.OutcomeSucceeded,
		Attempt:    attempt,
		LastSyncAt: &watermark,
		UpdatedAt:  e.now(),
		Pushed:     stats.pushed,
		Pulled:     stats.pulled,
		Applied:    stats.applied,
		Ignored:    stats.ignored,
		Debug:      stats.debug,
	}
}

// finishFailed records a terminal outcome and wraps err with its class so
// callers can tell a rejection from a local fault.
func (e *clientSyncEngine) finishFailed(ctx context.Context, attempt int, err error) error {
	log := logger.FromContext(ctx)

	kind := classifyFailure(err)
	switch {
	case ctx.Err() != nil:
		// cancelled while waiting for the next attempt
	case kind == FailureLocal && !errors.Is(err, ErrLocalFault):
		err = fmt.Errorf("%w: %w", ErrLocalFault, err)
	case kind == FailureRejected && !errors.Is(err, ErrCycleRejected):
		err = fmt.Errorf("%w: %w", ErrCycleRejected, err)
	}

	log.Err(err).
		Str("func", "clientSyncEngine.RunCycle").
		Str("kind", kind.String()).
		Int("attempt", attempt).
		Msg("sync cycle failed")

	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.status.State = models.StateIdle
	e.status.Outcome = models.OutcomeFailed
	e.status.Reason = err.Error()
	e.status.Attempt = attempt
	e.status.UpdatedAt = e.now()

	return err
}
