package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-outbox-sync/internal/config"
	"github.com/MKhiriev/go-outbox-sync/internal/logger"
	"github.com/MKhiriev/go-outbox-sync/internal/store"
	"github.com/MKhiriev/go-outbox-sync/internal/validators"
	"github.com/MKhiriev/go-outbox-sync/models"
)

// syncService is the concrete implementation of SyncService on top of the
// central row store.
type syncService struct {
	rows      store.SyncRowRepository
	validator validators.Validator

	schemaVersion   int
	defaultPageSize int
	maxPageSize     int

	logger *logger.Logger
}

// NewSyncService constructs a SyncService. Page sizes requested by clients
// are clamped to cfg.MaxPageSize; requests without a hint get
// [config.DefaultPageSize].
func NewSyncService(rows store.SyncRowRepository, cfg *config.ServerConfig, logger *logger.Logger) SyncService {
	maxPageSize := cfg.MaxPageSize
	if maxPageSize <= 0 {
		maxPageSize = config.DefaultMaxPageSize
	}

	return &syncService{
		rows:            rows,
		validator:       validators.NewSyncRequestValidator(models.AllTables),
		schemaVersion:   cfg.SchemaVersion,
		defaultPageSize: min(config.DefaultPageSize, maxPageSize),
		maxPageSize:     maxPageSize,
		logger:          logger,
	}
}

// Sync implements SyncService.
//
// A first request reserves the owner's next stamp while applying its
// changes; the stamp pins the pull window (lastSyncAt, stamp]. Rows written by
// later requests carry later stamps and fall into the caller's next cycle.
func (s *syncService) Sync(ctx context.Context, owner string, req models.SyncRequest) (models.SyncResponse, error) {
	log := logger.FromContext(ctx)

	if owner == "" {
		return models.SyncResponse{}, ErrMissingIdentity
	}
	if req.SchemaVersion != s.schemaVersion {
		return models.SyncResponse{}, fmt.Errorf("%w: server %d, client %d", ErrSchemaMismatch, s.schemaVersion, req.SchemaVersion)
	}

	if err := s.validateRequest(ctx, req); err != nil {
		return models.SyncResponse{}, err
	}

	query := store.CollectQuery{
		Since: req.LastSyncAt,
		Limit: s.pageSize(req.PageSize),
	}
	var debug []string

	if req.IsContinuation() {
		cursor, err := store.DecodeCursor(req.PullCursor)
		if err != nil {
			return models.SyncResponse{}, fmt.Errorf("%w: %w", ErrInvalidCursor, err)
		}
		query.After = &cursor
		query.Until = req.SyncStartedAt.UTC()
		debug = append(debug, fmt.Sprintf("continuation after %s/%s", cursor.Table, cursor.RowID))
	} else {
		result, err := s.rows.Apply(ctx, owner, req.Changes)
		if err != nil {
			log.Err(err).
				Str("func", "syncService.Sync").
				Str("owner", owner).
				Int("changes", len(req.Changes)).
				Msg("failed to apply changes")
			return models.SyncResponse{}, fmt.Errorf("apply changes: %w", err)
		}
		query.Until = result.Stamp
		debug = append(debug, fmt.Sprintf("received=%d applied=%d ignored=%d duplicates=%d",
			len(req.Changes), result.Applied, result.Ignored, result.Duplicates))
	}

	page, err := s.rows.Collect(ctx, owner, query)
	if err != nil {
		log.Err(err).
			Str("func", "syncService.Sync").
			Str("owner", owner).
			Msg("failed to collect changes")
		return models.SyncResponse{}, fmt.Errorf("collect changes: %w", err)
	}

	resp := models.SyncResponse{
		Changes:  page.Changes,
		SyncedAt: query.Until,
		Debug:    append(debug, fmt.Sprintf("page=%d limit=%d", len(page.Changes), query.Limit)),
	}
	if page.Next != nil {
		until := query.Until
		resp.NextCursor = page.Next.Encode()
		resp.SyncStartedAt = &until
	}

	return resp, nil
}

func (s *syncService) pageSize(hint int) int {
	switch {
	case hint <= 0:
		return s.defaultPageSize
	case hint > s.maxPageSize:
		return s.maxPageSize
	default:
		return hint
	}
}

// validateRequest maps validator failures onto the errors the transport
// reports to clients.
func (s *syncService) validateRequest(ctx context.Context, req models.SyncRequest) error {
	err := s.validator.Validate(ctx, req)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, validators.ErrUnknownTable):
		return fmt.Errorf("%w: %w", ErrUnknownTable, err)
	default:
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
}
