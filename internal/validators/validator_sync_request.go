package validators

import (
	"context"
	"fmt"
	"slices"

	"github.com/MKhiriev/go-outbox-sync/models"
)

// Field name constants used to restrict validation to a subset of rules.
const (
	// FieldTable checks that the change targets a synced table.
	FieldTable = "table"

	// FieldRowID checks that the change names its row.
	FieldRowID = "row_id"

	// FieldLastModifiedAt checks that the change carries a modification time.
	FieldLastModifiedAt = "last_modified_at"

	// FieldPayloadID checks that an id inside the payload matches the row id.
	FieldPayloadID = "payload_id"

	// FieldChanges validates every change of a request and rejects two
	// changes for the same row.
	FieldChanges = "changes"

	// FieldContinuation checks the pagination fields of a request.
	FieldContinuation = "continuation"
)

// SyncRequestValidator implements the Validator interface for
// [models.SyncRequest] and [models.SyncChange].
type SyncRequestValidator struct {
	tables []models.Table
}

// NewSyncRequestValidator returns a validator accepting changes to tables.
func NewSyncRequestValidator(tables []models.Table) Validator {
	return &SyncRequestValidator{tables: tables}
}

func (v *SyncRequestValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.SyncRequest:
		return v.validateRequest(ctx, value, fields...)
	case *models.SyncRequest:
		return v.validateRequest(ctx, *value, fields...)

	case models.SyncChange:
		return v.validateChange(value, fields...)
	case *models.SyncChange:
		return v.validateChange(*value, fields...)

	default:
		return ErrUnsupportedType
	}
}

func (v *SyncRequestValidator) validateRequest(_ context.Context, req models.SyncRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldContinuation, FieldChanges}
	}

	for _, f := range fields {
		switch f {
		case FieldContinuation:
			if !req.IsContinuation() {
				continue
			}
			if len(req.Changes) > 0 {
				return ErrContinuationChanges
			}
			if req.SyncStartedAt == nil {
				return ErrContinuationStartedAt
			}
		case FieldChanges:
			seen := make(map[models.RowKey]struct{}, len(req.Changes))
			for i, c := range req.Changes {
				if err := v.validateChange(c); err != nil {
					return fmt.Errorf("change %d: %w", i, err)
				}
				if _, dup := seen[c.Key()]; dup {
					return fmt.Errorf("%w: %s/%s", ErrDuplicateChange, c.Table, c.RowID)
				}
				seen[c.Key()] = struct{}{}
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *SyncRequestValidator) validateChange(c models.SyncChange, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldTable, FieldRowID, FieldLastModifiedAt, FieldPayloadID}
	}

	for _, f := range fields {
		switch f {
		case FieldTable:
			if !slices.Contains(v.tables, c.Table) {
				return fmt.Errorf("%w: %q", ErrUnknownTable, c.Table)
			}
		case FieldRowID:
			if c.RowID == "" {
				return ErrEmptyRowID
			}
		case FieldLastModifiedAt:
			if c.LastModifiedAt.IsZero() {
				return fmt.Errorf("%w: %s/%s", ErrEmptyLastModifiedAt, c.Table, c.RowID)
			}
		case FieldPayloadID:
			if id, ok := c.Data[models.WireID]; ok && id != c.RowID {
				return fmt.Errorf("%w: %s/%s carries %v", ErrPayloadIDMismatch, c.Table, c.RowID, id)
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}
