package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrUnknownTable          = errors.New("unknown table")
	ErrEmptyRowID            = errors.New("rowId is required")
	ErrEmptyLastModifiedAt   = errors.New("lastModifiedAt is required")
	ErrPayloadIDMismatch     = errors.New("payload id differs from rowId")
	ErrDuplicateChange       = errors.New("duplicate change for row")
	ErrContinuationChanges   = errors.New("continuation request carries changes")
	ErrContinuationStartedAt = errors.New("continuation request without syncStartedAt")
)
