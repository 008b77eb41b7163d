package tableadapter

import "errors"

var (
	// ErrAdapterNotFound is a configuration fault: a synced table has no adapter.
	ErrAdapterNotFound = errors.New("no adapter registered for table")
	// ErrUnknownColumn is returned when a row carries a column the adapter does not map.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrInvalidValue is returned when a value does not fit its column codec.
	ErrInvalidValue = errors.New("invalid column value")
	// ErrColumnMismatch is returned at startup when the local table layout and
	// the adapter disagree.
	ErrColumnMismatch = errors.New("adapter does not match local table columns")
)
