package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrUnknownTable is returned when a table name is not one of the synced
	// tables. Table names are interpolated into SQL, so they are checked
	// against an allow-list first.
	ErrUnknownTable = errors.New("unknown table")

	// ErrUnknownColumn is returned when a row carries a column the local
	// table does not have.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrInvalidRow is returned when a row lacks its id or timestamp.
	ErrInvalidRow = errors.New("invalid row")

	// ErrInvalidCursor is returned when a pull cursor cannot be decoded.
	ErrInvalidCursor = errors.New("invalid pull cursor")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrScanningRow is returned when scanning a single result row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when iterating a multi-row result fails.
	ErrScanningRows = errors.New("failed to scan rows")

	// ErrEncodingPayload is returned when a row payload cannot be encoded to
	// or decoded from JSON.
	ErrEncodingPayload = errors.New("failed to encode row payload")
)
