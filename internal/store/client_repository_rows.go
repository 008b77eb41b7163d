package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-outbox-sync/internal/logger"
	"github.com/MKhiriev/go-outbox-sync/models"
)

type rowRepository struct {
	*DB
	logger *logger.Logger

	mu      sync.RWMutex
	columns map[models.Table][]string
}

func NewRowRepository(db *DB, logger *logger.Logger) RowRepository {
	return &rowRepository{
		DB:      db,
		logger:  logger,
		columns: make(map[models.Table][]string),
	}
}

// Get reads one row by id. The second result is false when the row does not exist.
func (r *rowRepository) Get(ctx context.Context, q Querier, table models.Table, rowID string) (models.LocalRow, bool, error) {
	log := logger.FromContext(ctx)

	if err := checkTable(table); err != nil {
		return nil, false, err
	}

	query, args, err := buildGetRowQuery(table, rowID)
	if err != nil {
		return nil, false, err
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "rowRepository.Get").
			Str("table", string(table)).
			Str("row_id", rowID).
			Msg("failed to query row")
		return nil, false, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, false, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		return nil, false, nil
	}

	row, err := scanLocalRow(rows)
	if err != nil {
		log.Err(err).
			Str("func", "rowRepository.Get").
			Str("table", string(table)).
			Str("row_id", rowID).
			Msg("failed to scan row")
		return nil, false, err
	}

	return row, true, nil
}

func (r *rowRepository) Upsert(ctx context.Context, q Querier, table models.Table, row models.LocalRow) error {
	log := logger.FromContext(ctx)

	if err := checkTable(table); err != nil {
		return err
	}
	if id, _ := row[models.ColumnID].(string); id == "" {
		return fmt.Errorf("%w: %s row without id", ErrInvalidRow, table)
	}

	columns, err := r.tableColumns(ctx, q, table)
	if err != nil {
		return err
	}
	known := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		known[c] = struct{}{}
	}
	for c := range row {
		if _, ok := known[c]; !ok {
			return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, c)
		}
	}

	query, args, err := buildUpsertRowQuery(table, row)
	if err != nil {
		return err
	}

	if _, err = q.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "rowRepository.Upsert").
			Str("table", string(table)).
			Any("row_id", row[models.ColumnID]).
			Msg("failed to upsert row")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// Columns lists the columns of a local table as reported by SQLite.
func (r *rowRepository) Columns(ctx context.Context, table models.Table) ([]string, error) {
	return r.tableColumns(ctx, r.DB, table)
}

// tableColumns caches the column list; the schema only changes through
// migrations, which run before any repository is used.
func (r *rowRepository) tableColumns(ctx context.Context, q Querier, table models.Table) ([]string, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}

	r.mu.RLock()
	cached, ok := r.columns[table]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	rows, err := q.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, string(table))
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "rowRepository.Columns").
			Str("table", string(table)).
			Msg("failed to read table info")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: %q has no columns", ErrUnknownTable, table)
	}

	r.mu.Lock()
	r.columns[table] = columns
	r.mu.Unlock()

	return columns, nil
}

// scanLocalRow reads the current row into a column map. Text arrives from
// the driver as []byte or string; it is always returned as string.
func scanLocalRow(rows *sql.Rows) (models.LocalRow, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	row := make(models.LocalRow, len(cols))
	for i, c := range cols {
		if b, ok := values[i].([]byte); ok {
			row[c] = string(b)
			continue
		}
		row[c] = values[i]
	}
	return row, nil
}
