package store

import (
	"fmt"
	"slices"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-outbox-sync/models"
)

// sqlite builds queries with "?" placeholders, postgres with "$n".
var (
	sqlite   = sq.StatementBuilder.PlaceholderFormat(sq.Question)
	postgres = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
)

// checkTable guards every place where a table name is spliced into SQL.
func checkTable(table models.Table) error {
	if !slices.Contains(models.AllTables, table) {
		return fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	return nil
}

// quoteIdent quotes an identifier for SQLite and PostgreSQL.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// buildUpsertRowQuery builds an INSERT ... ON CONFLICT(id) DO UPDATE for a
// local row. Columns are emitted in sorted order so the statement text is
// stable for a given column set.
func buildUpsertRowQuery(table models.Table, row models.LocalRow) (string, []any, error) {
	cols := make([]string, 0, len(row))
	for c := range row {
		cols = append(cols, c)
	}
	slices.Sort(cols)

	quoted := make([]string, len(cols))
	values := make([]any, len(cols))
	updates := make([]string, 0, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
		values[i] = row[c]
		if c != models.ColumnID {
			updates = append(updates, fmt.Sprintf("%s = excluded.%s", quoted[i], quoted[i]))
		}
	}

	suffix := fmt.Sprintf("ON CONFLICT (%s) DO NOTHING", quoteIdent(models.ColumnID))
	if len(updates) > 0 {
		suffix = fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s", quoteIdent(models.ColumnID), strings.Join(updates, ", "))
	}

	query, args, err := sqlite.
		Insert(quoteIdent(string(table))).
		Columns(quoted...).
		Values(values...).
		Suffix(suffix).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildGetRowQuery(table models.Table, rowID string) (string, []any, error) {
	query, args, err := sqlite.
		Select("*").
		From(quoteIdent(string(table))).
		Where(sq.Eq{quoteIdent(models.ColumnID): rowID}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}
