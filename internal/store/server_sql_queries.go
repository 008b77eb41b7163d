package store

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

const (
	// reserveOwnerStamp locks the owner's clock row for the rest of the
	// transaction and returns a stamp strictly greater than any stamp issued
	// to that owner before.
	reserveOwnerStamp = `INSERT INTO sync_owner_clock (owner_id, last_stamp)
		VALUES ($1, clock_timestamp())
		ON CONFLICT (owner_id) DO UPDATE SET
			last_stamp = GREATEST(clock_timestamp(), sync_owner_clock.last_stamp + interval '1 microsecond')
		RETURNING last_stamp;`

	selectRowVersionForUpdate = `SELECT last_modified_at, device_id
		FROM sync_rows
		WHERE owner_id = $1 AND table_name = $2 AND row_id = $3
		FOR UPDATE;`

	upsertSyncRow = `INSERT INTO sync_rows (
			owner_id, table_name, row_id, data, deleted, last_modified_at, device_id, server_updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (owner_id, table_name, row_id) DO UPDATE SET
			data = excluded.data,
			deleted = excluded.deleted,
			last_modified_at = excluded.last_modified_at,
			device_id = excluded.device_id,
			server_updated_at = excluded.server_updated_at;`
)

// buildCollectQuery selects limit+1 rows so the caller can tell whether
// another page follows.
func buildCollectQuery(owner string, q CollectQuery) (string, []any, error) {
	builder := postgres.
		Select("table_name", "row_id", "data", "deleted", "last_modified_at", "server_updated_at").
		From("sync_rows").
		Where(sq.Eq{"owner_id": owner}).
		Where(sq.LtOrEq{"server_updated_at": q.Until})

	if q.Since != nil {
		builder = builder.Where(sq.Gt{"server_updated_at": *q.Since})
	}
	if q.After != nil {
		builder = builder.Where(
			sq.Expr("(server_updated_at, table_name, row_id) > (?, ?, ?)",
				q.After.ServerUpdatedAt, string(q.After.Table), q.After.RowID),
		)
	}

	query, args, err := builder.
		OrderBy("server_updated_at", "table_name", "row_id").
		Limit(uint64(q.Limit) + 1).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}
