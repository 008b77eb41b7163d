package store

const (
	recordOutboxEntry = `INSERT INTO sync_outbox (table_name, row_id, data, deleted, last_modified_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (table_name, row_id) DO UPDATE SET
			data = excluded.data,
			deleted = excluded.deleted,
			last_modified_at = excluded.last_modified_at;`

	drainOutbox = `SELECT table_name, row_id, data, deleted, last_modified_at
		FROM sync_outbox
		ORDER BY last_modified_at, seq
		LIMIT ?;`

	acknowledgeOutboxEntry = `DELETE FROM sync_outbox
		WHERE table_name = ? AND row_id = ? AND last_modified_at = ?;`

	discardSupersededOutboxEntry = `DELETE FROM sync_outbox
		WHERE table_name = ? AND row_id = ? AND last_modified_at <= ?;`

	countOutbox = `SELECT COUNT(*) FROM sync_outbox;`

	getWatermark = `SELECT last_sync_at FROM sync_watermarks WHERE identity = ?;`

	setWatermark = `INSERT INTO sync_watermarks (identity, last_sync_at) VALUES (?, ?)
		ON CONFLICT (identity) DO UPDATE SET last_sync_at = excluded.last_sync_at;`

	getDeviceID = `SELECT device_id FROM device_info WHERE id = 1;`

	insertDeviceID = `INSERT INTO device_info (id, device_id, created_at) VALUES (1, ?, ?)
		ON CONFLICT (id) DO NOTHING;`
)
