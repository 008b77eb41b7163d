package models

import "time"

// OutboxEntry is a durable record that a local mutation is pending delivery.
// There is at most one entry per (Table, RowID); later edits overwrite it.
type OutboxEntry struct {
	Table          Table
	RowID          string
	Data           LocalRow
	Deleted        bool
	LastModifiedAt time.Time
}

// Key returns the (table, rowId) identity of the entry.
func (e OutboxEntry) Key() RowKey {
	return RowKey{Table: e.Table, RowID: e.RowID}
}
