// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// SyncChange is one mutation to one row of one table as it travels on the
// wire. Data always carries the full current row (not a diff) in the
// central store's column naming.
type SyncChange struct {
	// Table is the logical table the row belongs to.
	Table Table `json:"table"`

	// RowID is the stable identifier of the row within Table.
	RowID string `json:"rowId"`

	// Data is the full wire-shaped row payload.
	Data WireRow `json:"data"`

	// Deleted marks a tombstone. Tombstones are never physically removed
	// so that the deletion can propagate to every device.
	Deleted bool `json:"deleted"`

	// LastModifiedAt is the writer-assigned mutation time and the
	// conflict-resolution key.
	LastModifiedAt time.Time `json:"lastModifiedAt"`
}

// DeviceID returns the origin device identifier carried in the row payload,
// or an empty string when the payload does not contain one.
func (c SyncChange) DeviceID() string {
	if c.Data == nil {
		return ""
	}
	if v, ok := c.Data[WireDeviceID].(string); ok {
		return v
	}
	return ""
}

// Key returns the (table, rowId) identity of the change.
func (c SyncChange) Key() RowKey {
	return RowKey{Table: c.Table, RowID: c.RowID}
}

// RowKey identifies a single row across all synced tables.
type RowKey struct {
	Table Table
	RowID string
}
