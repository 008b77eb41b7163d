// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"fmt"
	"time"
)

// Table is the logical name of a synced table. It is shared by the embedded
// client store and the central store.
type Table string

// Synced tables of the flashcard application.
const (
	TableDecks      Table = "decks"
	TableCards      Table = "cards"
	TableReviewLogs Table = "review_logs"
)

// AllTables lists every table that participates in sync, in dependency order.
var AllTables = []Table{TableDecks, TableCards, TableReviewLogs}

func (t Table) String() string {
	return string(t)
}

// LocalRow is a row in the embedded store's shape, keyed by local column name.
type LocalRow map[string]any

// WireRow is a row in the central store's shape, keyed by wire column name.
type WireRow map[string]any

// Sync bookkeeping columns carried by every synced table (local naming).
const (
	ColumnID             = "id"
	ColumnLastModifiedAt = "lastModifiedAt"
	ColumnDeleted        = "deleted"
	ColumnSyncVersion    = "syncVersion"
	ColumnDeviceID       = "deviceId"
)

// Sync bookkeeping columns carried by every synced table (wire naming).
const (
	WireID             = "id"
	WireLastModifiedAt = "last_modified_at"
	WireDeleted        = "deleted"
	WireSyncVersion    = "sync_version"
	WireDeviceID       = "device_id"
)

// TimestampLayout is the fixed-width UTC layout used for timestamps stored as
// text. Unlike time.RFC3339Nano it keeps trailing zeros, so stored values sort
// lexicographically in time order.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z"

// FormatTimestamp renders t in [TimestampLayout].
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses any RFC 3339 timestamp, including values written with
// [TimestampLayout].
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}
