// Package resolver implements the last-writer-wins rule shared by the
// client apply step and the server apply step.
package resolver

import (
	"time"
)

// Outcome is the result of comparing an incoming version against the stored one.
type Outcome int

const (
	// IncomingWins means the incoming change replaces the stored row.
	IncomingWins Outcome = iota
	// StoredWins means the incoming change is older and is discarded.
	StoredWins
	// Duplicate means both versions carry the same timestamp and origin
	// device; the incoming change is dropped without effect.
	Duplicate
)

func (o Outcome) String() string {
	switch o {
	case IncomingWins:
		return "incoming_wins"
	case StoredWins:
		return "stored_wins"
	case Duplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// Version is the conflict-resolution key of a row. Tombstones carry a
// version like any other row.
type Version struct {
	LastModifiedAt time.Time
	DeviceID       string
}

// Resolve decides between incoming and stored. A nil stored version means
// the row does not exist yet.
//
// The newer timestamp wins. On equal timestamps the lexicographically
// greater device id wins, so every replica picks the same survivor.
func Resolve(incoming Version, stored *Version) Outcome {
	if stored == nil {
		return IncomingWins
	}

	in := incoming.LastModifiedAt.UTC()
	st := stored.LastModifiedAt.UTC()

	switch {
	case in.After(st):
		return IncomingWins
	case in.Before(st):
		return StoredWins
	}

	switch {
	case incoming.DeviceID > stored.DeviceID:
		return IncomingWins
	case incoming.DeviceID < stored.DeviceID:
		return StoredWins
	default:
		return Duplicate
	}
}
