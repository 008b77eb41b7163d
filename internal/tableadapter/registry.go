package tableadapter

import (
	"fmt"
	"slices"
	"time"

	"github.com/MKhiriev/go-outbox-sync/models"
)

// Registry resolves adapters by table name.
type Registry struct {
	adapters map[models.Table]*Adapter
}

// NewRegistry indexes the given adapters by table.
func NewRegistry(adapters ...*Adapter) *Registry {
	r := &Registry{adapters: make(map[models.Table]*Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Table()] = a
	}
	return r
}

// Get returns the adapter of table or [ErrAdapterNotFound].
func (r *Registry) Get(table models.Table) (*Adapter, error) {
	a, ok := r.adapters[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAdapterNotFound, table)
	}
	return a, nil
}

// Tables returns the registered tables in sorted order.
func (r *Registry) Tables() []models.Table {
	tables := make([]models.Table, 0, len(r.adapters))
	for t := range r.adapters {
		tables = append(tables, t)
	}
	slices.Sort(tables)
	return tables
}

// Validate checks that every table in tables has an adapter.
func (r *Registry) Validate(tables []models.Table) error {
	for _, t := range tables {
		if _, err := r.Get(t); err != nil {
			return err
		}
	}
	return nil
}

// CheckColumns compares the adapter of table with the column list of the
// local table and reports any column present on one side only.
func (r *Registry) CheckColumns(table models.Table, localColumns []string) error {
	a, err := r.Get(table)
	if err != nil {
		return err
	}

	expected := a.LocalColumns()
	actual := slices.Clone(localColumns)
	slices.Sort(actual)

	if !slices.Equal(expected, actual) {
		return fmt.Errorf("%w: %s: adapter %v, table %v", ErrColumnMismatch, table, expected, actual)
	}
	return nil
}

// EncodeEntry turns a pending outbox entry into a wire change. The wire row
// always carries the row id, tombstone flag and timestamp of the entry.
func (r *Registry) EncodeEntry(e models.OutboxEntry) (models.SyncChange, error) {
	a, err := r.Get(e.Table)
	if err != nil {
		return models.SyncChange{}, err
	}

	data, err := a.ToWire(e.Data)
	if err != nil {
		return models.SyncChange{}, err
	}
	data[models.WireID] = e.RowID
	data[models.WireDeleted] = e.Deleted
	data[models.WireLastModifiedAt] = models.FormatTimestamp(e.LastModifiedAt)

	return models.SyncChange{
		Table:          e.Table,
		RowID:          e.RowID,
		Data:           data,
		Deleted:        e.Deleted,
		LastModifiedAt: e.LastModifiedAt.UTC(),
	}, nil
}

// DecodeChange turns a wire change into a local row. The change envelope
// takes precedence over the matching fields of its payload.
func (r *Registry) DecodeChange(c models.SyncChange) (models.LocalRow, error) {
	a, err := r.Get(c.Table)
	if err != nil {
		return nil, err
	}

	data := make(models.WireRow, len(c.Data)+3)
	for k, v := range c.Data {
		data[k] = v
	}
	data[models.WireID] = c.RowID
	data[models.WireDeleted] = c.Deleted
	data[models.WireLastModifiedAt] = models.FormatTimestamp(c.LastModifiedAt)

	return a.FromWire(data)
}

// DefaultRegistry returns the adapters of the flashcard tables.
func DefaultRegistry() *Registry {
	return NewRegistry(mustNew(decksAdapter()), mustNew(cardsAdapter()), mustNew(reviewLogsAdapter()))
}

func mustNew(a *Adapter, err error) *Adapter {
	if err != nil {
		panic(err)
	}
	return a
}

func decksAdapter() (*Adapter, error) {
	return New(models.TableDecks,
		Column{Local: "name", Wire: "name", Codec: Text},
		Column{Local: "description", Wire: "description", Codec: Text},
		Column{Local: "createdAt", Wire: "created_at", Codec: UnixMillisISO},
		Column{Local: "tags", Wire: "tags", Codec: JSONText},
		Column{Local: "archived", Wire: "archived", Codec: Bool},
	)
}

func cardsAdapter() (*Adapter, error) {
	return New(models.TableCards,
		Column{Local: "deckId", Wire: "deck_id", Codec: Text},
		Column{Local: "front", Wire: "front", Codec: Text},
		Column{Local: "back", Wire: "back", Codec: Text},
		Column{Local: "ease", Wire: "ease_factor", Codec: Real},
		Column{Local: "intervalDays", Wire: "interval_days", Codec: Integer},
		Column{Local: "dueAt", Wire: "due_at", Codec: UnixMillisISO},
		Column{Local: "suspended", Wire: "suspended", Codec: Bool},
		Column{Local: "mediaRefs", Wire: "media_refs", Codec: JSONText},
	)
}

func reviewLogsAdapter() (*Adapter, error) {
	return New(models.TableReviewLogs,
		Column{Local: "cardId", Wire: "card_id", Codec: Text},
		Column{Local: "rating", Wire: "rating", Codec: Integer},
		Column{Local: "reviewedAt", Wire: "reviewed_at", Codec: UnixMillisISO},
		Column{Local: "durationMs", Wire: "duration_ms", Codec: Integer},
	)
}

// MillisTime converts a local unix-millisecond column value to a time.
func MillisTime(v any) (time.Time, error) {
	ms, err := asInt(v)
	if err != nil {
		return time.Time{}, err
	}
	if ms == nil {
		return time.Time{}, fmt.Errorf("%w: missing timestamp", ErrInvalidValue)
	}
	return time.UnixMilli(ms.(int64)).UTC(), nil
}
