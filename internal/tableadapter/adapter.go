// Package tableadapter converts rows between the embedded store's local
// shape and the central store's wire shape, one adapter per synced table.
package tableadapter

import (
	"fmt"
	"sort"

	"github.com/MKhiriev/go-outbox-sync/models"
)

// syncColumns are carried by every synced table.
var syncColumns = []Column{
	{Local: models.ColumnID, Wire: models.WireID, Codec: Text},
	{Local: models.ColumnLastModifiedAt, Wire: models.WireLastModifiedAt, Codec: UnixMillisISO},
	{Local: models.ColumnDeleted, Wire: models.WireDeleted, Codec: Bool},
	{Local: models.ColumnSyncVersion, Wire: models.WireSyncVersion, Codec: Integer},
	{Local: models.ColumnDeviceID, Wire: models.WireDeviceID, Codec: Text},
}

// Adapter is the bidirectional mapping of one table. Conversions are pure:
// they never touch storage or the clock.
type Adapter struct {
	table   models.Table
	byLocal map[string]Column
	byWire  map[string]Column
}

// New builds an adapter for table from its domain columns. The sync
// bookkeeping columns are added automatically.
func New(table models.Table, columns ...Column) (*Adapter, error) {
	a := &Adapter{
		table:   table,
		byLocal: make(map[string]Column, len(columns)+len(syncColumns)),
		byWire:  make(map[string]Column, len(columns)+len(syncColumns)),
	}

	for _, c := range append(append([]Column{}, syncColumns...), columns...) {
		if c.Local == "" || c.Wire == "" || c.Codec == nil {
			return nil, fmt.Errorf("table %s: incomplete column mapping %q/%q", table, c.Local, c.Wire)
		}
		if _, dup := a.byLocal[c.Local]; dup {
			return nil, fmt.Errorf("table %s: duplicate local column %q", table, c.Local)
		}
		if _, dup := a.byWire[c.Wire]; dup {
			return nil, fmt.Errorf("table %s: duplicate wire column %q", table, c.Wire)
		}
		a.byLocal[c.Local] = c
		a.byWire[c.Wire] = c
	}

	return a, nil
}

// Table returns the table this adapter serves.
func (a *Adapter) Table() models.Table {
	return a.table
}

// LocalColumns returns the local column names in sorted order.
func (a *Adapter) LocalColumns() []string {
	cols := make([]string, 0, len(a.byLocal))
	for name := range a.byLocal {
		cols = append(cols, name)
	}
	sort.Strings(cols)
	return cols
}

// ToWire converts a local row. Columns absent from row stay absent.
func (a *Adapter) ToWire(row models.LocalRow) (models.WireRow, error) {
	out := make(models.WireRow, len(row))
	for name, value := range row {
		col, ok := a.byLocal[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, a.table, name)
		}
		converted, err := col.Codec.ToWire(value)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", a.table, name, err)
		}
		out[col.Wire] = converted
	}
	return out, nil
}

// FromWire converts a wire row. Columns absent from row stay absent.
func (a *Adapter) FromWire(row models.WireRow) (models.LocalRow, error) {
	out := make(models.LocalRow, len(row))
	for name, value := range row {
		col, ok := a.byWire[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, a.table, name)
		}
		converted, err := col.Codec.FromWire(value)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", a.table, name, err)
		}
		out[col.Local] = converted
	}
	return out, nil
}
