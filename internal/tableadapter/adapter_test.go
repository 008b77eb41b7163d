package tableadapter

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/MKhiriev/go-outbox-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows() map[models.Table]models.LocalRow {
	return map[models.Table]models.LocalRow{
		models.TableDecks: {
			"id": "deck-1", "lastModifiedAt": int64(1767225600123), "deleted": int64(0),
			"syncVersion": int64(3), "deviceId": "device-a",
			"name": "Kanji N5", "description": nil, "createdAt": int64(1767225000000),
			"tags": `["jp","n5"]`, "archived": int64(1),
		},
		models.TableCards: {
			"id": "card-1", "lastModifiedAt": int64(1767225600999), "deleted": int64(1),
			"syncVersion": int64(1), "deviceId": "device-b",
			"deckId": "deck-1", "front": "水", "back": "water", "ease": 2.5,
			"intervalDays": int64(12), "dueAt": int64(1768000000000), "suspended": int64(0),
			"mediaRefs": `{"audio":"mizu.mp3","count":2}`,
		},
		models.TableReviewLogs: {
			"id": "log-1", "lastModifiedAt": int64(1767225601000), "deleted": int64(0),
			"syncVersion": int64(1), "deviceId": "device-a",
			"cardId": "card-1", "rating": int64(4), "reviewedAt": int64(1767225601000), "durationMs": int64(5300),
		},
	}
}

// TestRoundTrip checks fromWire(toWire(row)) == row for every table, also
// after the wire row went through JSON like it does on the network.
func TestRoundTrip(t *testing.T) {
	registry := DefaultRegistry()

	for table, row := range sampleRows() {
		t.Run(table.String(), func(t *testing.T) {
			a, err := registry.Get(table)
			require.NoError(t, err)

			wire, err := a.ToWire(row)
			require.NoError(t, err)

			back, err := a.FromWire(wire)
			require.NoError(t, err)
			assert.Equal(t, row, back)

			raw, err := json.Marshal(wire)
			require.NoError(t, err)
			var decoded models.WireRow
			require.NoError(t, json.Unmarshal(raw, &decoded))

			back, err = a.FromWire(decoded)
			require.NoError(t, err)
			assert.Equal(t, row, back)
		})
	}
}

// TestRoundTrip_NonCompactJSONText checks that formatted JSON text survives
// the round trip with the same meaning and settles on one canonical text.
func TestRoundTrip_NonCompactJSONText(t *testing.T) {
	a, err := DefaultRegistry().Get(models.TableCards)
	require.NoError(t, err)

	const formatted = "{\n  \"count\": 2,\n  \"audio\": \"mizu.mp3\",\n  \"tags\": [ 1, 2.5 ]\n}  \n"

	wire, err := a.ToWire(models.LocalRow{"mediaRefs": formatted})
	require.NoError(t, err)

	back, err := a.FromWire(wire)
	require.NoError(t, err)
	text, ok := back["mediaRefs"].(string)
	require.True(t, ok)
	assert.JSONEq(t, formatted, text)
	assert.Equal(t, `{"audio":"mizu.mp3","count":2,"tags":[1,2.5]}`, text)

	wire, err = a.ToWire(back)
	require.NoError(t, err)
	again, err := a.FromWire(wire)
	require.NoError(t, err)
	assert.Equal(t, back, again)
}

func TestToWire_Shape(t *testing.T) {
	a, err := DefaultRegistry().Get(models.TableDecks)
	require.NoError(t, err)

	wire, err := a.ToWire(sampleRows()[models.TableDecks])
	require.NoError(t, err)

	assert.Equal(t, "2026-01-01T00:00:00.123000000Z", wire["last_modified_at"])
	assert.Equal(t, false, wire["deleted"])
	assert.Equal(t, true, wire["archived"])
	assert.Equal(t, int64(3), wire["sync_version"])
	assert.Equal(t, []any{"jp", "n5"}, wire["tags"])
	assert.Nil(t, wire["description"])
	assert.NotContains(t, wire, "lastModifiedAt")
}

func TestConversions_Errors(t *testing.T) {
	a, err := DefaultRegistry().Get(models.TableCards)
	require.NoError(t, err)

	tests := []struct {
		name    string
		local   models.LocalRow
		wire    models.WireRow
		wantErr error
	}{
		{name: "unknown local column", local: models.LocalRow{"color": "red"}, wantErr: ErrUnknownColumn},
		{name: "unknown wire column", wire: models.WireRow{"colour": "red"}, wantErr: ErrUnknownColumn},
		{name: "flag out of range", local: models.LocalRow{"suspended": int64(2)}, wantErr: ErrInvalidValue},
		{name: "text column gets number", local: models.LocalRow{"front": 12}, wantErr: ErrInvalidValue},
		{name: "bad json text", local: models.LocalRow{"mediaRefs": "{"}, wantErr: ErrInvalidValue},
		{name: "json text with trailing data", local: models.LocalRow{"mediaRefs": `["a"] junk`}, wantErr: ErrInvalidValue},
		{name: "json text with trailing bracket", local: models.LocalRow{"mediaRefs": `["a"]]`}, wantErr: ErrInvalidValue},
		{name: "two json values", local: models.LocalRow{"mediaRefs": `{} {}`}, wantErr: ErrInvalidValue},
		{name: "integer above int64", wire: models.WireRow{"interval_days": 1e19}, wantErr: ErrInvalidValue},
		{name: "integer below int64", wire: models.WireRow{"interval_days": -1e19}, wantErr: ErrInvalidValue},
		{name: "integer at 2^63", wire: models.WireRow{"interval_days": 9223372036854775808.0}, wantErr: ErrInvalidValue},
		{name: "bad wire timestamp", wire: models.WireRow{"due_at": "tomorrow"}, wantErr: ErrInvalidValue},
		{name: "fractional integer", wire: models.WireRow{"interval_days": 1.5}, wantErr: ErrInvalidValue},
		{name: "wire flag not bool", wire: models.WireRow{"suspended": "yes"}, wantErr: ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.local != nil {
				_, err = a.ToWire(tt.local)
			} else {
				_, err = a.FromWire(tt.wire)
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNew_RejectsBadMappings(t *testing.T) {
	_, err := New("t", Column{Local: "id", Wire: "other", Codec: Text})
	assert.Error(t, err)

	_, err = New("t", Column{Local: "a", Wire: "id", Codec: Text})
	assert.Error(t, err)

	_, err = New("t", Column{Local: "a", Wire: "a"})
	assert.Error(t, err)
}

func TestRegistry_ValidateAndCheckColumns(t *testing.T) {
	registry := DefaultRegistry()

	require.NoError(t, registry.Validate(models.AllTables))
	assert.ErrorIs(t, registry.Validate([]models.Table{"notes"}), ErrAdapterNotFound)
	assert.Equal(t, []models.Table{models.TableCards, models.TableDecks, models.TableReviewLogs}, registry.Tables())

	cols := []string{"reviewedAt", "id", "lastModifiedAt", "deleted", "syncVersion", "deviceId", "cardId", "rating", "durationMs"}
	assert.NoError(t, registry.CheckColumns(models.TableReviewLogs, cols))
	assert.ErrorIs(t, registry.CheckColumns(models.TableReviewLogs, cols[1:]), ErrColumnMismatch)
	assert.ErrorIs(t, registry.CheckColumns(models.TableReviewLogs, append(cols, "extra")), ErrColumnMismatch)
}

func TestRegistry_EncodeDecode(t *testing.T) {
	registry := DefaultRegistry()
	ts := time.UnixMilli(1767225600123).UTC()

	entry := models.OutboxEntry{
		Table:          models.TableReviewLogs,
		RowID:          "log-1",
		Data:           sampleRows()[models.TableReviewLogs],
		LastModifiedAt: ts,
	}

	change, err := registry.EncodeEntry(entry)
	require.NoError(t, err)
	assert.Equal(t, "log-1", change.RowID)
	assert.Equal(t, ts, change.LastModifiedAt)
	assert.Equal(t, "device-a", change.DeviceID())
	assert.Equal(t, models.FormatTimestamp(ts), change.Data["last_modified_at"])

	local, err := registry.DecodeChange(change)
	require.NoError(t, err)
	assert.Equal(t, ts.UnixMilli(), local["lastModifiedAt"])
	assert.Equal(t, int64(0), local["deleted"])
	assert.Equal(t, "card-1", local["cardId"])

	_, err = registry.EncodeEntry(models.OutboxEntry{Table: "notes"})
	assert.ErrorIs(t, err, ErrAdapterNotFound)
}

func TestMillisTime(t *testing.T) {
	ts, err := MillisTime(int64(1767225600123))
	require.NoError(t, err)
	assert.Equal(t, time.UnixMilli(1767225600123).UTC(), ts)

	_, err = MillisTime(nil)
	assert.ErrorIs(t, err, ErrInvalidValue)
}
