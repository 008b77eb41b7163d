package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-outbox-sync/internal/logger"
	"github.com/MKhiriev/go-outbox-sync/internal/mock"
	"github.com/MKhiriev/go-outbox-sync/internal/tableadapter"
	"github.com/MKhiriev/go-outbox-sync/models"
)

type countingRequester struct{ n atomic.Int32 }

func (c *countingRequester) RequestSync() { c.n.Add(1) }

func newTestWriter(t *testing.T, threshold int, trigger SyncRequester) (*clientWriteService, *testDevice) {
	t.Helper()
	d := newTestDevice(t, newTestServer(newMemSyncRows()), owner, 100)
	w := NewClientWriteService(d.storages, tableadapter.DefaultRegistry(), staticIDs{}, threshold, trigger, logger.Nop()).(*clientWriteService)
	return w, d
}

func TestWriteService_SaveStampsSyncColumns(t *testing.T) {
	ctx := context.Background()
	w, d := newTestWriter(t, 0, nil)
	w.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }

	saved, err := w.Save(ctx, models.TableDecks, models.LocalRow{"name": "German"})
	require.NoError(t, err)

	deviceID, err := d.storages.Device.DeviceID(ctx)
	require.NoError(t, err)

	assert.Equal(t, "generated-id", saved[models.ColumnID])
	assert.Equal(t, int64(1_700_000_000_000), saved[models.ColumnLastModifiedAt])
	assert.Equal(t, int64(1), saved[models.ColumnSyncVersion])
	assert.Equal(t, int64(0), saved[models.ColumnDeleted])
	assert.Equal(t, deviceID, saved[models.ColumnDeviceID])

	row := d.row(t, models.TableDecks, "generated-id")
	assert.Equal(t, "German", row["name"])
	assert.Equal(t, deviceID, row[models.ColumnDeviceID])

	entries, err := d.storages.Outbox.Drain(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, time.UnixMilli(1_700_000_000_000).UTC(), entries[0].LastModifiedAt.UTC())
	assert.False(t, entries[0].Deleted)
}

func TestWriteService_TimestampsNeverGoBackwards(t *testing.T) {
	ctx := context.Background()
	w, d := newTestWriter(t, 0, nil)

	clock := []int64{5_000, 4_000, 5_001}
	w.now = func() time.Time {
		ms := clock[0]
		clock = clock[1:]
		return time.UnixMilli(ms)
	}

	var stamps []int64
	for _, name := range []string{"v1", "v2", "v3"} {
		saved, err := w.Save(ctx, models.TableDecks, models.LocalRow{"id": "deck-1", "name": name})
		require.NoError(t, err)
		stamps = append(stamps, saved[models.ColumnLastModifiedAt].(int64))
	}

	assert.Equal(t, []int64{5_000, 5_001, 5_002}, stamps)

	row := d.row(t, models.TableDecks, "deck-1")
	assert.Equal(t, int64(3), row[models.ColumnSyncVersion])
	assert.Equal(t, "v3", row["name"])
	assert.Equal(t, 1, d.outboxSize(t), "one pending entry per row")
}

func TestWriteService_DeleteRecordsFullTombstone(t *testing.T) {
	ctx := context.Background()
	w, d := newTestWriter(t, 0, nil)

	_, err := w.Save(ctx, models.TableCards, models.LocalRow{"id": "card-1", "front": "uno", "back": "one"})
	require.NoError(t, err)

	require.NoError(t, w.Delete(ctx, models.TableCards, "card-1"))

	row := d.row(t, models.TableCards, "card-1")
	assert.Equal(t, int64(1), row[models.ColumnDeleted])
	assert.Equal(t, "uno", row["front"])

	entries, err := d.storages.Outbox.Drain(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Deleted)
	assert.Equal(t, "uno", entries[0].Data["front"])
	assert.Equal(t, "one", entries[0].Data["back"])
}

func TestWriteService_Errors(t *testing.T) {
	ctx := context.Background()
	w, _ := newTestWriter(t, 0, nil)

	tests := []struct {
		name    string
		call    func() error
		wantErr error
	}{
		{
			name: "delete missing row",
			call: func() error {
				return w.Delete(ctx, models.TableDecks, "nope")
			},
			wantErr: ErrRowNotFound,
		},
		{
			name: "delete without id",
			call: func() error {
				return w.Delete(ctx, models.TableDecks, "")
			},
			wantErr: ErrInvalidRow,
		},
		{
			name: "non-string id",
			call: func() error {
				_, err := w.Save(ctx, models.TableDecks, models.LocalRow{"id": 42})
				return err
			},
			wantErr: ErrInvalidRow,
		},
		{
			name: "tags not json",
			call: func() error {
				_, err := w.Save(ctx, models.TableDecks, models.LocalRow{"id": "deck-1", "tags": "not json"})
				return err
			},
			wantErr: ErrInvalidRow,
		},
		{
			name: "boolean flag out of range",
			call: func() error {
				_, err := w.Save(ctx, models.TableDecks, models.LocalRow{"id": "deck-2", "archived": int64(2)})
				return err
			},
			wantErr: ErrInvalidRow,
		},
		{
			name: "rating not a number",
			call: func() error {
				_, err := w.Save(ctx, models.TableReviewLogs, models.LocalRow{"id": "log-1", "rating": "five"})
				return err
			},
			wantErr: ErrInvalidRow,
		},
		{
			name: "unknown table",
			call: func() error {
				_, err := w.Save(ctx, "notes", models.LocalRow{"id": "n-1"})
				return err
			},
			wantErr: tableadapter.ErrAdapterNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.call(), tt.wantErr)
		})
	}
}

func TestWriteService_InvalidRowDoesNotBlockSync(t *testing.T) {
	ctx := context.Background()
	w, d := newTestWriter(t, 0, nil)

	_, err := w.Save(ctx, models.TableDecks, models.LocalRow{"id": "good", "name": "German"})
	require.NoError(t, err)

	_, err = w.Save(ctx, models.TableDecks, models.LocalRow{"id": "bad", "tags": "not json"})
	require.ErrorIs(t, err, ErrInvalidRow)

	_, found, err := d.storages.Rows.Get(ctx, d.storages.DB, models.TableDecks, "bad")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 1, d.outboxSize(t))

	require.NoError(t, d.engine.RunCycle(ctx))
	assert.Equal(t, 0, d.outboxSize(t))
	assert.Equal(t, models.OutcomeSucceeded, d.engine.Status().Outcome)
}

func TestWriteService_ThresholdRequestsSync(t *testing.T) {
	ctx := context.Background()
	trigger := &countingRequester{}
	w, _ := newTestWriter(t, 2, trigger)

	_, err := w.Save(ctx, models.TableDecks, models.LocalRow{"id": "deck-1"})
	require.NoError(t, err)
	assert.Equal(t, int32(0), trigger.n.Load())

	_, err = w.Save(ctx, models.TableDecks, models.LocalRow{"id": "deck-2"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), trigger.n.Load())
}

func TestWriteService_FailedWriteLeavesNoOutboxEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()
	w, d := newTestWriter(t, 0, nil)

	outbox := mock.NewMockOutboxRepository(ctrl)
	outbox.EXPECT().Record(gomock.Any(), gomock.Any(), models.TableDecks, "deck-1", gomock.Any(), false).
		Return(errors.New("disk full"))
	w.outbox = outbox

	_, err := w.Save(ctx, models.TableDecks, models.LocalRow{"id": "deck-1", "name": "x"})
	require.Error(t, err)

	_, found, err := d.storages.Rows.Get(ctx, d.storages.DB, models.TableDecks, "deck-1")
	require.NoError(t, err)
	assert.False(t, found, "row write must roll back with the outbox record")
	assert.Equal(t, 0, d.outboxSize(t))
}

func TestWriteService_DeviceIDIsCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()
	w, _ := newTestWriter(t, 0, nil)

	device := mock.NewMockDeviceRepository(ctrl)
	device.EXPECT().DeviceID(gomock.Any()).Return("device-x", nil).Times(1)
	w.device = device

	for _, id := range []string{"deck-1", "deck-2"} {
		saved, err := w.Save(ctx, models.TableDecks, models.LocalRow{"id": id})
		require.NoError(t, err)
		assert.Equal(t, "device-x", saved[models.ColumnDeviceID])
	}
}
