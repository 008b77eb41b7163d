package service

import (
	"cmp"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-outbox-sync/internal/adapter"
	"github.com/MKhiriev/go-outbox-sync/internal/config"
	"github.com/MKhiriev/go-outbox-sync/internal/logger"
	"github.com/MKhiriev/go-outbox-sync/internal/resolver"
	"github.com/MKhiriev/go-outbox-sync/internal/store"
	"github.com/MKhiriev/go-outbox-sync/internal/tableadapter"
	"github.com/MKhiriev/go-outbox-sync/models"
)

const testSchemaVersion = 1

// memSyncRows is an in-memory central store with the same stamping and
// ordering rules as the PostgreSQL repository.
type memSyncRows struct {
	mu     sync.Mutex
	rows   map[string]map[models.RowKey]memRow
	clocks map[string]time.Time
	base   time.Time
}

type memRow struct {
	change models.SyncChange
	stamp  time.Time
}

func newMemSyncRows() *memSyncRows {
	return &memSyncRows{
		rows:   make(map[string]map[models.RowKey]memRow),
		clocks: make(map[string]time.Time),
		base:   time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memSyncRows) Apply(_ context.Context, owner string, changes []models.SyncChange) (store.ApplyResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stamp := m.clocks[owner]
	if stamp.IsZero() {
		stamp = m.base
	}
	stamp = stamp.Add(time.Microsecond)
	m.clocks[owner] = stamp

	if m.rows[owner] == nil {
		m.rows[owner] = make(map[models.RowKey]memRow)
	}

	result := store.ApplyResult{Stamp: stamp}
	for _, c := range changes {
		var stored *resolver.Version
		if r, ok := m.rows[owner][c.Key()]; ok {
			stored = &resolver.Version{LastModifiedAt: r.change.LastModifiedAt, DeviceID: r.change.DeviceID()}
		}

		switch resolver.Resolve(resolver.Version{LastModifiedAt: c.LastModifiedAt, DeviceID: c.DeviceID()}, stored) {
		case resolver.StoredWins:
			result.Ignored++
		case resolver.Duplicate:
			result.Duplicates++
		default:
			m.rows[owner][c.Key()] = memRow{change: c, stamp: stamp}
			result.Applied++
		}
	}
	return result, nil
}

func (m *memSyncRows) Collect(_ context.Context, owner string, q store.CollectQuery) (store.CollectPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var all []memRow
	for _, r := range m.rows[owner] {
		if r.stamp.After(q.Until) || (q.Since != nil && !r.stamp.After(*q.Since)) {
			continue
		}
		if q.After != nil && compareKey(r, *q.After) <= 0 {
			continue
		}
		all = append(all, r)
	}
	slices.SortFunc(all, func(a, b memRow) int {
		return compareKey(a, store.Cursor{ServerUpdatedAt: b.stamp, Table: b.change.Table, RowID: b.change.RowID})
	})

	page := store.CollectPage{Changes: []models.SyncChange{}}
	for i, r := range all {
		if i == q.Limit {
			last := all[i-1]
			page.Next = &store.Cursor{ServerUpdatedAt: last.stamp, Table: last.change.Table, RowID: last.change.RowID}
			break
		}
		page.Changes = append(page.Changes, r.change)
	}
	return page, nil
}

func compareKey(r memRow, c store.Cursor) int {
	return cmp.Or(
		r.stamp.Compare(c.ServerUpdatedAt),
		cmp.Compare(r.change.Table, c.Table),
		cmp.Compare(r.change.RowID, c.RowID),
	)
}

func (m *memSyncRows) row(owner string, table models.Table, rowID string) (models.SyncChange, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[owner][models.RowKey{Table: table, RowID: rowID}]
	return r.change, ok
}

func (m *memSyncRows) count(owner string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows[owner])
}

// loopbackAdapter serves requests with a real SyncService and pushes every
// request and response through JSON, like the HTTP transport does.
type loopbackAdapter struct {
	svc   SyncService
	owner string

	mu    sync.Mutex
	calls int
	// fault, when set, is consulted before (applied=false) and after
	// (applied=true) every call; a non-nil result replaces the response.
	fault func(call int, req models.SyncRequest, applied bool) error
	sent  []models.SyncRequest
}

func (l *loopbackAdapter) Send(ctx context.Context, req models.SyncRequest) (models.SyncResponse, error) {
	l.mu.Lock()
	l.calls++
	call := l.calls
	fault := l.fault
	l.mu.Unlock()

	wireReq := roundTrip[models.SyncRequest](req)
	l.mu.Lock()
	l.sent = append(l.sent, wireReq)
	l.mu.Unlock()

	if fault != nil {
		if err := fault(call, wireReq, false); err != nil {
			return models.SyncResponse{}, err
		}
	}

	resp, err := l.svc.Sync(ctx, l.owner, wireReq)
	if err != nil {
		return models.SyncResponse{}, fmt.Errorf("%w: %w", adapter.ErrBadRequest, err)
	}

	if fault != nil {
		if err := fault(call, wireReq, true); err != nil {
			return models.SyncResponse{}, err
		}
	}
	return roundTrip[models.SyncResponse](resp), nil
}

func (l *loopbackAdapter) Ping(context.Context) error { return nil }

func (l *loopbackAdapter) setFault(f func(call int, req models.SyncRequest, applied bool) error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fault = f
}

func (l *loopbackAdapter) requests() []models.SyncRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.sent)
}

func roundTrip[T any](v T) T {
	payload, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	var out T
	if err = json.Unmarshal(payload, &out); err != nil {
		panic(err)
	}
	return out
}

func newTestServer(rows store.SyncRowRepository) SyncService {
	return NewSyncService(rows, &config.ServerConfig{SchemaVersion: testSchemaVersion, MaxPageSize: 1000}, logger.Nop())
}

// testDevice is one client database with its engine and write path.
type testDevice struct {
	storages *store.ClientStorages
	engine   *clientSyncEngine
	writer   *clientWriteService
	server   *loopbackAdapter
}

func newTestDevice(t *testing.T, server SyncService, owner string, pageSize int) *testDevice {
	t.Helper()

	storages, err := store.NewClientStorages(context.Background(), config.ClientStorage{
		DB: config.ClientDB{DSN: filepath.Join(t.TempDir(), "client.db")},
	}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = storages.Close() })

	lb := &loopbackAdapter{svc: server, owner: owner}
	d := &testDevice{storages: storages, server: lb}
	d.engine = d.newEngine(owner, pageSize)
	d.writer = NewClientWriteService(storages, tableadapter.DefaultRegistry(), staticIDs{}, 0, nil, logger.Nop()).(*clientWriteService)
	return d
}

// newEngine builds a fresh engine over the device's database, as a process
// restart would.
func (d *testDevice) newEngine(owner string, pageSize int) *clientSyncEngine {
	e := NewClientSyncEngine(d.storages, d.server, tableadapter.DefaultRegistry(), EngineConfig{
		Identity:      owner,
		SchemaVersion: testSchemaVersion,
		BatchSize:     100,
		PageSize:      pageSize,
		BackoffMin:    time.Millisecond,
		BackoffMax:    2 * time.Millisecond,
	}, logger.Nop()).(*clientSyncEngine)
	e.newBackoff = func() retry.Backoff {
		return retry.NewConstant(time.Millisecond)
	}
	return e
}

// writeAs stores row with explicit sync columns and records it in the outbox,
// bypassing the write service's clock and device id.
func (d *testDevice) writeAs(t *testing.T, table models.Table, device string, ms int64, row models.LocalRow) {
	t.Helper()

	row = cloneRow(row)
	row[models.ColumnLastModifiedAt] = ms
	row[models.ColumnDeviceID] = device
	row[models.ColumnSyncVersion] = int64(1)
	if _, ok := row[models.ColumnDeleted]; !ok {
		row[models.ColumnDeleted] = int64(0)
	}
	deleted := row[models.ColumnDeleted] == int64(1)

	ctx := context.Background()
	err := d.storages.DB.WithTx(ctx, func(tx *sql.Tx) error {
		if err := d.storages.Rows.Upsert(ctx, tx, table, row); err != nil {
			return err
		}
		return d.storages.Outbox.Record(ctx, tx, table, row[models.ColumnID].(string), row, deleted)
	})
	require.NoError(t, err)
}

func (d *testDevice) row(t *testing.T, table models.Table, id string) models.LocalRow {
	t.Helper()
	row, found, err := d.storages.Rows.Get(context.Background(), d.storages.DB, table, id)
	require.NoError(t, err)
	require.True(t, found, "row %s/%s not found", table, id)
	return row
}

func (d *testDevice) outboxSize(t *testing.T) int {
	t.Helper()
	n, err := d.storages.Outbox.Count(context.Background())
	require.NoError(t, err)
	return n
}

func (d *testDevice) watermark(t *testing.T, owner string) *time.Time {
	t.Helper()
	at, err := d.storages.Watermarks.Get(context.Background(), owner)
	require.NoError(t, err)
	return at
}

func cloneRow(row models.LocalRow) models.LocalRow {
	out := make(models.LocalRow, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

type staticIDs struct{}

func (staticIDs) Generate() string { return "generated-id" }
