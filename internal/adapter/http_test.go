// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-outbox-sync/internal/config"
	"github.com/MKhiriev/go-outbox-sync/internal/logger"
	"github.com/MKhiriev/go-outbox-sync/models"
)

var syncedAt = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestAdapter(t *testing.T, serverURL string, timeout time.Duration) *httpServerAdapter {
	t.Helper()
	a, err := NewHTTPServerAdapter(
		config.ClientAdapter{HTTPAddress: serverURL, RequestTimeout: timeout},
		StaticToken("token-abc"),
		logger.Nop(),
	)
	require.NoError(t, err)
	return a.(*httpServerAdapter)
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

// ── Send ─────────────────────────────────────────────────────────────────────

func TestSend_Success(t *testing.T) {
	at := time.Date(2026, 6, 1, 11, 0, 0, 0, time.UTC)
	req := models.SyncRequest{
		Changes: []models.SyncChange{{
			Table:          models.TableDecks,
			RowID:          "deck-1",
			Data:           models.WireRow{"id": "deck-1", "name": "日本語"},
			LastModifiedAt: at,
		}},
		LastSyncAt:    &at,
		SchemaVersion: 3,
		PageSize:      100,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/sync", r.URL.Path)
		assert.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")

		var got models.SyncRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, 3, got.SchemaVersion)
		require.Len(t, got.Changes, 1)
		assert.Equal(t, "deck-1", got.Changes[0].RowID)
		assert.Equal(t, "日本語", got.Changes[0].Data["name"])

		writeJSON(t, w, http.StatusOK, models.SyncResponse{
			Changes:    []models.SyncChange{{Table: models.TableCards, RowID: "card-9", LastModifiedAt: at}},
			SyncedAt:   syncedAt,
			NextCursor: "abc",
			Debug:      []string{"applied=1"},
		})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL, time.Second)
	resp, err := a.Send(context.Background(), req)

	require.NoError(t, err)
	assert.True(t, syncedAt.Equal(resp.SyncedAt))
	assert.Equal(t, "abc", resp.NextCursor)
	assert.Equal(t, []string{"applied=1"}, resp.Debug)
	require.Len(t, resp.Changes, 1)
	assert.Equal(t, "card-9", resp.Changes[0].RowID)
}

func TestSend_ApplicationErrorKeepsMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{
			"changes":  []any{},
			"syncedAt": syncedAt,
			"error":    "row cards/x: invalid payload",
		})
	}))
	defer srv.Close()

	_, err := newTestAdapter(t, srv.URL, time.Second).Send(context.Background(), models.SyncRequest{})

	require.ErrorIs(t, err, ErrApplication)
	var se *ServerError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "row cards/x: invalid payload", se.Message)
	assert.Equal(t, http.StatusOK, se.StatusCode)
	assert.False(t, IsTransient(err))
}

func TestSend_StatusMapping(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantErr   error
		wantMsg   string
		transient bool
	}{
		{name: "bad request", status: http.StatusBadRequest, body: `{"error":"unknown table notes"}`, wantErr: ErrBadRequest, wantMsg: "unknown table notes"},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":"token expired"}`, wantErr: ErrUnauthorized, wantMsg: "token expired"},
		{name: "forbidden", status: http.StatusForbidden, body: "nope", wantErr: ErrForbidden, wantMsg: "nope"},
		{name: "schema mismatch", status: http.StatusConflict, body: `{"error":"schema version 2 != 3"}`, wantErr: ErrSchemaMismatch, wantMsg: "schema version 2 != 3"},
		{name: "internal error", status: http.StatusInternalServerError, body: `{"error":"boom"}`, wantErr: ErrServerUnavailable, wantMsg: "boom", transient: true},
		{name: "bad gateway", status: http.StatusBadGateway, body: "", wantErr: ErrServerUnavailable, transient: true},
		{name: "too many requests", status: http.StatusTooManyRequests, body: "", wantErr: ErrServerUnavailable, transient: true},
		{name: "teapot", status: http.StatusTeapot, body: "short and stout", wantErr: ErrApplication, wantMsg: "short and stout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestAdapter(t, srv.URL, time.Second).Send(context.Background(), models.SyncRequest{})

			require.ErrorIs(t, err, tt.wantErr)
			var se *ServerError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, tt.wantMsg, se.Message)
			assert.Equal(t, tt.transient, IsTransient(err))
		})
	}
}

func TestSend_MalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "<html>oops</html>"},
		{name: "missing syncedAt", body: `{"changes":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestAdapter(t, srv.URL, time.Second).Send(context.Background(), models.SyncRequest{})
			require.ErrorIs(t, err, ErrMalformedResponse)
			assert.False(t, IsTransient(err))
		})
	}
}

func TestSend_TransportFailures(t *testing.T) {
	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		_, err := newTestAdapter(t, url, time.Second).Send(context.Background(), models.SyncRequest{})
		require.ErrorIs(t, err, ErrTransport)
		assert.True(t, IsTransient(err))
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		_, err := newTestAdapter(t, srv.URL, 50*time.Millisecond).Send(context.Background(), models.SyncRequest{})
		require.ErrorIs(t, err, ErrTransport)
	})
}

func TestSend_DoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestAdapter(t, srv.URL, time.Second).Send(context.Background(), models.SyncRequest{})
	require.ErrorIs(t, err, ErrServerUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

type failingCredentials struct{}

func (failingCredentials) Token(context.Context) (string, error) {
	return "", errors.New("session expired")
}

func TestSend_CredentialFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	a, err := NewHTTPServerAdapter(config.ClientAdapter{HTTPAddress: srv.URL}, failingCredentials{}, logger.Nop())
	require.NoError(t, err)

	_, err = a.Send(context.Background(), models.SyncRequest{})
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, calls.Load())
}

// ── Ping ─────────────────────────────────────────────────────────────────────

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	assert.NoError(t, newTestAdapter(t, srv.URL, time.Second).Ping(context.Background()))
}

func TestPing_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	a := newTestAdapter(t, srv.URL, time.Second)

	assert.ErrorIs(t, a.Ping(context.Background()), ErrServerUnavailable)

	srv.Close()
	assert.ErrorIs(t, a.Ping(context.Background()), ErrTransport)
}

// ── construction ─────────────────────────────────────────────────────────────

func TestNewHTTPServerAdapter_Validation(t *testing.T) {
	_, err := NewHTTPServerAdapter(config.ClientAdapter{}, StaticToken("t"), logger.Nop())
	assert.Error(t, err)

	_, err = NewHTTPServerAdapter(config.ClientAdapter{HTTPAddress: "localhost:8080"}, nil, logger.Nop())
	assert.Error(t, err)
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "localhost:8080", want: "http://localhost:8080"},
		{raw: "  https://sync.example.com/ ", want: "https://sync.example.com"},
		{raw: "http://10.0.0.1:9000/base/", want: "http://10.0.0.1:9000/base"},
		{raw: "", wantErr: true},
		{raw: "http://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := normalizeBaseURL(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStaticToken(t *testing.T) {
	tok, err := StaticToken("abc").Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	_, err = StaticToken("").Token(context.Background())
	assert.ErrorIs(t, err, ErrNoCredential)
}
