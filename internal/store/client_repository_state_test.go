package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermark_PerIdentity(t *testing.T) {
	s := newTestClientStorages(t)
	ctx := context.Background()

	at, err := s.Watermarks.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, at)

	first := time.Date(2026, 5, 1, 10, 0, 0, 123456000, time.UTC)
	require.NoError(t, s.Watermarks.Set(ctx, "alice", first))

	at, err = s.Watermarks.Get(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, at)
	assert.True(t, first.Equal(*at))

	other, err := s.Watermarks.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Nil(t, other)

	second := first.Add(time.Hour)
	require.NoError(t, s.Watermarks.Set(ctx, "alice", second))
	at, err = s.Watermarks.Get(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, second.Equal(*at))
}

func TestDevice_IDIsStable(t *testing.T) {
	s := newTestClientStorages(t)
	ctx := context.Background()

	first, err := s.Device.DeviceID(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := s.Device.DeviceID(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
