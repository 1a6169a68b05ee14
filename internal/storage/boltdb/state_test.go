package boltdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncMarkers(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)

	got, err := s.GetSyncMarker(ctx, "pull")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	require.NoError(t, s.SaveSyncMarker(ctx, "pull", t0))
	require.NoError(t, s.SaveSyncMarker(ctx, "push", t0.Add(time.Minute)))

	got, err = s.GetSyncMarker(ctx, "pull")
	require.NoError(t, err)
	assert.True(t, t0.Equal(got))

	require.NoError(t, s.SaveSyncMarker(ctx, "pull", t0.Add(time.Hour)))
	got, err = s.GetSyncMarker(ctx, "pull")
	require.NoError(t, err)
	assert.True(t, t0.Add(time.Hour).Equal(got))

	push, err := s.GetSyncMarker(ctx, "push")
	require.NoError(t, err)
	assert.True(t, t0.Add(time.Minute).Equal(push))
}

func TestClosedStorage(t *testing.T) {
	s := &Storage{}
	ctx := context.Background()

	_, err := s.GetSyncMarker(ctx, "pull")
	assert.Error(t, err)
	assert.Error(t, s.SaveSyncMarker(ctx, "pull", t0))
	assert.NoError(t, s.Close())
}
