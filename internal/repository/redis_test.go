package repository

import (
	"context"
	"testing"
	"time"

	"umrahdesk/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniRedis(t *testing.T) *redis.Client {
	t.Helper()
	srv, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	return redis.NewClient(&redis.Options{Addr: srv.Addr()})
}

func TestRedisDraftRoundTrip(t *testing.T) {
	client := newMiniRedis(t)
	repo := NewRedisStateRepository(client, time.Hour)
	ctx := context.Background()

	draft := &models.WizardDraft{
		AccountID:   "acc-1",
		CurrentStep: models.StepPassengerData,
		DepartureID: "dep-1",
		Allocation:  models.RoomAllocation{Quad: 2},
	}
	require.NoError(t, repo.SetDraft(ctx, draft))

	got, err := repo.GetDraft(ctx, "acc-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.StepPassengerData, got.CurrentStep)
	assert.Equal(t, 2, got.Allocation.Quad)

	require.NoError(t, repo.ClearDraft(ctx, "acc-1"))
	got, err = repo.GetDraft(ctx, "acc-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisRateLimit(t *testing.T) {
	client := newMiniRedis(t)
	repo := NewRedisStateRepository(client, time.Hour)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := repo.CheckRateLimit(ctx, "acc-2", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := repo.CheckRateLimit(ctx, "acc-2", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestRedisNilClientErrors(t *testing.T) {
	repo := NewRedisStateRepository(nil, time.Hour)
	ctx := context.Background()

	_, err := repo.GetDraft(ctx, "acc-3")
	assert.Error(t, err)
	assert.Error(t, repo.SetDraft(ctx, &models.WizardDraft{AccountID: "acc-3"}))
}
