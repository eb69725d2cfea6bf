package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotsCache(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	defer client.Close()

	cache := NewSlotsCache(client, time.Minute)
	ctx := context.Background()

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	slots := []CachedSlot{
		{StartTime: day.Add(9 * time.Hour), EndTime: day.Add(10 * time.Hour)},
		{StartTime: day.Add(10 * time.Hour), EndTime: day.Add(11 * time.Hour)},
	}

	t.Run("SetAndGet", func(t *testing.T) {
		err := cache.Set(ctx, 3, 11, 1, day, slots)
		require.NoError(t, err)

		got, ok := cache.Get(ctx, 3, 11, 1, day)
		require.True(t, ok)
		require.Len(t, got, 2)
		assert.True(t, got[0].StartTime.Equal(slots[0].StartTime))
		assert.True(t, got[1].EndTime.Equal(slots[1].EndTime))
	})

	t.Run("Miss", func(t *testing.T) {
		_, ok := cache.Get(ctx, 3, 99, 1, day)
		assert.False(t, ok)
	})

	t.Run("LocationsSeparated", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, 3, 11, 1, day, slots))

		// Та же пара мастер/услуга в другой локации — отдельная запись
		_, ok := cache.Get(ctx, 3, 11, 2, day)
		assert.False(t, ok)
	})

	t.Run("InvalidateStaffDay", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, 5, 11, 1, day, slots))
		require.NoError(t, cache.Set(ctx, 5, 12, 1, day, slots))
		require.NoError(t, cache.Set(ctx, 5, 11, 2, day, slots))
		require.NoError(t, cache.Set(ctx, 6, 11, 1, day, slots))

		err := cache.InvalidateStaffDay(ctx, 5, day)
		require.NoError(t, err)

		// Сбрасываются все услуги и все локации мастера
		_, ok := cache.Get(ctx, 5, 11, 1, day)
		assert.False(t, ok)
		_, ok = cache.Get(ctx, 5, 12, 1, day)
		assert.False(t, ok)
		_, ok = cache.Get(ctx, 5, 11, 2, day)
		assert.False(t, ok)

		// Другой мастер не затронут
		_, ok = cache.Get(ctx, 6, 11, 1, day)
		assert.True(t, ok)
	})

	t.Run("TTLExpiry", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, 7, 11, 1, day, slots))

		s.FastForward(2 * time.Minute)

		_, ok := cache.Get(ctx, 7, 11, 1, day)
		assert.False(t, ok)
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, cache.Ping(ctx))
	})
}

func TestSlotsCache_Disabled(t *testing.T) {
	cache := NewSlotsCache(nil, time.Minute)
	ctx := context.Background()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, cache.Set(ctx, 1, 1, 1, day, []CachedSlot{}))
	assert.NoError(t, cache.InvalidateStaffDay(ctx, 1, day))
	assert.NoError(t, cache.Ping(ctx))

	_, ok := cache.Get(ctx, 1, 1, 1, day)
	assert.False(t, ok)
}
