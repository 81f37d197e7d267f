package repository

import (
	"context"
	"testing"
	"time"

	"barberia/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := NewRedisClient(config.RedisConfig{Address: s.Addr()})
	defer client.Close()

	repo := NewRedisStore(client)
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, repo.SetJSON(ctx, "catalog:services", []cached{{Name: "Corte"}}, time.Hour))
		assert.True(t, s.Exists(keyPrefix+"catalog:services"))

		var got []cached
		found, err := repo.GetJSON(ctx, "catalog:services", &got)
		require.NoError(t, err)
		assert.True(t, found)
		require.Len(t, got, 1)
		assert.Equal(t, "Corte", got[0].Name)
	})

	t.Run("TTL", func(t *testing.T) {
		require.NoError(t, repo.SetJSON(ctx, "ttl", cached{}, time.Minute))
		s.FastForward(2 * time.Minute)
		var got cached
		found, err := repo.GetJSON(ctx, "ttl", &got)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.SetJSON(ctx, "a", cached{}, time.Hour))
		require.NoError(t, repo.SetJSON(ctx, "b", cached{}, time.Hour))
		require.NoError(t, repo.Delete(ctx, "a", "b"))
		assert.False(t, s.Exists(keyPrefix+"a"))
		assert.False(t, s.Exists(keyPrefix+"b"))
		require.NoError(t, repo.Delete(ctx))
	})

	t.Run("CorruptValue", func(t *testing.T) {
		require.NoError(t, s.Set(keyPrefix+"bad", "{not json"))
		var got cached
		_, err := repo.GetJSON(ctx, "bad", &got)
		assert.Error(t, err)
	})

	t.Run("RateLimit", func(t *testing.T) {
		key := "login:admin|10.0.0.1"
		limit := 2
		window := time.Second

		allowed, err := repo.CheckRateLimit(ctx, key, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = repo.CheckRateLimit(ctx, key, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = repo.CheckRateLimit(ctx, key, limit, window)
		require.NoError(t, err)
		assert.False(t, allowed)

		s.FastForward(window + time.Millisecond)

		allowed, err = repo.CheckRateLimit(ctx, key, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("NilClient", func(t *testing.T) {
		repo := NewRedisStore(nil)
		_, err := repo.GetJSON(ctx, "x", &cached{})
		assert.ErrorContains(t, err, "redis client is nil")
		assert.Error(t, repo.SetJSON(ctx, "x", 1, 0))
		assert.Error(t, repo.Delete(ctx, "x"))
		_, err = repo.CheckRateLimit(ctx, "x", 1, time.Second)
		assert.Error(t, err)
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, Ping(ctx, client))
	})

	t.Run("Close", func(t *testing.T) {
		other := redis.NewClient(&redis.Options{Addr: s.Addr()})
		assert.NoError(t, Close(other))
		assert.NoError(t, Close(nil))
	})
}
