package ai

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisCache(client, "gema:", zerolog.Nop()), mr
}

func TestRedisCacheRoundTripAndExpiry(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	ctx := context.Background()
	payload := map[string]any{"score": 7.5, "feedback": map[string]any{"strengths": []any{"clear"}}}

	cache.Put(ctx, "ai:v1:smart_grading:abc", payload, time.Minute)
	require.True(t, mr.Exists("gema:ai:v1:smart_grading:abc"))

	got, ok := cache.Get(ctx, "ai:v1:smart_grading:abc")
	require.True(t, ok)
	require.Equal(t, payload, got)

	mr.FastForward(2 * time.Minute)
	_, ok = cache.Get(ctx, "ai:v1:smart_grading:abc")
	require.False(t, ok)
}

func TestRedisCacheTreatsFailuresAsMiss(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("gema:broken", "{not json"))
	_, ok := cache.Get(ctx, "broken")
	require.False(t, ok)

	mr.Close()
	cache.Put(ctx, "fp", "value", time.Minute)
	_, ok = cache.Get(ctx, "fp")
	require.False(t, ok)
}
