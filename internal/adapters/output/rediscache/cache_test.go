package rediscache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T) (*miniredis.Miniredis, *Cache) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, New(rdb, "puzzle:")
}

func TestCacheRoundTrip(t *testing.T) {
	mr, c := setupCache(t)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "task:1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "task:1", []byte(`{"id":"1"}`), time.Minute))
	assert.True(t, mr.Exists("puzzle:task:1"))

	val, ok, err := c.Get(ctx, "task:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"id":"1"}`, string(val))

	require.NoError(t, c.Delete(ctx, "task:1", "task:2"))
	_, ok, err = c.Get(ctx, "task:1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Delete(ctx))
}

func TestCacheTTL(t *testing.T) {
	mr, c := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "task:1", []byte("x"), 30*time.Second))
	mr.FastForward(31 * time.Second)

	_, ok, err := c.Get(ctx, "task:1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheReportsOutage(t *testing.T) {
	mr, c := setupCache(t)
	mr.Close()

	_, _, err := c.Get(context.Background(), "task:1")
	assert.Error(t, err)
	assert.Error(t, c.Ping(context.Background()))
}
