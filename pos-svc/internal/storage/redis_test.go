package storage_test

import (
	"context"
	"testing"
	"time"

	"overcooked-pos/pos-svc/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*storage.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return storage.NewRedisCache(client), mr
}

func TestRedisCache_SweepLock(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	key := cache.SweepLockKey("tenant-a")
	assert.Equal(t, "pos:lock:sweep:tenant-a", key)

	ok, err := cache.AcquireLock(ctx, key, "instance-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cache.AcquireLock(ctx, key, "instance-2", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "the lock is held")

	require.NoError(t, cache.ReleaseLock(ctx, key, "instance-2"))
	assert.True(t, mr.Exists(key), "only the owner releases")

	require.NoError(t, cache.ReleaseLock(ctx, key, "instance-1"))
	assert.False(t, mr.Exists(key))

	ok, err = cache.AcquireLock(ctx, key, "instance-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisCache_LockExpires(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	key := cache.SweepLockKey("tenant-b")

	ok, err := cache.AcquireLock(ctx, key, "instance-1", 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(31 * time.Second)

	ok, err = cache.AcquireLock(ctx, key, "instance-2", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "an abandoned lock lapses")

	require.NoError(t, cache.ReleaseLock(ctx, key, "instance-1"))
	got, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "instance-2", got)
}

func TestRedisCache_Unavailable(t *testing.T) {
	cache, mr := newTestCache(t)
	mr.SetError("LOADING redis is loading the dataset")

	_, err := cache.AcquireLock(context.Background(), "k", "v", time.Second)
	assert.Error(t, err)
}
