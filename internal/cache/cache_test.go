package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*ProfileCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewProfileCache(rdb, ttl), mr
}

func countingLoader(result bool, calls *int) func(context.Context) (bool, error) {
	return func(context.Context) (bool, error) {
		*calls++
		return result, nil
	}
}

func TestHasProfileCachesResult(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()
	calls := 0

	has, err := c.HasProfile(ctx, "user-a", countingLoader(true, &calls))
	require.NoError(t, err)
	assert.True(t, has)

	has, err = c.HasProfile(ctx, "user-a", countingLoader(false, &calls))
	require.NoError(t, err)
	assert.True(t, has, "second call should be served from cache")
	assert.Equal(t, 1, calls)

	val, err := mr.Get(HasProfileKey("user-a"))
	require.NoError(t, err)
	assert.Equal(t, "1", val)
	assert.Equal(t, time.Minute, mr.TTL(HasProfileKey("user-a")))
}

func TestHasProfileCachesNegative(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()
	calls := 0

	has, _ := c.HasProfile(ctx, "user-b", countingLoader(false, &calls))
	assert.False(t, has)
	has, _ = c.HasProfile(ctx, "user-b", countingLoader(true, &calls))
	assert.False(t, has)
	assert.Equal(t, 1, calls)
}

func TestHasProfileExpires(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()
	calls := 0

	c.HasProfile(ctx, "user-a", countingLoader(false, &calls))
	mr.FastForward(2 * time.Minute)
	has, _ := c.HasProfile(ctx, "user-a", countingLoader(true, &calls))
	assert.True(t, has)
	assert.Equal(t, 2, calls)
}

func TestInvalidate(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()
	calls := 0

	c.HasProfile(ctx, "user-a", countingLoader(false, &calls))
	c.Invalidate(ctx, "user-a")
	assert.False(t, mr.Exists(HasProfileKey("user-a")))

	has, _ := c.HasProfile(ctx, "user-a", countingLoader(true, &calls))
	assert.True(t, has)
	assert.Equal(t, 2, calls)
}

func TestLoaderErrorNotCached(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	_, err := c.HasProfile(context.Background(), "user-a", func(context.Context) (bool, error) {
		return false, errors.New("db down")
	})
	assert.Error(t, err)
	assert.False(t, mr.Exists(HasProfileKey("user-a")))
}

func TestRedisDownFallsThrough(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	mr.Close()

	calls := 0
	has, err := c.HasProfile(context.Background(), "user-a", countingLoader(true, &calls))
	require.NoError(t, err)
	assert.True(t, has)
	assert.Equal(t, 1, calls)
}

func TestNilCacheIsPassThrough(t *testing.T) {
	var c *ProfileCache
	calls := 0
	has, err := c.HasProfile(context.Background(), "user-a", countingLoader(true, &calls))
	require.NoError(t, err)
	assert.True(t, has)
	assert.False(t, c.Enabled())
	c.Invalidate(context.Background(), "user-a")

	disabled := NewProfileCache(nil, 0)
	assert.False(t, disabled.Enabled())
	disabled.HasProfile(context.Background(), "user-a", countingLoader(true, &calls))
	assert.Equal(t, 2, calls)
}

func TestConnect(t *testing.T) {
	assert.Nil(t, Connect(context.Background(), ""))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := Connect(context.Background(), "redis://"+mr.Addr())
	require.NotNil(t, client)
	_ = client.Close()

	client = Connect(context.Background(), mr.Addr())
	require.NotNil(t, client)
	_ = client.Close()
}
