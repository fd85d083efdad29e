package repositories

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisCache(t *testing.T) (CacheRepositoryInterface, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := NewRedisCacheRepository(client)
	t.Cleanup(func() { _ = repo.Close() })
	return repo, mr
}

func TestRedisCacheRepository_GetSetDel(t *testing.T) {
	repo, mr := newTestRedisCache(t)
	ctx := context.Background()

	_, err := repo.Get(ctx, "admin:perm:1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, repo.Set(ctx, "admin:perm:1", `{"v":"1"}`, time.Minute))
	got, err := repo.Get(ctx, "admin:perm:1")
	require.NoError(t, err)
	assert.Equal(t, `{"v":"1"}`, got)

	mr.FastForward(2 * time.Minute)
	_, err = repo.Get(ctx, "admin:perm:1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, repo.Set(ctx, "admin:perm:2", "x", 0))
	require.NoError(t, repo.Del(ctx, "admin:perm:2"))
	assert.False(t, mr.Exists("admin:perm:2"))
	assert.NoError(t, repo.Del(ctx))
}

func TestRedisCacheRepository_Incr(t *testing.T) {
	repo, _ := newTestRedisCache(t)
	ctx := context.Background()

	v, err := repo.Incr(ctx, "admin:ver:role:3")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	v, err = repo.Incr(ctx, "admin:ver:role:3")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	got, err := repo.Get(ctx, "admin:ver:role:3")
	require.NoError(t, err)
	assert.Equal(t, "2", got)
}

func TestRedisCacheRepository_DelByPrefix(t *testing.T) {
	repo, mr := newTestRedisCache(t)
	ctx := context.Background()

	for i := 0; i < 1200; i++ {
		require.NoError(t, mr.Set("admin:perm:"+strconv.Itoa(i), "v"))
	}
	require.NoError(t, mr.Set("admin:menuTree:*", "v"))
	require.NoError(t, mr.Set("other:perm:1", "v"))

	n, err := repo.DelByPrefix(ctx, "admin:perm:")
	require.NoError(t, err)
	assert.Equal(t, int64(1200), n)
	assert.True(t, mr.Exists("admin:menuTree:*"))
	assert.True(t, mr.Exists("other:perm:1"))
}

func TestRedisCacheRepository_ExpireCounter(t *testing.T) {
	repo, mr := newTestRedisCache(t)
	ctx := context.Background()

	_, err := repo.Incr(ctx, "login_attempts:2")
	require.NoError(t, err)
	require.NoError(t, repo.Expire(ctx, "login_attempts:2", time.Minute))

	mr.FastForward(2 * time.Minute)
	_, err = repo.Get(ctx, "login_attempts:2")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
