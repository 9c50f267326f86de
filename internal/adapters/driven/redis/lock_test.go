package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestLock_OwnerID_Unique(t *testing.T) {
	_, client := setupTestRedis(t)

	lock1 := NewLock(client)
	lock2 := NewLock(client)

	assert.NotEmpty(t, lock1.OwnerID())
	assert.NotEqual(t, lock1.OwnerID(), lock2.OwnerID())
}

func TestLock_AcquireRelease(t *testing.T) {
	mr, client := setupTestRedis(t)
	lock := NewLock(client)
	ctx := context.Background()

	ok, err := lock.Acquire(ctx, "document:doc-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	value, err := mr.Get(lockPrefix + "document:doc-1")
	require.NoError(t, err)
	assert.Equal(t, lock.OwnerID(), value)

	// Held by this instance too: acquisition is not re-entrant.
	ok, err = lock.Acquire(ctx, "document:doc-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, lock.Release(ctx, "document:doc-1"))
	assert.False(t, mr.Exists(lockPrefix+"document:doc-1"))

	ok, err = lock.Acquire(ctx, "document:doc-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLock_Acquire_HeldByOther(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()

	holder := NewLock(client)
	other := NewLock(client)

	ok, err := holder.Acquire(ctx, "document:doc-1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = other.Acquire(ctx, "document:doc-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = other.Acquire(ctx, "document:doc-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "different names do not contend")
}

func TestLock_Release_ByDifferentOwner(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	holder := NewLock(client)
	other := NewLock(client)

	_, err := holder.Acquire(ctx, "document:doc-1", time.Minute)
	require.NoError(t, err)

	require.NoError(t, other.Release(ctx, "document:doc-1"))
	assert.True(t, mr.Exists(lockPrefix+"document:doc-1"))
}

func TestLock_Release_NotHeld(t *testing.T) {
	_, client := setupTestRedis(t)
	assert.NoError(t, NewLock(client).Release(context.Background(), "document:missing"))
}

func TestLock_Expires(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	holder := NewLock(client)
	other := NewLock(client)

	_, err := holder.Acquire(ctx, "document:doc-1", 30*time.Second)
	require.NoError(t, err)

	mr.FastForward(31 * time.Second)

	ok, err := other.Acquire(ctx, "document:doc-1", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLock_Extend(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	holder := NewLock(client)
	other := NewLock(client)

	_, err := holder.Acquire(ctx, "document:doc-1", 10*time.Second)
	require.NoError(t, err)

	require.NoError(t, holder.Extend(ctx, "document:doc-1", time.Minute))
	assert.Greater(t, mr.TTL(lockPrefix+"document:doc-1"), 30*time.Second)

	err = other.Extend(ctx, "document:doc-1", time.Minute)
	assert.ErrorIs(t, err, domain.ErrLockNotAcquired)

	err = holder.Extend(ctx, "document:missing", time.Minute)
	assert.ErrorIs(t, err, domain.ErrLockNotAcquired)
}

func TestLock_Ping(t *testing.T) {
	mr, client := setupTestRedis(t)
	lock := NewLock(client)

	assert.NoError(t, lock.Ping(context.Background()))

	mr.Close()
	assert.Error(t, lock.Ping(context.Background()))
}
