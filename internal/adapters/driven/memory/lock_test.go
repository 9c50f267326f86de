package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestLock_AcquireRelease(t *testing.T) {
	ctx := context.Background()
	lock := NewLock()

	ok, err := lock.Acquire(ctx, "document:1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = lock.Acquire(ctx, "document:1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, _ = lock.Acquire(ctx, "document:2", time.Minute)
	assert.True(t, ok)

	require.NoError(t, lock.Release(ctx, "document:1"))
	ok, _ = lock.Acquire(ctx, "document:1", time.Minute)
	assert.True(t, ok)

	assert.NoError(t, lock.Release(ctx, "never-held"))
	assert.NoError(t, lock.Ping(ctx))
}

func TestLock_ExpiryAndExtend(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	lock := NewLock()
	lock.clock = func() time.Time { return now }

	ok, _ := lock.Acquire(ctx, "document:1", 10*time.Second)
	require.True(t, ok)

	now = now.Add(5 * time.Second)
	require.NoError(t, lock.Extend(ctx, "document:1", 10*time.Second))

	now = now.Add(8 * time.Second)
	ok, _ = lock.Acquire(ctx, "document:1", 10*time.Second)
	assert.False(t, ok, "extended lock still held")

	now = now.Add(3 * time.Second)
	assert.ErrorIs(t, lock.Extend(ctx, "document:1", time.Second), domain.ErrLockNotAcquired)

	ok, _ = lock.Acquire(ctx, "document:1", 10*time.Second)
	assert.True(t, ok, "expired lock can be taken")
}
