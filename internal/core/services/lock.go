package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

const (
	// DefaultLockTTL bounds how long a crashed holder can block a document
	DefaultLockTTL = 30 * time.Second

	// DefaultLockWait is how long to keep retrying a held lock
	DefaultLockWait = 10 * time.Second

	lockRetryInterval = 50 * time.Millisecond
)

func documentLockName(documentID string) string {
	return "document:" + documentID
}

// withLock runs fn while holding the named lock. A nil lock runs fn directly.
// Returns domain.ErrLockNotAcquired if the lock stays held for longer than wait.
func withLock(ctx context.Context, lock driven.DistributedLock, name string, ttl, wait time.Duration, fn func() error) error {
	if lock == nil {
		return fn()
	}

	deadline := time.Now().Add(wait)
	for {
		acquired, err := lock.Acquire(ctx, name, ttl)
		if err != nil {
			return fmt.Errorf("acquire lock %s: %w", name, err)
		}
		if acquired {
			break
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s", domain.ErrLockNotAcquired, name)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}

	// Release with a fresh context so a cancelled job still frees the lock
	defer func() {
		_ = lock.Release(context.WithoutCancel(ctx), name)
	}()

	return fn()
}
