package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven/mocks"
)

func TestWithLock_NilLockRunsDirectly(t *testing.T) {
	ran := false
	err := withLock(context.Background(), nil, "x", time.Second, time.Second, func() error {
		ran = true
		return nil
	})
	if err != nil || !ran {
		t.Fatalf("expected fn to run, err = %v", err)
	}
}

func TestWithLock_RetriesUntilReleased(t *testing.T) {
	lock := mocks.NewMockDistributedLock()
	attempts := 0
	lock.AcquireFn = func(name string, ttl time.Duration) (bool, error) {
		attempts++
		return attempts >= 3, nil
	}

	if err := withLock(context.Background(), lock, "x", time.Second, time.Second, func() error { return nil }); err != nil {
		t.Fatalf("withLock() error = %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestWithLock_PropagatesErrors(t *testing.T) {
	lock := mocks.NewMockDistributedLock()
	boom := errors.New("boom")

	err := withLock(context.Background(), lock, "x", time.Second, time.Second, func() error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("expected fn error, got %v", err)
	}
	if lock.IsHeld("x") {
		t.Error("expected lock released after fn error")
	}

	lock.AcquireFn = func(string, time.Duration) (bool, error) { return false, boom }
	err = withLock(context.Background(), lock, "x", time.Second, time.Second, func() error { return nil })
	if !errors.Is(err, boom) {
		t.Errorf("expected acquire error, got %v", err)
	}
}

func TestWithLock_ContextCancelled(t *testing.T) {
	lock := mocks.NewMockDistributedLock()
	lock.SetLockHeld("x", time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := withLock(ctx, lock, "x", time.Second, time.Minute, func() error { return nil })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestWithLock_GivesUp(t *testing.T) {
	lock := mocks.NewMockDistributedLock()
	lock.SetLockHeld("x", time.Minute)

	err := withLock(context.Background(), lock, "x", time.Second, 60*time.Millisecond, func() error { return nil })
	if !errors.Is(err, domain.ErrLockNotAcquired) {
		t.Errorf("expected ErrLockNotAcquired, got %v", err)
	}
}
