package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisLocker(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, Locker) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisLocker(client, ttl)
}

func TestRedisLocker_RunsCriticalSection(t *testing.T) {
	_, l := newTestRedisLocker(t, 5*time.Second)

	ran := false
	err := l.WithLock(context.Background(), "slot:Dr. A:2024-01-02T09", func(context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestRedisLocker_ContendedKeyFailsFast(t *testing.T) {
	_, l := newTestRedisLocker(t, 5*time.Second)
	ctx := context.Background()

	err := l.WithLock(ctx, "k", func(ctx context.Context) error {
		return l.WithLock(ctx, "k", func(context.Context) error {
			t.Fatal("critical section entered twice")
			return nil
		})
	})
	assert.ErrorIs(t, err, ErrNotAcquired)
}

func TestRedisLocker_ReleasesOnReturn(t *testing.T) {
	_, l := newTestRedisLocker(t, 5*time.Second)
	ctx := context.Background()

	require.NoError(t, l.WithLock(ctx, "k", func(context.Context) error { return nil }))

	// Key released, a second acquire succeeds.
	err := l.WithLock(ctx, "k", func(context.Context) error { return nil })
	assert.NoError(t, err)
}

func TestRedisLocker_ExpiredLockCanBeReacquired(t *testing.T) {
	mr, l := newTestRedisLocker(t, time.Second)
	ctx := context.Background()

	block := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- l.WithLock(ctx, "k", func(context.Context) error {
			<-block
			return nil
		})
	}()

	// Wait until the lock key exists, then let its TTL lapse.
	require.Eventually(t, func() bool { return mr.Exists("lock:k") }, time.Second, 5*time.Millisecond)
	mr.FastForward(2 * time.Second)

	err := l.WithLock(ctx, "k", func(context.Context) error { return nil })
	assert.NoError(t, err)

	close(block)
	require.NoError(t, <-done)
}

func TestRedisLocker_StaleReleaseKeepsSuccessorLock(t *testing.T) {
	mr, l := newTestRedisLocker(t, time.Second)
	ctx := context.Background()

	block := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- l.WithLock(ctx, "k", func(context.Context) error {
			<-block
			return nil
		})
	}()

	require.Eventually(t, func() bool { return mr.Exists("lock:k") }, time.Second, 5*time.Millisecond)
	mr.FastForward(2 * time.Second)

	// Successor takes the lock and holds it while the stale holder exits.
	holderDone := make(chan error, 1)
	holderIn := make(chan struct{})
	holderBlock := make(chan struct{})
	go func() {
		holderDone <- l.WithLock(ctx, "k", func(context.Context) error {
			close(holderIn)
			<-holderBlock
			return nil
		})
	}()
	<-holderIn

	close(block)
	require.NoError(t, <-done)

	// The stale holder's deferred release must not have deleted the
	// successor's key.
	assert.True(t, mr.Exists("lock:k"))

	close(holderBlock)
	require.NoError(t, <-holderDone)
}
