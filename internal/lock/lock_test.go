package lock

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedMutex_SerializesPerKey(t *testing.T) {
	m := NewKeyedMutex()
	ctx := context.Background()

	const workers = 50
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.WithLock(ctx, "slot:Dr. A:2024-01-02T09", func(context.Context) error {
				// Unsynchronized on purpose; the lock is the only guard.
				counter++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	m := NewKeyedMutex()
	ctx := context.Background()

	inFirst := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = m.WithLock(ctx, "a", func(context.Context) error {
			close(inFirst)
			<-release
			return nil
		})
	}()

	<-inFirst

	// A different key must not wait on "a".
	err := m.WithLock(ctx, "b", func(context.Context) error { return nil })
	require.NoError(t, err)

	close(release)
}

func TestKeyedMutex_PropagatesError(t *testing.T) {
	m := NewKeyedMutex()

	sentinel := errors.New("boom")
	err := m.WithLock(context.Background(), "k", func(context.Context) error {
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
}

func TestKeyedMutex_DropsIdleKeys(t *testing.T) {
	m := NewKeyedMutex()
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		require.NoError(t, m.WithLock(ctx, "k", func(context.Context) error { return nil }))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Empty(t, m.keys)
}
