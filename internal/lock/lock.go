package lock

import (
	"context"
	"errors"
	"sync"
)

var ErrNotAcquired = errors.New("lock not acquired")

// Locker guards a critical section identified by a string key. The
// booking path uses one key per (doctor, hour) slot and one per phone
// number.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// KeyedMutex serializes callers per key within a single process. It is
// the default locker for the in-memory registries.
type KeyedMutex struct {
	mu   sync.Mutex
	keys map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{keys: make(map[string]*keyLock)}
}

// WithLock runs fn while holding the mutex for key. Entries are dropped
// again once the last waiter leaves, so the key table does not grow with
// the history of bookings.
func (m *KeyedMutex) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	kl, ok := m.keys[key]
	if !ok {
		kl = &keyLock{}
		m.keys[key] = kl
	}
	kl.refs++
	m.mu.Unlock()

	kl.mu.Lock()
	defer func() {
		kl.mu.Unlock()

		m.mu.Lock()
		kl.refs--
		if kl.refs == 0 {
			delete(m.keys, key)
		}
		m.mu.Unlock()
	}()

	return fn(ctx)
}
