// Package lock provides short-lived advisory locks keyed by string. The
// auth service holds one around registration to close the gap between the
// uniqueness check and the insert.
package lock

import (
	"context"
	"sync"
)

// Locker serializes critical sections sharing a key. Acquire blocks until
// the lock is held or ctx is done; the returned release function must be
// called exactly once.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// KeyedMutex is an in-process Locker. Sufficient for single-instance
// deployments; multi-instance deployments use the Redis variant.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyLock)}
}

func (m *KeyedMutex) Acquire(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	kl, ok := m.locks[key]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		m.locks[key] = kl
	}
	kl.refs++
	m.mu.Unlock()

	select {
	case kl.ch <- struct{}{}:
		return func() {
			<-kl.ch
			m.put(key, kl)
		}, nil
	case <-ctx.Done():
		m.put(key, kl)
		return nil, ctx.Err()
	}
}

func (m *KeyedMutex) put(key string, kl *keyLock) {
	m.mu.Lock()
	kl.refs--
	if kl.refs == 0 {
		delete(m.locks, key)
	}
	m.mu.Unlock()
}
