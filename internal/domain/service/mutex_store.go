package service

import (
	"context"
	"sync"
)

// KeyedLock is a capacity-1 lock whose acquisition can be abandoned through
// the context.
type KeyedLock struct {
	ch chan struct{}
}

func newKeyedLock() *KeyedLock {
	return &KeyedLock{ch: make(chan struct{}, 1)}
}

// Lock blocks until the lock is held or ctx is done.
func (l *KeyedLock) Lock(ctx context.Context) error {
	select {
	case l.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Unlock releases the lock. Unlocking a free lock panics, like sync.Mutex.
func (l *KeyedLock) Unlock() {
	select {
	case <-l.ch:
	default:
		panic("service: unlock of unlocked KeyedLock")
	}
}

// MutexStore hands out one lock per pending-action id.
//
// Release disposes an id's lock without reference counting. A caller that
// fetched the old lock before disposal and a caller that creates a fresh one
// afterwards can then hold "the" lock for the same id at once. That is only
// safe once the id has left the PendingActionStore, so callers release only
// after the action is gone: both then find nothing to confirm.
type MutexStore struct {
	mu    sync.Mutex
	locks map[string]*KeyedLock
}

func NewMutexStore() *MutexStore {
	return &MutexStore{locks: make(map[string]*KeyedLock)}
}

// Get returns the lock for id, creating it on first use.
func (s *MutexStore) Get(id string) *KeyedLock {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = newKeyedLock()
		s.locks[id] = l
	}
	return l
}

// Release forgets the lock for id. Call it after Unlock, from the holder.
func (s *MutexStore) Release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, id)
}

// Len returns the number of live locks.
func (s *MutexStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}
