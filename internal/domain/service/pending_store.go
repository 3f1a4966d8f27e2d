package service

import (
	"sync"
	"time"

	"github.com/jonny/stayhub/internal/domain/model"
)

// PendingActionStore holds actions awaiting confirmation, keyed by their
// confirm/cancel token. Presence means "awaiting confirmation"; absence means
// expired, already handled, or never existed.
type PendingActionStore struct {
	mu      sync.Mutex
	actions map[string]model.PendingAction
}

func NewPendingActionStore() *PendingActionStore {
	return &PendingActionStore{actions: make(map[string]model.PendingAction)}
}

// TryAdd stores action under id unless id is already taken.
func (s *PendingActionStore) TryAdd(id string, action model.PendingAction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.actions[id]; exists {
		return false
	}
	s.actions[id] = action
	return true
}

// TryGet looks id up without removing it.
func (s *PendingActionStore) TryGet(id string) (model.PendingAction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.actions[id]
	return a, ok
}

// TryRemove removes and returns the action under id. For a given id exactly
// one caller observes ok == true.
func (s *PendingActionStore) TryRemove(id string) (model.PendingAction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.actions[id]
	if ok {
		delete(s.actions, id)
	}
	return a, ok
}

// Len returns the number of pending actions.
func (s *PendingActionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.actions)
}

// Expire removes every action created before cutoff and returns their ids.
func (s *PendingActionStore) Expire(cutoff time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id, a := range s.actions {
		if a.OlderThan(cutoff) {
			delete(s.actions, id)
			ids = append(ids, id)
		}
	}
	return ids
}
