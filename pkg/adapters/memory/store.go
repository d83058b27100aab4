package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/choicefsm/pkg/domain"
)

// Store implements ports.StateStore in memory.
// Safe for concurrent use.
type Store[S comparable] struct {
	data map[string]*domain.Snapshot[S]
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore[S comparable]() *Store[S] {
	return &Store[S]{
		data: make(map[string]*domain.Snapshot[S]),
	}
}

// Save persists a copy of the snapshot.
func (s *Store[S]) Save(_ context.Context, sessionID string, snap *domain.Snapshot[S]) error {
	copied := snap.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = copied
	return nil
}

// Load returns a copy so callers cannot mutate the stored snapshot.
func (s *Store[S]) Load(_ context.Context, sessionID string) (*domain.Snapshot[S], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return snap.Clone(), nil
}

// Delete removes the snapshot.
func (s *Store[S]) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns the stored session IDs, sorted.
func (s *Store[S]) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id := range s.data {
		sessions = append(sessions, id)
	}
	sort.Strings(sessions)
	return sessions, nil
}
