package domain

import "time"

// Snapshot is the persisted cursor of one session: the state it rests in and
// the path that led there.
type Snapshot[S comparable] struct {
	// StateID is the identifier of the current state.
	StateID S `json:"state_id"`

	// History tracks every state the session came to rest in, oldest first.
	History []S `json:"history"`

	// Steps counts handled events.
	Steps int `json:"steps"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewSnapshot creates a clean snapshot resting at a specific state.
func NewSnapshot[S comparable](start S) *Snapshot[S] {
	return &Snapshot[S]{
		StateID:   start,
		History:   []S{start},
		UpdatedAt: time.Now(),
	}
}

// Advance records that a handled event left the session in next.
func (s *Snapshot[S]) Advance(next S) {
	s.StateID = next
	s.History = append(s.History, next)
	s.Steps++
	s.UpdatedAt = time.Now()
}

// Clone returns a copy that shares no slices with s.
func (s *Snapshot[S]) Clone() *Snapshot[S] {
	if s == nil {
		return nil
	}
	next := *s
	next.History = append([]S(nil), s.History...)
	return &next
}
