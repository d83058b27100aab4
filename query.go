package choicefsm

import (
	"github.com/aretw0/choicefsm/pkg/domain"
)

// StateID returns the id of the current state. The boolean is false until
// the first state has been registered.
func (f *Fsm[S, C, E]) StateID() (S, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		var zero S
		return zero, false
	}
	return f.current.id, true
}

// InitialStateID returns the id of the first registered state.
func (f *Fsm[S, C, E]) InitialStateID() (S, bool) {
	if f.initial == nil {
		var zero S
		return zero, false
	}
	return f.initial.id, true
}

// IsInState reports whether the current state is id or one of its descendants.
func (f *Fsm[S, C, E]) IsInState(id S) bool {
	target, ok := f.states[id]
	if !ok {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current != nil && f.current.within(target)
}

// CanHandle reports whether the current state, or one of its ancestors,
// has a transition for event.
func (f *Fsm[S, C, E]) CanHandle(event E) bool {
	f.mu.Lock()
	cur := f.current
	f.mu.Unlock()
	if cur == nil {
		return false
	}
	t, _ := cur.lookup(event)
	return t != nil
}

// HandledEvents lists the events the current state responds to, its own
// first and then those inherited from ancestors.
func (f *Fsm[S, C, E]) HandledEvents() []E {
	f.mu.Lock()
	cur := f.current
	f.mu.Unlock()

	var events []E
	seen := make(map[E]bool)
	for s := cur; s != nil; s = s.parent {
		for _, e := range s.events {
			if !seen[e] {
				seen[e] = true
				events = append(events, e)
			}
		}
	}
	return events
}

// Restore moves the machine to a registered state without firing anything.
// It is meant for resuming a persisted snapshot.
func (f *Fsm[S, C, E]) Restore(id S) error {
	s, ok := f.states[id]
	if !ok {
		return stateErr("restore", id, domain.ErrNoSuchElement)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.firing {
		return domain.ErrDispatchInProgress
	}
	f.current = s
	return nil
}

// Reset moves the machine back to its initial state.
func (f *Fsm[S, C, E]) Reset() error {
	if f.initial == nil {
		return domain.ErrNoStates
	}
	return f.Restore(f.initial.id)
}

// HasState reports whether id is a registered state.
func (f *Fsm[S, C, E]) HasState(id S) bool {
	_, ok := f.states[id]
	return ok
}

// StateIDs returns every registered state id in registration order.
func (f *Fsm[S, C, E]) StateIDs() []S {
	ids := make([]S, len(f.stateOrder))
	for i, s := range f.stateOrder {
		ids[i] = s.id
	}
	return ids
}
