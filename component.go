package choicefsm

import (
	"fmt"

	"github.com/aretw0/choicefsm/pkg/domain"
)

// Action is a side-effecting callback run once when a transition fires.
type Action func()

// Decision is evaluated every time its choicepoint is reached.
type Decision func() bool

type state[S, C, E comparable] struct {
	id     S
	parent *state[S, C, E]

	// events keeps the registration order of transitions.
	events      []E
	transitions map[E]*transition[S, C, E]
}

func newState[S, C, E comparable](id S, parent *state[S, C, E]) *state[S, C, E] {
	return &state[S, C, E]{
		id:          id,
		parent:      parent,
		transitions: make(map[E]*transition[S, C, E]),
	}
}

// lookup walks from s up the parent chain and returns the first transition
// registered for event, along with the ids of every state inspected.
func (s *state[S, C, E]) lookup(event E) (*transition[S, C, E], []string) {
	var searched []string
	for cur := s; cur != nil; cur = cur.parent {
		searched = append(searched, fmt.Sprint(cur.id))
		if t, ok := cur.transitions[event]; ok {
			return t, searched
		}
	}
	return nil, searched
}

// within reports whether s is ancestor or s itself.
func (s *state[S, C, E]) within(ancestor *state[S, C, E]) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}

type choicepoint[S, C, E comparable] struct {
	id       C
	decision Decision

	// branches is indexed by branchIndex.
	branches [2]*transition[S, C, E]
}

func branchIndex(branch bool) int {
	if branch {
		return 1
	}
	return 0
}

func (c *choicepoint[S, C, E]) branch(b bool) *transition[S, C, E] {
	return c.branches[branchIndex(b)]
}

// target is either a state or a choicepoint, selected by kind.
type target[S, C, E comparable] struct {
	kind   domain.Kind
	state  *state[S, C, E]
	choice *choicepoint[S, C, E]
}

func stateTarget[S, C, E comparable](s *state[S, C, E]) target[S, C, E] {
	return target[S, C, E]{kind: domain.KindState, state: s}
}

func choiceTarget[S, C, E comparable](c *choicepoint[S, C, E]) target[S, C, E] {
	return target[S, C, E]{kind: domain.KindChoicepoint, choice: c}
}

func (t target[S, C, E]) String() string {
	if t.kind == domain.KindChoicepoint {
		return fmt.Sprint(t.choice.id)
	}
	return fmt.Sprint(t.state.id)
}
