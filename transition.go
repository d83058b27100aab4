package choicefsm

import (
	"github.com/aretw0/choicefsm/pkg/domain"
)

// transition is a directed edge. Transitions leaving a state are keyed by
// event; transitions leaving a choicepoint are keyed by branch.
type transition[S, C, E comparable] struct {
	from   target[S, C, E]
	to     target[S, C, E]
	action Action

	event  E
	branch bool
}

func (t *transition[S, C, E]) fire() {
	if t.action != nil {
		t.action()
	}
}

func (t *transition[S, C, E]) edge() domain.Edge {
	e := domain.Edge{
		To:        t.to.String(),
		ToKind:    t.to.kind,
		HasAction: t.action != nil,
	}
	if t.from.kind == domain.KindChoicepoint {
		b := t.branch
		e.Branch = &b
	} else {
		e.Event = idString(t.event)
	}
	return e
}
