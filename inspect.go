package choicefsm

import (
	"github.com/aretw0/choicefsm/pkg/domain"
)

// Inspect returns the full graph definition for visualization or
// introspection tools: states first, then choicepoints, each in
// registration order.
func (f *Fsm[S, C, E]) Inspect() []domain.Node {
	containers := make(map[*state[S, C, E]]bool)
	for _, s := range f.stateOrder {
		if s.parent != nil {
			containers[s.parent] = true
		}
	}

	nodes := make([]domain.Node, 0, len(f.stateOrder)+len(f.choiceOrder))
	for _, s := range f.stateOrder {
		n := domain.Node{
			ID:        idString(s.id),
			Kind:      domain.KindState,
			Initial:   s == f.initial,
			Container: containers[s],
		}
		if s.parent != nil {
			n.Parent = idString(s.parent.id)
		}
		for _, e := range s.events {
			n.Edges = append(n.Edges, s.transitions[e].edge())
		}
		nodes = append(nodes, n)
	}

	for _, c := range f.choiceOrder {
		n := domain.Node{
			ID:   idString(c.id),
			Kind: domain.KindChoicepoint,
		}
		for _, b := range []bool{true, false} {
			if t := c.branch(b); t != nil {
				n.Edges = append(n.Edges, t.edge())
			}
		}
		nodes = append(nodes, n)
	}
	return nodes
}
