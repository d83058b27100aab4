package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/choicefsm"
	"github.com/aretw0/choicefsm/pkg/domain"
)

// ErrChainedAction is recorded when an action is attached to a
// choicepoint-to-choicepoint branch, which cannot carry one.
var ErrChainedAction = errors.New("chained choicepoint branches cannot carry an action")

// Builder manages the graph construction.
// Unlike the Fsm methods it never fails half-way: every problem is collected
// and reported by Build.
type Builder[S, C, E comparable] struct {
	states      map[S]*StateBuilder[S, C, E]
	stateOrder  []*StateBuilder[S, C, E]
	choices     map[C]*ChoiceBuilder[S, C, E]
	choiceOrder []*ChoiceBuilder[S, C, E]
	edges       []*edge[S, C, E]
	errs        []error
}

// New creates a new graph builder.
func New[S, C, E comparable]() *Builder[S, C, E] {
	return &Builder[S, C, E]{
		states:  make(map[S]*StateBuilder[S, C, E]),
		choices: make(map[C]*ChoiceBuilder[S, C, E]),
	}
}

// State declares a state. The first state registered by Build is the
// initial one, which is the first declared unless that state's parent is
// declared later (see Build).
// If the state already exists, it returns the existing builder.
func (b *Builder[S, C, E]) State(id S) *StateBuilder[S, C, E] {
	if sb, ok := b.states[id]; ok {
		return sb
	}
	sb := &StateBuilder[S, C, E]{id: id, builder: b}
	b.states[id] = sb
	b.stateOrder = append(b.stateOrder, sb)
	return sb
}

// Choice declares a choicepoint. Calling it again for the same id returns
// the existing builder; passing a second decision is recorded as a duplicate.
func (b *Builder[S, C, E]) Choice(id C, decision choicefsm.Decision) *ChoiceBuilder[S, C, E] {
	if cb, ok := b.choices[id]; ok {
		if decision != nil {
			b.errs = append(b.errs, &domain.RegistrationError{
				Op:   "add choicepoint",
				Kind: domain.KindChoicepoint,
				ID:   fmt.Sprint(id),
				Err:  domain.ErrDuplicateID,
			})
		}
		return cb
	}
	cb := &ChoiceBuilder[S, C, E]{id: id, decision: decision, builder: b}
	b.choices[id] = cb
	b.choiceOrder = append(b.choiceOrder, cb)
	return cb
}

// Build registers every declaration on a new Fsm and validates it.
// States go first (a parent declared after its child is registered just
// before it), then choicepoints, then transitions in declaration order.
func (b *Builder[S, C, E]) Build(opts ...choicefsm.Option) (*choicefsm.Fsm[S, C, E], error) {
	m := choicefsm.New[S, C, E](opts...)
	errs := append([]error(nil), b.errs...)

	registered := make(map[S]bool)
	var register func(sb *StateBuilder[S, C, E], visiting map[S]bool) error
	register = func(sb *StateBuilder[S, C, E], visiting map[S]bool) error {
		if registered[sb.id] {
			return nil
		}
		if visiting[sb.id] {
			return fmt.Errorf("state %v: parent cycle", sb.id)
		}
		visiting[sb.id] = true
		if sb.parent == nil {
			registered[sb.id] = true
			return m.AddState(sb.id)
		}
		if p, ok := b.states[*sb.parent]; ok {
			if err := register(p, visiting); err != nil {
				return err
			}
		}
		registered[sb.id] = true
		return m.AddSubstate(sb.id, *sb.parent)
	}
	for _, sb := range b.stateOrder {
		if err := register(sb, make(map[S]bool)); err != nil {
			errs = append(errs, err)
		}
	}

	for _, cb := range b.choiceOrder {
		if err := m.AddChoicepoint(cb.id, cb.decision); err != nil {
			errs = append(errs, err)
		}
	}

	for _, e := range b.edges {
		if err := e.apply(m); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return nil, &domain.AggregateError{Errors: errs}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// edge is one recorded transition, applied at Build time.
type edge[S, C, E comparable] struct {
	fromState  *S
	fromChoice *C
	event      E
	branch     bool

	toState  *S
	toChoice *C
	action   choicefsm.Action
}

func (e *edge[S, C, E]) apply(m *choicefsm.Fsm[S, C, E]) error {
	switch {
	case e.fromState != nil && e.toState != nil:
		return m.AddTransition(e.event, *e.fromState, *e.toState, e.action)
	case e.fromState != nil && e.toChoice != nil:
		return m.AddTransitionToChoice(e.event, *e.fromState, *e.toChoice, e.action)
	case e.fromChoice != nil && e.toState != nil:
		return m.AddTransitionFromChoiceToState(*e.fromChoice, e.branch, *e.toState, e.action)
	case e.fromChoice != nil && e.toChoice != nil:
		if e.action != nil {
			return fmt.Errorf("choicepoint %v branch %t: %w", *e.fromChoice, e.branch, ErrChainedAction)
		}
		return m.AddTransitionFromChoiceToChoice(*e.fromChoice, e.branch, *e.toChoice)
	default:
		return errors.New("transition without a target")
	}
}
