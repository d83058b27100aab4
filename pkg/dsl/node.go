package dsl

import "github.com/aretw0/choicefsm"

// StateBuilder provides a fluent API for configuring a state.
type StateBuilder[S, C, E comparable] struct {
	id      S
	parent  *S
	builder *Builder[S, C, E]
}

// Parent nests the state under another state.
func (s *StateBuilder[S, C, E]) Parent(parent S) *StateBuilder[S, C, E] {
	s.parent = &parent
	return s
}

// On starts a transition fired by event.
func (s *StateBuilder[S, C, E]) On(event E) *EventBuilder[S, C, E] {
	id := s.id
	e := &edge[S, C, E]{fromState: &id, event: event}
	return &EventBuilder[S, C, E]{edge: e, state: s}
}

// EventBuilder configures a transition leaving a state.
type EventBuilder[S, C, E comparable] struct {
	edge  *edge[S, C, E]
	state *StateBuilder[S, C, E]
}

// Do sets the action run when the transition fires.
func (e *EventBuilder[S, C, E]) Do(action choicefsm.Action) *EventBuilder[S, C, E] {
	e.edge.action = action
	return e
}

// Go ends the transition at a state.
func (e *EventBuilder[S, C, E]) Go(to S) *StateBuilder[S, C, E] {
	e.edge.toState = &to
	e.state.builder.edges = append(e.state.builder.edges, e.edge)
	return e.state
}

// Choose ends the transition at a choicepoint.
func (e *EventBuilder[S, C, E]) Choose(to C) *StateBuilder[S, C, E] {
	e.edge.toChoice = &to
	e.state.builder.edges = append(e.state.builder.edges, e.edge)
	return e.state
}

// ChoiceBuilder provides a fluent API for configuring a choicepoint.
type ChoiceBuilder[S, C, E comparable] struct {
	id       C
	decision choicefsm.Decision
	builder  *Builder[S, C, E]
}

// Then configures the branch taken when the decision returns true.
func (c *ChoiceBuilder[S, C, E]) Then() *BranchBuilder[S, C, E] {
	return c.When(true)
}

// Else configures the branch taken when the decision returns false.
func (c *ChoiceBuilder[S, C, E]) Else() *BranchBuilder[S, C, E] {
	return c.When(false)
}

// When configures the given branch.
func (c *ChoiceBuilder[S, C, E]) When(branch bool) *BranchBuilder[S, C, E] {
	id := c.id
	e := &edge[S, C, E]{fromChoice: &id, branch: branch}
	return &BranchBuilder[S, C, E]{edge: e, choice: c}
}

// BranchBuilder configures one branch of a choicepoint.
type BranchBuilder[S, C, E comparable] struct {
	edge   *edge[S, C, E]
	choice *ChoiceBuilder[S, C, E]
}

// Do sets the action run when the branch is taken. Only branches ending at a
// state may carry one.
func (b *BranchBuilder[S, C, E]) Do(action choicefsm.Action) *BranchBuilder[S, C, E] {
	b.edge.action = action
	return b
}

// Go ends the branch at a state.
func (b *BranchBuilder[S, C, E]) Go(to S) *ChoiceBuilder[S, C, E] {
	b.edge.toState = &to
	b.choice.builder.edges = append(b.choice.builder.edges, b.edge)
	return b.choice
}

// Choose chains the branch to another choicepoint.
func (b *BranchBuilder[S, C, E]) Choose(to C) *ChoiceBuilder[S, C, E] {
	b.edge.toChoice = &to
	b.choice.builder.edges = append(b.choice.builder.edges, b.edge)
	return b.choice
}
