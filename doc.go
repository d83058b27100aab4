/*
Package choicefsm is a hierarchical finite-state-machine engine whose
transitions may route through choicepoints.

A machine is a graph of two kinds of components. States are stable points
where the machine rests between events; a state may be nested under a parent
state, and events it does not handle fall back to its ancestors.
Choicepoints are transient: when a transition lands on one, its decision is
evaluated and the machine follows the true or false branch, possibly into
another choicepoint, until a state is reached.

# Usage

Build the graph once, validate it, then feed it events:

	m := choicefsm.New[State, Choice, Event]()

	_ = m.AddState(Idle)    // first state: initial and current
	_ = m.AddState(Results)
	_ = m.AddChoicepoint(HasScan, func() bool { return scanned })

	_ = m.AddTransitionToChoice(Show, Idle, HasScan, nil)
	_ = m.AddTransitionFromChoiceToState(HasScan, true, Results, nil)
	_ = m.AddTransitionFromChoiceToState(HasScan, false, Idle, warn)
	_ = m.AddTransition(Back, Results, Idle, nil)

	if err := m.Validate(); err != nil {
		log.Fatal(err)
	}

	if err := m.FeedEvent(Show); err != nil {
		log.Fatal(err)
	}

Construction errors are returned immediately and wrap domain.ErrDuplicateID or
domain.ErrNoSuchElement. Validate reports every structural problem at once.
Unhandled events are not errors: they are logged, reported to the
OnUnhandled hook and leave the machine where it is.

# Related packages

  - pkg/dsl: fluent builder that collects every registration error.
  - pkg/adapters/definition: machines described in YAML or JSON.
  - pkg/session: many independent cursors over one graph, with persistence.
  - pkg/observability: Prometheus counters fed by lifecycle hooks.
*/
package choicefsm
