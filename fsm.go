package choicefsm

import (
	"fmt"
	"sync"

	"github.com/aretw0/choicefsm/internal/logging"
	"github.com/aretw0/choicefsm/pkg/domain"
)

// Fsm is a hierarchical state machine whose transitions may route through
// choicepoints.
//
// The graph is built once with the Add* methods, checked with Validate and
// then driven with FeedEvent. Building is not safe for concurrent use; once
// built, the graph is read-only and only the current state changes.
type Fsm[S, C, E comparable] struct {
	cfg config

	states      map[S]*state[S, C, E]
	stateOrder  []*state[S, C, E]
	choices     map[C]*choicepoint[S, C, E]
	choiceOrder []*choicepoint[S, C, E]
	initial     *state[S, C, E]

	// mu protects current, firing and queue.
	mu      sync.Mutex
	current *state[S, C, E]
	firing  bool
	queue   []queuedEvent[E]
}

// New creates an empty machine. The first state added becomes both the
// initial and the current state.
func New[S, C, E comparable](opts ...Option) *Fsm[S, C, E] {
	cfg := config{
		logger:        logging.NewNop(),
		maxChainDepth: DefaultMaxChainDepth,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Fsm[S, C, E]{
		cfg:     cfg,
		states:  make(map[S]*state[S, C, E]),
		choices: make(map[C]*choicepoint[S, C, E]),
	}
}

// AddState registers a root state.
func (f *Fsm[S, C, E]) AddState(id S) error {
	if _, ok := f.states[id]; ok {
		return stateErr("add state", id, domain.ErrDuplicateID)
	}
	f.register(newState[S, C, E](id, nil))
	return nil
}

// AddSubstate registers a state nested under parent, which must already exist.
func (f *Fsm[S, C, E]) AddSubstate(id, parent S) error {
	if _, ok := f.states[id]; ok {
		return stateErr("add state", id, domain.ErrDuplicateID)
	}
	p, ok := f.states[parent]
	if !ok {
		return stateErr("add state", parent, domain.ErrNoSuchElement)
	}
	f.register(newState(id, p))
	return nil
}

func (f *Fsm[S, C, E]) register(s *state[S, C, E]) {
	f.states[s.id] = s
	f.stateOrder = append(f.stateOrder, s)
	if f.initial != nil {
		return
	}
	f.initial = s
	f.mu.Lock()
	f.current = s
	f.mu.Unlock()
}

// AddChoicepoint registers a choicepoint with the decision that selects its
// branch on every visit.
func (f *Fsm[S, C, E]) AddChoicepoint(id C, decision Decision) error {
	if _, ok := f.choices[id]; ok {
		return choiceErr("add choicepoint", id, domain.ErrDuplicateID)
	}
	if decision == nil {
		return choiceErr("add choicepoint", id, domain.ErrNilDecision)
	}
	c := &choicepoint[S, C, E]{id: id, decision: decision}
	f.choices[id] = c
	f.choiceOrder = append(f.choiceOrder, c)
	return nil
}

// AddTransition registers a state to state transition fired by event.
// A nil action means the transition only moves the cursor.
func (f *Fsm[S, C, E]) AddTransition(event E, from, to S, action Action) error {
	const op = "add transition"
	src, ok := f.states[from]
	if !ok {
		return stateErr(op, from, domain.ErrNoSuchElement)
	}
	dst, ok := f.states[to]
	if !ok {
		return stateErr(op, to, domain.ErrNoSuchElement)
	}
	return f.putEvent(op, src, event, stateTarget(dst), action)
}

// AddTransitionToChoice registers a state to choicepoint transition fired by event.
func (f *Fsm[S, C, E]) AddTransitionToChoice(event E, from S, to C, action Action) error {
	const op = "add transition to choice"
	src, ok := f.states[from]
	if !ok {
		return stateErr(op, from, domain.ErrNoSuchElement)
	}
	dst, ok := f.choices[to]
	if !ok {
		return choiceErr(op, to, domain.ErrNoSuchElement)
	}
	return f.putEvent(op, src, event, choiceTarget(dst), action)
}

// AddTransitionFromChoiceToState fills the given branch of a choicepoint
// with a transition to a state.
func (f *Fsm[S, C, E]) AddTransitionFromChoiceToState(from C, branch bool, to S, action Action) error {
	const op = "add transition from choice to state"
	src, ok := f.choices[from]
	if !ok {
		return choiceErr(op, from, domain.ErrNoSuchElement)
	}
	dst, ok := f.states[to]
	if !ok {
		return stateErr(op, to, domain.ErrNoSuchElement)
	}
	return f.putBranch(op, src, branch, stateTarget(dst), action)
}

// AddTransitionFromChoiceToChoice chains the given branch of a choicepoint
// to another choicepoint. Chained branches carry no action.
func (f *Fsm[S, C, E]) AddTransitionFromChoiceToChoice(from C, branch bool, to C) error {
	const op = "add transition from choice to choice"
	src, ok := f.choices[from]
	if !ok {
		return choiceErr(op, from, domain.ErrNoSuchElement)
	}
	dst, ok := f.choices[to]
	if !ok {
		return choiceErr(op, to, domain.ErrNoSuchElement)
	}
	return f.putBranch(op, src, branch, choiceTarget(dst), nil)
}

func (f *Fsm[S, C, E]) putEvent(op string, src *state[S, C, E], event E, to target[S, C, E], action Action) error {
	if _, exists := src.transitions[event]; exists {
		if f.cfg.strict {
			return stateErr(op, src.id, fmt.Errorf("event %v: %w", event, domain.ErrTransitionExists))
		}
		f.cfg.logger.Debug("replacing transition",
			"state", idString(src.id),
			"event", idString(event),
			"to", to.String())
	} else {
		src.events = append(src.events, event)
	}
	src.transitions[event] = &transition[S, C, E]{
		from:   stateTarget(src),
		to:     to,
		action: action,
		event:  event,
	}
	return nil
}

func (f *Fsm[S, C, E]) putBranch(op string, src *choicepoint[S, C, E], branch bool, to target[S, C, E], action Action) error {
	i := branchIndex(branch)
	if src.branches[i] != nil {
		if f.cfg.strict {
			return choiceErr(op, src.id, fmt.Errorf("branch %t: %w", branch, domain.ErrTransitionExists))
		}
		f.cfg.logger.Debug("replacing branch",
			"choicepoint", idString(src.id),
			"branch", branch,
			"to", to.String())
	}
	src.branches[i] = &transition[S, C, E]{
		from:   choiceTarget(src),
		to:     to,
		action: action,
		branch: branch,
	}
	return nil
}

// String returns a string representation of the current state.
func (f *Fsm[S, C, E]) String() string {
	id, ok := f.StateID()
	if !ok {
		return "Fsm { State = <none> }"
	}
	return fmt.Sprintf("Fsm { State = %v }", id)
}

func idString(v any) string {
	return fmt.Sprint(v)
}

func stateErr(op string, id any, err error) error {
	return &domain.RegistrationError{Op: op, Kind: domain.KindState, ID: idString(id), Err: err}
}

func choiceErr(op string, id any, err error) error {
	return &domain.RegistrationError{Op: op, Kind: domain.KindChoicepoint, ID: idString(id), Err: err}
}
