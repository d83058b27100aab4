package choicefsm

import (
	"context"

	"github.com/aretw0/choicefsm/pkg/domain"
)

type queuedEvent[E comparable] struct {
	ctx   context.Context
	event E
}

// FeedEvent dispatches event from the current state.
//
// The transition is looked up on the current state and then on each of its
// ancestors. An event nobody handles is reported to the OnUnhandled hook and
// leaves the machine where it is; it is not an error. When the transition
// leads to a choicepoint, decisions are evaluated until a state is reached.
// The current state changes only once the whole chain has resolved.
func (f *Fsm[S, C, E]) FeedEvent(event E) error {
	return f.FeedEventCtx(context.Background(), event)
}

// FeedEventCtx is FeedEvent with a context that is handed to the lifecycle
// hooks. A cancelled context aborts the dispatch before any action runs.
func (f *Fsm[S, C, E]) FeedEventCtx(ctx context.Context, event E) error {
	_, err := f.Fire(ctx, event)
	return err
}

// Fire is FeedEventCtx that also reports whether a transition handled event.
// In FiringQueued mode an event fed from inside a running dispatch is only
// queued, and Fire reports false for it.
func (f *Fsm[S, C, E]) Fire(ctx context.Context, event E) (bool, error) {
	if f.cfg.firingMode == FiringQueued {
		return f.feedQueued(ctx, event)
	}

	f.mu.Lock()
	if f.current == nil {
		f.mu.Unlock()
		return false, domain.ErrNoStates
	}
	if f.firing {
		f.mu.Unlock()
		return false, domain.ErrDispatchInProgress
	}
	f.firing = true
	origin := f.current
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.firing = false
		f.mu.Unlock()
	}()

	return f.fire(ctx, origin, event)
}

// feedQueued reports whether the caller's own event was handled; the events
// queued behind it do not change the result.
func (f *Fsm[S, C, E]) feedQueued(ctx context.Context, event E) (bool, error) {
	f.mu.Lock()
	if f.current == nil {
		f.mu.Unlock()
		return false, domain.ErrNoStates
	}
	f.queue = append(f.queue, queuedEvent[E]{ctx: ctx, event: event})
	if f.firing {
		f.mu.Unlock()
		return false, nil
	}
	f.firing = true
	f.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			f.mu.Lock()
			f.firing = false
			f.queue = nil
			f.mu.Unlock()
			panic(r)
		}
	}()

	var handled bool
	for first := true; ; first = false {
		f.mu.Lock()
		if len(f.queue) == 0 {
			f.firing = false
			f.mu.Unlock()
			return handled, nil
		}
		next := f.queue[0]
		f.queue = f.queue[1:]
		origin := f.current
		f.mu.Unlock()

		ok, err := f.fire(next.ctx, origin, next.event)
		if err != nil {
			f.mu.Lock()
			dropped := len(f.queue)
			f.queue = nil
			f.firing = false
			f.mu.Unlock()
			if dropped > 0 {
				f.cfg.logger.Warn("dropping queued events after failed dispatch",
					"dropped", dropped,
					"err", err)
			}
			return handled, err
		}
		if first {
			handled = ok
		}
	}
}

func (f *Fsm[S, C, E]) fire(ctx context.Context, origin *state[S, C, E], event E) (bool, error) {
	next, handled, err := f.dispatch(ctx, origin, event)
	if err != nil {
		return false, err
	}
	if handled {
		f.mu.Lock()
		f.current = next
		f.mu.Unlock()
	}
	return handled, nil
}

// Step dispatches event as if the machine were resting in from, without
// touching the current state. It returns the state the dispatch ends in and
// whether any transition handled the event.
//
// Step only reads the graph, so it may be called concurrently once the graph
// is built. Sessions use it to drive many cursors over one graph.
func (f *Fsm[S, C, E]) Step(ctx context.Context, from S, event E) (S, bool, error) {
	origin, ok := f.states[from]
	if !ok {
		var zero S
		return zero, false, stateErr("step", from, domain.ErrNoSuchElement)
	}
	next, handled, err := f.dispatch(ctx, origin, event)
	if err != nil {
		return from, false, err
	}
	return next.id, handled, nil
}

// dispatch resolves event from origin. It returns origin and false when the
// event is unhandled.
func (f *Fsm[S, C, E]) dispatch(ctx context.Context, origin *state[S, C, E], event E) (*state[S, C, E], bool, error) {
	if err := ctx.Err(); err != nil {
		return origin, false, err
	}

	trigger := idString(event)
	t, searched := origin.lookup(event)
	if t == nil {
		f.cfg.logger.Debug("event unhandled",
			"state", idString(origin.id),
			"event", trigger,
			"searched", searched)
		if f.cfg.hooks.OnUnhandled != nil {
			f.cfg.hooks.OnUnhandled(ctx, &domain.UnhandledEvent{
				EventBase: domain.NewEventBase(domain.EventUnhandled),
				StateID:   idString(origin.id),
				Trigger:   trigger,
				Searched:  searched,
			})
		}
		return origin, false, nil
	}

	path := []string{idString(origin.id)}
	resolved := 0
	for hop := 0; ; hop++ {
		t.fire()
		f.emitTransition(ctx, t, trigger, hop)
		path = append(path, t.to.String())

		if t.to.kind == domain.KindState {
			dst := t.to.state
			f.cfg.logger.Debug("transition taken",
				"from", idString(origin.id),
				"to", idString(dst.id),
				"event", trigger,
				"hops", hop+1)
			if f.cfg.hooks.OnStateChange != nil {
				f.cfg.hooks.OnStateChange(ctx, &domain.StateChangeEvent{
					EventBase: domain.NewEventBase(domain.EventStateChange),
					From:      idString(origin.id),
					To:        idString(dst.id),
					Trigger:   trigger,
				})
			}
			return dst, true, nil
		}

		cp := t.to.choice
		resolved++
		if resolved > f.cfg.maxChainDepth {
			return origin, false, &domain.ChainError{Trigger: trigger, Path: path, Err: domain.ErrCycleDetected}
		}

		branch := cp.decision()
		f.cfg.logger.Debug("choicepoint resolved",
			"choicepoint", idString(cp.id),
			"branch", branch)
		if f.cfg.hooks.OnDecision != nil {
			f.cfg.hooks.OnDecision(ctx, &domain.DecisionEvent{
				EventBase:     domain.NewEventBase(domain.EventDecision),
				ChoicepointID: idString(cp.id),
				Branch:        branch,
			})
		}

		next := cp.branch(branch)
		if next == nil {
			if branch {
				path = append(path, "<true>")
			} else {
				path = append(path, "<false>")
			}
			return origin, false, &domain.ChainError{Trigger: trigger, Path: path, Err: domain.ErrUnresolvedBranch}
		}
		t = next
	}
}

func (f *Fsm[S, C, E]) emitTransition(ctx context.Context, t *transition[S, C, E], trigger string, hop int) {
	if f.cfg.hooks.OnTransition == nil {
		return
	}
	ev := &domain.TransitionEvent{
		EventBase: domain.NewEventBase(domain.EventTransition),
		From:      t.from.String(),
		FromKind:  t.from.kind,
		To:        t.to.String(),
		ToKind:    t.to.kind,
		Trigger:   trigger,
		Hop:       hop,
	}
	if t.from.kind == domain.KindChoicepoint {
		b := t.branch
		ev.Branch = &b
	}
	f.cfg.hooks.OnTransition(ctx, ev)
}
