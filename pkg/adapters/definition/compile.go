package definition

import (
	"errors"
	"fmt"

	"github.com/aretw0/choicefsm"
	"github.com/aretw0/choicefsm/pkg/domain"
	"github.com/aretw0/choicefsm/pkg/dsl"
	"github.com/aretw0/choicefsm/pkg/registry"
)

// Machine is the concrete machine type produced from a definition.
type Machine = choicefsm.Fsm[string, string, string]

var (
	// ErrIDCollision is returned when a state and a choicepoint share an id.
	ErrIDCollision = errors.New("id used by both a state and a choicepoint")

	// ErrMalformedTransition is returned for transitions missing or mixing
	// the event and branch fields.
	ErrMalformedTransition = errors.New("malformed transition")
)

// Compile builds and validates a machine from def, resolving callback names
// through reg. An id listed twice is an error, never a merge.
func Compile(def *Definition, reg *registry.Registry, opts ...choicefsm.Option) (*Machine, error) {
	var errs []error
	b := dsl.New[string, string, string]()

	states := make(map[string]bool, len(def.States))
	for _, s := range def.States {
		if states[s.ID] {
			errs = append(errs, &domain.RegistrationError{
				Op:   "add state",
				Kind: domain.KindState,
				ID:   s.ID,
				Err:  domain.ErrDuplicateID,
			})
			continue
		}
		states[s.ID] = true
		sb := b.State(s.ID)
		if s.Parent != "" {
			sb.Parent(s.Parent)
		}
	}

	choices := make(map[string]bool, len(def.Choicepoints))
	for _, c := range def.Choicepoints {
		if states[c.ID] {
			errs = append(errs, fmt.Errorf("%q: %w", c.ID, ErrIDCollision))
			continue
		}
		if choices[c.ID] {
			errs = append(errs, &domain.RegistrationError{
				Op:   "add choicepoint",
				Kind: domain.KindChoicepoint,
				ID:   c.ID,
				Err:  domain.ErrDuplicateID,
			})
			continue
		}
		choices[c.ID] = true
		decision, err := reg.Decision(c.Decision)
		if err != nil {
			errs = append(errs, fmt.Errorf("choicepoint %q: %w", c.ID, err))
			continue
		}
		b.Choice(c.ID, decision)
	}

	for i, t := range def.Transitions {
		if err := addTransition(b, reg, t, states, choices); err != nil {
			errs = append(errs, fmt.Errorf("transition %d (%s -> %s): %w", i, t.From, t.To, err))
		}
	}

	if len(errs) > 0 {
		return nil, &domain.AggregateError{Errors: errs}
	}

	m, err := b.Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("definition %q: %w", def.Name, err)
	}
	return m, nil
}

func addTransition(b *dsl.Builder[string, string, string], reg *registry.Registry, t Transition, states, choices map[string]bool) error {
	action, err := reg.Action(t.Action)
	if err != nil {
		return err
	}

	if choices[t.From] {
		if t.Branch == nil || t.Event != "" {
			return fmt.Errorf("choicepoint source needs a branch and no event: %w", ErrMalformedTransition)
		}
		// Choice returns the existing builder; a nil decision is not a redeclaration.
		br := b.Choice(t.From, nil).When(*t.Branch)
		if action != nil {
			br.Do(action)
		}
		if choices[t.To] {
			br.Choose(t.To)
		} else {
			br.Go(t.To)
		}
		return nil
	}

	if !states[t.From] {
		return fmt.Errorf("source %q: %w", t.From, domain.ErrNoSuchElement)
	}
	if t.Event == "" || t.Branch != nil {
		return fmt.Errorf("state source needs an event and no branch: %w", ErrMalformedTransition)
	}
	ev := b.State(t.From).On(t.Event)
	if action != nil {
		ev.Do(action)
	}
	if choices[t.To] {
		ev.Choose(t.To)
	} else {
		ev.Go(t.To)
	}
	return nil
}
