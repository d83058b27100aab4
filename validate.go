package choicefsm

import (
	"github.com/aretw0/choicefsm/pkg/domain"
)

// Validate checks the structural completeness of the graph:
//
//   - every state that is not a parent of another state has at least one
//     outgoing transition;
//   - every choicepoint is the target of at least one transition;
//   - every choicepoint has both branches assigned.
//
// All violations are reported together in a *domain.AggregateError whose
// members wrap domain.ErrInvalidGraph. Ids are listed in registration order.
// A machine without states returns domain.ErrNoStates, joined with the
// choicepoint violations when choicepoints were registered.
func (f *Fsm[S, C, E]) Validate() error {
	var errs []error
	if len(f.stateOrder) == 0 {
		if len(f.choiceOrder) == 0 {
			return domain.ErrNoStates
		}
		errs = append(errs, domain.ErrNoStates)
	}

	containers := make(map[*state[S, C, E]]bool)
	for _, s := range f.stateOrder {
		if s.parent != nil {
			containers[s.parent] = true
		}
	}

	var idle []string
	for _, s := range f.stateOrder {
		if !containers[s] && len(s.transitions) == 0 {
			idle = append(idle, idString(s.id))
		}
	}
	if len(idle) > 0 {
		errs = append(errs, &domain.ValidationError{
			Kind:   domain.KindState,
			IDs:    idle,
			Reason: "no outgoing transitions",
		})
	}

	reachable := make(map[*choicepoint[S, C, E]]bool)
	for _, s := range f.stateOrder {
		for _, t := range s.transitions {
			if t.to.kind == domain.KindChoicepoint {
				reachable[t.to.choice] = true
			}
		}
	}
	for _, c := range f.choiceOrder {
		for _, t := range c.branches {
			if t != nil && t.to.kind == domain.KindChoicepoint {
				reachable[t.to.choice] = true
			}
		}
	}

	var unreachable, incomplete []string
	for _, c := range f.choiceOrder {
		if !reachable[c] {
			unreachable = append(unreachable, idString(c.id))
		}
		if c.branches[0] == nil || c.branches[1] == nil {
			incomplete = append(incomplete, idString(c.id))
		}
	}
	if len(unreachable) > 0 {
		errs = append(errs, &domain.ValidationError{
			Kind:   domain.KindChoicepoint,
			IDs:    unreachable,
			Reason: "no incoming transitions",
		})
	}
	if len(incomplete) > 0 {
		errs = append(errs, &domain.ValidationError{
			Kind:   domain.KindChoicepoint,
			IDs:    incomplete,
			Reason: "both true and false branches must be assigned",
		})
	}

	if len(errs) > 0 {
		f.cfg.logger.Debug("graph validation failed", "violations", len(errs))
		return &domain.AggregateError{Errors: errs}
	}
	return nil
}
