package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateID is returned when a state or choicepoint id is registered twice.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrNoSuchElement is returned when a registration references an unknown id.
	ErrNoSuchElement = errors.New("no such element")

	// ErrTransitionExists is returned in strict mode when a transition slot is
	// already taken.
	ErrTransitionExists = errors.New("transition already registered")

	// ErrNilDecision is returned when a choicepoint is registered without a decision.
	ErrNilDecision = errors.New("nil decision")

	// ErrNoStates is returned when the machine is used before any state exists.
	ErrNoStates = errors.New("no states registered")

	// ErrInvalidGraph wraps every structural validation failure.
	ErrInvalidGraph = errors.New("invalid graph")

	// ErrCycleDetected is returned when a choicepoint chain exceeds the hop limit.
	ErrCycleDetected = errors.New("choicepoint cycle detected")

	// ErrUnresolvedBranch is returned when dispatch reaches an unassigned branch.
	ErrUnresolvedBranch = errors.New("unresolved choicepoint branch")

	// ErrDispatchInProgress is returned when FeedEvent is called while another
	// dispatch on the same machine has not returned yet.
	ErrDispatchInProgress = errors.New("dispatch already in progress")

	// ErrSessionNotFound is returned when a session ID cannot be found in the store.
	ErrSessionNotFound = errors.New("session not found")
)

// RegistrationError reports a rejected builder call.
type RegistrationError struct {
	Op   string // Builder operation, e.g. "add state"
	Kind Kind   // Kind of the offending id
	ID   string // Offending id
	Err  error  // ErrDuplicateID, ErrNoSuchElement or ErrTransitionExists
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("%s: %s %q: %v", e.Op, e.Kind, e.ID, e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }

// ValidationError names every component violating one structural rule.
type ValidationError struct {
	Kind   Kind
	IDs    []string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%ss [%s]: %s", e.Kind, strings.Join(e.IDs, ", "), e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidGraph }

// AggregateError represents multiple failures reported at once.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

func (e *AggregateError) Unwrap() []error { return e.Errors }

// Errors returns all collected errors if err is an AggregateError.
// Otherwise returns nil.
func Errors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}

// ChainError reports a dispatch that could not resolve its choicepoint chain.
type ChainError struct {
	Trigger string
	// Path lists the components visited, starting at the origin state.
	Path []string
	Err  error // ErrCycleDetected or ErrUnresolvedBranch
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("event %q: %v (path: %s)", e.Trigger, e.Err, strings.Join(e.Path, " -> "))
}

func (e *ChainError) Unwrap() error { return e.Err }
