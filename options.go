package choicefsm

import (
	"log/slog"

	"github.com/aretw0/choicefsm/pkg/domain"
)

// DefaultMaxChainDepth bounds the number of choicepoints resolved by one dispatch.
const DefaultMaxChainDepth = 32

// FiringMode determines how the machine handles overlapping FeedEvent calls.
type FiringMode int

const (
	// FiringImmediate dispatches synchronously and rejects a FeedEvent issued
	// while another dispatch is running with domain.ErrDispatchInProgress.
	// This is the default mode.
	FiringImmediate FiringMode = iota

	// FiringQueued appends overlapping events to a queue that the running
	// dispatch drains, in order, before returning.
	FiringQueued
)

type config struct {
	logger        *slog.Logger
	hooks         domain.LifecycleHooks
	maxChainDepth int
	strict        bool
	firingMode    FiringMode
}

// Option defines a functional option for configuring the Fsm.
type Option func(*config)

// WithLogger sets a custom structured logger for the machine.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.hooks = hooks
	}
}

// WithMaxChainDepth bounds how many choicepoints a single dispatch may
// resolve before failing with domain.ErrCycleDetected.
func WithMaxChainDepth(depth int) Option {
	return func(c *config) {
		if depth > 0 {
			c.maxChainDepth = depth
		}
	}
}

// WithStrictTransitions makes re-registering a transition for an occupied
// (state, event) or (choicepoint, branch) slot fail with
// domain.ErrTransitionExists instead of replacing it.
func WithStrictTransitions() Option {
	return func(c *config) {
		c.strict = true
	}
}

// WithFiringMode selects how overlapping FeedEvent calls are handled.
func WithFiringMode(mode FiringMode) Option {
	return func(c *config) {
		c.firingMode = mode
	}
}
