package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTransition  EventType = "transition"
	EventDecision    EventType = "decision"
	EventUnhandled   EventType = "unhandled"
	EventStateChange EventType = "state_change"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// NewEventBase stamps an event of the given type with the current time.
func NewEventBase(t EventType) EventBase {
	return EventBase{Timestamp: time.Now(), Type: t}
}

// TransitionEvent is emitted each time a transition fires, including every
// hop of a choicepoint chain.
type TransitionEvent struct {
	EventBase
	From     string `json:"from"`
	FromKind Kind   `json:"from_kind"`
	To       string `json:"to"`
	ToKind   Kind   `json:"to_kind"`
	Trigger  string `json:"trigger"`
	// Branch is set when the transition leaves a choicepoint.
	Branch *bool `json:"branch,omitempty"`
	// Hop is the position of the transition within one dispatch, starting at 0.
	Hop int `json:"hop"`
}

// DecisionEvent is emitted after a choicepoint decision is evaluated.
type DecisionEvent struct {
	EventBase
	ChoicepointID string `json:"choicepoint_id"`
	Branch        bool   `json:"branch"`
}

// UnhandledEvent is emitted when no state in the parent chain handles an event.
type UnhandledEvent struct {
	EventBase
	StateID string `json:"state_id"`
	Trigger string `json:"trigger"`
	// Searched lists the states inspected, innermost first.
	Searched []string `json:"searched"`
}

// StateChangeEvent is emitted once per dispatch that ends in a state,
// including self loops.
type StateChangeEvent struct {
	EventBase
	From    string `json:"from"`
	To      string `json:"to"`
	Trigger string `json:"trigger"`
}

// LifecycleHooks defines callbacks for engine observability.
// Any hook may be nil.
type LifecycleHooks struct {
	OnTransition  func(context.Context, *TransitionEvent)
	OnDecision    func(context.Context, *DecisionEvent)
	OnUnhandled   func(context.Context, *UnhandledEvent)
	OnStateChange func(context.Context, *StateChangeEvent)
}

// ChainHooks fans every event out to each of the given hooks, in order.
func ChainHooks(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTransition: func(ctx context.Context, e *TransitionEvent) {
			for _, h := range hooks {
				if h.OnTransition != nil {
					h.OnTransition(ctx, e)
				}
			}
		},
		OnDecision: func(ctx context.Context, e *DecisionEvent) {
			for _, h := range hooks {
				if h.OnDecision != nil {
					h.OnDecision(ctx, e)
				}
			}
		},
		OnUnhandled: func(ctx context.Context, e *UnhandledEvent) {
			for _, h := range hooks {
				if h.OnUnhandled != nil {
					h.OnUnhandled(ctx, e)
				}
			}
		},
		OnStateChange: func(ctx context.Context, e *StateChangeEvent) {
			for _, h := range hooks {
				if h.OnStateChange != nil {
					h.OnStateChange(ctx, e)
				}
			}
		},
	}
}
