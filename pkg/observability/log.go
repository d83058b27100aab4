package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/choicefsm/pkg/domain"
)

// LogHooks returns lifecycle hooks that write one Info record per event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			attrs := []any{
				"from", e.From,
				"to", e.To,
				"to_kind", e.ToKind.String(),
				"event", e.Trigger,
				"hop", e.Hop,
			}
			if e.Branch != nil {
				attrs = append(attrs, "branch", *e.Branch)
			}
			logger.InfoContext(ctx, "transition", attrs...)
		},
		OnDecision: func(ctx context.Context, e *domain.DecisionEvent) {
			logger.InfoContext(ctx, "decision",
				"choicepoint", e.ChoicepointID,
				"branch", e.Branch,
			)
		},
		OnUnhandled: func(ctx context.Context, e *domain.UnhandledEvent) {
			logger.InfoContext(ctx, "unhandled",
				"state", e.StateID,
				"event", e.Trigger,
			)
		},
		OnStateChange: func(ctx context.Context, e *domain.StateChangeEvent) {
			logger.InfoContext(ctx, "state_change",
				"from", e.From,
				"to", e.To,
				"event", e.Trigger,
			)
		},
	}
}
