package observability

import (
	"context"
	"strconv"

	"github.com/aretw0/choicefsm/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts what machines do.
type Metrics struct {
	Transitions *prometheus.CounterVec
	Decisions   *prometheus.CounterVec
	Unhandled   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "choicefsm_transitions_total",
				Help: "Total number of completed state changes",
			},
			[]string{"from", "to"},
		),
		Decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "choicefsm_decisions_total",
				Help: "Total number of choicepoint decisions by branch",
			},
			[]string{"choicepoint", "branch"},
		),
		Unhandled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "choicefsm_unhandled_events_total",
				Help: "Total number of events no transition handled, by the state they reached",
			},
			[]string{"state"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Transitions, m.Decisions, m.Unhandled)
	}
	return m
}

// Hooks returns lifecycle hooks that feed the counters.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStateChange: func(_ context.Context, e *domain.StateChangeEvent) {
			m.Transitions.WithLabelValues(e.From, e.To).Inc()
		},
		OnDecision: func(_ context.Context, e *domain.DecisionEvent) {
			m.Decisions.WithLabelValues(e.ChoicepointID, strconv.FormatBool(e.Branch)).Inc()
		},
		// Event names come from clients; only the state is used as a label.
		OnUnhandled: func(_ context.Context, e *domain.UnhandledEvent) {
			m.Unhandled.WithLabelValues(e.StateID).Inc()
		},
	}
}
