package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/choicefsm/pkg/domain"
	"github.com/aretw0/choicefsm/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics holds the collectors fed by NewInstrumented.
type StoreMetrics struct {
	Duration *prometheus.HistogramVec
	Errors   *prometheus.CounterVec
}

// NewStoreMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	m := &StoreMetrics{
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "choicefsm_store_operation_duration_seconds",
				Help:    "Duration of session store operations",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"op"},
		),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "choicefsm_store_errors_total",
				Help: "Total number of failed session store operations",
			},
			[]string{"op"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Duration, m.Errors)
	}
	return m
}

type instrumented[S comparable] struct {
	next    ports.StateStore[S]
	metrics *StoreMetrics
	logger  *slog.Logger
}

// NewInstrumented times every store operation and logs failures.
// A missing session is an answer, not a failure.
func NewInstrumented[S comparable](metrics *StoreMetrics, logger *slog.Logger) Middleware[S] {
	return func(next ports.StateStore[S]) ports.StateStore[S] {
		return &instrumented[S]{next: next, metrics: metrics, logger: logger}
	}
}

func (m *instrumented[S]) observe(ctx context.Context, op, sessionID string, start time.Time, err error) {
	m.metrics.Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err == nil || errors.Is(err, domain.ErrSessionNotFound) {
		return
	}
	m.metrics.Errors.WithLabelValues(op).Inc()
	m.logger.WarnContext(ctx, "store operation failed", "op", op, "session_id", sessionID, "err", err)
}

func (m *instrumented[S]) Save(ctx context.Context, sessionID string, snap *domain.Snapshot[S]) error {
	start := time.Now()
	err := m.next.Save(ctx, sessionID, snap)
	m.observe(ctx, "save", sessionID, start, err)
	return err
}

func (m *instrumented[S]) Load(ctx context.Context, sessionID string) (*domain.Snapshot[S], error) {
	start := time.Now()
	snap, err := m.next.Load(ctx, sessionID)
	m.observe(ctx, "load", sessionID, start, err)
	return snap, err
}

func (m *instrumented[S]) Delete(ctx context.Context, sessionID string) error {
	start := time.Now()
	err := m.next.Delete(ctx, sessionID)
	m.observe(ctx, "delete", sessionID, start, err)
	return err
}

func (m *instrumented[S]) List(ctx context.Context) ([]string, error) {
	start := time.Now()
	ids, err := m.next.List(ctx)
	m.observe(ctx, "list", "", start, err)
	return ids, err
}
