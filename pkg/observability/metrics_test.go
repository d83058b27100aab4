package observability_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/aretw0/choicefsm"
	"github.com/aretw0/choicefsm/pkg/domain"
	"github.com/aretw0/choicefsm/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGate(t *testing.T, hooks domain.LifecycleHooks, open *bool) *choicefsm.Fsm[string, string, string] {
	t.Helper()
	m := choicefsm.New[string, string, string](choicefsm.WithLifecycleHooks(hooks))
	require.NoError(t, m.AddState("closed"))
	require.NoError(t, m.AddState("open"))
	require.NoError(t, m.AddChoicepoint("badge", func() bool { return *open }))
	require.NoError(t, m.AddTransitionToChoice("push", "closed", "badge", nil))
	require.NoError(t, m.AddTransitionFromChoiceToState("badge", true, "open", nil))
	require.NoError(t, m.AddTransitionFromChoiceToState("badge", false, "closed", nil))
	require.NoError(t, m.AddTransition("close", "open", "closed", nil))
	return m
}

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	open := false
	m := newGate(t, metrics.Hooks(), &open)

	require.NoError(t, m.FeedEvent("push"))
	open = true
	require.NoError(t, m.FeedEvent("push"))
	require.NoError(t, m.FeedEvent("push"))
	require.NoError(t, m.FeedEvent("close"))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Transitions.WithLabelValues("closed", "closed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Transitions.WithLabelValues("closed", "open")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Transitions.WithLabelValues("open", "closed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Decisions.WithLabelValues("badge", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Decisions.WithLabelValues("badge", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Unhandled.WithLabelValues("open")))

	expected := `
# HELP choicefsm_unhandled_events_total Total number of events no transition handled, by the state they reached
# TYPE choicefsm_unhandled_events_total counter
choicefsm_unhandled_events_total{state="open"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "choicefsm_unhandled_events_total"))
}

func TestMetrics_UnhandledSeriesStayBounded(t *testing.T) {
	metrics := observability.NewMetrics(nil)
	open := false
	m := newGate(t, metrics.Hooks(), &open)

	for i := 0; i < 500; i++ {
		require.NoError(t, m.FeedEvent(fmt.Sprintf("noise-%d", i)))
	}

	assert.Equal(t, 1, testutil.CollectAndCount(metrics.Unhandled))
	assert.Equal(t, 500.0, testutil.ToFloat64(metrics.Unhandled.WithLabelValues("closed")))
}

func TestMetrics_NilRegisterer(t *testing.T) {
	metrics := observability.NewMetrics(nil)
	assert.Equal(t, 0, testutil.CollectAndCount(metrics.Transitions))

	reg := prometheus.NewRegistry()
	assert.NoError(t, reg.Register(metrics.Transitions), "collectors are left unregistered")
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	open := true
	m := newGate(t, domain.ChainHooks(observability.LogHooks(logger)), &open)

	require.NoError(t, m.FeedEvent("push"))

	var msgs []string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		msgs = append(msgs, rec["msg"].(string))
	}
	assert.Equal(t, []string{"transition", "decision", "transition", "state_change"}, msgs)
}
