package middleware_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/aretw0/choicefsm/pkg/adapters/memory"
	"github.com/aretw0/choicefsm/pkg/domain"
	"github.com/aretw0/choicefsm/pkg/persistence/middleware"
	"github.com/aretw0/choicefsm/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain_Contract(t *testing.T) {
	store := middleware.Chain[string](memory.NewStore[string](),
		middleware.NewInstrumented[string](middleware.NewStoreMetrics(nil), slog.New(slog.NewTextHandler(io.Discard, nil))),
		middleware.NewHistoryLimit[string](10),
	)
	ports.RunStateStoreContract(t, store)
}

func TestHistoryLimit(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewStore[string]()
	store := middleware.NewHistoryLimit[string](2)(inner)

	snap := domain.NewSnapshot("a")
	snap.Advance("b")
	snap.Advance("c")
	require.NoError(t, store.Save(ctx, "s", snap))

	loaded, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, loaded.History)
	assert.Equal(t, 2, loaded.Steps)
	assert.Equal(t, []string{"a", "b", "c"}, snap.History, "the caller's snapshot is untouched")
}

func TestHistoryLimit_Disabled(t *testing.T) {
	inner := memory.NewStore[string]()
	assert.Same(t, ports.StateStore[string](inner), middleware.NewHistoryLimit[string](0)(inner))
}

type brokenStore struct {
	*memory.Store[string]
}

func (brokenStore) Save(context.Context, string, *domain.Snapshot[string]) error {
	return errors.New("write refused")
}

func TestInstrumented(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	metrics := middleware.NewStoreMetrics(reg)
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	store := middleware.NewInstrumented[string](metrics, logger)(brokenStore{memory.NewStore[string]()})

	_, err := store.Load(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.Errors.WithLabelValues("load")))

	assert.Error(t, store.Save(ctx, "s", domain.NewSnapshot("a")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Errors.WithLabelValues("save")))
	assert.Contains(t, logs.String(), "write refused")

	_, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, testutil.CollectAndCount(metrics.Duration))
}
