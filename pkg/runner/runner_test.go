package runner_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/choicefsm"
	"github.com/aretw0/choicefsm/pkg/adapters/definition"
	"github.com/aretw0/choicefsm/pkg/adapters/memory"
	"github.com/aretw0/choicefsm/pkg/domain"
	"github.com/aretw0/choicefsm/pkg/registry"
	"github.com/aretw0/choicefsm/pkg/runner"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadScanner(t *testing.T) (*definition.Machine, *registry.Registry) {
	t.Helper()
	def, err := definition.LoadFile("../adapters/definition/testdata/scanner.yaml")
	require.NoError(t, err)
	reg := registry.NewRegistry()
	m, err := definition.Compile(def, reg)
	require.NoError(t, err)
	return m, reg
}

func newRunner(input string, out *bytes.Buffer, reg *registry.Registry, opts ...runner.Option) *runner.Runner {
	opts = append([]runner.Option{
		runner.WithIO(strings.NewReader(input), out),
		runner.WithFlags(reg.Flags()),
		runner.WithColorProfile(termenv.Ascii),
	}, opts...)
	return runner.NewRunner(opts...)
}

func TestRunner_Transcript(t *testing.T) {
	m, reg := loadScanner(t)
	var out bytes.Buffer

	r := newRunner("show\nscan\n?\n\nshow\nfly\n\x1b\n+x\nquit\nback\n", &out, reg)
	require.NoError(t, r.Run(context.Background(), "scanner", m))

	assert.Equal(t, ""+
		"● menu  [scan, show]\n"+
		"● menu  [scan, show]\n"+
		"● scanning  [done, scan, show]\n"+
		"  scanned = true\n"+
		"● results  [back]\n"+
		"  \"fly\" ignored here\n"+
		"  error: event is empty\n", out.String())
	assert.True(t, reg.Flags().Get("x"))

	id, _ := m.StateID()
	assert.Equal(t, "results", id, "input after quit is not read")
}

func TestRunner_UnhandledReachesHooks(t *testing.T) {
	def, err := definition.LoadFile("../adapters/definition/testdata/scanner.yaml")
	require.NoError(t, err)
	reg := registry.NewRegistry()

	var unhandled []*domain.UnhandledEvent
	hooks := domain.LifecycleHooks{
		OnUnhandled: func(_ context.Context, e *domain.UnhandledEvent) {
			unhandled = append(unhandled, e)
		},
	}
	m, err := definition.Compile(def, reg, choicefsm.WithLifecycleHooks(hooks), choicefsm.WithFiringMode(choicefsm.FiringQueued))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, newRunner("fly\nscan\n", &out, reg).Run(context.Background(), "scanner", m))

	require.Len(t, unhandled, 1)
	assert.Equal(t, "menu", unhandled[0].StateID)
	assert.Equal(t, "fly", unhandled[0].Trigger)
	assert.Contains(t, out.String(), "  \"fly\" ignored here\n")

	id, _ := m.StateID()
	assert.Equal(t, "scanning", id)
}

func TestRunner_ClearFlag(t *testing.T) {
	m, reg := loadScanner(t)
	var out bytes.Buffer

	reg.Flags().Set("scanned", true)
	r := newRunner("-scanned\nshow\n", &out, reg)
	require.NoError(t, r.Run(context.Background(), "scanner", m))

	id, _ := m.StateID()
	assert.Equal(t, "menu", id)
}

func TestRunner_Cancelled(t *testing.T) {
	m, reg := loadScanner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := newRunner("scan\n", &out, reg).Run(ctx, "scanner", m)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_DurableSession(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore[string]()

	m, reg := loadScanner(t)
	var out bytes.Buffer
	r := newRunner("scan\nfly\n", &out, reg, runner.WithStore(store, "user-1"))
	require.NoError(t, r.Run(ctx, "scanner", m))

	snap, err := store.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "scanning", snap.StateID)
	assert.Equal(t, []string{"menu", "scanning"}, snap.History)
	assert.Equal(t, 1, snap.Steps)

	// A fresh machine picks the session up where it stopped.
	m2, reg2 := loadScanner(t)
	out.Reset()
	r = newRunner("done\n", &out, reg2, runner.WithStore(store, "user-1"))
	require.NoError(t, r.Run(ctx, "scanner", m2))
	assert.True(t, strings.HasPrefix(out.String(), "● scanning"))

	snap, err = store.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "menu", snap.StateID)
	assert.Equal(t, 2, snap.Steps)
}

func TestRunner_StoreNeedsSession(t *testing.T) {
	m, reg := loadScanner(t)
	var out bytes.Buffer
	r := newRunner("", &out, reg, runner.WithStore(memory.NewStore[string](), ""))
	assert.ErrorIs(t, r.Run(context.Background(), "scanner", m), runner.ErrSessionRequired)
}
