package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/choicefsm"
	"github.com/aretw0/choicefsm/pkg/adapters/memory"
	"github.com/aretw0/choicefsm/pkg/domain"
	"github.com/aretw0/choicefsm/pkg/ports"
	"github.com/aretw0/choicefsm/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke lost updates if locking is missing.
type SlowStore struct {
	*memory.Store[string]
}

func (s *SlowStore) Save(ctx context.Context, sessionID string, snap *domain.Snapshot[string]) error {
	time.Sleep(2 * time.Millisecond)
	return s.Store.Save(ctx, sessionID, snap)
}

func (s *SlowStore) Load(ctx context.Context, sessionID string) (*domain.Snapshot[string], error) {
	time.Sleep(2 * time.Millisecond)
	return s.Store.Load(ctx, sessionID)
}

// newSwitch builds off -flip-> on -flip-> off, with "jam" routed through a
// choicepoint whose false branch is never assigned.
func newSwitch(t *testing.T) *choicefsm.Fsm[string, string, string] {
	t.Helper()
	m := choicefsm.New[string, string, string]()
	require.NoError(t, m.AddState("off"))
	require.NoError(t, m.AddState("on"))
	require.NoError(t, m.AddChoicepoint("stuck", func() bool { return false }))
	require.NoError(t, m.AddTransition("flip", "off", "on", nil))
	require.NoError(t, m.AddTransition("flip", "on", "off", nil))
	require.NoError(t, m.AddTransitionToChoice("jam", "on", "stuck", nil))
	require.NoError(t, m.AddTransitionFromChoiceToState("stuck", true, "off", nil))
	return m
}

func TestManager_Dispatch(t *testing.T) {
	ctx := context.Background()
	mgr := session.NewManager(newSwitch(t), memory.NewStore[string]())

	snap, handled, err := mgr.Dispatch(ctx, "s1", "flip")
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, "on", snap.StateID)
	assert.Equal(t, []string{"off", "on"}, snap.History)

	snap, handled, err = mgr.Dispatch(ctx, "s1", "unknown")
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Equal(t, "on", snap.StateID)
	assert.Equal(t, 1, snap.Steps)

	other, err := mgr.LoadOrStart(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, "off", other.StateID, "sessions are independent")

	_, ok := mgr.Machine().StateID()
	require.True(t, ok)
	assert.True(t, mgr.Machine().IsInState("off"), "the shared machine is never moved")

	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, ids)
}

func TestManager_DispatchErrorKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	mgr := session.NewManager(newSwitch(t), memory.NewStore[string]())

	_, _, err := mgr.Dispatch(ctx, "s", "flip")
	require.NoError(t, err)

	_, _, err = mgr.Dispatch(ctx, "s", "jam")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnresolvedBranch)

	snap, err := mgr.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "on", snap.StateID)
	assert.Equal(t, 1, snap.Steps)
}

func TestManager_LoadMissing(t *testing.T) {
	mgr := session.NewManager(newSwitch(t), memory.NewStore[string]())
	_, err := mgr.Load(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_LoadOrStartWithoutStates(t *testing.T) {
	mgr := session.NewManager(choicefsm.New[string, string, string](), memory.NewStore[string]())
	_, err := mgr.LoadOrStart(context.Background(), "s")
	assert.ErrorIs(t, err, domain.ErrNoStates)
}

func TestManager_SerializesDispatch(t *testing.T) {
	ctx := context.Background()
	mgr := session.NewManager(newSwitch(t), &SlowStore{memory.NewStore[string]()})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := mgr.Dispatch(ctx, "race", "flip")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	snap, err := mgr.Load(ctx, "race")
	require.NoError(t, err)
	assert.Equal(t, 10, snap.Steps, "no dispatch may be lost")
	assert.Equal(t, "off", snap.StateID)
}

func TestManager_LockLifecycle(t *testing.T) {
	ctx := context.Background()
	mgr := session.NewManager(newSwitch(t), memory.NewStore[string]())

	for i := 0; i < 1000; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_, _, _ = mgr.Dispatch(ctx, sid, "flip")
		_ = mgr.Delete(ctx, sid)
	}

	assert.Zero(t, mgr.ActiveLocks(), "lock entries must not leak")
}

type fakeLocker struct {
	mu       sync.Mutex
	locks    int
	unlocks  int
	ttl      time.Duration
	failWith error
}

func (l *fakeLocker) Lock(_ context.Context, _ string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failWith != nil {
		return nil, l.failWith
	}
	l.locks++
	l.ttl = ttl
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.unlocks++
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	ctx := context.Background()
	locker := &fakeLocker{}
	mgr := session.NewManager(newSwitch(t), memory.NewStore[string](),
		session.WithLocker(locker),
		session.WithLockTTL(time.Second),
	)

	_, _, err := mgr.Dispatch(ctx, "s", "flip")
	require.NoError(t, err)
	require.NoError(t, mgr.Delete(ctx, "s"))

	assert.Equal(t, 2, locker.locks)
	assert.Equal(t, 2, locker.unlocks)
	assert.Equal(t, time.Second, locker.ttl)

	locker.failWith = errors.New("redis down")
	_, _, err = mgr.Dispatch(ctx, "s", "flip")
	assert.ErrorContains(t, err, "redis down")
}
