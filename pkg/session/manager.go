package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/choicefsm"
	"github.com/aretw0/choicefsm/internal/logging"
	"github.com/aretw0/choicefsm/pkg/domain"
	"github.com/aretw0/choicefsm/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed session lock survives a
// crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager drives many independent sessions over one validated machine.
// Each session is a persisted snapshot; the machine's own current state is
// never touched.
//
// Calls for the same session are serialized. Lock entries are reference
// counted so idle sessions leave nothing behind.
type Manager[S, C, E comparable] struct {
	machine *choicefsm.Fsm[S, C, E]
	store   ports.StateStore[S]

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*options)

type options struct {
	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(o *options) {
		o.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// NewManager creates a session manager. machine must be fully built; it is
// only read from here on.
func NewManager[S, C, E comparable](machine *choicefsm.Fsm[S, C, E], store ports.StateStore[S], opts ...Option) *Manager[S, C, E] {
	o := options{lockTTL: DefaultLockTTL, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Manager[S, C, E]{
		machine: machine,
		store:   store,
		locks:   make(map[string]*lockEntry),
		locker:  o.locker,
		lockTTL: o.lockTTL,
		logger:  o.logger,
	}
}

// acquire gets or creates a lock entry and increments its reference count.
func (m *Manager[S, C, E]) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager[S, C, E]) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// activeLocks reports how many lock entries are held.
func (m *Manager[S, C, E]) activeLocks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

// Machine returns the shared machine.
func (m *Manager[S, C, E]) Machine() *choicefsm.Fsm[S, C, E] {
	return m.machine
}

// Load retrieves an existing session.
func (m *Manager[S, C, E]) Load(ctx context.Context, sessionID string) (*domain.Snapshot[S], error) {
	var snap *domain.Snapshot[S]
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		snap, err = m.store.Load(ctx, sessionID)
		return err
	})
	return snap, err
}

// LoadOrStart loads a session, creating it at the machine's initial state
// when it does not exist yet.
func (m *Manager[S, C, E]) LoadOrStart(ctx context.Context, sessionID string) (*domain.Snapshot[S], error) {
	var snap *domain.Snapshot[S]
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		snap, err = m.loadOrStart(ctx, sessionID)
		return err
	})
	return snap, err
}

func (m *Manager[S, C, E]) loadOrStart(ctx context.Context, sessionID string) (*domain.Snapshot[S], error) {
	snap, err := m.store.Load(ctx, sessionID)
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, fmt.Errorf("failed to check session existence: %w", err)
	}

	start, ok := m.machine.InitialStateID()
	if !ok {
		return nil, domain.ErrNoStates
	}
	snap = domain.NewSnapshot(start)
	if err := m.store.Save(ctx, sessionID, snap); err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}
	m.logger.Debug("session started", "session_id", sessionID, "state", fmt.Sprint(start))
	return snap, nil
}

// Dispatch feeds event to a session, starting it first if needed.
// The snapshot is saved only when the event was handled; on error the
// stored snapshot is left as it was.
func (m *Manager[S, C, E]) Dispatch(ctx context.Context, sessionID string, event E) (*domain.Snapshot[S], bool, error) {
	var (
		snap    *domain.Snapshot[S]
		handled bool
	)
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		snap, err = m.loadOrStart(ctx, sessionID)
		if err != nil {
			return err
		}

		next, ok, err := m.machine.Step(ctx, snap.StateID, event)
		if err != nil {
			return fmt.Errorf("session %s: %w", sessionID, err)
		}
		if !ok {
			return nil
		}

		handled = true
		snap.Advance(next)
		return m.store.Save(ctx, sessionID, snap)
	})
	if err != nil {
		return nil, false, err
	}
	return snap, handled, nil
}

// Delete removes the session from the store.
func (m *Manager[S, C, E]) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager[S, C, E]) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// WithLock executes fn while holding the lock for the session.
func (m *Manager[S, C, E]) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
