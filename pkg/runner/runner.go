package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/choicefsm"
	"github.com/aretw0/choicefsm/internal/logging"
	"github.com/aretw0/choicefsm/internal/presentation/tui"
	"github.com/aretw0/choicefsm/pkg/adapters/definition"
	"github.com/aretw0/choicefsm/pkg/domain"
	"github.com/aretw0/choicefsm/pkg/ports"
	"github.com/aretw0/choicefsm/pkg/registry"
	"github.com/muesli/termenv"
)

// ErrSessionRequired is returned by Run when a store is set without a session ID.
var ErrSessionRequired = errors.New("a session id is required to persist runs")

// Runner drives a machine from line-oriented input: one event per line.
//
// Lines starting with + or - set or clear a decision flag, ? lists the flags,
// quit or exit stops the run.
type Runner struct {
	Input       io.Reader
	Output      io.Writer
	Interactive bool
	Logger      *slog.Logger

	// Flags is the registry flag set toggled by +name / -name lines.
	Flags *registry.Flags

	// Store persists the session after every handled event. If nil, runs
	// are ephemeral.
	Store     ports.StateStore[string]
	SessionID string

	profile *termenv.Profile
}

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithIO sets the input and output streams.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *Runner) {
		r.Input = in
		r.Output = out
	}
}

// WithInteractive enables the banner and prompt.
func WithInteractive(interactive bool) Option {
	return func(r *Runner) {
		r.Interactive = interactive
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithFlags sets the flag set driven by +name / -name lines.
func WithFlags(flags *registry.Flags) Option {
	return func(r *Runner) {
		r.Flags = flags
	}
}

// WithStore persists the run as session id.
func WithStore(store ports.StateStore[string], id string) Option {
	return func(r *Runner) {
		r.Store = store
		r.SessionID = id
	}
}

// WithColorProfile forces a colour profile instead of detecting it from the output.
func WithColorProfile(p termenv.Profile) Option {
	return func(r *Runner) {
		r.profile = &p
	}
}

// NewRunner creates a Runner reading Stdin and writing Stdout.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Input:  os.Stdin,
		Output: os.Stdout,
		Logger: logging.NewNop(),
		Flags:  registry.NewFlags(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run feeds input lines to m until EOF, quit or cancellation.
// Dispatch errors are printed and leave the machine where it was.
func (r *Runner) Run(ctx context.Context, name string, m *definition.Machine) error {
	var outOpts []termenv.OutputOption
	if r.profile != nil {
		outOpts = append(outOpts, termenv.WithProfile(*r.profile))
	}
	p := tui.NewPrinter(r.Output, outOpts...)

	snap, err := r.resume(ctx, m)
	if err != nil {
		return err
	}

	if r.Interactive {
		p.Banner(name, choicefsm.Version)
	}
	show := func() {
		id, _ := m.StateID()
		p.State(id, m.HandledEvents())
	}
	show()

	scanner := bufio.NewScanner(r.Input)
	for {
		if r.Interactive {
			p.Prompt()
		}
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "quit" || line == "exit":
			return nil
		case line == "?":
			p.Flags(r.Flags.Snapshot())
			continue
		case len(line) > 1 && (line[0] == '+' || line[0] == '-'):
			r.Flags.Set(line[1:], line[0] == '+')
			continue
		}

		event, err := SanitizeEvent(line, 0)
		if err != nil {
			p.Error(err)
			continue
		}
		handled, err := m.Fire(ctx, event)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.Logger.Warn("dispatch failed", "event", event, "err", err)
			p.Error(err)
			continue
		}
		if !handled {
			p.Unhandled(event)
			continue
		}
		if err := r.persist(ctx, m, snap); err != nil {
			return err
		}
		show()
	}
}

// resume restores a stored session, or stores a fresh one.
func (r *Runner) resume(ctx context.Context, m *definition.Machine) (*domain.Snapshot[string], error) {
	if r.Store == nil {
		return nil, nil
	}
	if r.SessionID == "" {
		return nil, ErrSessionRequired
	}

	snap, err := r.Store.Load(ctx, r.SessionID)
	switch {
	case err == nil:
		if err := m.Restore(snap.StateID); err != nil {
			return nil, fmt.Errorf("resume session %s: %w", r.SessionID, err)
		}
		r.Logger.Info("session resumed", "session_id", r.SessionID, "state", snap.StateID, "steps", snap.Steps)
		return snap, nil
	case errors.Is(err, domain.ErrSessionNotFound):
		id, ok := m.StateID()
		if !ok {
			return nil, domain.ErrNoStates
		}
		snap = domain.NewSnapshot(id)
		return snap, r.Store.Save(ctx, r.SessionID, snap)
	default:
		return nil, err
	}
}

func (r *Runner) persist(ctx context.Context, m *definition.Machine, snap *domain.Snapshot[string]) error {
	if r.Store == nil {
		return nil
	}
	id, _ := m.StateID()
	snap.Advance(id)
	if err := r.Store.Save(ctx, r.SessionID, snap); err != nil {
		return fmt.Errorf("save session %s: %w", r.SessionID, err)
	}
	return nil
}
