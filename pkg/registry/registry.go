package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/choicefsm"
)

// ErrUnknownCallback is returned when a name resolves to no registered or
// built-in callback.
var ErrUnknownCallback = errors.New("unknown callback")

// Flags is a named set of booleans that built-in callbacks read and write.
// Safe for concurrent use.
type Flags struct {
	mu     sync.RWMutex
	values map[string]bool
}

// NewFlags creates an empty flag set; unset flags read as false.
func NewFlags() *Flags {
	return &Flags{values: make(map[string]bool)}
}

// Get returns the value of a flag.
func (f *Flags) Get(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.values[name]
}

// Set assigns a flag.
func (f *Flags) Set(name string, value bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[name] = value
}

// Toggle flips a flag and returns its new value.
func (f *Flags) Toggle(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[name] = !f.values[name]
	return f.values[name]
}

// Snapshot returns a copy of every assigned flag.
func (f *Flags) Snapshot() map[string]bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string]bool, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// Names returns every flag ever assigned, sorted.
func (f *Flags) Names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, 0, len(f.values))
	for k := range f.values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Registry manages the actions and decisions a machine definition can refer
// to by name.
//
// Besides explicitly registered callbacks it resolves these built-ins over
// its Flags:
//
//	decisions: always, never, flag:<name>, not:<name>
//	actions:   noop, set:<name>, clear:<name>, toggle:<name>
type Registry struct {
	mu        sync.RWMutex
	actions   map[string]choicefsm.Action
	decisions map[string]choicefsm.Decision
	flags     *Flags
}

// NewRegistry creates a registry with a fresh flag set.
func NewRegistry() *Registry {
	return &Registry{
		actions:   make(map[string]choicefsm.Action),
		decisions: make(map[string]choicefsm.Decision),
		flags:     NewFlags(),
	}
}

// Flags returns the flag set read and written by built-in callbacks.
func (r *Registry) Flags() *Flags {
	return r.flags
}

// RegisterAction adds an action.
// If an action with the same name exists, it is overwritten.
func (r *Registry) RegisterAction(name string, fn choicefsm.Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[name] = fn
}

// RegisterDecision adds a decision.
// If a decision with the same name exists, it is overwritten.
func (r *Registry) RegisterDecision(name string, fn choicefsm.Decision) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decisions[name] = fn
}

// Action resolves an action by name. The empty name resolves to nil, meaning
// "no action".
func (r *Registry) Action(name string) (choicefsm.Action, error) {
	if name == "" {
		return nil, nil
	}

	r.mu.RLock()
	fn, ok := r.actions[name]
	r.mu.RUnlock()
	if ok {
		return fn, nil
	}

	if name == "noop" {
		return func() {}, nil
	}
	verb, flag, ok := splitBuiltin(name)
	if ok {
		switch verb {
		case "set":
			return func() { r.flags.Set(flag, true) }, nil
		case "clear":
			return func() { r.flags.Set(flag, false) }, nil
		case "toggle":
			return func() { r.flags.Toggle(flag) }, nil
		}
	}
	return nil, fmt.Errorf("action %q: %w", name, ErrUnknownCallback)
}

// Decision resolves a decision by name.
func (r *Registry) Decision(name string) (choicefsm.Decision, error) {
	r.mu.RLock()
	fn, ok := r.decisions[name]
	r.mu.RUnlock()
	if ok {
		return fn, nil
	}

	switch name {
	case "always":
		return func() bool { return true }, nil
	case "never":
		return func() bool { return false }, nil
	}
	verb, flag, ok := splitBuiltin(name)
	if ok {
		switch verb {
		case "flag":
			return func() bool { return r.flags.Get(flag) }, nil
		case "not":
			return func() bool { return !r.flags.Get(flag) }, nil
		}
	}
	return nil, fmt.Errorf("decision %q: %w", name, ErrUnknownCallback)
}

func splitBuiltin(name string) (verb, flag string, ok bool) {
	verb, flag, ok = strings.Cut(name, ":")
	if !ok || flag == "" {
		return "", "", false
	}
	return verb, flag, true
}
