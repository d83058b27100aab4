package middleware

import "github.com/aretw0/choicefsm/pkg/ports"

// Middleware allows wrapping a StateStore to add behavior.
type Middleware[S comparable] func(ports.StateStore[S]) ports.StateStore[S]

// Chain wraps store with mws; the first middleware is the outermost.
func Chain[S comparable](store ports.StateStore[S], mws ...Middleware[S]) ports.StateStore[S] {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
