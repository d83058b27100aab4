package main

import (
	"fmt"

	"github.com/aretw0/choicefsm"
	"github.com/aretw0/choicefsm/pkg/adapters/definition"
	"github.com/aretw0/choicefsm/pkg/registry"
)

// loadMachine reads and compiles a definition file with the built-in
// registry callbacks.
func loadMachine(path string, opts ...choicefsm.Option) (*definition.Definition, *definition.Machine, *registry.Registry, error) {
	def, err := definition.LoadFile(path)
	if err != nil {
		return nil, nil, nil, err
	}
	reg := registry.NewRegistry()
	opts = append([]choicefsm.Option{choicefsm.WithLogger(logger)}, opts...)
	m, err := definition.Compile(def, reg, opts...)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, m, reg, nil
}
