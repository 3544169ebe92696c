package store

import (
	"fmt"

	"github.com/goliatone/go-store/snapshot"
)

// Assemble builds the configuration object for one module instance:
// initializers are evaluated in declaration order into a fresh snapshot,
// classified members are attached under their role keys, and declared
// sub-modules are assembled recursively. The returned tree owns all of its
// values; assembling twice yields fully independent configurations.
func (d *Definition) Assemble() (*Config, error) {
	if d == nil {
		return nil, ErrInvalidModule
	}

	cfg := &Config{
		State:     State{},
		Getters:   make(map[string]Getter, len(d.cfg.getters)),
		Actions:   make(map[string]Action, len(d.cfg.actions)),
		Mutations: make(map[string]Mutation, len(d.cfg.mutations)),
		Modules:   map[string]*Config{},
	}

	for _, field := range d.cfg.fields {
		cfg.State[field.name] = snapshot.Clone(field.init())
	}
	for name, fn := range d.cfg.getters {
		cfg.Getters[name] = bindGetter(fn)
	}
	for name, entry := range d.cfg.actions {
		cfg.Actions[name] = bindAction(entry)
	}
	for name, fn := range d.cfg.mutations {
		cfg.Mutations[name] = bindMutation(fn)
	}

	for _, sub := range d.cfg.modules {
		if sub.name == "" {
			return nil, fmt.Errorf("%w: attachment name must not be empty", ErrInvalidModule)
		}
		if sub.def == nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidModule, sub.name)
		}
		if _, exists := cfg.Modules[sub.name]; exists {
			return nil, fmt.Errorf("store: duplicate submodule %q", sub.name)
		}
		child, err := sub.def.Assemble()
		if err != nil {
			return nil, fmt.Errorf("store: assemble submodule %q: %w", sub.name, err)
		}
		child.Namespaced = sub.namespaced
		cfg.Modules[sub.name] = child
	}

	return cfg, nil
}
