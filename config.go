package store

import (
	"github.com/goliatone/go-store/internal/hydrate"
)

// Config is the plain configuration tree a store runtime consumes. It is
// built fresh on every Assemble call and never shared between instances.
// Modules is always materialized, so consumers can treat the shape uniformly.
type Config struct {
	State      State
	Getters    map[string]Getter
	Actions    map[string]Action
	Mutations  map[string]Mutation
	Modules    map[string]*Config
	Namespaced bool
}

// DecodeState converts a state branch into a strongly typed struct via the
// JSON round-trip decoder. Useful for persisting or inspecting snapshots.
func DecodeState[T any](state State) (T, error) {
	decoder := hydrate.NewDecoder[T]()
	return decoder.Decode(hydrate.Context{}, map[string]any(state))
}
