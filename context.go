package store

import (
	"context"

	"github.com/goliatone/go-store/snapshot"
)

// State is a module's state branch: a plain mapping from field name to the
// current value. Nested module branches appear under their attachment name.
type State map[string]any

// Clone returns a deep copy of the branch, including plain maps and slices,
// so callers can hold a snapshot without aliasing the live tree.
func (s State) Clone() State {
	if s == nil {
		return nil
	}
	out := make(State, len(s))
	for key, value := range s {
		out[key] = snapshot.Clone(value)
	}
	return out
}

// Getters provides lazy access to a module's computed values. Values are
// re-derived on every lookup; caching, if any, belongs to the runtime.
type Getters struct {
	resolve func(name string) any
	names   []string
}

// NewGetters wraps a resolver function. Runtimes build one per module node;
// the optional names let consumers enumerate what can be resolved.
func NewGetters(resolve func(name string) any, names ...string) Getters {
	return Getters{resolve: resolve, names: names}
}

// Value evaluates the named getter, returning nil when it is unknown.
func (g Getters) Value(name string) any {
	if g.resolve == nil {
		return nil
	}
	return g.resolve(name)
}

// Valid reports whether a resolver is attached.
func (g Getters) Valid() bool {
	return g.resolve != nil
}

// Names returns the getter names declared at construction.
func (g Getters) Names() []string {
	if len(g.names) == 0 {
		return nil
	}
	out := make([]string, len(g.names))
	copy(out, g.names)
	return out
}

// GetterContext carries the inputs a getter may read: the module's own state
// branch and its sibling getters.
type GetterContext struct {
	State   State
	Getters Getters
}

// Getter computes a value on demand from state and other getters. Bodies must
// be pure functions of their context.
type Getter func(GetterContext) any

// ActionContext exposes exactly the members an action may touch: the module's
// own branch and getters, read-only references to the top of the module tree,
// and commit/dispatch routed by the runtime.
type ActionContext struct {
	State       State
	Getters     Getters
	RootState   State
	RootGetters Getters

	commit   func(mutation string, payload any) error
	dispatch func(ctx context.Context, action string, payload any) *Deferred
}

// NewActionContext assembles the context a runtime hands to bound actions.
func NewActionContext(
	state State,
	getters Getters,
	rootState State,
	rootGetters Getters,
	commit func(mutation string, payload any) error,
	dispatch func(ctx context.Context, action string, payload any) *Deferred,
) ActionContext {
	return ActionContext{
		State:       state,
		Getters:     getters,
		RootState:   rootState,
		RootGetters: rootGetters,
		commit:      commit,
		dispatch:    dispatch,
	}
}

// Commit routes to this module's own mutations.
func (c ActionContext) Commit(mutation string, payload any) error {
	if c.commit == nil {
		return ErrNoRuntime
	}
	return c.commit(mutation, payload)
}

// Dispatch routes to this module's own actions, or across modules using a
// namespaced path, per the runtime's routing rules.
func (c ActionContext) Dispatch(ctx context.Context, action string, payload any) *Deferred {
	if c.dispatch == nil {
		return Rejected(ErrNoRuntime)
	}
	return c.dispatch(ctx, action, payload)
}

// Action reads state and getters and triggers mutations or other actions. The
// returned value (or error) settles the deferred produced by the runtime's
// dispatch; the core forwards whatever the body produces.
type Action func(ctx context.Context, c ActionContext, payload any) (any, error)

// Mutation is the only operation permitted to write state. It receives the
// module's own branch and must complete synchronously without yielding.
// Calling one outside the runtime's commit path is out of contract.
type Mutation func(state State, payload any)
