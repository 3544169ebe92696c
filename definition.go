package store

import "fmt"

// ModuleOption registers a member or toggles composition behaviour on a
// definition under construction.
type ModuleOption func(*moduleConfig)

type moduleConfig struct {
	table     memberTable
	fields    []stateField
	getters   map[string]Getter
	actions   map[string]actionEntry
	mutations map[string]Mutation
	modules   []submodule
	root      bool

	// first configuration error, surfaced by NewModule
	err error
}

type stateField struct {
	name string
	init func() any
}

type actionEntry struct {
	fn  Action
	cfg actionConfig
}

type submodule struct {
	name       string
	def        *Definition
	namespaced bool
}

func (c *moduleConfig) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

func (c *moduleConfig) assign(name string, role Role) bool {
	if err := c.table.assign(name, role); err != nil {
		c.fail(err)
		return false
	}
	return true
}

// WithState declares a field whose initializer is value. The value is deep
// cloned into every assembled snapshot, so definitions never alias instances.
func WithState(name string, value any) ModuleOption {
	return WithStateFunc(name, func() any { return value })
}

// WithStateFunc declares a field with a computed initializer, re-evaluated on
// every assembly in declaration order.
func WithStateFunc(name string, init func() any) ModuleOption {
	return func(cfg *moduleConfig) {
		if init == nil {
			cfg.fail(fmt.Errorf("%w: state %q", ErrNilHandler, name))
			return
		}
		if !cfg.assign(name, RoleState) {
			return
		}
		cfg.fields = append(cfg.fields, stateField{name: name, init: init})
	}
}

// WithGetter declares an accessor exposed as a computed property.
func WithGetter(name string, fn Getter) ModuleOption {
	return func(cfg *moduleConfig) {
		if fn == nil {
			cfg.fail(fmt.Errorf("%w: getter %q", ErrNilHandler, name))
			return
		}
		if !cfg.assign(name, RoleGetter) {
			return
		}
		cfg.getters[name] = fn
	}
}

// WithExprGetter declares a getter whose body is an expression over the
// module's state fields and sibling getters (via get("name")). The expression
// is compiled at definition time; compilation failures fail the definition.
// Evaluation failures yield nil, keeping the getter side-effect free.
func WithExprGetter(name, expression string, opts ...ExprSelectorOption) ModuleOption {
	return func(cfg *moduleConfig) {
		compiled, err := NewExprSelector(opts...).Compile(expression)
		if err != nil {
			cfg.fail(fmt.Errorf("store: expression getter %q: %w", name, err))
			return
		}
		if !cfg.assign(name, RoleGetter) {
			return
		}
		cfg.getters[name] = func(c GetterContext) any {
			value, err := compiled.Select(QueryContext{State: c.State, Getters: c.Getters})
			if err != nil {
				return nil
			}
			return value
		}
	}
}

// ActionOption configures how an action is bound.
type ActionOption func(*actionConfig)

type actionConfig struct {
	defaultPayload any
	hasDefault     bool
}

// WithDefaultPayload preserves a declared default through binding: when the
// action is dispatched with a nil payload, value is passed instead.
func WithDefaultPayload(value any) ActionOption {
	return func(cfg *actionConfig) {
		cfg.defaultPayload = value
		cfg.hasDefault = true
	}
}

// WithAction declares a method bound with the full action context.
func WithAction(name string, fn Action, opts ...ActionOption) ModuleOption {
	return func(cfg *moduleConfig) {
		if fn == nil {
			cfg.fail(fmt.Errorf("%w: action %q", ErrNilHandler, name))
			return
		}
		if !cfg.assign(name, RoleAction) {
			return
		}
		acfg := actionConfig{}
		for _, opt := range opts {
			if opt != nil {
				opt(&acfg)
			}
		}
		cfg.actions[name] = actionEntry{fn: fn, cfg: acfg}
	}
}

// WithMutation declares the only kind of member allowed to write state.
func WithMutation(name string, fn Mutation) ModuleOption {
	return func(cfg *moduleConfig) {
		if fn == nil {
			cfg.fail(fmt.Errorf("%w: mutation %q", ErrNilHandler, name))
			return
		}
		if !cfg.assign(name, RoleMutation) {
			return
		}
		cfg.mutations[name] = fn
	}
}

// SubmoduleOption configures how a sub-module is attached.
type SubmoduleOption func(*submodule)

// WithNamespaced toggles namespacing for the attachment. Nested modules are
// namespaced by default so member names do not collide across siblings.
func WithNamespaced(namespaced bool) SubmoduleOption {
	return func(s *submodule) {
		s.namespaced = namespaced
	}
}

// WithModule attaches a named sub-module definition. Validation of the
// attachment happens at assembly time.
func WithModule(name string, def *Definition, opts ...SubmoduleOption) ModuleOption {
	return func(cfg *moduleConfig) {
		sub := submodule{name: name, def: def, namespaced: true}
		for _, opt := range opts {
			if opt != nil {
				opt(&sub)
			}
		}
		cfg.modules = append(cfg.modules, sub)
	}
}

// WithRootStore marks the definition for root-store composition: runtime
// constructors that honour the flag return a store instance instead of the
// plain configuration.
func WithRootStore() ModuleOption {
	return func(cfg *moduleConfig) {
		cfg.root = true
	}
}

// Definition is the immutable classified form of a module: a typed member
// table plus the handlers the assembler binds into configurations. Dual-role
// members, reserved names, and nil handlers fail construction.
type Definition struct {
	cfg moduleConfig
}

// NewModule classifies the registered members and returns the definition.
// Classification errors are reported here, at definition time.
func NewModule(opts ...ModuleOption) (*Definition, error) {
	cfg := moduleConfig{
		table:     newMemberTable(),
		getters:   map[string]Getter{},
		actions:   map[string]actionEntry{},
		mutations: map[string]Mutation{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.err != nil {
		return nil, cfg.err
	}
	return &Definition{cfg: cfg}, nil
}

// Root reports whether root-store composition was requested.
func (d *Definition) Root() bool {
	if d == nil {
		return false
	}
	return d.cfg.root
}

// Role reports the classification recorded for member, RoleNone when the
// name was never registered.
func (d *Definition) Role(member string) Role {
	if d == nil {
		return RoleNone
	}
	return d.cfg.table.role(member)
}

// Members returns registered member names in declaration order.
func (d *Definition) Members() []string {
	if d == nil {
		return nil
	}
	return d.cfg.table.members()
}
