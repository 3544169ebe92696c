package runtime

import (
	store "github.com/goliatone/go-store"
	"github.com/goliatone/go-store/pkg/observe"
	"github.com/goliatone/go-store/pkg/persist"
)

// Option configures a Store under construction.
type Option func(*config)

type config struct {
	hooks          observe.Hooks
	emitter        *observe.Emitter
	channel        string
	historyLimit   int
	selector       store.Selector
	selectorLogger store.SelectorLogger
	cache          store.ProgramCache
	functions      *store.FunctionRegistry
	persister      persist.Store
	domain         string
	restored       store.State
}

func applyOptions(opts []Option) config {
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithHooks attaches observation hooks notified on every commit and dispatch.
func WithHooks(hooks ...observe.Hook) Option {
	return func(cfg *config) {
		for _, hook := range hooks {
			if hook != nil {
				cfg.hooks = append(cfg.hooks, hook)
			}
		}
	}
}

// WithChannel overrides the default channel stamped on emitted events.
func WithChannel(channel string) Option {
	return func(cfg *config) {
		cfg.channel = channel
	}
}

// WithEmitter replaces the emitter built from WithHooks/WithChannel.
func WithEmitter(emitter *observe.Emitter) Option {
	return func(cfg *config) {
		cfg.emitter = emitter
	}
}

// WithHistory retains up to limit commit/dispatch records in memory.
func WithHistory(limit int) Option {
	return func(cfg *config) {
		cfg.historyLimit = limit
	}
}

// WithSelector configures the expression engine used by Select.
func WithSelector(selector store.Selector) Option {
	return func(cfg *config) {
		cfg.selector = selector
	}
}

// WithSelectorLogger records selection attempts.
func WithSelectorLogger(logger store.SelectorLogger) Option {
	return func(cfg *config) {
		cfg.selectorLogger = logger
	}
}

// WithProgramCache shares compiled selector programs across selections.
func WithProgramCache(cache store.ProgramCache) Option {
	return func(cfg *config) {
		cfg.cache = cache
	}
}

// WithFunctionRegistry exposes custom functions to the default selector.
func WithFunctionRegistry(registry *store.FunctionRegistry) Option {
	return func(cfg *config) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithPersistence wires a snapshot store for Persist/Restore under domain.
func WithPersistence(persister persist.Store, domain string) Option {
	return func(cfg *config) {
		cfg.persister = persister
		cfg.domain = domain
	}
}

// WithRestoredState overlays a previously captured snapshot onto the freshly
// assembled state tree before the store is returned.
func WithRestoredState(state store.State) Option {
	return func(cfg *config) {
		cfg.restored = state
	}
}
