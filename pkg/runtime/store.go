package runtime

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	store "github.com/goliatone/go-store"
	"github.com/goliatone/go-store/pkg/observe"
	"github.com/goliatone/go-store/pkg/persist"
	"github.com/goliatone/go-store/snapshot"
	"github.com/google/uuid"
)

// node is one module's position in the tree: its live state branch plus the
// members registered locally.
type node struct {
	path      string
	state     store.State
	getters   map[string]store.Getter
	actions   map[string]store.Action
	mutations map[string]store.Mutation
	children  map[string]*node
}

type getterEntry struct {
	node *node
	fn   store.Getter
}

type actionEntry struct {
	node *node
	fn   store.Action
	name string
}

type mutationEntry struct {
	node *node
	fn   store.Mutation
	name string
}

// Store is the reference runtime. Commits are serialized under a single
// writer; actions execute on the caller's goroutine and settle the returned
// deferred with whatever their body produced.
type Store struct {
	mu   sync.Mutex
	root *node

	getters   map[string]getterEntry
	actions   map[string]actionEntry
	mutations map[string]mutationEntry

	emitter *observe.Emitter
	history *history

	selectorMu     sync.Mutex
	selector       store.Selector
	selectorLogger store.SelectorLogger
	cache          store.ProgramCache
	functions      *store.FunctionRegistry

	persistMu   sync.Mutex
	persister   persist.Store
	domain      string
	persistMeta persist.Meta
}

// New constructs a store from an assembled configuration tree.
func New(cfg *store.Config, opts ...Option) (*Store, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	rcfg := applyOptions(opts)

	s := &Store{
		getters:        map[string]getterEntry{},
		actions:        map[string]actionEntry{},
		mutations:      map[string]mutationEntry{},
		selector:       rcfg.selector,
		selectorLogger: rcfg.selectorLogger,
		cache:          rcfg.cache,
		functions:      rcfg.functions,
		persister:      rcfg.persister,
		domain:         rcfg.domain,
	}
	if s.selectorLogger == nil {
		s.selectorLogger = store.NoopSelectorLogger()
	}

	emitter := rcfg.emitter
	if emitter == nil {
		emitter = observe.NewEmitter(rcfg.hooks, observe.Config{
			Enabled: len(rcfg.hooks) > 0,
			Channel: rcfg.channel,
		})
	}
	s.emitter = emitter

	if rcfg.historyLimit > 0 {
		s.history = newHistory(rcfg.historyLimit)
	}

	root, err := s.buildNode(cfg, "", "")
	if err != nil {
		return nil, err
	}
	s.root = root

	if rcfg.restored != nil {
		applyRestored(root, rcfg.restored)
	}

	return s, nil
}

// Build realizes the root-store composition request recorded on a
// definition: when the root flag is set it assembles and constructs a Store,
// otherwise it returns the plain configuration. Callers must not assume a
// single return shape across both modes.
func Build(def *store.Definition, opts ...Option) (any, error) {
	cfg, err := def.Assemble()
	if err != nil {
		return nil, err
	}
	if !def.Root() {
		return cfg, nil
	}
	return New(cfg, opts...)
}

func (s *Store) buildNode(cfg *store.Config, path, namespace string) (*node, error) {
	n := &node{
		path:      path,
		state:     store.State{},
		getters:   map[string]store.Getter{},
		actions:   map[string]store.Action{},
		mutations: map[string]store.Mutation{},
		children:  map[string]*node{},
	}

	for key, value := range cfg.State {
		n.state[key] = value
	}
	for name, fn := range cfg.Getters {
		n.getters[name] = fn
		if err := s.registerGetter(namespace+name, getterEntry{node: n, fn: fn}); err != nil {
			return nil, err
		}
	}
	for name, fn := range cfg.Actions {
		n.actions[name] = fn
		if err := s.registerAction(namespace+name, actionEntry{node: n, fn: fn, name: name}); err != nil {
			return nil, err
		}
	}
	for name, fn := range cfg.Mutations {
		n.mutations[name] = fn
		if err := s.registerMutation(namespace+name, mutationEntry{node: n, fn: fn, name: name}); err != nil {
			return nil, err
		}
	}

	for name, childCfg := range cfg.Modules {
		childPath := joinModulePath(path, name)
		childNamespace := namespace
		if childCfg.Namespaced {
			childNamespace = namespace + name + "/"
		}
		child, err := s.buildNode(childCfg, childPath, childNamespace)
		if err != nil {
			return nil, err
		}
		n.children[name] = child
		n.state[name] = child.state
	}

	return n, nil
}

func (s *Store) registerGetter(global string, entry getterEntry) error {
	if _, exists := s.getters[global]; exists {
		return fmt.Errorf("%w: getter %q", ErrNameCollision, global)
	}
	s.getters[global] = entry
	return nil
}

func (s *Store) registerAction(global string, entry actionEntry) error {
	if _, exists := s.actions[global]; exists {
		return fmt.Errorf("%w: action %q", ErrNameCollision, global)
	}
	s.actions[global] = entry
	return nil
}

func (s *Store) registerMutation(global string, entry mutationEntry) error {
	if _, exists := s.mutations[global]; exists {
		return fmt.Errorf("%w: mutation %q", ErrNameCollision, global)
	}
	s.mutations[global] = entry
	return nil
}

// State returns the live state tree. Callers must treat it as read-only;
// writes go through Commit.
func (s *Store) State() store.State {
	return s.root.state
}

// Getter evaluates the named computed property. Namespaced module getters
// are addressed as "path/name".
func (s *Store) Getter(name string) (any, error) {
	entry, ok := s.getters[name]
	if !ok {
		return nil, fmt.Errorf("%w: getter %q", ErrUnknownType, name)
	}
	return entry.fn(store.GetterContext{
		State:   entry.node.state,
		Getters: s.nodeGetters(entry.node),
	}), nil
}

// Commit applies the named mutation to its owning module's branch. Commits
// are serialized: the mutation runs to completion under the store lock.
func (s *Store) Commit(typ string, payload any) error {
	entry, ok := s.mutations[typ]
	if !ok {
		return fmt.Errorf("%w: mutation %q", ErrUnknownType, typ)
	}
	s.applyMutation(entry, payload)
	return nil
}

// Dispatch executes the named action and returns its settled deferred.
// Namespaced module actions are addressed as "path/name".
func (s *Store) Dispatch(ctx context.Context, name string, payload any) *store.Deferred {
	entry, ok := s.actions[name]
	if !ok {
		return store.Rejected(fmt.Errorf("%w: action %q", ErrUnknownType, name))
	}
	return s.runAction(ctx, entry, payload)
}

// applyMutation runs the mutation and appends its history record inside the
// same critical section, so history order always matches applied order. Hook
// emission happens after the lock is released; hooks may commit again.
func (s *Store) applyMutation(entry mutationEntry, payload any) {
	start := time.Now()
	id := uuid.NewString()
	s.mu.Lock()
	entry.fn(entry.node.state, payload)
	duration := time.Since(start)
	s.appendHistory(id, observe.KindCommit, entry.node.path, entry.name, payload, duration, nil)
	s.mu.Unlock()
	s.emitEvent(id, observe.KindCommit, entry.node.path, entry.name, payload, duration, nil)
}

func (s *Store) runAction(ctx context.Context, entry actionEntry, payload any) *store.Deferred {
	if ctx == nil {
		ctx = context.Background()
	}
	actx := store.NewActionContext(
		entry.node.state,
		s.nodeGetters(entry.node),
		s.root.state,
		s.nodeGetters(s.root),
		s.commitAt(entry.node),
		s.dispatchAt(entry.node),
	)
	start := time.Now()
	value, err := entry.fn(ctx, actx, payload)
	duration := time.Since(start)
	id := uuid.NewString()
	s.appendHistory(id, observe.KindDispatch, entry.node.path, entry.name, payload, duration, err)
	s.emitEvent(id, observe.KindDispatch, entry.node.path, entry.name, payload, duration, err)
	if err != nil {
		return store.Rejected(err)
	}
	return store.Resolved(value)
}

// commitAt routes an action's commits to its own module's mutations.
func (s *Store) commitAt(n *node) func(string, any) error {
	return func(typ string, payload any) error {
		fn, ok := n.mutations[typ]
		if !ok {
			return fmt.Errorf("%w: mutation %q in module %q", ErrUnknownType, typ, pathLabel(n.path))
		}
		s.applyMutation(mutationEntry{node: n, fn: fn, name: typ}, payload)
		return nil
	}
}

// dispatchAt routes an action's dispatches to its own module first, falling
// back to root-addressed (namespaced) names.
func (s *Store) dispatchAt(n *node) func(context.Context, string, any) *store.Deferred {
	return func(ctx context.Context, name string, payload any) *store.Deferred {
		if fn, ok := n.actions[name]; ok {
			return s.runAction(ctx, actionEntry{node: n, fn: fn, name: name}, payload)
		}
		if entry, ok := s.actions[name]; ok {
			return s.runAction(ctx, entry, payload)
		}
		return store.Rejected(fmt.Errorf("%w: action %q in module %q", ErrUnknownType, name, pathLabel(n.path)))
	}
}

// nodeGetters builds the lazy getter view for one module position.
func (s *Store) nodeGetters(n *node) store.Getters {
	names := make([]string, 0, len(n.getters))
	for name := range n.getters {
		names = append(names, name)
	}
	return store.NewGetters(func(name string) any {
		fn, ok := n.getters[name]
		if !ok {
			return nil
		}
		return fn(store.GetterContext{State: n.state, Getters: s.nodeGetters(n)})
	}, names...)
}

func (s *Store) appendHistory(id, kind, path, name string, payload any, duration time.Duration, err error) {
	if s.history == nil {
		return
	}
	s.history.append(Record{
		ID:       id,
		Kind:     kind,
		Path:     path,
		Type:     name,
		Payload:  payload,
		Duration: duration,
		Error:    errorString(err),
		At:       time.Now(),
	})
}

func (s *Store) emitEvent(id, kind, path, name string, payload any, duration time.Duration, err error) {
	if !s.emitter.Enabled() {
		return
	}
	input := observe.EventInput{
		ID:       id,
		Path:     path,
		Type:     name,
		Payload:  payload,
		Duration: duration,
		Err:      err,
	}
	var event observe.Event
	if kind == observe.KindCommit {
		event = observe.BuildCommitEvent(input)
	} else {
		event = observe.BuildDispatchEvent(input)
	}
	_ = s.emitter.Emit(context.Background(), event)
}

// History returns a copy of the retained commit/dispatch records, oldest
// first. Empty unless WithHistory was configured.
func (s *Store) History() []Record {
	if s.history == nil {
		return nil
	}
	return s.history.records()
}

// Persist captures the current state tree into the configured persistence
// store, chaining the previously returned meta for optimistic concurrency.
func (s *Store) Persist(ctx context.Context) (persist.Meta, error) {
	if s.persister == nil {
		return persist.Meta{}, ErrNoPersistence
	}
	s.mu.Lock()
	captured := s.root.state.Clone()
	s.mu.Unlock()

	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	meta, err := s.persister.Save(ctx, persist.Ref{Domain: s.domain}, captured, s.persistMeta)
	if err != nil {
		return persist.Meta{}, err
	}
	s.persistMeta = meta
	return meta, nil
}

// Restore overlays the persisted snapshot, when present, onto the live tree.
func (s *Store) Restore(ctx context.Context) error {
	if s.persister == nil {
		return ErrNoPersistence
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	loaded, meta, ok, err := s.persister.Load(ctx, persist.Ref{Domain: s.domain})
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	s.mu.Lock()
	applyRestored(s.root, loaded)
	s.mu.Unlock()
	s.persistMeta = meta
	return nil
}

// applyRestored writes a captured snapshot back into the live tree in place,
// so nested branch aliases stay intact. Restored values win over initializer
// values; nested maps keep initializer keys the snapshot does not carry.
func applyRestored(n *node, branch store.State) {
	for key, value := range branch {
		child, isChild := n.children[key]
		if !isChild {
			n.state[key] = snapshot.Overlay(value, n.state[key])
			continue
		}
		switch typed := value.(type) {
		case store.State:
			applyRestored(child, typed)
		case map[string]any:
			applyRestored(child, store.State(typed))
		}
	}
}

func joinModulePath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

func pathLabel(path string) string {
	if strings.TrimSpace(path) == "" {
		return "root"
	}
	return path
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
