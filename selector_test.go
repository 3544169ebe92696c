package store

import (
	"errors"
	"strings"
	"testing"
)

type recordingCache struct {
	values map[string]any
	gets   int
	hits   int
	sets   int
}

func newRecordingCache() *recordingCache {
	return &recordingCache{values: map[string]any{}}
}

func (c *recordingCache) Get(key string) (any, bool) {
	c.gets++
	value, ok := c.values[key]
	if ok {
		c.hits++
	}
	return value, ok
}

func (c *recordingCache) Set(key string, value any) {
	c.sets++
	c.values[key] = value
}

func asInt64(t *testing.T, value any) int64 {
	t.Helper()
	switch typed := value.(type) {
	case int:
		return int64(typed)
	case int64:
		return typed
	case float64:
		return int64(typed)
	default:
		t.Fatalf("expected numeric result, got %T (%v)", value, value)
		return 0
	}
}

func selectorEngines() map[string]func(cache ProgramCache, registry *FunctionRegistry) Selector {
	engines := map[string]func(cache ProgramCache, registry *FunctionRegistry) Selector{
		"expr": func(cache ProgramCache, registry *FunctionRegistry) Selector {
			var opts []ExprSelectorOption
			if cache != nil {
				opts = append(opts, ExprWithProgramCache(cache))
			}
			if registry != nil {
				opts = append(opts, ExprWithFunctionRegistry(registry))
			}
			return NewExprSelector(opts...)
		},
		"cel": func(cache ProgramCache, registry *FunctionRegistry) Selector {
			var opts []CELSelectorOption
			if cache != nil {
				opts = append(opts, CELWithProgramCache(cache))
			}
			if registry != nil {
				opts = append(opts, CELWithFunctionRegistry(registry))
			}
			return NewCELSelector(opts...)
		},
	}
	if jsSelectorAvailable() {
		engines["js"] = func(cache ProgramCache, registry *FunctionRegistry) Selector {
			var opts []JSSelectorOption
			if cache != nil {
				opts = append(opts, JSWithProgramCache(cache))
			}
			if registry != nil {
				opts = append(opts, JSWithFunctionRegistry(registry))
			}
			return NewJSSelector(opts...)
		}
	}
	return engines
}

func TestSelectorsEvaluateStateAndArgs(t *testing.T) {
	qctx := QueryContext{
		State: State{"count": 3},
		Args:  map[string]any{"factor": 4},
	}
	for name, build := range selectorEngines() {
		selector := build(nil, nil)
		value, err := selector.Select(qctx, "count * args.factor")
		if err != nil {
			t.Fatalf("%s: select: %v", name, err)
		}
		if got := asInt64(t, value); got != 12 {
			t.Fatalf("%s: expected 12, got %v", name, got)
		}
	}
}

func TestSelectorsExposeRootState(t *testing.T) {
	qctx := QueryContext{
		State:     State{"local": 1},
		RootState: State{"flag": true},
	}
	for name, build := range selectorEngines() {
		selector := build(nil, nil)
		value, err := selector.Select(qctx, "root.flag")
		if err != nil {
			t.Fatalf("%s: select: %v", name, err)
		}
		if value != true {
			t.Fatalf("%s: expected root flag, got %v", name, value)
		}
	}
}

func TestSelectorsExposeGetters(t *testing.T) {
	state := State{"count": 5}
	getters := NewGetters(func(name string) any {
		if name == "doubled" {
			return state["count"].(int) * 2
		}
		return nil
	}, "doubled")
	qctx := QueryContext{State: state, Getters: getters}

	expressions := map[string]string{
		"expr": `get("doubled")`,
		"cel":  "getters.doubled",
		"js":   `get("doubled")`,
	}
	for name, build := range selectorEngines() {
		selector := build(nil, nil)
		value, err := selector.Select(qctx, expressions[name])
		if err != nil {
			t.Fatalf("%s: select: %v", name, err)
		}
		if got := asInt64(t, value); got != 10 {
			t.Fatalf("%s: expected 10, got %v", name, got)
		}
	}
}

func TestSelectorsCallRegisteredFunctions(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("shout", func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, errors.New("shout expects one argument")
		}
		return strings.ToUpper(args[0].(string)) + "!", nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	expressions := map[string]string{
		"expr": `shout("hi")`,
		"cel":  `call("shout", "hi")`,
		"js":   `call("shout", "hi")`,
	}
	for name, build := range selectorEngines() {
		selector := build(nil, registry)
		value, err := selector.Select(QueryContext{State: State{}}, expressions[name])
		if err != nil {
			t.Fatalf("%s: select: %v", name, err)
		}
		if value != "HI!" {
			t.Fatalf("%s: expected HI!, got %v", name, value)
		}
	}
}

func TestSelectorsReuseCachedPrograms(t *testing.T) {
	qctx := QueryContext{State: State{"count": 2}}
	for name, build := range selectorEngines() {
		cache := newRecordingCache()
		selector := build(cache, nil)

		for i := 0; i < 3; i++ {
			if _, err := selector.Select(qctx, "count + 1"); err != nil {
				t.Fatalf("%s: select: %v", name, err)
			}
		}
		if cache.sets != 1 {
			t.Fatalf("%s: expected one compile, got %d", name, cache.sets)
		}
		if cache.hits < 2 {
			t.Fatalf("%s: expected cache hits on repeat evaluation, got %d", name, cache.hits)
		}
	}
}

func TestSelectorCompileReturnsReusableProgram(t *testing.T) {
	for name, build := range selectorEngines() {
		selector := build(nil, nil)
		compiled, err := selector.Compile("count * 2")
		if err != nil {
			t.Fatalf("%s: compile: %v", name, err)
		}
		for _, count := range []int{1, 4} {
			value, err := compiled.Select(QueryContext{State: State{"count": count}})
			if err != nil {
				t.Fatalf("%s: compiled select: %v", name, err)
			}
			if got := asInt64(t, value); got != int64(count*2) {
				t.Fatalf("%s: expected %d, got %v", name, count*2, got)
			}
		}
	}
}

func TestSelectorsRejectEmptyExpression(t *testing.T) {
	for name, build := range selectorEngines() {
		selector := build(nil, nil)
		if _, err := selector.Select(QueryContext{}, ""); err == nil {
			t.Fatalf("%s: expected empty-expression error", name)
		}
	}
}

func TestExprSelectorWrapsSelectionErrors(t *testing.T) {
	selector := NewExprSelector()
	_, err := selector.Select(QueryContext{State: State{}, Path: "inbox"}, "1 +")
	if err == nil {
		t.Fatal("expected evaluation error")
	}

	var selErr *SelectionError
	if !errors.As(err, &selErr) {
		t.Fatalf("expected SelectionError, got %T: %v", err, err)
	}
	if selErr.Engine != "expr" || selErr.Expr != "1 +" || selErr.Path != "inbox" {
		t.Fatalf("unexpected error detail: %+v", selErr)
	}
	if !strings.HasPrefix(err.Error(), "store:") {
		t.Fatalf("expected store prefix, got %q", err.Error())
	}
}

func TestSelectionErrorDefaultsPathLabel(t *testing.T) {
	selector := NewExprSelector()
	_, err := selector.Select(QueryContext{State: State{}}, "missing.deep.field")
	if err == nil {
		t.Skip("engine tolerated unknown lookup")
	}
	var selErr *SelectionError
	if errors.As(err, &selErr) && selErr.Path != "root" {
		t.Fatalf("expected root path label, got %q", selErr.Path)
	}
}

func TestCELCacheSeparatesStateShapes(t *testing.T) {
	cache := newRecordingCache()
	selector := NewCELSelector(CELWithProgramCache(cache))

	value, err := selector.Select(QueryContext{State: State{"count": 1}}, "count + 1")
	if err != nil {
		t.Fatalf("first shape: %v", err)
	}
	if got := asInt64(t, value); got != 2 {
		t.Fatalf("first shape: expected 2, got %v", got)
	}

	// Same expression against a differently-shaped state must not reuse the
	// program compiled for the first shape.
	value, err = selector.Select(QueryContext{State: State{"count": 1, "offset": 2}}, "count + offset")
	if err != nil {
		t.Fatalf("second shape: %v", err)
	}
	if got := asInt64(t, value); got != 3 {
		t.Fatalf("second shape: expected 3, got %v", got)
	}

	value, err = selector.Select(QueryContext{State: State{"count": 4, "offset": 1}}, "count + 1")
	if err != nil {
		t.Fatalf("same expression, wider shape: %v", err)
	}
	if got := asInt64(t, value); got != 5 {
		t.Fatalf("same expression, wider shape: expected 5, got %v", got)
	}

	// Three distinct (expression, shape) pairs, three compiles.
	if cache.sets != 3 {
		t.Fatalf("expected one compile per shape, got %d", cache.sets)
	}

	if _, err := selector.Select(QueryContext{State: State{"count": 9}}, "count + 1"); err != nil {
		t.Fatalf("repeat shape: %v", err)
	}
	if cache.hits != 1 {
		t.Fatalf("expected repeat shape to hit the cache, got %d hits", cache.hits)
	}
}

func TestNoopSelectorLogger(t *testing.T) {
	logger := NoopSelectorLogger()
	if logger == nil {
		t.Fatal("expected a logger instance")
	}
	// Must accept events without side effects.
	logger.LogSelection(SelectLogEvent{Engine: "expr", Expr: "count"})
}

func TestSelectorLoggerFunc(t *testing.T) {
	var events []SelectLogEvent
	logger := SelectorLoggerFunc(func(event SelectLogEvent) {
		events = append(events, event)
	})
	logger.LogSelection(SelectLogEvent{Engine: "expr", Expr: "count"})
	if len(events) != 1 || events[0].Engine != "expr" {
		t.Fatalf("expected logged event, got %+v", events)
	}
}
