package store

import (
	"fmt"
	"sort"
	"strings"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// maxCallArgs bounds the fixed-arity overload set declared for call().
const maxCallArgs = 8

// CELSelectorOption configures the CEL selector.
type CELSelectorOption func(*celSelector)

// CELWithProgramCache wires a ProgramCache into the CEL selector.
func CELWithProgramCache(cache ProgramCache) CELSelectorOption {
	return func(s *celSelector) {
		s.cache = cache
	}
}

// CELWithFunctionRegistry wires a FunctionRegistry into the CEL selector.
func CELWithFunctionRegistry(registry *FunctionRegistry) CELSelectorOption {
	return func(s *celSelector) {
		if registry == nil {
			return
		}
		s.registry = registry.Clone()
	}
}

type celProgram struct {
	env     *celgo.Env
	program celgo.Program
}

type celSelector struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewCELSelector constructs a Selector backed by cel-go. Getter values are
// materialized eagerly into the "getters" activation map, since CEL binds
// functions at program build time.
func NewCELSelector(opts ...CELSelectorOption) Selector {
	s := &celSelector{}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *celSelector) Select(qctx QueryContext, expression string) (any, error) {
	if expression == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	qctx = qctx.withDefaultNow().withDefaultArgs()
	program, err := s.loadOrCompile(expression, qctx.State)
	if err != nil {
		return nil, err
	}
	out, _, err := program.program.Eval(s.activation(qctx))
	if err != nil {
		return nil, err
	}
	return out.Value(), nil
}

func (s *celSelector) Compile(expression string, _ ...CompileOption) (CompiledSelector, error) {
	if expression == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	return &celCompiledSelector{
		selector:   s,
		expression: expression,
	}, nil
}

func (s *celSelector) loadOrCompile(expression string, state State) (*celProgram, error) {
	// The environment declares a variable per state key, so a compiled
	// program is only valid for states of the same shape. The cache key
	// carries the shape alongside the expression.
	key := cacheKey(expression, state)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			if program, ok := cached.(*celProgram); ok {
				return program, nil
			}
		}
	}

	env, err := s.buildEnv(state)
	if err != nil {
		return nil, err
	}
	ast, issues := env.Parse(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	checked, issues := env.Check(ast)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	prg, err := env.Program(checked)
	if err != nil {
		return nil, err
	}

	bundle := &celProgram{
		env:     env,
		program: prg,
	}
	if s.cache != nil {
		s.cache.Set(key, bundle)
	}
	return bundle, nil
}

func cacheKey(expression string, state State) string {
	if len(state) == 0 {
		return expression
	}
	keys := make([]string, 0, len(state))
	for key := range state {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return expression + "\x00" + strings.Join(keys, ",")
}

func (s *celSelector) buildEnv(state State) (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.Variable("now", celgo.TimestampType),
		celgo.Variable("args", celgo.DynType),
		celgo.Variable("root", celgo.DynType),
		celgo.Variable("getters", celgo.DynType),
	}
	if s.registry != nil {
		// cel-go has no variadic overloads; declare a fixed-arity set that
		// all bind to the same implementation.
		binding := s.callBinding()
		op := func(values ...ref.Val) ref.Val {
			return binding(values)
		}
		argTypes := []*celgo.Type{celgo.StringType}
		overloads := make([]celgo.FunctionOpt, 0, maxCallArgs+1)
		for i := 0; i <= maxCallArgs; i++ {
			overloads = append(overloads, celgo.Overload(
				fmt.Sprintf("call_dyn_%d", i),
				argTypes,
				celgo.DynType,
				celgo.FunctionBinding(op),
			))
			argTypes = append(append([]*celgo.Type{}, argTypes...), celgo.DynType)
		}
		opts = append(opts, celgo.Function("call", overloads...))
	}
	for key := range state {
		opts = append(opts, celgo.Variable(key, celgo.DynType))
	}
	return celgo.NewEnv(opts...)
}

func (s *celSelector) activation(qctx QueryContext) map[string]any {
	activation := map[string]any{
		"now":     qctx.timestamp(),
		"args":    qctx.Args,
		"root":    map[string]any(qctx.RootState),
		"getters": materializeGetters(qctx.Getters),
	}
	for key, value := range qctx.State {
		activation[key] = value
	}
	if s.registry != nil {
		activation["call"] = func(name string, arguments ...any) (any, error) {
			return s.registry.Call(name, arguments...)
		}
	}
	return activation
}

type celCompiledSelector struct {
	selector   *celSelector
	expression string
}

func (r *celCompiledSelector) Select(qctx QueryContext) (any, error) {
	if r.selector == nil {
		return nil, fmt.Errorf("cel compiled selector missing engine")
	}
	qctx = qctx.withDefaultNow().withDefaultArgs()
	program, err := r.selector.loadOrCompile(r.expression, qctx.State)
	if err != nil {
		return nil, err
	}
	out, _, err := program.program.Eval(r.selector.activation(qctx))
	if err != nil {
		return nil, err
	}
	return out.Value(), nil
}

func materializeGetters(getters Getters) map[string]any {
	names := getters.Names()
	if len(names) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(names))
	for _, name := range names {
		out[name] = getters.Value(name)
	}
	return out
}

func (s *celSelector) callBinding() func([]ref.Val) ref.Val {
	return func(values []ref.Val) ref.Val {
		if s.registry == nil {
			return types.NewErr("store: function registry not configured")
		}
		if len(values) == 0 {
			return types.NewErr("store: call requires function name")
		}
		name, ok := values[0].Value().(string)
		if !ok {
			return types.NewErr("store: call name must be string")
		}
		args := make([]any, 0, len(values)-1)
		for _, val := range values[1:] {
			args = append(args, val.Value())
		}
		result, err := s.registry.Call(name, args...)
		if err != nil {
			return types.NewErr("%s", err.Error())
		}
		if result == nil {
			return types.NullValue
		}
		return types.DefaultTypeAdapter.NativeToValue(result)
	}
}
