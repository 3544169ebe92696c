package store

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// ExprSelectorOption configures an expr selector instance.
type ExprSelectorOption func(*exprSelector)

// ExprWithProgramCache wires a ProgramCache into the expr selector.
func ExprWithProgramCache(cache ProgramCache) ExprSelectorOption {
	return func(s *exprSelector) {
		s.cache = cache
	}
}

// ExprWithFunctionRegistry wires a FunctionRegistry into the expr selector.
func ExprWithFunctionRegistry(registry *FunctionRegistry) ExprSelectorOption {
	return func(s *exprSelector) {
		if registry == nil {
			return
		}
		s.registry = registry.Clone()
	}
}

// exprSelector executes query expressions using github.com/expr-lang/expr.
type exprSelector struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewExprSelector constructs a Selector backed by expr-lang/expr.
func NewExprSelector(opts ...ExprSelectorOption) Selector {
	s := &exprSelector{}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Select compiles and runs expression against the query context.
func (s *exprSelector) Select(qctx QueryContext, expression string) (any, error) {
	if expression == "" {
		return nil, wrapSelectorError("expr", fmt.Errorf("expression must not be empty"))
	}
	qctx = qctx.withDefaultNow().withDefaultArgs()
	env := s.environment(qctx)
	if s.cache == nil {
		result, err := exprlang.Eval(expression, env)
		if err != nil {
			return nil, wrapSelectionError("expr", expression, qctx.pathLabel(), err)
		}
		return result, nil
	}
	program, err := s.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	result, err := exprlang.Run(program, env)
	if err != nil {
		return nil, wrapSelectionError("expr", expression, qctx.pathLabel(), err)
	}
	return result, nil
}

// Compile returns a compiled selector that evaluates expression per
// invocation.
func (s *exprSelector) Compile(expression string, _ ...CompileOption) (CompiledSelector, error) {
	if expression == "" {
		return nil, wrapSelectorError("expr", fmt.Errorf("expression must not be empty"))
	}
	program, err := s.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return &exprCompiledSelector{
		selector:   s,
		program:    program,
		expression: expression,
	}, nil
}

func (s *exprSelector) loadOrCompile(expression string) (*exprvm.Program, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(expression); ok {
			if program, ok := cached.(*exprvm.Program); ok {
				return program, nil
			}
		}
	}
	options := []exprlang.Option{
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	}
	for _, name := range s.registryNames() {
		fn := s.registryFunction(name)
		options = append(options, exprlang.Function(name, fn))
	}
	program, err := exprlang.Compile(expression, options...)
	if err != nil {
		return nil, wrapSelectionError("expr", expression, "", err)
	}
	if s.cache != nil {
		s.cache.Set(expression, program)
	}
	return program, nil
}

type exprCompiledSelector struct {
	selector   *exprSelector
	program    *exprvm.Program
	expression string
}

func (r *exprCompiledSelector) Select(qctx QueryContext) (any, error) {
	if r.selector == nil {
		return nil, wrapSelectorError("expr", fmt.Errorf("compiled selector missing engine"))
	}
	qctx = qctx.withDefaultNow().withDefaultArgs()
	if r.program == nil {
		return r.selector.Select(qctx, r.expression)
	}
	env := r.selector.environment(qctx)
	result, err := exprlang.Run(r.program, env)
	if err != nil {
		return nil, wrapSelectionError("expr", r.expression, qctx.pathLabel(), err)
	}
	return result, nil
}

func (s *exprSelector) environment(qctx QueryContext) map[string]any {
	env := map[string]any{
		"now":  qctx.timestamp(),
		"args": qctx.Args,
	}
	for key, value := range qctx.State {
		env[key] = value
	}
	if qctx.RootState != nil {
		env["root"] = map[string]any(qctx.RootState)
	}
	getters := qctx.Getters
	env["get"] = func(name string) any {
		return getters.Value(name)
	}
	if s.registry != nil {
		env["call"] = func(name string, arguments ...any) (any, error) {
			return s.registry.Call(name, arguments...)
		}
		for _, name := range s.registry.Names() {
			fn := name
			env[fn] = func(arguments ...any) (any, error) {
				return s.registry.Call(fn, arguments...)
			}
		}
	}
	return env
}

func (s *exprSelector) registryNames() []string {
	if s == nil || s.registry == nil {
		return nil
	}
	return s.registry.Names()
}

func (s *exprSelector) registryFunction(name string) func(...any) (any, error) {
	if s == nil || s.registry == nil {
		return nil
	}
	return func(arguments ...any) (any, error) {
		return s.registry.Call(name, arguments...)
	}
}
