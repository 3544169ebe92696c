//go:build js_select

package store

import (
	"fmt"

	"github.com/dop251/goja"
)

type jsSelector struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewJSSelector constructs a Selector backed by goja.
func NewJSSelector(opts ...JSSelectorOption) Selector {
	cfg := applyJSSelectorOptions(opts)
	return &jsSelector{
		cache:    cfg.cache,
		registry: cfg.registry,
	}
}

func (s *jsSelector) Select(qctx QueryContext, expression string) (any, error) {
	if expression == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	qctx = qctx.withDefaultNow().withDefaultArgs()
	if s.cache == nil {
		return s.run(qctx, expression, nil)
	}
	program, err := s.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return s.run(qctx, expression, program)
}

func (s *jsSelector) Compile(expression string, _ ...CompileOption) (CompiledSelector, error) {
	if expression == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	program, err := s.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return &jsCompiledSelector{
		selector:   s,
		expression: expression,
		program:    program,
	}, nil
}

func (s *jsSelector) loadOrCompile(expression string) (*goja.Program, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(expression); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	program, err := goja.Compile("", s.wrapExpression(expression), false)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(expression, program)
	}
	return program, nil
}

func (s *jsSelector) run(qctx QueryContext, expression string, program *goja.Program) (any, error) {
	vm := goja.New()
	s.injectContext(vm, qctx)
	if program != nil {
		value, err := vm.RunProgram(program)
		if err != nil {
			return nil, err
		}
		return value.Export(), nil
	}
	value, err := vm.RunString(s.wrapExpression(expression))
	if err != nil {
		return nil, err
	}
	return value.Export(), nil
}

func (s *jsSelector) injectContext(vm *goja.Runtime, qctx QueryContext) {
	vm.Set("now", qctx.timestamp())
	vm.Set("args", qctx.Args)
	for key, value := range qctx.State {
		vm.Set(key, value)
	}
	if qctx.RootState != nil {
		vm.Set("root", map[string]any(qctx.RootState))
	}
	getters := qctx.Getters
	vm.Set("get", func(name string) any {
		return getters.Value(name)
	})
	if s.registry != nil {
		vm.Set("call", func(name string, arguments ...any) (any, error) {
			return s.registry.Call(name, arguments...)
		})
		for _, name := range s.registry.Names() {
			fn := name
			vm.Set(fn, func(arguments ...any) (any, error) {
				return s.registry.Call(fn, arguments...)
			})
		}
	}
}

func (s *jsSelector) wrapExpression(expression string) string {
	return fmt.Sprintf("(function(){ return (%s); })()", expression)
}

type jsCompiledSelector struct {
	selector   *jsSelector
	expression string
	program    *goja.Program
}

func (r *jsCompiledSelector) Select(qctx QueryContext) (any, error) {
	if r.selector == nil {
		return nil, fmt.Errorf("js compiled selector missing engine")
	}
	qctx = qctx.withDefaultNow().withDefaultArgs()
	return r.selector.run(qctx, r.expression, r.program)
}

func jsSelectorAvailable() bool {
	return true
}
