package store

import "time"

// QueryContext carries the inputs a selector expression can read: the module
// branch it runs against, lazy getters, the root branch, and caller-supplied
// arguments.
type QueryContext struct {
	State     State
	Getters   Getters
	RootState State
	Args      map[string]any
	Now       *time.Time
	Path      string
}

func (q QueryContext) withDefaultNow() QueryContext {
	if q.Now != nil {
		return q
	}
	now := time.Now()
	q.Now = &now
	return q
}

func (q QueryContext) timestamp() time.Time {
	q = q.withDefaultNow()
	return *q.Now
}

func (q QueryContext) withDefaultArgs() QueryContext {
	if q.Args == nil {
		q.Args = map[string]any{}
	}
	return q
}

func (q QueryContext) pathLabel() string {
	if q.Path != "" {
		return q.Path
	}
	return "root"
}

// Selector executes expressions against a query context.
type Selector interface {
	Select(qctx QueryContext, expression string) (any, error)
	Compile(expression string, opts ...CompileOption) (CompiledSelector, error)
}

// CompiledSelector represents a reusable expression program.
type CompiledSelector interface {
	Select(qctx QueryContext) (any, error)
}

// CompileOption configures selector compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}
