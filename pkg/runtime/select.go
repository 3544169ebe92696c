package runtime

import (
	"errors"
	"fmt"
	"time"

	store "github.com/goliatone/go-store"
)

// Select executes an expression against the root state and getters using the
// configured selector, defaulting to the expr engine.
func (s *Store) Select(expression string) (any, error) {
	return s.SelectWith(store.QueryContext{}, expression)
}

// SelectWith executes an expression with a caller-supplied query context,
// filling the state, getter, and root references from the store when absent.
func (s *Store) SelectWith(qctx store.QueryContext, expression string) (any, error) {
	if expression == "" {
		return nil, fmt.Errorf("runtime: expression must not be empty")
	}
	selector := s.resolveSelector()
	if qctx.State == nil {
		qctx.State = s.root.state
	}
	if !qctx.Getters.Valid() {
		qctx.Getters = s.nodeGetters(s.root)
	}
	if qctx.RootState == nil {
		qctx.RootState = s.root.state
	}

	engine := selectorEngineName(selector)
	start := time.Now()
	value, err := selector.Select(qctx, expression)
	duration := time.Since(start)
	err = wrapSelection(engine, expression, qctx, err)
	s.selectorLogger.LogSelection(store.SelectLogEvent{
		Engine:   engine,
		Expr:     expression,
		Path:     qctx.Path,
		Duration: duration,
		Err:      err,
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *Store) resolveSelector() store.Selector {
	s.selectorMu.Lock()
	defer s.selectorMu.Unlock()
	if s.selector != nil {
		return s.selector
	}
	var exprOpts []store.ExprSelectorOption
	if s.cache != nil {
		exprOpts = append(exprOpts, store.ExprWithProgramCache(s.cache))
	}
	if s.functions != nil {
		exprOpts = append(exprOpts, store.ExprWithFunctionRegistry(s.functions))
	}
	s.selector = store.NewExprSelector(exprOpts...)
	return s.selector
}

func selectorEngineName(selector store.Selector) string {
	if selector == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", selector) {
	case "*store.exprSelector":
		return "expr"
	case "*store.celSelector":
		return "cel"
	case "*store.jsSelector":
		return "js"
	default:
		return "custom"
	}
}

func wrapSelection(engine, expression string, qctx store.QueryContext, err error) error {
	if err == nil {
		return nil
	}
	var selErr *store.SelectionError
	if errors.As(err, &selErr) {
		return err
	}
	return &store.SelectionError{
		Engine: engine,
		Expr:   expression,
		Path:   qctx.Path,
		Err:    err,
	}
}
