package store

import "context"

// bindGetter wraps an accessor so it always evaluates against the passed-in
// context, never a definition instance. No memoization happens here; caching,
// if any, is the runtime's concern.
func bindGetter(fn Getter) Getter {
	return func(c GetterContext) any {
		return fn(c)
	}
}

// bindAction wraps a method so invocation receives the runtime-built context
// in place of any instance, applying the declared default payload when the
// dispatch carried none. Whatever the body returns is forwarded unaltered.
func bindAction(entry actionEntry) Action {
	return func(ctx context.Context, c ActionContext, payload any) (any, error) {
		if ctx == nil {
			ctx = context.Background()
		}
		if payload == nil && entry.cfg.hasDefault {
			payload = entry.cfg.defaultPayload
		}
		return entry.fn(ctx, c, payload)
	}
}

// bindMutation wraps a mutation so its target is exactly the branch the
// runtime commits against. Nothing beyond local state is reachable from here.
func bindMutation(fn Mutation) Mutation {
	return func(state State, payload any) {
		fn(state, payload)
	}
}
