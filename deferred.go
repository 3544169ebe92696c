package store

import (
	"context"
	"sync"
)

// Deferred carries the eventual result of a dispatched action. It settles
// exactly once: Resolve with the action's return value, or Reject with its
// error, unaltered.
type Deferred struct {
	once sync.Once
	done chan struct{}

	value any
	err   error
}

// NewDeferred returns an unsettled deferred. Runtimes settle it when the
// action body completes.
func NewDeferred() *Deferred {
	return &Deferred{done: make(chan struct{})}
}

// Resolved returns a deferred already settled with value.
func Resolved(value any) *Deferred {
	d := NewDeferred()
	d.Resolve(value)
	return d
}

// Rejected returns a deferred already settled with err.
func Rejected(err error) *Deferred {
	d := NewDeferred()
	d.Reject(err)
	return d
}

// Resolve settles the deferred with value. Later settlements are ignored.
func (d *Deferred) Resolve(value any) {
	d.once.Do(func() {
		d.value = value
		close(d.done)
	})
}

// Reject settles the deferred with err. Later settlements are ignored.
func (d *Deferred) Reject(err error) {
	d.once.Do(func() {
		d.err = err
		close(d.done)
	})
}

// Done exposes completion for select loops.
func (d *Deferred) Done() <-chan struct{} {
	return d.done
}

// Await blocks until the deferred settles or ctx is cancelled, returning the
// settled value or error.
func (d *Deferred) Await(ctx context.Context) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-d.done:
		return d.value, d.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
