package turbo_exec

import (
	"context"
	"sync/atomic"
)

// Future is the single completion signal of an execution. It settles exactly once.
type Future[T any] struct {
	done    chan struct{}
	settled atomic.Bool
	outcome Outcome[T]
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{
		done: make(chan struct{}),
	}
}

// settle stores the outcome and releases waiters. Settling twice is a
// programming error and panics.
func (f *Future[T]) settle(outcome Outcome[T]) {
	if !f.settled.CompareAndSwap(false, true) {
		panic(ErrAlreadySettled)
	}
	f.outcome = outcome
	close(f.done)
}

// Done returns a channel closed once the future has settled.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future settles or ctx is done.
func (f *Future[T]) Wait(ctx context.Context) (Outcome[T], error) {
	select {
	case <-f.done:
		return f.outcome, nil
	case <-ctx.Done():
		return Outcome[T]{State: StateRunning}, ctx.Err()
	}
}

// Get blocks like Wait and returns the optional value view: ok is false for
// every terminal state other than StateSucceeded. The error is only ever the
// waiting context's error.
func (f *Future[T]) Get(ctx context.Context) (value T, ok bool, err error) {
	outcome, err := f.Wait(ctx)
	if err != nil {
		return value, false, err
	}
	return outcome.Value, outcome.Succeeded(), nil
}

// Outcome returns the settled outcome without blocking. ok is false while the
// execution is still running.
func (f *Future[T]) Outcome() (Outcome[T], bool) {
	select {
	case <-f.done:
		return f.outcome, true
	default:
		return Outcome[T]{State: StateRunning}, false
	}
}
