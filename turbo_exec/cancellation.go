package turbo_exec

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// canceller owns the one-shot cancellation signal of an execution. It is
// created with the executor and lives exactly as long as it.
type canceller struct {
	ctx     context.Context
	cancel  context.CancelCauseFunc
	timeout time.Duration
}

func newCanceller(timeout time.Duration) *canceller {
	ctx, cancel := context.WithCancelCause(context.Background())
	return &canceller{
		ctx:     ctx,
		cancel:  cancel,
		timeout: timeout,
	}
}

// Cancel signals cancellation. Safe from any goroutine; later calls are no-ops.
func (c *canceller) Cancel() {
	c.cancel(ErrCancelled)
}

// bind forwards the cancellation of parent into the controller. The returned
// func detaches it again.
func (c *canceller) bind(parent context.Context) (stop func() bool) {
	// AfterFunc runs asynchronously; a parent that is already done must be
	// observed before the first attempt.
	if parent.Err() != nil {
		c.cancel(context.Cause(parent))
		return func() bool { return false }
	}
	return context.AfterFunc(parent, func() {
		c.cancel(context.Cause(parent))
	})
}

// requested reports whether the execution-wide signal has fired.
func (c *canceller) requested() bool {
	return c.ctx.Err() != nil
}

// cause returns the reason the execution-wide signal fired, as an error the
// loop classifies as a cancellation.
func (c *canceller) cause() error {
	cause := context.Cause(c.ctx)
	if cause == nil || isCancellation(cause) {
		return cause
	}
	return fmt.Errorf("%w: %w", ErrCancelled, cause)
}

// attempt derives the context for one invocation of the work. When a timeout
// is configured the deadline is armed afresh for every attempt.
func (c *canceller) attempt() (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(c.ctx)
	}
	return context.WithTimeoutCause(c.ctx, c.timeout, ErrAttemptTimeout)
}

// deadlineElapsed reports whether ctx ended because its attempt deadline elapsed.
func deadlineElapsed(ctx context.Context) bool {
	return errors.Is(context.Cause(ctx), ErrAttemptTimeout)
}

// isCancellation reports whether err is the work reacting to the cancellation
// signal rather than failing on its own.
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, ErrAttemptTimeout) ||
		errors.Is(err, ErrCancelled)
}
