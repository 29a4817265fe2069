package turbo_exec

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/FrenchMajesty/turbo-exec/utils/logger"
	"github.com/google/uuid"
)

// Work is the unit of computation run by an executor. It should return
// promptly with ctx's error once ctx is done.
type Work[T any] func(ctx context.Context) (T, error)

// Executor runs one work function with retries, per-attempt timeouts and
// callbacks. An executor is single-use.
type Executor[T any] struct {
	id        uuid.UUID
	cfg       Config[T]
	canceller *canceller
	future    *Future[T]
	events    emitter
	logger    logger.Logger

	started    atomic.Bool
	retryCount atomic.Int64
	cancelled  atomic.Bool
	state      atomic.Int32

	mu      sync.RWMutex // protects lastErr
	lastErr error
}

// NewExecutor creates an executor from an already validated configuration.
// Most callers use New[T]().Build().
func NewExecutor[T any](cfg Config[T]) *Executor[T] {
	id := uuid.New()
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNoopLogger()
	}

	return &Executor[T]{
		id:        id,
		cfg:       cfg,
		canceller: newCanceller(cfg.Timeout),
		future:    newFuture[T](),
		events:    emitter{executionID: id, events: cfg.Events},
		logger:    cfg.Logger.With("execution_id", id.String()),
	}
}

// ID identifies the execution in logs, events and metrics.
func (e *Executor[T]) ID() uuid.UUID {
	return e.id
}

// LastError returns the most recent failure, or nil.
func (e *Executor[T]) LastError() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastErr
}

// RetriedCount returns how many generic failures have been counted.
func (e *Executor[T]) RetriedCount() int {
	return int(e.retryCount.Load())
}

// Cancelled reports whether the execution ended through cancellation or timeout.
func (e *Executor[T]) Cancelled() bool {
	return e.cancelled.Load()
}

// State returns the current lifecycle state.
func (e *Executor[T]) State() State {
	return State(e.state.Load())
}

// Tag returns the caller-owned value attached with Builder.WithTag.
func (e *Executor[T]) Tag() any {
	return e.cfg.Tag
}

// Future returns the future of the execution. It never settles if the
// executor is not started.
func (e *Executor[T]) Future() *Future[T] {
	return e.future
}

// Cancel requests cancellation. Safe from any goroutine. Work observes it
// through its context; an attempt not yet started is never invoked.
func (e *Executor[T]) Cancel() {
	e.canceller.Cancel()
}

// Execute runs the work on the calling goroutine and returns its settled
// future. Callbacks run synchronously when ctx carries the configured
// dispatcher (or none is configured) and are posted to it otherwise.
func (e *Executor[T]) Execute(ctx context.Context, work Work[T]) *Future[T] {
	e.start()

	target := newCallbackTarget(e.cfg.Dispatcher, DispatcherFromContext(ctx), e.logger)
	e.run(ctx, target, work)
	return e.future
}

// ExecuteOnBackground runs the work on a worker goroutine and returns the
// future immediately. The dispatcher active in ctx at call time, or else the
// configured one, receives every callback of the run.
func (e *Executor[T]) ExecuteOnBackground(ctx context.Context, work Work[T]) *Future[T] {
	e.start()

	captured := DispatcherFromContext(ctx)
	if captured == nil {
		captured = e.cfg.Dispatcher
	}
	target := newCallbackTarget(captured, nil, e.logger)

	run := func() { e.run(ctx, target, work) }
	if e.cfg.WorkerPool == nil {
		go run()
		return e.future
	}

	j := job{
		run:    run,
		reject: func(err error) { e.reject(target, err) },
	}
	if err := e.cfg.WorkerPool.submit(j); err != nil {
		e.reject(target, err)
	}
	return e.future
}

func (e *Executor[T]) start() {
	if !e.started.CompareAndSwap(false, true) {
		panic(ErrExecutorReused)
	}
}

// reject settles an execution that never got to run.
func (e *Executor[T]) reject(target callbackTarget, err error) {
	e.logger.Warn("background execution rejected", "error", err)
	e.events.emit(EventExecutionStarted, 0, map[string]any{
		"max_retry_attempts": e.cfg.MaxRetryAttempts,
		"timeout":            e.cfg.Timeout.String(),
		"rejected":           true,
	})
	e.cancelled.Store(true)
	e.setLastErr(err)
	if e.cfg.OnError != nil {
		target.dispatch("error", func() { e.cfg.OnError(err) })
	}
	e.finish(time.Now(), Outcome[T]{State: StateCancelled, Err: err}, false)
}

// run is the retry loop. Exactly one goroutine runs it per execution.
func (e *Executor[T]) run(ctx context.Context, target callbackTarget, work Work[T]) {
	startedAt := time.Now()
	stop := e.canceller.bind(ctx)
	defer stop()

	e.events.emit(EventExecutionStarted, 0, map[string]any{
		"max_retry_attempts": e.cfg.MaxRetryAttempts,
		"timeout":            e.cfg.Timeout.String(),
	})

	for attempt := 1; ; attempt++ {
		value, attemptTimedOut, err := e.attempt(attempt, work)

		if err == nil {
			e.metrics().observeAttempt(attemptSucceeded)
			if e.cfg.OnResult != nil {
				target.dispatch("result", func() { e.cfg.OnResult(value) })
			}
			e.finish(startedAt, Outcome[T]{State: StateSucceeded, Value: value, Attempts: attempt}, false)
			return
		}

		override := false
		if isCancellation(err) {
			e.metrics().observeAttempt(attemptCancelled)
			e.cancelled.Store(true)
			e.setLastErr(err)

			if attemptTimedOut {
				e.metrics().observeTimeout()
				e.logger.Warn("attempt timed out", "attempt", attempt, "timeout", e.cfg.Timeout.String())
				if e.cfg.OnTimeout != nil {
					target.dispatch("timeout", e.cfg.OnTimeout)
				}
			} else {
				e.logger.Info("attempt cancelled", "attempt", attempt, "error", err)
			}
		} else {
			e.metrics().observeAttempt(attemptFailed)
			e.setLastErr(err)
			e.logger.Debug("attempt failed", "attempt", attempt, "error", err)
			e.events.emit(EventAttemptFailed, attempt, map[string]any{
				"error": err.Error(),
			})

			if e.cfg.OnError != nil {
				target.dispatch("error", func() { e.cfg.OnError(err) })
			}
			override = e.canReturn(err)
			e.retryCount.Add(1)
		}

		if override {
			e.metrics().observeOverride()
			e.retrying(attempt, true)
			continue
		}

		if e.cancelled.Load() {
			e.finish(startedAt, Outcome[T]{State: StateCancelled, Err: err, Attempts: attempt}, attemptTimedOut)
			return
		}
		if e.RetriedCount() > e.cfg.MaxRetryAttempts {
			e.finish(startedAt, Outcome[T]{State: StateExhausted, Err: err, Attempts: attempt}, false)
			return
		}
		e.retrying(attempt, false)
	}
}

// attempt invokes the work once under a fresh attempt context. timedOut is
// true when the attempt's own deadline elapsed.
func (e *Executor[T]) attempt(attempt int, work Work[T]) (value T, timedOut bool, err error) {
	attemptCtx, release := e.canceller.attempt()
	defer release()

	// Cancelled between attempts: do not start another one.
	if e.canceller.requested() {
		return value, false, e.canceller.cause()
	}

	e.events.emit(EventAttemptStarted, attempt, nil)
	value, err = invoke(attemptCtx, work)
	return value, err != nil && deadlineElapsed(attemptCtx), err
}

// invoke calls work, turning a panic into an ErrWorkPanicked failure.
func invoke[T any](ctx context.Context, work Work[T]) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			value = zero
			err = fmt.Errorf("%w: %v", ErrWorkPanicked, r)
		}
	}()
	return work(ctx)
}

// canReturn evaluates the retry predicate. A panicking predicate grants no
// override.
func (e *Executor[T]) canReturn(err error) (override bool) {
	if e.cfg.CanReturn == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("retry predicate panicked", "panic", fmt.Sprint(r))
			override = false
		}
	}()
	return e.cfg.CanReturn(err)
}

func (e *Executor[T]) retrying(attempt int, override bool) {
	e.logger.Debug("retrying", "attempt", attempt+1, "retried", e.RetriedCount(), "override", override)
	e.events.emit(EventAttemptRetrying, attempt+1, map[string]any{
		"retried":  e.RetriedCount(),
		"override": override,
	})
}

// finish settles the future and publishes the terminal state.
func (e *Executor[T]) finish(startedAt time.Time, outcome Outcome[T], timedOut bool) {
	e.state.Store(int32(outcome.State))

	data := map[string]any{
		"retried": e.RetriedCount(),
	}
	if outcome.Err != nil {
		data["error"] = outcome.Err.Error()
	}
	e.events.emit(terminalEvent(outcome.State, timedOut), outcome.Attempts, data)
	e.metrics().observeExecution(outcome.State, time.Since(startedAt))

	if outcome.State == StateSucceeded {
		e.logger.Debug("execution finished", "state", outcome.State.String(), "attempts", outcome.Attempts)
	} else {
		e.logger.Info("execution finished", "state", outcome.State.String(), "attempts", outcome.Attempts,
			"retried", e.RetriedCount(), "error", outcome.Err)
	}

	e.future.settle(outcome)
}

func (e *Executor[T]) setLastErr(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastErr = err
}

func (e *Executor[T]) metrics() *Metrics {
	return e.cfg.Metrics
}
