package turbo_exec

import "errors"

var (
	// ErrAttemptTimeout is the cancellation cause of an attempt whose deadline elapsed.
	ErrAttemptTimeout = errors.New("turboexec: attempt timed out")

	// ErrCancelled is the cancellation cause recorded when Cancel is called.
	ErrCancelled = errors.New("turboexec: execution cancelled")

	// ErrExecutorReused is raised when an executor is started more than once.
	ErrExecutorReused = errors.New("turboexec: executor already started")

	// ErrAlreadySettled is raised when a future is settled more than once.
	ErrAlreadySettled = errors.New("turboexec: future already settled")

	// ErrWorkPanicked wraps a panic recovered from a work function.
	ErrWorkPanicked = errors.New("turboexec: work panicked")

	// ErrInvalidRetryAttempts is returned by Build for a negative retry budget.
	ErrInvalidRetryAttempts = errors.New("turboexec: retry attempts must not be negative")

	// ErrInvalidTimeout is returned by Build for a non-positive timeout.
	ErrInvalidTimeout = errors.New("turboexec: timeout must be positive")

	// ErrPoolFull is returned when the worker pool queue has no room for another job.
	ErrPoolFull = errors.New("turboexec: worker pool queue is full")

	// ErrPoolStopped is returned when a job is submitted to, or left queued in, a stopped pool.
	ErrPoolStopped = errors.New("turboexec: worker pool stopped")
)
