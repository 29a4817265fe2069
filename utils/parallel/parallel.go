package parallel

import (
	"context"
	"fmt"
	"time"

	"github.com/FrenchMajesty/turbo-exec/turbo_exec"
	"github.com/FrenchMajesty/turbo-exec/utils/logger"
)

// Task represents a function to be executed in parallel
type Task func(ctx context.Context) (any, error)

// Result holds the outcome of one task's execution
type Result struct {
	Value    any
	Error    error
	State    turbo_exec.State
	Attempts int
}

// Results holds the map of results from parallel execution
type Results map[string]Result

// Builder runs keyed tasks concurrently, each in its own executor sharing
// the same retry policy, and collects their typed results.
type Builder struct {
	tasks     map[string]Task
	retries   int
	timeout   time.Duration
	canReturn func(error) bool
	pool      *turbo_exec.WorkerPool
	logger    logger.Logger
}

// NewBuilder creates a new parallel builder
func NewBuilder() *Builder {
	return &Builder{
		tasks: make(map[string]Task),
	}
}

// Add adds a keyed task to be executed in parallel
func (b *Builder) Add(key string, task Task) *Builder {
	b.tasks[key] = task
	return b
}

// RetryOnError sets the retry budget of every task.
func (b *Builder) RetryOnError(maxAttempts int) *Builder {
	b.retries = maxAttempts
	return b
}

// Timeout bounds each attempt of every task.
func (b *Builder) Timeout(d time.Duration) *Builder {
	b.timeout = d
	return b
}

// CanReturn sets the retry predicate of every task. A predicate returning
// true retries regardless of RetryOnError, so it should only accept a
// bounded set of failures.
func (b *Builder) CanReturn(pred func(error) bool) *Builder {
	b.canReturn = pred
	return b
}

// WithWorkerPool runs the tasks on p instead of one goroutine each.
func (b *Builder) WithWorkerPool(p *turbo_exec.WorkerPool) *Builder {
	b.pool = p
	return b
}

func (b *Builder) WithLogger(l logger.Logger) *Builder {
	b.logger = l
	return b
}

// Run executes all tasks in parallel and returns results keyed by their
// original keys. Cancelling ctx cancels every task still running; Run
// returns once all of them have settled.
func (b *Builder) Run(ctx context.Context) (Results, error) {
	if len(b.tasks) == 0 {
		return Results{}, nil
	}

	executors := make(map[string]*turbo_exec.Executor[any], len(b.tasks))
	for key := range b.tasks {
		executor, err := b.executor(key)
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", key, err)
		}
		executors[key] = executor
	}

	futures := make(map[string]*turbo_exec.Future[any], len(b.tasks))
	for key, task := range b.tasks {
		futures[key] = executors[key].ExecuteOnBackground(ctx, turbo_exec.Work[any](task))
	}

	results := make(Results, len(futures))
	for key, future := range futures {
		<-future.Done()
		outcome, _ := future.Outcome()
		results[key] = Result{
			Value:    outcome.Value,
			Error:    outcome.Err,
			State:    outcome.State,
			Attempts: outcome.Attempts,
		}
	}

	return results, nil
}

func (b *Builder) executor(key string) (*turbo_exec.Executor[any], error) {
	builder := turbo_exec.New[any]().
		RetryOnError(b.retries).
		CanReturn(b.canReturn).
		WithWorkerPool(b.pool)

	if b.timeout > 0 {
		builder.Timeout(b.timeout, nil)
	}
	if b.logger != nil {
		builder.WithLogger(b.logger.With("task", key))
	}

	return builder.Build()
}

// Get retrieves a typed result using the function signature to infer the return type
func Get[T any](results Results, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	result, exists := results[key]
	if !exists {
		return zero, fmt.Errorf("no result found for key: %s", key)
	}

	if result.State != turbo_exec.StateSucceeded {
		if result.Error != nil {
			return zero, result.Error
		}
		return zero, fmt.Errorf("task %s ended %s", key, result.State)
	}

	// Type assert to the inferred type from the function signature
	value, ok := result.Value.(T)
	if !ok {
		return zero, fmt.Errorf("type assertion failed for key %s: expected %T, got %T", key, zero, result.Value)
	}

	return value, nil
}
