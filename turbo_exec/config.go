package turbo_exec

import (
	"fmt"
	"time"

	"github.com/FrenchMajesty/turbo-exec/utils/logger"
)

// Config is the immutable configuration of an executor.
type Config[T any] struct {
	MaxRetryAttempts int
	Timeout          time.Duration
	OnTimeout        func()
	OnError          func(error)
	OnResult         func(T)
	CanReturn        func(error) bool

	Dispatcher Dispatcher
	WorkerPool *WorkerPool
	Logger     logger.Logger
	Metrics    *Metrics
	Events     chan<- *Event

	// Tag is caller-owned and never read by the executor.
	Tag any
}

// Builder assembles a Config. Every method returns the same builder.
type Builder[T any] struct {
	cfg        Config[T]
	hasTimeout bool
}

// New starts building an executor producing values of type T.
func New[T any]() *Builder[T] {
	return &Builder[T]{}
}

// RetryOnError sets how many times a failed attempt is retried.
func (b *Builder[T]) RetryOnError(maxAttempts int) *Builder[T] {
	b.cfg.MaxRetryAttempts = maxAttempts
	return b
}

// Timeout bounds every attempt by d; onTimeout runs when an attempt's deadline elapses.
func (b *Builder[T]) Timeout(d time.Duration, onTimeout func()) *Builder[T] {
	b.cfg.Timeout = d
	b.cfg.OnTimeout = onTimeout
	b.hasTimeout = true
	return b
}

// OnError registers the callback receiving each failure that is not a cancellation.
func (b *Builder[T]) OnError(fn func(error)) *Builder[T] {
	b.cfg.OnError = fn
	return b
}

// OnResult registers the callback receiving the produced value.
func (b *Builder[T]) OnResult(fn func(T)) *Builder[T] {
	b.cfg.OnResult = fn
	return b
}

// CanReturn registers the retry predicate. Returning true forces another
// attempt even when the retry budget is spent.
func (b *Builder[T]) CanReturn(pred func(error) bool) *Builder[T] {
	b.cfg.CanReturn = pred
	return b
}

// WithDispatcher sets the context callbacks are delivered on for inline executions.
func (b *Builder[T]) WithDispatcher(d Dispatcher) *Builder[T] {
	b.cfg.Dispatcher = d
	return b
}

// WithWorkerPool runs background executions on p instead of a new goroutine.
func (b *Builder[T]) WithWorkerPool(p *WorkerPool) *Builder[T] {
	b.cfg.WorkerPool = p
	return b
}

// WithLogger sets the logger for this executor
func (b *Builder[T]) WithLogger(l logger.Logger) *Builder[T] {
	b.cfg.Logger = l
	return b
}

// WithMetrics records the execution into m.
func (b *Builder[T]) WithMetrics(m *Metrics) *Builder[T] {
	b.cfg.Metrics = m
	return b
}

// WithEventChan publishes lifecycle events on ch. Events are dropped when ch is full.
func (b *Builder[T]) WithEventChan(ch chan<- *Event) *Builder[T] {
	b.cfg.Events = ch
	return b
}

// WithTag attaches an arbitrary caller-owned value to the executor.
func (b *Builder[T]) WithTag(tag any) *Builder[T] {
	b.cfg.Tag = tag
	return b
}

// Config validates and returns a copy of the configuration built so far.
func (b *Builder[T]) Config() (Config[T], error) {
	cfg := b.cfg

	if cfg.MaxRetryAttempts < 0 {
		return Config[T]{}, fmt.Errorf("retry on error %d: %w", cfg.MaxRetryAttempts, ErrInvalidRetryAttempts)
	}
	if b.hasTimeout && cfg.Timeout <= 0 {
		return Config[T]{}, fmt.Errorf("timeout %s: %w", cfg.Timeout, ErrInvalidTimeout)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNoopLogger()
	}

	return cfg, nil
}

// Build returns a single-use executor for the configuration.
func (b *Builder[T]) Build() (*Executor[T], error) {
	cfg, err := b.Config()
	if err != nil {
		return nil, err
	}
	return NewExecutor(cfg), nil
}

// MustBuild is like Build but panics on an invalid configuration.
func (b *Builder[T]) MustBuild() *Executor[T] {
	e, err := b.Build()
	if err != nil {
		panic(err)
	}
	return e
}
