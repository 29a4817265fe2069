package turbo_exec

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/FrenchMajesty/turbo-exec/utils/logger"
	"github.com/google/uuid"
)

// Dispatcher delivers callbacks onto a designated execution context.
// Post must not wait for fn to run.
type Dispatcher interface {
	Post(fn func())
}

// DispatcherFunc adapts a function accepting a thunk to the Dispatcher interface.
type DispatcherFunc func(fn func())

func (f DispatcherFunc) Post(fn func()) {
	f(fn)
}

// Inline runs callbacks immediately on whichever goroutine posts them.
type Inline struct{}

func (Inline) Post(fn func()) {
	fn()
}

type dispatcherKey struct{}

// ContextWithDispatcher marks d as the active dispatcher for work started with ctx.
func ContextWithDispatcher(ctx context.Context, d Dispatcher) context.Context {
	return context.WithValue(ctx, dispatcherKey{}, d)
}

// DispatcherFromContext returns the active dispatcher carried by ctx, or nil.
func DispatcherFromContext(ctx context.Context) Dispatcher {
	d, _ := ctx.Value(dispatcherKey{}).(Dispatcher)
	return d
}

// sameDispatcher compares dispatchers without panicking on uncomparable
// dynamic types such as DispatcherFunc.
func sameDispatcher(a, b Dispatcher) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

// callbackTarget is the dispatcher captured for one run, and whether the
// running goroutine is already on it.
type callbackTarget struct {
	dispatcher Dispatcher
	onContext  bool
	logger     logger.Logger
}

func newCallbackTarget(captured, active Dispatcher, l logger.Logger) callbackTarget {
	return callbackTarget{
		dispatcher: captured,
		onContext:  captured == nil || sameDispatcher(captured, active),
		logger:     l,
	}
}

// dispatch runs fn on the captured context: synchronously when already there,
// otherwise posted.
func (t callbackTarget) dispatch(name string, fn func()) {
	guarded := func() {
		defer func() {
			if r := recover(); r != nil {
				t.logger.Error("callback panicked", "callback", name, "panic", fmt.Sprint(r))
			}
		}()
		fn()
	}

	if t.onContext {
		guarded()
		return
	}
	t.dispatcher.Post(guarded)
}

// Loop is a serial execution context: callbacks posted to it run one at a
// time, in order, on its own goroutine.
type Loop struct {
	id     uuid.UUID
	logger logger.Logger

	mu     sync.Mutex
	queue  []func()
	closed bool

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
}

var _ Dispatcher = (*Loop)(nil)

// NewLoop starts a loop. A nil logger discards output.
func NewLoop(l logger.Logger) *Loop {
	if l == nil {
		l = logger.NewNoopLogger()
	}

	loop := &Loop{
		id:     uuid.New(),
		logger: l,
		wake:   make(chan struct{}, 1),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	go loop.run()
	return loop
}

// ID identifies the loop.
func (l *Loop) ID() uuid.UUID {
	return l.id
}

// Context returns ctx with the loop marked as the active dispatcher.
func (l *Loop) Context(ctx context.Context) context.Context {
	return ContextWithDispatcher(ctx, l)
}

// Post enqueues fn. Callbacks posted after Close are dropped.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		l.logger.Warn("dropping callback posted to closed loop", "loop_id", l.id.String())
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
		// Already signalled
	}
}

// Pending returns the number of queued callbacks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Close stops accepting callbacks, runs those already queued, and waits for
// the loop goroutine to exit. Calling Close from a callback deadlocks.
func (l *Loop) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		<-l.done
		return
	}
	l.closed = true
	l.mu.Unlock()

	close(l.quit)
	<-l.done
}

func (l *Loop) run() {
	defer close(l.done)

	for {
		select {
		case <-l.wake:
			l.drain()
		case <-l.quit:
			l.drain()
			return
		}
	}
}

// drain runs queued callbacks until the queue is empty.
func (l *Loop) drain() {
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		l.invoke(fn)
	}
}

func (l *Loop) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop callback panicked", "loop_id", l.id.String(), "panic", fmt.Sprint(r))
		}
	}()
	fn()
}
