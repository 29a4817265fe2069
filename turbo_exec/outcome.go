package turbo_exec

// State is the position of an execution in its lifecycle.
type State int

const (
	StateRunning State = iota
	StateSucceeded
	StateCancelled
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateCancelled:
		return "cancelled"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can happen from s.
func (s State) Terminal() bool {
	return s != StateRunning
}

// Outcome is the settled result of an execution.
//
// Value is only meaningful when State is StateSucceeded. Err carries the last
// failure for StateExhausted and the cancellation error for StateCancelled.
type Outcome[T any] struct {
	State    State
	Value    T
	Err      error
	Attempts int
}

// Succeeded reports whether the work produced a value.
func (o Outcome[T]) Succeeded() bool {
	return o.State == StateSucceeded
}
