package turbo_exec

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventExecutionStarted   EventType = "execution_started"
	EventAttemptStarted     EventType = "attempt_started"
	EventAttemptFailed      EventType = "attempt_failed"
	EventAttemptRetrying    EventType = "attempt_retrying"
	EventExecutionSucceeded EventType = "execution_succeeded"
	EventExecutionCancelled EventType = "execution_cancelled"
	EventExecutionTimedOut  EventType = "execution_timed_out"
	EventExecutionExhausted EventType = "execution_exhausted"
)

type Event struct {
	Type        EventType      `json:"type"`
	ExecutionID string         `json:"execution_id"`
	Attempt     int            `json:"attempt"`
	Timestamp   time.Time      `json:"timestamp"`
	Data        map[string]any `json:"data,omitempty"`
}

// emitter publishes execution events to an optional listener channel.
type emitter struct {
	executionID uuid.UUID
	events      chan<- *Event
}

// emit sends an event to the event channel (non-blocking)
func (em emitter) emit(eventType EventType, attempt int, data map[string]any) {
	if em.events == nil {
		return
	}

	event := &Event{
		Type:        eventType,
		ExecutionID: em.executionID.String(),
		Attempt:     attempt,
		Timestamp:   time.Now(),
		Data:        data,
	}

	select {
	case em.events <- event:
		// Event sent successfully
	default:
		// Channel full, drop event to avoid blocking the loop
	}
}

// terminalEvent maps a terminal state to the event announcing it.
func terminalEvent(state State, timedOut bool) EventType {
	switch {
	case state == StateSucceeded:
		return EventExecutionSucceeded
	case state == StateCancelled && timedOut:
		return EventExecutionTimedOut
	case state == StateCancelled:
		return EventExecutionCancelled
	default:
		return EventExecutionExhausted
	}
}
