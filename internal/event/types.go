package event

import "context"

// Priority determines handler execution order. Lower values run first.
type Priority int

const (
	// PriorityCritical is for state owners (project state, command history).
	PriorityCritical Priority = 0

	// PriorityHigh is for controllers that translate UI events.
	PriorityHigh Priority = 100

	// PriorityNormal is the default.
	PriorityNormal Priority = 200

	// PriorityLow is for monitors and logging that should see settled state.
	PriorityLow Priority = 300
)

// String returns a human-readable priority name.
func (p Priority) String() string {
	switch {
	case p <= PriorityCritical:
		return "critical"
	case p <= PriorityHigh:
		return "high"
	case p <= PriorityNormal:
		return "normal"
	default:
		return "low"
	}
}

// DeliveryMode specifies how events reach a handler.
type DeliveryMode int

const (
	// DeliverySync runs the handler in the emitter's goroutine.
	DeliverySync DeliveryMode = iota

	// DeliveryAsync queues the event for the worker pool.
	DeliveryAsync
)

// String returns a human-readable delivery mode name.
func (m DeliveryMode) String() string {
	switch m {
	case DeliverySync:
		return "sync"
	case DeliveryAsync:
		return "async"
	default:
		return "unknown"
	}
}

// Handler processes a type-erased event.
type Handler interface {
	Handle(ctx context.Context, event any) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event any) error

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, event any) error {
	return f(ctx, event)
}

// FilterFunc returns true if the event should be delivered.
type FilterFunc func(event any) bool

// PanicHandler is called after a handler panic has been recovered.
type PanicHandler func(event any, recovered any)

// ErrorHandler is called when a handler returns an error.
type ErrorHandler func(event any, err error)

// Stats contains bus counters.
type Stats struct {
	EventsPublished uint64
	EventsDelivered uint64
	EventsDropped   uint64
	HandlerErrors   uint64
	HandlerPanics   uint64

	// PayloadMismatches counts deliveries skipped because a typed
	// handler's payload type did not match the event.
	PayloadMismatches uint64

	ActiveSubscribers int
	QueueDepth        int
}
