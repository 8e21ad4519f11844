package dispatch

import (
	"context"
	"time"
)

// Handler mirrors event.Handler so this package does not import its parent.
type Handler interface {
	Handle(ctx context.Context, event any) error
}

// Result is the outcome of one handler execution.
type Result struct {
	Success    bool
	Error      error
	Panicked   bool
	PanicValue any
	PanicStack []byte
	Duration   time.Duration

	// Skipped is true when the handler never ran (context already done).
	Skipped bool
}

// IsSuccess returns true if the handler completed without error or panic.
func (r Result) IsSuccess() bool {
	return r.Success && !r.Panicked && r.Error == nil
}

// PanicHandler is called when a handler panics.
type PanicHandler func(event any, panicValue any, stack []byte)
