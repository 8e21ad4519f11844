package dispatch

import (
	"context"
	"sync/atomic"
	"time"
)

// SyncDispatcher executes handlers in the caller's goroutine.
type SyncDispatcher struct {
	onPanic PanicHandler
	timeout time.Duration

	dispatched  atomic.Uint64
	failed      atomic.Uint64
	panicked    atomic.Uint64
	totalTimeNs atomic.Int64
}

// SyncOption configures a SyncDispatcher.
type SyncOption func(*SyncDispatcher)

// WithPanicHandler sets the panic callback.
func WithPanicHandler(h PanicHandler) SyncOption {
	return func(d *SyncDispatcher) {
		d.onPanic = h
	}
}

// WithTimeout sets a per-handler deadline. Zero disables it.
func WithTimeout(timeout time.Duration) SyncOption {
	return func(d *SyncDispatcher) {
		d.timeout = timeout
	}
}

// NewSyncDispatcher creates a synchronous dispatcher.
func NewSyncDispatcher(opts ...SyncOption) *SyncDispatcher {
	d := &SyncDispatcher{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs handler and blocks until it returns, fails or panics.
func (d *SyncDispatcher) Dispatch(ctx context.Context, event any, handler Handler) Result {
	d.dispatched.Add(1)

	result := invoke(ctx, event, handler, d.timeout, d.onPanic)
	d.totalTimeNs.Add(result.Duration.Nanoseconds())

	switch {
	case result.Panicked:
		d.panicked.Add(1)
	case result.Error != nil:
		d.failed.Add(1)
	}
	return result
}

// SyncStats summarises synchronous dispatch activity.
type SyncStats struct {
	Dispatched    uint64
	Failed        uint64
	Panicked      uint64
	TotalDuration time.Duration
}

// Stats returns a snapshot of dispatch counters.
func (d *SyncDispatcher) Stats() SyncStats {
	return SyncStats{
		Dispatched:    d.dispatched.Load(),
		Failed:        d.failed.Load(),
		Panicked:      d.panicked.Load(),
		TotalDuration: time.Duration(d.totalTimeNs.Load()),
	}
}
