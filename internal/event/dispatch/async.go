package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// AsyncDispatcher runs handlers on a bounded worker pool.
// Tasks are dropped, not blocked on, when the queue is full.
type AsyncDispatcher struct {
	queueSize   int
	workerCount int
	timeout     time.Duration

	mu      sync.Mutex
	queue   chan asyncTask
	running atomic.Bool
	wg      sync.WaitGroup

	panicHandler PanicHandler

	enqueued  atomic.Uint64
	succeeded atomic.Uint64
	failed    atomic.Uint64
	panicked  atomic.Uint64
	dropped   atomic.Uint64
}

type asyncTask struct {
	ctx     context.Context
	event   any
	handler Handler
}

// AsyncOption configures an AsyncDispatcher.
type AsyncOption func(*AsyncDispatcher)

// WithQueueSize sets the task queue capacity.
func WithQueueSize(size int) AsyncOption {
	return func(d *AsyncDispatcher) {
		if size > 0 {
			d.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) AsyncOption {
	return func(d *AsyncDispatcher) {
		if count > 0 {
			d.workerCount = count
		}
	}
}

// WithAsyncTimeout sets the per-handler deadline.
func WithAsyncTimeout(timeout time.Duration) AsyncOption {
	return func(d *AsyncDispatcher) {
		d.timeout = timeout
	}
}

// WithAsyncPanicHandler sets the panic callback used by the workers.
func WithAsyncPanicHandler(h PanicHandler) AsyncOption {
	return func(d *AsyncDispatcher) {
		if h != nil {
			d.panicHandler = h
		}
	}
}

// NewAsyncDispatcher creates a stopped asynchronous dispatcher.
func NewAsyncDispatcher(opts ...AsyncOption) *AsyncDispatcher {
	d := &AsyncDispatcher{
		queueSize:   1024,
		workerCount: 4,
		timeout:     5 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches the worker pool.
func (d *AsyncDispatcher) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running.Load() {
		return ErrAlreadyRunning
	}

	d.queue = make(chan asyncTask, d.queueSize)
	d.running.Store(true)
	for i := 0; i < d.workerCount; i++ {
		d.wg.Add(1)
		go d.worker(d.queue)
	}
	return nil
}

// Stop closes the queue and waits for queued tasks to drain, or for ctx.
func (d *AsyncDispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.running.Load() {
		d.mu.Unlock()
		return ErrNotRunning
	}
	d.running.Store(false)
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enqueue submits a task. Returns ErrQueueFull when the queue is at capacity.
func (d *AsyncDispatcher) Enqueue(ctx context.Context, event any, handler Handler) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running.Load() {
		return ErrNotRunning
	}

	select {
	case d.queue <- asyncTask{ctx: ctx, event: event, handler: handler}:
		d.enqueued.Add(1)
		return nil
	default:
		d.dropped.Add(1)
		return ErrQueueFull
	}
}

func (d *AsyncDispatcher) worker(queue <-chan asyncTask) {
	defer d.wg.Done()

	for task := range queue {
		result := invoke(task.ctx, task.event, task.handler, d.timeout, d.panicHandler)
		switch {
		case result.Panicked:
			d.panicked.Add(1)
		case result.Error != nil:
			d.failed.Add(1)
		default:
			d.succeeded.Add(1)
		}
	}
}

// IsRunning reports whether the worker pool is accepting tasks.
func (d *AsyncDispatcher) IsRunning() bool {
	return d.running.Load()
}

// AsyncStats summarises asynchronous dispatch activity.
type AsyncStats struct {
	Enqueued   uint64
	Succeeded  uint64
	Failed     uint64
	Panicked   uint64
	Dropped    uint64
	QueueDepth int
}

// Stats returns a snapshot of dispatch counters.
func (d *AsyncDispatcher) Stats() AsyncStats {
	d.mu.Lock()
	depth := 0
	if d.running.Load() {
		depth = len(d.queue)
	}
	d.mu.Unlock()

	return AsyncStats{
		Enqueued:   d.enqueued.Load(),
		Succeeded:  d.succeeded.Load(),
		Failed:     d.failed.Load(),
		Panicked:   d.panicked.Load(),
		Dropped:    d.dropped.Load(),
		QueueDepth: depth,
	}
}
