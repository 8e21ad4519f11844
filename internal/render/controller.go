package render

import (
	"context"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/john-paul-ruf/nft-studio/internal/backend"
	"github.com/john-paul-ruf/nft-studio/internal/event"
	"github.com/john-paul-ruf/nft-studio/internal/event/events"
	"github.com/john-paul-ruf/nft-studio/internal/event/topic"
	"github.com/john-paul-ruf/nft-studio/internal/logging"
	"github.com/john-paul-ruf/nft-studio/internal/project"
)

// SnapshotSource supplies the project to render.
type SnapshotSource interface {
	Snapshot() project.Snapshot
}

// Frame is the last frame shown on the canvas.
type Frame struct {
	Index    int
	Image    image.Image
	Method   string
	Failed   bool
	Error    string
	Duration time.Duration
}

// Controller renders frames and runs the render loop.
type Controller struct {
	api    backend.API
	source SnapshotSource
	logger *logging.Logger

	emitter *event.Emitter

	busy    atomic.Bool
	looping atomic.Bool
	loopMu  sync.Mutex
	wg      sync.WaitGroup

	mu   sync.RWMutex
	last *Frame
}

// Option configures a Controller.
type Option func(*Controller)

// WithBus emits render events on bus.
func WithBus(bus event.Bus) Option {
	return func(c *Controller) {
		c.emitter = event.NewEmitter(bus, "render", "CanvasRenderer")
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// NewController returns a controller rendering source's project.
func NewController(api backend.API, source SnapshotSource, opts ...Option) *Controller {
	c := &Controller{api: api, source: source}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrNull(c.logger).WithComponent("render")
	return c
}

// Busy reports whether a render is in flight.
func (c *Controller) Busy() bool {
	return c.busy.Load()
}

// Looping reports whether the render loop is running.
func (c *Controller) Looping() bool {
	return c.looping.Load()
}

// Last returns the last frame rendered, if any.
func (c *Controller) Last() (Frame, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.last == nil {
		return Frame{}, false
	}
	return *c.last, true
}

// Trigger starts rendering frame in the background and reports whether
// it did. A trigger while another render is in flight is dropped.
func (c *Controller) Trigger(ctx context.Context, frame int) bool {
	if !c.busy.CompareAndSwap(false, true) {
		c.logger.Debug("render of frame %d dropped: render in flight", frame)
		return false
	}

	snap := c.source.Snapshot()
	ctx = context.WithoutCancel(ctx)
	c.emit(ctx, events.TopicRenderStarted, events.RenderStarted{Frame: frame})

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.busy.Store(false)
		c.render(ctx, snap, frame)
	}()
	return true
}

// Render renders frame synchronously. It honours the same in-flight rule
// as Trigger and returns ErrBusy when dropped.
func (c *Controller) Render(ctx context.Context, frame int) (Frame, error) {
	if !c.busy.CompareAndSwap(false, true) {
		return Frame{}, ErrBusy
	}
	defer c.busy.Store(false)

	c.emit(ctx, events.TopicRenderStarted, events.RenderStarted{Frame: frame})
	f := c.render(ctx, c.source.Snapshot(), frame)
	if f.Failed {
		return f, &FrameError{Frame: frame, Message: f.Error}
	}
	return f, nil
}

// Wait blocks until background renders finish.
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) render(ctx context.Context, snap project.Snapshot, frame int) Frame {
	start := time.Now()
	res, err := c.api.RenderFrame(ctx, snap, frame)
	if err := backend.Check("renderFrame", res.Result, err); err != nil {
		return c.fail(ctx, snap, frame, err)
	}
	return c.present(ctx, snap, frame, res, time.Since(start))
}

// present decodes res and publishes it as the current frame.
func (c *Controller) present(ctx context.Context, snap project.Snapshot, frame int, res backend.RenderResult, took time.Duration) Frame {
	img, err := Decode(ctx, c.api, res)
	if err != nil {
		return c.fail(ctx, snap, frame, err)
	}

	f := Frame{Index: frame, Image: img, Method: res.Method, Duration: took}
	c.store(f)
	c.logger.Debug("rendered frame %d via %s in %v", frame, res.Method, took)
	c.emit(ctx, events.TopicRenderCompleted, events.RenderCompleted{
		Frame:    frame,
		Image:    img,
		Method:   res.Method,
		Duration: took,
	})
	return f
}

func (c *Controller) fail(ctx context.Context, snap project.Snapshot, frame int, err error) Frame {
	w, h := snap.Dimensions()
	f := Frame{Index: frame, Image: ErrorFrame(w, h), Failed: true, Error: err.Error()}
	c.store(f)
	c.logger.Error("render frame %d: %v", frame, err)
	c.emit(ctx, events.TopicRenderFailed, events.RenderFailed{Frame: frame, Error: f.Error, Image: f.Image})
	return f
}

func (c *Controller) store(f Frame) {
	c.mu.Lock()
	c.last = &f
	c.mu.Unlock()
}

// ToggleLoop starts the render loop if it is stopped and stops it
// otherwise.
func (c *Controller) ToggleLoop(ctx context.Context) error {
	if c.Looping() {
		return c.StopLoop(ctx)
	}
	return c.StartLoop(ctx)
}

// StartLoop starts the backend render loop with the current project.
func (c *Controller) StartLoop(ctx context.Context) error {
	c.loopMu.Lock()
	defer c.loopMu.Unlock()
	if c.looping.Load() {
		return nil
	}

	res, err := c.api.StartRenderLoop(ctx, c.source.Snapshot())
	if err := backend.Check("startRenderLoop", res, err); err != nil {
		c.logger.Error("start render loop: %v", err)
		c.emit(ctx, events.TopicRenderLoopFailed, events.RenderLoopState{Running: false, Error: err.Error()})
		return err
	}
	c.looping.Store(true)
	c.logger.Info("render loop started")
	c.emit(ctx, events.TopicRenderLoopStarted, events.RenderLoopState{Running: true})
	return nil
}

// StopLoop stops the backend render loop.
func (c *Controller) StopLoop(ctx context.Context) error {
	c.loopMu.Lock()
	defer c.loopMu.Unlock()
	if !c.looping.Load() {
		return nil
	}

	res, err := c.api.StopRenderLoop(ctx)
	if err := backend.Check("stopRenderLoop", res, err); err != nil {
		c.logger.Error("stop render loop: %v", err)
		c.emit(ctx, events.TopicRenderLoopFailed, events.RenderLoopState{Running: true, Error: err.Error()})
		return err
	}
	c.looping.Store(false)
	c.logger.Info("render loop stopped")
	c.emit(ctx, events.TopicRenderLoopStopped, events.RenderLoopState{Running: false})
	return nil
}

// LoopFrame presents a frame pushed by the backend's render loop. Its
// signature matches the script and remote frame callbacks.
func (c *Controller) LoopFrame(frame int, res backend.RenderResult) {
	ctx := context.Background()
	snap := c.source.Snapshot()
	if err := backend.Check("renderloop", res.Result, nil); err != nil {
		c.fail(ctx, snap, frame, err)
		return
	}
	c.present(ctx, snap, frame, res, 0)
}

// Close stops the loop and waits for background renders.
func (c *Controller) Close(ctx context.Context) error {
	err := c.StopLoop(ctx)
	c.wg.Wait()
	return err
}

func (c *Controller) emit(ctx context.Context, t topic.Topic, payload any) {
	if c.emitter == nil {
		return
	}
	if err := c.emitter.Emit(ctx, t, payload); err != nil {
		c.logger.Warn("emit %s: %v", t, err)
	}
}
