// Package toolbar handles the canvas toolbar.
//
// CanvasToolbar is what a front-end calls; it only emits toolbar:*
// events. Actions subscribes to those events and performs them: project
// changes go through the history service so they can be undone, render
// requests go to the render controller, and zoom goes to the viewport.
package toolbar

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/john-paul-ruf/nft-studio/internal/event"
	"github.com/john-paul-ruf/nft-studio/internal/event/events"
	"github.com/john-paul-ruf/nft-studio/internal/event/topic"
	"github.com/john-paul-ruf/nft-studio/internal/history"
	"github.com/john-paul-ruf/nft-studio/internal/logging"
	"github.com/john-paul-ruf/nft-studio/internal/project"
)

var (
	// ErrUnknownTheme is returned for theme names with no definition.
	ErrUnknownTheme = errors.New("unknown theme")

	// ErrUnknownScheme is returned for color scheme IDs with no
	// definition.
	ErrUnknownScheme = errors.New("unknown color scheme")
)

// Renderer is the part of the render controller the toolbar drives.
type Renderer interface {
	Trigger(ctx context.Context, frame int) bool
	ToggleLoop(ctx context.Context) error
}

// Zoomer is the canvas viewport.
type Zoomer interface {
	ZoomIn() float64
	ZoomOut() float64
	Reset() float64
}

// Themes resolves and persists the UI theme.
type Themes interface {
	Has(name string) bool
	SaveTheme(name string) error
}

// Schemes resolves color schemes by ID.
type Schemes interface {
	Lookup(id string) (name string, data project.ColorSchemeData, ok bool)
}

// Actions performs toolbar events.
type Actions struct {
	bus      event.Bus
	history  *history.Service
	renderer Renderer
	zoomer   Zoomer
	themes   Themes
	schemes  Schemes
	logger   *logging.Logger
	emitter  *event.Emitter

	mu             sync.Mutex
	subs           *event.Subscriber
	lastResolution string
	pending        string // resolution whose command is executing
	frame          int
}

// Option configures Actions.
type Option func(*Actions)

// WithRenderer routes render events to r.
func WithRenderer(r Renderer) Option {
	return func(a *Actions) { a.renderer = r }
}

// WithZoomer routes zoom events to z.
func WithZoomer(z Zoomer) Option {
	return func(a *Actions) { a.zoomer = z }
}

// WithThemes enables theme changes.
func WithThemes(t Themes) Option {
	return func(a *Actions) { a.themes = t }
}

// WithSchemes enables color scheme changes.
func WithSchemes(s Schemes) Option {
	return func(a *Actions) { a.schemes = s }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(a *Actions) { a.logger = l }
}

// NewActions returns toolbar actions editing hist's project.
func NewActions(bus event.Bus, hist *history.Service, opts ...Option) *Actions {
	a := &Actions{
		bus:     bus,
		history: hist,
		emitter: event.NewEmitter(bus, "toolbar", "EventDrivenToolbarActions"),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = logging.OrNull(a.logger).WithComponent("toolbar")
	return a
}

// Start subscribes to every toolbar topic.
func (a *Actions) Start() error {
	subs := event.NewSubscriber(a.bus)

	err := errors.Join(
		on(subs, events.TopicToolbarResolutionChange, func(ctx context.Context, p events.ResolutionChange) error {
			_, err := a.ChangeResolution(ctx, p.Resolution)
			return err
		}),
		on(subs, events.TopicToolbarOrientationToggle, func(ctx context.Context, _ events.OrientationToggle) error {
			return a.ToggleOrientation(ctx)
		}),
		on(subs, events.TopicToolbarFramesChange, func(ctx context.Context, p events.FramesChange) error {
			return a.ChangeFrames(ctx, p.Frames)
		}),
		on(subs, events.TopicToolbarFrameSelect, func(ctx context.Context, p events.FrameSelect) error {
			return a.SelectFrame(ctx, p.Frame)
		}),
		on(subs, events.TopicToolbarRenderTrigger, func(ctx context.Context, p events.RenderTrigger) error {
			a.Render(ctx, p.Frame)
			return nil
		}),
		on(subs, events.TopicToolbarRenderLoopToggle, func(ctx context.Context, _ events.RenderLoopToggle) error {
			return a.ToggleRenderLoop(ctx)
		}),
		on(subs, events.TopicToolbarThemeChange, func(ctx context.Context, p events.ThemeChange) error {
			return a.ChangeTheme(ctx, p.Theme)
		}),
		on(subs, events.TopicToolbarColorSchemeChange, func(ctx context.Context, p events.ColorSchemeChange) error {
			return a.ChangeColorScheme(ctx, p.SchemeID)
		}),
	)
	if err == nil {
		_, err = subs.SubscribeFunc(events.TopicToolbarZoomAll, a.handleZoom)
	}
	if err != nil {
		subs.Close()
		return fmt.Errorf("toolbar: subscribe: %w", err)
	}

	a.mu.Lock()
	a.subs = subs
	a.mu.Unlock()
	return nil
}

func on[T any](subs *event.Subscriber, t topic.Topic, fn func(context.Context, T) error) error {
	_, err := event.SubscribePayload(subs, t, fn)
	return err
}

// Close unsubscribes from every toolbar topic.
func (a *Actions) Close() {
	a.mu.Lock()
	subs := a.subs
	a.subs = nil
	a.mu.Unlock()
	if subs != nil {
		subs.Close()
	}
}

// ChangeResolution runs a ChangeResolutionCommand unless the request
// repeats one still executing, or repeats the last applied resolution and
// the project still has it. It reports whether a command ran.
func (a *Actions) ChangeResolution(ctx context.Context, key string) (bool, error) {
	if _, ok := project.LookupResolution(key); !ok {
		a.logger.Error("unknown resolution %q", key)
		return false, fmt.Errorf("%w: %s", project.ErrUnknownResolution, key)
	}

	a.mu.Lock()
	if key == a.pending || (key == a.lastResolution && a.history.State().Resolution() == key) {
		a.mu.Unlock()
		a.logger.Debug("resolution %s unchanged; ignoring duplicate", key)
		return false, nil
	}
	a.pending = key
	a.mu.Unlock()

	err := a.history.Execute(ctx, history.NewChangeResolutionCommand(key))

	a.mu.Lock()
	if a.pending == key {
		a.pending = ""
	}
	if err == nil {
		a.lastResolution = key
	} else if a.lastResolution == key {
		a.lastResolution = ""
	}
	a.mu.Unlock()
	if err != nil {
		return false, err
	}
	return true, nil
}

// ToggleOrientation swaps horizontal and vertical output.
func (a *Actions) ToggleOrientation(ctx context.Context) error {
	return a.history.Execute(ctx, history.NewToggleOrientationCommand())
}

// ChangeFrames sets the frame count. The current frame is clamped into
// the new range.
func (a *Actions) ChangeFrames(ctx context.Context, frames int) error {
	if frames <= 0 {
		a.logger.Error("invalid frame count %d", frames)
		return fmt.Errorf("%w: %d", project.ErrInvalidFrames, frames)
	}
	if frames == a.history.State().NumFrames() {
		return nil
	}
	if err := a.history.Execute(ctx, history.NewChangeFrameCountCommand(frames)); err != nil {
		return err
	}

	a.mu.Lock()
	clamped := a.frame >= frames
	if clamped {
		a.frame = frames - 1
	}
	frame := a.frame
	a.mu.Unlock()
	if clamped {
		a.emit(ctx, events.TopicFrameSelected, events.FrameSelected{Frame: frame})
	}
	return nil
}

// SelectFrame moves the canvas to frame and emits frame:selected.
func (a *Actions) SelectFrame(ctx context.Context, frame int) error {
	n := a.history.State().NumFrames()
	if frame < 0 || frame >= n {
		return fmt.Errorf("%w: frame %d of %d", project.ErrIndexOutOfRange, frame, n)
	}
	a.mu.Lock()
	a.frame = frame
	a.mu.Unlock()
	a.emit(ctx, events.TopicFrameSelected, events.FrameSelected{Frame: frame})
	return nil
}

// Frame returns the selected frame.
func (a *Actions) Frame() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frame
}

// Render triggers a render of frame and reports whether it started.
func (a *Actions) Render(ctx context.Context, frame int) bool {
	if a.renderer == nil {
		return false
	}
	return a.renderer.Trigger(ctx, frame)
}

// ToggleRenderLoop starts or stops the render loop.
func (a *Actions) ToggleRenderLoop(ctx context.Context) error {
	if a.renderer == nil {
		return nil
	}
	return a.renderer.ToggleLoop(ctx)
}

func (a *Actions) handleZoom(ctx context.Context, ev any) error {
	if a.zoomer == nil {
		return nil
	}
	var z float64
	switch event.ToEnvelope(ev).Topic {
	case events.TopicToolbarZoomIn:
		z = a.zoomer.ZoomIn()
	case events.TopicToolbarZoomOut:
		z = a.zoomer.ZoomOut()
	case events.TopicToolbarZoomReset:
		z = a.zoomer.Reset()
	default:
		return nil
	}
	a.emit(ctx, events.TopicCanvasZoomChanged, events.CanvasZoomChanged{Zoom: z})
	return nil
}

// ChangeTheme switches and persists the UI theme.
func (a *Actions) ChangeTheme(ctx context.Context, name string) error {
	if a.themes == nil {
		return nil
	}
	if !a.themes.Has(name) {
		a.logger.Error("unknown theme %q", name)
		return fmt.Errorf("%w: %s", ErrUnknownTheme, name)
	}
	a.emit(ctx, events.TopicThemeChanged, events.ThemeChanged{Theme: name})
	if err := a.themes.SaveTheme(name); err != nil {
		a.logger.Warn("persist theme %s: %v", name, err)
	}
	return nil
}

// ChangeColorScheme applies a color scheme to the project.
func (a *Actions) ChangeColorScheme(ctx context.Context, id string) error {
	if a.schemes == nil {
		return nil
	}
	name, data, ok := a.schemes.Lookup(id)
	if !ok {
		a.logger.Error("unknown color scheme %q", id)
		return fmt.Errorf("%w: %s", ErrUnknownScheme, id)
	}
	if err := a.history.Execute(ctx, history.NewChangeColorSchemeCommand(id, name, data)); err != nil {
		return err
	}
	a.emit(ctx, events.TopicColorSchemeChanged, events.ColorSchemeChanged{SchemeID: id, Name: name})
	return nil
}

func (a *Actions) emit(ctx context.Context, t topic.Topic, payload any) {
	if err := a.emitter.Emit(ctx, t, payload); err != nil {
		a.logger.Warn("emit %s: %v", t, err)
	}
}
