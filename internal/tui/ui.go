package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/john-paul-ruf/nft-studio/internal/effect"
	"github.com/john-paul-ruf/nft-studio/internal/event"
	"github.com/john-paul-ruf/nft-studio/internal/event/events"
	"github.com/john-paul-ruf/nft-studio/internal/event/topic"
	"github.com/john-paul-ruf/nft-studio/internal/logging"
	"github.com/john-paul-ruf/nft-studio/internal/menu"
	"github.com/john-paul-ruf/nft-studio/internal/project"
	"github.com/john-paul-ruf/nft-studio/internal/selection"
	"github.com/john-paul-ruf/nft-studio/internal/theme"
	"github.com/john-paul-ruf/nft-studio/internal/toolbar"
	"github.com/john-paul-ruf/nft-studio/internal/wizard"
)

type overlay int

const (
	overlayNone overlay = iota
	overlayPicker
	overlayMenu
	overlayConfig
	overlayWizard
)

// menuRow is one visible line of a flattened context menu.
type menuRow struct {
	item  menu.Item
	depth int
}

// UI is the terminal front-end.
type UI struct {
	screen  tcell.Screen
	bus     event.Bus
	state   *project.State
	sel     *selection.Selector
	themes  *theme.Registry
	emitter *event.Emitter
	toolbar *toolbar.CanvasToolbar
	picker  *menu.Picker
	logger  *logging.Logger

	mu        sync.Mutex
	subs      *event.Subscriber
	theme     theme.Theme
	catalog   effect.Catalog
	readOnly  bool
	cursor    int
	frame     int
	zoom      float64
	rendering bool
	looping   bool
	lastErr   string
	message   string

	overlay   overlay
	query     string
	pickIndex int
	menuRows  []menuRow
	menuIndex int

	config configPanel

	newWizard func(back func()) *wizard.Wizard
	wiz       *wizard.Wizard
	wizIndex  int
	schemes   []string
}

// Option configures a UI.
type Option func(*UI)

// WithSelector shows the current selection in the effect list.
func WithSelector(sel *selection.Selector) Option {
	return func(u *UI) { u.sel = sel }
}

// WithThemes sets the theme registry and the initial theme name.
func WithThemes(reg *theme.Registry, name string) Option {
	return func(u *UI) {
		u.themes = reg
		if t, err := reg.Get(name); err == nil {
			u.theme = t
		}
	}
}

// WithCatalog seeds the effect catalog used by the picker and menus.
func WithCatalog(c effect.Catalog) Option {
	return func(u *UI) { u.catalog = c }
}

// WithReadOnly disables keys that change the project.
func WithReadOnly(readOnly bool) Option {
	return func(u *UI) { u.readOnly = readOnly }
}

// WithWizard enables the w key. newWizard is called each time the wizard
// opens; back closes the overlay.
func WithWizard(newWizard func(back func()) *wizard.Wizard) Option {
	return func(u *UI) { u.newWizard = newWizard }
}

// WithSchemes sets the color scheme IDs the c key cycles through.
func WithSchemes(ids []string) Option {
	return func(u *UI) { u.schemes = append([]string(nil), ids...) }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(u *UI) { u.logger = l }
}

// New creates a UI drawing on screen. The screen must already be
// initialized.
func New(screen tcell.Screen, bus event.Bus, state *project.State, opts ...Option) *UI {
	u := &UI{
		screen:  screen,
		bus:     bus,
		state:   state,
		theme:   theme.BuiltIns()[0],
		emitter: event.NewEmitter(bus, "tui", "Terminal"),
		toolbar: toolbar.NewCanvasToolbar(bus),
		zoom:    1,
	}
	for _, opt := range opts {
		opt(u)
	}
	u.picker = menu.NewPicker(bus, u.catalog)
	u.logger = logging.OrNull(u.logger).WithComponent("tui")
	return u
}

// Start subscribes to the events the UI displays.
func (u *UI) Start() error {
	subs := event.NewSubscriber(u.bus)

	err := errors.Join(
		watch(u, subs, events.TopicRenderStarted, func(_ events.RenderStarted) {
			u.rendering = true
		}),
		watch(u, subs, events.TopicRenderCompleted, func(p events.RenderCompleted) {
			u.rendering = false
			u.message = fmt.Sprintf("rendered frame %d in %s", p.Frame, p.Duration.Round(time.Millisecond))
		}),
		watch(u, subs, events.TopicRenderFailed, func(p events.RenderFailed) {
			u.rendering = false
			u.lastErr = p.Error
		}),
		watch(u, subs, events.TopicRenderLoopStarted, func(events.RenderLoopState) {
			u.looping = true
		}),
		watch(u, subs, events.TopicRenderLoopStopped, func(events.RenderLoopState) {
			u.looping = false
		}),
		watch(u, subs, events.TopicRenderLoopFailed, func(p events.RenderLoopState) {
			u.looping = false
			u.lastErr = p.Error
		}),
		watch(u, subs, events.TopicCanvasZoomChanged, func(p events.CanvasZoomChanged) {
			u.zoom = p.Zoom
		}),
		watch(u, subs, events.TopicFrameSelected, func(p events.FrameSelected) {
			u.frame = p.Frame
		}),
		watch(u, subs, events.TopicAppError, func(p events.AppError) {
			u.lastErr = p.Title
			if p.Message != "" {
				u.lastErr += ": " + p.Message
			}
		}),
		watch(u, subs, events.TopicEffectsAvailable, func(p events.EffectsAvailable) {
			u.catalog = p.Catalog
			u.picker.SetCatalog(p.Catalog)
		}),
		watch(u, subs, events.TopicThemeChanged, func(p events.ThemeChanged) {
			if u.themes == nil {
				return
			}
			if t, err := u.themes.Get(p.Theme); err == nil {
				u.theme = t
			}
		}),
		watch(u, subs, events.TopicProjectLoaded, func(p events.ProjectLoaded) {
			u.cursor = 0
			u.frame = 0
			u.lastErr = ""
			u.message = "loaded " + p.ProjectName
		}),
		watch(u, subs, events.TopicProjectUpdated, func(events.ProjectUpdated) {
			u.clampCursorLocked()
		}),
		watch(u, subs, events.TopicCommandExecuted, func(p events.CommandInfo) {
			u.message = p.Description
		}),
		watch(u, subs, events.TopicPanelEffectRightClick, func(p events.EffectRightClick) {
			u.openMenuLocked(p)
		}),
		watch(u, subs, events.TopicConfigPanelOpen, func(events.ConfigPanelOpen) {
			u.openConfigLocked()
		}),
		watch(u, subs, events.TopicConfigPanelClose, func(events.ConfigPanelClose) {
			if u.overlay == overlayConfig {
				u.overlay = overlayNone
			}
		}),
	)
	if err != nil {
		subs.Close()
		return fmt.Errorf("tui: subscribe: %w", err)
	}

	u.mu.Lock()
	u.subs = subs
	u.mu.Unlock()
	return nil
}

// watch subscribes fn under the UI lock and schedules a redraw.
func watch[T any](u *UI, subs *event.Subscriber, t topic.Topic, fn func(T)) error {
	_, err := event.SubscribePayload(subs, t, func(_ context.Context, p T) error {
		u.mu.Lock()
		fn(p)
		u.mu.Unlock()
		u.wake()
		return nil
	})
	return err
}

// Close unsubscribes from the bus.
func (u *UI) Close() {
	u.mu.Lock()
	subs := u.subs
	u.subs = nil
	u.mu.Unlock()
	if subs != nil {
		subs.Close()
	}
}

// wake asks the event loop to redraw.
func (u *UI) wake() {
	// Best-effort; a full queue already means a redraw is pending.
	_ = u.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

// Run draws and handles terminal events until the user quits or ctx is
// done.
func (u *UI) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, u.wake)
	defer stop()

	u.Draw()
	for {
		ev := u.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if u.HandleKey(ctx, ev) {
				return nil
			}
		case *tcell.EventResize:
			u.screen.Sync()
		}
		u.Draw()
	}
}

func (u *UI) clampCursorLocked() {
	n := u.state.EffectCount()
	if u.cursor >= n {
		u.cursor = n - 1
	}
	if u.cursor < 0 {
		u.cursor = 0
	}
}

// Cursor returns the index of the highlighted effect.
func (u *UI) Cursor() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.cursor
}

// LastError returns the most recent error shown in the status line.
func (u *UI) LastError() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.lastErr
}
