// Package app wires NFT Studio's services together and runs the terminal
// front-end. It owns component lifecycles: bootstrap in dependency order,
// shutdown in reverse.
package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/john-paul-ruf/nft-studio/internal/backend"
	"github.com/john-paul-ruf/nft-studio/internal/colorscheme"
	"github.com/john-paul-ruf/nft-studio/internal/config"
	"github.com/john-paul-ruf/nft-studio/internal/effects"
	"github.com/john-paul-ruf/nft-studio/internal/event"
	"github.com/john-paul-ruf/nft-studio/internal/event/events"
	"github.com/john-paul-ruf/nft-studio/internal/history"
	"github.com/john-paul-ruf/nft-studio/internal/logging"
	"github.com/john-paul-ruf/nft-studio/internal/project"
	"github.com/john-paul-ruf/nft-studio/internal/project/lifecycle"
	"github.com/john-paul-ruf/nft-studio/internal/render"
	"github.com/john-paul-ruf/nft-studio/internal/selection"
	"github.com/john-paul-ruf/nft-studio/internal/theme"
	"github.com/john-paul-ruf/nft-studio/internal/toolbar"
	"github.com/john-paul-ruf/nft-studio/internal/tui"
	"github.com/john-paul-ruf/nft-studio/internal/wizard"
)

// Application is the central coordinator for all NFT Studio components.
type Application struct {
	mu sync.RWMutex

	// Core infrastructure
	bus     event.Bus
	monitor *event.Monitor
	notices *event.BusAdapter
	logger  *logging.Logger
	prefs   *config.Service
	metrics *Metrics

	// Appearance
	themes    *theme.Registry
	schemes   *colorscheme.Service
	themeName string

	// Backend
	api         backend.API
	apiCloser   io.Closer
	frames      *frameRelay
	ownsBackend bool

	// Project services
	state    *project.State
	history  *history.Service
	selector *selection.Selector
	effects  *effects.Controller
	render   *render.Controller
	viewport *render.Viewport
	toolbar  *toolbar.Actions
	projects *lifecycle.Manager

	subs *subscriptionManager

	running  atomic.Bool
	shutdown sync.Once
	opts     Options
}

// Options configures the application.
type Options struct {
	// ConfigPath is the preferences file. Empty means config.DefaultPath.
	ConfigPath string

	// ProjectPath is a project file to open on startup.
	ProjectPath string

	// ResumePath is a render settings file to resume on startup. It wins
	// over ProjectPath.
	ResumePath string

	// LogLevel overrides the preferences log level.
	LogLevel string

	// LogOutput receives log lines. Nil means stderr.
	LogOutput io.Writer

	// ReadOnly disables every project mutation from the UI.
	ReadOnly bool

	// Backend replaces the backend configured in the preferences. The
	// application does not close it.
	Backend backend.API

	// Watch reloads the preferences when the file changes.
	Watch bool
}

// New creates an Application with every component wired and started.
func New(ctx context.Context, opts Options) (*Application, error) {
	app := &Application{
		opts:    opts,
		metrics: NewMetrics(),
		frames:  &frameRelay{},
	}
	if err := app.bootstrap(ctx); err != nil {
		app.Shutdown()
		return nil, err
	}
	return app, nil
}

// Run loads the startup project, then drives the terminal front-end on
// screen until the user quits or ctx is cancelled. The screen must be
// initialized; Run does not finalize it.
func (app *Application) Run(ctx context.Context, screen tcell.Screen) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	var schemeIDs []string
	for _, sc := range app.schemes.All() {
		schemeIDs = append(schemeIDs, sc.ID)
	}
	ui := tui.New(screen, app.bus, app.state,
		tui.WithSelector(app.selector),
		tui.WithThemes(app.themes, app.ThemeName()),
		tui.WithSchemes(schemeIDs),
		tui.WithWizard(app.NewWizard),
		tui.WithReadOnly(app.opts.ReadOnly),
		tui.WithLogger(app.logger),
	)
	if err := ui.Start(); err != nil {
		return NewComponentError("tui", "start", err)
	}
	defer ui.Close()

	if err := app.Startup(ctx); err != nil {
		app.logger.Warn("startup: %v", err)
	}
	return ui.Run(ctx)
}

// Startup loads the effect catalog and the startup project. Failures are
// reported on app:error by the components themselves; the returned error
// is informational.
func (app *Application) Startup(ctx context.Context) error {
	var errs []error
	if _, err := app.effects.LoadAvailable(ctx); err != nil {
		errs = append(errs, NewComponentError("effects", "load catalog", err))
	}

	em := event.NewEmitter(app.bus, "app", "Application")
	switch {
	case app.opts.ResumePath != "":
		if err := em.Emit(ctx, events.TopicProjectResume, events.ProjectResume{SettingsPath: app.opts.ResumePath}); err != nil {
			errs = append(errs, NewOperationError("resume", app.opts.ResumePath, err))
		}
	case app.opts.ProjectPath != "":
		if err := em.Emit(ctx, events.TopicProjectOpen, events.ProjectOpen{Path: app.opts.ProjectPath}); err != nil {
			errs = append(errs, NewOperationError("open", app.opts.ProjectPath, err))
		}
	}
	return errors.Join(errs...)
}

// NewWizard returns an effect wizard whose result is applied to the
// project as one undoable command. Sub-effects without a primary in the
// same run attach to the selected effect.
func (app *Application) NewWizard(back func()) *wizard.Wizard {
	return wizard.New(app.api,
		wizard.WithBack(back),
		wizard.WithLogger(app.logger),
		wizard.WithComplete(func(ctx context.Context, b wizard.Buckets) error {
			var parentID string
			if ref, ok := app.selector.Current(); ok {
				parentID = ref.EffectID
			}
			cmd, err := b.Command(parentID)
			if err != nil {
				return err
			}
			return app.history.Execute(ctx, cmd)
		}),
	)
}

// Save writes the project to path, or to the path it was opened from.
func (app *Application) Save(ctx context.Context, path string) error {
	if err := app.projects.Save(ctx, path); err != nil {
		return NewOperationError("save", path, err)
	}
	return nil
}

// Shutdown stops every component in reverse bootstrap order. It is safe
// to call more than once.
func (app *Application) Shutdown() {
	app.shutdown.Do(app.stop)
}

func (app *Application) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if app.subs != nil {
		app.subs.cleanup()
	}
	if app.projects != nil {
		app.projects.Close()
	}
	if app.toolbar != nil {
		app.toolbar.Close()
	}
	if app.render != nil {
		if err := app.render.Close(ctx); err != nil {
			app.logger.Warn("render: %v", err)
		}
	}
	if app.effects != nil {
		app.effects.Close()
	}
	if app.history != nil {
		app.history.Close()
	}
	if app.apiCloser != nil && app.ownsBackend {
		if err := app.apiCloser.Close(); err != nil {
			app.logger.Warn("%v", NewComponentError("backend", "close", err))
		}
	}
	if app.notices != nil {
		app.notices.Close()
	}
	if app.prefs != nil {
		if err := app.prefs.Close(); err != nil {
			app.logger.Warn("%v", NewComponentError("preferences", "close", err))
		}
	}
	if app.monitor != nil {
		app.monitor.Close()
	}
	if app.bus != nil {
		if err := app.bus.Stop(ctx); err != nil {
			app.logger.Warn("%v", NewComponentError("event bus", "stop", errors.Join(ErrShutdownTimeout, err)))
		}
	}
}

// IsRunning reports whether Run is active.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// ThemeName returns the active UI theme.
func (app *Application) ThemeName() string {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.themeName
}

// Bus returns the event bus.
func (app *Application) Bus() event.Bus { return app.bus }

// Monitor returns the recent event history.
func (app *Application) Monitor() *event.Monitor { return app.monitor }

// State returns the project state.
func (app *Application) State() *project.State { return app.state }

// History returns the command service.
func (app *Application) History() *history.Service { return app.history }

// Selector returns the effect selection.
func (app *Application) Selector() *selection.Selector { return app.selector }

// Effects returns the effect management controller.
func (app *Application) Effects() *effects.Controller { return app.effects }

// Render returns the render controller.
func (app *Application) Render() *render.Controller { return app.render }

// Toolbar returns the toolbar actions.
func (app *Application) Toolbar() *toolbar.Actions { return app.toolbar }

// Projects returns the project lifecycle manager.
func (app *Application) Projects() *lifecycle.Manager { return app.projects }

// Preferences returns the preferences service.
func (app *Application) Preferences() *config.Service { return app.prefs }

// ColorSchemes returns the color scheme service.
func (app *Application) ColorSchemes() *colorscheme.Service { return app.schemes }

// Logger returns the application logger.
func (app *Application) Logger() *logging.Logger { return app.logger }
