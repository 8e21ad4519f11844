package app

import (
	"context"
	"path/filepath"

	"github.com/john-paul-ruf/nft-studio/internal/colorscheme"
	"github.com/john-paul-ruf/nft-studio/internal/config"
	"github.com/john-paul-ruf/nft-studio/internal/effects"
	"github.com/john-paul-ruf/nft-studio/internal/event"
	"github.com/john-paul-ruf/nft-studio/internal/history"
	"github.com/john-paul-ruf/nft-studio/internal/logging"
	"github.com/john-paul-ruf/nft-studio/internal/project"
	"github.com/john-paul-ruf/nft-studio/internal/project/lifecycle"
	"github.com/john-paul-ruf/nft-studio/internal/render"
	"github.com/john-paul-ruf/nft-studio/internal/selection"
	"github.com/john-paul-ruf/nft-studio/internal/theme"
	"github.com/john-paul-ruf/nft-studio/internal/toolbar"
)

// monitorCapacity bounds the recent event history.
const monitorCapacity = 256

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap(ctx context.Context) error {
	// 1. Logger
	logCfg := logging.DefaultConfig()
	if app.opts.LogOutput != nil {
		logCfg.Output = app.opts.LogOutput
	}
	if app.opts.LogLevel != "" {
		logCfg.Level = logging.ParseLevel(app.opts.LogLevel)
	}
	app.logger = logging.New(logCfg)

	// 2. Event bus
	app.bus = event.NewBus(
		event.WithPanicHandler(func(ev any, recovered any) {
			app.logger.Error("handler panic on %s: %v", event.ToEnvelope(ev).Topic, recovered)
		}),
		event.WithErrorHandler(func(ev any, err error) {
			app.logger.Debug("handler error on %s: %v", event.ToEnvelope(ev).Topic, err)
		}),
	)
	if err := app.bus.Start(); err != nil {
		return &InitError{Component: "event bus", Err: err}
	}
	monitor, err := event.NewMonitor(app.bus, monitorCapacity)
	if err != nil {
		return &InitError{Component: "event monitor", Err: err}
	}
	app.monitor = monitor
	app.notices = event.NewBusAdapter(app.bus, "remote")

	// 3. Preferences. Load errors are non-fatal; defaults apply.
	path := app.opts.ConfigPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return &InitError{Component: "preferences", Err: err}
		}
		path = p
	}
	app.prefs = config.NewService(path,
		config.WithBus(app.bus),
		config.WithLogger(app.logger),
	)
	if err := app.prefs.Load(); err != nil {
		app.logger.Warn("preferences: %v; using defaults", err)
	}
	prefs := app.prefs.Get()
	if app.opts.LogLevel == "" {
		app.logger.SetLevel(logging.ParseLevel(prefs.LogLevel))
	}
	if app.opts.Watch {
		if err := app.prefs.Watch(); err != nil {
			app.logger.Warn("watch preferences: %v", err)
		}
	}

	// 4. Themes and color schemes
	app.themes = theme.NewRegistry()
	app.themeName = theme.Dark
	if app.themes.Has(prefs.Theme) {
		app.themeName = prefs.Theme
	}
	schemeFile := prefs.ColorSchemes.UserFile
	if schemeFile == "" {
		schemeFile = filepath.Join(filepath.Dir(path), "colorschemes.yaml")
	}
	app.schemes = colorscheme.NewService(schemeFile, colorscheme.WithLogger(app.logger))
	if err := app.schemes.Load(); err != nil {
		app.logger.Warn("color schemes: %v", err)
	}

	// 5. Backend
	if app.opts.Backend != nil {
		app.api = app.opts.Backend
	} else {
		api, closer, err := newBackend(ctx, prefs.Backend, path, app.frames, app.notices, app.logger)
		if err != nil {
			return &InitError{Component: "backend", Err: err}
		}
		app.api, app.apiCloser, app.ownsBackend = api, closer, true
	}

	// 6. Project state and history
	app.state = project.New(app.prefs.Template())
	app.history = history.NewService(app.state,
		history.WithBus(app.bus),
		history.WithLogger(app.logger),
	)
	if err := app.history.Listen(); err != nil {
		return &InitError{Component: "history", Err: err}
	}
	app.selector = selection.New(app.state,
		selection.WithBus(app.bus),
		selection.WithReadOnly(app.opts.ReadOnly),
		selection.WithLogger(app.logger),
	)

	// 7. Effect management
	app.effects = effects.New(app.api, app.history, app.selector,
		effects.WithBus(app.bus),
		effects.WithLogger(app.logger),
	)
	if err := app.effects.Start(); err != nil {
		return &InitError{Component: "effects", Err: err}
	}

	// 8. Rendering
	app.render = render.NewController(app.api, app.state,
		render.WithBus(app.bus),
		render.WithLogger(app.logger),
	)
	app.frames.set(app.render.LoopFrame)
	app.viewport = render.NewViewport()

	// 9. Toolbar
	app.toolbar = toolbar.NewActions(app.bus, app.history,
		toolbar.WithRenderer(app.render),
		toolbar.WithZoomer(app.viewport),
		toolbar.WithThemes(themeStore{registry: app.themes, prefs: app.prefs}),
		toolbar.WithSchemes(app.schemes),
		toolbar.WithLogger(app.logger),
	)
	if err := app.toolbar.Start(); err != nil {
		return &InitError{Component: "toolbar", Err: err}
	}

	// 10. Project lifecycle
	app.projects = lifecycle.New(app.api, app.history, app.bus,
		lifecycle.WithLooper(app.render),
		lifecycle.WithSelector(app.selector),
		lifecycle.WithTemplate(app.prefs.Template),
		lifecycle.WithRecent(func(p string) {
			if err := app.prefs.AddRecent(p); err != nil {
				app.logger.Warn("recent projects: %v", err)
			}
		}),
		lifecycle.WithLogger(app.logger),
	)
	if err := app.projects.Start(); err != nil {
		return &InitError{Component: "projects", Err: err}
	}

	// 11. Cross-component subscriptions
	app.subs = newSubscriptionManager(app)
	if err := app.subs.setup(); err != nil {
		return &InitError{Component: "subscriptions", Err: err}
	}
	return nil
}
