package app

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/john-paul-ruf/nft-studio/internal/backend"
	"github.com/john-paul-ruf/nft-studio/internal/backend/backendtest"
	"github.com/john-paul-ruf/nft-studio/internal/config"
	"github.com/john-paul-ruf/nft-studio/internal/effect"
	"github.com/john-paul-ruf/nft-studio/internal/event"
	"github.com/john-paul-ruf/nft-studio/internal/event/events"
	"github.com/john-paul-ruf/nft-studio/internal/project"
	"github.com/john-paul-ruf/nft-studio/internal/theme"
	"github.com/john-paul-ruf/nft-studio/internal/wizard"
)

func newTestApp(t *testing.T, fake *backendtest.Fake, mutate func(*Options)) *Application {
	t.Helper()
	opts := Options{
		ConfigPath: filepath.Join(t.TempDir(), "preferences.toml"),
		Backend:    fake,
		LogOutput:  io.Discard,
	}
	if mutate != nil {
		mutate(&opts)
	}
	app, err := New(context.Background(), opts)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(app.Shutdown)
	return app
}

// slowRender makes render durations measurable.
func slowRender(ctx context.Context, snap project.Snapshot, frame int) (backend.RenderResult, error) {
	time.Sleep(time.Millisecond)
	return backend.RenderResult{
		Result:      backend.OK(),
		FrameBuffer: backendtest.PixelPNG(),
		BufferType:  backend.BufferPNG,
		Method:      "fake",
	}, nil
}

func TestNewApplication(t *testing.T) {
	app := newTestApp(t, backendtest.New(), nil)

	checks := []struct {
		name string
		ok   bool
	}{
		{"bus", app.Bus() != nil},
		{"state", app.State() != nil},
		{"history", app.History() != nil},
		{"selector", app.Selector() != nil},
		{"effects", app.Effects() != nil},
		{"render", app.Render() != nil},
		{"toolbar", app.Toolbar() != nil},
		{"projects", app.Projects() != nil},
		{"preferences", app.Preferences() != nil},
		{"color schemes", app.ColorSchemes() != nil},
		{"logger", app.Logger() != nil},
	}
	for _, c := range checks {
		if !c.ok {
			t.Errorf("expected %s to be initialized", c.name)
		}
	}

	if got := app.ThemeName(); got != theme.Dark {
		t.Errorf("ThemeName() = %q, want %q", got, theme.Dark)
	}
	if got := app.State().Snapshot().NumFrames; got != config.Default().Project.Frames {
		t.Errorf("NumFrames = %d, want preferences default", got)
	}
}

func TestApplication_IsRunning(t *testing.T) {
	app := newTestApp(t, backendtest.New(), nil)
	if app.IsRunning() {
		t.Error("expected IsRunning() to be false before Run()")
	}
}

func TestApplication_ShutdownIdempotent(t *testing.T) {
	app := newTestApp(t, backendtest.New(), nil)

	app.Shutdown()
	app.Shutdown()
}

func TestApplication_BackendNotClosed(t *testing.T) {
	fake := backendtest.New()
	app := newTestApp(t, fake, nil)
	app.Shutdown()

	if app.ownsBackend {
		t.Error("injected backend must not be owned by the application")
	}
}

func TestApplication_StateBridge(t *testing.T) {
	app := newTestApp(t, backendtest.New(), nil)

	var mu sync.Mutex
	var fields []string
	subs := event.NewSubscriber(app.Bus())
	defer subs.Close()
	_, err := event.SubscribePayload(subs, events.TopicProjectUpdated, func(_ context.Context, p events.ProjectUpdated) error {
		mu.Lock()
		fields = append(fields, p.Field)
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if _, err := app.State().AddEffect(effect.New("FuzzFlareEffect", effect.TypePrimary, nil)); err != nil {
		t.Fatalf("AddEffect: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(fields) != 1 || fields[0] != project.FieldEffects {
		t.Errorf("project:updated fields = %v, want [%s]", fields, project.FieldEffects)
	}
}

func TestApplication_PreferencesThemeChange(t *testing.T) {
	app := newTestApp(t, backendtest.New(), nil)

	var got []string
	subs := event.NewSubscriber(app.Bus())
	defer subs.Close()
	if _, err := event.SubscribePayload(subs, events.TopicThemeChanged, func(_ context.Context, p events.ThemeChanged) error {
		got = append(got, p.Theme)
		return nil
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	err := app.Preferences().Update(context.Background(), func(p *config.Preferences) {
		p.Theme = theme.Light
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if len(got) != 1 || got[0] != theme.Light {
		t.Errorf("theme:changed = %v, want [%s]", got, theme.Light)
	}
	if app.ThemeName() != theme.Light {
		t.Errorf("ThemeName() = %q, want %q", app.ThemeName(), theme.Light)
	}

	// Unknown themes are ignored.
	got = nil
	if err := app.Preferences().Update(context.Background(), func(p *config.Preferences) {
		p.Theme = "nope"
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("unexpected theme:changed %v", got)
	}
}

func TestApplication_Metrics(t *testing.T) {
	fake := backendtest.New()
	fake.Render = slowRender
	app := newTestApp(t, fake, nil)
	ctx := context.Background()

	cmd, err := (wizard.Buckets{
		Primary: []effect.Effect{effect.New("FuzzFlareEffect", effect.TypePrimary, nil)},
	}).Command("")
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	if err := app.History().Execute(ctx, cmd); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if err := app.History().Undo(ctx); err != nil {
		t.Fatalf("Undo: %v", err)
	}

	if !app.Render().Trigger(ctx, 0) {
		t.Fatal("Trigger() = false on idle controller")
	}
	app.Render().Wait()

	snap := app.Metrics().Snapshot()
	if snap.CommandCount != 1 {
		t.Errorf("CommandCount = %d, want 1", snap.CommandCount)
	}
	if snap.UndoCount != 1 {
		t.Errorf("UndoCount = %d, want 1", snap.UndoCount)
	}
	if snap.RenderCount != 1 {
		t.Errorf("RenderCount = %d, want 1", snap.RenderCount)
	}
	if snap.EventCount == 0 {
		t.Error("EventCount = 0, want events counted")
	}
}

func TestApplication_Monitor(t *testing.T) {
	app := newTestApp(t, backendtest.New(), nil)

	if _, err := app.State().AddEffect(effect.New("FuzzFlareEffect", effect.TypePrimary, nil)); err != nil {
		t.Fatalf("AddEffect: %v", err)
	}
	if got := app.Monitor().Count(events.TopicProjectUpdated); got != 1 {
		t.Errorf("monitor count for project:updated = %d, want 1", got)
	}

	// Remote notifications reach the bus untyped.
	app.notices.Publish("render:progress", map[string]any{"frame": 2})
	recent := app.Monitor().Recent(1)
	if len(recent) != 1 || recent[0].Topic != "render:progress" {
		t.Errorf("Recent(1) = %+v, want render:progress", recent)
	}
}

func TestApplication_LoopFramesCounted(t *testing.T) {
	app := newTestApp(t, backendtest.New(), nil)

	app.frames.deliver(3, backend.RenderResult{
		Result:      backend.OK(),
		FrameBuffer: backendtest.PixelPNG(),
		BufferType:  backend.BufferPNG,
	})

	if got := app.Metrics().Snapshot().LoopFrames; got != 1 {
		t.Errorf("LoopFrames = %d, want 1", got)
	}
}

func TestApplication_NewWizard(t *testing.T) {
	app := newTestApp(t, backendtest.New(), nil)
	ctx := context.Background()

	backCalled := false
	w := app.NewWizard(func() { backCalled = true })

	steps := []func() error{
		func() error { return w.SelectType(effect.TypePrimary) },
		w.Next,
		func() error {
			return w.SelectEffect(ctx, effect.Info{Name: "FuzzFlareEffect", Type: effect.TypePrimary})
		},
		w.Next,
		w.Next, // commit, back to effect selection
		func() error {
			w.Previous()
			return w.SelectType(effect.TypeSecondary)
		},
		w.Next,
		func() error {
			return w.SelectEffect(ctx, effect.Info{Name: "GlowEffect", Type: effect.TypeSecondary})
		},
		w.Next,
		w.Next,
		w.SkipToReview,
		func() error { return w.Finish(ctx) },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	effects := app.State().Effects()
	if len(effects) != 1 {
		t.Fatalf("len(effects) = %d, want 1", len(effects))
	}
	if effects[0].Name != "FuzzFlareEffect" {
		t.Errorf("effect name = %q", effects[0].Name)
	}
	if n := len(effects[0].SecondaryEffects); n != 1 {
		t.Errorf("secondary effects = %d, want 1", n)
	}
	if backCalled {
		t.Error("back collaborator called")
	}

	// The whole run is a single undo step.
	if err := app.History().Undo(ctx); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if n := len(app.State().Effects()); n != 0 {
		t.Errorf("after undo len(effects) = %d, want 0", n)
	}
}

func TestApplication_NewWizardNoParent(t *testing.T) {
	app := newTestApp(t, backendtest.New(), nil)
	ctx := context.Background()

	w := app.NewWizard(nil)
	steps := []func() error{
		func() error { return w.SelectType(effect.TypeSecondary) },
		w.Next,
		func() error {
			return w.SelectEffect(ctx, effect.Info{Name: "GlowEffect", Type: effect.TypeSecondary})
		},
		w.Next,
		w.Next,
		w.SkipToReview,
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	if err := w.Finish(ctx); !errors.Is(err, wizard.ErrNoParent) {
		t.Errorf("Finish() = %v, want ErrNoParent", err)
	}
	if w.Step() != wizard.StepReview {
		t.Errorf("Step() = %v, want review after failed finish", w.Step())
	}
}

func TestApplication_StartupOpensProject(t *testing.T) {
	fake := backendtest.New()
	fake.Render = slowRender
	snap := project.DefaultSnapshot()
	snap.Name = "Loaded"
	snap.Effects = []effect.Effect{effect.New("FuzzFlareEffect", effect.TypePrimary, nil)}
	fake.Projects["/projects/loaded.yaml"] = snap

	app := newTestApp(t, fake, func(o *Options) { o.ProjectPath = "/projects/loaded.yaml" })

	if err := app.Startup(context.Background()); err != nil {
		t.Fatalf("Startup: %v", err)
	}
	app.Render().Wait()

	if got := app.State().Name(); got != "Loaded" {
		t.Errorf("project name = %q, want Loaded", got)
	}
	if got := app.Projects().Path(); got != "/projects/loaded.yaml" {
		t.Errorf("Path() = %q", got)
	}
	if fake.CallCount("getAvailableEffects") != 1 {
		t.Errorf("getAvailableEffects calls = %d, want 1", fake.CallCount("getAvailableEffects"))
	}
	if fake.CallCount("renderFrame") != 1 {
		t.Errorf("renderFrame calls = %d, want 1 after load", fake.CallCount("renderFrame"))
	}
	recent := app.Preferences().Get().RecentProjects
	if len(recent) == 0 || recent[0] != "/projects/loaded.yaml" {
		t.Errorf("RecentProjects = %v", recent)
	}
}

func TestApplication_StartupMissingProject(t *testing.T) {
	fake := backendtest.New()
	app := newTestApp(t, fake, func(o *Options) { o.ProjectPath = "/missing.yaml" })

	var alerts int
	subs := event.NewSubscriber(app.Bus())
	defer subs.Close()
	if _, err := event.SubscribePayload(subs, events.TopicAppError, func(context.Context, events.AppError) error {
		alerts++
		return nil
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	_ = app.Startup(context.Background())

	if alerts != 1 {
		t.Errorf("app:error alerts = %d, want 1", alerts)
	}
	if got := app.Metrics().Snapshot().ErrorCount; got != 1 {
		t.Errorf("ErrorCount = %d, want 1", got)
	}
	if got := app.State().Name(); got != project.DefaultSnapshot().Name {
		t.Errorf("project replaced on failed open: %q", got)
	}
}

func TestApplication_Save(t *testing.T) {
	app := newTestApp(t, backendtest.New(), nil)

	err := app.Save(context.Background(), "")
	var opErr *OperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("Save(\"\") = %v, want OperationError", err)
	}
	if opErr.Op != "save" {
		t.Errorf("Op = %q", opErr.Op)
	}

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := app.Save(context.Background(), path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := project.LoadFile(path); err != nil {
		t.Errorf("LoadFile: %v", err)
	}
}

func TestNew_BackendErrors(t *testing.T) {
	tests := []struct {
		name    string
		prefs   string
		wantErr error
	}{
		{"remote without url", "[backend]\nkind = \"remote\"\n", ErrNoBackendURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "preferences.toml")
			if err := writeTestFile(path, tt.prefs); err != nil {
				t.Fatal(err)
			}

			_, err := New(context.Background(), Options{ConfigPath: path, LogOutput: io.Discard})
			var initErr *InitError
			if !errors.As(err, &initErr) {
				t.Fatalf("New() = %v, want InitError", err)
			}
			if initErr.Component != "backend" {
				t.Errorf("Component = %q, want backend", initErr.Component)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewBackend(t *testing.T) {
	relay := &frameRelay{}

	if _, _, err := newBackend(context.Background(), config.BackendConfig{Kind: "carrier-pigeon"}, "", relay, nil, nil); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("unknown kind: err = %v, want ErrUnknownBackend", err)
	}

	dir := t.TempDir()
	api, closer, err := newBackend(context.Background(), config.BackendConfig{Kind: config.BackendScript}, filepath.Join(dir, "preferences.toml"), relay, nil, nil)
	if err != nil {
		t.Fatalf("script backend: %v", err)
	}
	if api == nil || closer == nil {
		t.Fatal("script backend returned nil")
	}
	if err := closer.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func writeTestFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
