package toolbar

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/john-paul-ruf/nft-studio/internal/event"
	"github.com/john-paul-ruf/nft-studio/internal/event/events"
	"github.com/john-paul-ruf/nft-studio/internal/event/topic"
	"github.com/john-paul-ruf/nft-studio/internal/history"
	"github.com/john-paul-ruf/nft-studio/internal/project"
	"github.com/john-paul-ruf/nft-studio/internal/render"
)

type fakeRenderer struct {
	mu       sync.Mutex
	frames   []int
	toggles  int
	toggleFn func() error
}

func (r *fakeRenderer) Trigger(_ context.Context, frame int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, frame)
	return true
}

func (r *fakeRenderer) ToggleLoop(context.Context) error {
	r.mu.Lock()
	r.toggles++
	fn := r.toggleFn
	r.mu.Unlock()
	if fn != nil {
		return fn()
	}
	return nil
}

type fakeThemes struct {
	saved []string
	err   error
}

func (f *fakeThemes) Has(name string) bool { return name == "dark" || name == "light" }

func (f *fakeThemes) SaveTheme(name string) error {
	f.saved = append(f.saved, name)
	return f.err
}

type fakeSchemes map[string]project.ColorSchemeData

func (f fakeSchemes) Lookup(id string) (string, project.ColorSchemeData, bool) {
	d, ok := f[id]
	return "Scheme " + id, d, ok
}

type fixture struct {
	bus      event.Bus
	state    *project.State
	hist     *history.Service
	renderer *fakeRenderer
	viewport *render.Viewport
	themes   *fakeThemes
	actions  *Actions
	toolbar  *CanvasToolbar

	mu   sync.Mutex
	seen map[topic.Topic][]any
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		bus:      event.NewStartedBus(),
		state:    project.NewDefault(),
		renderer: &fakeRenderer{},
		viewport: render.NewViewport(),
		themes:   &fakeThemes{},
		seen:     make(map[topic.Topic][]any),
	}
	f.hist = history.NewService(f.state, history.WithBus(f.bus))
	f.actions = NewActions(f.bus, f.hist,
		WithRenderer(f.renderer),
		WithZoomer(f.viewport),
		WithThemes(f.themes),
		WithSchemes(fakeSchemes{
			"fire-ember": {Background: "#1a0500", Lights: []string{"#ff4500", "#ffa500"}},
		}),
	)
	if err := f.actions.Start(); err != nil {
		t.Fatal(err)
	}
	f.toolbar = NewCanvasToolbar(f.bus)

	for _, tp := range []topic.Topic{"frame:selected", "canvas:zoom:changed", "theme:changed", "colorscheme:changed"} {
		_, err := f.bus.SubscribeFunc(tp, func(_ context.Context, ev any) error {
			f.mu.Lock()
			defer f.mu.Unlock()
			tp := event.ToEnvelope(ev).Topic
			f.seen[tp] = append(f.seen[tp], ev)
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	t.Cleanup(func() {
		f.actions.Close()
		f.bus.Stop(context.Background())
	})
	return f
}

func (f *fixture) payloads(tp topic.Topic) []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]any(nil), f.seen[tp]...)
}

func (f *fixture) commands(kind string) int {
	n := 0
	for _, info := range f.hist.History() {
		if info.Kind == kind {
			n++
		}
	}
	return n
}

func TestDuplicateResolutionChangeRunsOneCommand(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := f.toolbar.ChangeResolution(ctx, "4k"); err != nil {
			t.Fatalf("change %d: %v", i, err)
		}
	}

	if got := f.commands(history.KindChangeResolution); got != 1 {
		t.Fatalf("resolution commands = %d, want 1", got)
	}
	if got := f.state.Resolution(); got != "4k" {
		t.Errorf("Resolution() = %q, want 4k", got)
	}

	if err := f.toolbar.ChangeResolution(ctx, "hd"); err != nil {
		t.Fatal(err)
	}
	if got := f.commands(history.KindChangeResolution); got != 2 {
		t.Errorf("after switching back: commands = %d, want 2", got)
	}
}

func TestResolutionReappliedAfterUndo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if ran, err := f.actions.ChangeResolution(ctx, "4k"); !ran || err != nil {
		t.Fatalf("ChangeResolution = %v, %v", ran, err)
	}
	if err := f.hist.Undo(ctx); err != nil {
		t.Fatal(err)
	}
	if got := f.state.Resolution(); got == "4k" {
		t.Fatal("undo did not restore the resolution")
	}
	ran, err := f.actions.ChangeResolution(ctx, "4k")
	if err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Error("same resolution after undo was dropped")
	}
}

func TestConcurrentResolutionChangeRunsOneCommand(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const callers = 16
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		mu    sync.Mutex
		ran   int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			ok, err := f.actions.ChangeResolution(ctx, "4k")
			if err != nil {
				t.Error(err)
			}
			if ok {
				mu.Lock()
				ran++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()

	if ran != 1 {
		t.Errorf("%d callers ran a command, want 1", ran)
	}
	if got := f.commands(history.KindChangeResolution); got != 1 {
		t.Errorf("resolution commands = %d, want 1", got)
	}
}

func TestResolutionRetriedDuringExecution(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A listener that asks for the same resolution while the first
	// command is still inside Execute.
	var again bool
	var againErr error
	remove := f.state.OnChange(func(project.Change) {
		if again {
			return
		}
		again = true
		var ran bool
		ran, againErr = f.actions.ChangeResolution(ctx, "4k")
		if ran {
			againErr = errors.New("nested change ran a second command")
		}
	})
	defer remove()

	if ran, err := f.actions.ChangeResolution(ctx, "4k"); !ran || err != nil {
		t.Fatalf("ChangeResolution = %v, %v", ran, err)
	}
	if !again {
		t.Fatal("listener not called")
	}
	if againErr != nil {
		t.Error(againErr)
	}
	if got := f.commands(history.KindChangeResolution); got != 1 {
		t.Errorf("resolution commands = %d, want 1", got)
	}
}

func TestUnknownResolution(t *testing.T) {
	f := newFixture(t)
	_, err := f.actions.ChangeResolution(context.Background(), "potato")
	if !errors.Is(err, project.ErrUnknownResolution) {
		t.Errorf("err = %v, want ErrUnknownResolution", err)
	}
	if f.hist.UndoCount() != 0 {
		t.Error("unknown resolution reached history")
	}
}

func TestOrientationAndFrames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.toolbar.ToggleOrientation(ctx); err != nil {
		t.Fatal(err)
	}
	if f.state.IsHorizontal() {
		t.Error("orientation not toggled")
	}

	if err := f.toolbar.SelectFrame(ctx, 80); err != nil {
		t.Fatal(err)
	}
	if err := f.toolbar.ChangeFrames(ctx, 50); err != nil {
		t.Fatal(err)
	}
	if got := f.state.NumFrames(); got != 50 {
		t.Errorf("NumFrames() = %d, want 50", got)
	}
	if got := f.actions.Frame(); got != 49 {
		t.Errorf("Frame() = %d, want clamped 49", got)
	}

	if err := f.actions.ChangeFrames(ctx, 0); !errors.Is(err, project.ErrInvalidFrames) {
		t.Errorf("ChangeFrames(0) err = %v", err)
	}
	// Same count is not a change.
	before := f.hist.UndoCount()
	if err := f.actions.ChangeFrames(ctx, 50); err != nil {
		t.Fatal(err)
	}
	if f.hist.UndoCount() != before {
		t.Error("unchanged frame count was recorded")
	}

	if err := f.hist.Undo(ctx); err != nil {
		t.Fatal(err)
	}
	if got := f.state.NumFrames(); got != 100 {
		t.Errorf("after undo NumFrames() = %d, want 100", got)
	}
}

func TestFrameSelect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.toolbar.SelectFrame(ctx, 12); err != nil {
		t.Fatal(err)
	}
	got := f.payloads(events.TopicFrameSelected)
	if len(got) != 1 {
		t.Fatalf("frame:selected count = %d, want 1", len(got))
	}
	p, ok := event.PayloadOf[events.FrameSelected](got[0])
	if !ok || p.Frame != 12 {
		t.Errorf("payload = %+v, %v", p, ok)
	}

	if err := f.actions.SelectFrame(ctx, 100); !errors.Is(err, project.ErrIndexOutOfRange) {
		t.Errorf("out of range err = %v", err)
	}
	if len(f.payloads(events.TopicFrameSelected)) != 1 {
		t.Error("invalid frame was announced")
	}
}

func TestRenderEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.toolbar.Render(ctx, 7)
	f.toolbar.ToggleRenderLoop(ctx)

	if len(f.renderer.frames) != 1 || f.renderer.frames[0] != 7 {
		t.Errorf("triggered frames = %v, want [7]", f.renderer.frames)
	}
	if f.renderer.toggles != 1 {
		t.Errorf("toggles = %d, want 1", f.renderer.toggles)
	}

	f.renderer.toggleFn = func() error { return errors.New("loop refused") }
	if err := f.toolbar.ToggleRenderLoop(ctx); err == nil {
		t.Error("expected the loop error to reach the emitter")
	}
}

func TestZoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.toolbar.ZoomIn(ctx)
	f.toolbar.ZoomIn(ctx)
	f.toolbar.ZoomOut(ctx)
	f.toolbar.ZoomReset(ctx)

	want := []float64{1.2, 1.44, 1.2, 1}
	got := f.payloads(events.TopicCanvasZoomChanged)
	if len(got) != len(want) {
		t.Fatalf("zoom events = %d, want %d", len(got), len(want))
	}
	for i, ev := range got {
		p, _ := event.PayloadOf[events.CanvasZoomChanged](ev)
		if diff := p.Zoom - want[i]; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("zoom[%d] = %v, want %v", i, p.Zoom, want[i])
		}
	}
}

func TestTheme(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.toolbar.ChangeTheme(ctx, "light"); err != nil {
		t.Fatal(err)
	}
	if len(f.themes.saved) != 1 || f.themes.saved[0] != "light" {
		t.Errorf("saved = %v", f.themes.saved)
	}
	if len(f.payloads(events.TopicThemeChanged)) != 1 {
		t.Error("theme:changed not emitted")
	}

	if err := f.actions.ChangeTheme(ctx, "sepia"); !errors.Is(err, ErrUnknownTheme) {
		t.Errorf("err = %v, want ErrUnknownTheme", err)
	}

	// A failed save still switches the theme.
	f.themes.err = errors.New("read-only")
	if err := f.actions.ChangeTheme(ctx, "dark"); err != nil {
		t.Errorf("save failure surfaced: %v", err)
	}
	if len(f.payloads(events.TopicThemeChanged)) != 2 {
		t.Error("theme:changed not emitted after save failure")
	}
}

func TestColorScheme(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.toolbar.ChangeColorScheme(ctx, "fire-ember"); err != nil {
		t.Fatal(err)
	}
	snap := f.state.Snapshot()
	if snap.ColorScheme != "fire-ember" || snap.ColorSchemeData.Background != "#1a0500" {
		t.Errorf("scheme = %q %+v", snap.ColorScheme, snap.ColorSchemeData)
	}
	got := f.payloads(events.TopicColorSchemeChanged)
	if len(got) != 1 {
		t.Fatalf("colorscheme:changed = %d, want 1", len(got))
	}
	if p, _ := event.PayloadOf[events.ColorSchemeChanged](got[0]); p.Name != "Scheme fire-ember" {
		t.Errorf("name = %q", p.Name)
	}

	if err := f.actions.ChangeColorScheme(ctx, "nope"); !errors.Is(err, ErrUnknownScheme) {
		t.Errorf("err = %v, want ErrUnknownScheme", err)
	}
	if f.commands(history.KindChangeColorScheme) != 1 {
		t.Error("unknown scheme reached history")
	}
}

func TestCloseStopsHandling(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.actions.Close()
	f.actions.Close()
	f.toolbar.ToggleOrientation(ctx)
	if !f.state.IsHorizontal() {
		t.Error("orientation toggled after Close")
	}
}
