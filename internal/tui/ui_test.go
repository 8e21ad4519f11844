package tui

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/john-paul-ruf/nft-studio/internal/effect"
	"github.com/john-paul-ruf/nft-studio/internal/event"
	"github.com/john-paul-ruf/nft-studio/internal/event/events"
	"github.com/john-paul-ruf/nft-studio/internal/event/topic"
	"github.com/john-paul-ruf/nft-studio/internal/project"
	"github.com/john-paul-ruf/nft-studio/internal/theme"
)

type recorded struct {
	topic   topic.Topic
	payload any
}

type harness struct {
	bus    event.Bus
	state  *project.State
	screen tcell.SimulationScreen
	ui     *UI

	mu   sync.Mutex
	seen []recorded
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()

	snap := project.DefaultSnapshot()
	first := effect.New("FuzzFlareEffect", effect.TypePrimary, effect.Config{"speed": 1})
	first.SecondaryEffects = []effect.Effect{effect.New("GlowEffect", effect.TypeSecondary, nil)}
	second := effect.New("HexEffect", effect.TypePrimary, nil)
	second.Visible = false
	snap.Effects = []effect.Effect{first, second}

	h := &harness{
		bus:    event.NewStartedBus(),
		state:  project.New(snap),
		screen: tcell.NewSimulationScreen("UTF-8"),
	}
	if err := h.screen.Init(); err != nil {
		t.Fatal(err)
	}
	h.screen.SetSize(120, 20)

	catalog := effect.Catalog{
		Primary:   []effect.Info{{Name: "FuzzFlareEffect"}, {Name: "HexEffect"}},
		Secondary: []effect.Info{{Name: "GlowEffect"}},
	}
	reg := theme.NewRegistry()
	h.ui = New(h.screen, h.bus, h.state, append([]Option{WithCatalog(catalog), WithThemes(reg, theme.Dark)}, opts...)...)
	if err := h.ui.Start(); err != nil {
		t.Fatal(err)
	}

	for _, p := range []topic.Topic{"effectspanel:**", "toolbar:**", "command:undo", "command:redo"} {
		_, err := h.bus.SubscribeFunc(p, func(_ context.Context, ev any) error {
			h.mu.Lock()
			defer h.mu.Unlock()
			env := event.ToEnvelope(ev)
			h.seen = append(h.seen, recorded{topic: env.Topic, payload: env.Payload})
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	t.Cleanup(func() {
		h.ui.Close()
		h.screen.Fini()
		h.bus.Stop(context.Background())
	})
	return h
}

func (h *harness) key(r rune) {
	h.ui.HandleKey(context.Background(), tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
}

func (h *harness) special(k tcell.Key) {
	h.ui.HandleKey(context.Background(), tcell.NewEventKey(k, 0, tcell.ModNone))
}

func (h *harness) typed(s string) {
	for _, r := range s {
		h.key(r)
	}
}

func (h *harness) events() []recorded {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]recorded(nil), h.seen...)
}

func (h *harness) last(t *testing.T) recorded {
	t.Helper()
	evs := h.events()
	if len(evs) == 0 {
		t.Fatal("no events emitted")
	}
	return evs[len(evs)-1]
}

func (h *harness) row(y int) string {
	w, _ := h.screen.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := h.screen.GetContent(x, y) //nolint:staticcheck // GetContent is the correct API
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), " ")
}

func (h *harness) screenText() string {
	_, height := h.screen.Size()
	rows := make([]string, height)
	for y := range rows {
		rows[y] = h.row(y)
	}
	return strings.Join(rows, "\n")
}

func TestDrawEffectList(t *testing.T) {
	h := newHarness(t)
	h.ui.Draw()

	if got := h.row(0); !strings.Contains(got, "NFT Studio | Untitled") {
		t.Errorf("title row = %q", got)
	}
	if got := h.row(1); got != "> [x] Fuzz Flare Effect" {
		t.Errorf("row 1 = %q", got)
	}
	if got := h.row(2); !strings.Contains(got, "+ Glow Effect") {
		t.Errorf("row 2 = %q", got)
	}
	if got := h.row(3); got != "  [ ] Hex Effect" {
		t.Errorf("row 3 = %q", got)
	}
	status := h.row(19)
	for _, want := range []string{"hd 1920x1080", "horizontal", "frame 0/100", "zoom 100%"} {
		if !strings.Contains(status, want) {
			t.Errorf("status %q missing %q", status, want)
		}
	}
}

func TestDrawEmptyProject(t *testing.T) {
	h := newHarness(t)
	h.state.ReplaceEffects(nil)
	h.ui.Draw()
	if got := h.row(1); !strings.Contains(got, "No effects") {
		t.Errorf("row 1 = %q", got)
	}
}

func TestKeysEmitPanelEvents(t *testing.T) {
	h := newHarness(t)
	first, _ := h.state.EffectAt(0)

	tests := []struct {
		name  string
		press func()
		topic topic.Topic
		want  any
	}{
		{"delete", func() { h.key('d') }, events.TopicPanelEffectDelete, events.EffectDelete{EffectID: first.ID, Index: 0}},
		{"visibility", func() { h.key(' ') }, events.TopicPanelEffectToggleVisibility, events.EffectToggleVisibility{EffectID: first.ID, Index: 0}},
		{"edit", func() { h.special(tcell.KeyEnter) }, events.TopicPanelEffectEdit, events.EffectEdit{Index: 0, Type: effect.TypePrimary}},
		{"undo", func() { h.key('u') }, events.TopicCommandUndo, events.CommandUndo{}},
		{"redo", func() { h.key('U') }, events.TopicCommandRedo, events.CommandRedo{}},
		{"render", func() { h.key('r') }, events.TopicToolbarRenderTrigger, events.RenderTrigger{Frame: 0}},
		{"loop", func() { h.key('l') }, events.TopicToolbarRenderLoopToggle, events.RenderLoopToggle{}},
		{"zoom in", func() { h.key('+') }, events.TopicToolbarZoomIn, events.Zoom{}},
		{"zoom out", func() { h.key('-') }, events.TopicToolbarZoomOut, events.Zoom{}},
		{"zoom reset", func() { h.key('0') }, events.TopicToolbarZoomReset, events.Zoom{}},
		{"orientation", func() { h.key('o') }, events.TopicToolbarOrientationToggle, events.OrientationToggle{}},
		{"next frame", func() { h.key(']') }, events.TopicToolbarFrameSelect, events.FrameSelect{Frame: 1}},
		{"next theme", func() { h.key('t') }, events.TopicToolbarThemeChange, events.ThemeChange{Theme: theme.Light}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.press()
			got := h.last(t)
			if got.topic != tt.topic {
				t.Fatalf("topic = %s, want %s", got.topic, tt.topic)
			}
			if got.payload != tt.want {
				t.Errorf("payload = %#v, want %#v", got.payload, tt.want)
			}
		})
	}
}

func TestReorderFollowsCursor(t *testing.T) {
	h := newHarness(t)

	h.key('K')
	if n := len(h.events()); n != 0 {
		t.Fatalf("moving the first effect up emitted %d events", n)
	}

	h.key('J')
	got := h.last(t)
	if got.topic != events.TopicPanelEffectReorder || got.payload != (events.EffectReorder{From: 0, To: 1}) {
		t.Fatalf("got %s %#v", got.topic, got.payload)
	}
	if h.ui.Cursor() != 1 {
		t.Errorf("cursor = %d, want 1", h.ui.Cursor())
	}

	h.key('J')
	if n := len(h.events()); n != 1 {
		t.Errorf("moving the last effect down emitted; events = %d", n)
	}
}

func TestCursorMovementClamps(t *testing.T) {
	h := newHarness(t)
	h.special(tcell.KeyUp)
	if h.ui.Cursor() != 0 {
		t.Errorf("cursor = %d", h.ui.Cursor())
	}
	h.key('j')
	h.special(tcell.KeyDown)
	if h.ui.Cursor() != 1 {
		t.Errorf("cursor = %d, want 1", h.ui.Cursor())
	}
}

func TestQuit(t *testing.T) {
	h := newHarness(t)
	if !h.ui.HandleKey(context.Background(), tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)) {
		t.Error("q did not quit")
	}
	if !h.ui.HandleKey(context.Background(), tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModNone)) {
		t.Error("ctrl-c did not quit")
	}
	if h.ui.HandleKey(context.Background(), tcell.NewEventKey(tcell.KeyRune, 'j', tcell.ModNone)) {
		t.Error("j quit")
	}
}

func TestPickerAddsFilteredEffect(t *testing.T) {
	h := newHarness(t)

	h.key('a')
	h.typed("hex")
	h.ui.Draw()
	if !strings.Contains(h.screenText(), "Add effect: hex") {
		t.Errorf("picker not drawn:\n%s", h.screenText())
	}

	h.special(tcell.KeyEnter)
	got := h.last(t)
	if got.topic != events.TopicPanelEffectAdd {
		t.Fatalf("topic = %s", got.topic)
	}
	if got.payload != (events.EffectAdd{Name: "HexEffect", Type: effect.TypePrimary}) {
		t.Errorf("payload = %#v", got.payload)
	}

	// The overlay is closed, so keys reach the list again.
	h.key('d')
	if h.last(t).topic != events.TopicPanelEffectDelete {
		t.Error("picker still open after choosing")
	}
}

func TestPickerBackspaceAndEscape(t *testing.T) {
	h := newHarness(t)
	h.key('a')
	h.typed("zz")
	h.special(tcell.KeyBackspace2)
	h.special(tcell.KeyBackspace2)
	h.special(tcell.KeyDown)
	h.special(tcell.KeyEnter)

	got := h.last(t)
	if got.payload != (events.EffectAdd{Name: "HexEffect", Type: effect.TypePrimary}) {
		t.Errorf("payload = %#v", got.payload)
	}

	h.key('a')
	h.special(tcell.KeyEscape)
	before := len(h.events())
	h.special(tcell.KeyEnter)
	if got := h.last(t); len(h.events()) != before+1 || got.topic != events.TopicPanelEffectEdit {
		t.Errorf("escape did not close the picker; last = %s", got.topic)
	}
}

func TestSecondaryPickerTargetsCursorEffect(t *testing.T) {
	h := newHarness(t)
	first, _ := h.state.EffectAt(0)

	h.key('s')
	h.special(tcell.KeyEnter)
	got := h.last(t)
	if got.topic != events.TopicPanelEffectAddSecondary {
		t.Fatalf("topic = %s", got.topic)
	}
	want := events.EffectAttach{ParentID: first.ID, Name: "GlowEffect", Type: effect.TypeSecondary}
	if got.payload != want {
		t.Errorf("payload = %#v, want %#v", got.payload, want)
	}
}

func TestContextMenu(t *testing.T) {
	h := newHarness(t)
	first, _ := h.state.EffectAt(0)

	h.key('m')
	h.ui.Draw()
	text := h.screenText()
	for _, want := range []string{"Edit", "Hide", "Delete", "Add Secondary Effect >", "No keyframe effects available"} {
		if !strings.Contains(text, want) {
			t.Errorf("menu missing %q:\n%s", want, text)
		}
	}

	// Edit, Hide, Delete.
	h.special(tcell.KeyDown)
	h.special(tcell.KeyDown)
	h.special(tcell.KeyEnter)
	got := h.last(t)
	if got.topic != events.TopicPanelEffectDelete || got.payload != (events.EffectDelete{EffectID: first.ID, Index: 0}) {
		t.Errorf("got %s %#v", got.topic, got.payload)
	}
}

func TestContextMenuSkipsDisabled(t *testing.T) {
	h := newHarness(t)
	h.key('m')
	opened := len(h.events())
	// Edit, Hide, Delete, Add Secondary, Glow, Add Keyframe, placeholder.
	for i := 0; i < 6; i++ {
		h.special(tcell.KeyDown)
	}
	h.special(tcell.KeyEnter)
	if n := len(h.events()) - opened; n != 0 {
		t.Errorf("disabled item emitted %d events", n)
	}
	h.special(tcell.KeyEscape)
}

func TestReadOnlyBlocksMutations(t *testing.T) {
	h := newHarness(t, WithReadOnly(true))
	h.key('d')
	h.key('J')
	h.key('u')
	if n := len(h.events()); n != 0 {
		t.Errorf("read-only emitted %d events", n)
	}
	if h.ui.LastError() == "" {
		t.Error("expected read-only error")
	}
	h.key('r')
	if h.last(t).topic != events.TopicToolbarRenderTrigger {
		t.Error("render should work read-only")
	}
}

func TestStatusFollowsEvents(t *testing.T) {
	h := newHarness(t)
	em := event.NewEmitter(h.bus, "test", "Test")
	ctx := context.Background()

	mustEmit := func(tp topic.Topic, p any) {
		t.Helper()
		if err := em.Emit(ctx, tp, p); err != nil {
			t.Fatal(err)
		}
	}
	mustEmit(events.TopicRenderStarted, events.RenderStarted{Frame: 3})
	mustEmit(events.TopicRenderLoopStarted, events.RenderLoopState{Running: true})
	mustEmit(events.TopicCanvasZoomChanged, events.CanvasZoomChanged{Zoom: 1.44})
	mustEmit(events.TopicFrameSelected, events.FrameSelected{Frame: 7})

	h.ui.Draw()
	status := h.row(19)
	for _, want := range []string{"Rendering...", "loop", "zoom 144%", "frame 7/100"} {
		if !strings.Contains(status, want) {
			t.Errorf("status %q missing %q", status, want)
		}
	}

	mustEmit(events.TopicAppError, events.AppError{Title: "Effect not added", Message: "no defaults"})
	h.ui.Draw()
	if status := h.row(19); !strings.Contains(status, "error: Effect not added: no defaults") {
		t.Errorf("status = %q", status)
	}

	h.special(tcell.KeyEscape)
	if h.ui.LastError() != "" {
		t.Error("escape did not clear the error")
	}
}

func TestThemeChangedSwitchesTheme(t *testing.T) {
	h := newHarness(t)
	em := event.NewEmitter(h.bus, "test", "Test")
	if err := em.Emit(context.Background(), events.TopicThemeChanged, events.ThemeChanged{Theme: theme.Light}); err != nil {
		t.Fatal(err)
	}
	h.ui.mu.Lock()
	name := h.ui.theme.Name
	h.ui.mu.Unlock()
	if name != theme.Light {
		t.Errorf("theme = %q, want %q", name, theme.Light)
	}
}

func TestCloseStopsUpdates(t *testing.T) {
	h := newHarness(t)
	h.ui.Close()
	em := event.NewEmitter(h.bus, "test", "Test")
	_ = em.Emit(context.Background(), events.TopicAppError, events.AppError{Title: "boom"})
	if h.ui.LastError() != "" {
		t.Error("closed UI still handles events")
	}
}
