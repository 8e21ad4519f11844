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
	"github.com/john-paul-ruf/nft-studio/internal/selection"
	"github.com/john-paul-ruf/nft-studio/internal/wizard"
)

// withSelector attaches a selector on the harness bus, the way the
// application wires one.
func (h *harness) withSelector() *selection.Selector {
	sel := selection.New(h.state, selection.WithBus(h.bus))
	h.ui.mu.Lock()
	h.ui.sel = sel
	h.ui.mu.Unlock()
	return sel
}

func (h *harness) overlay() overlay {
	h.ui.mu.Lock()
	defer h.ui.mu.Unlock()
	return h.ui.overlay
}

func TestRightClickEventOpensMenu(t *testing.T) {
	h := newHarness(t)
	second, _ := h.state.EffectAt(1)

	em := event.NewEmitter(h.bus, "test", "Test")
	if err := em.Emit(context.Background(), events.TopicPanelEffectRightClick, events.EffectRightClick{EffectID: second.ID}); err != nil {
		t.Fatal(err)
	}
	if h.overlay() != overlayMenu {
		t.Fatalf("overlay = %d, want menu", h.overlay())
	}
	if h.ui.Cursor() != 1 {
		t.Errorf("cursor = %d, want 1", h.ui.Cursor())
	}
	h.ui.Draw()
	if text := h.screenText(); !strings.Contains(text, "Show") {
		t.Errorf("menu for hidden effect should offer Show:\n%s", text)
	}
}

func TestMenuKeyEmitsRightClick(t *testing.T) {
	h := newHarness(t)
	first, _ := h.state.EffectAt(0)

	h.key('m')
	got := h.last(t)
	if got.topic != events.TopicPanelEffectRightClick {
		t.Fatalf("topic = %s", got.topic)
	}
	if got.payload != (events.EffectRightClick{EffectID: first.ID, Index: 0}) {
		t.Errorf("payload = %#v", got.payload)
	}
	if h.overlay() != overlayMenu {
		t.Error("menu did not open")
	}
}

func TestMenuRemovesSubEffect(t *testing.T) {
	h := newHarness(t)
	first, _ := h.state.EffectAt(0)
	glow := first.SecondaryEffects[0]

	h.key('m')
	// Edit, Hide, Delete, Add Secondary, Glow, Add Keyframe, placeholder,
	// Remove Sub-effect, Glow.
	for i := 0; i < 8; i++ {
		h.special(tcell.KeyDown)
	}
	h.special(tcell.KeyEnter)

	got := h.last(t)
	want := events.EffectDelete{EffectID: first.ID, Index: 0, SubEffectID: glow.ID}
	if got.topic != events.TopicPanelEffectDelete || got.payload != want {
		t.Errorf("got %s %#v, want %#v", got.topic, got.payload, want)
	}
}

func TestToolbarKeys(t *testing.T) {
	h := newHarness(t, WithSchemes([]string{"neon", "pastel"}))

	tests := []struct {
		key  rune
		want any
	}{
		{'R', events.ResolutionChange{Resolution: "wqhd"}},
		{'<', events.FramesChange{Frames: 99}},
		{'>', events.FramesChange{Frames: 101}},
		{'c', events.ColorSchemeChange{SchemeID: "neon"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			h.key(tt.key)
			if got := h.last(t).payload; got != tt.want {
				t.Errorf("payload = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestSchemeKeyWithoutSchemes(t *testing.T) {
	h := newHarness(t)
	h.key('c')
	if n := len(h.events()); n != 0 {
		t.Errorf("emitted %d events", n)
	}
	if h.ui.LastError() == "" {
		t.Error("expected an error in the status line")
	}
}

func TestConfigPanelEditsSelection(t *testing.T) {
	h := newHarness(t)
	sel := h.withSelector()
	ctx := context.Background()

	var mu sync.Mutex
	var changes []events.EffectConfigChange
	_, err := event.SubscribeTyped(h.bus, events.TopicEffectConfigChange, func(_ context.Context, p events.EffectConfigChange) error {
		mu.Lock()
		changes = append(changes, p)
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := sel.Select(ctx, 0, effect.TypePrimary, 0); err != nil {
		t.Fatal(err)
	}
	if h.overlay() != overlayConfig {
		t.Fatalf("configpanel:open did not open the panel; overlay = %d", h.overlay())
	}
	h.ui.Draw()
	text := h.screenText()
	for _, want := range []string{"Configure Fuzz Flare Effect", "speed: 1"} {
		if !strings.Contains(text, want) {
			t.Errorf("panel missing %q:\n%s", want, text)
		}
	}

	h.special(tcell.KeyEnter)
	h.special(tcell.KeyBackspace2)
	h.typed("3")
	h.special(tcell.KeyEnter)

	mu.Lock()
	defer mu.Unlock()
	if len(changes) != 1 {
		t.Fatalf("config changes = %d, want 1", len(changes))
	}
	first, _ := h.state.EffectAt(0)
	if changes[0].EffectID != first.ID || changes[0].Config["speed"] != 3 {
		t.Errorf("change = %#v", changes[0])
	}
}

func TestConfigPanelRejectsBadValue(t *testing.T) {
	h := newHarness(t)
	sel := h.withSelector()
	if err := sel.Select(context.Background(), 0, effect.TypePrimary, 0); err != nil {
		t.Fatal(err)
	}

	h.special(tcell.KeyEnter)
	h.typed("x")
	h.special(tcell.KeyEnter)
	if !strings.Contains(h.ui.LastError(), "speed") {
		t.Errorf("LastError = %q", h.ui.LastError())
	}
	if h.overlay() != overlayConfig {
		t.Error("a bad value should leave the panel open")
	}
}

func TestConfigPanelStaleSelection(t *testing.T) {
	h := newHarness(t)
	sel := h.withSelector()
	ctx := context.Background()
	first, _ := h.state.EffectAt(0)

	if err := sel.Select(ctx, 0, effect.TypePrimary, 0); err != nil {
		t.Fatal(err)
	}
	if _, _, err := h.state.RemoveEffect(first.ID); err != nil {
		t.Fatal(err)
	}

	em := event.NewEmitter(h.bus, "test", "Test")
	if err := em.Emit(ctx, events.TopicConfigPanelOpen, events.ConfigPanelOpen{EffectID: first.ID}); err != nil {
		t.Fatal(err)
	}
	h.ui.Draw()
	if text := h.screenText(); !strings.Contains(text, configErrorTitle) {
		t.Errorf("stale selection not reported:\n%s", text)
	}

	sel.Clear(ctx)
	if h.overlay() != overlayNone {
		t.Errorf("configpanel:close left overlay %d", h.overlay())
	}
}

func TestWizardOverlay(t *testing.T) {
	var got wizard.Buckets
	newWizard := func(back func()) *wizard.Wizard {
		return wizard.New(nil,
			wizard.WithBack(back),
			wizard.WithComplete(func(_ context.Context, b wizard.Buckets) error {
				got = b
				return nil
			}),
		)
	}
	h := newHarness(t, WithWizard(newWizard))

	h.key('w')
	h.ui.Draw()
	if text := h.screenText(); !strings.Contains(text, "Effect wizard: type selection") {
		t.Fatalf("wizard not drawn:\n%s", text)
	}

	h.special(tcell.KeyEnter) // primary
	h.special(tcell.KeyDown)
	h.special(tcell.KeyEnter) // HexEffect
	h.special(tcell.KeyEnter) // commit, back to effect selection
	h.special(tcell.KeyTab)
	h.ui.Draw()
	if text := h.screenText(); !strings.Contains(text, "Hex Effect (primary)") {
		t.Errorf("review missing the committed effect:\n%s", text)
	}
	h.special(tcell.KeyEnter)

	if len(got.Primary) != 1 || got.Primary[0].Name != "HexEffect" {
		t.Errorf("buckets = %+v", got)
	}
	if h.overlay() != overlayNone {
		t.Errorf("overlay = %d after finish", h.overlay())
	}
}

func TestWizardBackCloses(t *testing.T) {
	h := newHarness(t, WithWizard(func(back func()) *wizard.Wizard {
		return wizard.New(nil, wizard.WithBack(back))
	}))
	h.key('w')
	h.special(tcell.KeyEscape)
	if h.overlay() != overlayNone {
		t.Errorf("overlay = %d after back on the first step", h.overlay())
	}
}

func TestWizardKeyWithoutFactory(t *testing.T) {
	h := newHarness(t)
	h.key('w')
	if h.overlay() != overlayNone || h.ui.LastError() == "" {
		t.Error("w without a wizard should report an error and stay on the list")
	}
}
