package menu

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/john-paul-ruf/nft-studio/internal/effect"
	"github.com/john-paul-ruf/nft-studio/internal/event"
	"github.com/john-paul-ruf/nft-studio/internal/event/events"
	"github.com/john-paul-ruf/nft-studio/internal/event/topic"
)

func catalog() effect.Catalog {
	var c effect.Catalog
	c.Add(effect.Info{Name: "FuzzFlareEffect", Type: effect.TypePrimary})
	c.Add(effect.Info{Name: "HexGridEffect", DisplayName: "Hex Grid", Type: effect.TypePrimary})
	c.Add(effect.Info{Name: "GlowEffect", Type: effect.TypeSecondary})
	c.Add(effect.Info{Name: "FadeKeyframe", RegistryKey: "fade-kf", Type: effect.TypeKeyframe})
	c.Add(effect.Info{Name: "BlurFinal", Type: effect.TypeFinalImage})
	return c
}

type recorder struct {
	mu   sync.Mutex
	seen []event.Envelope
}

func record(t *testing.T, bus event.Bus) *recorder {
	t.Helper()
	r := &recorder{}
	_, err := bus.SubscribeFunc(events.TopicPanelAll, func(_ context.Context, ev any) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.seen = append(r.seen, event.ToEnvelope(ev))
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func (r *recorder) last() (event.Envelope, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.seen) == 0 {
		return event.Envelope{}, false
	}
	return r.seen[len(r.seen)-1], true
}

func TestEmptySubmenusHaveOneDisabledItem(t *testing.T) {
	e := effect.New("FuzzFlareEffect", effect.TypePrimary, nil)
	m := BuildContextMenu(e, 0, effect.Catalog{Primary: catalog().Primary})

	tests := []struct {
		submenu string
		label   string
	}{
		{LabelAddSecondary, LabelNoSecondary},
		{LabelAddKeyframe, LabelNoKeyframe},
	}
	for _, tt := range tests {
		t.Run(tt.submenu, func(t *testing.T) {
			sub, ok := m.Lookup(tt.submenu)
			if !ok {
				t.Fatalf("no %q entry", tt.submenu)
			}
			if len(sub.Children) != 1 {
				t.Fatalf("children = %d, want 1", len(sub.Children))
			}
			only := sub.Children[0]
			if only.Label != tt.label || !only.Disabled {
				t.Errorf("child = %+v, want disabled %q", only, tt.label)
			}
			if err := Activate(context.Background(), nil, only); !errors.Is(err, ErrInactive) {
				t.Errorf("Activate err = %v, want ErrInactive", err)
			}
		})
	}
}

func TestContextMenuEntries(t *testing.T) {
	e := effect.New("FuzzFlareEffect", effect.TypePrimary, nil)
	m := BuildContextMenu(e, 2, catalog(), AtFrame(12))

	var labels []string
	for _, it := range m.Items {
		labels = append(labels, it.Label)
	}
	want := []string{LabelEdit, LabelHide, LabelDelete, LabelAddSecondary, LabelAddKeyframe}
	if len(labels) != len(want) {
		t.Fatalf("labels = %v, want %v", labels, want)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("labels[%d] = %q, want %q", i, labels[i], want[i])
		}
	}

	glow, ok := m.Find(3, 0)
	if !ok || glow.Label != "Glow Effect" {
		t.Fatalf("Find(3, 0) = %+v, %v", glow, ok)
	}
	kf, _ := m.Find(4, 0)
	p, ok := kf.Payload.(events.EffectAttach)
	if !ok || p.ParentID != e.ID || p.Name != "fade-kf" || p.Frame != 12 {
		t.Errorf("keyframe payload = %+v", kf.Payload)
	}

	if _, ok := m.Find(9); ok {
		t.Error("Find out of range succeeded")
	}

	e.Visible = false
	if it, _ := BuildContextMenu(e, 2, catalog()).Find(1); it.Label != LabelShow {
		t.Errorf("hidden effect entry = %q, want %q", it.Label, LabelShow)
	}
}

func TestReadOnlyMenu(t *testing.T) {
	e := effect.New("FuzzFlareEffect", effect.TypePrimary, nil)
	m := BuildContextMenu(e, 0, catalog(), ReadOnly())
	for _, it := range m.Items {
		if want := it.Label != LabelEdit; it.Disabled != want {
			t.Errorf("%q disabled = %v, want %v", it.Label, it.Disabled, want)
		}
	}
}

func TestRemoveSubEffectEntries(t *testing.T) {
	e := effect.New("FuzzFlareEffect", effect.TypePrimary, nil)
	glow := effect.New("GlowEffect", effect.TypeSecondary, nil)
	fade := effect.New("FadeKeyframe", effect.TypeKeyframe, nil)
	fade.Frame = 7
	e.SecondaryEffects = []effect.Effect{glow}
	e.KeyframeEffects = []effect.Effect{fade}

	m := BuildContextMenu(e, 1, catalog())
	sub, ok := m.Lookup(LabelRemoveSub)
	if !ok {
		t.Fatalf("no %q entry", LabelRemoveSub)
	}
	tests := []struct {
		label string
		id    string
	}{
		{"Glow Effect", glow.ID},
		{"@7 Fade Keyframe", fade.ID},
	}
	if len(sub.Children) != len(tests) {
		t.Fatalf("children = %d, want %d", len(sub.Children), len(tests))
	}
	for i, tt := range tests {
		it := sub.Children[i]
		want := events.EffectDelete{EffectID: e.ID, Index: 1, SubEffectID: tt.id}
		if it.Label != tt.label || it.Topic != events.TopicPanelEffectDelete || it.Payload != want {
			t.Errorf("child %d = %q %s %#v", i, it.Label, it.Topic, it.Payload)
		}
	}

	if it, _ := BuildContextMenu(e, 1, catalog(), ReadOnly()).Lookup(LabelRemoveSub); !it.Disabled {
		t.Error("read-only menu allows removing sub-effects")
	}
	if _, ok := BuildContextMenu(effect.New("HexEffect", effect.TypePrimary, nil), 0, catalog()).Lookup(LabelRemoveSub); ok {
		t.Error("effect without sub-effects offers to remove one")
	}
}

func TestSubEffectMenuHasNoAddEntries(t *testing.T) {
	e := effect.New("GlowEffect", effect.TypeSecondary, nil)
	m := BuildContextMenu(e, 0, catalog())
	if _, ok := m.Lookup(LabelAddSecondary); ok {
		t.Error("sub-effect menu offers to add secondary effects")
	}
}

func TestActivateEmits(t *testing.T) {
	bus := event.NewStartedBus()
	defer bus.Stop(context.Background())
	rec := record(t, bus)
	em := event.NewEmitter(bus, "test", "EffectContextMenu")

	e := effect.New("FuzzFlareEffect", effect.TypePrimary, nil)
	m := BuildContextMenu(e, 1, catalog())

	tests := []struct {
		path  []int
		topic topic.Topic
	}{
		{[]int{0}, events.TopicPanelEffectEdit},
		{[]int{1}, events.TopicPanelEffectToggleVisibility},
		{[]int{2}, events.TopicPanelEffectDelete},
		{[]int{3, 0}, events.TopicPanelEffectAddSecondary},
		{[]int{4, 0}, events.TopicPanelEffectAddKeyframe},
	}
	for _, tt := range tests {
		it, ok := m.Find(tt.path...)
		if !ok {
			t.Fatalf("Find(%v) failed", tt.path)
		}
		if err := Activate(context.Background(), em, it); err != nil {
			t.Fatalf("Activate(%q): %v", it.Label, err)
		}
		env, _ := rec.last()
		if env.Topic != tt.topic {
			t.Errorf("%q emitted %s, want %s", it.Label, env.Topic, tt.topic)
		}
	}

	sub, _ := m.Find(3)
	if err := Activate(context.Background(), em, sub); !errors.Is(err, ErrInactive) {
		t.Errorf("submenu Activate err = %v", err)
	}
}

func TestPickerFilter(t *testing.T) {
	bus := event.NewStartedBus()
	defer bus.Stop(context.Background())
	p := NewPicker(bus, catalog())

	tests := []struct {
		kind  effect.Type
		query string
		want  int
	}{
		{effect.TypePrimary, "", 2},
		{effect.TypePrimary, "HEX", 1},
		{effect.TypePrimary, "fuzz flare", 1},
		{effect.TypePrimary, "glow", 0},
		{effect.TypeKeyframe, "fade-", 1},
		{effect.TypeFinalImage, "  blur ", 1},
	}
	for _, tt := range tests {
		p.SetType(tt.kind)
		p.SetFilter(tt.query)
		if got := len(p.Items()); got != tt.want {
			t.Errorf("%s %q: %d items, want %d", tt.kind, tt.query, got, tt.want)
		}
	}
}

func TestPickerChoose(t *testing.T) {
	bus := event.NewStartedBus()
	defer bus.Stop(context.Background())
	rec := record(t, bus)
	p := NewPicker(bus, catalog())
	ctx := context.Background()

	if err := p.Choose(ctx, catalog().Primary[0]); err != nil {
		t.Fatal(err)
	}
	env, _ := rec.last()
	add, ok := env.Payload.(events.EffectAdd)
	if env.Topic != events.TopicPanelEffectAdd || !ok || add.Name != "FuzzFlareEffect" {
		t.Errorf("emitted %s %+v", env.Topic, env.Payload)
	}

	glow := catalog().Secondary[0]
	if err := p.Choose(ctx, glow); !errors.Is(err, ErrNoParent) {
		t.Errorf("err = %v, want ErrNoParent", err)
	}
	p.Target("parent-1", 4)
	if err := p.Choose(ctx, glow); err != nil {
		t.Fatal(err)
	}
	env, _ = rec.last()
	att, _ := env.Payload.(events.EffectAttach)
	if env.Topic != events.TopicPanelEffectAddSecondary || att.ParentID != "parent-1" {
		t.Errorf("emitted %s %+v", env.Topic, env.Payload)
	}
}
