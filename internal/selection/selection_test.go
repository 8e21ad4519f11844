package selection

import (
	"context"
	"errors"
	"testing"

	"github.com/john-paul-ruf/nft-studio/internal/effect"
	"github.com/john-paul-ruf/nft-studio/internal/event"
	"github.com/john-paul-ruf/nft-studio/internal/event/events"
	"github.com/john-paul-ruf/nft-studio/internal/project"
)

func newState(t *testing.T, ids ...string) *project.State {
	t.Helper()
	s := project.NewDefault()
	for _, id := range ids {
		e := effect.Effect{ID: id, Name: id, Type: effect.TypePrimary, Visible: true}
		if _, err := s.AddEffect(e); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func TestSelectMissingID(t *testing.T) {
	s := New(newState(t, "a"))
	if err := s.Select(context.Background(), 5, effect.TypePrimary, 0); !errors.Is(err, ErrMissingEffectID) {
		t.Errorf("err = %v", err)
	}
	if _, ok := s.Current(); ok {
		t.Error("failed select must not change selection")
	}
}

// A reordered effect keeps its ID and stays selected at its new position.
func TestSelectionFollowsReorder(t *testing.T) {
	ctx := context.Background()
	state := newState(t, "a", "b", "c")
	s := New(state)

	if err := s.Select(ctx, 0, effect.TypePrimary, 0); err != nil {
		t.Fatal(err)
	}
	if err := state.MoveEffect(0, 2); err != nil {
		t.Fatal(err)
	}

	moved, _ := state.EffectAt(2)
	if moved.ID != "a" {
		t.Fatalf("moved effect id = %q, want a", moved.ID)
	}
	if !s.IsSelected(2, effect.TypePrimary, 0) {
		t.Error("moved effect should still be selected")
	}
	if s.IsSelected(0, effect.TypePrimary, 0) {
		t.Error("effect now at old index must not report selected")
	}

	data, err := s.SelectedEffectData()
	if err != nil || data.ID != "a" {
		t.Errorf("SelectedEffectData = %v, %v", data, err)
	}
	if ref, _ := s.Current(); ref.EffectIndex != 2 {
		t.Errorf("Current index hint = %d, want 2", ref.EffectIndex)
	}
}

func TestDeletedSelectionReturnsNil(t *testing.T) {
	ctx := context.Background()
	state := newState(t, "a", "b")
	s := New(state)

	_ = s.Select(ctx, 1, effect.TypePrimary, 0)
	if _, _, err := state.RemoveEffect("b"); err != nil {
		t.Fatal(err)
	}

	data, err := s.SelectedEffectData()
	if data != nil {
		t.Errorf("data = %+v, want nil", data)
	}
	if !errors.Is(err, ErrStaleSelection) {
		t.Errorf("err = %v", err)
	}
	if s.IsSelected(1, effect.TypePrimary, 0) {
		t.Error("nothing lives at index 1 any more")
	}
}

func TestIsSelectedMatchesTypeAndSubIndex(t *testing.T) {
	ctx := context.Background()
	state := newState(t, "a")
	_ = state.AddSecondary("a", effect.Effect{ID: "s0"})
	_ = state.AddSecondary("a", effect.Effect{ID: "s1"})
	s := New(state)

	_ = s.Select(ctx, 0, effect.TypeSecondary, 1)
	tests := []struct {
		typ  effect.Type
		sub  int
		want bool
	}{
		{effect.TypeSecondary, 1, true},
		{effect.TypeSecondary, 0, false},
		{effect.TypePrimary, 1, false},
		{effect.TypeKeyframe, 1, false},
	}
	for _, tt := range tests {
		if got := s.IsSelected(0, tt.typ, tt.sub); got != tt.want {
			t.Errorf("IsSelected(0, %s, %d) = %v, want %v", tt.typ, tt.sub, got, tt.want)
		}
	}

	data, err := s.SelectedEffectData()
	if err != nil || data.ID != "s1" {
		t.Errorf("sub-effect data = %v, %v", data, err)
	}

	_, _, _ = state.RemoveSubEffect("a", "s1")
	if _, err := s.SelectedEffectData(); !errors.Is(err, ErrStaleSelection) {
		t.Errorf("removed sub-effect: %v", err)
	}
}

func TestConfigChangeEmitsFreshIndex(t *testing.T) {
	ctx := context.Background()
	bus := event.NewStartedBus()
	defer bus.Stop(ctx)

	state := newState(t, "a", "b", "c")
	s := New(state, WithBus(bus))

	var got []events.EffectConfigChange
	_, _ = event.SubscribeTyped(bus, events.TopicEffectConfigChange, func(_ context.Context, p events.EffectConfigChange) error {
		got = append(got, p)
		return nil
	})

	if err := s.ConfigChange(ctx, effect.Config{}); !errors.Is(err, ErrNoSelection) {
		t.Errorf("no selection: %v", err)
	}

	_ = s.Select(ctx, 2, effect.TypePrimary, 0)
	_ = state.MoveEffect(2, 0)
	if err := s.ConfigChange(ctx, effect.Config{"amp": 1}); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].EffectID != "c" || got[0].EffectIndex != 0 || got[0].Config["amp"] != 1 {
		t.Errorf("got %+v", got)
	}

	_, _, _ = state.RemoveEffect("c")
	if err := s.ConfigChange(ctx, effect.Config{}); !errors.Is(err, ErrStaleSelection) {
		t.Errorf("stale: %v", err)
	}
	if len(got) != 1 {
		t.Error("stale config change must not emit")
	}
}

func TestSelectOpensConfigPanelUnlessReadOnly(t *testing.T) {
	tests := []struct {
		name     string
		readOnly bool
		want     int
	}{
		{"editable", false, 1},
		{"read only", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			bus := event.NewStartedBus()
			defer bus.Stop(ctx)

			var opened, selected, closed int
			_, _ = bus.SubscribeFunc(events.TopicConfigPanelOpen, func(context.Context, any) error { opened++; return nil })
			_, _ = bus.SubscribeFunc(events.TopicEffectSelected, func(context.Context, any) error { selected++; return nil })
			_, _ = bus.SubscribeFunc(events.TopicConfigPanelClose, func(context.Context, any) error { closed++; return nil })

			s := New(newState(t, "a"), WithBus(bus), WithReadOnly(tt.readOnly))
			_ = s.Select(ctx, 0, effect.TypePrimary, 0)
			if opened != tt.want || selected != 1 {
				t.Errorf("opened=%d selected=%d", opened, selected)
			}

			if s.ClearIf(ctx, "other") {
				t.Error("ClearIf matched wrong id")
			}
			if !s.ClearIf(ctx, "a") || closed != 1 {
				t.Errorf("ClearIf(a) closed=%d", closed)
			}
			s.Clear(ctx)
			if closed != 1 {
				t.Error("Clear with no selection must not emit")
			}
		})
	}
}
