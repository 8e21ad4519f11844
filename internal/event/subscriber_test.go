package event

import (
	"context"
	"errors"
	"testing"

	"github.com/john-paul-ruf/nft-studio/internal/event/topic"
)

func TestSubscriberClose(t *testing.T) {
	b := newTestBus(t)
	s := NewSubscriber(b)

	var count int
	handler := func(context.Context, testPayload) error {
		count++
		return nil
	}
	if _, err := SubscribePayload(s, "a:one", handler); err != nil {
		t.Fatal(err)
	}
	if _, err := SubscribePayload(s, "a:two", handler); err != nil {
		t.Fatal(err)
	}
	if s.Count() != 2 {
		t.Fatalf("Count() = %d", s.Count())
	}

	_ = Emit(context.Background(), b, "a:one", testPayload{}, Meta{})
	s.Close()
	_ = Emit(context.Background(), b, "a:one", testPayload{}, Meta{})
	_ = Emit(context.Background(), b, "a:two", testPayload{}, Meta{})

	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if b.Stats().ActiveSubscribers != 0 {
		t.Errorf("leaked subscriptions: %d", b.Stats().ActiveSubscribers)
	}
	if _, err := s.SubscribeFunc("a:one", func(context.Context, any) error { return nil }); !errors.Is(err, ErrSubscriberClosed) {
		t.Errorf("subscribe after close: %v", err)
	}
}

func TestSubscribePayloadSkipsOtherTypes(t *testing.T) {
	b := newTestBus(t)
	s := NewSubscriber(b)
	defer s.Close()

	var got []int
	_, _ = SubscribePayload(s, "a:b", func(_ context.Context, p testPayload) error {
		got = append(got, p.Value)
		return nil
	})

	_ = b.Publish(context.Background(), NewEnvelope("a:b", "not a payload", Meta{}))
	_ = b.Publish(context.Background(), NewEnvelope("a:b", testPayload{Value: 7}, Meta{}))
	_ = Emit(context.Background(), b, "a:b", testPayload{Value: 8}, Meta{})

	if len(got) != 2 || got[0] != 7 || got[1] != 8 {
		t.Errorf("got %v", got)
	}
	if n := b.Stats().PayloadMismatches; n != 1 {
		t.Errorf("PayloadMismatches = %d, want 1", n)
	}
}

func TestSubscribeEventCarriesMetadata(t *testing.T) {
	b := newTestBus(t)
	s := NewSubscriber(b)
	defer s.Close()

	var meta Metadata
	_, _ = SubscribeEvent(s, "a:b", func(_ context.Context, ev Event[testPayload]) error {
		meta = ev.Metadata
		return nil
	})

	em := NewEmitter(b, "toolbar", "CanvasToolbar")
	if err := em.Emit(context.Background(), "a:b", testPayload{Value: 1}); err != nil {
		t.Fatal(err)
	}
	if meta.Source != "toolbar" || meta.Component != "CanvasToolbar" {
		t.Errorf("metadata = %+v", meta)
	}
	if meta.ID == "" || meta.Timestamp.IsZero() {
		t.Error("metadata not stamped")
	}
}

func TestEmitCausedPropagatesCorrelation(t *testing.T) {
	b := newTestBus(t)
	var child Metadata
	_, _ = b.SubscribeFunc("a:child", func(_ context.Context, ev any) error {
		child = MetadataOf(ev)
		return nil
	})

	parent := NewEnvelope("a:parent", nil, Meta{})
	em := NewEmitter(b, "ctl", "Controller")
	_ = em.EmitCaused(context.Background(), "a:child", nil, parent)

	if child.CausationID != parent.Metadata.ID {
		t.Errorf("CausationID = %q, want %q", child.CausationID, parent.Metadata.ID)
	}
	if child.CorrelationID != parent.Metadata.ID {
		t.Errorf("CorrelationID = %q, want %q", child.CorrelationID, parent.Metadata.ID)
	}
}

func TestMonitorRing(t *testing.T) {
	b := newTestBus(t)
	m, err := NewMonitor(b, 3)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	for _, tp := range []string{"a:1", "a:2", "a:3", "a:4", "a:4"} {
		_ = b.Publish(context.Background(), NewEnvelope(topic.Topic(tp), nil, Meta{Source: "t"}))
	}

	recent := m.Recent(0)
	if len(recent) != 3 {
		t.Fatalf("len = %d", len(recent))
	}
	if recent[0].Topic != "a:3" || recent[2].Topic != "a:4" {
		t.Errorf("recent = %v", recent)
	}
	if m.Count("a:4") != 2 {
		t.Errorf("Count(a:4) = %d", m.Count("a:4"))
	}
	if got := m.Recent(1); len(got) != 1 || got[0].Topic != "a:4" {
		t.Errorf("Recent(1) = %v", got)
	}
}

func TestBusAdapter(t *testing.T) {
	b := newTestBus(t)
	var got map[string]any
	_, _ = SubscribeTyped(b, "remote:ping", func(_ context.Context, p map[string]any) error {
		got = p
		return nil
	})

	a := NewBusAdapter(b, "remote")
	a.Publish("remote:ping", map[string]any{"n": 1})
	if got["n"] != 1 {
		t.Errorf("got %v", got)
	}
	a.Close()
	if err := a.PublishSync("remote:ping", nil); !errors.Is(err, ErrSubscriberClosed) {
		t.Errorf("publish after close: %v", err)
	}
}
