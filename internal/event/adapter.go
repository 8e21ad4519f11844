package event

import (
	"context"
	"sync/atomic"

	"github.com/john-paul-ruf/nft-studio/internal/event/topic"
)

// BusAdapter publishes string-keyed map payloads. The remote bridge and
// Lua scripts use it since neither can construct typed events.
type BusAdapter struct {
	bus    Bus
	meta   Meta
	closed atomic.Bool
	ctx    context.Context
	cancel context.CancelFunc
}

// NewBusAdapter wraps bus. source tags every event the adapter publishes.
func NewBusAdapter(bus Bus, source string) *BusAdapter {
	ctx, cancel := context.WithCancel(context.Background())
	return &BusAdapter{
		bus:    bus,
		meta:   Meta{Source: source, Component: "BusAdapter"},
		ctx:    ctx,
		cancel: cancel,
	}
}

// Publish sends data on eventType. Failures are dropped.
func (a *BusAdapter) Publish(eventType string, data map[string]any) {
	_ = a.PublishSync(eventType, data)
}

// PublishSync sends data on eventType and returns handler errors.
func (a *BusAdapter) PublishSync(eventType string, data map[string]any) error {
	if a.closed.Load() {
		return ErrSubscriberClosed
	}
	return a.bus.Publish(a.ctx, NewEnvelope(topic.Topic(eventType), data, a.meta))
}

// Close stops further publishing.
func (a *BusAdapter) Close() {
	if a.closed.CompareAndSwap(false, true) {
		a.cancel()
	}
}
