package event

import (
	"context"

	"github.com/john-paul-ruf/nft-studio/internal/event/topic"
)

// Emit publishes payload on t as an Event[T], tagged with meta.
func Emit[T any](ctx context.Context, bus Bus, t topic.Topic, payload T, meta Meta) error {
	return bus.Publish(ctx, NewEvent(t, payload, meta))
}

// Emitter binds a bus to a fixed Meta tag. Each UI component owns one.
type Emitter struct {
	bus  Bus
	meta Meta
}

// NewEmitter creates an emitter for one component.
func NewEmitter(bus Bus, source, component string) *Emitter {
	return &Emitter{bus: bus, meta: Meta{Source: source, Component: component}}
}

// Meta returns the emitter's tag.
func (e *Emitter) Meta() Meta {
	return e.meta
}

// Bus returns the underlying bus.
func (e *Emitter) Bus() Bus {
	return e.bus
}

// Emit publishes payload on t as an Envelope.
func (e *Emitter) Emit(ctx context.Context, t topic.Topic, payload any) error {
	return e.bus.Publish(ctx, NewEnvelope(t, payload, e.meta))
}

// EmitCaused publishes payload as a consequence of cause, carrying its
// correlation ID forward.
func (e *Emitter) EmitCaused(ctx context.Context, t topic.Topic, payload any, cause any) error {
	env := NewEnvelope(t, payload, e.meta)
	parent := MetadataOf(cause)
	env.Metadata.CausationID = parent.ID
	env.Metadata.CorrelationID = parent.CorrelationID
	if env.Metadata.CorrelationID == "" {
		env.Metadata.CorrelationID = parent.ID
	}
	return e.bus.Publish(ctx, env)
}
