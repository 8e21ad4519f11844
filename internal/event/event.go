package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/john-paul-ruf/nft-studio/internal/event/topic"
)

// Meta is the {source, component} tag attached to every emitted event.
// It exists for logging and tracing.
type Meta struct {
	Source    string
	Component string
}

// Metadata contains standard information attached to every event.
type Metadata struct {
	ID        string
	Timestamp time.Time

	// Source is the subsystem that emitted the event ("effectspanel", "toolbar").
	Source string

	// Component is the emitting component ("EffectsPanel", "CanvasToolbar").
	Component string

	// CorrelationID links a request to its follow-up events.
	CorrelationID string

	// CausationID is the ID of the event that caused this one.
	CausationID string

	Version int
}

// Event is a typed event. Events are values and are never mutated after emit.
type Event[T any] struct {
	Type     topic.Topic
	Payload  T
	Metadata Metadata
}

// NewEvent creates a typed event stamped with a fresh ID and timestamp.
func NewEvent[T any](eventType topic.Topic, payload T, meta Meta) Event[T] {
	return Event[T]{
		Type:    eventType,
		Payload: payload,
		Metadata: Metadata{
			ID:        newID(),
			Timestamp: time.Now(),
			Source:    meta.Source,
			Component: meta.Component,
			Version:   1,
		},
	}
}

// EventTopic implements TopicProvider.
func (e Event[T]) EventTopic() topic.Topic {
	return e.Type
}

// EventMetadata implements MetadataProvider.
func (e Event[T]) EventMetadata() Metadata {
	return e.Metadata
}

// EventPayload implements PayloadProvider.
func (e Event[T]) EventPayload() any {
	return e.Payload
}

// WithCausation returns a copy of the event caused by the given event ID.
func (e Event[T]) WithCausation(causationID string) Event[T] {
	e.Metadata.CausationID = causationID
	return e
}

// WithCorrelation returns a copy of the event with a correlation ID.
func (e Event[T]) WithCorrelation(correlationID string) Event[T] {
	e.Metadata.CorrelationID = correlationID
	return e
}

// TopicProvider is implemented by anything publishable on the bus.
type TopicProvider interface {
	EventTopic() topic.Topic
}

// MetadataProvider is implemented by events carrying Metadata.
type MetadataProvider interface {
	EventMetadata() Metadata
}

// PayloadProvider exposes the payload of a type-erased event.
type PayloadProvider interface {
	EventPayload() any
}

// Envelope is the type-erased form of an event.
type Envelope struct {
	Topic    topic.Topic
	Payload  any
	Metadata Metadata
}

// NewEnvelope creates an envelope stamped with a fresh ID and timestamp.
func NewEnvelope(t topic.Topic, payload any, meta Meta) Envelope {
	return Envelope{
		Topic:   t,
		Payload: payload,
		Metadata: Metadata{
			ID:        newID(),
			Timestamp: time.Now(),
			Source:    meta.Source,
			Component: meta.Component,
			Version:   1,
		},
	}
}

// EventTopic implements TopicProvider.
func (e Envelope) EventTopic() topic.Topic {
	return e.Topic
}

// EventMetadata implements MetadataProvider.
func (e Envelope) EventMetadata() Metadata {
	return e.Metadata
}

// EventPayload implements PayloadProvider.
func (e Envelope) EventPayload() any {
	return e.Payload
}

// ToEnvelope converts any publishable event to an Envelope.
// The zero Envelope is returned for values that carry no topic.
func ToEnvelope(event any) Envelope {
	if env, ok := event.(Envelope); ok {
		return env
	}
	tp, ok := event.(TopicProvider)
	if !ok {
		return Envelope{}
	}
	env := Envelope{Topic: tp.EventTopic(), Payload: event}
	if pp, ok := event.(PayloadProvider); ok {
		env.Payload = pp.EventPayload()
	}
	if mp, ok := event.(MetadataProvider); ok {
		env.Metadata = mp.EventMetadata()
	}
	return env
}

// PayloadOf extracts a payload of type T from an Event[T], an Envelope or a
// bare T.
func PayloadOf[T any](event any) (T, bool) {
	switch e := event.(type) {
	case Event[T]:
		return e.Payload, true
	case Envelope:
		p, ok := e.Payload.(T)
		return p, ok
	case T:
		return e, true
	}
	var zero T
	return zero, false
}

// MetadataOf returns the metadata of an event, if it carries any.
func MetadataOf(event any) Metadata {
	if mp, ok := event.(MetadataProvider); ok {
		return mp.EventMetadata()
	}
	return Metadata{}
}

func newID() string {
	return uuid.NewString()
}
