package event

import (
	"context"
	"sync"

	"github.com/john-paul-ruf/nft-studio/internal/event/topic"
)

// Subscriber tracks the subscriptions of one component so they can be
// released together when the component is torn down.
type Subscriber struct {
	bus           Bus
	mu            sync.Mutex
	subscriptions []Subscription
	closed        bool
}

// NewSubscriber creates a subscription group on bus.
func NewSubscriber(bus Bus) *Subscriber {
	return &Subscriber{bus: bus}
}

// Bus returns the underlying bus.
func (s *Subscriber) Bus() Bus {
	return s.bus
}

// Subscribe registers handler on pattern and tracks the subscription.
func (s *Subscriber) Subscribe(pattern topic.Topic, handler Handler, opts ...SubscriptionOption) (Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSubscriberClosed
	}
	sub, err := s.bus.Subscribe(pattern, handler, opts...)
	if err != nil {
		return nil, err
	}
	s.subscriptions = append(s.subscriptions, sub)
	return sub, nil
}

// SubscribeFunc registers a function handler.
func (s *Subscriber) SubscribeFunc(pattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error) {
	return s.Subscribe(pattern, fn, opts...)
}

// SubscribeOnce registers a handler that is removed after its first event.
func (s *Subscriber) SubscribeOnce(pattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error) {
	return s.Subscribe(pattern, fn, append(opts, WithOnce())...)
}

// SubscribePayload registers a handler that receives the payload of
// Event[T], Envelope or bare T events. Events carrying any other payload
// type are skipped.
func SubscribePayload[T any](s *Subscriber, pattern topic.Topic, handler func(ctx context.Context, payload T) error, opts ...SubscriptionOption) (Subscription, error) {
	return s.Subscribe(pattern, PayloadHandler(handler), opts...)
}

// SubscribeEvent registers a handler that receives the full typed event,
// converting Envelopes with a T payload on the way.
func SubscribeEvent[T any](s *Subscriber, pattern topic.Topic, handler func(ctx context.Context, ev Event[T]) error, opts ...SubscriptionOption) (Subscription, error) {
	asEvent := func(ev any) (Event[T], bool) {
		switch e := ev.(type) {
		case Event[T]:
			return e, true
		case Envelope:
			if p, ok := e.Payload.(T); ok {
				return Event[T]{Type: e.Topic, Payload: p, Metadata: e.Metadata}, true
			}
		}
		return Event[T]{}, false
	}
	return s.Subscribe(pattern, typedHandler{
		wants: func(ev any) bool {
			_, ok := asEvent(ev)
			return ok
		},
		fn: func(ctx context.Context, ev any) error {
			if e, ok := asEvent(ev); ok {
				return handler(ctx, e)
			}
			return nil
		},
	}, opts...)
}

// PayloadHandler adapts a typed payload function to Handler. On a bus,
// events whose payload is not a T never reach fn; they are counted in
// Stats.PayloadMismatches instead.
func PayloadHandler[T any](fn func(ctx context.Context, payload T) error) Handler {
	return typedHandler{
		wants: func(ev any) bool {
			_, ok := PayloadOf[T](ev)
			return ok
		},
		fn: func(ctx context.Context, ev any) error {
			if p, ok := PayloadOf[T](ev); ok {
				return fn(ctx, p)
			}
			return nil
		},
	}
}

// typedHandler is a handler bound to one payload type. The bus consults
// wants before delivery.
type typedHandler struct {
	wants func(event any) bool
	fn    HandlerFunc
}

func (h typedHandler) Handle(ctx context.Context, event any) error {
	return h.fn(ctx, event)
}

// wantsPayload reports whether h takes event's payload. Untyped handlers
// take everything.
func wantsPayload(h Handler, event any) bool {
	if th, ok := h.(typedHandler); ok {
		return th.wants(event)
	}
	return true
}

// Count returns the number of live subscriptions in the group.
func (s *Subscriber) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscriptions)
}

// UnsubscribeAll releases every subscription but leaves the group usable.
func (s *Subscriber) UnsubscribeAll() {
	s.mu.Lock()
	subs := s.subscriptions
	s.subscriptions = nil
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
}

// Close releases every subscription. Further Subscribe calls fail.
func (s *Subscriber) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.UnsubscribeAll()
}

// SubscribeTyped registers a payload handler directly on bus.
func SubscribeTyped[T any](bus Bus, pattern topic.Topic, handler func(ctx context.Context, payload T) error, opts ...SubscriptionOption) (Subscription, error) {
	return bus.Subscribe(pattern, PayloadHandler(handler), opts...)
}
