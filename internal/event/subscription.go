package event

import (
	"sync"
	"sync/atomic"

	"github.com/john-paul-ruf/nft-studio/internal/event/topic"
)

// Subscription is a registered handler. Unsubscribe removes it from the bus
// and is safe to call more than once.
type Subscription interface {
	ID() string
	Topic() topic.Topic

	// Active reports whether the next matching event would be delivered.
	Active() bool

	// Pause holds delivery until Resume. Events published meanwhile are
	// not replayed.
	Pause()
	Resume()

	Unsubscribe()
}

// SubscriptionConfig holds the options a subscription was created with.
type SubscriptionConfig struct {
	// Priority orders handlers on one topic; lower runs first.
	Priority Priority

	DeliveryMode DeliveryMode

	// Filter, when set, must return true for the event to be delivered.
	Filter FilterFunc

	// Once removes the subscription after its first successful delivery.
	// A delivery that errors or panics leaves it in place for the next event.
	Once bool
}

// SubscriptionOption configures a subscription.
type SubscriptionOption func(*SubscriptionConfig)

// WithPriority sets the subscription priority.
func WithPriority(p Priority) SubscriptionOption {
	return func(c *SubscriptionConfig) { c.Priority = p }
}

// WithDeliveryMode sets the delivery mode.
func WithDeliveryMode(m DeliveryMode) SubscriptionOption {
	return func(c *SubscriptionConfig) { c.DeliveryMode = m }
}

// WithAsync delivers on the bus worker pool instead of the publisher's
// goroutine.
func WithAsync() SubscriptionOption {
	return WithDeliveryMode(DeliveryAsync)
}

// WithFilter sets a filter predicate.
func WithFilter(f FilterFunc) SubscriptionOption {
	return func(c *SubscriptionConfig) { c.Filter = f }
}

// WithOnce keeps the subscription only until a handler call succeeds.
func WithOnce() SubscriptionOption {
	return func(c *SubscriptionConfig) { c.Once = true }
}

// Subscription flags. A once-subscription sets flagFiring while a delivery
// is outstanding so a concurrent publish cannot run it twice; flagDone is
// terminal.
const (
	flagPaused uint32 = 1 << iota
	flagFiring
	flagDone
)

type subscription struct {
	id      string
	seq     uint64
	topic   topic.Topic
	handler Handler
	opts    SubscriptionConfig
	flags   atomic.Uint32

	detach sync.Once
	remove func(id string)
}

func newSubscription(id string, seq uint64, t topic.Topic, h Handler, opts ...SubscriptionOption) *subscription {
	s := &subscription{
		id:      id,
		seq:     seq,
		topic:   t,
		handler: h,
		opts:    SubscriptionConfig{Priority: PriorityNormal, DeliveryMode: DeliverySync},
	}
	for _, opt := range opts {
		opt(&s.opts)
	}
	return s
}

func (s *subscription) ID() string         { return s.id }
func (s *subscription) Topic() topic.Topic { return s.topic }

func (s *subscription) Active() bool {
	return s.flags.Load()&(flagPaused|flagDone) == 0
}

func (s *subscription) Pause()  { s.setFlag(flagPaused) }
func (s *subscription) Resume() { s.clearFlag(flagPaused) }

func (s *subscription) Unsubscribe() {
	s.markDone()
	s.detach.Do(func() {
		if s.remove != nil {
			s.remove(s.id)
		}
	})
}

func (s *subscription) markDone() { s.setFlag(flagDone) }

func (s *subscription) setFlag(f uint32) {
	for {
		old := s.flags.Load()
		if s.flags.CompareAndSwap(old, old|f) {
			return
		}
	}
}

func (s *subscription) clearFlag(f uint32) {
	for {
		old := s.flags.Load()
		if s.flags.CompareAndSwap(old, old&^f) {
			return
		}
	}
}

// accepts reports whether event should reach this subscription in the given
// delivery mode.
func (s *subscription) accepts(mode DeliveryMode, event any) bool {
	if s.opts.DeliveryMode != mode || !s.Active() {
		return false
	}
	return s.opts.Filter == nil || s.opts.Filter(event)
}

// begin claims one delivery. Plain subscriptions always succeed; a
// once-subscription succeeds only while no other delivery is outstanding.
func (s *subscription) begin() bool {
	if !s.opts.Once {
		return true
	}
	for {
		old := s.flags.Load()
		if old&(flagFiring|flagDone|flagPaused) != 0 {
			return false
		}
		if s.flags.CompareAndSwap(old, old|flagFiring) {
			return true
		}
	}
}

// end settles a delivery claimed by begin. A successful once-delivery
// unsubscribes; a failed one hands the claim back.
func (s *subscription) end(ok bool) {
	if !s.opts.Once {
		return
	}
	if ok {
		s.Unsubscribe()
	}
	s.clearFlag(flagFiring)
}
