package event

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/john-paul-ruf/nft-studio/internal/event/dispatch"
	"github.com/john-paul-ruf/nft-studio/internal/event/topic"
)

// Bus is the central event bus interface.
type Bus interface {
	// Publish delivers event to synchronous subscribers inline and queues
	// it for asynchronous subscribers.
	Publish(ctx context.Context, event any) error

	// PublishSync delivers event to synchronous subscribers only and
	// returns their errors joined.
	PublishSync(ctx context.Context, event any) error

	// PublishAsync queues event for asynchronous subscribers only.
	PublishAsync(ctx context.Context, event any) error

	Subscribe(pattern topic.Topic, handler Handler, opts ...SubscriptionOption) (Subscription, error)
	SubscribeFunc(pattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error)
	Unsubscribe(sub Subscription) error

	Start() error
	Stop(ctx context.Context) error
	Pause()
	Resume()

	Stats() Stats
	IsRunning() bool
	IsPaused() bool
}

type bus struct {
	registry *Registry

	syncDispatcher  *dispatch.SyncDispatcher
	asyncDispatcher *dispatch.AsyncDispatcher

	running atomic.Bool
	paused  atomic.Bool
	seq     atomic.Uint64

	config busConfig

	eventsPublished atomic.Uint64
	eventsDelivered atomic.Uint64
	eventsDropped   atomic.Uint64
	handlerErrors   atomic.Uint64
	handlerPanics   atomic.Uint64
	mismatches      atomic.Uint64
}

// NewBus creates a stopped bus. Call Start before publishing.
func NewBus(opts ...BusOption) Bus {
	config := defaultBusConfig()
	for _, opt := range opts {
		opt(&config)
	}

	onPanic := func(event any, recovered any, _ []byte) {
		if config.panicHandler != nil {
			config.panicHandler(event, recovered)
		}
	}

	b := &bus{
		registry: NewRegistry(),
		config:   config,
	}
	b.syncDispatcher = dispatch.NewSyncDispatcher(dispatch.WithPanicHandler(onPanic))
	b.asyncDispatcher = dispatch.NewAsyncDispatcher(
		dispatch.WithQueueSize(config.asyncQueueSize),
		dispatch.WithWorkerCount(config.asyncWorkerCount),
		dispatch.WithAsyncTimeout(config.handlerTimeout),
		dispatch.WithAsyncPanicHandler(onPanic),
	)
	return b
}

// NewStartedBus creates a bus and starts it.
func NewStartedBus(opts ...BusOption) Bus {
	b := NewBus(opts...)
	_ = b.Start()
	return b
}

func (b *bus) Start() error {
	if b.running.Load() {
		return ErrBusAlreadyRunning
	}
	if err := b.asyncDispatcher.Start(); err != nil {
		return err
	}
	b.running.Store(true)
	return nil
}

// Stop waits for queued async events to drain or for ctx to be done.
func (b *bus) Stop(ctx context.Context) error {
	if !b.running.Swap(false) {
		return ErrBusNotRunning
	}
	return b.asyncDispatcher.Stop(ctx)
}

// Pause drops published events until Resume.
func (b *bus) Pause() {
	b.paused.Store(true)
}

func (b *bus) Resume() {
	b.paused.Store(false)
}

func (b *bus) IsRunning() bool {
	return b.running.Load()
}

func (b *bus) IsPaused() bool {
	return b.paused.Load()
}

func (b *bus) Publish(ctx context.Context, event any) error {
	subs, err := b.prepare(event)
	if err != nil || len(subs) == 0 {
		return err
	}
	syncErr := b.deliverSync(ctx, event, subs)
	b.deliverAsync(ctx, event, subs)
	return syncErr
}

func (b *bus) PublishSync(ctx context.Context, event any) error {
	subs, err := b.prepare(event)
	if err != nil || len(subs) == 0 {
		return err
	}
	return b.deliverSync(ctx, event, subs)
}

func (b *bus) PublishAsync(ctx context.Context, event any) error {
	subs, err := b.prepare(event)
	if err != nil || len(subs) == 0 {
		return err
	}
	b.deliverAsync(ctx, event, subs)
	return nil
}

func (b *bus) prepare(event any) ([]*subscription, error) {
	if !b.running.Load() {
		return nil, ErrBusNotRunning
	}
	if b.paused.Load() {
		return nil, nil
	}
	eventTopic := extractTopic(event)
	if eventTopic == "" {
		return nil, ErrInvalidEvent
	}
	if !eventTopic.Literal() {
		return nil, ErrInvalidTopic
	}
	b.eventsPublished.Add(1)
	return b.registry.Match(eventTopic), nil
}

func (b *bus) deliverSync(ctx context.Context, event any, subs []*subscription) error {
	var errs []error
	for _, sub := range subs {
		if !b.admit(sub, DeliverySync, event) {
			continue
		}

		result := b.syncDispatcher.Dispatch(ctx, event, sub.handler)
		sub.end(result.IsSuccess())
		switch {
		case result.Panicked:
			b.handlerPanics.Add(1)
			errs = append(errs, &PanicError{SubscriptionID: sub.id, Topic: string(sub.topic), Value: result.PanicValue})
		case result.Error != nil:
			b.handlerErrors.Add(1)
			if b.config.errorHandler != nil {
				b.config.errorHandler(event, result.Error)
			}
			errs = append(errs, &HandlerError{SubscriptionID: sub.id, Topic: string(sub.topic), Err: result.Error})
		default:
			b.eventsDelivered.Add(1)
		}
	}
	return errors.Join(errs...)
}

func (b *bus) deliverAsync(ctx context.Context, event any, subs []*subscription) {
	for _, sub := range subs {
		if !b.admit(sub, DeliveryAsync, event) {
			continue
		}
		if err := b.asyncDispatcher.Enqueue(context.WithoutCancel(ctx), event, b.asyncHandler(sub)); err != nil {
			b.eventsDropped.Add(1)
			sub.end(false)
		}
	}
}

// admit decides whether sub gets event and, for a once-subscription,
// claims the delivery.
func (b *bus) admit(sub *subscription, mode DeliveryMode, event any) bool {
	if !sub.accepts(mode, event) {
		return false
	}
	if !wantsPayload(sub.handler, event) {
		b.mismatches.Add(1)
		return false
	}
	return sub.begin()
}

// asyncHandler wraps sub so the worker reports errors and settles a once
// claim. end runs deferred so a panic also releases the claim.
func (b *bus) asyncHandler(sub *subscription) Handler {
	onErr := b.config.errorHandler
	return HandlerFunc(func(ctx context.Context, ev any) (err error) {
		ok := false
		defer func() { sub.end(ok) }()
		err = sub.handler.Handle(ctx, ev)
		if err != nil && onErr != nil {
			onErr(ev, err)
		}
		ok = err == nil
		return err
	})
}

func (b *bus) Subscribe(pattern topic.Topic, handler Handler, opts ...SubscriptionOption) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if !pattern.IsValid() {
		return nil, ErrInvalidTopic
	}

	sub := newSubscription(newID(), b.seq.Add(1), pattern, handler, opts...)
	sub.remove = func(id string) { b.registry.Remove(id) }
	b.registry.Add(sub)
	return sub, nil
}

func (b *bus) SubscribeFunc(pattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(pattern, fn, opts...)
}

func (b *bus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return ErrInvalidSubscription
	}
	if _, ok := b.registry.Get(sub.ID()); !ok {
		return ErrSubscriptionNotFound
	}
	sub.Unsubscribe()
	return nil
}

func (b *bus) Stats() Stats {
	async := b.asyncDispatcher.Stats()
	return Stats{
		EventsPublished:   b.eventsPublished.Load(),
		EventsDelivered:   b.eventsDelivered.Load() + async.Succeeded,
		EventsDropped:     b.eventsDropped.Load(),
		HandlerErrors:     b.handlerErrors.Load() + async.Failed,
		HandlerPanics:     b.handlerPanics.Load() + async.Panicked,
		PayloadMismatches: b.mismatches.Load(),
		ActiveSubscribers: b.registry.Count(),
		QueueDepth:        async.QueueDepth,
	}
}

func extractTopic(event any) topic.Topic {
	if tp, ok := event.(TopicProvider); ok {
		return tp.EventTopic()
	}
	return ""
}
