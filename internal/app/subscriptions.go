package app

import (
	"context"
	"errors"
	"sync"

	"github.com/john-paul-ruf/nft-studio/internal/event"
	"github.com/john-paul-ruf/nft-studio/internal/event/events"
	"github.com/john-paul-ruf/nft-studio/internal/event/topic"
	"github.com/john-paul-ruf/nft-studio/internal/logging"
	"github.com/john-paul-ruf/nft-studio/internal/project"
)

// topicAll matches every event for metrics.
const topicAll topic.Topic = "**"

// subscriptionManager owns the glue subscriptions between components.
type subscriptionManager struct {
	mu            sync.Mutex
	subscriptions []event.Subscription
	removeState   func()
	app           *Application
	emitter       *event.Emitter
}

func newSubscriptionManager(app *Application) *subscriptionManager {
	return &subscriptionManager{
		app:     app,
		emitter: event.NewEmitter(app.bus, "app", "Application"),
	}
}

// setup registers all application-level subscriptions.
func (sm *subscriptionManager) setup() error {
	sm.bridgeState()

	return errors.Join(
		sm.subscribe(topicAll, sm.handleAnyEvent, event.WithPriority(event.PriorityLow)),
		sm.subscribe(events.TopicRenderCompleted, sm.handleRenderCompleted),
		sm.subscribe(events.TopicRenderFailed, sm.handleRenderFailed),
		sm.subscribe(events.TopicCommandExecuted, sm.handleCommand),
		sm.subscribe(events.TopicCommandUndone, sm.handleCommand),
		sm.subscribe(events.TopicAppError, sm.handleAppError),
		sm.subscribe(events.TopicPreferencesChanged, sm.handlePreferencesChanged, event.WithPriority(event.PriorityHigh)),
		sm.subscribe(events.TopicThemeChanged, sm.handleThemeChanged, event.WithPriority(event.PriorityHigh)),
		sm.subscribe(events.TopicProjectLoaded, sm.handleProjectLoaded),
	)
}

// bridgeState publishes project:updated after every state mutation, so
// views never poll the state.
func (sm *subscriptionManager) bridgeState() {
	remove := sm.app.state.OnChange(func(c project.Change) {
		if err := sm.emitter.Emit(context.Background(), events.TopicProjectUpdated, events.ProjectUpdated{Field: c.Field}); err != nil {
			sm.app.logger.Debug("project:updated: %v", err)
		}
	})
	sm.mu.Lock()
	sm.removeState = remove
	sm.mu.Unlock()
}

func (sm *subscriptionManager) subscribe(t topic.Topic, fn event.HandlerFunc, opts ...event.SubscriptionOption) error {
	opts = append([]event.SubscriptionOption{event.WithDeliveryMode(event.DeliverySync)}, opts...)
	sub, err := sm.app.bus.SubscribeFunc(t, fn, opts...)
	if err != nil {
		return err
	}
	sm.mu.Lock()
	sm.subscriptions = append(sm.subscriptions, sub)
	sm.mu.Unlock()
	return nil
}

// cleanup unsubscribes everything. Safe to call multiple times.
func (sm *subscriptionManager) cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.removeState != nil {
		sm.removeState()
		sm.removeState = nil
	}
	for _, sub := range sm.subscriptions {
		if sub != nil {
			_ = sm.app.bus.Unsubscribe(sub)
		}
	}
	sm.subscriptions = nil
}

func (sm *subscriptionManager) handleAnyEvent(context.Context, any) error {
	sm.app.metrics.RecordEvent()
	return nil
}

func (sm *subscriptionManager) handleRenderCompleted(_ context.Context, ev any) error {
	p, ok := event.PayloadOf[events.RenderCompleted](ev)
	if !ok {
		return nil
	}
	// Loop frames arrive untimed.
	if p.Duration == 0 {
		sm.app.metrics.RecordLoopFrame()
		return nil
	}
	sm.app.metrics.RecordRender(p.Duration)
	return nil
}

func (sm *subscriptionManager) handleRenderFailed(_ context.Context, ev any) error {
	sm.app.metrics.RecordRenderFailure()
	if p, ok := event.PayloadOf[events.RenderFailed](ev); ok {
		sm.app.logger.Warn("render frame %d: %s", p.Frame, p.Error)
	}
	return nil
}

func (sm *subscriptionManager) handleCommand(_ context.Context, ev any) error {
	switch event.ToEnvelope(ev).Topic {
	case events.TopicCommandExecuted:
		sm.app.metrics.RecordCommand()
	case events.TopicCommandUndone:
		sm.app.metrics.RecordUndo()
	}
	return nil
}

func (sm *subscriptionManager) handleAppError(_ context.Context, ev any) error {
	sm.app.metrics.RecordError()
	if p, ok := event.PayloadOf[events.AppError](ev); ok {
		sm.app.logger.WithField("source", p.Source).Error("%s: %s", p.Title, p.Message)
	}
	return nil
}

// handlePreferencesChanged applies log level and theme edits made in the
// preferences file while the application runs.
func (sm *subscriptionManager) handlePreferencesChanged(ctx context.Context, _ any) error {
	prefs := sm.app.prefs.Get()
	if sm.app.opts.LogLevel == "" {
		sm.app.logger.SetLevel(logging.ParseLevel(prefs.LogLevel))
	}
	if prefs.Theme == sm.app.ThemeName() || !sm.app.themes.Has(prefs.Theme) {
		return nil
	}
	return sm.emitter.Emit(ctx, events.TopicThemeChanged, events.ThemeChanged{Theme: prefs.Theme})
}

func (sm *subscriptionManager) handleThemeChanged(_ context.Context, ev any) error {
	p, ok := event.PayloadOf[events.ThemeChanged](ev)
	if !ok {
		return nil
	}
	sm.app.mu.Lock()
	sm.app.themeName = p.Theme
	sm.app.mu.Unlock()
	return nil
}

// handleProjectLoaded resets the canvas and renders the first frame of
// the new project.
func (sm *subscriptionManager) handleProjectLoaded(ctx context.Context, _ any) error {
	zoom := sm.app.viewport.Reset()
	if err := sm.emitter.Emit(ctx, events.TopicCanvasZoomChanged, events.CanvasZoomChanged{Zoom: zoom}); err != nil {
		return err
	}
	sm.app.render.Trigger(ctx, 0)
	return nil
}
