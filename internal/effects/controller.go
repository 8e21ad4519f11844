// Package effects turns effects panel actions into undoable project
// commands.
//
// The panel only emits effectspanel:effect:* events. The Controller
// handles each one: it fetches defaults from the backend where needed,
// runs the matching history command, and re-emits the outcome on the
// normalized effect:* channel. Backend failures are reported on
// app:error and the action is dropped.
package effects

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/john-paul-ruf/nft-studio/internal/backend"
	"github.com/john-paul-ruf/nft-studio/internal/effect"
	"github.com/john-paul-ruf/nft-studio/internal/event"
	"github.com/john-paul-ruf/nft-studio/internal/event/events"
	"github.com/john-paul-ruf/nft-studio/internal/event/topic"
	"github.com/john-paul-ruf/nft-studio/internal/history"
	"github.com/john-paul-ruf/nft-studio/internal/logging"
	"github.com/john-paul-ruf/nft-studio/internal/project"
	"github.com/john-paul-ruf/nft-studio/internal/selection"
)

var (
	// ErrDefaults is returned when the backend cannot supply defaults.
	ErrDefaults = errors.New("effect defaults unavailable")

	// ErrNoEffect is returned when an action names no existing effect.
	ErrNoEffect = errors.New("no such effect")
)

// Controller handles effect management for one project.
type Controller struct {
	api      backend.API
	state    *project.State
	history  *history.Service
	selector *selection.Selector
	logger   *logging.Logger

	bus     event.Bus
	emitter *event.Emitter
	subs    *event.Subscriber

	mu      sync.RWMutex
	catalog effect.Catalog
}

// Option configures a Controller.
type Option func(*Controller)

// WithBus subscribes to panel events on Start and emits outcomes on bus.
func WithBus(bus event.Bus) Option {
	return func(c *Controller) {
		c.bus = bus
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// New returns a controller editing hist's project.
func New(api backend.API, hist *history.Service, sel *selection.Selector, opts ...Option) *Controller {
	c := &Controller{
		api:      api,
		state:    hist.State(),
		history:  hist,
		selector: sel,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrNull(c.logger).WithComponent("effects")
	if c.bus != nil {
		c.emitter = event.NewEmitter(c.bus, "effects", "EffectManagement")
	}
	return c
}

// Start subscribes to the effects panel topics and effect:config:change.
func (c *Controller) Start() error {
	if c.bus == nil {
		return nil
	}
	subs := event.NewSubscriber(c.bus)

	err := errors.Join(
		subscribe(subs, events.TopicPanelEffectAdd, func(ctx context.Context, p events.EffectAdd) error {
			_, err := c.AddEffect(ctx, p.Name, p.Type)
			return err
		}),
		subscribe(subs, events.TopicPanelEffectDelete, func(ctx context.Context, p events.EffectDelete) error {
			if p.SubEffectID != "" {
				return c.DeleteSubEffect(ctx, p.EffectID, p.SubEffectID)
			}
			return c.DeleteEffect(ctx, p.EffectID, p.Index)
		}),
		subscribe(subs, events.TopicPanelEffectReorder, func(ctx context.Context, p events.EffectReorder) error {
			return c.ReorderEffect(ctx, p.From, p.To)
		}),
		subscribe(subs, events.TopicPanelEffectToggleVisibility, func(ctx context.Context, p events.EffectToggleVisibility) error {
			return c.ToggleVisibility(ctx, p.EffectID, p.Index)
		}),
		subscribe(subs, events.TopicPanelEffectEdit, func(ctx context.Context, p events.EffectEdit) error {
			return c.EditEffect(ctx, p.Index, p.Type, p.SubIndex)
		}),
		subscribe(subs, events.TopicPanelEffectAddSecondary, func(ctx context.Context, p events.EffectAttach) error {
			_, err := c.AttachEffect(ctx, p.ParentID, p.Name, effect.TypeSecondary, 0)
			return err
		}),
		subscribe(subs, events.TopicPanelEffectAddKeyframe, func(ctx context.Context, p events.EffectAttach) error {
			_, err := c.AttachEffect(ctx, p.ParentID, p.Name, effect.TypeKeyframe, p.Frame)
			return err
		}),
		subscribe(subs, events.TopicEffectConfigChange, c.UpdateConfig),
	)
	if err != nil {
		subs.Close()
		return fmt.Errorf("effects: subscribe: %w", err)
	}

	c.mu.Lock()
	c.subs = subs
	c.mu.Unlock()
	return nil
}

func subscribe[T any](subs *event.Subscriber, t topic.Topic, fn func(context.Context, T) error) error {
	_, err := event.SubscribePayload(subs, t, fn)
	return err
}

// Close releases bus subscriptions.
func (c *Controller) Close() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()
	if subs != nil {
		subs.Close()
	}
}

// LoadAvailable fetches the effect catalog from the backend, caches it
// and emits effects:available.
func (c *Controller) LoadAvailable(ctx context.Context) (effect.Catalog, error) {
	res, err := c.api.GetAvailableEffects(ctx)
	if err := backend.Check("getAvailableEffects", res.Result, err); err != nil {
		c.alert(ctx, "Effects unavailable", err)
		return effect.Catalog{}, err
	}

	c.mu.Lock()
	c.catalog = res.Effects
	c.mu.Unlock()

	c.logger.Info("loaded %d available effects", res.Effects.Len())
	c.emit(ctx, events.TopicEffectsAvailable, events.EffectsAvailable{Catalog: res.Effects})
	return res.Effects, nil
}

// Available returns the last loaded catalog.
func (c *Controller) Available() effect.Catalog {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.catalog
}

// AddEffect creates a top-level effect from the backend's defaults.
func (c *Controller) AddEffect(ctx context.Context, name string, t effect.Type) (effect.Effect, error) {
	if t == "" {
		t = effect.TypePrimary
	}
	if t.IsSub() {
		return effect.Effect{}, fmt.Errorf("%w: %s effects must be attached to a parent", effect.ErrUnknownType, t)
	}

	e, err := c.build(ctx, name, t)
	if err != nil {
		return effect.Effect{}, err
	}
	if err := c.history.Execute(ctx, history.NewAddEffectCommand(e)); err != nil {
		c.alert(ctx, "Failed to add effect", err)
		return effect.Effect{}, err
	}

	c.emit(ctx, events.TopicEffectAdd, events.EffectAdded{
		EffectID: e.ID,
		Index:    c.state.IndexOf(e.ID),
		Name:     e.Name,
		Type:     e.Type,
	})
	return e, nil
}

// AttachEffect adds a secondary or keyframe effect to parentID.
func (c *Controller) AttachEffect(ctx context.Context, parentID, name string, t effect.Type, frame int) (effect.Effect, error) {
	if !t.IsSub() {
		return effect.Effect{}, fmt.Errorf("%w: cannot attach %s effect", effect.ErrUnknownType, t)
	}
	if c.state.IndexOf(parentID) < 0 {
		c.logger.Error("attach %s to missing effect %s", name, parentID)
		return effect.Effect{}, fmt.Errorf("%w: %s", ErrNoEffect, parentID)
	}

	e, err := c.build(ctx, name, t)
	if err != nil {
		return effect.Effect{}, err
	}

	var cmd history.Command
	if t == effect.TypeKeyframe {
		cmd = history.NewAddKeyframeEffectCommand(parentID, e, frame)
	} else {
		cmd = history.NewAddSecondaryEffectCommand(parentID, e)
	}
	if err := c.history.Execute(ctx, cmd); err != nil {
		c.alert(ctx, "Failed to attach effect", err)
		return effect.Effect{}, err
	}

	c.emit(ctx, events.TopicEffectAttach, events.EffectAttached{
		ParentID: parentID,
		EffectID: e.ID,
		Name:     e.Name,
		Type:     t,
		Frame:    frame,
	})
	return e, nil
}

// build fetches defaults and returns a new effect with a fresh ID.
func (c *Controller) build(ctx context.Context, name string, t effect.Type) (effect.Effect, error) {
	res, err := c.api.GetEffectDefaults(ctx, name)
	if err := backend.Check("getEffectDefaults", res.Result, err); err != nil {
		err = fmt.Errorf("%w for %s: %w", ErrDefaults, name, err)
		c.alert(ctx, "Failed to add effect", err)
		return effect.Effect{}, err
	}

	e := effect.New(name, t, res.Defaults)
	if info, ok := c.Available().Find(name); ok {
		e.Name = info.Name
		e.ClassName = info.Name
		e.RegistryKey = info.Key()
	}
	if e.Config == nil {
		e.Config = effect.Config{}
	}
	return e, nil
}

// DeleteEffect removes a top-level effect by ID, or by index when id is
// empty. A selection pointing at it is cleared.
func (c *Controller) DeleteEffect(ctx context.Context, id string, index int) error {
	id, index, err := c.resolve(id, index)
	if err != nil {
		c.logger.Error("delete: %v", err)
		return err
	}
	if err := c.history.Execute(ctx, history.NewDeleteEffectCommand(id)); err != nil {
		return err
	}
	if c.selector != nil {
		c.selector.ClearIf(ctx, id)
	}
	c.emit(ctx, events.TopicEffectDelete, events.EffectDelete{EffectID: id, Index: index})
	return nil
}

// DeleteSubEffect removes a secondary or keyframe effect from its parent
// and emits effect:delete with SubEffectID set. A selection left pointing
// past the parent's remaining sub-effects is cleared.
func (c *Controller) DeleteSubEffect(ctx context.Context, parentID, childID string) error {
	index := c.state.IndexOf(parentID)
	if index < 0 {
		c.logger.Error("delete sub-effect: parent %s not found", parentID)
		return fmt.Errorf("%w: %s", ErrNoEffect, parentID)
	}
	if err := c.history.Execute(ctx, history.NewDeleteSubEffectCommand(parentID, childID)); err != nil {
		return err
	}
	if c.selector != nil {
		if ref, ok := c.selector.Current(); ok && ref.EffectID == parentID && ref.EffectType.IsSub() {
			if _, err := c.selector.SelectedEffectData(); err != nil {
				c.selector.Clear(ctx)
			}
		}
	}
	c.emit(ctx, events.TopicEffectDelete, events.EffectDelete{EffectID: parentID, Index: index, SubEffectID: childID})
	return nil
}

// ReorderEffect moves the effect at from to to.
func (c *Controller) ReorderEffect(ctx context.Context, from, to int) error {
	if from == to {
		return nil
	}
	if err := c.history.Execute(ctx, history.NewReorderEffectsCommand(from, to)); err != nil {
		return err
	}
	c.emit(ctx, events.TopicEffectReorder, events.EffectReorder{From: from, To: to})
	return nil
}

// ToggleVisibility flips an effect's visible flag. id may name a
// sub-effect; when empty the top-level effect at index is used.
func (c *Controller) ToggleVisibility(ctx context.Context, id string, index int) error {
	if id == "" {
		var err error
		if id, _, err = c.resolve(id, index); err != nil {
			c.logger.Error("toggle visibility: %v", err)
			return err
		}
	}
	if err := c.history.Execute(ctx, history.NewToggleVisibilityCommand(id)); err != nil {
		return err
	}
	e, _ := c.state.Find(id)
	c.emit(ctx, events.TopicEffectToggle, events.EffectVisibility{EffectID: id, Visible: e.Visible})
	return nil
}

// EditEffect selects an effect for the config panel.
func (c *Controller) EditEffect(ctx context.Context, index int, t effect.Type, subIndex int) error {
	if t == "" {
		t = effect.TypePrimary
	}
	if c.selector == nil {
		return nil
	}
	if err := c.selector.Select(ctx, index, t, subIndex); err != nil {
		return err
	}
	c.emit(ctx, events.TopicEffectEdit, events.EffectEdit{Index: index, Type: t, SubIndex: subIndex})
	return nil
}

// UpdateConfig applies an edited config. The target is resolved by
// EffectID; for sub-effects EffectID names the parent and
// SubEffectIndex the child.
func (c *Controller) UpdateConfig(ctx context.Context, p events.EffectConfigChange) error {
	if p.EffectID == "" {
		c.logger.Error("config change without effect id")
		return selection.ErrMissingEffectID
	}

	target := p.EffectID
	if p.EffectType.IsSub() {
		idx := c.state.IndexOf(p.EffectID)
		parent, ok := c.state.EffectAt(idx)
		if !ok {
			c.logger.Error("config change for missing effect %s", p.EffectID)
			return fmt.Errorf("%w: %s", ErrNoEffect, p.EffectID)
		}
		child, ok := parent.Child(p.EffectType, p.SubEffectIndex)
		if !ok {
			c.logger.Error("config change for missing %s effect %d of %s", p.EffectType, p.SubEffectIndex, p.EffectID)
			return fmt.Errorf("%w: %s[%d] of %s", ErrNoEffect, p.EffectType, p.SubEffectIndex, p.EffectID)
		}
		target = child.ID
	}

	return c.history.Execute(ctx, history.NewUpdateEffectConfigCommand(target, p.Config))
}

// resolve returns the ID and index of a top-level effect given either.
func (c *Controller) resolve(id string, index int) (string, int, error) {
	if id != "" {
		idx := c.state.IndexOf(id)
		if idx < 0 {
			return "", -1, fmt.Errorf("%w: %s", ErrNoEffect, id)
		}
		return id, idx, nil
	}
	e, ok := c.state.EffectAt(index)
	if !ok {
		return "", -1, fmt.Errorf("%w: index %d", ErrNoEffect, index)
	}
	if e.ID == "" {
		return "", -1, fmt.Errorf("%w at index %d", selection.ErrMissingEffectID, index)
	}
	return e.ID, index, nil
}

func (c *Controller) alert(ctx context.Context, title string, err error) {
	c.logger.Error("%s: %v", title, err)
	c.emit(ctx, events.TopicAppError, events.AppError{
		Title:   title,
		Message: err.Error(),
		Source:  "effects",
	})
}

func (c *Controller) emit(ctx context.Context, t topic.Topic, payload any) {
	if c.emitter == nil {
		return
	}
	if err := c.emitter.Emit(ctx, t, payload); err != nil {
		c.logger.Warn("emit %s: %v", t, err)
	}
}
