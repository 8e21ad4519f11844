// Package selection tracks which effect the config panel is editing.
//
// A selection is stored as a Ref whose EffectID is authoritative. The
// index is only a hint: every read re-resolves the ID against current
// project state, so reorders, inserts and deletes never leave the panel
// editing the wrong effect.
package selection

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/john-paul-ruf/nft-studio/internal/effect"
	"github.com/john-paul-ruf/nft-studio/internal/event"
	"github.com/john-paul-ruf/nft-studio/internal/event/events"
	"github.com/john-paul-ruf/nft-studio/internal/event/topic"
	"github.com/john-paul-ruf/nft-studio/internal/logging"
)

var (
	// ErrMissingEffectID is returned when the effect at an index has no ID
	// or the index does not exist.
	ErrMissingEffectID = errors.New("effect has no id")

	// ErrNoSelection is returned when nothing is selected.
	ErrNoSelection = errors.New("no effect selected")

	// ErrStaleSelection is returned when the selected effect no longer
	// exists.
	ErrStaleSelection = errors.New("selected effect no longer exists")
)

// StateReader is the read side of project state the selector needs.
type StateReader interface {
	EffectAt(i int) (effect.Effect, bool)
	IndexOf(id string) int
}

// Ref points at a selected effect.
type Ref struct {
	EffectID    string
	EffectIndex int
	EffectType  effect.Type
	SubIndex    int
}

// Selector holds the current selection.
type Selector struct {
	mu       sync.Mutex
	state    StateReader
	current  *Ref
	readOnly bool

	emitter *event.Emitter
	logger  *logging.Logger
}

// Option configures a Selector.
type Option func(*Selector)

// WithBus emits selection events on bus.
func WithBus(bus event.Bus) Option {
	return func(s *Selector) {
		s.emitter = event.NewEmitter(bus, "selection", "EffectSelector")
	}
}

// WithReadOnly suppresses configpanel:open on select.
func WithReadOnly(readOnly bool) Option {
	return func(s *Selector) {
		s.readOnly = readOnly
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Selector) {
		s.logger = l
	}
}

// New creates a selector reading from state.
func New(state StateReader, opts ...Option) *Selector {
	s := &Selector{state: state}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrNull(s.logger).WithComponent("selection")
	return s
}

// Select selects the effect at effectIndex (and, for secondary or keyframe
// types, its sub-effect at subIndex). The effect must exist and carry an
// ID; otherwise the selection is unchanged.
func (s *Selector) Select(ctx context.Context, effectIndex int, effectType effect.Type, subIndex int) error {
	e, ok := s.state.EffectAt(effectIndex)
	if !ok || e.ID == "" {
		s.logger.Error("cannot select effect at index %d: missing effect id", effectIndex)
		return fmt.Errorf("%w: index %d", ErrMissingEffectID, effectIndex)
	}

	ref := Ref{
		EffectID:    e.ID,
		EffectIndex: effectIndex,
		EffectType:  effectType,
		SubIndex:    subIndex,
	}

	s.mu.Lock()
	s.current = &ref
	readOnly := s.readOnly
	s.mu.Unlock()

	s.emit(ctx, events.TopicEffectSelected, events.EffectSelected{
		EffectID:    ref.EffectID,
		EffectIndex: ref.EffectIndex,
		EffectType:  ref.EffectType,
		SubIndex:    ref.SubIndex,
	})
	if !readOnly {
		s.emit(ctx, events.TopicConfigPanelOpen, events.ConfigPanelOpen{
			EffectID:   ref.EffectID,
			EffectType: ref.EffectType,
			SubIndex:   ref.SubIndex,
		})
	}
	return nil
}

// IsSelected reports whether the effect currently at effectIndex is the
// selected one, with the same type and sub-index.
func (s *Selector) IsSelected(effectIndex int, effectType effect.Type, subIndex int) bool {
	s.mu.Lock()
	cur := s.current
	s.mu.Unlock()
	if cur == nil {
		return false
	}

	e, ok := s.state.EffectAt(effectIndex)
	if !ok || e.ID == "" {
		return false
	}
	return e.ID == cur.EffectID && effectType == cur.EffectType && subIndex == cur.SubIndex
}

// Current returns the selection with its index hint refreshed.
func (s *Selector) Current() (Ref, bool) {
	s.mu.Lock()
	cur := s.current
	s.mu.Unlock()
	if cur == nil {
		return Ref{}, false
	}
	ref := *cur
	if idx := s.state.IndexOf(ref.EffectID); idx >= 0 {
		ref.EffectIndex = idx
	}
	return ref, true
}

// SelectedEffectData resolves the selection against current state and
// returns a copy of the selected effect or sub-effect.
func (s *Selector) SelectedEffectData() (*effect.Effect, error) {
	s.mu.Lock()
	cur := s.current
	s.mu.Unlock()
	if cur == nil {
		return nil, ErrNoSelection
	}

	idx := s.state.IndexOf(cur.EffectID)
	if idx < 0 {
		s.logger.Warn("selected effect %s no longer exists", cur.EffectID)
		return nil, ErrStaleSelection
	}
	e, ok := s.state.EffectAt(idx)
	if !ok {
		s.logger.Warn("selected effect %s vanished during lookup", cur.EffectID)
		return nil, ErrStaleSelection
	}

	if cur.EffectType.IsSub() {
		child, ok := e.Child(cur.EffectType, cur.SubIndex)
		if !ok {
			s.logger.Warn("selected %s effect %d of %s no longer exists", cur.EffectType, cur.SubIndex, cur.EffectID)
			return nil, ErrStaleSelection
		}
		c := child.Clone()
		return &c, nil
	}
	return &e, nil
}

// ConfigChange emits effect:config:change for the selected effect with the
// index resolved from current state.
func (s *Selector) ConfigChange(ctx context.Context, cfg effect.Config) error {
	s.mu.Lock()
	cur := s.current
	s.mu.Unlock()
	if cur == nil {
		s.logger.Error("config change with no selection")
		return ErrNoSelection
	}

	idx := s.state.IndexOf(cur.EffectID)
	if idx < 0 {
		s.logger.Error("config change for missing effect %s", cur.EffectID)
		return fmt.Errorf("%w: %s", ErrStaleSelection, cur.EffectID)
	}

	s.emit(ctx, events.TopicEffectConfigChange, events.EffectConfigChange{
		EffectID:       cur.EffectID,
		EffectIndex:    idx,
		EffectType:     cur.EffectType,
		SubEffectIndex: cur.SubIndex,
		Config:         cfg.Clone(),
	})
	return nil
}

// Clear drops the selection and closes the config panel.
func (s *Selector) Clear(ctx context.Context) {
	s.mu.Lock()
	had := s.current != nil
	s.current = nil
	s.mu.Unlock()

	if had {
		s.emit(ctx, events.TopicConfigPanelClose, events.ConfigPanelClose{})
	}
}

// ClearIf drops the selection if it points at effectID.
func (s *Selector) ClearIf(ctx context.Context, effectID string) bool {
	s.mu.Lock()
	match := s.current != nil && s.current.EffectID == effectID
	s.mu.Unlock()
	if match {
		s.Clear(ctx)
	}
	return match
}

func (s *Selector) emit(ctx context.Context, t topic.Topic, payload any) {
	if s.emitter == nil {
		return
	}
	if err := s.emitter.Emit(ctx, t, payload); err != nil {
		s.logger.Warn("emit %s: %v", t, err)
	}
}
