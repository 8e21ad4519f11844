// Package wizard implements the effect wizard: a four-step machine that
// collects effects into per-type buckets and hands them to a completion
// callback.
//
//	1 type selection -> 2 effect selection -> 3 configure -> 4 review
//
// Next on step 3 commits the configured effect into its bucket and goes
// back to step 2 so another effect can be picked. Skip to review jumps
// from step 2 to step 4.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/john-paul-ruf/nft-studio/internal/backend"
	"github.com/john-paul-ruf/nft-studio/internal/effect"
	"github.com/john-paul-ruf/nft-studio/internal/logging"
)

// Step is a wizard page.
type Step int

const (
	StepTypeSelection Step = iota + 1
	StepEffectSelection
	StepConfigure
	StepReview
)

func (s Step) String() string {
	switch s {
	case StepTypeSelection:
		return "type selection"
	case StepEffectSelection:
		return "effect selection"
	case StepConfigure:
		return "configure"
	case StepReview:
		return "review"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

var (
	// ErrNoEffectSelected is returned by Next on step 2 without a
	// selected effect class.
	ErrNoEffectSelected = errors.New("wizard: no effect selected")

	// ErrWrongStep is returned when an action is not valid on the
	// current step.
	ErrWrongStep = errors.New("wizard: action not valid on this step")

	// ErrTypeMismatch is returned when the selected effect is of a
	// different type than the one chosen on step 1.
	ErrTypeMismatch = errors.New("wizard: effect type mismatch")
)

// Buckets holds the effects committed so far, by type.
type Buckets struct {
	Primary   []effect.Effect
	Secondary []effect.Effect
	KeyFrame  []effect.Effect
	Final     []effect.Effect
}

// Len returns the number of committed effects.
func (b Buckets) Len() int {
	return len(b.Primary) + len(b.Secondary) + len(b.KeyFrame) + len(b.Final)
}

func (b *Buckets) add(e effect.Effect) {
	switch e.Type {
	case effect.TypeSecondary:
		b.Secondary = append(b.Secondary, e)
	case effect.TypeKeyframe:
		b.KeyFrame = append(b.KeyFrame, e)
	case effect.TypeFinalImage:
		b.Final = append(b.Final, e)
	default:
		b.Primary = append(b.Primary, e)
	}
}

func (b Buckets) clone() Buckets {
	return Buckets{
		Primary:   effect.CloneList(b.Primary),
		Secondary: effect.CloneList(b.Secondary),
		KeyFrame:  effect.CloneList(b.KeyFrame),
		Final:     effect.CloneList(b.Final),
	}
}

// Defaults fetches an effect's default config.
type Defaults interface {
	GetEffectDefaults(ctx context.Context, name string) (backend.DefaultsResult, error)
}

// Wizard is the step machine. It is safe for concurrent use.
type Wizard struct {
	defaults   Defaults
	onBack     func()
	onComplete func(context.Context, Buckets) error
	logger     *logging.Logger

	mu         sync.Mutex
	step       Step
	effectType effect.Type
	selected   *effect.Info
	config     effect.Config
	frame      int
	buckets    Buckets
}

// Option configures a Wizard.
type Option func(*Wizard)

// WithBack sets the collaborator called by Previous on step 1.
func WithBack(fn func()) Option {
	return func(w *Wizard) { w.onBack = fn }
}

// WithComplete sets the callback that receives the buckets on Finish.
func WithComplete(fn func(context.Context, Buckets) error) Option {
	return func(w *Wizard) { w.onComplete = fn }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(w *Wizard) { w.logger = l }
}

// New returns a wizard on step 1. defaults may be nil, in which case
// selected effects start with an empty config.
func New(defaults Defaults, opts ...Option) *Wizard {
	w := &Wizard{
		defaults:   defaults,
		step:       StepTypeSelection,
		effectType: effect.TypePrimary,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = logging.OrNull(w.logger).WithComponent("wizard")
	return w
}

// Step returns the current step.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Type returns the effect type chosen on step 1.
func (w *Wizard) Type() effect.Type {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.effectType
}

// Selected returns the selected effect class, or nil.
func (w *Wizard) Selected() *effect.Info {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.selected == nil {
		return nil
	}
	info := *w.selected
	return &info
}

// Config returns a copy of the in-progress config.
func (w *Wizard) Config() effect.Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.config.Clone()
}

// Buckets returns a copy of the committed effects.
func (w *Wizard) Buckets() Buckets {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buckets.clone()
}

// SelectType chooses the type of the effects to add.
func (w *Wizard) SelectType(t effect.Type) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", effect.ErrUnknownType, t)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepTypeSelection {
		return fmt.Errorf("%w: select type on %s", ErrWrongStep, w.step)
	}
	w.effectType = t
	return nil
}

// SelectEffect picks the effect class on step 2 and loads its defaults.
// A defaults failure keeps the selection with an empty config and is
// returned so the caller can report it.
func (w *Wizard) SelectEffect(ctx context.Context, info effect.Info) error {
	w.mu.Lock()
	if w.step != StepEffectSelection {
		w.mu.Unlock()
		return fmt.Errorf("%w: select effect on %s", ErrWrongStep, w.step)
	}
	if info.Type != "" && info.Type != w.effectType {
		w.mu.Unlock()
		return fmt.Errorf("%w: %s is %s, want %s", ErrTypeMismatch, info.Key(), info.Type, w.effectType)
	}
	w.mu.Unlock()

	cfg := effect.Config{}
	var loadErr error
	if w.defaults != nil {
		res, err := w.defaults.GetEffectDefaults(ctx, info.Key())
		if err := backend.Check("getEffectDefaults", res.Result, err); err != nil {
			w.logger.Warn("defaults for %s: %v", info.Key(), err)
			loadErr = err
		} else if res.Defaults != nil {
			cfg = res.Defaults.Clone()
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	selected := info
	w.selected = &selected
	w.config = cfg
	w.frame = 0
	return loadErr
}

// SetConfig replaces the in-progress config.
func (w *Wizard) SetConfig(cfg effect.Config) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepConfigure {
		return fmt.Errorf("%w: configure on %s", ErrWrongStep, w.step)
	}
	w.config = cfg.Clone()
	return nil
}

// SetFrame sets the frame a keyframe effect fires on.
func (w *Wizard) SetFrame(frame int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepConfigure {
		return fmt.Errorf("%w: set frame on %s", ErrWrongStep, w.step)
	}
	w.frame = frame
	return nil
}

// Next advances one step. On step 2 it requires a selected effect; on
// step 3 it commits the effect and returns to step 2.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.step {
	case StepTypeSelection:
		w.step = StepEffectSelection
	case StepEffectSelection:
		if w.selected == nil {
			return ErrNoEffectSelected
		}
		w.step = StepConfigure
	case StepConfigure:
		w.commitLocked()
		w.step = StepEffectSelection
	default:
		return fmt.Errorf("%w: next on %s", ErrWrongStep, w.step)
	}
	return nil
}

func (w *Wizard) commitLocked() {
	e := effect.New(w.selected.Name, w.effectType, w.config)
	e.RegistryKey = w.selected.Key()
	if e.Config == nil {
		e.Config = effect.Config{}
	}
	if w.effectType == effect.TypeKeyframe {
		e.Frame = w.frame
	}
	w.buckets.add(e)
	w.logger.Debug("committed %s %s", w.effectType, e.Name)

	w.selected = nil
	w.config = nil
	w.frame = 0
}

// Previous goes back one step. Step 3 returns to step 2 without
// committing; step 1 calls the back collaborator.
func (w *Wizard) Previous() {
	w.mu.Lock()
	var back func()
	switch w.step {
	case StepTypeSelection:
		back = w.onBack
	case StepEffectSelection:
		w.step = StepTypeSelection
	case StepConfigure, StepReview:
		w.step = StepEffectSelection
	}
	w.mu.Unlock()

	if back != nil {
		back()
	}
}

// SkipToReview jumps from step 2 to step 4.
func (w *Wizard) SkipToReview() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepEffectSelection {
		return fmt.Errorf("%w: skip to review on %s", ErrWrongStep, w.step)
	}
	w.step = StepReview
	return nil
}

// Finish hands the buckets to the completion callback and resets the
// wizard. A callback error leaves the wizard on step 4.
func (w *Wizard) Finish(ctx context.Context) error {
	w.mu.Lock()
	if w.step != StepReview {
		w.mu.Unlock()
		return fmt.Errorf("%w: finish on %s", ErrWrongStep, w.step)
	}
	buckets := w.buckets.clone()
	complete := w.onComplete
	w.mu.Unlock()

	if complete != nil {
		if err := complete(ctx, buckets); err != nil {
			return err
		}
	}

	w.Reset()
	return nil
}

// Reset returns to step 1 and drops every committed effect.
func (w *Wizard) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.step = StepTypeSelection
	w.effectType = effect.TypePrimary
	w.selected = nil
	w.config = nil
	w.frame = 0
	w.buckets = Buckets{}
}
