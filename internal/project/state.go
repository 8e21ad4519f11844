package project

import (
	"fmt"
	"sync"

	"github.com/john-paul-ruf/nft-studio/internal/effect"
)

// Change fields reported to listeners.
const (
	FieldEffects     = "effects"
	FieldResolution  = "resolution"
	FieldOrientation = "orientation"
	FieldFrames      = "frames"
	FieldColorScheme = "colorScheme"
	FieldName        = "name"
	FieldOutput      = "output"
	FieldAll         = "all"
)

// Change describes a mutation.
type Change struct {
	Field string
}

// State is the single owned project. It is safe for concurrent use.
type State struct {
	mu   sync.RWMutex
	data Snapshot

	lmu       sync.Mutex
	listeners []listener
	nextID    int
}

type listener struct {
	id int
	fn func(Change)
}

// New creates a state holding a copy of snap.
func New(snap Snapshot) *State {
	return &State{data: snap.Clone()}
}

// NewDefault creates a state for a new, empty project.
func NewDefault() *State {
	return New(DefaultSnapshot())
}

// OnChange registers fn to run after every mutation. The returned function
// removes it.
func (s *State) OnChange(fn func(Change)) (remove func()) {
	s.lmu.Lock()
	defer s.lmu.Unlock()

	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listener{id: id, fn: fn})

	return func() {
		s.lmu.Lock()
		defer s.lmu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *State) notify(field string) {
	s.lmu.Lock()
	ls := make([]listener, len(s.listeners))
	copy(ls, s.listeners)
	s.lmu.Unlock()

	for _, l := range ls {
		l.fn(Change{Field: field})
	}
}

// Snapshot returns a deep copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

// Effects returns a deep copy of the effect list.
func (s *State) Effects() []effect.Effect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return effect.CloneList(s.data.Effects)
}

// EffectCount returns the number of top-level effects.
func (s *State) EffectCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data.Effects)
}

// EffectAt returns a copy of the effect at index i.
func (s *State) EffectAt(i int) (effect.Effect, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.data.Effects) {
		return effect.Effect{}, false
	}
	return s.data.Effects[i].Clone(), true
}

// IndexOf returns the top-level index of id, or -1.
func (s *State) IndexOf(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return effect.IndexOf(s.data.Effects, id)
}

// Find returns a copy of the effect with the given ID, searching
// sub-effects too.
func (s *State) Find(id string) (effect.Effect, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, _ := s.findLocked(id)
	if e == nil {
		return effect.Effect{}, false
	}
	return e.Clone(), true
}

// findLocked returns the effect with id and its top-level parent
// (nil for top-level effects).
func (s *State) findLocked(id string) (found *effect.Effect, parent *effect.Effect) {
	if id == "" {
		return nil, nil
	}
	for i := range s.data.Effects {
		top := &s.data.Effects[i]
		if top.ID == id {
			return top, nil
		}
		top.Walk(func(e *effect.Effect) bool {
			if e != top && e.ID == id {
				found = e
				return false
			}
			return true
		})
		if found != nil {
			return found, top
		}
	}
	return nil, nil
}

func (s *State) hasIDLocked(id string) bool {
	e, _ := s.findLocked(id)
	return e != nil
}

// Name returns the project name.
func (s *State) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Name
}

// Resolution returns the resolution key.
func (s *State) Resolution() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Resolution
}

// IsHorizontal reports the output orientation.
func (s *State) IsHorizontal() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.IsHorizontal
}

// NumFrames returns the frame count.
func (s *State) NumFrames() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.NumFrames
}

// Dimensions returns the output size for the current resolution and
// orientation.
func (s *State) Dimensions() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Dimensions()
}

// AddEffect appends e and returns its index.
func (s *State) AddEffect(e effect.Effect) (int, error) {
	s.mu.Lock()
	idx, err := s.insertLocked(len(s.data.Effects), e)
	s.mu.Unlock()
	if err != nil {
		return -1, err
	}
	s.notify(FieldEffects)
	return idx, nil
}

// InsertEffect inserts e at index i (0 <= i <= len).
func (s *State) InsertEffect(i int, e effect.Effect) error {
	s.mu.Lock()
	_, err := s.insertLocked(i, e)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify(FieldEffects)
	return nil
}

func (s *State) insertLocked(i int, e effect.Effect) (int, error) {
	if e.ID == "" {
		return -1, ErrMissingID
	}
	if s.hasIDLocked(e.ID) {
		return -1, fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
	}
	if i < 0 || i > len(s.data.Effects) {
		return -1, fmt.Errorf("%w: insert at %d", ErrIndexOutOfRange, i)
	}
	s.data.Effects = append(s.data.Effects, effect.Effect{})
	copy(s.data.Effects[i+1:], s.data.Effects[i:])
	s.data.Effects[i] = e.Clone()
	return i, nil
}

// RemoveEffect removes the top-level effect id, returning it and the index
// it occupied.
func (s *State) RemoveEffect(id string) (effect.Effect, int, error) {
	s.mu.Lock()
	idx := effect.IndexOf(s.data.Effects, id)
	if idx < 0 {
		s.mu.Unlock()
		return effect.Effect{}, -1, fmt.Errorf("%w: %s", ErrEffectNotFound, id)
	}
	removed := s.data.Effects[idx]
	s.data.Effects = append(s.data.Effects[:idx:idx], s.data.Effects[idx+1:]...)
	s.mu.Unlock()

	s.notify(FieldEffects)
	return removed, idx, nil
}

// MoveEffect moves the effect at from to position to, shifting the ones
// in between. IDs are untouched.
func (s *State) MoveEffect(from, to int) error {
	s.mu.Lock()
	n := len(s.data.Effects)
	if from < 0 || from >= n || to < 0 || to >= n {
		s.mu.Unlock()
		return fmt.Errorf("%w: move %d -> %d of %d", ErrIndexOutOfRange, from, to, n)
	}
	if from == to {
		s.mu.Unlock()
		return nil
	}
	moved := s.data.Effects[from]
	list := append(s.data.Effects[:from:from], s.data.Effects[from+1:]...)
	list = append(list, effect.Effect{})
	copy(list[to+1:], list[to:])
	list[to] = moved
	s.data.Effects = list
	s.mu.Unlock()

	s.notify(FieldEffects)
	return nil
}

// UpdateConfig replaces the config of the effect or sub-effect id and
// returns the previous config.
func (s *State) UpdateConfig(id string, cfg effect.Config) (effect.Config, error) {
	s.mu.Lock()
	e, _ := s.findLocked(id)
	if e == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrEffectNotFound, id)
	}
	old := e.Config
	e.Config = cfg.Clone()
	s.mu.Unlock()

	s.notify(FieldEffects)
	return old, nil
}

// SetVisible sets the visible flag of effect id and returns the previous
// value.
func (s *State) SetVisible(id string, visible bool) (bool, error) {
	s.mu.Lock()
	e, _ := s.findLocked(id)
	if e == nil {
		s.mu.Unlock()
		return false, fmt.Errorf("%w: %s", ErrEffectNotFound, id)
	}
	old := e.Visible
	e.Visible = visible
	s.mu.Unlock()

	if old != visible {
		s.notify(FieldEffects)
	}
	return old, nil
}

// AddSecondary attaches a secondary effect to parentID.
func (s *State) AddSecondary(parentID string, e effect.Effect) error {
	e.Type = effect.TypeSecondary
	return s.attach(parentID, e, -1)
}

// AddKeyframe attaches a keyframe effect to parentID.
func (s *State) AddKeyframe(parentID string, e effect.Effect) error {
	e.Type = effect.TypeKeyframe
	return s.attach(parentID, e, -1)
}

// InsertSubEffect attaches e to parentID at position i in the list for
// its type.
func (s *State) InsertSubEffect(parentID string, e effect.Effect, i int) error {
	return s.attach(parentID, e, i)
}

func (s *State) attach(parentID string, e effect.Effect, at int) error {
	if !e.Type.IsSub() {
		return ErrNotSubEffect
	}
	s.mu.Lock()
	if e.ID == "" {
		s.mu.Unlock()
		return ErrMissingID
	}
	if s.hasIDLocked(e.ID) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
	}
	idx := effect.IndexOf(s.data.Effects, parentID)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: parent %s", ErrEffectNotFound, parentID)
	}
	parent := &s.data.Effects[idx]
	list := &parent.SecondaryEffects
	if e.Type == effect.TypeKeyframe {
		list = &parent.KeyframeEffects
	}
	if at < 0 || at > len(*list) {
		at = len(*list)
	}
	*list = append(*list, effect.Effect{})
	copy((*list)[at+1:], (*list)[at:])
	(*list)[at] = e.Clone()
	s.mu.Unlock()

	s.notify(FieldEffects)
	return nil
}

// RemoveSubEffect detaches childID from parentID, returning it and its
// former position.
func (s *State) RemoveSubEffect(parentID, childID string) (effect.Effect, int, error) {
	s.mu.Lock()
	idx := effect.IndexOf(s.data.Effects, parentID)
	if idx < 0 {
		s.mu.Unlock()
		return effect.Effect{}, -1, fmt.Errorf("%w: parent %s", ErrEffectNotFound, parentID)
	}
	parent := &s.data.Effects[idx]
	for _, list := range []*[]effect.Effect{&parent.SecondaryEffects, &parent.KeyframeEffects} {
		if pos := effect.IndexOf(*list, childID); pos >= 0 {
			removed := (*list)[pos]
			*list = append((*list)[:pos:pos], (*list)[pos+1:]...)
			s.mu.Unlock()
			s.notify(FieldEffects)
			return removed, pos, nil
		}
	}
	s.mu.Unlock()
	return effect.Effect{}, -1, fmt.Errorf("%w: %s", ErrEffectNotFound, childID)
}

// ReplaceEffects swaps in a new effect list and returns the old one.
func (s *State) ReplaceEffects(effects []effect.Effect) []effect.Effect {
	s.mu.Lock()
	old := s.data.Effects
	s.data.Effects = effect.CloneList(effects)
	s.mu.Unlock()

	s.notify(FieldEffects)
	return old
}

// SetResolution switches to resolution key and rescales positional config.
// It returns the effects as they were before rescaling.
func (s *State) SetResolution(key string) ([]effect.Effect, error) {
	next, ok := LookupResolution(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownResolution, key)
	}

	s.mu.Lock()
	prior := s.data.Effects
	ow, oh := s.data.Dimensions()
	nw, nh := next.Dimensions(s.data.IsHorizontal)
	s.data.Resolution = next.Key
	s.data.Effects = Rescale(prior, ratio(nw, ow), ratio(nh, oh))
	s.mu.Unlock()

	s.notify(FieldResolution)
	return prior, nil
}

// SetHorizontal sets the orientation and rescales positional config.
// It returns the effects as they were before rescaling.
func (s *State) SetHorizontal(horizontal bool) []effect.Effect {
	s.mu.Lock()
	prior := s.data.Effects
	if s.data.IsHorizontal == horizontal {
		s.mu.Unlock()
		return effect.CloneList(prior)
	}
	ow, oh := s.data.Dimensions()
	s.data.IsHorizontal = horizontal
	nw, nh := s.data.Dimensions()
	s.data.Effects = Rescale(prior, ratio(nw, ow), ratio(nh, oh))
	s.mu.Unlock()

	s.notify(FieldOrientation)
	return prior
}

// ToggleOrientation flips the orientation. See SetHorizontal.
func (s *State) ToggleOrientation() []effect.Effect {
	return s.SetHorizontal(!s.IsHorizontal())
}

// RestoreLayout sets resolution, orientation and effects verbatim, with no
// rescaling. Undo uses it to put back exactly what was there.
func (s *State) RestoreLayout(resolution string, horizontal bool, effects []effect.Effect) {
	s.mu.Lock()
	s.data.Resolution = resolution
	s.data.IsHorizontal = horizontal
	s.data.Effects = effect.CloneList(effects)
	s.mu.Unlock()

	s.notify(FieldResolution)
}

// SetNumFrames sets the frame count and returns the previous one. The
// render range is clamped to the new count.
func (s *State) SetNumFrames(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidFrames, n)
	}
	s.mu.Lock()
	old := s.data.NumFrames
	s.data.NumFrames = n
	if s.data.RenderEnd > n || s.data.RenderEnd == old {
		s.data.RenderEnd = n
	}
	if s.data.RenderStart > s.data.RenderEnd {
		s.data.RenderStart = 0
	}
	s.mu.Unlock()

	s.notify(FieldFrames)
	return old, nil
}

// SetRenderRange sets the frames rendered by a full render.
func (s *State) SetRenderRange(start, end int) error {
	s.mu.Lock()
	if start < 0 || end > s.data.NumFrames || start > end {
		n := s.data.NumFrames
		s.mu.Unlock()
		return fmt.Errorf("%w: range %d-%d of %d", ErrIndexOutOfRange, start, end, n)
	}
	s.data.RenderStart, s.data.RenderEnd = start, end
	s.mu.Unlock()

	s.notify(FieldFrames)
	return nil
}

// SetColorScheme sets the color scheme and returns the previous ID and
// palette.
func (s *State) SetColorScheme(id string, data ColorSchemeData) (string, ColorSchemeData) {
	s.mu.Lock()
	oldID, oldData := s.data.ColorScheme, s.data.ColorSchemeData
	s.data.ColorScheme = id
	s.data.ColorSchemeData = data.Clone()
	s.mu.Unlock()

	s.notify(FieldColorScheme)
	return oldID, oldData
}

// SetName renames the project.
func (s *State) SetName(name string) {
	s.mu.Lock()
	s.data.Name = name
	s.mu.Unlock()
	s.notify(FieldName)
}

// SetOutputDirectory sets where renders are written.
func (s *State) SetOutputDirectory(dir string) {
	s.mu.Lock()
	s.data.OutputDirectory = dir
	s.mu.Unlock()
	s.notify(FieldOutput)
}

// Replace swaps in an entirely new project.
func (s *State) Replace(snap Snapshot) {
	snap.Normalize()
	s.mu.Lock()
	s.data = snap.Clone()
	s.mu.Unlock()
	s.notify(FieldAll)
}

func ratio(next, prev int) float64 {
	if prev == 0 {
		return 1
	}
	return float64(next) / float64(prev)
}
