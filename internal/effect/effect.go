package effect

import (
	"fmt"

	"github.com/google/uuid"
)

// Type classifies an effect by where it sits in the render pipeline.
type Type string

const (
	TypePrimary    Type = "primary"
	TypeSecondary  Type = "secondary"
	TypeKeyframe   Type = "keyframe"
	TypeFinalImage Type = "finalImage"
)

// Types lists every effect type in pipeline order.
var Types = []Type{TypePrimary, TypeSecondary, TypeKeyframe, TypeFinalImage}

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	switch t {
	case TypePrimary, TypeSecondary, TypeKeyframe, TypeFinalImage:
		return true
	}
	return false
}

// IsSub reports whether effects of this type attach to a parent effect.
func (t Type) IsSub() bool {
	return t == TypeSecondary || t == TypeKeyframe
}

// ParseType accepts the canonical names plus the spellings backends use
// ("keyFrame", "final").
func ParseType(s string) (Type, error) {
	switch s {
	case "primary":
		return TypePrimary, nil
	case "secondary":
		return TypeSecondary, nil
	case "keyframe", "keyFrame":
		return TypeKeyframe, nil
	case "finalImage", "final":
		return TypeFinalImage, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// Effect is one node of a project's effect tree.
type Effect struct {
	ID          string `json:"id" yaml:"id" jsonschema:"required"`
	Name        string `json:"name" yaml:"name" jsonschema:"required"`
	ClassName   string `json:"className,omitempty" yaml:"className,omitempty"`
	RegistryKey string `json:"registryKey,omitempty" yaml:"registryKey,omitempty"`
	Type        Type   `json:"type" yaml:"type" jsonschema:"required,enum=primary,enum=secondary,enum=keyframe,enum=finalImage"`
	Config      Config `json:"config" yaml:"config"`
	Visible     bool   `json:"visible" yaml:"visible"`

	// Frame is the frame a keyframe effect fires on.
	Frame int `json:"frame,omitempty" yaml:"frame,omitempty" jsonschema:"minimum=0"`

	SecondaryEffects []Effect `json:"secondaryEffects,omitempty" yaml:"secondaryEffects,omitempty"`
	KeyframeEffects  []Effect `json:"keyframeEffects,omitempty" yaml:"keyframeEffects,omitempty"`
}

// New creates a visible effect with a fresh ID.
func New(name string, t Type, config Config) Effect {
	return Effect{
		ID:          NewID(),
		Name:        name,
		ClassName:   name,
		RegistryKey: name,
		Type:        t,
		Config:      config.Clone(),
		Visible:     true,
	}
}

// NewID returns a new effect ID.
func NewID() string {
	return uuid.NewString()
}

// Clone deep-copies the effect, keeping every ID.
func (e Effect) Clone() Effect {
	out := e
	out.Config = e.Config.Clone()
	out.SecondaryEffects = cloneList(e.SecondaryEffects)
	out.KeyframeEffects = cloneList(e.KeyframeEffects)
	return out
}

// CloneList deep-copies a slice of effects.
func CloneList(effects []Effect) []Effect {
	return cloneList(effects)
}

func cloneList(effects []Effect) []Effect {
	if effects == nil {
		return nil
	}
	out := make([]Effect, len(effects))
	for i := range effects {
		out[i] = effects[i].Clone()
	}
	return out
}

// Children returns the sub-effect list for t, or nil for non-sub types.
func (e *Effect) Children(t Type) []Effect {
	switch t {
	case TypeSecondary:
		return e.SecondaryEffects
	case TypeKeyframe:
		return e.KeyframeEffects
	}
	return nil
}

// Child returns the sub-effect of type t at index i.
func (e *Effect) Child(t Type, i int) (*Effect, bool) {
	children := e.Children(t)
	if i < 0 || i >= len(children) {
		return nil, false
	}
	return &children[i], true
}

// Attach appends child to the list matching its type.
func (e *Effect) Attach(child Effect) error {
	switch child.Type {
	case TypeSecondary:
		e.SecondaryEffects = append(e.SecondaryEffects, child)
	case TypeKeyframe:
		e.KeyframeEffects = append(e.KeyframeEffects, child)
	default:
		return fmt.Errorf("%w: cannot attach %s effect", ErrUnknownType, child.Type)
	}
	return nil
}

// Detach removes the sub-effect with the given ID and returns it.
func (e *Effect) Detach(id string) (Effect, bool) {
	for _, list := range []*[]Effect{&e.SecondaryEffects, &e.KeyframeEffects} {
		for i := range *list {
			if (*list)[i].ID == id {
				removed := (*list)[i]
				*list = append((*list)[:i:i], (*list)[i+1:]...)
				return removed, true
			}
		}
	}
	return Effect{}, false
}

// Walk visits e and every sub-effect depth first. Returning false stops
// the walk.
func (e *Effect) Walk(fn func(*Effect) bool) bool {
	if !fn(e) {
		return false
	}
	for i := range e.SecondaryEffects {
		if !e.SecondaryEffects[i].Walk(fn) {
			return false
		}
	}
	for i := range e.KeyframeEffects {
		if !e.KeyframeEffects[i].Walk(fn) {
			return false
		}
	}
	return true
}

// EnsureIDs assigns an ID to e and every sub-effect that lacks one.
// Projects written by hand or by older tools may omit them.
func (e *Effect) EnsureIDs() {
	e.Walk(func(x *Effect) bool {
		if x.ID == "" {
			x.ID = NewID()
		}
		return true
	})
}

// IndexOf returns the position of id in effects, or -1.
func IndexOf(effects []Effect, id string) int {
	if id == "" {
		return -1
	}
	for i := range effects {
		if effects[i].ID == id {
			return i
		}
	}
	return -1
}
