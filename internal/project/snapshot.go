package project

import "github.com/john-paul-ruf/nft-studio/internal/effect"

// ColorSchemeData is the palette handed to the renderer.
type ColorSchemeData struct {
	Background string   `json:"background" yaml:"background"`
	Lights     []string `json:"lights" yaml:"lights"`
	Neutrals   []string `json:"neutrals" yaml:"neutrals"`
}

// Clone returns a copy with its own slices.
func (c ColorSchemeData) Clone() ColorSchemeData {
	c.Lights = append([]string(nil), c.Lights...)
	c.Neutrals = append([]string(nil), c.Neutrals...)
	return c
}

// Snapshot is a point-in-time copy of project state. It is also the
// persisted project document.
type Snapshot struct {
	Name            string          `json:"projectName" yaml:"projectName"`
	Effects         []effect.Effect `json:"effects" yaml:"effects" jsonschema:"required"`
	Resolution      string          `json:"targetResolution" yaml:"targetResolution" jsonschema:"required"`
	IsHorizontal    bool            `json:"isHorizontal" yaml:"isHorizontal"`
	NumFrames       int             `json:"numFrames" yaml:"numFrames" jsonschema:"required,minimum=1"`
	ColorScheme     string          `json:"colorScheme,omitempty" yaml:"colorScheme,omitempty"`
	ColorSchemeData ColorSchemeData `json:"colorSchemeData" yaml:"colorSchemeData"`
	OutputDirectory string          `json:"outputDirectory,omitempty" yaml:"outputDirectory,omitempty"`
	RenderStart     int             `json:"renderStartFrame" yaml:"renderStartFrame"`
	RenderEnd       int             `json:"renderEndFrame" yaml:"renderEndFrame"`
}

// DefaultSnapshot returns the state of a brand-new project.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Name:         "Untitled",
		Resolution:   DefaultResolution,
		IsHorizontal: true,
		NumFrames:    100,
		RenderEnd:    100,
	}
}

// Clone deep-copies the snapshot.
func (s Snapshot) Clone() Snapshot {
	s.Effects = effect.CloneList(s.Effects)
	s.ColorSchemeData = s.ColorSchemeData.Clone()
	return s
}

// Dimensions returns output width and height, honouring orientation.
// Unknown resolution keys fall back to the default.
func (s Snapshot) Dimensions() (int, int) {
	r, ok := LookupResolution(s.Resolution)
	if !ok {
		r, _ = LookupResolution(DefaultResolution)
	}
	return r.Dimensions(s.IsHorizontal)
}

// VisibleEffects returns the visible top-level effects in order.
func (s Snapshot) VisibleEffects() []effect.Effect {
	var out []effect.Effect
	for _, e := range s.Effects {
		if e.Visible {
			out = append(out, e)
		}
	}
	return out
}

// Normalize fills defaults and missing IDs in a decoded document.
func (s *Snapshot) Normalize() {
	def := DefaultSnapshot()
	if s.Name == "" {
		s.Name = def.Name
	}
	if _, ok := LookupResolution(s.Resolution); !ok {
		s.Resolution = def.Resolution
	}
	if s.NumFrames <= 0 {
		s.NumFrames = def.NumFrames
	}
	if s.RenderEnd <= 0 || s.RenderEnd > s.NumFrames {
		s.RenderEnd = s.NumFrames
	}
	if s.RenderStart < 0 || s.RenderStart > s.RenderEnd {
		s.RenderStart = 0
	}
	for i := range s.Effects {
		s.Effects[i].EnsureIDs()
	}
}
