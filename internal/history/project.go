package history

import (
	"fmt"

	"github.com/john-paul-ruf/nft-studio/internal/effect"
	"github.com/john-paul-ruf/nft-studio/internal/project"
)

// layout is what resolution and orientation changes must restore on undo.
type layout struct {
	resolution string
	horizontal bool
	effects    []effect.Effect
}

func captureLayout(s *project.State) layout {
	snap := s.Snapshot()
	return layout{resolution: snap.Resolution, horizontal: snap.IsHorizontal, effects: snap.Effects}
}

func (l layout) restore(s *project.State) {
	s.RestoreLayout(l.resolution, l.horizontal, l.effects)
}

// ChangeResolutionCommand switches resolution, rescaling effect positions.
type ChangeResolutionCommand struct {
	Resolution string

	before layout
}

// NewChangeResolutionCommand creates a resolution change.
func NewChangeResolutionCommand(key string) *ChangeResolutionCommand {
	return &ChangeResolutionCommand{Resolution: key}
}

func (c *ChangeResolutionCommand) Execute(s *project.State) error {
	before := captureLayout(s)
	if _, err := s.SetResolution(c.Resolution); err != nil {
		return err
	}
	c.before = before
	return nil
}

func (c *ChangeResolutionCommand) Undo(s *project.State) error {
	c.before.restore(s)
	return nil
}

func (c *ChangeResolutionCommand) Description() string {
	if r, ok := project.LookupResolution(c.Resolution); ok {
		return "Change resolution to " + r.Name
	}
	return "Change resolution to " + c.Resolution
}

func (c *ChangeResolutionCommand) Kind() string { return KindChangeResolution }

// ToggleOrientationCommand swaps horizontal and vertical output.
type ToggleOrientationCommand struct {
	before layout
}

// NewToggleOrientationCommand creates an orientation toggle.
func NewToggleOrientationCommand() *ToggleOrientationCommand {
	return &ToggleOrientationCommand{}
}

func (c *ToggleOrientationCommand) Execute(s *project.State) error {
	c.before = captureLayout(s)
	s.SetHorizontal(!c.before.horizontal)
	return nil
}

func (c *ToggleOrientationCommand) Undo(s *project.State) error {
	c.before.restore(s)
	return nil
}

func (c *ToggleOrientationCommand) Description() string {
	return "Toggle orientation"
}

func (c *ToggleOrientationCommand) Kind() string { return KindToggleOrientation }

// ChangeFrameCountCommand sets the number of frames.
type ChangeFrameCountCommand struct {
	Frames int

	previous int
}

// NewChangeFrameCountCommand creates a frame count change.
func NewChangeFrameCountCommand(frames int) *ChangeFrameCountCommand {
	return &ChangeFrameCountCommand{Frames: frames}
}

func (c *ChangeFrameCountCommand) Execute(s *project.State) error {
	prev, err := s.SetNumFrames(c.Frames)
	if err != nil {
		return err
	}
	c.previous = prev
	return nil
}

func (c *ChangeFrameCountCommand) Undo(s *project.State) error {
	_, err := s.SetNumFrames(c.previous)
	return err
}

func (c *ChangeFrameCountCommand) Description() string {
	return fmt.Sprintf("Change frames to %d", c.Frames)
}

func (c *ChangeFrameCountCommand) Kind() string { return KindChangeFrameCount }

// ChangeColorSchemeCommand sets the project color scheme.
type ChangeColorSchemeCommand struct {
	SchemeID string
	Name     string
	Data     project.ColorSchemeData

	prevID   string
	prevData project.ColorSchemeData
}

// NewChangeColorSchemeCommand creates a color scheme change.
func NewChangeColorSchemeCommand(id, name string, data project.ColorSchemeData) *ChangeColorSchemeCommand {
	return &ChangeColorSchemeCommand{SchemeID: id, Name: name, Data: data.Clone()}
}

func (c *ChangeColorSchemeCommand) Execute(s *project.State) error {
	c.prevID, c.prevData = s.SetColorScheme(c.SchemeID, c.Data)
	return nil
}

func (c *ChangeColorSchemeCommand) Undo(s *project.State) error {
	s.SetColorScheme(c.prevID, c.prevData)
	return nil
}

func (c *ChangeColorSchemeCommand) Description() string {
	if c.Name != "" {
		return "Color scheme " + c.Name
	}
	return "Color scheme " + c.SchemeID
}

func (c *ChangeColorSchemeCommand) Kind() string { return KindChangeColorScheme }
