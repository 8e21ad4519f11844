package history

import (
	"fmt"

	"github.com/john-paul-ruf/nft-studio/internal/effect"
	"github.com/john-paul-ruf/nft-studio/internal/project"
)

// AddEffectCommand appends a top-level effect.
type AddEffectCommand struct {
	Effect effect.Effect
}

// NewAddEffectCommand creates an add command. e must carry an ID.
func NewAddEffectCommand(e effect.Effect) *AddEffectCommand {
	return &AddEffectCommand{Effect: e.Clone()}
}

func (c *AddEffectCommand) Execute(s *project.State) error {
	_, err := s.AddEffect(c.Effect)
	return err
}

func (c *AddEffectCommand) Undo(s *project.State) error {
	_, _, err := s.RemoveEffect(c.Effect.ID)
	return err
}

func (c *AddEffectCommand) Description() string {
	return "Add " + effect.DisplayName(c.Effect)
}

func (c *AddEffectCommand) Kind() string { return KindAddEffect }

// DeleteEffectCommand removes a top-level effect by ID.
type DeleteEffectCommand struct {
	EffectID string

	removed effect.Effect
	index   int
}

// NewDeleteEffectCommand creates a delete command.
func NewDeleteEffectCommand(id string) *DeleteEffectCommand {
	return &DeleteEffectCommand{EffectID: id}
}

func (c *DeleteEffectCommand) Execute(s *project.State) error {
	removed, idx, err := s.RemoveEffect(c.EffectID)
	if err != nil {
		return err
	}
	c.removed, c.index = removed, idx
	return nil
}

func (c *DeleteEffectCommand) Undo(s *project.State) error {
	return s.InsertEffect(c.index, c.removed)
}

func (c *DeleteEffectCommand) Description() string {
	if c.removed.ID != "" {
		return "Delete " + effect.DisplayName(c.removed)
	}
	return "Delete effect"
}

func (c *DeleteEffectCommand) Kind() string { return KindDeleteEffect }

// ReorderEffectsCommand moves an effect from one position to another.
type ReorderEffectsCommand struct {
	From int
	To   int
}

// NewReorderEffectsCommand creates a reorder command.
func NewReorderEffectsCommand(from, to int) *ReorderEffectsCommand {
	return &ReorderEffectsCommand{From: from, To: to}
}

func (c *ReorderEffectsCommand) Execute(s *project.State) error {
	return s.MoveEffect(c.From, c.To)
}

func (c *ReorderEffectsCommand) Undo(s *project.State) error {
	return s.MoveEffect(c.To, c.From)
}

func (c *ReorderEffectsCommand) Description() string {
	return fmt.Sprintf("Move effect %d to %d", c.From+1, c.To+1)
}

func (c *ReorderEffectsCommand) Kind() string { return KindReorderEffects }

// UpdateEffectConfigCommand replaces the config of an effect or sub-effect.
type UpdateEffectConfigCommand struct {
	EffectID string
	Config   effect.Config

	previous effect.Config
}

// NewUpdateEffectConfigCommand creates a config update command.
func NewUpdateEffectConfigCommand(id string, cfg effect.Config) *UpdateEffectConfigCommand {
	return &UpdateEffectConfigCommand{EffectID: id, Config: cfg.Clone()}
}

func (c *UpdateEffectConfigCommand) Execute(s *project.State) error {
	prev, err := s.UpdateConfig(c.EffectID, c.Config)
	if err != nil {
		return err
	}
	c.previous = prev
	return nil
}

func (c *UpdateEffectConfigCommand) Undo(s *project.State) error {
	_, err := s.UpdateConfig(c.EffectID, c.previous)
	return err
}

func (c *UpdateEffectConfigCommand) Description() string {
	return "Update effect config"
}

func (c *UpdateEffectConfigCommand) Kind() string { return KindUpdateConfig }

// ToggleVisibilityCommand flips an effect's visible flag.
type ToggleVisibilityCommand struct {
	EffectID string

	previous bool
}

// NewToggleVisibilityCommand creates a visibility toggle.
func NewToggleVisibilityCommand(id string) *ToggleVisibilityCommand {
	return &ToggleVisibilityCommand{EffectID: id}
}

func (c *ToggleVisibilityCommand) Execute(s *project.State) error {
	e, ok := s.Find(c.EffectID)
	if !ok {
		return fmt.Errorf("%w: %s", project.ErrEffectNotFound, c.EffectID)
	}
	prev, err := s.SetVisible(c.EffectID, !e.Visible)
	if err != nil {
		return err
	}
	c.previous = prev
	return nil
}

func (c *ToggleVisibilityCommand) Undo(s *project.State) error {
	_, err := s.SetVisible(c.EffectID, c.previous)
	return err
}

func (c *ToggleVisibilityCommand) Description() string {
	return "Toggle visibility"
}

func (c *ToggleVisibilityCommand) Kind() string { return KindToggleVisibility }

// AddSubEffectCommand attaches a secondary or keyframe effect to a parent.
type AddSubEffectCommand struct {
	ParentID string
	Effect   effect.Effect
}

// NewAddSecondaryEffectCommand attaches e as a secondary effect.
func NewAddSecondaryEffectCommand(parentID string, e effect.Effect) *AddSubEffectCommand {
	e = e.Clone()
	e.Type = effect.TypeSecondary
	return &AddSubEffectCommand{ParentID: parentID, Effect: e}
}

// NewAddKeyframeEffectCommand attaches e as a keyframe effect on frame.
func NewAddKeyframeEffectCommand(parentID string, e effect.Effect, frame int) *AddSubEffectCommand {
	e = e.Clone()
	e.Type = effect.TypeKeyframe
	e.Frame = frame
	return &AddSubEffectCommand{ParentID: parentID, Effect: e}
}

func (c *AddSubEffectCommand) Execute(s *project.State) error {
	return s.InsertSubEffect(c.ParentID, c.Effect, -1)
}

func (c *AddSubEffectCommand) Undo(s *project.State) error {
	_, _, err := s.RemoveSubEffect(c.ParentID, c.Effect.ID)
	return err
}

func (c *AddSubEffectCommand) Description() string {
	if c.Effect.Type == effect.TypeKeyframe {
		return fmt.Sprintf("Add keyframe %s at frame %d", effect.DisplayName(c.Effect), c.Effect.Frame)
	}
	return "Add secondary " + effect.DisplayName(c.Effect)
}

func (c *AddSubEffectCommand) Kind() string {
	if c.Effect.Type == effect.TypeKeyframe {
		return KindAddKeyframe
	}
	return KindAddSecondary
}

// DeleteSubEffectCommand detaches a secondary or keyframe effect.
type DeleteSubEffectCommand struct {
	ParentID string
	EffectID string

	removed effect.Effect
	index   int
}

// NewDeleteSubEffectCommand creates a sub-effect delete command.
func NewDeleteSubEffectCommand(parentID, id string) *DeleteSubEffectCommand {
	return &DeleteSubEffectCommand{ParentID: parentID, EffectID: id}
}

func (c *DeleteSubEffectCommand) Execute(s *project.State) error {
	removed, idx, err := s.RemoveSubEffect(c.ParentID, c.EffectID)
	if err != nil {
		return err
	}
	c.removed, c.index = removed, idx
	return nil
}

func (c *DeleteSubEffectCommand) Undo(s *project.State) error {
	return s.InsertSubEffect(c.ParentID, c.removed, c.index)
}

func (c *DeleteSubEffectCommand) Description() string {
	return "Delete sub-effect"
}

func (c *DeleteSubEffectCommand) Kind() string { return KindDeleteSubEffect }
