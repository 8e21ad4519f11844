package history

import (
	"fmt"

	"github.com/john-paul-ruf/nft-studio/internal/project"
)

// Command is an undoable project edit.
type Command interface {
	// Execute applies the edit. It is also used for redo, so it must be
	// repeatable after Undo.
	Execute(s *project.State) error

	// Undo reverses the last Execute.
	Undo(s *project.State) error

	// Description is shown in the history list.
	Description() string

	// Kind identifies the command type ("effect.add", "resolution.change").
	Kind() string
}

// Command kinds.
const (
	KindAddEffect         = "effect.add"
	KindDeleteEffect      = "effect.delete"
	KindReorderEffects    = "effect.reorder"
	KindUpdateConfig      = "effect.config"
	KindToggleVisibility  = "effect.visibility"
	KindAddSecondary      = "effect.secondary.add"
	KindAddKeyframe       = "effect.keyframe.add"
	KindDeleteSubEffect   = "effect.sub.delete"
	KindChangeResolution  = "resolution.change"
	KindToggleOrientation = "orientation.toggle"
	KindChangeFrameCount  = "frames.change"
	KindChangeColorScheme = "colorscheme.change"
	KindCompound          = "compound"
)

// CompoundCommand groups multiple commands as one undo unit.
type CompoundCommand struct {
	Name     string
	Commands []Command
}

// NewCompoundCommand creates a new compound command.
func NewCompoundCommand(name string, commands ...Command) *CompoundCommand {
	return &CompoundCommand{Name: name, Commands: commands}
}

// Execute runs all commands in order. If one fails, the ones before it are
// undone.
func (c *CompoundCommand) Execute(s *project.State) error {
	for i, cmd := range c.Commands {
		if err := cmd.Execute(s); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = c.Commands[j].Undo(s)
			}
			return fmt.Errorf("compound command '%s' step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Undo reverses all commands in reverse order.
func (c *CompoundCommand) Undo(s *project.State) error {
	for i := len(c.Commands) - 1; i >= 0; i-- {
		if err := c.Commands[i].Undo(s); err != nil {
			return fmt.Errorf("undo compound command '%s' step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Description returns the compound command's name.
func (c *CompoundCommand) Description() string {
	if c.Name != "" {
		return c.Name
	}
	if len(c.Commands) == 1 {
		return c.Commands[0].Description()
	}
	return fmt.Sprintf("%d operations", len(c.Commands))
}

// Kind implements Command.
func (c *CompoundCommand) Kind() string {
	return KindCompound
}

// Add adds a command to the compound command.
func (c *CompoundCommand) Add(cmd Command) {
	c.Commands = append(c.Commands, cmd)
}

// IsEmpty returns true if the compound command has no commands.
func (c *CompoundCommand) IsEmpty() bool {
	return len(c.Commands) == 0
}
