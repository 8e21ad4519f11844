package wizard

import (
	"errors"
	"fmt"

	"github.com/john-paul-ruf/nft-studio/internal/history"
)

// ErrNoParent is returned when secondary or keyframe effects have no
// primary effect to attach to.
var ErrNoParent = errors.New("wizard: sub-effects need a parent effect")

// Command turns the buckets into one undoable command. Primary and final
// effects are added to the project; secondary and keyframe effects attach
// to the last primary of the buckets, or to parentID when the buckets
// hold no primary.
func (b Buckets) Command(parentID string) (history.Command, error) {
	cmd := history.NewCompoundCommand(fmt.Sprintf("Add %d effects", b.Len()))

	for _, e := range b.Primary {
		cmd.Add(history.NewAddEffectCommand(e))
	}
	if n := len(b.Primary); n > 0 {
		parentID = b.Primary[n-1].ID
	}
	if parentID == "" && len(b.Secondary)+len(b.KeyFrame) > 0 {
		return nil, ErrNoParent
	}
	for _, e := range b.Secondary {
		cmd.Add(history.NewAddSecondaryEffectCommand(parentID, e))
	}
	for _, e := range b.KeyFrame {
		cmd.Add(history.NewAddKeyframeEffectCommand(parentID, e, e.Frame))
	}
	for _, e := range b.Final {
		cmd.Add(history.NewAddEffectCommand(e))
	}
	return cmd, nil
}
