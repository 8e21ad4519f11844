// Package menu builds the effect context menu and the effect picker.
// Neither touches the project: activating an entry emits the matching
// effectspanel:* event, and the effect management controller does the
// work.
package menu

import (
	"context"
	"errors"
	"fmt"

	"github.com/john-paul-ruf/nft-studio/internal/effect"
	"github.com/john-paul-ruf/nft-studio/internal/event"
	"github.com/john-paul-ruf/nft-studio/internal/event/events"
	"github.com/john-paul-ruf/nft-studio/internal/event/topic"
)

// Labels of the fixed entries.
const (
	LabelEdit         = "Edit"
	LabelHide         = "Hide"
	LabelShow         = "Show"
	LabelDelete       = "Delete"
	LabelAddSecondary = "Add Secondary Effect"
	LabelAddKeyframe  = "Add Keyframe Effect"
	LabelNoSecondary  = "No secondary effects available"
	LabelNoKeyframe   = "No keyframe effects available"
	LabelRemoveSub    = "Remove Sub-effect"
)

// ErrInactive is returned when activating a disabled entry or a submenu.
var ErrInactive = errors.New("menu: entry cannot be activated")

// Item is one menu entry. Leaf entries carry the event they emit;
// submenus carry Children instead.
type Item struct {
	Label    string
	Disabled bool
	Children []Item

	Topic   topic.Topic
	Payload any
}

// IsSubmenu reports whether the item opens a submenu.
func (i Item) IsSubmenu() bool {
	return len(i.Children) > 0
}

// Menu is a built context menu.
type Menu struct {
	EffectID string
	Items    []Item
}

// Find returns the item at path, one index per menu level.
func (m Menu) Find(path ...int) (Item, bool) {
	items := m.Items
	var it Item
	for n, i := range path {
		if i < 0 || i >= len(items) {
			return Item{}, false
		}
		it = items[i]
		if n < len(path)-1 {
			items = it.Children
		}
	}
	return it, len(path) > 0
}

// Lookup returns the top-level item with label.
func (m Menu) Lookup(label string) (Item, bool) {
	for _, it := range m.Items {
		if it.Label == label {
			return it, true
		}
	}
	return Item{}, false
}

type buildOptions struct {
	frame    int
	readOnly bool
}

// Option configures BuildContextMenu.
type Option func(*buildOptions)

// AtFrame sets the frame new keyframe effects fire on.
func AtFrame(frame int) Option {
	return func(o *buildOptions) { o.frame = frame }
}

// ReadOnly disables every entry that changes the project.
func ReadOnly() Option {
	return func(o *buildOptions) { o.readOnly = true }
}

// BuildContextMenu returns the context menu for the top-level effect e at
// index. The add submenus list the secondary and keyframe effects in
// available; an empty list yields one disabled placeholder entry.
func BuildContextMenu(e effect.Effect, index int, available effect.Catalog, opts ...Option) Menu {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	visibility := LabelHide
	if !e.Visible {
		visibility = LabelShow
	}

	items := []Item{
		{
			Label:   LabelEdit,
			Topic:   events.TopicPanelEffectEdit,
			Payload: events.EffectEdit{Index: index, Type: e.Type},
		},
		{
			Label:    visibility,
			Disabled: o.readOnly,
			Topic:    events.TopicPanelEffectToggleVisibility,
			Payload:  events.EffectToggleVisibility{EffectID: e.ID, Index: index},
		},
		{
			Label:    LabelDelete,
			Disabled: o.readOnly,
			Topic:    events.TopicPanelEffectDelete,
			Payload:  events.EffectDelete{EffectID: e.ID, Index: index},
		},
	}

	if !e.Type.IsSub() {
		items = append(items,
			submenu(LabelAddSecondary, LabelNoSecondary, available.Secondary, o.readOnly, func(info effect.Info) Item {
				return Item{
					Label:   info.Label(),
					Topic:   events.TopicPanelEffectAddSecondary,
					Payload: events.EffectAttach{ParentID: e.ID, Name: info.Key(), Type: effect.TypeSecondary},
				}
			}),
			submenu(LabelAddKeyframe, LabelNoKeyframe, available.Keyframe, o.readOnly, func(info effect.Info) Item {
				return Item{
					Label:   info.Label(),
					Topic:   events.TopicPanelEffectAddKeyframe,
					Payload: events.EffectAttach{ParentID: e.ID, Name: info.Key(), Type: effect.TypeKeyframe, Frame: o.frame},
				}
			}),
		)
	}

	if subs := removeSubItems(e, index); len(subs) > 0 {
		items = append(items, Item{Label: LabelRemoveSub, Disabled: o.readOnly, Children: subs})
	}

	return Menu{EffectID: e.ID, Items: items}
}

// removeSubItems lists one delete entry per secondary and keyframe effect
// attached to e.
func removeSubItems(e effect.Effect, index int) []Item {
	var items []Item
	del := func(label string, child effect.Effect) {
		items = append(items, Item{
			Label:   label,
			Topic:   events.TopicPanelEffectDelete,
			Payload: events.EffectDelete{EffectID: e.ID, Index: index, SubEffectID: child.ID},
		})
	}
	for _, sub := range e.SecondaryEffects {
		del(effect.DisplayName(sub), sub)
	}
	for _, kf := range e.KeyframeEffects {
		del(fmt.Sprintf("@%d %s", kf.Frame, effect.DisplayName(kf)), kf)
	}
	return items
}

func submenu(label, empty string, infos []effect.Info, disabled bool, leaf func(effect.Info) Item) Item {
	sub := Item{Label: label, Disabled: disabled}
	if len(infos) == 0 {
		sub.Children = []Item{{Label: empty, Disabled: true}}
		return sub
	}
	for _, info := range infos {
		sub.Children = append(sub.Children, leaf(info))
	}
	return sub
}

// Activate emits the event of a leaf item.
func Activate(ctx context.Context, em *event.Emitter, it Item) error {
	if it.Disabled || it.IsSubmenu() || it.Topic == "" {
		return fmt.Errorf("%w: %q", ErrInactive, it.Label)
	}
	return em.Emit(ctx, it.Topic, it.Payload)
}
