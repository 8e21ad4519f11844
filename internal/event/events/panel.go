package events

import (
	"github.com/john-paul-ruf/nft-studio/internal/effect"
	"github.com/john-paul-ruf/nft-studio/internal/event/topic"
)

// Effects panel topics. These carry raw user intent; the effect
// management controller normalizes them onto the effect:* channels.
const (
	TopicPanelEffectAdd              topic.Topic = "effectspanel:effect:add"
	TopicPanelEffectDelete           topic.Topic = "effectspanel:effect:delete"
	TopicPanelEffectReorder          topic.Topic = "effectspanel:effect:reorder"
	TopicPanelEffectRightClick       topic.Topic = "effectspanel:effect:rightclick"
	TopicPanelEffectToggleVisibility topic.Topic = "effectspanel:effect:togglevisibility"
	TopicPanelEffectEdit             topic.Topic = "effectspanel:effect:edit"
	TopicPanelEffectAddSecondary     topic.Topic = "effectspanel:effect:addsecondary"
	TopicPanelEffectAddKeyframe      topic.Topic = "effectspanel:effect:addkeyframe"

	// TopicPanelAll matches every effects panel event.
	TopicPanelAll topic.Topic = "effectspanel:**"
)

// EffectAdd requests a new top-level effect.
type EffectAdd struct {
	// Name is the catalog name or registry key passed to the backend.
	Name string
	Type effect.Type
}

// EffectDelete requests removal of an effect. EffectID wins over Index
// when both are set. A non-empty SubEffectID removes that secondary or
// keyframe effect from EffectID instead of the effect itself.
type EffectDelete struct {
	EffectID    string
	Index       int
	SubEffectID string
}

// EffectReorder moves the effect at From to To.
type EffectReorder struct {
	From int
	To   int
}

// EffectRightClick opens the context menu for an effect.
type EffectRightClick struct {
	EffectID string
	Index    int
	X, Y     int
}

// EffectToggleVisibility flips an effect's visible flag.
type EffectToggleVisibility struct {
	EffectID string
	Index    int
}

// EffectEdit selects an effect (or sub-effect) for editing.
type EffectEdit struct {
	Index    int
	Type     effect.Type
	SubIndex int
}

// EffectAttach adds a secondary or keyframe effect to a parent.
type EffectAttach struct {
	ParentID string
	Name     string
	Type     effect.Type

	// Frame is used by keyframe effects only.
	Frame int
}
