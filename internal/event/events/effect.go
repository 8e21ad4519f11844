package events

import (
	"github.com/john-paul-ruf/nft-studio/internal/effect"
	"github.com/john-paul-ruf/nft-studio/internal/event/topic"
)

// Normalized effect topics.
const (
	TopicEffectAdd          topic.Topic = "effect:add"
	TopicEffectDelete       topic.Topic = "effect:delete"
	TopicEffectReorder      topic.Topic = "effect:reorder"
	TopicEffectEdit         topic.Topic = "effect:edit"
	TopicEffectConfigChange topic.Topic = "effect:config:change"
	TopicEffectAttach       topic.Topic = "effect:attach"
	TopicEffectToggle       topic.Topic = "effect:togglevisibility"
	TopicEffectSelected     topic.Topic = "effect:selected"

	TopicFrameSelected    topic.Topic = "frame:selected"
	TopicConfigPanelOpen  topic.Topic = "configpanel:open"
	TopicConfigPanelClose topic.Topic = "configpanel:close"
)

// EffectConfigChange carries an edited config for the effect resolved by
// EffectID. EffectIndex is resolved at emit time and is informational.
type EffectConfigChange struct {
	EffectID       string
	EffectIndex    int
	EffectType     effect.Type
	SubEffectIndex int
	Config         effect.Config
}

// EffectSelected reports a new selection.
type EffectSelected struct {
	EffectID    string
	EffectIndex int
	EffectType  effect.Type
	SubIndex    int
}

// FrameSelected reports the frame shown on the canvas.
type FrameSelected struct {
	Frame int
}

// ConfigPanelOpen asks the config panel to show the selected effect.
type ConfigPanelOpen struct {
	EffectID   string
	EffectType effect.Type
	SubIndex   int
}

// ConfigPanelClose hides the config panel.
type ConfigPanelClose struct{}

// EffectAdded reports a top-level effect added through the effect
// controller. It is emitted on effect:add.
type EffectAdded struct {
	EffectID string
	Index    int
	Name     string
	Type     effect.Type
}

// EffectAttached reports a secondary or keyframe effect attached to a
// parent. It is emitted on effect:attach.
type EffectAttached struct {
	ParentID string
	EffectID string
	Name     string
	Type     effect.Type
	Frame    int
}

// EffectVisibility reports a visibility change on
// effect:togglevisibility.
type EffectVisibility struct {
	EffectID string
	Visible  bool
}
