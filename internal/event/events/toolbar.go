package events

import "github.com/john-paul-ruf/nft-studio/internal/event/topic"

// Toolbar topics.
const (
	TopicToolbarResolutionChange  topic.Topic = "toolbar:resolution:change"
	TopicToolbarOrientationToggle topic.Topic = "toolbar:orientation:toggle"
	TopicToolbarFramesChange      topic.Topic = "toolbar:frames:change"
	TopicToolbarFrameSelect       topic.Topic = "toolbar:frame:select"
	TopicToolbarRenderTrigger     topic.Topic = "toolbar:render:trigger"
	TopicToolbarRenderLoopToggle  topic.Topic = "toolbar:renderloop:toggle"
	TopicToolbarZoomIn            topic.Topic = "toolbar:zoom:in"
	TopicToolbarZoomOut           topic.Topic = "toolbar:zoom:out"
	TopicToolbarZoomReset         topic.Topic = "toolbar:zoom:reset"
	TopicToolbarThemeChange       topic.Topic = "toolbar:theme:change"
	TopicToolbarColorSchemeChange topic.Topic = "toolbar:colorscheme:change"

	// TopicToolbarZoomAll matches the three zoom topics.
	TopicToolbarZoomAll topic.Topic = "toolbar:zoom:*"
)

// ResolutionChange selects a resolution by key ("hd", "4k").
type ResolutionChange struct {
	Resolution string
}

// OrientationToggle swaps between horizontal and vertical output.
type OrientationToggle struct{}

// FramesChange sets the project frame count.
type FramesChange struct {
	Frames int
}

// FrameSelect moves the canvas to a frame.
type FrameSelect struct {
	Frame int
}

// RenderTrigger renders one frame.
type RenderTrigger struct {
	Frame int
}

// RenderLoopToggle starts or stops the continuous render loop.
type RenderLoopToggle struct{}

// Zoom is the payload of every toolbar:zoom:* event; the topic carries the
// direction.
type Zoom struct{}

// ThemeChange selects a UI theme by name.
type ThemeChange struct {
	Theme string
}

// ColorSchemeChange selects a color scheme by ID.
type ColorSchemeChange struct {
	SchemeID string
}
