package events

import (
	"image"
	"time"

	"github.com/john-paul-ruf/nft-studio/internal/event/topic"
)

// Render topics.
const (
	TopicRenderStarted   topic.Topic = "render:started"
	TopicRenderCompleted topic.Topic = "render:completed"
	TopicRenderFailed    topic.Topic = "render:failed"

	TopicRenderLoopStarted topic.Topic = "renderloop:started"
	TopicRenderLoopStopped topic.Topic = "renderloop:stopped"
	TopicRenderLoopFailed  topic.Topic = "renderloop:failed"

	TopicCanvasZoomChanged topic.Topic = "canvas:zoom:changed"
)

// RenderStarted is emitted when a frame render begins.
type RenderStarted struct {
	Frame int
}

// RenderCompleted carries the decoded frame.
type RenderCompleted struct {
	Frame    int
	Image    image.Image
	Method   string
	Duration time.Duration
}

// RenderFailed carries an error frame to paint instead of the render.
type RenderFailed struct {
	Frame int
	Error string
	Image image.Image
}

// RenderLoopState reports render loop transitions.
type RenderLoopState struct {
	Running bool
	Error   string
}

// CanvasZoomChanged reports the new canvas zoom factor.
type CanvasZoomChanged struct {
	Zoom float64
}
