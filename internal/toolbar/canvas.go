package toolbar

import (
	"context"

	"github.com/john-paul-ruf/nft-studio/internal/event"
	"github.com/john-paul-ruf/nft-studio/internal/event/events"
	"github.com/john-paul-ruf/nft-studio/internal/event/topic"
)

// CanvasToolbar is the callback-style toolbar API. Every method only
// emits the matching toolbar:* event.
type CanvasToolbar struct {
	emitter *event.Emitter
}

// NewCanvasToolbar returns a toolbar emitting on bus.
func NewCanvasToolbar(bus event.Bus) *CanvasToolbar {
	return &CanvasToolbar{emitter: event.NewEmitter(bus, "toolbar", "CanvasToolbar")}
}

func (t *CanvasToolbar) ChangeResolution(ctx context.Context, key string) error {
	return t.emit(ctx, events.TopicToolbarResolutionChange, events.ResolutionChange{Resolution: key})
}

func (t *CanvasToolbar) ToggleOrientation(ctx context.Context) error {
	return t.emit(ctx, events.TopicToolbarOrientationToggle, events.OrientationToggle{})
}

func (t *CanvasToolbar) ChangeFrames(ctx context.Context, frames int) error {
	return t.emit(ctx, events.TopicToolbarFramesChange, events.FramesChange{Frames: frames})
}

func (t *CanvasToolbar) SelectFrame(ctx context.Context, frame int) error {
	return t.emit(ctx, events.TopicToolbarFrameSelect, events.FrameSelect{Frame: frame})
}

func (t *CanvasToolbar) Render(ctx context.Context, frame int) error {
	return t.emit(ctx, events.TopicToolbarRenderTrigger, events.RenderTrigger{Frame: frame})
}

func (t *CanvasToolbar) ToggleRenderLoop(ctx context.Context) error {
	return t.emit(ctx, events.TopicToolbarRenderLoopToggle, events.RenderLoopToggle{})
}

func (t *CanvasToolbar) ZoomIn(ctx context.Context) error {
	return t.emit(ctx, events.TopicToolbarZoomIn, events.Zoom{})
}

func (t *CanvasToolbar) ZoomOut(ctx context.Context) error {
	return t.emit(ctx, events.TopicToolbarZoomOut, events.Zoom{})
}

func (t *CanvasToolbar) ZoomReset(ctx context.Context) error {
	return t.emit(ctx, events.TopicToolbarZoomReset, events.Zoom{})
}

func (t *CanvasToolbar) ChangeTheme(ctx context.Context, name string) error {
	return t.emit(ctx, events.TopicToolbarThemeChange, events.ThemeChange{Theme: name})
}

func (t *CanvasToolbar) ChangeColorScheme(ctx context.Context, id string) error {
	return t.emit(ctx, events.TopicToolbarColorSchemeChange, events.ColorSchemeChange{SchemeID: id})
}

func (t *CanvasToolbar) emit(ctx context.Context, tp topic.Topic, payload any) error {
	return t.emitter.Emit(ctx, tp, payload)
}
