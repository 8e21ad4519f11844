package render

import "sync"

// Zoom limits.
const (
	ZoomStep    = 1.2
	MinZoom     = 0.1
	MaxZoom     = 5.0
	DefaultZoom = 1.0
)

// Viewport holds the canvas zoom factor.
type Viewport struct {
	mu   sync.Mutex
	zoom float64
}

// NewViewport returns a viewport at 100%.
func NewViewport() *Viewport {
	return &Viewport{zoom: DefaultZoom}
}

// Zoom returns the current factor.
func (v *Viewport) Zoom() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.zoom
}

// ZoomIn multiplies the factor by ZoomStep.
func (v *Viewport) ZoomIn() float64 {
	return v.apply(func(z float64) float64 { return z * ZoomStep })
}

// ZoomOut divides the factor by ZoomStep.
func (v *Viewport) ZoomOut() float64 {
	return v.apply(func(z float64) float64 { return z / ZoomStep })
}

// Reset returns to 100%.
func (v *Viewport) Reset() float64 {
	return v.apply(func(float64) float64 { return DefaultZoom })
}

// SetZoom sets the factor, clamped to [MinZoom, MaxZoom].
func (v *Viewport) SetZoom(z float64) float64 {
	return v.apply(func(float64) float64 { return z })
}

func (v *Viewport) apply(fn func(float64) float64) float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.zoom = clampZoom(fn(v.zoom))
	return v.zoom
}

func clampZoom(z float64) float64 {
	switch {
	case z < MinZoom:
		return MinZoom
	case z > MaxZoom:
		return MaxZoom
	}
	return z
}
