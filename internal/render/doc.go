// Package render drives frame rendering for the canvas.
//
// Controller asks the backend for one frame at a time. While a render is
// in flight further triggers are dropped, not queued, which is what keeps
// the toolbar's render button in its "Rendering..." state. Frames come
// back either as an encoded buffer or as a file URL; both are decoded to
// an image.Image. A frame that cannot be decoded is replaced by an error
// frame so the canvas always has something to paint.
//
// Viewport holds the canvas zoom factor.
package render
