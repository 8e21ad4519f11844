package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"strings"

	"github.com/john-paul-ruf/nft-studio/internal/backend"
)

var (
	// ErrNoFrameData is returned for a successful render with neither a
	// buffer nor a file URL.
	ErrNoFrameData = errors.New("render returned no frame data")

	// ErrDecode is returned when frame bytes are not a supported image.
	ErrDecode = errors.New("frame decode failed")
)

// maxErrorFrameWidth bounds error frames so an 8k project does not
// allocate a full-size panel.
const maxErrorFrameWidth = 640

// errorRed is the panel color of an error frame.
var errorRed = color.RGBA{R: 0xb0, G: 0x1c, B: 0x1c, A: 0xff}

// Decode turns a render result into an image. Buffers are decoded
// directly; file URLs are read through the backend first.
func Decode(ctx context.Context, api backend.API, res backend.RenderResult) (image.Image, error) {
	data := res.FrameBuffer
	if len(data) == 0 {
		if res.FileURL == "" {
			return nil, ErrNoFrameData
		}
		content, err := api.ReadFile(ctx, filePath(res.FileURL))
		if err := backend.Check("readFile", content.Result, err); err != nil {
			return nil, err
		}
		data = content.Content
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if res.BufferType != "" && !sameFormat(res.BufferType, format) {
		return nil, fmt.Errorf("%w: declared %s, got %s", ErrDecode, res.BufferType, format)
	}
	return img, nil
}

// filePath converts a file:// URL to a path. Other strings pass through.
func filePath(raw string) string {
	if !strings.HasPrefix(raw, "file://") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return strings.TrimPrefix(raw, "file://")
	}
	return u.Path
}

func sameFormat(declared, actual string) bool {
	declared = strings.ToLower(strings.TrimPrefix(declared, "image/"))
	if declared == "jpg" {
		declared = "jpeg"
	}
	return declared == actual
}

// ErrorFrame returns a red panel with the project's aspect ratio, used in
// place of a frame that failed to render or decode.
func ErrorFrame(width, height int) image.Image {
	if width <= 0 || height <= 0 {
		width, height = 16, 9
	}
	if width > maxErrorFrameWidth {
		height = height * maxErrorFrameWidth / width
		width = maxErrorFrameWidth
	}
	if height < 1 {
		height = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(errorRed), image.Point{}, draw.Src)

	// Dark band across the middle marks the panel as an error state.
	band := height / 6
	mid := height / 2
	draw.Draw(img, image.Rect(0, mid-band/2, width, mid+band/2+1), image.NewUniform(color.RGBA{R: 0x40, A: 0xff}), image.Point{}, draw.Src)
	return img
}
