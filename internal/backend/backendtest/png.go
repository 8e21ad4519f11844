package backendtest

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

// PixelPNG returns a 1x1 white PNG.
func PixelPNG() []byte {
	return SolidPNG(1, 1, color.White)
}

// SolidPNG returns a w x h PNG filled with c.
func SolidPNG(w, h int, c color.Color) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
