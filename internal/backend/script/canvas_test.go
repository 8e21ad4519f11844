package script

import (
	"errors"
	"image/color"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"#ff0000", color.NRGBA{R: 255, A: 255}, false},
		{"00ff00", color.NRGBA{G: 255, A: 255}, false},
		{"#0000ff80", color.NRGBA{B: 255, A: 128}, false},
		{"#fff", color.NRGBA{R: 255, G: 255, B: 255, A: 255}, false},
		{"#12345", color.NRGBA{}, true},
		{"#gggggg", color.NRGBA{}, true},
		{"", color.NRGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrBadColor) {
					t.Errorf("ParseColor(%q) err = %v, want ErrBadColor", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseColor(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestCanvasShapes(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}

	c := NewCanvas(20, 20)
	c.Fill(blue)
	c.Rect(15, 15, 10, 10, red)
	c.Circle(5, 5, 3, red)
	c.Pixel(-1, 0, red)

	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{0, 19, color.RGBA{B: 255, A: 255}},
		{19, 19, color.RGBA{R: 255, A: 255}},
		{15, 15, color.RGBA{R: 255, A: 255}},
		{14, 14, color.RGBA{B: 255, A: 255}},
		{5, 5, color.RGBA{R: 255, A: 255}},
		{9, 9, color.RGBA{B: 255, A: 255}},
	}
	for _, tt := range tests {
		if got := c.Image().RGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}
