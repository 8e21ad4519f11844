package project

import "strings"

// Resolution is a named output size. Width and Height are the horizontal
// dimensions.
type Resolution struct {
	Key    string
	Name   string
	Width  int
	Height int
}

// DefaultResolution is used for new projects.
const DefaultResolution = "hd"

var resolutions = []Resolution{
	{Key: "qvga", Name: "QVGA", Width: 320, Height: 240},
	{Key: "vga", Name: "VGA", Width: 640, Height: 480},
	{Key: "svga", Name: "SVGA", Width: 800, Height: 600},
	{Key: "xga", Name: "XGA", Width: 1024, Height: 768},
	{Key: "hd720", Name: "HD 720p", Width: 1280, Height: 720},
	{Key: "hd", Name: "Full HD", Width: 1920, Height: 1080},
	{Key: "wqhd", Name: "WQHD", Width: 2560, Height: 1440},
	{Key: "4k", Name: "4K UHD", Width: 3840, Height: 2160},
	{Key: "5k", Name: "5K", Width: 5120, Height: 2880},
	{Key: "8k", Name: "8K UHD", Width: 7680, Height: 4320},
	{Key: "square_small", Name: "Square 720", Width: 720, Height: 720},
	{Key: "square", Name: "Square 1080", Width: 1080, Height: 1080},
	{Key: "square_large", Name: "Square 2160", Width: 2160, Height: 2160},
}

// Resolutions returns every known resolution, smallest first.
func Resolutions() []Resolution {
	out := make([]Resolution, len(resolutions))
	copy(out, resolutions)
	return out
}

// LookupResolution finds a resolution by key, case-insensitively.
func LookupResolution(key string) (Resolution, bool) {
	for _, r := range resolutions {
		if strings.EqualFold(r.Key, key) {
			return r, true
		}
	}
	return Resolution{}, false
}

// Dimensions returns width and height for the given orientation.
// Vertical output swaps the two.
func (r Resolution) Dimensions(horizontal bool) (int, int) {
	if horizontal || r.Width == r.Height {
		return r.Width, r.Height
	}
	return r.Height, r.Width
}
