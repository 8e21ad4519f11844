package theme

import (
	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// Color converts a hex color to a tcell color. Unparsable input yields
// the terminal default.
func Color(hex string) tcell.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return tcell.ColorDefault
	}
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// Blend mixes two hex colors in Lab space; t=0 is a, t=1 is b.
func Blend(a, b string, t float64) string {
	ca, err := colorful.Hex(a)
	if err != nil {
		return b
	}
	cb, err := colorful.Hex(b)
	if err != nil {
		return a
	}
	return ca.BlendLab(cb, t).Clamped().Hex()
}

// Readable returns black or white, whichever reads better on bg.
func Readable(bg string) string {
	c, err := colorful.Hex(bg)
	if err != nil {
		return "#ffffff"
	}
	if l, _, _ := c.Lab(); l > 0.6 {
		return "#000000"
	}
	return "#ffffff"
}

// Base is the default text style.
func (t Theme) Base() tcell.Style {
	return tcell.StyleDefault.Foreground(Color(t.Palette.Text)).Background(Color(t.Palette.Background))
}

// Panel is the style of panel bodies.
func (t Theme) Panel() tcell.Style {
	return tcell.StyleDefault.Foreground(Color(t.Palette.Text)).Background(Color(t.Palette.Surface))
}

// Title is the style of panel titles.
func (t Theme) Title() tcell.Style {
	return t.Panel().Foreground(Color(t.Palette.Accent)).Bold(true)
}

// Selected highlights the selected row.
func (t Theme) Selected() tcell.Style {
	return tcell.StyleDefault.Foreground(Color(t.Palette.Text)).Background(Color(t.Palette.Selection)).Bold(true)
}

// Muted dims secondary text, such as hidden effects.
func (t Theme) Muted() tcell.Style {
	return t.Panel().Foreground(Color(t.Palette.Muted))
}

// Sub is the style of sub-effect rows: text halfway to muted.
func (t Theme) Sub() tcell.Style {
	return t.Panel().Foreground(Color(Blend(t.Palette.Text, t.Palette.Muted, 0.5)))
}

// Status is the status line style.
func (t Theme) Status() tcell.Style {
	return tcell.StyleDefault.Foreground(Color(Readable(t.Palette.Accent))).Background(Color(t.Palette.Accent))
}

// ErrorStyle highlights errors.
func (t Theme) ErrorStyle() tcell.Style {
	return tcell.StyleDefault.Foreground(Color(Readable(t.Palette.Error))).Background(Color(t.Palette.Error))
}

// Busy marks an in-flight render.
func (t Theme) Busy() tcell.Style {
	return t.Status().Background(Color(t.Palette.Warning)).Foreground(Color(Readable(t.Palette.Warning)))
}
