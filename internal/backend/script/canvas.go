package script

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

const canvasTypeName = "nftstudio.canvas"

// Canvas is the drawing surface handed to render functions.
type Canvas struct {
	img *image.RGBA
}

// NewCanvas returns a transparent w x h canvas.
func NewCanvas(w, h int) *Canvas {
	return &Canvas{img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

// Image returns the canvas pixels.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Fill paints the whole canvas.
func (c *Canvas) Fill(col color.Color) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, draw.Over)
}

// Rect paints an axis-aligned rectangle, clipped to the canvas.
func (c *Canvas) Rect(x, y, w, h int, col color.Color) {
	r := image.Rect(x, y, x+w, y+h).Intersect(c.img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Over)
}

// Circle paints a filled disc, clipped to the canvas.
func (c *Canvas) Circle(cx, cy, radius float64, col color.Color) {
	if radius <= 0 {
		return
	}
	m := &disc{cx: cx, cy: cy, r: radius}
	r := m.Bounds().Intersect(c.img.Bounds())
	if r.Empty() {
		return
	}
	draw.DrawMask(c.img, r, image.NewUniform(col), image.Point{}, m, r.Min, draw.Over)
}

// disc is an alpha mask that is opaque inside a circle.
type disc struct {
	cx, cy, r float64
}

func (d *disc) ColorModel() color.Model { return color.AlphaModel }

func (d *disc) Bounds() image.Rectangle {
	return image.Rect(int(d.cx-d.r), int(d.cy-d.r), int(d.cx+d.r)+1, int(d.cy+d.r)+1)
}

func (d *disc) At(x, y int) color.Color {
	dx := float64(x) + 0.5 - d.cx
	dy := float64(y) + 0.5 - d.cy
	if dx*dx+dy*dy <= d.r*d.r {
		return color.Alpha{A: 255}
	}
	return color.Alpha{}
}

// Pixel paints a single pixel.
func (c *Canvas) Pixel(x, y int, col color.Color) {
	if !(image.Point{X: x, Y: y}).In(c.img.Bounds()) {
		return
	}
	draw.Draw(c.img, image.Rect(x, y, x+1, y+1), image.NewUniform(col), image.Point{}, draw.Over)
}

// ParseColor parses "#rgb", "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// registerCanvasType installs the canvas metatable on L.
func registerCanvasType(L *lua.LState) {
	mt := L.NewTypeMetatable(canvasTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"width":  canvasWidth,
		"height": canvasHeight,
		"fill":   canvasFill,
		"rect":   canvasRect,
		"circle": canvasCircle,
		"pixel":  canvasPixel,
	}))
}

// pushCanvas wraps c as userdata on L.
func pushCanvas(L *lua.LState, c *Canvas) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = c
	L.SetMetatable(ud, L.GetTypeMetatable(canvasTypeName))
	return ud
}

func checkCanvas(L *lua.LState) *Canvas {
	ud := L.CheckUserData(1)
	if c, ok := ud.Value.(*Canvas); ok {
		return c
	}
	L.ArgError(1, "canvas expected")
	return nil
}

func checkColor(L *lua.LState, n int) color.NRGBA {
	col, err := ParseColor(L.CheckString(n))
	if err != nil {
		L.ArgError(n, err.Error())
	}
	return col
}

func canvasWidth(L *lua.LState) int {
	L.Push(lua.LNumber(checkCanvas(L).img.Bounds().Dx()))
	return 1
}

func canvasHeight(L *lua.LState) int {
	L.Push(lua.LNumber(checkCanvas(L).img.Bounds().Dy()))
	return 1
}

func canvasFill(L *lua.LState) int {
	c := checkCanvas(L)
	c.Fill(checkColor(L, 2))
	return 0
}

func canvasRect(L *lua.LState) int {
	c := checkCanvas(L)
	c.Rect(L.CheckInt(2), L.CheckInt(3), L.CheckInt(4), L.CheckInt(5), checkColor(L, 6))
	return 0
}

func canvasCircle(L *lua.LState) int {
	c := checkCanvas(L)
	c.Circle(float64(L.CheckNumber(2)), float64(L.CheckNumber(3)), float64(L.CheckNumber(4)), checkColor(L, 5))
	return 0
}

func canvasPixel(L *lua.LState) int {
	c := checkCanvas(L)
	c.Pixel(L.CheckInt(2), L.CheckInt(3), checkColor(L, 4))
	return 0
}
