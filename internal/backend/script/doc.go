// Package script implements backend.API with effects written in Lua.
//
// Each *.lua file in the effects directory defines one effect:
//
//	effect = {
//	    name = "PulseEffect",
//	    type = "primary",          -- primary | secondary | keyframe | finalImage
//	    description = "A pulsing disc",
//	}
//
//	function defaults()
//	    return { color = "#ff00aa", radius = 120, center = { x = 960, y = 540 } }
//	end
//
//	function render(canvas, frame, config)
//	    local r = config.radius * (1 + math.sin(frame / 10) * 0.2)
//	    canvas:circle(config.center.x, config.center.y, r, config.color)
//	end
//
// Scripts run in a sandboxed state: only the base, table, string and math
// libraries are available, and dofile, loadfile, load and loadstring are
// removed. Every call runs under a context with a timeout.
//
// The canvas exposes width(), height(), fill(color), rect(x, y, w, h,
// color), circle(cx, cy, r, color) and pixel(x, y, color). Colors are
// "#rrggbb" or "#rrggbbaa" strings.
//
// A frame is composed by rendering each visible primary effect in order,
// each followed by its secondary effects and the keyframe effects whose
// frame matches, then every final image effect. The result is a PNG.
package script
