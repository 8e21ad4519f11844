package project

import (
	"math"

	"github.com/john-paul-ruf/nft-studio/internal/effect"
)

// positionalKeys name config entries stored as [x, y] arrays.
var positionalKeys = map[string]bool{
	"position": true,
	"center":   true,
}

// Rescale scales every positional value in effects (sub-effects included)
// by sx horizontally and sy vertically, returning new effects. The input
// is not modified.
func Rescale(effects []effect.Effect, sx, sy float64) []effect.Effect {
	out := effect.CloneList(effects)
	if sx == 1 && sy == 1 {
		return out
	}
	for i := range out {
		out[i].Walk(func(e *effect.Effect) bool {
			if e.Config != nil {
				e.Config = effect.Config(rescaleMap(e.Config, sx, sy))
			}
			return true
		})
	}
	return out
}

func rescaleMap(m map[string]any, sx, sy float64) map[string]any {
	if x, okX := effect.ToFloat(m["x"]); okX {
		if y, okY := effect.ToFloat(m["y"]); okY {
			m["x"] = scaleLike(m["x"], x*sx)
			m["y"] = scaleLike(m["y"], y*sy)
		}
	}
	for k, v := range m {
		if k == "x" || k == "y" {
			continue
		}
		m[k] = rescaleValue(k, v, sx, sy)
	}
	return m
}

func rescaleValue(key string, v any, sx, sy float64) any {
	switch x := v.(type) {
	case map[string]any:
		return rescaleMap(x, sx, sy)
	case effect.Config:
		return effect.Config(rescaleMap(x, sx, sy))
	case []any:
		if positionalKeys[key] && len(x) == 2 {
			px, okX := effect.ToFloat(x[0])
			py, okY := effect.ToFloat(x[1])
			if okX && okY {
				return []any{scaleLike(x[0], px*sx), scaleLike(x[1], py*sy)}
			}
		}
		for i := range x {
			x[i] = rescaleValue("", x[i], sx, sy)
		}
		return x
	case []float64:
		if positionalKeys[key] && len(x) == 2 {
			return []float64{x[0] * sx, x[1] * sy}
		}
	}
	return v
}

// scaleLike keeps integer-typed values integral.
func scaleLike(orig any, v float64) any {
	switch orig.(type) {
	case int:
		return int(math.Round(v))
	case int64:
		return int64(math.Round(v))
	case int32:
		return int32(math.Round(v))
	}
	return v
}
