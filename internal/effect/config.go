package effect

// Config is an effect's free-form configuration, as produced by a backend's
// defaults and edited in the config panel.
type Config map[string]any

// Clone deep-copies nested maps and slices.
func (c Config) Clone() Config {
	if c == nil {
		return nil
	}
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return map[string]any(Config(x).Clone())
	case Config:
		return x.Clone()
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cloneValue(e)
		}
		return out
	case []float64:
		return append([]float64(nil), x...)
	case []string:
		return append([]string(nil), x...)
	default:
		return v
	}
}

// Merge returns a copy of c with every key of override applied on top.
// Nested maps merge recursively.
func (c Config) Merge(override Config) Config {
	out := c.Clone()
	if out == nil {
		out = make(Config, len(override))
	}
	for k, v := range override {
		if src, ok := asMap(v); ok {
			if dst, ok := asMap(out[k]); ok {
				out[k] = map[string]any(Config(dst).Merge(src))
				continue
			}
		}
		out[k] = cloneValue(v)
	}
	return out
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Config:
		return m, true
	}
	return nil, false
}

// Float returns the numeric value at key, accepting any Go number type.
func (c Config) Float(key string) (float64, bool) {
	return ToFloat(c[key])
}

// ToFloat converts a decoded number to float64.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	}
	return 0, false
}
