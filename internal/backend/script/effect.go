package script

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/john-paul-ruf/nft-studio/internal/effect"
)

// Script is one loaded effect script.
type Script struct {
	Path string
	Info effect.Info

	state *State
}

// LoadScript runs the file at path and reads its effect table.
func LoadScript(ctx context.Context, path string, opts ...StateOption) (*Script, error) {
	st := NewState(opts...)
	if err := st.DoFile(ctx, path); err != nil {
		st.Close()
		return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}

	info, err := readInfo(st.Global("effect"))
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	if !st.HasFunction("render") {
		st.Close()
		return nil, fmt.Errorf("load %s: render function not defined", filepath.Base(path))
	}

	return &Script{Path: path, Info: info, state: st}, nil
}

func readInfo(v any) (effect.Info, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return effect.Info{}, ErrNoEffectTable
	}

	str := func(key string) string {
		s, _ := m[key].(string)
		return s
	}

	info := effect.Info{
		Name:        str("name"),
		DisplayName: str("displayName"),
		RegistryKey: str("registryKey"),
		Description: str("description"),
		Type:        effect.TypePrimary,
	}
	if info.Name == "" {
		return effect.Info{}, fmt.Errorf("%w: name is required", ErrNoEffectTable)
	}
	if raw := str("type"); raw != "" {
		t, err := effect.ParseType(raw)
		if err != nil {
			return effect.Info{}, err
		}
		info.Type = t
	}
	return info, nil
}

// Matches reports whether name refers to this script by name or
// registry key, ignoring case.
func (s *Script) Matches(name string) bool {
	return strings.EqualFold(name, s.Info.Name) ||
		(s.Info.RegistryKey != "" && strings.EqualFold(name, s.Info.RegistryKey))
}

// Defaults calls the script's defaults function. Scripts without one
// have an empty default config.
func (s *Script) Defaults(ctx context.Context) (effect.Config, error) {
	if !s.state.HasFunction("defaults") {
		return effect.Config{}, nil
	}

	ret, err := s.state.Call(ctx, "defaults", nil)
	if err != nil {
		return nil, fmt.Errorf("%s defaults: %w", s.Info.Name, err)
	}
	if len(ret) == 0 {
		return effect.Config{}, nil
	}

	m, ok := toGo(ret[0]).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s defaults: expected a table, got %s", s.Info.Name, ret[0].Type())
	}
	return effect.Config(m), nil
}

// Render draws one frame of the effect onto c.
func (s *Script) Render(ctx context.Context, c *Canvas, frame int, cfg effect.Config) error {
	if cfg == nil {
		cfg = effect.Config{}
	}
	_, err := s.state.Call(ctx, "render", func(L *lua.LState) []lua.LValue {
		return []lua.LValue{pushCanvas(L, c), lua.LNumber(frame), toLua(L, cfg)}
	})
	if err != nil {
		return fmt.Errorf("%s render: %w", s.Info.Name, err)
	}
	return nil
}

// Close releases the script's state.
func (s *Script) Close() error {
	return s.state.Close()
}
