// Package colorscheme provides the palettes a project renders with:
// immutable built-in schemes plus user schemes stored in a YAML file.
package colorscheme

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/john-paul-ruf/nft-studio/internal/project"
)

// Categories of the built-in schemes.
const (
	CategoryNeon    = "Neon"
	CategoryNature  = "Nature"
	CategoryClassic = "Classic"
	CategoryCustom  = "Custom"
)

var (
	// ErrNotFound is returned for unknown scheme IDs.
	ErrNotFound = errors.New("color scheme not found")

	// ErrBuiltIn is returned when saving over or deleting a built-in
	// scheme.
	ErrBuiltIn = errors.New("built-in color schemes cannot be changed")

	// ErrInvalid is returned for schemes that fail validation.
	ErrInvalid = errors.New("invalid color scheme")
)

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// Scheme is a named palette.
type Scheme struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Category    string   `yaml:"category" json:"category"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Background  string   `yaml:"background" json:"background"`
	Lights      []string `yaml:"lights" json:"lights"`
	Neutrals    []string `yaml:"neutrals" json:"neutrals"`

	BuiltIn bool `yaml:"-" json:"builtIn"`
}

// Data returns the palette handed to the renderer.
func (s Scheme) Data() project.ColorSchemeData {
	return project.ColorSchemeData{
		Background: s.Background,
		Lights:     append([]string(nil), s.Lights...),
		Neutrals:   append([]string(nil), s.Neutrals...),
	}
}

// Validate checks the ID and every color.
func (s Scheme) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalid)
	}
	if s.Name == "" {
		return fmt.Errorf("%w %s: missing name", ErrInvalid, s.ID)
	}
	if !hexColor.MatchString(s.Background) {
		return fmt.Errorf("%w %s: background %q", ErrInvalid, s.ID, s.Background)
	}
	if len(s.Lights) == 0 {
		return fmt.Errorf("%w %s: no light colors", ErrInvalid, s.ID)
	}
	for _, c := range append(append([]string(nil), s.Lights...), s.Neutrals...) {
		if !hexColor.MatchString(c) {
			return fmt.Errorf("%w %s: color %q", ErrInvalid, s.ID, c)
		}
	}
	return nil
}

func (s Scheme) clone() Scheme {
	s.Lights = append([]string(nil), s.Lights...)
	s.Neutrals = append([]string(nil), s.Neutrals...)
	return s
}

// BuiltIns returns the built-in schemes.
func BuiltIns() []Scheme {
	schemes := []Scheme{
		{
			ID: "neon-cyberpunk", Name: "Neon Cyberpunk", Category: CategoryNeon,
			Description: "Electric neons on a deep night background",
			Background:  "#0a0014",
			Lights:      []string{"#ff00ff", "#00ffff", "#ff0080", "#8000ff", "#00ff80"},
			Neutrals:    []string{"#1a1a2e", "#16213e", "#e0e0ff"},
		},
		{
			ID: "synthwave", Name: "Synthwave", Category: CategoryNeon,
			Description: "Sunset pinks and purples",
			Background:  "#1a0933",
			Lights:      []string{"#ff6ec7", "#ffb86c", "#bd93f9", "#ff79c6"},
			Neutrals:    []string{"#2d1b4e", "#f8f8f2"},
		},
		{
			ID: "fire-ember", Name: "Fire Ember", Category: CategoryNature,
			Description: "Glowing reds and oranges",
			Background:  "#1a0500",
			Lights:      []string{"#ff4500", "#ff8c00", "#ffd700", "#dc143c"},
			Neutrals:    []string{"#2b1100", "#fff5e6"},
		},
		{
			ID: "ocean-depths", Name: "Ocean Depths", Category: CategoryNature,
			Description: "Blues and teals of the deep sea",
			Background:  "#001a33",
			Lights:      []string{"#00bfff", "#1e90ff", "#20b2aa", "#7fffd4"},
			Neutrals:    []string{"#002244", "#e0f7ff"},
		},
		{
			ID: "forest-glow", Name: "Forest Glow", Category: CategoryNature,
			Description: "Bioluminescent greens",
			Background:  "#0b1a0b",
			Lights:      []string{"#39ff14", "#7cfc00", "#adff2f", "#00fa9a"},
			Neutrals:    []string{"#1c2e1c", "#f0fff0"},
		},
		{
			ID: "monochrome", Name: "Monochrome", Category: CategoryClassic,
			Description: "Shades of grey",
			Background:  "#000000",
			Lights:      []string{"#ffffff", "#cccccc", "#999999"},
			Neutrals:    []string{"#333333", "#666666"},
		},
	}
	for i := range schemes {
		schemes[i].BuiltIn = true
	}
	return schemes
}
