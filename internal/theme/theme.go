// Package theme defines the named UI themes and turns them into tcell
// styles.
package theme

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
)

// Built-in theme names.
const (
	Dark      = "dark"
	Light     = "light"
	Cyberpunk = "cyberpunk"
)

var (
	// ErrUnknown is returned for theme names with no definition.
	ErrUnknown = errors.New("unknown theme")

	// ErrInvalid is returned for themes with unparsable colors.
	ErrInvalid = errors.New("invalid theme")
)

// Palette holds a theme's colors as hex strings.
type Palette struct {
	Background string
	Surface    string
	Text       string
	Muted      string
	Accent     string
	Selection  string
	Error      string
	Success    string
	Warning    string
}

func (p Palette) colors() map[string]string {
	return map[string]string{
		"background": p.Background,
		"surface":    p.Surface,
		"text":       p.Text,
		"muted":      p.Muted,
		"accent":     p.Accent,
		"selection":  p.Selection,
		"error":      p.Error,
		"success":    p.Success,
		"warning":    p.Warning,
	}
}

// Theme is a named palette.
type Theme struct {
	Name        string
	DisplayName string
	Dark        bool
	Palette     Palette
}

// Validate checks that every palette color parses.
func (t Theme) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalid)
	}
	for field, hex := range t.Palette.colors() {
		if _, err := colorful.Hex(hex); err != nil {
			return fmt.Errorf("%w %s: %s %q", ErrInvalid, t.Name, field, hex)
		}
	}
	return nil
}

// BuiltIns returns the built-in themes.
func BuiltIns() []Theme {
	return []Theme{
		{
			Name: Dark, DisplayName: "Dark", Dark: true,
			Palette: Palette{
				Background: "#121212", Surface: "#1e1e1e", Text: "#e0e0e0", Muted: "#8a8a8a",
				Accent: "#90caf9", Selection: "#264f78", Error: "#f44336", Success: "#66bb6a", Warning: "#ffa726",
			},
		},
		{
			Name: Light, DisplayName: "Light",
			Palette: Palette{
				Background: "#fafafa", Surface: "#ffffff", Text: "#212121", Muted: "#757575",
				Accent: "#1976d2", Selection: "#bbdefb", Error: "#d32f2f", Success: "#388e3c", Warning: "#f57c00",
			},
		},
		{
			Name: Cyberpunk, DisplayName: "Cyberpunk", Dark: true,
			Palette: Palette{
				Background: "#0a0014", Surface: "#1a0b2e", Text: "#f0e6ff", Muted: "#8c7aa9",
				Accent: "#ff00ff", Selection: "#3d1a6e", Error: "#ff3864", Success: "#00ff9f", Warning: "#f9f002",
			},
		},
	}
}

// Registry holds the available themes.
type Registry struct {
	mu     sync.RWMutex
	themes map[string]Theme
}

// NewRegistry returns a registry with the built-in themes.
func NewRegistry() *Registry {
	r := &Registry{themes: make(map[string]Theme)}
	for _, t := range BuiltIns() {
		r.themes[t.Name] = t
	}
	return r
}

// Register adds or replaces a theme.
func (r *Registry) Register(t Theme) error {
	if err := t.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.themes[t.Name] = t
	r.mu.Unlock()
	return nil
}

// Has reports whether a theme is defined.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.themes[name]
	return ok
}

// Get returns the named theme.
func (r *Registry) Get(name string) (Theme, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.themes[name]
	if !ok {
		return Theme{}, fmt.Errorf("%w: %s", ErrUnknown, name)
	}
	return t, nil
}

// Names returns every theme name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.themes))
	for n := range r.themes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
