package config

import (
	"slices"

	"github.com/john-paul-ruf/nft-studio/internal/project"
)

// Backend kinds.
const (
	BackendScript = "script"
	BackendRemote = "remote"
)

// MaxRecent bounds the recent projects list.
const MaxRecent = 10

// Preferences is the persisted user preferences document.
type Preferences struct {
	Theme    string `toml:"theme" json:"theme" jsonschema:"description=UI theme name"`
	LogLevel string `toml:"logLevel" json:"logLevel" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`

	Project      ProjectDefaults `toml:"project" json:"project"`
	Backend      BackendConfig   `toml:"backend" json:"backend"`
	ColorSchemes SchemePrefs     `toml:"colorSchemes" json:"colorSchemes"`

	RecentProjects []string `toml:"recentProjects" json:"recentProjects,omitempty"`
}

// ProjectDefaults seed new projects.
type ProjectDefaults struct {
	Resolution  string `toml:"resolution" json:"resolution"`
	Frames      int    `toml:"frames" json:"frames" jsonschema:"minimum=1"`
	Horizontal  bool   `toml:"horizontal" json:"horizontal"`
	ColorScheme string `toml:"colorScheme" json:"colorScheme,omitempty"`
	LastDir     string `toml:"lastDir" json:"lastDir,omitempty"`
}

// BackendConfig selects and configures the render backend.
type BackendConfig struct {
	Kind       string `toml:"kind" json:"kind" jsonschema:"enum=script,enum=remote"`
	URL        string `toml:"url" json:"url,omitempty"`
	EffectsDir string `toml:"effectsDir" json:"effectsDir,omitempty"`
	OutputDir  string `toml:"outputDir" json:"outputDir,omitempty"`
}

// SchemePrefs holds color scheme preferences.
type SchemePrefs struct {
	Favorites []string `toml:"favorites" json:"favorites,omitempty"`
	UserFile  string   `toml:"userFile" json:"userFile,omitempty"`
}

// Default returns the built-in preferences.
func Default() Preferences {
	return Preferences{
		Theme:    "dark",
		LogLevel: "info",
		Project: ProjectDefaults{
			Resolution: project.DefaultResolution,
			Frames:     100,
			Horizontal: true,
		},
		Backend: BackendConfig{Kind: BackendScript},
	}
}

// Clone returns a copy with its own slices.
func (p Preferences) Clone() Preferences {
	p.RecentProjects = slices.Clone(p.RecentProjects)
	p.ColorSchemes.Favorites = slices.Clone(p.ColorSchemes.Favorites)
	return p
}

// Normalize replaces invalid values with defaults.
func (p *Preferences) Normalize() {
	def := Default()
	if p.Theme == "" {
		p.Theme = def.Theme
	}
	switch p.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		p.LogLevel = def.LogLevel
	}
	if _, ok := project.LookupResolution(p.Project.Resolution); !ok {
		p.Project.Resolution = def.Project.Resolution
	}
	if p.Project.Frames <= 0 {
		p.Project.Frames = def.Project.Frames
	}
	if p.Backend.Kind != BackendRemote {
		p.Backend.Kind = BackendScript
	}
	if len(p.RecentProjects) > MaxRecent {
		p.RecentProjects = p.RecentProjects[:MaxRecent]
	}
}

// Template returns a new project seeded from the preferences.
func (p Preferences) Template() project.Snapshot {
	snap := project.DefaultSnapshot()
	snap.Resolution = p.Project.Resolution
	snap.IsHorizontal = p.Project.Horizontal
	snap.NumFrames = p.Project.Frames
	snap.RenderStart, snap.RenderEnd = 0, p.Project.Frames
	snap.ColorScheme = p.Project.ColorScheme
	snap.OutputDirectory = p.Backend.OutputDir
	snap.Normalize()
	return snap
}

// IsFavorite reports whether the color scheme id is a favorite.
func (p Preferences) IsFavorite(id string) bool {
	return slices.Contains(p.ColorSchemes.Favorites, id)
}

func (p *Preferences) addRecent(path string) {
	recent := []string{path}
	for _, r := range p.RecentProjects {
		if r != path && len(recent) < MaxRecent {
			recent = append(recent, r)
		}
	}
	p.RecentProjects = recent
}

func (p *Preferences) toggleFavorite(id string) bool {
	if i := slices.Index(p.ColorSchemes.Favorites, id); i >= 0 {
		p.ColorSchemes.Favorites = slices.Delete(p.ColorSchemes.Favorites, i, i+1)
		return false
	}
	p.ColorSchemes.Favorites = append(p.ColorSchemes.Favorites, id)
	return true
}
