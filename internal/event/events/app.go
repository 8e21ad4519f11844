package events

import (
	"github.com/john-paul-ruf/nft-studio/internal/effect"
	"github.com/john-paul-ruf/nft-studio/internal/event/topic"
)

// Application-wide topics.
const (
	TopicThemeChanged       topic.Topic = "theme:changed"
	TopicColorSchemeChanged topic.Topic = "colorscheme:changed"
	TopicPreferencesChanged topic.Topic = "preferences:changed"
	TopicEffectsAvailable   topic.Topic = "effects:available"
	TopicAppError           topic.Topic = "app:error"
)

// ThemeChanged reports the active theme.
type ThemeChanged struct {
	Theme string
}

// ColorSchemeChanged reports the project's new color scheme.
type ColorSchemeChanged struct {
	SchemeID string
	Name     string
}

// PreferencesChanged is emitted after preferences are saved or reloaded.
type PreferencesChanged struct {
	Path string
}

// EffectsAvailable carries a freshly loaded effect catalog.
type EffectsAvailable struct {
	Catalog effect.Catalog
}

// AppError is a user-visible failure. Front-ends show it as an alert.
type AppError struct {
	Title   string
	Message string
	Source  string
}
