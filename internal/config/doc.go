// Package config manages user preferences.
//
// Preferences live in a TOML file, by default
// $XDG_CONFIG_HOME/nftstudio/preferences.toml. Values are resolved in
// layers, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← NFTSTUDIO_*
//	├─────────────────────────────┤
//	│  2. User Preferences        │  ← preferences.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │
//	└─────────────────────────────┘
//
// Environment overrides are never written back to the file. Saves are
// atomic (temp file + rename), and an fsnotify watcher reloads the file
// when another process edits it.
package config
