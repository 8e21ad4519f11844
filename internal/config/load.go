package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "NFTSTUDIO_"

// envMapping maps environment variables to preference keys. Other
// NFTSTUDIO_SECTION_SOME_KEY variables map to section.someKey.
var envMapping = map[string]string{
	"NFTSTUDIO_THEME":       "theme",
	"NFTSTUDIO_LOG_LEVEL":   "logLevel",
	"NFTSTUDIO_BACKEND":     "backend.kind",
	"NFTSTUDIO_REMOTE_URL":  "backend.url",
	"NFTSTUDIO_EFFECTS_DIR": "backend.effectsDir",
	"NFTSTUDIO_OUTPUT_DIR":  "backend.outputDir",
	"NFTSTUDIO_RESOLUTION":  "project.resolution",
	"NFTSTUDIO_FRAMES":      "project.frames",
}

// DefaultPath returns the preferences file under the user config
// directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "nftstudio", "preferences.toml"), nil
}

// readFile decodes the preferences file over the defaults. A missing file
// yields the defaults.
func readFile(path string) (Preferences, error) {
	prefs := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return prefs, nil
		}
		return prefs, fmt.Errorf("reading preferences %s: %w", path, err)
	}
	if err := decode(path, data, &prefs); err != nil {
		return Default(), err
	}
	return prefs, nil
}

func decode(source string, data []byte, prefs *Preferences) error {
	if err := toml.Unmarshal(data, prefs); err != nil {
		pe := &ParseError{Path: source, Message: err.Error(), Err: err}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			pe.Line, pe.Column = de.Position()
		}
		return pe
	}
	return nil
}

// applyEnv overlays NFTSTUDIO_* variables onto prefs.
func applyEnv(prefs *Preferences) error {
	overrides := envOverrides(os.Environ())
	if len(overrides) == 0 {
		return nil
	}
	data, err := toml.Marshal(overrides)
	if err != nil {
		return fmt.Errorf("environment overrides: %w", err)
	}
	return decode("environment", data, prefs)
}

func envOverrides(environ []string) map[string]any {
	out := make(map[string]any)
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		path, mapped := envMapping[name]
		if !mapped {
			path = envToPath(name)
		}
		setByPath(out, path, parseValue(value))
	}
	return out
}

// envToPath converts NFTSTUDIO_BACKEND_EFFECTS_DIR to backend.effectsDir.
func envToPath(env string) string {
	parts := strings.Split(strings.TrimPrefix(env, EnvPrefix), "_")
	if len(parts) == 1 {
		return strings.ToLower(parts[0])
	}
	name := strings.ToLower(parts[1])
	for _, part := range parts[2:] {
		if part != "" {
			name += strings.ToUpper(part[:1]) + strings.ToLower(part[1:])
		}
	}
	return strings.ToLower(parts[0]) + "." + name
}

// parseValue types an environment value. Integers win over booleans so
// NFTSTUDIO_FRAMES=1 stays a number.
func parseValue(s string) any {
	if s == "" {
		return s
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	if strings.HasPrefix(s, "[") {
		var v []any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return v
		}
	}
	return s
}

func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

// writeFile saves prefs atomically.
func writeFile(path string, prefs Preferences) error {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(prefs); err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".preferences-*.toml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
