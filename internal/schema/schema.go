// Package schema generates JSON Schemas for the documents NFT Studio reads
// and writes: project files, user preferences and user color schemes.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"

	"github.com/invopop/jsonschema"

	"github.com/john-paul-ruf/nft-studio/internal/colorscheme"
	"github.com/john-paul-ruf/nft-studio/internal/config"
	"github.com/john-paul-ruf/nft-studio/internal/project"
)

// Document kinds.
const (
	KindProject      = "project"
	KindPreferences  = "preferences"
	KindColorSchemes = "colorschemes"
)

// ErrUnknownKind is returned by ByKind for an unrecognized document kind.
var ErrUnknownKind = errors.New("unknown schema kind")

var builders = map[string]func() *jsonschema.Schema{
	KindProject:      Project,
	KindPreferences:  Preferences,
	KindColorSchemes: ColorSchemes,
}

// Kinds returns the supported document kinds, sorted.
func Kinds() []string {
	out := make([]string, 0, len(builders))
	for k := range builders {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ByKind builds the schema for the named document kind.
func ByKind(kind string) (*jsonschema.Schema, error) {
	build, ok := builders[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return build(), nil
}

// Project describes a project file. The effect tree is recursive, so
// effects are emitted as definitions rather than inlined.
func Project() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
	}
	s := reflector.ReflectFromType(reflect.TypeOf(project.Snapshot{}))
	s.Title = "NFT Studio Project"
	s.Description = "A saved NFT Studio project: effect tree, output resolution, frame count and palette."

	if prop, ok := s.Properties.Get("targetResolution"); ok {
		if res, ok := prop.(*jsonschema.Schema); ok {
			for _, r := range project.Resolutions() {
				res.Enum = append(res.Enum, r.Key)
			}
		}
	}
	return s
}

// Preferences describes the user preferences file.
func Preferences() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}
	s := reflector.ReflectFromType(reflect.TypeOf(config.Preferences{}))
	s.Title = "NFT Studio Preferences"
	s.Description = "User preferences. Environment variables prefixed NFTSTUDIO_ override these values at load time."
	return s
}

// ColorSchemes describes the user color scheme file.
func ColorSchemes() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}
	s := reflector.ReflectFromType(reflect.TypeOf(colorscheme.File{}))
	s.Title = "NFT Studio Color Schemes"
	s.Description = "User-defined color schemes. Built-in schemes cannot be overridden."
	return s
}

// Marshal renders s as indented JSON with a trailing newline.
func Marshal(s *jsonschema.Schema) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteFile writes s to path, replacing any existing file atomically.
func WriteFile(path string, s *jsonschema.Schema) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace schema: %w", err)
	}
	return nil
}
