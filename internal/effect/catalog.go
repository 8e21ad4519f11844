package effect

import "strings"

// Info describes an effect a backend can render.
type Info struct {
	Name        string `json:"name" yaml:"name"`
	DisplayName string `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	RegistryKey string `json:"registryKey,omitempty" yaml:"registryKey,omitempty"`
	Type        Type   `json:"type" yaml:"type"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Label returns the name shown in menus and pickers.
func (i Info) Label() string {
	if i.DisplayName != "" {
		return i.DisplayName
	}
	if i.Name != "" {
		return FormatName(i.Name)
	}
	return FormatName(i.RegistryKey)
}

// Key returns the identifier passed back to the backend.
func (i Info) Key() string {
	if i.RegistryKey != "" {
		return i.RegistryKey
	}
	return i.Name
}

// Catalog groups available effects by type.
type Catalog struct {
	Primary   []Info `json:"primary" yaml:"primary"`
	Secondary []Info `json:"secondary" yaml:"secondary"`
	Keyframe  []Info `json:"keyFrame" yaml:"keyFrame"`
	Final     []Info `json:"finalImage" yaml:"finalImage"`
}

// ByType returns the catalog entries of type t.
func (c Catalog) ByType(t Type) []Info {
	switch t {
	case TypePrimary:
		return c.Primary
	case TypeSecondary:
		return c.Secondary
	case TypeKeyframe:
		return c.Keyframe
	case TypeFinalImage:
		return c.Final
	}
	return nil
}

// Add appends info to the bucket matching its type.
func (c *Catalog) Add(info Info) {
	switch info.Type {
	case TypePrimary:
		c.Primary = append(c.Primary, info)
	case TypeSecondary:
		c.Secondary = append(c.Secondary, info)
	case TypeKeyframe:
		c.Keyframe = append(c.Keyframe, info)
	case TypeFinalImage:
		c.Final = append(c.Final, info)
	}
}

// Find looks an effect up by name or registry key, case-insensitively.
func (c Catalog) Find(name string) (Info, bool) {
	for _, t := range Types {
		for _, info := range c.ByType(t) {
			if strings.EqualFold(info.Name, name) || strings.EqualFold(info.RegistryKey, name) {
				return info, true
			}
		}
	}
	return Info{}, false
}

// Len returns the total number of entries.
func (c Catalog) Len() int {
	return len(c.Primary) + len(c.Secondary) + len(c.Keyframe) + len(c.Final)
}
