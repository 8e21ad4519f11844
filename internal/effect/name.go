package effect

import (
	"strings"
	"unicode"
)

// FormatName turns a class or registry name into a label by inserting a
// space before each uppercase letter and trimming:
// "FuzzFlareEffect" becomes "Fuzz Flare Effect".
func FormatName(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		if unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// DisplayName returns the label for e: an explicit name that differs from
// the class name wins, otherwise the formatted class or registry key.
func DisplayName(e Effect) string {
	if e.Name != "" && e.Name != e.ClassName && e.Name != e.RegistryKey {
		return e.Name
	}
	for _, s := range []string{e.ClassName, e.Name, e.RegistryKey} {
		if s != "" {
			return FormatName(s)
		}
	}
	return "Unnamed Effect"
}
