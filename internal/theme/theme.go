// Package theme owns the light/dark preference of a page view.
package theme

import "strings"

// Theme is one of the two literal values that get persisted.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Parse accepts the persisted literal values, case-insensitively.
func Parse(s string) (Theme, bool) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, true
	case Dark:
		return Dark, true
	}
	return "", false
}

// FromPreference maps an OS dark-mode flag onto a theme.
func FromPreference(prefersDark bool) Theme {
	if prefersDark {
		return Dark
	}
	return Light
}

// Opposite flips light and dark.
func (t Theme) Opposite() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

func (t Theme) String() string { return string(t) }
