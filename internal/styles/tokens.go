// Package styles holds the terminal color roles used by command output.
package styles

import (
	"sort"

	"github.com/yabaduma/retheme/internal/palette"
)

// ThemeTokens defines the semantic color roles for terminal output.
type ThemeTokens struct {
	Background string
	Panel      string
	Text       string
	TextMuted  string
	Border     string
	Accent     string
	Focus      string
	Success    string
	Warning    string
	Error      string
	Info       string
}

// Theme bundles tokens with a name.
type Theme struct {
	Name   string
	Tokens ThemeTokens
}

// Themes lists the built-in themes by name.
var Themes = map[string]Theme{
	"default":       DefaultTheme,
	"high-contrast": HighContrastTheme,
}

// Names returns the built-in theme names, sorted.
func Names() []string {
	names := make([]string, 0, len(Themes))
	for name := range Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns a built-in theme, falling back to DefaultTheme.
func Lookup(name string) Theme {
	if theme, ok := Themes[name]; ok {
		return theme
	}
	return DefaultTheme
}

// FromPalette builds a theme from the current wallpaper palette, so command
// output matches the rest of the desktop. A nil palette gives DefaultTheme.
func FromPalette(d *palette.Derived) Theme {
	if d == nil {
		return DefaultTheme
	}
	return Theme{
		Name: "palette",
		Tokens: ThemeTokens{
			Background: d.Background.HashHex(),
			Panel:      d.BackgroundLightened.HashHex(),
			Text:       d.Label.HashHex(),
			TextMuted:  d.Muted.HashHex(),
			Border:     d.Selection.HashHex(),
			Accent:     d.Accent.HashHex(),
			Focus:      d.Icon.HashHex(),
			Success:    d.Success.HashHex(),
			Warning:    d.Warning.HashHex(),
			Error:      d.Accent.HashHex(),
			Info:       d.Icon.HashHex(),
		},
	}
}
