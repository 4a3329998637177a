package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yabaduma/retheme/internal/models"
)

// Styles contains lipgloss styles derived from theme tokens.
type Styles struct {
	Theme   Theme
	Title   lipgloss.Style
	Text    lipgloss.Style
	Muted   lipgloss.Style
	Accent  lipgloss.Style
	Border  lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
}

// DefaultStyles builds styles from the default theme.
func DefaultStyles() Styles {
	return BuildStyles(DefaultTheme)
}

// BuildStyles converts theme tokens into lipgloss styles.
func BuildStyles(theme Theme) Styles {
	tokens := theme.Tokens

	return Styles{
		Theme:   theme,
		Title:   lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Text)).Bold(true),
		Text:    lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Text)),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.TextMuted)),
		Accent:  lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Accent)),
		Border:  lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Border)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Success)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Warning)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Error)).Bold(true),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Info)),
	}
}

// ForStatus picks the style for a step outcome.
func (s Styles) ForStatus(status models.Status) lipgloss.Style {
	switch status {
	case models.StatusSucceeded:
		return s.Success
	case models.StatusSkipped:
		return s.Muted
	case models.StatusFailed:
		return s.Error
	default:
		return s.Warning
	}
}

// Swatch renders a block of the given background color.
func Swatch(hex string, width int) string {
	if width <= 0 {
		width = 2
	}
	return lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render(strings.Repeat(" ", width))
}
