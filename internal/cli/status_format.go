package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yabaduma/retheme/internal/models"
	"github.com/yabaduma/retheme/internal/palette"
	"github.com/yabaduma/retheme/internal/styles"
)

func formatStepStatus(status models.Status) string {
	label, style := statusLabelForStep(status)
	return colorize(fmt.Sprintf("%-4s", label), style)
}

func statusLabelForStep(status models.Status) (string, lipgloss.Style) {
	s := outputStyles()
	switch status {
	case models.StatusSucceeded:
		return "OK", s.Success
	case models.StatusSkipped:
		return "SKIP", s.Muted
	case models.StatusFailed:
		return "ERR", s.Error
	default:
		return "WARN", s.Warning
	}
}

func formatStepLine(result models.StepResult) string {
	line := formatStepStatus(result.Status) + " " + fmt.Sprintf("%-10s", result.Name)
	if result.Reason != "" {
		line += " " + result.Reason
	}
	return strings.TrimRight(line, " ")
}

// activeStyles holds the output styles for the current invocation. It is
// reset by initApp and filled from the first palette the command derives.
var activeStyles *styles.Styles

// useOutputPalette fixes the output styles for the rest of the invocation.
func useOutputPalette(d *palette.Derived) {
	s := stylesFor(d)
	activeStyles = &s
}

func stylesFor(d *palette.Derived) styles.Styles {
	if themeName != "" && themeName != "palette" {
		return styles.BuildStyles(styles.Lookup(themeName))
	}
	if d == nil {
		return styles.DefaultStyles()
	}
	return styles.BuildStyles(styles.FromPalette(d))
}

// outputStyles returns the styles for this invocation. The default
// "palette" theme follows the wallpaper palette; commands that have not
// derived one yet read it once here.
func outputStyles() styles.Styles {
	if activeStyles == nil {
		useOutputPalette(currentPalette())
	}
	return *activeStyles
}

func colorize(text string, style lipgloss.Style) string {
	if !colorEnabled() {
		return text
	}
	return style.Render(text)
}
