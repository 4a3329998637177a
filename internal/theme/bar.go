package theme

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/yabaduma/retheme/internal/models"
	"github.com/yabaduma/retheme/internal/palette"
)

// Bar and border color variable names.
const (
	VarBarColor        = "BAR_COLOR"
	VarItemBgColor     = "ITEM_BG_COLOR"
	VarAccentColor     = "ACCENT_COLOR"
	VarIconColor       = "ICON_COLOR"
	VarLabelColor      = "LABEL_COLOR"
	VarPopupBackground = "POPUP_BACKGROUND_COLOR"
	VarPopupBorder     = "POPUP_BORDER_COLOR"
	VarShadowColor     = "SHADOW_COLOR"
)

const shadowColor = "0x80000000"

// BarColor is one named ARGB variable.
type BarColor struct {
	Name  string
	Value string
}

// BarColors is the ordered export set read by the status bar and the border
// daemon.
type BarColors []BarColor

// DefaultBarColors is used when no palette has ever been generated, so the
// bar never starts unthemed.
func DefaultBarColors() BarColors {
	return BarColors{
		{VarBarColor, "0x00000000"},
		{VarItemBgColor, "0xf01e3a5f"},
		{VarAccentColor, "0xff5f87af"},
		{VarIconColor, "0xffDFE5F3"},
		{VarLabelColor, "0xffDFE5F3"},
		{VarPopupBackground, "0xff1e3a5f"},
		{VarPopupBorder, "0xff5f87af"},
		{VarShadowColor, shadowColor},
	}
}

// BarColorsFor maps a derived palette onto the bar variables, falling back to
// DefaultBarColors when d is nil.
func BarColorsFor(d *palette.Derived) BarColors {
	if d == nil {
		return DefaultBarColors()
	}
	return BarColors{
		{VarBarColor, d.Background.ARGB()},
		{VarItemBgColor, d.Background.ARGB()},
		{VarAccentColor, d.Accent.ARGB()},
		{VarIconColor, d.Icon.ARGB()},
		{VarLabelColor, d.Label.ARGB()},
		{VarPopupBackground, d.Background.ARGB()},
		{VarPopupBorder, d.Accent.ARGB()},
		{VarShadowColor, shadowColor},
	}
}

// Map returns the colors keyed by variable name.
func (b BarColors) Map() map[string]string {
	out := make(map[string]string, len(b))
	for _, c := range b {
		out[c.Name] = c.Value
	}
	return out
}

// WriteExports writes one `export NAME=value` line per color.
func (b BarColors) WriteExports(w io.Writer) error {
	for _, c := range b {
		if _, err := fmt.Fprintf(w, "export %s=%s\n", c.Name, c.Value); err != nil {
			return err
		}
	}
	return nil
}

// Env renders the colors in dotenv format.
func (b BarColors) Env() (string, error) {
	content, err := godotenv.Marshal(b.Map())
	if err != nil {
		return "", err
	}
	return content + "\n", nil
}

// BarWriter persists the bar/border color set to an env file sourced by the
// consumers at startup.
type BarWriter struct {
	EnvFile string
}

// NewBarWriter creates a BarWriter for envFile.
func NewBarWriter(envFile string) *BarWriter {
	return &BarWriter{EnvFile: envFile}
}

func (w *BarWriter) Name() string { return "bar" }

// Write never skips: without a palette it persists the defaults.
func (w *BarWriter) Write(ctx context.Context, d *palette.Derived) models.StepResult {
	started := time.Now()
	result := w.write(d)
	result.Kind = models.StepKindWriter
	result.Duration = time.Since(started)
	return result
}

func (w *BarWriter) write(d *palette.Derived) models.StepResult {
	colors := BarColorsFor(d)
	content, err := colors.Env()
	if err != nil {
		return models.Failed(w.Name(), err, "render env file: "+err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(w.EnvFile), 0o755); err != nil {
		return models.Failed(w.Name(), err, "create env dir: "+err.Error())
	}
	if err := writeFileAtomic(w.EnvFile, []byte(content), 0o644); err != nil {
		return models.Failed(w.Name(), err, "write env file: "+err.Error())
	}

	if d == nil {
		return models.Succeeded(w.Name(), "palette unavailable, wrote default colors to "+w.EnvFile)
	}
	return models.Succeeded(w.Name(), "colors written to "+w.EnvFile)
}
