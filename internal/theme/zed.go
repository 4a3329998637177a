package theme

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"github.com/yabaduma/retheme/internal/models"
	"github.com/yabaduma/retheme/internal/palette"
)

const zedSchema = "https://zed.dev/schema/themes/v0.2.0.json"

// ZedThemeFamily is the theme file document.
type ZedThemeFamily struct {
	Schema string     `json:"$schema"`
	Name   string     `json:"name"`
	Author string     `json:"author"`
	Themes []ZedTheme `json:"themes"`
}

// ZedTheme is one theme variant.
type ZedTheme struct {
	Name       string   `json:"name"`
	Appearance string   `json:"appearance"`
	Style      ZedStyle `json:"style"`
}

// ZedPlayer colors a cursor and its selection.
type ZedPlayer struct {
	Cursor     string `json:"cursor"`
	Background string `json:"background"`
	Selection  string `json:"selection"`
}

// ZedSyntaxStyle styles one highlight capture.
type ZedSyntaxStyle struct {
	Color      string `json:"color"`
	FontStyle  string `json:"font_style,omitempty"`
	FontWeight int    `json:"font_weight,omitempty"`
}

// ZedStyle is the flat UI color map plus the players list and the nested
// syntax map.
type ZedStyle struct {
	Colors  ColorMap
	Players []ZedPlayer
	Syntax  map[string]ZedSyntaxStyle
}

func (s ZedStyle) MarshalJSON() ([]byte, error) {
	colors, err := s.Colors.MarshalJSON()
	if err != nil {
		return nil, err
	}
	players, err := json.Marshal(s.Players)
	if err != nil {
		return nil, err
	}
	syntax, err := json.Marshal(s.Syntax)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(colors[:len(colors)-1])
	if len(s.Colors) > 0 {
		buf.WriteByte(',')
	}
	buf.WriteString(`"players":`)
	buf.Write(players)
	buf.WriteString(`,"syntax":`)
	buf.Write(syntax)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ThemeSelector is the value of the settings "theme" key.
type ThemeSelector struct {
	Mode  string
	Light string
	Dark  string
}

// Fragment renders the selector as a single-line JSON object.
func (t ThemeSelector) Fragment() []byte {
	quote := func(s string) string {
		b, _ := json.Marshal(s)
		return string(b)
	}
	return []byte(fmt.Sprintf(`{"mode": %s, "light": %s, "dark": %s}`, quote(t.Mode), quote(t.Light), quote(t.Dark)))
}

// ZedThemeFor builds the theme document for a derived palette.
func ZedThemeFor(d *palette.Derived, name, author string) ZedThemeFamily {
	appearance := "dark"
	if !d.Background.IsDark() {
		appearance = "light"
	}

	bg := d.Background.HashHex()
	bgLight := d.BackgroundLightened.HashHex()
	sel := d.Selection.HashHex()
	accent := d.Accent.HashHex()
	icon := d.Icon.HashHex()
	label := d.Label.HashHex()
	muted := d.Muted.HashHex()
	fg := d.Foreground.HashHex()
	success := d.Success.HashHex()
	warning := d.Warning.HashHex()

	colors := ColorMap{
		{"background", bg},
		{"surface.background", bgLight},
		{"elevated_surface.background", bgLight},
		{"panel.background", bgLight},
		{"border", bgLight},
		{"border.variant", bgLight},
		{"border.focused", accent},
		{"border.selected", accent},
		{"element.background", bgLight},
		{"element.hover", sel},
		{"element.selected", sel},
		{"ghost_element.hover", sel},
		{"ghost_element.selected", sel},
		{"text", label},
		{"text.muted", muted},
		{"text.placeholder", muted},
		{"text.accent", accent},
		{"icon", icon},
		{"icon.muted", muted},
		{"icon.accent", accent},
		{"status_bar.background", bgLight},
		{"title_bar.background", bgLight},
		{"toolbar.background", bgLight},
		{"tab_bar.background", bgLight},
		{"tab.inactive_background", bgLight},
		{"tab.active_background", bg},
		{"scrollbar.thumb.background", d.Selection.HashHexAlpha(0x80)},
		{"scrollbar.thumb.hover_background", d.Selection.HashHexAlpha(0xcc)},
		{"editor.background", bgLight},
		{"editor.foreground", label},
		{"editor.gutter.background", bgLight},
		{"editor.line_number", muted},
		{"editor.active_line_number", label},
		{"editor.active_line.background", sel},
		{"terminal.background", bg},
		{"terminal.foreground", fg},
		{"created", success},
		{"modified", warning},
		{"deleted", accent},
		{"error", accent},
		{"warning", warning},
		{"info", icon},
		{"success", success},
		{"hint", muted},
	}

	syntax := map[string]ZedSyntaxStyle{
		"comment":     {Color: muted, FontStyle: "italic"},
		"keyword":     {Color: accent, FontWeight: 700},
		"function":    {Color: warning, FontWeight: 700},
		"variable":    {Color: label},
		"string":      {Color: success},
		"type":        {Color: icon, FontWeight: 700},
		"number":      {Color: accent},
		"boolean":     {Color: accent, FontWeight: 700},
		"constant":    {Color: accent, FontWeight: 700},
		"property":    {Color: label},
		"punctuation": {Color: muted},
		"operator":    {Color: label},
		"attribute":   {Color: icon, FontStyle: "italic"},
		"tag":         {Color: accent},
	}

	return ZedThemeFamily{
		Schema: zedSchema,
		Name:   name,
		Author: author,
		Themes: []ZedTheme{{
			Name:       name,
			Appearance: appearance,
			Style: ZedStyle{
				Colors:  colors,
				Players: []ZedPlayer{{Cursor: accent, Background: accent, Selection: sel}},
				Syntax:  syntax,
			},
		}},
	}
}

// PatchThemeSelector replaces the top-level "theme" value of a settings
// document with selector, leaving every other byte in place. Strict JSON is
// edited through sjson; documents with comments or trailing commas are
// spliced at the offsets found in their comment-free form. A missing key is
// inserted.
func PatchThemeSelector(doc []byte, selector ThemeSelector) ([]byte, error) {
	fragment := selector.Fragment()

	if len(bytes.TrimSpace(doc)) == 0 {
		return append([]byte("{\n    \"theme\": "), append(fragment, "\n}\n"...)...), nil
	}

	stripped := strictJSON(doc)
	if err := validateObject(stripped); err != nil {
		return nil, err
	}
	if err := checkUnique(stripped, "theme"); err != nil {
		return nil, err
	}

	if !hasComments(doc, stripped) {
		if gjson.GetBytes(doc, "theme").Exists() {
			return sjson.SetRawBytes(doc, "theme", fragment)
		}
		return appendTopLevel(doc, "theme", fragment, detectIndent(doc))
	}

	if out, ok := spliceValue(doc, stripped, "theme", fragment); ok {
		return out, nil
	}
	// Insert first so comments trailing the last member are not disturbed.
	return insertFirst(doc, stripped, "theme", fragment, detectIndent(doc))
}

// ZedOptions configures the Zed writer.
type ZedOptions struct {
	ThemesDir    string
	ThemeFile    string
	SettingsPath string
	ThemeName    string
	LightTheme   string
	Author       string
}

// ZedWriter writes a dedicated theme file and points the settings at it.
type ZedWriter struct {
	opts ZedOptions
}

// NewZedWriter creates a ZedWriter.
func NewZedWriter(opts ZedOptions) *ZedWriter {
	if opts.ThemeFile == "" {
		opts.ThemeFile = "pywal.json"
	}
	if opts.ThemeName == "" {
		opts.ThemeName = "Pywal"
	}
	if opts.LightTheme == "" {
		opts.LightTheme = "Ayu Light"
	}
	if opts.Author == "" {
		opts.Author = "retheme"
	}
	return &ZedWriter{opts: opts}
}

func (w *ZedWriter) Name() string { return "zed" }

// ThemePath is where the theme document is written.
func (w *ZedWriter) ThemePath() string {
	return filepath.Join(w.opts.ThemesDir, w.opts.ThemeFile)
}

func (w *ZedWriter) Write(ctx context.Context, d *palette.Derived) models.StepResult {
	started := time.Now()
	result := w.write(d)
	result.Kind = models.StepKindWriter
	result.Duration = time.Since(started)
	return result
}

func (w *ZedWriter) write(d *palette.Derived) models.StepResult {
	if d == nil {
		return models.Skipped(w.Name(), "palette unavailable")
	}
	if !dirExists(w.opts.ThemesDir) {
		return models.Skipped(w.Name(), "themes directory not found")
	}

	family := ZedThemeFor(d, w.opts.ThemeName, w.opts.Author)
	data, err := json.MarshalIndent(family, "", "  ")
	if err != nil {
		return models.Failed(w.Name(), err, "encode theme: "+err.Error())
	}
	if err := writeFileAtomic(w.ThemePath(), append(data, '\n'), 0o644); err != nil {
		return models.Failed(w.Name(), err, "write theme: "+err.Error())
	}

	patched, err := w.patchSettings()
	if err != nil {
		return models.Failed(w.Name(), err, "theme written, settings patch failed: "+err.Error())
	}
	if !patched {
		return models.Succeeded(w.Name(), "theme written; settings not found, selector unchanged")
	}
	return models.Succeeded(w.Name(), "theme written and selected")
}

func (w *ZedWriter) patchSettings() (bool, error) {
	if w.opts.SettingsPath == "" {
		return false, nil
	}
	data, err := os.ReadFile(w.opts.SettingsPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	patched, err := PatchThemeSelector(data, ThemeSelector{
		Mode:  "system",
		Light: w.opts.LightTheme,
		Dark:  w.opts.ThemeName,
	})
	if err != nil {
		return false, err
	}
	if bytes.Equal(patched, data) {
		return true, nil
	}
	if err := writeFileAtomic(w.opts.SettingsPath, patched, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
