package theme

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/yabaduma/retheme/internal/models"
	"github.com/yabaduma/retheme/internal/palette"
)

// Keys owned in the VS Code settings document.
const (
	KeyColorCustomizations      = "workbench.colorCustomizations"
	KeyTokenColorCustomizations = "editor.tokenColorCustomizations"
)

// ColorEntry is one UI role in a color map.
type ColorEntry struct {
	Key   string
	Value string
}

// ColorMap is a JSON object of UI roles that keeps its insertion order.
type ColorMap []ColorEntry

// Map returns the entries keyed by role.
func (m ColorMap) Map() map[string]string {
	out := make(map[string]string, len(m))
	for _, e := range m {
		out[e.Key] = e.Value
	}
	return out
}

// MarshalJSON encodes the entries in order.
func (m ColorMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// TokenStyle colors one token category.
type TokenStyle struct {
	Foreground string `json:"foreground"`
	FontStyle  string `json:"fontStyle,omitempty"`
}

// Scopes is a TextMate scope selector list. A single scope encodes as a
// plain string.
type Scopes []string

func (s Scopes) MarshalJSON() ([]byte, error) {
	if len(s) == 1 {
		return json.Marshal(s[0])
	}
	return json.Marshal([]string(s))
}

func (s *Scopes) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = Scopes{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*s = list
	return nil
}

// TextMateRule styles a set of scopes.
type TextMateRule struct {
	Scope    Scopes     `json:"scope"`
	Settings TokenStyle `json:"settings"`
}

// TokenColors is the value of editor.tokenColorCustomizations.
type TokenColors struct {
	Comments      TokenStyle     `json:"comments"`
	Keywords      TokenStyle     `json:"keywords"`
	Functions     TokenStyle     `json:"functions"`
	Variables     TokenStyle     `json:"variables"`
	Strings       TokenStyle     `json:"strings"`
	Types         TokenStyle     `json:"types"`
	Numbers       TokenStyle     `json:"numbers"`
	TextMateRules []TextMateRule `json:"textMateRules"`
}

// ColorCustomizations reads the owned UI color map.
func (d *SettingsDocument) ColorCustomizations() (map[string]string, bool, error) {
	var out map[string]string
	ok, err := d.getValue(KeyColorCustomizations, &out)
	return out, ok, err
}

// SetColorCustomizations replaces the owned UI color map wholesale.
func (d *SettingsDocument) SetColorCustomizations(colors ColorMap) error {
	return d.setValue(KeyColorCustomizations, colors)
}

// TokenColorCustomizations reads the owned token color map.
func (d *SettingsDocument) TokenColorCustomizations() (*TokenColors, bool, error) {
	var out TokenColors
	ok, err := d.getValue(KeyTokenColorCustomizations, &out)
	if !ok || err != nil {
		return nil, ok, err
	}
	return &out, true, nil
}

// SetTokenColorCustomizations replaces the owned token color map wholesale.
func (d *SettingsDocument) SetTokenColorCustomizations(tokens *TokenColors) error {
	return d.setValue(KeyTokenColorCustomizations, tokens)
}

// VSCodeColors maps the derived palette onto workbench color roles.
func VSCodeColors(d *palette.Derived) ColorMap {
	bg := d.Background.HashHex()
	bgLight := d.BackgroundLightened.HashHex()
	sel := d.Selection.HashHex()
	accent := d.Accent.HashHex()
	icon := d.Icon.HashHex()
	label := d.Label.HashHex()
	muted := d.Muted.HashHex()
	added := d.Success.HashHex()
	modified := d.Warning.HashHex()

	return ColorMap{
		{"editor.background", bgLight},
		{"editor.foreground", label},
		{"activityBar.background", bgLight},
		{"activityBar.foreground", icon},
		{"activityBar.inactiveForeground", muted},
		{"activityBar.border", bgLight},
		{"activityBarBadge.background", accent},
		{"activityBarBadge.foreground", bg},
		{"sideBar.background", bgLight},
		{"sideBar.foreground", label},
		{"sideBar.border", bgLight},
		{"sideBarSectionHeader.background", bgLight},
		{"sideBarSectionHeader.foreground", label},
		{"sideBarSectionHeader.border", bgLight},
		{"statusBar.background", bgLight},
		{"statusBar.foreground", label},
		{"statusBar.border", bgLight},
		{"titleBar.activeBackground", bgLight},
		{"titleBar.activeForeground", label},
		{"titleBar.inactiveBackground", bgLight},
		{"titleBar.inactiveForeground", muted},
		{"titleBar.border", bgLight},
		{"panel.background", bgLight},
		{"panel.border", bgLight},
		{"panelTitle.activeBorder", accent},
		{"panelTitle.activeForeground", label},
		{"panelTitle.inactiveForeground", muted},
		{"editorCursor.foreground", accent},
		{"editorLineNumber.foreground", muted},
		{"editorLineNumber.activeForeground", label},
		{"editorGutter.background", bgLight},
		{"editorGutter.addedBackground", added},
		{"editorGutter.modifiedBackground", modified},
		{"editorGutter.deletedBackground", accent},
		{"editor.lineHighlightBackground", bgLight},
		{"editor.lineHighlightBorder", bgLight},
		{"editor.selectionBackground", sel},
		{"editor.inactiveSelectionBackground", bgLight},
		{"editorHoverWidget.background", bgLight},
		{"editorHoverWidget.border", bgLight},
		{"editorSuggestWidget.background", bgLight},
		{"editorSuggestWidget.border", bgLight},
		{"editorSuggestWidget.selectedBackground", sel},
		{"scrollbarSlider.background", d.Selection.HashHexAlpha(0x80)},
		{"scrollbarSlider.hoverBackground", d.Selection.HashHexAlpha(0xcc)},
		{"scrollbarSlider.activeBackground", d.Selection.HashHexAlpha(0xcc)},
		{"focusBorder", accent},
		{"tab.activeBackground", bgLight},
		{"tab.activeForeground", label},
		{"tab.inactiveBackground", bgLight},
		{"tab.inactiveForeground", muted},
		{"tab.activeBorder", accent},
		{"tab.activeBorderTop", accent},
		{"tab.border", bgLight},
		{"tab.hoverBackground", bgLight},
		{"tab.hoverForeground", label},
		{"editorGroupHeader.tabsBackground", bgLight},
		{"editorGroupHeader.tabsBorder", bgLight},
		{"breadcrumb.background", bgLight},
		{"breadcrumb.foreground", muted},
		{"breadcrumb.focusForeground", label},
		{"breadcrumb.activeSelectionForeground", accent},
		{"list.activeSelectionBackground", sel},
		{"list.activeSelectionForeground", label},
		{"list.inactiveSelectionBackground", bgLight},
		{"list.inactiveSelectionForeground", label},
		{"list.hoverBackground", bgLight},
		{"list.hoverForeground", label},
		{"list.focusBackground", sel},
		{"list.focusForeground", label},
		{"list.highlightForeground", accent},
		{"button.background", accent},
		{"button.foreground", bgLight},
		{"button.hoverBackground", modified},
		{"button.secondaryBackground", bgLight},
		{"button.secondaryForeground", label},
		{"button.secondaryHoverBackground", bgLight},
		{"input.background", bgLight},
		{"input.foreground", label},
		{"input.border", bgLight},
		{"input.placeholderForeground", muted},
		{"inputOption.activeBackground", accent},
		{"inputOption.activeForeground", bgLight},
		{"dropdown.background", bgLight},
		{"dropdown.foreground", label},
		{"dropdown.border", bgLight},
		{"notifications.background", bgLight},
		{"notifications.foreground", label},
		{"notifications.border", bgLight},
		{"notificationCenter.border", bgLight},
		{"notificationCenterHeader.background", bgLight},
		{"notificationCenterHeader.foreground", label},
		{"notificationToast.border", bgLight},
		{"notificationsErrorIcon.foreground", accent},
		{"notificationsWarningIcon.foreground", modified},
		{"notificationsInfoIcon.foreground", icon},
		{"quickInput.background", bgLight},
		{"quickInput.foreground", label},
		{"quickInputList.focusBackground", sel},
		{"quickInputList.focusForeground", label},
		{"quickInputTitle.background", bgLight},
		{"badge.background", accent},
		{"badge.foreground", bgLight},
		{"progressBar.background", accent},
		{"editorWidget.background", bgLight},
		{"editorWidget.border", bgLight},
		{"editorWidget.foreground", label},
		{"widget.shadow", bgLight},
		{"settings.headerForeground", label},
		{"settings.modifiedItemIndicator", accent},
		{"welcomePage.background", bgLight},
		{"walkThrough.embeddedEditorBackground", bgLight},
	}
}

// VSCodeTokenColors maps the derived palette onto syntax token styles.
func VSCodeTokenColors(d *palette.Derived) *TokenColors {
	accent := d.Accent.HashHex()
	icon := d.Icon.HashHex()
	label := d.Label.HashHex()
	muted := d.Muted.HashHex()
	fn := d.Warning.HashHex()

	return &TokenColors{
		Comments:  TokenStyle{Foreground: muted, FontStyle: "italic"},
		Keywords:  TokenStyle{Foreground: accent, FontStyle: "bold"},
		Functions: TokenStyle{Foreground: fn, FontStyle: "bold"},
		Variables: TokenStyle{Foreground: label},
		Strings:   TokenStyle{Foreground: d.Success.HashHex()},
		Types:     TokenStyle{Foreground: icon, FontStyle: "bold"},
		Numbers:   TokenStyle{Foreground: accent},
		TextMateRules: []TextMateRule{
			{Scope: Scopes{"storage.type", "storage.modifier"}, Settings: TokenStyle{Foreground: accent, FontStyle: "bold"}},
			{Scope: Scopes{"entity.name.type", "entity.name.class"}, Settings: TokenStyle{Foreground: icon, FontStyle: "bold"}},
			{Scope: Scopes{"entity.name.function", "support.function"}, Settings: TokenStyle{Foreground: fn, FontStyle: "bold"}},
			{Scope: Scopes{"variable.parameter"}, Settings: TokenStyle{Foreground: label, FontStyle: "italic"}},
			{Scope: Scopes{"constant.language"}, Settings: TokenStyle{Foreground: accent, FontStyle: "bold"}},
			{
				Scope: Scopes{
					"punctuation.definition.string",
					"punctuation.definition.variable",
					"punctuation.definition.parameters",
					"punctuation.definition.array",
				},
				Settings: TokenStyle{Foreground: muted},
			},
			{Scope: Scopes{"punctuation.separator"}, Settings: TokenStyle{Foreground: label}},
			{Scope: Scopes{"meta.brace"}, Settings: TokenStyle{Foreground: label}},
		},
	}
}

// VSCodeWriter merges the palette into a VS Code settings.json.
type VSCodeWriter struct {
	store SettingsStore
	path  string
}

// NewVSCodeWriter creates a writer for the settings file at path.
func NewVSCodeWriter(path string) *VSCodeWriter {
	return &VSCodeWriter{store: FileSettingsStore{Path: path}, path: path}
}

// NewVSCodeWriterWithStore creates a writer backed by a custom store.
func NewVSCodeWriterWithStore(store SettingsStore) *VSCodeWriter {
	return &VSCodeWriter{store: store}
}

func (w *VSCodeWriter) Name() string { return "vscode" }

func (w *VSCodeWriter) Write(ctx context.Context, d *palette.Derived) models.StepResult {
	started := time.Now()
	result := w.write(d)
	result.Kind = models.StepKindWriter
	result.Duration = time.Since(started)
	return result
}

func (w *VSCodeWriter) write(d *palette.Derived) models.StepResult {
	if d == nil {
		return models.Skipped(w.Name(), "palette unavailable")
	}

	doc, err := w.store.Load()
	if err != nil {
		if errors.Is(err, ErrSettingsMissing) {
			return models.Skipped(w.Name(), "settings not found")
		}
		return models.Failed(w.Name(), err, "")
	}

	if err := doc.SetColorCustomizations(VSCodeColors(d)); err != nil {
		return models.Failed(w.Name(), err, "")
	}
	if err := doc.SetTokenColorCustomizations(VSCodeTokenColors(d)); err != nil {
		return models.Failed(w.Name(), err, "")
	}

	if err := w.store.Save(doc); err != nil {
		return models.Failed(w.Name(), err, fmt.Sprintf("save settings: %v", err))
	}

	if w.path != "" {
		return models.Succeeded(w.Name(), "settings updated: "+w.path)
	}
	return models.Succeeded(w.Name(), "settings updated")
}
