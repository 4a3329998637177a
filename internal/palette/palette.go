// Package palette reads the palette produced by the wallpaper-analysis tool
// and derives the semantic color roles consumed by the theme writers.
package palette

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/yabaduma/retheme/internal/color"
)

// AccentCount is the number of indexed accent colors in a palette.
const AccentCount = 16

// RequiredAccents lists the accent indices this tool consumes. A palette
// missing any of them is unusable.
var RequiredAccents = []int{1, 2, 3, 4, 6, 8}

// ErrUnavailable marks every failure to produce a palette: a missing file is
// treated the same as a malformed one.
var ErrUnavailable = errors.New("palette unavailable")

// UnavailableError describes why a palette could not be read.
type UnavailableError struct {
	Path   string
	Reason string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("palette unavailable (%s): %s", e.Path, e.Reason)
}

// Is makes errors.Is(err, ErrUnavailable) match.
func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

// Palette is the base color set: background, foreground and indexed accents.
type Palette struct {
	Background color.Color
	Foreground color.Color
	Accents    [AccentCount]color.Color
}

// Accent returns accent color i. Out-of-range indices return the zero color.
func (p *Palette) Accent(i int) color.Color {
	if i < 0 || i >= AccentCount {
		return color.Color{}
	}
	return p.Accents[i]
}

// walFile mirrors the subset of the wal colors.json document we read.
type walFile struct {
	Special struct {
		Background string `json:"background"`
		Foreground string `json:"foreground"`
	} `json:"special"`
	Colors map[string]string `json:"colors"`
}

// Read loads the palette at path. Every error it returns matches
// ErrUnavailable; callers decide whether to skip or fall back.
func Read(path string) (*Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &UnavailableError{Path: path, Reason: "file not found"}
		}
		return nil, &UnavailableError{Path: path, Reason: err.Error()}
	}
	return Parse(path, data)
}

// Parse decodes a wal colors document. path is only used in errors.
func Parse(path string, data []byte) (*Palette, error) {
	var doc walFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &UnavailableError{Path: path, Reason: fmt.Sprintf("invalid json: %v", err)}
	}

	var p Palette
	var err error
	if p.Background, err = parseField("special.background", doc.Special.Background); err != nil {
		return nil, &UnavailableError{Path: path, Reason: err.Error()}
	}
	if p.Foreground, err = parseField("special.foreground", doc.Special.Foreground); err != nil {
		return nil, &UnavailableError{Path: path, Reason: err.Error()}
	}

	required := make(map[int]struct{}, len(RequiredAccents))
	for _, idx := range RequiredAccents {
		required[idx] = struct{}{}
	}

	for i := 0; i < AccentCount; i++ {
		key := "color" + strconv.Itoa(i)
		value, ok := doc.Colors[key]
		_, needed := required[i]
		if !ok || strings.TrimSpace(value) == "" {
			if needed {
				return nil, &UnavailableError{Path: path, Reason: "missing colors." + key}
			}
			continue
		}
		c, err := color.ParseHex(value)
		if err != nil {
			if needed {
				return nil, &UnavailableError{Path: path, Reason: fmt.Sprintf("colors.%s: %v", key, err)}
			}
			continue
		}
		p.Accents[i] = c
	}

	return &p, nil
}

func parseField(name, value string) (color.Color, error) {
	if strings.TrimSpace(value) == "" {
		return color.Color{}, fmt.Errorf("missing %s", name)
	}
	c, err := color.ParseHex(value)
	if err != nil {
		return color.Color{}, fmt.Errorf("%s: %w", name, err)
	}
	return c, nil
}
