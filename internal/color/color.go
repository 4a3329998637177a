// Package color provides 24-bit RGB colors and the blend operations used to
// derive secondary theme colors.
package color

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidHex is returned when a string is not a 6-digit hex color.
var ErrInvalidHex = errors.New("invalid hex color")

// Color is a 24-bit RGB value.
type Color struct {
	R, G, B uint8
}

// White is #ffffff.
var White = Color{R: 0xff, G: 0xff, B: 0xff}

// ParseHex parses "rrggbb" or "#rrggbb".
func ParseHex(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}

	return Color{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}, nil
}

// MustParseHex is ParseHex for constants; it panics on bad input.
func MustParseHex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex returns the color as "rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("%02x%02x%02x", c.R, c.G, c.B)
}

// HashHex returns the color as "#rrggbb".
func (c Color) HashHex() string {
	return "#" + c.Hex()
}

// HashHexAlpha returns the color as "#rrggbbaa".
func (c Color) HashHexAlpha(alpha uint8) string {
	return fmt.Sprintf("#%s%02x", c.Hex(), alpha)
}

// ARGB returns the color as an opaque "0xffrrggbb" value.
func (c Color) ARGB() string {
	return "0xff" + c.Hex()
}

// String implements fmt.Stringer.
func (c Color) String() string {
	return c.HashHex()
}

// Luminance returns the CIE L* lightness of the color in [0,1].
func (c Color) Luminance() float64 {
	l, _, _ := c.colorful().Lab()
	return l
}

// IsDark reports whether the color reads as a dark background.
func (c Color) IsDark() bool {
	return c.Luminance() < 0.5
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

// LightenByRatio moves every channel toward 255 by ratio of the remaining
// distance: c + (255-c)*ratio, rounded down and clamped to [0,255].
func LightenByRatio(c Color, ratio float64) Color {
	if ratio == 0 {
		return c
	}
	blend := func(ch uint8) uint8 {
		v := float64(ch) + (255-float64(ch))*ratio
		return clampChannel(int(math.Floor(v)))
	}
	return Color{R: blend(c.R), G: blend(c.G), B: blend(c.B)}
}

// LightenByOffset adds a signed delta to every channel, clamped to [0,255].
func LightenByOffset(c Color, amount int) Color {
	return Color{
		R: clampChannel(int(c.R) + amount),
		G: clampChannel(int(c.G) + amount),
		B: clampChannel(int(c.B) + amount),
	}
}

func clampChannel(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}
