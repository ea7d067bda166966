// Package core holds the value types shared by the renderer and its
// backends: colors, styles, cells and screen rectangles.
package core

import (
	"fmt"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is a terminal color. The zero value is RGB black.
//
// Default colors leave the terminal's own color in place. Indexed colors
// name a palette slot stored in R.
type Color struct {
	R, G, B uint8
	Indexed bool
	Default bool
}

// ColorDefault keeps the terminal's color.
var ColorDefault = Color{Default: true}

var (
	ColorBlack   = ColorFromRGB(0x00, 0x00, 0x00)
	ColorWhite   = ColorFromRGB(0xff, 0xff, 0xff)
	ColorRed     = ColorFromRGB(0xff, 0x00, 0x00)
	ColorGreen   = ColorFromRGB(0x00, 0xff, 0x00)
	ColorBlue    = ColorFromRGB(0x00, 0x00, 0xff)
	ColorYellow  = ColorFromRGB(0xff, 0xff, 0x00)
	ColorCyan    = ColorFromRGB(0x00, 0xff, 0xff)
	ColorMagenta = ColorFromRGB(0xff, 0x00, 0xff)
	ColorGray    = ColorFromRGB(0x80, 0x80, 0x80)
)

var colorNames = map[string]Color{
	"default": ColorDefault,
	"black":   ColorBlack,
	"white":   ColorWhite,
	"red":     ColorRed,
	"green":   ColorGreen,
	"blue":    ColorBlue,
	"yellow":  ColorYellow,
	"cyan":    ColorCyan,
	"magenta": ColorMagenta,
	"gray":    ColorGray,
	"grey":    ColorGray,
}

// ColorFromRGB returns a true color.
func ColorFromRGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// ColorFromIndex returns palette color index.
func ColorFromIndex(index uint8) Color {
	return Color{R: index, Indexed: true}
}

// ColorFromHex parses "#rgb" or "#rrggbb", with or without the '#'.
func ColorFromHex(hex string) (Color, error) {
	c, err := colorful.Hex("#" + strings.TrimPrefix(hex, "#"))
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return ColorFromRGB(r, g, b), nil
}

// ParseColor accepts a color name such as "red" or "default", a palette
// index from 0 to 255, or a hex color. Case and surrounding space are
// ignored.
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := colorNames[s]; ok {
		return c, nil
	}
	if n, err := strconv.ParseUint(s, 10, 8); err == nil {
		return ColorFromIndex(uint8(n)), nil
	}
	return ColorFromHex(s)
}

// IsDefault reports whether c keeps the terminal's color.
func (c Color) IsDefault() bool {
	return c.Default
}

// Equals compares colors by meaning: G and B of an indexed color and all
// channels of a default color are ignored.
func (c Color) Equals(other Color) bool {
	switch {
	case c.Default || other.Default:
		return c.Default == other.Default
	case c.Indexed || other.Indexed:
		return c.Indexed == other.Indexed && c.R == other.R
	}
	return c.R == other.R && c.G == other.G && c.B == other.B
}

func (c Color) String() string {
	switch {
	case c.Default:
		return "default"
	case c.Indexed:
		return strconv.Itoa(int(c.R))
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
