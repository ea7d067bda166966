package core

import (
	"fmt"
	"strings"
)

// Attribute is a set of text attribute flags.
type Attribute uint16

const (
	AttrNone Attribute = 0
	AttrBold Attribute = 1 << (iota - 1)
	AttrDim
	AttrItalic
	AttrUnderline
	AttrReverse
	AttrStrikethrough
)

// attrNames is ordered by flag value so String is deterministic.
var attrNames = []struct {
	attr Attribute
	name string
}{
	{AttrBold, "bold"},
	{AttrDim, "dim"},
	{AttrItalic, "italic"},
	{AttrUnderline, "underline"},
	{AttrReverse, "reverse"},
	{AttrStrikethrough, "strikethrough"},
}

// Has returns true if every flag of attr is set.
func (a Attribute) Has(attr Attribute) bool {
	return a&attr == attr && attr != AttrNone
}

// String returns the attribute names joined by spaces, or "none".
func (a Attribute) String() string {
	var names []string
	for _, n := range attrNames {
		if a.Has(n.attr) {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, " ")
}

// ParseAttributes combines attribute names such as "bold" and "underline".
// Names are case-insensitive; "none" and empty names add nothing.
func ParseAttributes(names ...string) (Attribute, error) {
	var out Attribute
next:
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || name == "none" {
			continue
		}
		for _, n := range attrNames {
			if n.name == name {
				out |= n.attr
				continue next
			}
		}
		return out, fmt.Errorf("unknown attribute %q", name)
	}
	return out, nil
}

// Style is the look of a terminal cell.
type Style struct {
	Foreground Color
	Background Color
	Attributes Attribute
}

// DefaultStyle uses the terminal's colors and no attributes.
func DefaultStyle() Style {
	return Style{Foreground: ColorDefault, Background: ColorDefault}
}

// NewStyle returns the default style with foreground fg.
func NewStyle(fg Color) Style {
	return DefaultStyle().WithForeground(fg)
}

// WithForeground returns s with foreground fg.
func (s Style) WithForeground(fg Color) Style {
	s.Foreground = fg
	return s
}

// WithBackground returns s with background bg.
func (s Style) WithBackground(bg Color) Style {
	s.Background = bg
	return s
}

// With returns s with attr added.
func (s Style) With(attr Attribute) Style {
	s.Attributes |= attr
	return s
}

// Merge overlays other on s. Default colors in other keep the colors of s;
// attributes accumulate.
func (s Style) Merge(other Style) Style {
	if !other.Foreground.IsDefault() {
		s.Foreground = other.Foreground
	}
	if !other.Background.IsDefault() {
		s.Background = other.Background
	}
	s.Attributes |= other.Attributes
	return s
}

// Equals reports whether both styles render identically.
func (s Style) Equals(other Style) bool {
	return s.Attributes == other.Attributes &&
		s.Foreground.Equals(other.Foreground) &&
		s.Background.Equals(other.Background)
}

// IsDefault reports whether s changes nothing about a cell.
func (s Style) IsDefault() bool {
	return s.Equals(DefaultStyle())
}
