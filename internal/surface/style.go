package surface

import (
	"strconv"
)

// Position selects how an element is placed relative to its parent.
type Position uint8

const (
	// PositionStatic places the element at its parent's origin.
	PositionStatic Position = iota

	// PositionAbsolute offsets the element by Top/Left from its parent's origin.
	PositionAbsolute
)

// String returns the CSS name of the position.
func (p Position) String() string {
	switch p {
	case PositionAbsolute:
		return "absolute"
	default:
		return "static"
	}
}

// BoxSizing selects whether Width/Height include the border.
type BoxSizing uint8

const (
	ContentBox BoxSizing = iota
	BorderBox
)

// String returns the CSS name of the box sizing.
func (b BoxSizing) String() string {
	if b == BorderBox {
		return "border-box"
	}
	return "content-box"
}

// PointerEvents controls whether an element receives pointer input.
type PointerEvents uint8

const (
	// PointerAuto inherits the parent's effective value.
	PointerAuto PointerEvents = iota

	// PointerNone makes the element transparent to hit testing.
	PointerNone

	// PointerAll forces the element to receive pointer input.
	PointerAll
)

// String returns the CSS name of the value.
func (p PointerEvents) String() string {
	switch p {
	case PointerNone:
		return "none"
	case PointerAll:
		return "all"
	default:
		return "auto"
	}
}

// Style is the inline style of an element. Lengths are in pixels.
type Style struct {
	Position      Position
	BoxSizing     BoxSizing
	Top           float64
	Left          float64
	Width         float64
	Height        float64
	PointerEvents PointerEvents
	Hidden        bool
}

// SetBox positions the element absolutely with the given box.
func (s *Style) SetBox(top, left, height, width float64) {
	s.Position = PositionAbsolute
	s.Top = top
	s.Left = left
	s.Height = height
	s.Width = width
}

// ComputedStyle is a read-only view of an element's resolved style.
type ComputedStyle struct {
	el    *Element
	props map[string]string
}

// PropertyValue returns the resolved value of a CSS property, or "" if the
// property is not set. Geometry properties are reported from the inline
// Style in pixels.
func (c ComputedStyle) PropertyValue(name string) string {
	if c.el == nil {
		return ""
	}
	switch name {
	case "top":
		return formatPx(c.el.Style.Top)
	case "left":
		return formatPx(c.el.Style.Left)
	case "width":
		return formatPx(c.el.Style.Width)
	case "height":
		return formatPx(c.el.Style.Height)
	case "position":
		return c.el.Style.Position.String()
	case "box-sizing":
		return c.el.Style.BoxSizing.String()
	case "pointer-events":
		return c.el.Style.PointerEvents.String()
	}
	return c.props[name]
}

func formatPx(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// Rect is an axis-aligned box in document pixels.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Empty returns true if the rectangle has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Origin returns the absolute origin of the element's box.
func (e *Element) Origin() (x, y float64) {
	for n := e; n != nil; n = n.parent {
		if n.Style.Position == PositionAbsolute {
			x += n.Style.Left
			y += n.Style.Top
		}
	}
	return x, y
}

// Bounds returns the absolute box of the element.
func (e *Element) Bounds() Rect {
	x, y := e.Origin()
	return Rect{X: x, Y: y, W: e.Style.Width, H: e.Style.Height}
}
