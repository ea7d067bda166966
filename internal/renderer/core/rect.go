package core

// ScreenRect is a half-open region of terminal cells: Top and Left are
// inside it, Bottom and Right are not.
type ScreenRect struct {
	Top, Left, Bottom, Right int
}

// RectFromSize builds the rect of height rows and width columns at
// (top, left).
func RectFromSize(top, left, height, width int) ScreenRect {
	return ScreenRect{Top: top, Left: left, Bottom: top + height, Right: left + width}
}

func span(from, to int) int { return max(0, to-from) }

// Width is the column count, zero for an inverted rect.
func (r ScreenRect) Width() int { return span(r.Left, r.Right) }

// Height is the row count, zero for an inverted rect.
func (r ScreenRect) Height() int { return span(r.Top, r.Bottom) }

// IsEmpty reports whether r covers no cells.
func (r ScreenRect) IsEmpty() bool { return r.Width() == 0 || r.Height() == 0 }

// Contains reports whether column x of row y lies in r.
func (r ScreenRect) Contains(x, y int) bool {
	return r.Left <= x && x < r.Right && r.Top <= y && y < r.Bottom
}

// Intersection clips r to other. Disjoint rects give the zero rect.
func (r ScreenRect) Intersection(other ScreenRect) ScreenRect {
	out := ScreenRect{
		Top:    max(r.Top, other.Top),
		Left:   max(r.Left, other.Left),
		Bottom: min(r.Bottom, other.Bottom),
		Right:  min(r.Right, other.Right),
	}
	if out.IsEmpty() {
		return ScreenRect{}
	}
	return out
}
