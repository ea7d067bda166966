package model

// Scroll is the grid's scroll position in whole rows and columns.
//
// The position is clamped to [0, limit] on each axis. A limit below zero
// leaves the axis unbounded.
type Scroll struct {
	row, col       int
	maxRow, maxCol int
	onChange       func()
}

// NewScroll creates a scroll model at the origin with no limits.
func NewScroll() *Scroll {
	return &Scroll{maxRow: -1, maxCol: -1}
}

// OnChange sets a callback run whenever the position moves.
func (s *Scroll) OnChange(fn func()) {
	s.onChange = fn
}

// Row returns the first visible data row.
func (s *Scroll) Row() int {
	return s.row
}

// Col returns the first visible data column.
func (s *Scroll) Col() int {
	return s.col
}

// SetLimits sets the largest reachable row and column and re-clamps the
// current position.
func (s *Scroll) SetLimits(maxRow, maxCol int) {
	s.maxRow, s.maxCol = maxRow, maxCol
	s.ScrollTo(s.row, s.col)
}

// ScrollTo moves to (row, col). Returns true if the position changed.
func (s *Scroll) ScrollTo(row, col int) bool {
	row = clamp(row, s.maxRow)
	col = clamp(col, s.maxCol)
	if row == s.row && col == s.col {
		return false
	}
	s.row, s.col = row, col
	if s.onChange != nil {
		s.onChange()
	}
	return true
}

// ScrollBy moves by a relative amount. Returns true if the position changed.
func (s *Scroll) ScrollBy(rows, cols int) bool {
	return s.ScrollTo(s.row+rows, s.col+cols)
}

// PageDown scrolls down by a page of the given size.
func (s *Scroll) PageDown(page int) bool {
	if page < 1 {
		page = 1
	}
	return s.ScrollBy(page, 0)
}

// PageUp scrolls up by a page of the given size.
func (s *Scroll) PageUp(page int) bool {
	if page < 1 {
		page = 1
	}
	return s.ScrollBy(-page, 0)
}

func clamp(v, limit int) int {
	if v < 0 {
		return 0
	}
	if limit >= 0 && v > limit {
		return limit
	}
	return v
}
