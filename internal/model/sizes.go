package model

// Sizes holds per-row heights and per-column widths in pixels, falling
// back to defaults for rows and columns without an override.
type Sizes struct {
	defaultWidth  float64
	defaultHeight float64
	widths        map[int]float64
	heights       map[int]float64
	onChange      func()
}

// NewSizes creates a size model with the given defaults.
func NewSizes(defaultWidth, defaultHeight float64) *Sizes {
	if defaultWidth < 0 {
		defaultWidth = 0
	}
	if defaultHeight < 0 {
		defaultHeight = 0
	}
	return &Sizes{
		defaultWidth:  defaultWidth,
		defaultHeight: defaultHeight,
		widths:        make(map[int]float64),
		heights:       make(map[int]float64),
	}
}

// OnChange sets a callback run after any size changes.
func (s *Sizes) OnChange(fn func()) {
	s.onChange = fn
}

// Width returns the width of a data column.
func (s *Sizes) Width(col int) float64 {
	if w, ok := s.widths[col]; ok {
		return w
	}
	return s.defaultWidth
}

// Height returns the height of a data row.
func (s *Sizes) Height(row int) float64 {
	if h, ok := s.heights[row]; ok {
		return h
	}
	return s.defaultHeight
}

// SetWidth overrides the width of a column. Negative widths clear the
// override.
func (s *Sizes) SetWidth(col int, w float64) {
	if w < 0 {
		delete(s.widths, col)
	} else {
		s.widths[col] = w
	}
	s.changed()
}

// SetHeight overrides the height of a row. Negative heights clear the
// override.
func (s *Sizes) SetHeight(row int, h float64) {
	if h < 0 {
		delete(s.heights, row)
	} else {
		s.heights[row] = h
	}
	s.changed()
}

// SetDefaults replaces the default width and height.
func (s *Sizes) SetDefaults(width, height float64) {
	if width >= 0 {
		s.defaultWidth = width
	}
	if height >= 0 {
		s.defaultHeight = height
	}
	s.changed()
}

func (s *Sizes) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

// Virtual returns a view of s indexed by viewport position: row r of the
// view is data row r+scroll.Row().
func (s *Sizes) Virtual(scroll *Scroll) *VirtualSizes {
	return &VirtualSizes{sizes: s, scroll: scroll}
}

// VirtualSizes maps viewport-local indices to data sizes through a scroll
// offset.
type VirtualSizes struct {
	sizes  *Sizes
	scroll *Scroll
}

// Width returns the width of viewport column col.
func (v *VirtualSizes) Width(col int) float64 {
	return v.sizes.Width(col + v.scroll.Col())
}

// Height returns the height of viewport row row.
func (v *VirtualSizes) Height(row int) float64 {
	return v.sizes.Height(row + v.scroll.Row())
}
