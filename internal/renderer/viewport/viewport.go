// Package viewport computes which grid cells are visible in a container and
// where each of them sits.
package viewport

import (
	"github.com/dshills/gridcore/internal/surface"
)

// maxExtent bounds the visible rows and columns so zero-sized cells cannot
// produce an unbounded matrix.
const maxExtent = 4096

// CellSizes reports cell dimensions by viewport-local index.
type CellSizes interface {
	Width(col int) float64
	Height(row int) float64
}

// Viewport is the visible portion of the grid, measured in viewport-local
// rows and columns starting at 0.
//
// Viewport is not safe for concurrent use.
type Viewport struct {
	sizes CellSizes

	// Size of the container in pixels
	width  float64
	height float64

	// Visible extent in cells
	rows int
	cols int

	// Limits on the extent, negative for none
	maxRows int
	maxCols int
}

// New creates an empty viewport measuring cells with sizes.
func New(sizes CellSizes) *Viewport {
	return &Viewport{
		sizes:   sizes,
		maxRows: -1,
		maxCols: -1,
	}
}

// SetLimits caps the visible extent, typically at the number of data rows
// and columns remaining after the scroll offset. Negative values remove
// the cap. Takes effect on the next resize.
func (v *Viewport) SetLimits(rows, cols int) {
	v.maxRows = rows
	v.maxCols = cols
}

// SizeToContainer sizes the viewport to the container's box.
// A nil container empties the viewport.
func (v *Viewport) SizeToContainer(el *surface.Element) {
	if el == nil {
		v.Resize(0, 0)
		return
	}
	v.Resize(el.Style.Width, el.Style.Height)
}

// Resize sets the container size in pixels and recomputes the visible extent.
// Partially visible rows and columns count as visible.
func (v *Viewport) Resize(width, height float64) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	v.width = width
	v.height = height
	v.rows = extent(height, v.maxRows, v.sizes.Height)
	v.cols = extent(width, v.maxCols, v.sizes.Width)
}

func extent(space float64, limit int, size func(int) float64) int {
	n := 0
	pos := 0.0
	for pos < space && n < maxExtent {
		if limit >= 0 && n >= limit {
			break
		}
		pos += size(n)
		n++
	}
	return n
}

// Width returns the container width in pixels.
func (v *Viewport) Width() float64 {
	return v.width
}

// Height returns the container height in pixels.
func (v *Viewport) Height() float64 {
	return v.height
}

// Rows returns the number of visible rows.
func (v *Viewport) Rows() int {
	return v.rows
}

// Cols returns the number of visible columns.
func (v *Viewport) Cols() int {
	return v.cols
}

// RowTop returns the pixel offset of row r from the top of the container.
// Rows outside the visible extent extrapolate with their sizes, so negative
// rows lie above the container.
func (v *Viewport) RowTop(r int) float64 {
	return offset(r, v.sizes.Height)
}

// ColLeft returns the pixel offset of column c from the container's left edge.
func (v *Viewport) ColLeft(c int) float64 {
	return offset(c, v.sizes.Width)
}

// offset sums the sizes between index 0 and i. Only the maxExtent cells
// nearest 0 are measured; the rest repeat the size of the farthest
// measured cell, which lies well outside any container.
func offset(i int, size func(int) float64) float64 {
	if i == 0 {
		return 0
	}
	dir, first := 1, 0
	if i < 0 {
		dir, first = -1, -1
	}
	// Cells between 0 and i, without negating i
	count := float64(i)
	if i < 0 {
		count = -float64(i)
	}
	measured := int(min(count, maxExtent))

	sum := 0.0
	k := first
	for range measured {
		sum += size(k)
		k += dir
	}
	if rest := count - float64(measured); rest > 0 {
		sum += rest * size(k-dir)
	}
	return float64(dir) * sum
}

// IterateCells calls cellFn for every visible cell in row-major order.
// rowFn, when non-nil, is called before the cells of each row.
func (v *Viewport) IterateCells(cellFn func(r, c int), rowFn func(r int)) {
	for r := 0; r < v.rows; r++ {
		if rowFn != nil {
			rowFn(r)
		}
		if cellFn == nil {
			continue
		}
		for c := 0; c < v.cols; c++ {
			cellFn(r, c)
		}
	}
}

// CellAt returns the visible cell containing the container point (x, y).
func (v *Viewport) CellAt(x, y float64) (r, c int, ok bool) {
	r = index(y, v.rows, v.sizes.Height)
	c = index(x, v.cols, v.sizes.Width)
	if r < 0 || c < 0 {
		return -1, -1, false
	}
	return r, c, true
}

func index(p float64, n int, size func(int) float64) int {
	if p < 0 {
		return -1
	}
	pos := 0.0
	for i := 0; i < n; i++ {
		next := pos + size(i)
		if p < next {
			return i
		}
		pos = next
	}
	return -1
}

// IsVisible returns true if (r, c) is inside the visible extent.
func (v *Viewport) IsVisible(r, c int) bool {
	return r >= 0 && r < v.rows && c >= 0 && c < v.cols
}
