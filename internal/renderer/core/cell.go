package core

import (
	"slices"
	"strings"

	"github.com/rivo/uniseg"
)

// Cell is one terminal column. A cluster wider than one column is stored
// in its first cell and followed by continuation cells, which have a zero
// Rune and Width.
type Cell struct {
	Rune      rune
	Combining []rune // rest of the grapheme cluster
	Width     int
	Style     Style
}

// EmptyCell is a blank in the default style.
func EmptyCell() Cell {
	return NewStyledCell(' ', DefaultStyle())
}

// NewStyledCell returns a cell holding r.
func NewStyledCell(r rune, style Style) Cell {
	return Cell{Rune: r, Width: RuneWidth(r), Style: style}
}

// ContinuationCell fills the columns covered by a wide cluster.
func ContinuationCell(style Style) Cell {
	return Cell{Style: style}
}

// IsContinuation reports whether c only pads a wide cluster.
func (c Cell) IsContinuation() bool {
	return c.Rune == 0 && c.Width == 0
}

func (c Cell) Equals(other Cell) bool {
	return c.Rune == other.Rune && c.Width == other.Width &&
		c.Style.Equals(other.Style) && slices.Equal(c.Combining, other.Combining)
}

// RuneWidth is the column count of r. Control characters take none.
func RuneWidth(r rune) int {
	if r < 0x20 || r == 0x7f {
		return 0
	}
	return uniseg.StringWidth(string(r))
}

// StringWidth is the column count of s.
func StringWidth(s string) int {
	return uniseg.StringWidth(s)
}

// CellsFromString lays s out one cell per column. Zero-width clusters are
// dropped.
func CellsFromString(s string, style Style) []Cell {
	out := make([]Cell, 0, len(s))
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		w := g.Width()
		if w == 0 {
			continue
		}
		runes := g.Runes()
		c := Cell{Rune: runes[0], Width: w, Style: style}
		if len(runes) > 1 {
			c.Combining = runes[1:]
		}
		out = append(out, c)
		for range w - 1 {
			out = append(out, ContinuationCell(style))
		}
	}
	return out
}

// StringFromCells is the inverse of CellsFromString.
func StringFromCells(cells []Cell) string {
	var sb strings.Builder
	for _, c := range cells {
		if c.IsContinuation() {
			continue
		}
		sb.WriteRune(c.Rune)
		for _, r := range c.Combining {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
