package renderer

import (
	"math"

	"github.com/dshills/gridcore/internal/renderer/backend"
	"github.com/dshills/gridcore/internal/renderer/core"
	"github.com/dshills/gridcore/internal/surface"
)

// PaintOptions controls how the visual tree is rasterized.
type PaintOptions struct {
	// Styles maps class names to styles. An element's style is its parent's
	// style merged with the styles of its classes in order.
	Styles map[string]core.Style

	// Base is the style of the root element.
	Base core.Style

	// BorderRune is drawn in the border columns of elements whose computed
	// border-left-width is positive. Zero leaves borders blank.
	BorderRune rune
}

// box is an element's area in whole terminal cells.
type box = core.ScreenRect

// Paint clears b and draws the subtree under root into it. One pixel of the
// visual tree maps to one terminal cell. Elements are drawn in tree order so
// later siblings, such as decorators, paint over earlier ones. Styles of
// overlapping elements merge so an overlay can recolor the text beneath it.
func Paint(root *surface.Element, b backend.Backend, opts PaintOptions) {
	b.Clear()
	if root == nil {
		return
	}
	w, h := b.Size()
	p := painter{
		b:      b,
		opts:   opts,
		screen: core.RectFromSize(0, 0, h, w),
		doc:    root.Document(),
	}
	p.element(root, p.screen, opts.Base)
}

type painter struct {
	b      backend.Backend
	opts   PaintOptions
	screen box
	doc    *surface.Document
}

func (p *painter) element(el *surface.Element, parent box, inherited core.Style) {
	if el.Style.Hidden {
		return
	}
	if el.IsText() {
		p.text(el.Text(), parent, inherited)
		return
	}

	area := p.area(el, parent)
	style, styled := p.style(el, inherited)
	clip := area.Intersection(p.screen)

	if styled && !clip.IsEmpty() {
		p.tint(clip, style)
	}

	content := area
	if border := p.border(el); border > 0 {
		content = box{
			Top:    area.Top,
			Left:   area.Left + border,
			Bottom: area.Bottom,
			Right:  area.Right - border,
		}
		if p.opts.BorderRune != 0 {
			p.edges(area, border, style)
		}
	}

	for _, child := range el.Children() {
		p.element(child, content, style)
	}
}

// area resolves an element's box. Absolute elements are placed from their
// origin; static elements without a size fill their parent.
func (p *painter) area(el *surface.Element, parent box) box {
	s := el.Style
	if s.Position != surface.PositionAbsolute && s.Width == 0 && s.Height == 0 {
		return parent
	}
	x, y := el.Origin()
	left, top := int(math.Floor(x)), int(math.Floor(y))
	return box{
		Top:    top,
		Left:   left,
		Bottom: int(math.Floor(y + s.Height)),
		Right:  int(math.Floor(x + s.Width)),
	}
}

func (p *painter) style(el *surface.Element, inherited core.Style) (core.Style, bool) {
	style := inherited
	styled := false
	for _, class := range el.Classes() {
		if s, ok := p.opts.Styles[class]; ok {
			style = style.Merge(s)
			styled = true
		}
	}
	return style, styled
}

func (p *painter) border(el *surface.Element) int {
	if p.doc == nil {
		return 0
	}
	n, ok := parseLength(p.doc.ComputedStyle(el).PropertyValue("border-left-width"))
	if !ok || n < 0 {
		return 0
	}
	return n
}

// tint merges style into every cell of r, keeping the content.
func (p *painter) tint(r box, style core.Style) {
	for y := r.Top; y < r.Bottom; y++ {
		for x := r.Left; x < r.Right; x++ {
			c := p.b.GetCell(x, y)
			c.Style = c.Style.Merge(style)
			p.b.SetCell(x, y, c)
		}
	}
}

// edges draws the left and right border columns of r. Neighbours sharing a
// border column draw the same rune there.
func (p *painter) edges(r box, border int, style core.Style) {
	cell := core.NewStyledCell(p.opts.BorderRune, style)
	for y := max(r.Top, p.screen.Top); y < min(r.Bottom, p.screen.Bottom); y++ {
		for i := 0; i < border; i++ {
			for _, x := range []int{r.Left + i, r.Right - 1 - i} {
				if p.screen.Contains(x, y) {
					p.b.SetCell(x, y, cell)
				}
			}
		}
	}
}

// text writes s on the first line of r, clipped to r. A wide grapheme that
// does not fit entirely is dropped along with the rest of the line.
func (p *painter) text(s string, r box, style core.Style) {
	if r.IsEmpty() || r.Top < p.screen.Top || r.Top >= p.screen.Bottom {
		return
	}
	x := r.Left
	for _, c := range core.CellsFromString(s, style) {
		if c.IsContinuation() {
			x++
			continue
		}
		if x+c.Width > r.Right {
			return
		}
		if x >= p.screen.Left && x+c.Width <= p.screen.Right {
			under := p.b.GetCell(x, r.Top)
			c.Style = under.Style.Merge(style)
			p.b.SetCell(x, r.Top, c)
			for i := 1; i < c.Width; i++ {
				p.b.SetCell(x+i, r.Top, core.ContinuationCell(c.Style))
			}
		}
		x++
	}
}
