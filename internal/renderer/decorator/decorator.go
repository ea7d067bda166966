// Package decorator manages free-floating overlays drawn above the grid's
// cell matrix.
//
// A Decorator describes a box in pixel or cell units and knows how to render
// its content. The Registry tracks which decorators are alive and which have
// been removed but not yet torn down by the renderer.
package decorator

import (
	"github.com/google/uuid"

	"github.com/dshills/gridcore/internal/renderer/dirty"
	"github.com/dshills/gridcore/internal/surface"
)

// Units selects how a decorator's box is interpreted.
type Units uint8

const (
	// UnitsPx places the box in container pixels.
	UnitsPx Units = iota

	// UnitsCell places the box in viewport cells. Bottom and Right are
	// exclusive.
	UnitsCell
)

// String returns the string representation of the units.
func (u Units) String() string {
	switch u {
	case UnitsPx:
		return "px"
	case UnitsCell:
		return "cell"
	default:
		return "unknown"
	}
}

// RenderFunc produces a decorator's content element.
type RenderFunc func(doc *surface.Document) (*surface.Element, error)

// Decorator is an overlay positioned over the grid.
type Decorator struct {
	id    string
	top   float64
	left  float64
	bot   float64
	right float64
	units Units

	render RenderFunc
	state  *dirty.State
	notify func()

	box *surface.Element
}

// New creates a decorator covering the given box. The decorator starts dirty.
func New(top, left, bottom, right float64, units Units, render RenderFunc) *Decorator {
	d := &Decorator{
		id:     uuid.NewString(),
		top:    top,
		left:   left,
		bot:    bottom,
		right:  right,
		units:  units,
		render: render,
	}
	d.state = dirty.New(func() {
		if d.notify != nil {
			d.notify()
		}
	})
	return d
}

// ID returns the unique identifier for this decorator.
func (d *Decorator) ID() string {
	return d.id
}

// Top returns the top edge.
func (d *Decorator) Top() float64 { return d.top }

// Left returns the left edge.
func (d *Decorator) Left() float64 { return d.left }

// Bottom returns the bottom edge.
func (d *Decorator) Bottom() float64 { return d.bot }

// Right returns the right edge.
func (d *Decorator) Right() float64 { return d.right }

// Units returns the units of the box.
func (d *Decorator) Units() Units { return d.units }

// Height returns Bottom - Top.
func (d *Decorator) Height() float64 {
	return d.bot - d.top
}

// Width returns Right - Left.
func (d *Decorator) Width() float64 {
	return d.right - d.left
}

// Move repositions the decorator and marks it dirty.
func (d *Decorator) Move(top, left, bottom, right float64) {
	d.top, d.left, d.bot, d.right = top, left, bottom, right
	d.state.SetDirty()
}

// SetUnits changes the units of the box and marks it dirty.
func (d *Decorator) SetUnits(u Units) {
	d.units = u
	d.state.SetDirty()
}

// Render produces the decorator's content.
func (d *Decorator) Render(doc *surface.Document) (*surface.Element, error) {
	if d.render == nil {
		return doc.CreateElement("div"), nil
	}
	return d.render(doc)
}

// IsDirty returns true if the decorator needs repositioning.
func (d *Decorator) IsDirty() bool {
	return d.state.IsDirty()
}

// SetDirty marks the decorator as needing repositioning.
func (d *Decorator) SetDirty() {
	d.state.SetDirty()
}

// SetClean marks the decorator as positioned.
func (d *Decorator) SetClean() {
	d.state.SetClean()
}

// BoundingBox returns the element wrapping the rendered content, or nil if
// the decorator is not mounted. It is owned by the renderer.
func (d *Decorator) BoundingBox() *surface.Element {
	return d.box
}

// SetBoundingBox is called by the renderer when mounting or tearing down.
func (d *Decorator) SetBoundingBox(el *surface.Element) {
	d.box = el
}
