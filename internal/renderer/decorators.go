package renderer

import (
	"fmt"

	"github.com/dshills/gridcore/internal/event"
	"github.com/dshills/gridcore/internal/renderer/decorator"
	"github.com/dshills/gridcore/internal/surface"
)

// drawDecorators mounts and positions every alive decorator, then tears
// down the ones removed since the last draw. A decorator whose render step
// fails is left unmounted and retried on the next draw.
func (r *Renderer) drawDecorators() {
	for _, d := range r.deps.Decorators.Alive() {
		mounted := false
		box := d.BoundingBox()
		if box == nil {
			var ok bool
			if box, ok = r.mount(d); !ok {
				continue
			}
			mounted = true
		}

		if mounted || d.IsDirty() {
			r.position(d, box)
		}
	}

	r.removeDecorators(r.deps.Decorators.PopAllDead())
}

// mount renders d into a new bounding box and appends it to the decorator
// container.
func (r *Renderer) mount(d *decorator.Decorator) (*surface.Element, bool) {
	doc := r.container.Document()

	var content *surface.Element
	res := r.executor.Execute(d.ID(), func() error {
		el, err := d.Render(doc)
		if err != nil {
			return err
		}
		if el == nil {
			return fmt.Errorf("decorator %s rendered no element", d.ID())
		}
		content = el
		return nil
	})
	if !res.IsSuccess() {
		r.renderFailed(d, res.Error, res.PanicValue)
		return nil, false
	}
	delete(r.failures, d.ID())

	box := doc.CreateElement("div")
	box.AppendChild(content)
	r.decorators.AppendChild(box)
	d.SetBoundingBox(box)
	return box, true
}

func (r *Renderer) renderFailed(d *decorator.Decorator, err error, panicValue any) {
	r.failures[d.ID()]++
	attempts := r.failures[d.ID()]

	logArgs := []any{"decorator", d.ID(), "attempt", attempts}
	if panicValue != nil {
		logArgs = append(logArgs, "panic", panicValue)
	} else {
		logArgs = append(logArgs, "error", err)
	}
	r.logger.Error("decorator render failed", logArgs...)

	if attempts < r.cfg.MaxRenderAttempts {
		r.retry = true
	}
}

// position places the box of d in the decorator container.
func (r *Renderer) position(d *decorator.Decorator, box *surface.Element) {
	switch d.Units() {
	case decorator.UnitsPx:
		box.Style.SetBox(d.Top(), d.Left(), d.Height(), d.Width())
	case decorator.UnitsCell:
		// Cell units are data coordinates; convert through the visible
		// geometry relative to the scroll offset.
		vp := r.deps.Viewport
		top := int(d.Top()) - r.deps.Scroll.Row()
		left := int(d.Left()) - r.deps.Scroll.Col()
		bottom := int(d.Bottom()) - r.deps.Scroll.Row()
		right := int(d.Right()) - r.deps.Scroll.Col()
		y := vp.RowTop(top)
		x := vp.ColLeft(left)
		box.Style.SetBox(y, x, vp.RowTop(bottom)-y, vp.ColLeft(right)-x)
	}
}

// removeDecorators notifies the rendered content of each mounted decorator
// and detaches its bounding box.
func (r *Renderer) removeDecorators(decs []*decorator.Decorator) {
	for _, d := range decs {
		delete(r.failures, d.ID())

		box := d.BoundingBox()
		if box == nil {
			continue
		}
		if content := box.FirstChild(); content != nil {
			content.DispatchEvent(surface.NewCustomEvent(event.DecoratorDestroy, true, d))
		}
		if parent := box.Parent(); parent != nil {
			if err := parent.RemoveChild(box); err != nil {
				r.logger.Warn("detach decorator", "decorator", d.ID(), "error", err)
			}
		}
		d.SetBoundingBox(nil)
	}
}
