package app

import (
	"github.com/dshills/gridcore/internal/event"
	"github.com/dshills/gridcore/internal/surface"
)

// bind registers the grid's own input handlers and its event counter.
func (g *Grid) bind() error {
	bindings := []struct {
		name    string
		handler event.Handler
	}{
		{event.KeyDown, g.onKeyDown},
		{event.Click, g.onClick},
		{event.Wheel, g.onWheel},
	}
	for _, b := range bindings {
		h, err := g.loop.Bind(b.name, b.handler)
		if err != nil {
			return err
		}
		g.handles = append(g.handles, h)
	}

	g.handles = append(g.handles, g.loop.AddInterceptor(func(*surface.Event) {
		g.metrics.RecordEvent()
	}))
	return nil
}

func (g *Grid) onKeyDown(ev *surface.Event) error {
	row, col := g.selRow, g.selCol
	page := g.fullRows()

	switch ev.Key {
	case "ArrowUp":
		g.Select(row-1, col)
	case "ArrowDown":
		g.Select(row+1, col)
	case "ArrowLeft":
		g.Select(row, col-1)
	case "ArrowRight", "Tab":
		g.Select(row, col+1)
	case "PageUp":
		g.scroll.PageUp(page)
		g.Select(row-page, col)
	case "PageDown":
		g.scroll.PageDown(page)
		g.Select(row+page, col)
	case "Home":
		if ev.Mods.Has(surface.ModCtrl) {
			g.Select(0, 0)
		} else {
			g.Select(row, 0)
		}
	case "End":
		if ev.Mods.Has(surface.ModCtrl) {
			g.Select(g.table.Rows()-1, g.table.Cols()-1)
		} else {
			g.Select(row, g.table.Cols()-1)
		}
	}
	return nil
}

// onClick selects the data cell under the pointer.
func (g *Grid) onClick(ev *surface.Event) error {
	ox, oy := g.container.Origin()
	r, c, ok := g.vp.CellAt(float64(ev.X)-ox, float64(ev.Y)-oy)
	if !ok {
		return nil
	}
	g.Select(r+g.scroll.Row(), c+g.scroll.Col())
	return nil
}

func (g *Grid) onWheel(ev *surface.Event) error {
	step := g.cfg.Grid.ScrollStep
	g.scroll.ScrollBy(ev.DeltaY*step, ev.DeltaX*step)
	return nil
}
