package app

import (
	"log/slog"

	"github.com/dshills/gridcore/internal/config"
	"github.com/dshills/gridcore/internal/event"
	"github.com/dshills/gridcore/internal/event/dispatch"
	"github.com/dshills/gridcore/internal/model"
	"github.com/dshills/gridcore/internal/renderer"
	"github.com/dshills/gridcore/internal/renderer/backend"
	"github.com/dshills/gridcore/internal/renderer/core"
	"github.com/dshills/gridcore/internal/renderer/decorator"
	"github.com/dshills/gridcore/internal/renderer/dirty"
	"github.com/dshills/gridcore/internal/renderer/schedule"
	"github.com/dshills/gridcore/internal/renderer/viewport"
	"github.com/dshills/gridcore/internal/surface"
)

// Class names styled by the painter.
const (
	ContainerClass = "grid"
	SelectionClass = "selection"
)

// CellPos is the detail of grid-cell-change events.
type CellPos struct {
	Row, Col int
}

// Grid wires the visual tree, event loop, scheduler, models and renderer
// into one widget.
//
// Grid is not safe for concurrent use. Every method must be called from
// the goroutine that ticks its scheduler.
type Grid struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *Metrics

	doc       *surface.Document
	container *surface.Element
	loop      *event.Loop
	sched     *schedule.Scheduler
	table     *model.Table
	sizes     *model.Sizes
	scroll    *model.Scroll
	vp        *viewport.Viewport
	decs      *decorator.Registry
	cells     *dirty.State
	renderer  *renderer.Renderer

	paint     renderer.PaintOptions
	selection *decorator.Decorator
	selRow    int
	selCol    int

	// Pointer button held at the previous mouse event
	buttons backend.MouseButton

	handles []event.Handle
	mounted bool
}

// GridOptions configures a Grid.
type GridOptions struct {
	// Config defaults to config.Default().
	Config *config.Config
	// Table defaults to an empty table.
	Table *model.Table
	// Logger defaults to a no-op logger.
	Logger *slog.Logger
	// Metrics defaults to a private tracker.
	Metrics *Metrics
}

// NewGrid creates an unmounted grid. Call Mount to build the cell matrix.
func NewGrid(opts GridOptions) (*Grid, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	styles, err := cfg.Style.Styles()
	if err != nil {
		return nil, &InitError{Component: "styles", Err: err}
	}
	table := opts.Table
	if table == nil {
		table = model.NewTable(nil)
	}
	logger := opts.Logger
	if logger == nil {
		logger = NopLogger()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}

	g := &Grid{
		cfg:     cfg,
		logger:  WithComponent(logger, "grid"),
		metrics: metrics,
		table:   table,
		paint:   paintOptions(cfg, styles),
	}

	g.doc = surface.NewDocument()
	g.doc.SetRule("grid-cell", "border-left-width", "1px")
	g.container = g.doc.CreateElement("div")
	g.container.SetAttribute("class", ContainerClass)
	g.doc.Body().AppendChild(g.container)

	g.loop = event.New(
		event.WithLogger(WithComponent(logger, "loop")),
		event.WithErrorHandler(func(err error) {
			g.logger.Error("event handler failed", "error", err)
		}),
	)
	g.loop.SetContainer(g.container)
	g.loop.SetWindow(g.doc)
	g.sched = schedule.New(schedule.WithLogger(WithComponent(logger, "scheduler")))

	g.sizes = model.NewSizes(cfg.Grid.CellWidth, cfg.Grid.CellHeight)
	g.scroll = model.NewScroll()
	virtual := g.sizes.Virtual(g.scroll)
	g.vp = viewport.New(virtual)

	g.cells = dirty.New(g.requestDraw)
	g.decs = decorator.NewRegistry(g.requestDraw)
	if _, err := g.cells.CleanOn(g.loop, event.GridDraw); err != nil {
		return nil, &InitError{Component: "cells", Err: err}
	}
	if _, err := g.decs.CleanOn(g.loop, event.GridDraw); err != nil {
		return nil, &InitError{Component: "decorators", Err: err}
	}

	g.renderer = renderer.New(renderer.Config{
		MaxRenderAttempts:  cfg.Grid.MaxRenderAttempts,
		DefaultBorderWidth: 1,
	}, renderer.Deps{
		Loop:       g.loop,
		Scheduler:  g.sched,
		Viewport:   g.vp,
		Data:       g.table,
		Sizes:      virtual,
		Scroll:     g.scroll,
		Decorators: g.decs,
		Cells:      g.cells,
		Logger:     logger,
	})

	g.selection = decorator.New(0, 0, 1, 1, decorator.UnitsCell, renderSelection)
	if err := g.decs.Add(g.selection); err != nil {
		return nil, &InitError{Component: "selection", Err: err}
	}

	g.scroll.OnChange(g.onScroll)
	g.sizes.OnChange(g.cells.SetDirty)
	g.table.OnChange(g.onDataChange)

	if err := g.bind(); err != nil {
		g.loop.Close()
		return nil, &InitError{Component: "bindings", Err: err}
	}
	return g, nil
}

func paintOptions(cfg *config.Config, styles map[string]core.Style) renderer.PaintOptions {
	return renderer.PaintOptions{
		Styles:     styles,
		Base:       core.DefaultStyle(),
		BorderRune: cfg.Style.BorderRune(),
	}
}

func renderSelection(doc *surface.Document) (*surface.Element, error) {
	el := doc.CreateElement("div")
	el.SetAttribute("class", SelectionClass)
	return el, nil
}

// requestDraw runs when the cells or decorators go from clean to dirty.
func (g *Grid) requestDraw() {
	if g.renderer != nil {
		g.renderer.Draw()
	}
}

// Mount sizes the container to width x height cells and rebuilds the
// cell matrix.
func (g *Grid) Mount(width, height int) error {
	g.container.Style.SetBox(0, 0, float64(max(height, 0)), float64(max(width, 0)))
	if err := g.renderer.Build(g.container); err != nil {
		return NewOpError("renderer", "build", err)
	}
	g.mounted = true
	g.updateScrollLimits()
	g.ensureVisible(g.selRow, g.selCol)
	g.fire(event.GridViewportChange, nil)

	g.logger.Debug("mounted",
		"width", width,
		"height", height,
		"rows", g.renderer.Rows(),
		"cols", g.renderer.Cols(),
	)
	return nil
}

// Mounted reports whether Mount has succeeded.
func (g *Grid) Mounted() bool {
	return g.mounted
}

// ApplyConfig switches to cfg. Geometry changes rebuild a mounted grid.
func (g *Grid) ApplyConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	styles, err := cfg.Style.Styles()
	if err != nil {
		return err
	}

	g.cfg = cfg
	g.paint = paintOptions(cfg, styles)
	g.sizes.SetDefaults(cfg.Grid.CellWidth, cfg.Grid.CellHeight)
	g.cells.SetDirty()

	if g.mounted {
		return g.Mount(int(g.container.Style.Width), int(g.container.Style.Height))
	}
	return nil
}

// Select moves the selection to data cell (row, col), clamped to the
// table, and scrolls it into view.
func (g *Grid) Select(row, col int) {
	row = clampIndex(row, g.table.Rows())
	col = clampIndex(col, g.table.Cols())
	g.ensureVisible(row, col)
	if row == g.selRow && col == g.selCol {
		return
	}
	g.selRow, g.selCol = row, col
	g.selection.Move(float64(row), float64(col), float64(row+1), float64(col+1))
	g.fire(event.GridCellChange, CellPos{Row: row, Col: col})
}

// Selection returns the selected data cell.
func (g *Grid) Selection() (row, col int) {
	return g.selRow, g.selCol
}

func clampIndex(v, n int) int {
	if n <= 0 || v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

// fullRows and fullCols count the cells that fit entirely in the viewport.
func (g *Grid) fullRows() int {
	n := g.vp.Rows()
	if n > 0 && g.vp.RowTop(n) > g.vp.Height() {
		n--
	}
	return max(n, 1)
}

func (g *Grid) fullCols() int {
	n := g.vp.Cols()
	if n > 0 && g.vp.ColLeft(n) > g.vp.Width() {
		n--
	}
	return max(n, 1)
}

func (g *Grid) updateScrollLimits() {
	g.scroll.SetLimits(
		max(g.table.Rows()-g.fullRows(), 0),
		max(g.table.Cols()-g.fullCols(), 0),
	)
}

// ensureVisible scrolls the least amount that brings (row, col) into view.
func (g *Grid) ensureVisible(row, col int) {
	if !g.mounted {
		return
	}
	top, left := g.scroll.Row(), g.scroll.Col()
	switch rows := g.fullRows(); {
	case row < top:
		top = row
	case row >= top+rows:
		top = row - rows + 1
	}
	switch cols := g.fullCols(); {
	case col < left:
		left = col
	case col >= left+cols:
		left = col - cols + 1
	}
	g.scroll.ScrollTo(top, left)
}

// onScroll redraws every cell and repositions decorators anchored to
// data cells.
func (g *Grid) onScroll() {
	g.cells.SetDirty()
	for _, d := range g.decs.Alive() {
		if d.Units() == decorator.UnitsCell {
			d.SetDirty()
		}
	}
	g.fire(event.GridScroll, CellPos{Row: g.scroll.Row(), Col: g.scroll.Col()})
}

func (g *Grid) onDataChange(row, col int) {
	g.cells.SetDirty()
	g.updateScrollLimits()
	g.fire(event.GridDataChange, CellPos{Row: row, Col: col})
}

// fire dispatches an application event through the loop. Handler failures
// are logged; they never abort the caller.
func (g *Grid) fire(name string, detail any) {
	if err := g.loop.FireEvent(surface.NewCustomEvent(name, false, detail)); err != nil {
		g.logger.Warn("event handlers failed", "event", name, "error", err)
	}
}

// Tick runs scheduled work, including coalesced draws, and returns the
// number of tasks run.
func (g *Grid) Tick() int {
	return g.sched.Tick()
}

// Draws returns how many draws have completed.
func (g *Grid) Draws() uint64 {
	return g.renderer.Stats().Draws
}

// Paint rasterizes the grid into b.
func (g *Grid) Paint(b backend.Backend) {
	renderer.Paint(g.container, b, g.paint)
}

// Close tears down the visual tree and detaches the loop.
func (g *Grid) Close() {
	for _, h := range g.handles {
		h.Unbind()
	}
	g.handles = nil
	g.renderer.Destroy()
	g.loop.Close()
	g.mounted = false
}

// Document returns the grid's document.
func (g *Grid) Document() *surface.Document { return g.doc }

// Container returns the element the grid is built into.
func (g *Grid) Container() *surface.Element { return g.container }

// Loop returns the event loop.
func (g *Grid) Loop() *event.Loop { return g.loop }

// Scheduler returns the scheduler draws run on.
func (g *Grid) Scheduler() *schedule.Scheduler { return g.sched }

// Renderer returns the renderer.
func (g *Grid) Renderer() *renderer.Renderer { return g.renderer }

// Table returns the data model.
func (g *Grid) Table() *model.Table { return g.table }

// Scroll returns the scroll model.
func (g *Grid) Scroll() *model.Scroll { return g.scroll }

// Sizes returns the cell size model.
func (g *Grid) Sizes() *model.Sizes { return g.sizes }

// Decorators returns the decorator registry.
func (g *Grid) Decorators() *decorator.Registry { return g.decs }

// Cells returns the dirty state of the cell matrix.
func (g *Grid) Cells() *dirty.State { return g.cells }

// GridStats aggregates statistics of the grid's components.
type GridStats struct {
	Renderer  renderer.Stats
	Loop      event.Stats
	Scheduler dispatch.Stats
}

// Stats returns statistics for the grid.
func (g *Grid) Stats() GridStats {
	return GridStats{
		Renderer:  g.renderer.Stats(),
		Loop:      g.loop.Stats(),
		Scheduler: g.sched.Stats(),
	}
}
