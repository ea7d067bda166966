package renderer

import (
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dshills/gridcore/internal/event"
	"github.com/dshills/gridcore/internal/event/dispatch"
	"github.com/dshills/gridcore/internal/renderer/decorator"
	"github.com/dshills/gridcore/internal/renderer/schedule"
	"github.com/dshills/gridcore/internal/renderer/viewport"
	"github.com/dshills/gridcore/internal/surface"
)

// Renderer errors.
var (
	// ErrNoContainer is returned when building into a nil container.
	ErrNoContainer = errors.New("renderer: container is nil")

	// ErrNotBuilt is returned when drawing before Build.
	ErrNotBuilt = errors.New("renderer: not built")
)

// Class and test attributes applied to the elements the renderer creates.
const (
	CellClass      = "grid-cell js-grid-cell"
	CellsClass     = "grid-cells"
	DecoratorClass = "grid-decorators"

	// probeSelector finds the first cell when reading the border width.
	probeSelector = ".js-grid-cell"

	testAttr = "dts"
)

// DataModel provides formatted cell values by data coordinates.
type DataModel interface {
	GetFormatted(row, col int) string
}

// Viewport provides the visible extent and cell placement.
type Viewport interface {
	SizeToContainer(el *surface.Element)
	IterateCells(cellFn func(r, c int), rowFn func(r int))
	RowTop(r int) float64
	ColLeft(c int) float64
	Rows() int
	Cols() int
}

// ScrollModel provides the data coordinates of the top-left visible cell.
type ScrollModel interface {
	Row() int
	Col() int
}

// DirtyFlag is a dirty state the renderer reads and may re-arm.
type DirtyFlag interface {
	IsDirty() bool
	SetDirty()
}

// Decorators provides the decorators to mount and tear down.
type Decorators interface {
	DirtyFlag
	Alive() []*decorator.Decorator
	PopAllDead() []*decorator.Decorator
}

// Loop announces completed draws.
type Loop interface {
	Fire(name string) error
}

// Config configures the renderer.
type Config struct {
	// MaxRenderAttempts bounds how many consecutive draws retry a decorator
	// whose render step fails. Zero or less disables retries.
	MaxRenderAttempts int

	// DefaultBorderWidth is used when the cell border cannot be read.
	DefaultBorderWidth float64
}

// DefaultConfig returns the default renderer configuration.
func DefaultConfig() Config {
	return Config{
		MaxRenderAttempts:  3,
		DefaultBorderWidth: 1,
	}
}

// Deps are the collaborators the renderer reads from.
type Deps struct {
	Loop       Loop
	Scheduler  *schedule.Scheduler
	Viewport   Viewport
	Data       DataModel
	Sizes      viewport.CellSizes
	Scroll     ScrollModel
	Decorators Decorators
	Cells      DirtyFlag
	Logger     *slog.Logger
}

// Renderer builds and redraws the grid's visual tree.
//
// Renderer is not safe for concurrent use. Draws run on the goroutine that
// ticks the scheduler.
type Renderer struct {
	cfg  Config
	deps Deps

	container  *surface.Element
	root       *surface.Element
	cellsEl    *surface.Element
	decorators *surface.Element

	// cells is indexed by viewport-local row then column
	cells  [][]*surface.Element
	border float64

	draw     *schedule.Coalescer
	executor *dispatch.Executor
	logger   *slog.Logger

	// failures counts consecutive render failures per decorator ID
	failures map[string]int
	retry    bool

	draws uint64
}

// New creates a renderer. Loop, Viewport, Data, Sizes, Scroll, Decorators
// and Cells are required. A nil Scheduler makes Draw synchronous.
func New(cfg Config, deps Deps) *Renderer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.DefaultBorderWidth <= 0 {
		cfg.DefaultBorderWidth = 1
	}

	r := &Renderer{
		cfg:      cfg,
		deps:     deps,
		border:   cfg.DefaultBorderWidth,
		executor: dispatch.NewExecutor(),
		logger:   logger.With("component", "renderer"),
		failures: make(map[string]int),
	}
	if deps.Scheduler != nil {
		r.draw = schedule.NewCoalescer(deps.Scheduler, r.drawFromSchedule)
	}
	return r
}

// Build replaces the content of container with a fresh cell matrix sized to
// the container. Decorators mounted by a previous build are torn down.
func (r *Renderer) Build(container *surface.Element) error {
	if container == nil {
		return ErrNoContainer
	}

	r.container = container
	r.deps.Viewport.SizeToContainer(container)
	r.cleanup()

	doc := container.Document()

	r.cellsEl = doc.CreateElement("div")
	r.cellsEl.SetAttribute(testAttr, "grid-cells")
	r.cellsEl.SetAttribute("class", CellsClass)
	r.buildCells(doc)

	r.decorators = doc.CreateElement("div")
	r.decorators.SetAttribute(testAttr, "grid-decorators")
	r.decorators.SetAttribute("class", DecoratorClass)
	r.decorators.SetPointerEvents(surface.PointerNone)

	r.root = doc.CreateElement("div")
	r.root.AppendChild(r.cellsEl)
	r.root.AppendChild(r.decorators)

	container.AppendChild(r.root)

	r.border = r.probeBorder(doc)

	// The new matrix is empty and every decorator box is gone. Both states
	// may already be dirty, in which case SetDirty requests nothing.
	r.deps.Cells.SetDirty()
	r.deps.Decorators.SetDirty()
	r.Draw()

	r.logger.Debug("built",
		"rows", len(r.cells),
		"cols", r.Cols(),
		"border", r.border,
	)
	return nil
}

func (r *Renderer) buildCells(doc *surface.Document) {
	r.cells = nil
	r.deps.Viewport.IterateCells(func(row, col int) {
		cell := doc.CreateElement("div")
		cell.SetAttribute(testAttr, "grid-cell")
		cell.SetAttribute("class", CellClass)
		cell.Style.Position = surface.PositionAbsolute
		cell.Style.BoxSizing = surface.BorderBox
		r.cells[row] = append(r.cells[row], cell)
		r.cellsEl.AppendChild(cell)
	}, func(int) {
		r.cells = append(r.cells, make([]*surface.Element, 0, r.deps.Viewport.Cols()))
	})
}

// probeBorder reads the left border width of the first connected cell,
// falling back to the configured default when it is absent or not a
// positive length.
func (r *Renderer) probeBorder(doc *surface.Document) float64 {
	cell := doc.QuerySelector(probeSelector)
	if cell == nil {
		return r.cfg.DefaultBorderWidth
	}
	w, ok := parseLength(doc.ComputedStyle(cell).PropertyValue("border-left-width"))
	if !ok || w == 0 {
		return r.cfg.DefaultBorderWidth
	}
	return float64(w)
}

// parseLength parses the leading integer of a CSS length such as "2px".
func parseLength(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Draw requests a draw at the next scheduler tick. Requests made before the
// tick are coalesced into one draw.
func (r *Renderer) Draw() {
	if r.draw == nil {
		r.drawFromSchedule()
		return
	}
	r.draw.Request()
}

// DrawPending returns true if a coalesced draw is queued.
func (r *Renderer) DrawPending() bool {
	return r.draw != nil && r.draw.Pending()
}

func (r *Renderer) drawFromSchedule() {
	if err := r.DrawNow(); err != nil && !errors.Is(err, ErrNotBuilt) {
		r.logger.Error("draw failed", "error", err)
	}
}

// DrawNow redraws whatever is dirty and fires the draw-complete event.
// Errors from draw-complete handlers are returned after the frame closes.
func (r *Renderer) DrawNow() error {
	if r.root == nil {
		return ErrNotBuilt
	}

	if r.deps.Cells.IsDirty() {
		r.drawCells()
	}

	r.retry = false
	if r.deps.Decorators.IsDirty() {
		r.drawDecorators()
	}

	r.draws++
	err := r.deps.Loop.Fire(event.GridDraw)

	// Re-armed after the draw-complete event has cleaned the registry
	if r.retry {
		r.deps.Decorators.SetDirty()
	}
	return err
}

func (r *Renderer) drawCells() {
	sizes := r.deps.Sizes
	vp := r.deps.Viewport
	scrollRow, scrollCol := r.deps.Scroll.Row(), r.deps.Scroll.Col()
	doc := r.container.Document()

	vp.IterateCells(func(row, col int) {
		cell := r.Cell(row, col)
		if cell == nil {
			// Extent grew since the last build
			return
		}
		cell.Style.Width = sizes.Width(col) + r.border
		cell.Style.Height = sizes.Height(row) + r.border
		cell.Style.Top = vp.RowTop(row)
		cell.Style.Left = vp.ColLeft(col)

		cell.RemoveChildren()
		text := r.deps.Data.GetFormatted(row+scrollRow, col+scrollCol)
		cell.AppendChild(doc.CreateText(text))
	}, nil)
}

// Destroy tears down every decorator, alive or dead, and empties the
// container. The renderer can be built again afterwards.
func (r *Renderer) Destroy() {
	r.cleanup()
	r.root = nil
	r.cellsEl = nil
	r.decorators = nil
	r.cells = nil
}

func (r *Renderer) cleanup() {
	decs := append(r.deps.Decorators.Alive(), r.deps.Decorators.PopAllDead()...)
	r.removeDecorators(decs)
	if r.container != nil {
		r.container.RemoveChildren()
	}
}

// Cell returns the cell element at viewport-local (row, col), or nil.
func (r *Renderer) Cell(row, col int) *surface.Element {
	if row < 0 || row >= len(r.cells) || col < 0 || col >= len(r.cells[row]) {
		return nil
	}
	return r.cells[row][col]
}

// Rows returns the number of rows in the cell matrix.
func (r *Renderer) Rows() int {
	return len(r.cells)
}

// Cols returns the number of columns in the cell matrix.
func (r *Renderer) Cols() int {
	if len(r.cells) == 0 {
		return 0
	}
	return len(r.cells[0])
}

// BorderWidth returns the cell border width read at build time.
func (r *Renderer) BorderWidth() float64 {
	return r.border
}

// Root returns the element holding the cell and decorator containers, or
// nil before Build.
func (r *Renderer) Root() *surface.Element {
	return r.root
}

// Container returns the element the renderer was last built into.
func (r *Renderer) Container() *surface.Element {
	return r.container
}

// DecoratorContainer returns the element decorator boxes are mounted in.
func (r *Renderer) DecoratorContainer() *surface.Element {
	return r.decorators
}

// Stats contains renderer statistics.
type Stats struct {
	Draws             uint64
	RenderFailures    uint64
	RenderPanics      uint64
	PendingRetries    int
	DrawPending       bool
	CellRows          int
	CellCols          int
	BorderWidth       float64
	MountedDecorators int
}

// Stats returns renderer statistics.
func (r *Renderer) Stats() Stats {
	es := r.executor.Stats()
	mounted := 0
	if r.decorators != nil {
		mounted = r.decorators.ChildCount()
	}
	return Stats{
		Draws:             r.draws,
		RenderFailures:    es.Failed,
		RenderPanics:      es.Panicked,
		PendingRetries:    len(r.failures),
		DrawPending:       r.DrawPending(),
		CellRows:          r.Rows(),
		CellCols:          r.Cols(),
		BorderWidth:       r.border,
		MountedDecorators: mounted,
	}
}
