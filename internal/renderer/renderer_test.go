package renderer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dshills/gridcore/internal/event"
	"github.com/dshills/gridcore/internal/model"
	"github.com/dshills/gridcore/internal/renderer/decorator"
	"github.com/dshills/gridcore/internal/renderer/dirty"
	"github.com/dshills/gridcore/internal/renderer/schedule"
	"github.com/dshills/gridcore/internal/renderer/viewport"
	"github.com/dshills/gridcore/internal/surface"
)

// fixture wires a renderer to real collaborators the way the app does.
type fixture struct {
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
	r         *Renderer
}

const (
	cellW = 50
	cellH = 20
)

// newFixture creates a renderer over a dataRows x dataCols table whose
// container shows viewRows x viewCols cells.
func newFixture(t *testing.T, dataRows, dataCols, viewRows, viewCols int) *fixture {
	t.Helper()

	rows := make([][]any, dataRows)
	for r := range rows {
		rows[r] = make([]any, dataCols)
		for c := range rows[r] {
			rows[r][c] = fmt.Sprintf("r%dc%d", r, c)
		}
	}

	f := &fixture{
		doc:    surface.NewDocument(),
		loop:   event.New(),
		sched:  schedule.New(),
		table:  model.NewTable(rows),
		sizes:  model.NewSizes(cellW, cellH),
		scroll: model.NewScroll(),
	}
	f.container = f.doc.CreateElement("div")
	f.container.Style.SetBox(0, 0, float64(viewRows*cellH), float64(viewCols*cellW))
	f.doc.Body().AppendChild(f.container)
	f.loop.SetContainer(f.container)
	f.loop.SetWindow(f.doc)

	f.vp = viewport.New(f.sizes.Virtual(f.scroll))
	f.cells = dirty.New(func() { f.r.Draw() })
	f.decs = decorator.NewRegistry(func() { f.r.Draw() })

	if _, err := f.cells.CleanOn(f.loop, event.GridDraw); err != nil {
		t.Fatalf("CleanOn cells: %v", err)
	}
	if _, err := f.decs.CleanOn(f.loop, event.GridDraw); err != nil {
		t.Fatalf("CleanOn decorators: %v", err)
	}

	f.r = New(DefaultConfig(), Deps{
		Loop:       f.loop,
		Scheduler:  f.sched,
		Viewport:   f.vp,
		Data:       f.table,
		Sizes:      f.sizes.Virtual(f.scroll),
		Scroll:     f.scroll,
		Decorators: f.decs,
		Cells:      f.cells,
	})
	return f
}

func (f *fixture) build(t *testing.T) {
	t.Helper()
	if err := f.r.Build(f.container); err != nil {
		t.Fatalf("Build: %v", err)
	}
}

func (f *fixture) drawNow(t *testing.T) {
	t.Helper()
	if err := f.r.DrawNow(); err != nil {
		t.Fatalf("DrawNow: %v", err)
	}
}

func TestRenderer_BuildNilContainer(t *testing.T) {
	f := newFixture(t, 3, 3, 3, 3)

	if err := f.r.Build(nil); !errors.Is(err, ErrNoContainer) {
		t.Fatalf("Build(nil) = %v, want ErrNoContainer", err)
	}
	if f.r.Root() != nil || f.container.ChildCount() != 0 {
		t.Error("Build(nil) should not touch the tree")
	}
	if err := f.r.DrawNow(); !errors.Is(err, ErrNotBuilt) {
		t.Errorf("DrawNow before Build = %v, want ErrNotBuilt", err)
	}
}

func TestRenderer_BuildStructure(t *testing.T) {
	f := newFixture(t, 3, 3, 3, 3)
	f.build(t)

	if f.r.Rows() != 3 || f.r.Cols() != 3 {
		t.Fatalf("matrix = %dx%d, want 3x3", f.r.Rows(), f.r.Cols())
	}
	if f.container.ChildCount() != 1 || f.container.FirstChild() != f.r.Root() {
		t.Fatal("container should hold exactly the root")
	}

	cells := f.container.QuerySelectorAll("[dts=grid-cell]")
	if len(cells) != 9 {
		t.Fatalf("grid-cell count = %d, want 9", len(cells))
	}
	for _, cell := range cells {
		if !cell.HasClass("grid-cell") || !cell.HasClass("js-grid-cell") {
			t.Errorf("cell classes = %v", cell.Classes())
		}
		if cell.Style.Position != surface.PositionAbsolute || cell.Style.BoxSizing != surface.BorderBox {
			t.Errorf("cell style = %+v", cell.Style)
		}
	}

	if f.container.QuerySelector("[dts=grid-cells]") == nil {
		t.Error("missing grid-cells container")
	}
	decs := f.container.QuerySelector("[dts=grid-decorators]")
	if decs == nil || decs != f.r.DecoratorContainer() {
		t.Fatal("missing grid-decorators container")
	}
	if decs.PointerEvents() != surface.PointerNone {
		t.Errorf("decorator container pointer-events = %v, want none", decs.PointerEvents())
	}
}

func TestRenderer_RebuildReplacesContent(t *testing.T) {
	f := newFixture(t, 5, 5, 3, 3)
	f.build(t)
	first := f.r.Root()

	f.container.Style.Width = 2 * cellW
	f.build(t)

	if f.container.ChildCount() != 1 || f.r.Root() == first {
		t.Error("rebuild should replace the previous root")
	}
	if first.IsConnected() {
		t.Error("previous root should be detached")
	}
	if f.r.Cols() != 2 {
		t.Errorf("Cols after resize = %d, want 2", f.r.Cols())
	}
}

func TestRenderer_BorderProbe(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  float64
	}{
		{"unset", "", 1},
		{"one", "1px", 1},
		{"wide", "3px", 3},
		{"zero", "0px", 1},
		{"not a number", "thin", 1},
		{"padded", " 2px", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 3, 3, 3, 3)
			if tt.value != "" {
				f.doc.SetRule("js-grid-cell", "border-left-width", tt.value)
			}
			f.build(t)
			if got := f.r.BorderWidth(); got != tt.want {
				t.Errorf("BorderWidth = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRenderer_BorderProbeDetachedContainer(t *testing.T) {
	f := newFixture(t, 3, 3, 3, 3)
	f.doc.SetRule("js-grid-cell", "border-left-width", "4px")
	if err := f.doc.Body().RemoveChild(f.container); err != nil {
		t.Fatal(err)
	}
	f.build(t)

	if got := f.r.BorderWidth(); got != 1 {
		t.Errorf("BorderWidth = %v, want default 1 for a detached container", got)
	}
}

func TestRenderer_DrawCells(t *testing.T) {
	f := newFixture(t, 3, 3, 3, 3)
	f.build(t)
	f.cells.SetDirty()

	f.r.Draw()
	f.sched.Tick()

	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			cell := f.r.Cell(r, c)
			if cell == nil {
				t.Fatalf("Cell(%d, %d) is nil", r, c)
			}
			if want := fmt.Sprintf("r%dc%d", r, c); cell.TextContent() != want {
				t.Errorf("Cell(%d, %d) text = %q, want %q", r, c, cell.TextContent(), want)
			}
			if cell.ChildCount() != 1 {
				t.Errorf("Cell(%d, %d) children = %d, want 1", r, c, cell.ChildCount())
			}
			s := cell.Style
			if s.Width != cellW+1 || s.Height != cellH+1 {
				t.Errorf("Cell(%d, %d) size = %vx%v, want %dx%d", r, c, s.Width, s.Height, cellW+1, cellH+1)
			}
			if s.Top != float64(r*cellH) || s.Left != float64(c*cellW) {
				t.Errorf("Cell(%d, %d) at (%v, %v), want (%d, %d)", r, c, s.Top, s.Left, r*cellH, c*cellW)
			}
		}
	}
	if f.cells.IsDirty() {
		t.Error("cells should be clean after the draw completes")
	}
}

func TestRenderer_BuildSchedulesFirstDraw(t *testing.T) {
	f := newFixture(t, 3, 3, 3, 3)
	f.build(t)

	if !f.r.DrawPending() {
		t.Fatal("Build should queue a draw even though both states start dirty")
	}
	if n := f.sched.Tick(); n == 0 {
		t.Fatal("tick ran no tasks")
	}

	if got := f.r.Stats().Draws; got != 1 {
		t.Errorf("Stats.Draws = %d, want 1", got)
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if want := fmt.Sprintf("r%dc%d", r, c); f.r.Cell(r, c).TextContent() != want {
				t.Errorf("Cell(%d, %d) = %q, want %q", r, c, f.r.Cell(r, c).TextContent(), want)
			}
		}
	}
	if f.cells.IsDirty() || f.decs.IsDirty() {
		t.Error("states should be clean after the first draw")
	}
}

func TestRenderer_RebuildSchedulesDraw(t *testing.T) {
	f := newFixture(t, 3, 3, 3, 3)
	f.build(t)
	f.sched.Tick()

	f.build(t)
	f.sched.Tick()

	if got := f.r.Stats().Draws; got != 2 {
		t.Errorf("Stats.Draws = %d, want a draw per build", got)
	}
	if got := f.r.Cell(2, 2).TextContent(); got != "r2c2" {
		t.Errorf("rebuilt Cell(2, 2) = %q", got)
	}
}

func TestRenderer_DrawCellsScrolled(t *testing.T) {
	f := newFixture(t, 6, 6, 3, 3)
	f.scroll.ScrollTo(2, 1)
	f.build(t)
	f.drawNow(t)

	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			want := fmt.Sprintf("r%dc%d", r+2, c+1)
			if got := f.r.Cell(r, c).TextContent(); got != want {
				t.Errorf("Cell(%d, %d) = %q, want %q", r, c, got, want)
			}
		}
	}
}

func TestRenderer_RedrawReplacesText(t *testing.T) {
	f := newFixture(t, 3, 3, 3, 3)
	f.build(t)
	f.drawNow(t)

	f.table.Set(1, 1, "changed")
	f.cells.SetDirty()
	f.drawNow(t)

	cell := f.r.Cell(1, 1)
	if cell.ChildCount() != 1 || cell.TextContent() != "changed" {
		t.Errorf("Cell(1, 1) = %q with %d children", cell.TextContent(), cell.ChildCount())
	}
}

func TestRenderer_CleanCellsNotRedrawn(t *testing.T) {
	f := newFixture(t, 3, 3, 3, 3)
	f.build(t)
	f.drawNow(t)

	f.table.Set(0, 0, "stale")
	f.drawNow(t)

	if got := f.r.Cell(0, 0).TextContent(); got != "r0c0" {
		t.Errorf("clean cell was redrawn: %q", got)
	}
}

func TestRenderer_DrawCoalesced(t *testing.T) {
	f := newFixture(t, 3, 3, 3, 3)
	f.build(t)

	var draws int
	if _, err := f.loop.Bind(event.GridDraw, func(*surface.Event) error {
		draws++
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	f.r.Draw()
	f.r.Draw()
	f.cells.SetDirty()
	f.r.Draw()

	if !f.r.DrawPending() {
		t.Error("draw should be pending before the tick")
	}
	if draws != 0 {
		t.Fatalf("draw ran before the tick")
	}

	f.sched.Tick()

	if draws != 1 {
		t.Errorf("draws = %d, want 1", draws)
	}
	if f.r.DrawPending() {
		t.Error("draw should not be pending after the tick")
	}

	f.r.Draw()
	f.sched.Tick()
	if draws != 2 {
		t.Errorf("draws after second tick = %d, want 2", draws)
	}
}

func TestRenderer_DrawFiresGridDraw(t *testing.T) {
	f := newFixture(t, 3, 3, 3, 3)
	f.build(t)

	var sawText string
	if _, err := f.loop.Bind(event.GridDraw, func(*surface.Event) error {
		sawText = f.r.Cell(0, 0).TextContent()
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	f.drawNow(t)

	if sawText != "r0c0" {
		t.Errorf("grid-draw ran before cells were drawn, saw %q", sawText)
	}
	if got := f.r.Stats().Draws; got != 1 {
		t.Errorf("Stats.Draws = %d, want 1", got)
	}
}

func TestRenderer_DrawReturnsHandlerError(t *testing.T) {
	f := newFixture(t, 3, 3, 3, 3)
	f.build(t)

	boom := errors.New("boom")
	if _, err := f.loop.Bind(event.GridDraw, func(*surface.Event) error {
		return boom
	}); err != nil {
		t.Fatal(err)
	}

	if err := f.r.DrawNow(); !errors.Is(err, boom) {
		t.Errorf("DrawNow = %v, want boom", err)
	}
	if f.cells.IsDirty() {
		t.Error("other draw-complete handlers should still run")
	}
}

func TestRenderer_CellOutOfRange(t *testing.T) {
	f := newFixture(t, 3, 3, 3, 3)
	f.build(t)

	for _, rc := range [][2]int{{-1, 0}, {0, -1}, {3, 0}, {0, 3}} {
		if f.r.Cell(rc[0], rc[1]) != nil {
			t.Errorf("Cell(%d, %d) should be nil", rc[0], rc[1])
		}
	}
}

func TestRenderer_Destroy(t *testing.T) {
	f := newFixture(t, 3, 3, 3, 3)
	f.build(t)

	alive := decorator.New(0, 0, 10, 10, decorator.UnitsPx, nil)
	dead := decorator.New(0, 0, 10, 10, decorator.UnitsPx, nil)
	for _, d := range []*decorator.Decorator{alive, dead} {
		if err := f.decs.Add(d); err != nil {
			t.Fatal(err)
		}
	}
	f.drawNow(t)
	f.decs.Remove(dead)

	var destroyed int
	f.container.AddEventListener(event.DecoratorDestroy, func(*surface.Event) {
		destroyed++
	})

	f.r.Destroy()

	if f.container.ChildCount() != 0 {
		t.Errorf("container children = %d, want 0", f.container.ChildCount())
	}
	if destroyed != 2 {
		t.Errorf("destroy notifications = %d, want 2", destroyed)
	}
	if alive.BoundingBox() != nil || dead.BoundingBox() != nil {
		t.Error("bounding boxes should be released")
	}
	if f.decs.Len() != 1 {
		t.Errorf("alive decorators = %d, want 1; destroy does not kill them", f.decs.Len())
	}
	if f.r.Root() != nil {
		t.Error("Root should be nil after Destroy")
	}

	// Building again remounts the alive decorator
	f.build(t)
	f.drawNow(t)
	if alive.BoundingBox() == nil || !alive.BoundingBox().IsConnected() {
		t.Error("alive decorator should be remounted after rebuild")
	}
}
