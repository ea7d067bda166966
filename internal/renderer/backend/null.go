package backend

import (
	"strings"

	"github.com/dshills/gridcore/internal/renderer/core"
)

// NullBackend keeps the screen in memory. Tests read it back with Line
// and GetCell; the CLI prints it for -snapshot.
type NullBackend struct {
	width, height int
	cells         []core.Cell // row-major
	shows         int
	events        chan Event
}

// NewNullBackend returns a blank width x height screen. Negative sizes
// are treated as zero.
func NewNullBackend(width, height int) *NullBackend {
	b := &NullBackend{events: make(chan Event, 100)}
	b.setSize(width, height)
	return b
}

func (b *NullBackend) setSize(width, height int) {
	b.width, b.height = max(width, 0), max(height, 0)
	b.cells = make([]core.Cell, b.width*b.height)
	b.Clear()
}

func (b *NullBackend) bounds() core.ScreenRect {
	return core.RectFromSize(0, 0, b.height, b.width)
}

func (b *NullBackend) index(x, y int) (int, bool) {
	if !b.bounds().Contains(x, y) {
		return 0, false
	}
	return y*b.width + x, true
}

func (b *NullBackend) Init() error {
	b.Clear()
	return nil
}

// Shutdown wakes a blocked PollEvent with EventInterrupt.
func (b *NullBackend) Shutdown() {
	b.PostEvent(Event{Type: EventInterrupt})
}

func (b *NullBackend) Size() (int, int) {
	return b.width, b.height
}

func (b *NullBackend) SetCell(x, y int, cell core.Cell) {
	if i, ok := b.index(x, y); ok {
		b.cells[i] = cell
	}
}

func (b *NullBackend) GetCell(x, y int) core.Cell {
	if i, ok := b.index(x, y); ok {
		return b.cells[i]
	}
	return core.EmptyCell()
}

func (b *NullBackend) Fill(rect core.ScreenRect, cell core.Cell) {
	r := rect.Intersection(b.bounds())
	for y := r.Top; y < r.Bottom; y++ {
		row := b.cells[y*b.width : (y+1)*b.width]
		for x := r.Left; x < r.Right; x++ {
			row[x] = cell
		}
	}
}

func (b *NullBackend) Clear() {
	blank := core.EmptyCell()
	for i := range b.cells {
		b.cells[i] = blank
	}
}

func (b *NullBackend) Show() { b.shows++ }

func (b *NullBackend) HideCursor() {}

func (b *NullBackend) PollEvent() Event {
	return <-b.events
}

// PostEvent queues event. It never blocks; events beyond the queue's
// capacity are lost.
func (b *NullBackend) PostEvent(event Event) {
	select {
	case b.events <- event:
	default:
	}
}

// Shows counts calls to Show.
func (b *NullBackend) Shows() int {
	return b.shows
}

// Resize changes the screen size, blanks it and queues an EventResize.
func (b *NullBackend) Resize(width, height int) {
	b.setSize(width, height)
	b.PostEvent(Event{Type: EventResize, Width: b.width, Height: b.height})
}

// Line is row y as text without trailing blanks.
func (b *NullBackend) Line(y int) string {
	if y < 0 || y >= b.height {
		return ""
	}
	row := b.cells[y*b.width : (y+1)*b.width]
	return strings.TrimRight(core.StringFromCells(row), " ")
}

// String joins every Line with newlines.
func (b *NullBackend) String() string {
	lines := make([]string, b.height)
	for y := range lines {
		lines[y] = b.Line(y)
	}
	return strings.Join(lines, "\n")
}
