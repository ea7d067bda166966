// Package backend abstracts the output device the grid paints into and the
// raw platform events it reads back.
package backend

import "github.com/dshills/gridcore/internal/renderer/core"

// EventType says which fields of an Event are set.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventMouse
	EventResize
	EventPaste
	EventFocus
	EventInterrupt
)

// Event is one unit of raw input, before it is translated into surface
// events.
type Event struct {
	Type EventType

	Key  Key
	Rune rune // KeyRune only
	Mod  ModMask

	// MouseButton is MouseNone for plain motion.
	MouseX, MouseY int
	MouseButton    MouseButton

	Width, Height int // EventResize

	Focused bool // EventFocus

	PasteText string // EventPaste
}

// Key is a named key. Printable input is KeyRune with Event.Rune set.
type Key int

const (
	KeyNone Key = iota
	KeyRune
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyCtrlC
	KeyCtrlL
)

var keyNames = map[Key]string{
	KeyEscape:    "Escape",
	KeyEnter:     "Enter",
	KeyTab:       "Tab",
	KeyBackspace: "Backspace",
	KeyDelete:    "Delete",
	KeyHome:      "Home",
	KeyEnd:       "End",
	KeyPageUp:    "PageUp",
	KeyPageDown:  "PageDown",
	KeyUp:        "ArrowUp",
	KeyDown:      "ArrowDown",
	KeyLeft:      "ArrowLeft",
	KeyRight:     "ArrowRight",
	KeyCtrlC:     "Ctrl+C",
	KeyCtrlL:     "Ctrl+L",
}

// Name is the DOM KeyboardEvent.key value for k, such as "ArrowUp".
// KeyRune and KeyNone have no name.
func (k Key) Name() string {
	return keyNames[k]
}

// ModMask is a set of held modifier keys.
type ModMask int

const (
	ModNone  ModMask = 0
	ModShift ModMask = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Has reports whether mod is held.
func (m ModMask) Has(mod ModMask) bool {
	return m&mod != 0
}

// MouseButton is the button a mouse event reports. Wheel motion is
// reported as buttons.
type MouseButton int

const (
	MouseNone MouseButton = iota
	MouseLeft
	MouseMiddle
	MouseRight
	MouseWheelUp
	MouseWheelDown
	MouseWheelLeft
	MouseWheelRight
)

// IsWheel reports whether b is one of the wheel directions.
func (b MouseButton) IsWheel() bool {
	return b >= MouseWheelUp
}

// Backend is a screen the grid paints into and the source of the raw
// input it dispatches. Coordinates are columns (x) and rows (y) from the
// top-left corner; writes outside Size are ignored.
type Backend interface {
	Init() error
	Shutdown()
	Size() (width, height int)

	SetCell(x, y int, cell core.Cell)
	GetCell(x, y int) core.Cell
	Fill(rect core.ScreenRect, cell core.Cell)
	Clear()

	// Show makes everything drawn since the last Show visible.
	Show()
	HideCursor()

	// PollEvent blocks for the next event. After Shutdown it returns
	// EventInterrupt.
	PollEvent() Event
	PostEvent(event Event)
}
