package event

import "strings"

// Native event names delivered by the host surface to the container.
const (
	Click     = "click"
	DblClick  = "dblclick"
	MouseDown = "mousedown"
	MouseUp   = "mouseup"
	MouseMove = "mousemove"
	Wheel     = "wheel"
	KeyDown   = "keydown"
	KeyUp     = "keyup"
	KeyPress  = "keypress"
	Paste     = "paste"
	Focus     = "focus"
	Blur      = "blur"
)

// Grid event names fired by the widget itself.
const (
	GridDraw            = "grid-draw"
	GridDataChange      = "grid-data-change"
	GridCellChange      = "grid-cell-change"
	GridRowChange       = "grid-row-change"
	GridColChange       = "grid-col-change"
	GridViewportChange  = "grid-viewport-change"
	GridScroll          = "grid-scroll"
	GridFocus           = "grid-focus"
	GridDecoratorChange = "grid-decorator-change"
)

// DecoratorDestroy is dispatched, bubbling, on a decorator's rendered
// content right before it is detached.
const DecoratorDestroy = "decorator-destroy"

// NativeEvents lists every native event the loop listens for on its container.
var NativeEvents = []string{
	Click, DblClick, MouseDown, MouseUp, MouseMove, Wheel,
	KeyDown, KeyUp, KeyPress, Paste, Focus, Blur,
}

// GridEvents lists every application-level event the loop listens for on
// its window target.
var GridEvents = []string{
	GridDraw, GridDataChange, GridCellChange, GridRowChange, GridColChange,
	GridViewportChange, GridScroll, GridFocus, GridDecoratorChange,
}

var nativeSet = toSet(NativeEvents)

func toSet(names []string) map[string]struct{} {
	s := make(map[string]struct{}, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// IsNative returns true if name is delivered by the host surface.
func IsNative(name string) bool {
	_, ok := nativeSet[name]
	return ok
}

// ValidName returns true if name can be bound.
// A valid name:
//   - Is not empty
//   - Contains only lowercase letters, digits, '-', '.', ':' and '_'
//   - Does not start or end with a separator
//   - Does not contain consecutive separators
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	prevSep := true
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			prevSep = false
		case strings.ContainsRune("-.:_", r):
			if prevSep {
				return false
			}
			prevSep = true
		default:
			return false
		}
	}
	return !prevSep
}
