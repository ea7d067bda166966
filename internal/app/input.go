package app

import (
	"github.com/dshills/gridcore/internal/event"
	"github.com/dshills/gridcore/internal/renderer/backend"
	"github.com/dshills/gridcore/internal/surface"
)

// Dispatch translates a backend input event into surface events and
// dispatches them into the visual tree, where the loop picks them up on the
// container. Resize and interrupt events are not input and are ignored.
func (g *Grid) Dispatch(ev backend.Event) {
	switch ev.Type {
	case backend.EventKey:
		g.dispatchKey(ev)
	case backend.EventMouse:
		g.dispatchMouse(ev)
	case backend.EventPaste:
		se := surface.NewEvent(event.Paste)
		se.Bubbles = true
		se.Text = ev.PasteText
		g.container.DispatchEvent(se)
	case backend.EventFocus:
		name := event.Blur
		if ev.Focused {
			name = event.Focus
		}
		g.container.DispatchEvent(surface.NewEvent(name))
	}
}

func (g *Grid) dispatchKey(ev backend.Event) {
	mods := convertMods(ev.Mod)
	key := ev.Key.Name()
	if ev.Key == backend.KeyRune {
		key = string(ev.Rune)
	}

	down := &surface.Event{Type: event.KeyDown, Bubbles: true, Key: key, Rune: ev.Rune, Mods: mods}
	g.container.DispatchEvent(down)

	if ev.Key == backend.KeyRune {
		press := &surface.Event{Type: event.KeyPress, Bubbles: true, Key: key, Rune: ev.Rune, Mods: mods}
		g.container.DispatchEvent(press)
	}

	// Terminals report no key releases
	up := &surface.Event{Type: event.KeyUp, Bubbles: true, Key: key, Rune: ev.Rune, Mods: mods}
	g.container.DispatchEvent(up)
}

func (g *Grid) dispatchMouse(ev backend.Event) {
	target := g.targetAt(ev.MouseX, ev.MouseY)
	mk := func(name string) *surface.Event {
		return &surface.Event{
			Type:    name,
			Bubbles: true,
			X:       ev.MouseX,
			Y:       ev.MouseY,
			Button:  int(ev.MouseButton),
			Mods:    convertMods(ev.Mod),
		}
	}

	if ev.MouseButton.IsWheel() {
		se := mk(event.Wheel)
		switch ev.MouseButton {
		case backend.MouseWheelUp:
			se.DeltaY = -1
		case backend.MouseWheelDown:
			se.DeltaY = 1
		case backend.MouseWheelLeft:
			se.DeltaX = -1
		case backend.MouseWheelRight:
			se.DeltaX = 1
		}
		target.DispatchEvent(se)
		return
	}

	// Terminals report button state, not transitions
	prev := g.buttons
	g.buttons = ev.MouseButton
	switch {
	case prev == backend.MouseNone && ev.MouseButton != backend.MouseNone:
		target.DispatchEvent(mk(event.MouseDown))
		if ev.MouseButton == backend.MouseLeft {
			target.DispatchEvent(mk(event.Click))
		}
	case prev != backend.MouseNone && ev.MouseButton == backend.MouseNone:
		up := mk(event.MouseUp)
		up.Button = int(prev)
		target.DispatchEvent(up)
	default:
		target.DispatchEvent(mk(event.MouseMove))
	}
}

// targetAt returns the element under (x, y) if it belongs to the grid,
// else the container.
func (g *Grid) targetAt(x, y int) *surface.Element {
	if el := g.doc.ElementAt(float64(x), float64(y)); el != nil && g.container.Contains(el) {
		return el
	}
	return g.container
}

func convertMods(m backend.ModMask) surface.Modifier {
	var out surface.Modifier
	if m.Has(backend.ModShift) {
		out |= surface.ModShift
	}
	if m.Has(backend.ModCtrl) {
		out |= surface.ModCtrl
	}
	if m.Has(backend.ModAlt) {
		out |= surface.ModAlt
	}
	if m.Has(backend.ModMeta) {
		out |= surface.ModMeta
	}
	return out
}
