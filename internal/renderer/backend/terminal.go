package backend

import (
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/gridcore/internal/renderer/core"
)

// Terminal is a Backend drawing to the controlling terminal through tcell.
// Drawing methods are safe for concurrent use with PollEvent.
type Terminal struct {
	mu     sync.Mutex
	screen tcell.Screen
}

// NewTerminal opens the controlling terminal. It is not touched until
// Init.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return newTerminalWithScreen(screen), nil
}

// newTerminalWithScreen wraps an existing screen, typically a simulation screen.
func newTerminalWithScreen(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen}
}

// with runs fn holding the screen lock.
func (t *Terminal) with(fn func(s tcell.Screen)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(t.screen)
}

func (t *Terminal) Init() (err error) {
	t.with(func(s tcell.Screen) {
		if err = s.Init(); err != nil {
			return
		}
		s.EnableMouse()
		s.EnablePaste()
		s.HideCursor()
	})
	return err
}

func (t *Terminal) Shutdown() { t.with(tcell.Screen.Fini) }

func (t *Terminal) Size() (w, h int) {
	t.with(func(s tcell.Screen) { w, h = s.Size() })
	return w, h
}

// SetCell skips continuation cells; tcell fills the second column of a
// wide rune itself.
func (t *Terminal) SetCell(x, y int, cell core.Cell) {
	if cell.IsContinuation() {
		return
	}
	st := convertStyle(cell.Style)
	t.with(func(s tcell.Screen) { s.SetContent(x, y, cell.Rune, cell.Combining, st) })
}

func (t *Terminal) GetCell(x, y int) (c core.Cell) {
	t.with(func(s tcell.Screen) {
		r, comb, st, w := s.GetContent(x, y) //nolint:staticcheck // GetContent is the correct API
		c = core.Cell{Rune: r, Combining: comb, Width: w, Style: convertTcellStyle(st)}
	})
	return c
}

func (t *Terminal) Fill(rect core.ScreenRect, cell core.Cell) {
	st := convertStyle(cell.Style)
	t.with(func(s tcell.Screen) {
		w, h := s.Size()
		r := rect.Intersection(core.RectFromSize(0, 0, h, w))
		for y := r.Top; y < r.Bottom; y++ {
			for x := r.Left; x < r.Right; x++ {
				s.SetContent(x, y, cell.Rune, cell.Combining, st)
			}
		}
	})
}

func (t *Terminal) Clear()      { t.with(tcell.Screen.Clear) }
func (t *Terminal) Show()       { t.with(tcell.Screen.Show) }
func (t *Terminal) HideCursor() { t.with(tcell.Screen.HideCursor) }

// PollEvent blocks for the next event. A bracketed paste is assembled
// into a single EventPaste carrying the pasted text.
func (t *Terminal) PollEvent() Event {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			// Screen finalized
			return Event{Type: EventInterrupt}
		}
		if p, ok := ev.(*tcell.EventPaste); ok && p.Start() {
			return t.collectPaste()
		}
		if out := convertEvent(ev); out.Type != EventPaste {
			return out
		}
		// A stray end marker carries nothing
	}
}

// collectPaste gathers key events up to the closing paste marker.
func (t *Terminal) collectPaste() Event {
	var text strings.Builder
	for {
		ev := t.screen.PollEvent()
		switch e := ev.(type) {
		case nil:
			return Event{Type: EventPaste, PasteText: text.String()}
		case *tcell.EventPaste:
			if !e.Start() {
				return Event{Type: EventPaste, PasteText: text.String()}
			}
		case *tcell.EventKey:
			switch e.Key() {
			case tcell.KeyRune:
				text.WriteRune(e.Rune())
			case tcell.KeyEnter:
				text.WriteByte('\n')
			case tcell.KeyTab:
				text.WriteByte('\t')
			}
		}
	}
}

// PostEvent injects an event. Only keys and interrupts can be posted.
func (t *Terminal) PostEvent(event Event) {
	var ev tcell.Event
	switch event.Type {
	case EventKey:
		ev = tcell.NewEventKey(convertToTcellKey(event.Key), event.Rune, convertToTcellMod(event.Mod))
	case EventInterrupt:
		ev = tcell.NewEventInterrupt(nil)
	default:
		return
	}
	_ = t.screen.PostEvent(ev) // best-effort; event queue may be full
}

// attrMasks pairs render attributes with tcell's.
var attrMasks = []struct {
	attr core.Attribute
	mask tcell.AttrMask
}{
	{core.AttrBold, tcell.AttrBold},
	{core.AttrDim, tcell.AttrDim},
	{core.AttrItalic, tcell.AttrItalic},
	{core.AttrUnderline, tcell.AttrUnderline},
	{core.AttrReverse, tcell.AttrReverse},
	{core.AttrStrikethrough, tcell.AttrStrikeThrough},
}

// modMasks pairs modifiers with tcell's.
var modMasks = []struct {
	mod  ModMask
	mask tcell.ModMask
}{
	{ModShift, tcell.ModShift},
	{ModCtrl, tcell.ModCtrl},
	{ModAlt, tcell.ModAlt},
	{ModMeta, tcell.ModMeta},
}

func convertColor(c core.Color) tcell.Color {
	switch {
	case c.IsDefault():
		return tcell.ColorDefault
	case c.Indexed:
		return tcell.PaletteColor(int(c.R))
	default:
		return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
	}
}

func convertStyle(s core.Style) tcell.Style {
	var mask tcell.AttrMask
	for _, a := range attrMasks {
		if s.Attributes.Has(a.attr) {
			mask |= a.mask
		}
	}
	return tcell.StyleDefault.
		Foreground(convertColor(s.Foreground)).
		Background(convertColor(s.Background)).
		Attributes(mask)
}

func convertTcellStyle(ts tcell.Style) core.Style {
	fg, bg, mask := ts.Decompose()
	s := core.Style{
		Foreground: convertTcellColor(fg),
		Background: convertTcellColor(bg),
	}
	for _, a := range attrMasks {
		if mask&a.mask != 0 {
			s.Attributes |= a.attr
		}
	}
	return s
}

func convertTcellColor(tc tcell.Color) core.Color {
	switch {
	case tc == tcell.ColorDefault:
		return core.ColorDefault
	case tc >= tcell.ColorValid && tc < tcell.ColorIsRGB:
		return core.ColorFromIndex(uint8(tc - tcell.ColorValid))
	}
	r, g, b := tc.RGB()
	return core.ColorFromRGB(uint8(r), uint8(g), uint8(b))
}

// convertEvent translates everything except paste markers, which
// PollEvent assembles, into an Event. Unknown events become EventNone.
func convertEvent(ev tcell.Event) Event {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return Event{Type: EventKey, Key: convertKey(e.Key()), Rune: e.Rune(), Mod: convertMod(e.Modifiers())}
	case *tcell.EventMouse:
		x, y := e.Position()
		return Event{
			Type:        EventMouse,
			MouseX:      x,
			MouseY:      y,
			MouseButton: convertMouseButton(e.Buttons()),
			Mod:         convertMod(e.Modifiers()),
		}
	case *tcell.EventResize:
		w, h := e.Size()
		return Event{Type: EventResize, Width: w, Height: h}
	case *tcell.EventPaste:
		return Event{Type: EventPaste}
	case *tcell.EventFocus:
		return Event{Type: EventFocus, Focused: e.Focused}
	case *tcell.EventInterrupt:
		return Event{Type: EventInterrupt}
	}
	return Event{Type: EventNone}
}

var tcellKeys = map[tcell.Key]Key{
	tcell.KeyRune:       KeyRune,
	tcell.KeyEscape:     KeyEscape,
	tcell.KeyEnter:      KeyEnter,
	tcell.KeyTab:        KeyTab,
	tcell.KeyBackspace:  KeyBackspace,
	tcell.KeyBackspace2: KeyBackspace,
	tcell.KeyDelete:     KeyDelete,
	tcell.KeyHome:       KeyHome,
	tcell.KeyEnd:        KeyEnd,
	tcell.KeyPgUp:       KeyPageUp,
	tcell.KeyPgDn:       KeyPageDown,
	tcell.KeyUp:         KeyUp,
	tcell.KeyDown:       KeyDown,
	tcell.KeyLeft:       KeyLeft,
	tcell.KeyRight:      KeyRight,
	tcell.KeyCtrlC:      KeyCtrlC,
	tcell.KeyCtrlL:      KeyCtrlL,
}

func convertKey(k tcell.Key) Key {
	if key, ok := tcellKeys[k]; ok {
		return key
	}
	return KeyNone
}

// convertToTcellKey inverts tcellKeys. Backspace maps to the DEL code
// most terminals send.
func convertToTcellKey(k Key) tcell.Key {
	if k == KeyBackspace {
		return tcell.KeyBackspace2
	}
	for tk, key := range tcellKeys {
		if key == k {
			return tk
		}
	}
	return tcell.KeyRune
}

func convertMod(m tcell.ModMask) ModMask {
	var out ModMask
	for _, p := range modMasks {
		if m&p.mask != 0 {
			out |= p.mod
		}
	}
	return out
}

func convertToTcellMod(m ModMask) tcell.ModMask {
	var out tcell.ModMask
	for _, p := range modMasks {
		if m.Has(p.mod) {
			out |= p.mask
		}
	}
	return out
}

// mouseButtons is in priority order: when several bits are set the first
// match is reported. tcell numbers the right button 2.
var mouseButtons = []struct {
	mask   tcell.ButtonMask
	button MouseButton
}{
	{tcell.Button1, MouseLeft},
	{tcell.Button2, MouseRight},
	{tcell.Button3, MouseMiddle},
	{tcell.WheelUp, MouseWheelUp},
	{tcell.WheelDown, MouseWheelDown},
	{tcell.WheelLeft, MouseWheelLeft},
	{tcell.WheelRight, MouseWheelRight},
}

func convertMouseButton(b tcell.ButtonMask) MouseButton {
	for _, m := range mouseButtons {
		if b&m.mask != 0 {
			return m.button
		}
	}
	return MouseNone
}
