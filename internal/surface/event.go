package surface

import "sync/atomic"

// Modifier is a bitmask of keyboard modifiers held during an event.
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Has returns true if the mask contains the given modifier.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// Event is a platform or application event travelling through the tree.
type Event struct {
	// Type is the event name, e.g. "click" or "grid-draw".
	Type string

	// Bubbles reports whether the event propagates to ancestors.
	Bubbles bool

	// Target is the element the event was dispatched on.
	// It is nil for events dispatched on the Document.
	Target *Element

	// CurrentTarget is the element whose listeners are running.
	// It is nil while Document listeners run.
	CurrentTarget *Element

	// Detail carries application data for custom events.
	Detail any

	// Pointer fields.
	X, Y   int
	Button int

	// Wheel fields, in whole rows and columns. Positive is down and right.
	DeltaX, DeltaY int

	// Keyboard fields.
	Key  string
	Rune rune
	Mods Modifier

	// Text carries pasted content.
	Text string

	stopped     bool
	dispatching int
	marks       map[string]struct{}
	after       []func()
}

// NewEvent creates a non-bubbling event of the given type.
func NewEvent(typ string) *Event {
	return &Event{Type: typ}
}

// NewCustomEvent creates an event carrying detail, optionally bubbling.
func NewCustomEvent(typ string, bubbles bool, detail any) *Event {
	return &Event{Type: typ, Bubbles: bubbles, Detail: detail}
}

// StopPropagation prevents the event from reaching further ancestors.
// Listeners on the current target still run.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// PropagationStopped returns true if StopPropagation was called.
func (e *Event) PropagationStopped() bool {
	return e.stopped
}

// Dispatching returns true while the event is travelling through the tree.
func (e *Event) Dispatching() bool {
	return e.dispatching > 0
}

// Mark records key against the current propagation and reports whether it
// was newly set. Marks are cleared when the outermost dispatch of the event
// returns, so observers can run once per propagation regardless of how many
// listeners on the path forward the event to them.
func (e *Event) Mark(key string) bool {
	if e.marks == nil {
		e.marks = make(map[string]struct{})
	}
	if _, ok := e.marks[key]; ok {
		return false
	}
	e.marks[key] = struct{}{}
	return true
}

// AfterDispatch schedules fn to run once the outermost dispatch of the
// event returns. If the event is not being dispatched fn runs immediately.
func (e *Event) AfterDispatch(fn func()) {
	if e.dispatching == 0 {
		fn()
		return
	}
	e.after = append(e.after, fn)
}

func (e *Event) beginDispatch() {
	e.dispatching++
}

func (e *Event) endDispatch() {
	e.dispatching--
	if e.dispatching > 0 {
		return
	}
	e.marks = nil
	after := e.after
	e.after = nil
	for _, fn := range after {
		fn()
	}
}

// Listener receives events dispatched on a target.
type Listener func(ev *Event)

// ListenerID identifies a registered listener.
type ListenerID uint64

var nextListenerID atomic.Uint64

type listener struct {
	id  ListenerID
	typ string
	fn  Listener
}

// eventTarget is shared by Element and Document.
type eventTarget struct {
	listeners []listener
}

// AddEventListener registers fn for events of the given type.
func (t *eventTarget) AddEventListener(typ string, fn Listener) ListenerID {
	id := ListenerID(nextListenerID.Add(1))
	t.listeners = append(t.listeners, listener{id: id, typ: typ, fn: fn})
	return id
}

// RemoveEventListener removes a listener by ID.
// Returns false if no such listener is registered.
func (t *eventTarget) RemoveEventListener(id ListenerID) bool {
	for i, l := range t.listeners {
		if l.id == id {
			t.listeners = append(t.listeners[:i], t.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// ListenerCount returns the number of listeners registered for typ.
// An empty typ counts every listener.
func (t *eventTarget) ListenerCount(typ string) int {
	if typ == "" {
		return len(t.listeners)
	}
	n := 0
	for _, l := range t.listeners {
		if l.typ == typ {
			n++
		}
	}
	return n
}

// invoke runs a snapshot of the listeners for ev.Type.
func (t *eventTarget) invoke(ev *Event) {
	var matched []Listener
	for _, l := range t.listeners {
		if l.typ == ev.Type {
			matched = append(matched, l.fn)
		}
	}
	for _, fn := range matched {
		fn(ev)
	}
}
