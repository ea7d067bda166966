package event

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dshills/gridcore/internal/event/dispatch"
	"github.com/dshills/gridcore/internal/surface"
)

const (
	markIntercepted = "event-loop.intercepted"
	markExit        = "event-loop.exit"
)

// Handler handles an event resolved by the loop.
type Handler func(ev *surface.Event) error

// Interceptor observes every dispatched event before handlers run.
type Interceptor func(ev *surface.Event)

// ExitListener is notified when dispatch returns to the outermost frame.
type ExitListener func(ev *surface.Event)

// Target is an input source the loop can listen on.
type Target interface {
	AddEventListener(typ string, fn surface.Listener) surface.ListenerID
	RemoveEventListener(id surface.ListenerID) bool
}

// PointerTarget is a Target whose pointer interaction can be forced on.
type PointerTarget interface {
	Target
	SetPointerEvents(pe surface.PointerEvents)
}

type binding struct {
	name     string
	element  PointerTarget
	handler  Handler
	attached Target
	listener surface.ListenerID
}

type attachment struct {
	target Target
	id     surface.ListenerID
}

// Loop is the grid's central event dispatcher.
//
// Every dispatch runs inside a frame: the depth counter is incremented,
// interceptors run in registration order, matching handlers run, and the
// counter is decremented on every exit path. Exit listeners run when a frame
// brings the depth back to zero. For events travelling through the surface
// they run once the propagation has finished.
//
// Loop is not safe for concurrent use; all calls must happen on the UI
// goroutine.
type Loop struct {
	container Target
	window    Target
	own       []attachment

	interceptors *registry[Interceptor]
	exits        *registry[ExitListener]
	bindings     *registry[*binding]

	depth    int
	maxDepth int
	frames   uint64
	exiting  bool

	executor *dispatch.Executor
	logger   *slog.Logger
	onError  func(error)
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger used to report failures of natively
// dispatched events.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithErrorHandler sets a callback receiving failures of natively
// dispatched events, which have no caller to return them to.
func WithErrorHandler(fn func(error)) Option {
	return func(l *Loop) {
		l.onError = fn
	}
}

// New creates an event loop with no container.
func New(opts ...Option) *Loop {
	l := &Loop{
		interceptors: newRegistry[Interceptor](),
		exits:        newRegistry[ExitListener](),
		bindings:     newRegistry[*binding](),
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.executor = dispatch.NewExecutor(dispatch.WithPanicHandler(l.logPanic))
	return l
}

func (l *Loop) logPanic(ev any, value any, stack []byte) {
	typ := ""
	if e, ok := ev.(*surface.Event); ok {
		typ = e.Type
	}
	l.logger.Debug("callback panicked", "event", typ, "panic", value, "stack", string(stack))
}

// IsRunning returns true while any dispatch frame is open.
func (l *Loop) IsRunning() bool {
	return l.depth > 0
}

// Depth returns the number of open dispatch frames.
func (l *Loop) Depth() int {
	return l.depth
}

// Container returns the current input container, or nil.
func (l *Loop) Container() Target {
	return l.container
}

// SetContainer replaces the input container. The loop's own listeners and
// every container-scoped native binding move to the new container.
// Passing nil detaches the loop from any container.
func (l *Loop) SetContainer(t Target) {
	if isNilTarget(t) {
		t = nil
	}
	l.detachOwn(l.container)
	for _, e := range l.bindings.snapshot() {
		b := e.value
		if b.element == nil && b.attached != nil {
			b.attached.RemoveEventListener(b.listener)
			b.attached = nil
		}
	}

	l.container = t
	if t == nil {
		return
	}

	for _, name := range NativeEvents {
		id := t.AddEventListener(name, l.onContainerEvent)
		l.own = append(l.own, attachment{target: t, id: id})
	}
	for _, e := range l.bindings.snapshot() {
		if e.value.element == nil && IsNative(e.value.name) {
			l.attach(e.id, e.value, t)
		}
	}
}

// SetWindow attaches the loop to a window-level target so grid events
// dispatched there by the host pass through interceptors and bindings.
func (l *Loop) SetWindow(t Target) {
	if isNilTarget(t) {
		t = nil
	}
	l.detachOwn(l.window)
	l.window = t
	if t == nil {
		return
	}
	for _, name := range GridEvents {
		id := t.AddEventListener(name, l.onWindowEvent)
		l.own = append(l.own, attachment{target: t, id: id})
	}
}

// Bind registers handler for name. Native names are attached to the
// container, now or once one is set. Other names are resolved when fired.
func (l *Loop) Bind(name string, handler Handler) (Handle, error) {
	if !ValidName(name) {
		return Handle{}, fmt.Errorf("%w: %q", ErrInvalidEventName, name)
	}
	if handler == nil {
		return Handle{}, ErrNilHandler
	}

	b := &binding{name: name, handler: handler}
	id := l.bindings.add(b)
	if l.container != nil && IsNative(name) {
		l.attach(id, b, l.container)
	}
	return Handle{id: id, kind: kindBinding, loop: l}, nil
}

// BindElement registers handler for name on a specific element,
// independent of the container. The element's pointer events are forced
// on so it can receive input.
func (l *Loop) BindElement(name string, el PointerTarget, handler Handler) (Handle, error) {
	if !ValidName(name) {
		return Handle{}, fmt.Errorf("%w: %q", ErrInvalidEventName, name)
	}
	if el == nil || isNilTarget(el) {
		return Handle{}, ErrNilTarget
	}
	if handler == nil {
		return Handle{}, ErrNilHandler
	}

	el.SetPointerEvents(surface.PointerAll)
	b := &binding{name: name, element: el, handler: handler}
	id := l.bindings.add(b)
	l.attach(id, b, el)
	return Handle{id: id, kind: kindBinding, loop: l}, nil
}

// AddInterceptor registers fn to run before handler resolution for every
// dispatched event.
func (l *Loop) AddInterceptor(fn Interceptor) Handle {
	if fn == nil {
		return Handle{}
	}
	id := l.interceptors.add(fn)
	return Handle{id: id, kind: kindInterceptor, loop: l}
}

// AddExitListener registers fn to run when dispatch returns to the
// outermost frame.
func (l *Loop) AddExitListener(fn ExitListener) Handle {
	if fn == nil {
		return Handle{}
	}
	id := l.exits.add(fn)
	return Handle{id: id, kind: kindExit, loop: l}
}

// Fire dispatches a new application event with the given name.
// Failures of interceptors, handlers and exit listeners are joined and
// returned after the frame has closed.
func (l *Loop) Fire(name string) error {
	if !ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidEventName, name)
	}
	return l.FireEvent(surface.NewEvent(name))
}

// FireEvent dispatches ev through the loop. Handlers bound without an
// element for ev.Type run. A nil event is dispatched as an unnamed event.
func (l *Loop) FireEvent(ev *surface.Event) error {
	if ev == nil {
		ev = surface.NewEvent("")
	}
	intercept := true
	if ev.Dispatching() {
		intercept = ev.Mark(markIntercepted)
	}
	return l.frame(ev, intercept, l.named(ev.Type))
}

// Close detaches the loop from its targets and drops every registration.
func (l *Loop) Close() {
	l.SetContainer(nil)
	l.SetWindow(nil)
	for _, e := range l.bindings.snapshot() {
		l.unbind(Handle{id: e.id, kind: kindBinding, loop: l})
	}
	l.interceptors.clear()
	l.exits.clear()
}

// Stats returns dispatch statistics.
func (l *Loop) Stats() Stats {
	return Stats{
		Frames:        l.frames,
		MaxDepth:      l.maxDepth,
		Bindings:      l.bindings.len(),
		Interceptors:  l.interceptors.len(),
		ExitListeners: l.exits.len(),
		Handlers:      l.executor.Stats(),
	}
}

// Stats contains statistics for a loop.
type Stats struct {
	// Frames is the number of dispatch frames opened.
	Frames uint64

	// MaxDepth is the deepest nesting observed.
	MaxDepth int

	// Bindings, Interceptors and ExitListeners count live registrations.
	Bindings      int
	Interceptors  int
	ExitListeners int

	// Handlers aggregates callback executions.
	Handlers dispatch.Stats
}

func (l *Loop) onContainerEvent(ev *surface.Event) {
	l.report(l.frame(ev, ev.Mark(markIntercepted), nil))
}

func (l *Loop) onWindowEvent(ev *surface.Event) {
	l.report(l.frame(ev, ev.Mark(markIntercepted), l.named(ev.Type)))
}

func (l *Loop) attach(id uint64, b *binding, t Target) {
	b.attached = t
	b.listener = t.AddEventListener(b.name, func(ev *surface.Event) {
		if !l.bindings.has(id) {
			return
		}
		l.report(l.frame(ev, ev.Mark(markIntercepted), []entry[*binding]{{id: id, value: b}}))
	})
}

func (l *Loop) detachOwn(t Target) {
	if t == nil {
		return
	}
	kept := l.own[:0]
	for _, a := range l.own {
		if a.target == t {
			a.target.RemoveEventListener(a.id)
			continue
		}
		kept = append(kept, a)
	}
	l.own = kept
}

// named returns the element-independent bindings for name.
func (l *Loop) named(name string) []entry[*binding] {
	var out []entry[*binding]
	for _, e := range l.bindings.snapshot() {
		if e.value.element == nil && e.value.name == name {
			out = append(out, e)
		}
	}
	return out
}

// frame runs one dispatch. The depth counter is restored on every exit path.
func (l *Loop) frame(ev *surface.Event, intercept bool, handlers []entry[*binding]) (err error) {
	l.depth++
	l.frames++
	if l.depth > l.maxDepth {
		l.maxDepth = l.depth
	}
	defer func() {
		l.depth--
		if l.depth == 0 {
			err = errors.Join(err, l.exit(ev))
		}
	}()

	var errs []error
	if intercept {
		for _, e := range l.interceptors.snapshot() {
			fn := e.value
			res := l.executor.Execute(ev, func() error {
				fn(ev)
				return nil
			})
			errs = appendFailure(errs, ev, StageInterceptor, e.id, res)
		}
	}
	for _, e := range handlers {
		// Skip bindings removed by an earlier callback of this frame.
		if !l.bindings.has(e.id) {
			continue
		}
		h := e.value.handler
		res := l.executor.Execute(ev, func() error {
			return h(ev)
		})
		errs = appendFailure(errs, ev, StageHandler, e.id, res)
	}
	return errors.Join(errs...)
}

// exit notifies exit listeners for a frame that returned to depth zero.
// Events still propagating through the surface defer notification until
// the propagation ends. Frames opened by exit listeners do not notify.
func (l *Loop) exit(ev *surface.Event) error {
	if l.exiting || l.exits.len() == 0 {
		return nil
	}
	if ev.Dispatching() {
		if ev.Mark(markExit) {
			ev.AfterDispatch(func() {
				l.report(l.notifyExit(ev))
			})
		}
		return nil
	}
	return l.notifyExit(ev)
}

func (l *Loop) notifyExit(ev *surface.Event) error {
	l.exiting = true
	defer func() {
		l.exiting = false
	}()

	var errs []error
	for _, e := range l.exits.snapshot() {
		fn := e.value
		res := l.executor.Execute(ev, func() error {
			fn(ev)
			return nil
		})
		errs = appendFailure(errs, ev, StageExit, e.id, res)
	}
	return errors.Join(errs...)
}

func (l *Loop) unbind(h Handle) {
	switch h.kind {
	case kindBinding:
		b, ok := l.bindings.remove(h.id)
		if ok && b.attached != nil {
			b.attached.RemoveEventListener(b.listener)
			b.attached = nil
		}
	case kindInterceptor:
		l.interceptors.remove(h.id)
	case kindExit:
		l.exits.remove(h.id)
	}
}

// report surfaces failures that have no caller to return to.
func (l *Loop) report(err error) {
	if err == nil {
		return
	}
	l.logger.Error("event dispatch failed", "err", err)
	if l.onError != nil {
		l.onError(err)
	}
}

func appendFailure(errs []error, ev *surface.Event, stage Stage, id uint64, res dispatch.Result) []error {
	src := Source{Event: ev.Type, Stage: stage, ID: id}
	switch {
	case res.Panicked:
		return append(errs, &PanicError{Source: src, Value: res.PanicValue, Stack: string(res.PanicStack)})
	case res.Error != nil:
		return append(errs, &HandlerError{Source: src, Err: res.Error})
	}
	return errs
}

func isNilTarget(t Target) bool {
	switch v := t.(type) {
	case nil:
		return true
	case *surface.Element:
		return v == nil
	case *surface.Document:
		return v == nil
	}
	return false
}
