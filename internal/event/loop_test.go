package event

import (
	"errors"
	"testing"

	"github.com/dshills/gridcore/internal/surface"
)

// newTestLoop returns a loop bound to a container attached to a document
// that also serves as the window target.
func newTestLoop(t *testing.T) (*Loop, *surface.Document, *surface.Element) {
	t.Helper()
	doc := surface.NewDocument()
	container := doc.CreateElement("div")
	doc.Body().AppendChild(container)

	loop := New()
	loop.SetContainer(container)
	loop.SetWindow(doc)
	return loop, doc, container
}

func TestLoop_InterceptsEveryNativeEvent(t *testing.T) {
	loop, _, container := newTestLoop(t)

	for _, name := range NativeEvents {
		t.Run(name, func(t *testing.T) {
			var called int
			h := loop.AddInterceptor(func(ev *surface.Event) {
				called++
			})
			defer h.Unbind()

			container.DispatchEvent(surface.NewCustomEvent(name, true, nil))
			if called == 0 {
				t.Errorf("interceptor not called for %s", name)
			}
		})
	}
}

func TestLoop_InterceptsEveryGridEvent(t *testing.T) {
	loop, doc, _ := newTestLoop(t)

	for _, name := range GridEvents {
		t.Run(name, func(t *testing.T) {
			var called int
			h := loop.AddInterceptor(func(ev *surface.Event) {
				called++
			})
			defer h.Unbind()

			doc.DispatchEvent(surface.NewCustomEvent(name, true, nil))
			if called == 0 {
				t.Errorf("interceptor not called for %s", name)
			}
		})
	}
}

func TestLoop_SetContainerAddsListeners(t *testing.T) {
	doc := surface.NewDocument()
	div := doc.CreateElement("div")

	loop := New()
	loop.SetContainer(div)

	if div.ListenerCount("") == 0 {
		t.Error("expected listeners on container")
	}
	if div.ListenerCount(Click) != 1 {
		t.Errorf("click listeners = %d, want 1", div.ListenerCount(Click))
	}
}

func TestLoop_SetContainerMovesBindings(t *testing.T) {
	doc := surface.NewDocument()
	first := doc.CreateElement("div")
	second := doc.CreateElement("div")

	loop := New()
	loop.SetContainer(first)

	var calls int
	if _, err := loop.Bind(Click, func(ev *surface.Event) error {
		calls++
		return nil
	}); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	loop.SetContainer(second)

	if first.ListenerCount("") != 0 {
		t.Errorf("old container still has %d listeners", first.ListenerCount(""))
	}

	first.DispatchEvent(surface.NewEvent(Click))
	if calls != 0 {
		t.Errorf("handler ran for old container")
	}
	second.DispatchEvent(surface.NewEvent(Click))
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	loop.SetContainer(nil)
	if second.ListenerCount("") != 0 {
		t.Errorf("detached container still has %d listeners", second.ListenerCount(""))
	}
}

func TestLoop_BindBeforeContainer(t *testing.T) {
	doc := surface.NewDocument()
	div := doc.CreateElement("div")
	loop := New()

	var calls int
	if _, err := loop.Bind(KeyDown, func(ev *surface.Event) error {
		calls++
		return nil
	}); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	loop.SetContainer(div)
	div.DispatchEvent(surface.NewEvent(KeyDown))

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestLoop_AddRemoveInterceptor(t *testing.T) {
	loop := New()
	var calls int
	h := loop.AddInterceptor(func(ev *surface.Event) {
		calls++
	})

	if err := loop.Fire("test-event"); err != nil {
		t.Fatalf("Fire: %v", err)
	}
	h.Unbind()
	if err := loop.Fire("test-event"); err != nil {
		t.Fatalf("Fire: %v", err)
	}

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestLoop_InterceptorBeforeHandler(t *testing.T) {
	loop := New()

	interceptorCalled := false
	loop.AddInterceptor(func(ev *surface.Event) {
		interceptorCalled = true
	})

	interceptorCalledFirst := false
	if _, err := loop.Bind("test-event", func(ev *surface.Event) error {
		interceptorCalledFirst = interceptorCalled
		return nil
	}); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	if err := loop.Fire("test-event"); err != nil {
		t.Fatalf("Fire: %v", err)
	}
	if !interceptorCalledFirst {
		t.Error("interceptor should run before handler")
	}
}

func TestLoop_InterceptorOrder(t *testing.T) {
	loop := New()
	var order []int
	for i := 1; i <= 3; i++ {
		loop.AddInterceptor(func(ev *surface.Event) {
			order = append(order, i)
		})
	}

	_ = loop.Fire("ordered")

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("order = %v, want [1 2 3]", order)
	}
}

func TestLoop_IsRunning(t *testing.T) {
	loop := New()

	if loop.IsRunning() {
		t.Error("loop should not be running outside dispatch")
	}

	var inLoop bool
	loop.AddInterceptor(func(ev *surface.Event) {
		inLoop = loop.IsRunning()
	})
	_ = loop.FireEvent(surface.NewEvent(""))

	if !inLoop {
		t.Error("loop should be running during dispatch")
	}
	if loop.IsRunning() {
		t.Error("loop should not be running after dispatch")
	}
}

func TestLoop_NestedFireKeepsRunning(t *testing.T) {
	loop := New()

	var afterInner bool
	var innerDepth int
	mustBind(t, loop, "inner", func(ev *surface.Event) error {
		innerDepth = loop.Depth()
		return nil
	})
	mustBind(t, loop, "outer", func(ev *surface.Event) error {
		if err := loop.Fire("inner"); err != nil {
			return err
		}
		afterInner = loop.IsRunning()
		return nil
	})

	if err := loop.Fire("outer"); err != nil {
		t.Fatalf("Fire: %v", err)
	}

	if !afterInner {
		t.Error("loop should still be running after nested fire returns")
	}
	if innerDepth != 2 {
		t.Errorf("inner depth = %d, want 2", innerDepth)
	}
	if loop.IsRunning() {
		t.Error("loop should not be running after outer fire")
	}
	if loop.Stats().MaxDepth != 2 {
		t.Errorf("MaxDepth = %d, want 2", loop.Stats().MaxDepth)
	}
}

func TestLoop_ExitListener(t *testing.T) {
	loop := New()

	var got []*surface.Event
	h := loop.AddExitListener(func(ev *surface.Event) {
		got = append(got, ev)
	})

	ev := surface.NewEvent("")
	if err := loop.FireEvent(ev); err != nil {
		t.Fatalf("FireEvent: %v", err)
	}

	if len(got) != 1 || got[0] != ev {
		t.Fatalf("exit listener calls = %v, want the fired event once", got)
	}

	h.Unbind()
	_ = loop.FireEvent(ev)
	if len(got) != 1 {
		t.Errorf("unbound exit listener was called")
	}
}

func TestLoop_ExitListenerOnlyForOutermost(t *testing.T) {
	loop := New()

	var exits []string
	loop.AddExitListener(func(ev *surface.Event) {
		exits = append(exits, ev.Type)
	})
	mustBind(t, loop, "inner", func(ev *surface.Event) error {
		if len(exits) != 0 {
			t.Error("exit listener ran during nested dispatch")
		}
		return nil
	})
	mustBind(t, loop, "outer", func(ev *surface.Event) error {
		return loop.Fire("inner")
	})

	_ = loop.Fire("outer")

	if len(exits) != 1 || exits[0] != "outer" {
		t.Errorf("exits = %v, want [outer]", exits)
	}
}

func TestLoop_FireFromExitListenerDoesNotRecurse(t *testing.T) {
	loop := New()

	var exits int
	loop.AddExitListener(func(ev *surface.Event) {
		exits++
		_ = loop.Fire("again")
	})

	_ = loop.Fire("first")

	if exits != 1 {
		t.Errorf("exits = %d, want 1", exits)
	}
	if loop.IsRunning() {
		t.Error("loop left running")
	}
}

func TestLoop_BindFireUnbind(t *testing.T) {
	loop := New()

	var wasInLoop bool
	mustBind(t, loop, "test-event", func(ev *surface.Event) error {
		wasInLoop = loop.IsRunning()
		return nil
	})
	var calls int
	h := mustBind(t, loop, "test-event", func(ev *surface.Event) error {
		calls++
		return nil
	})

	_ = loop.Fire("test-event")
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if !wasInLoop {
		t.Error("handler should run inside the loop")
	}

	h.Unbind()
	_ = loop.Fire("test-event")
	if calls != 1 {
		t.Errorf("unbound handler was called")
	}

	// A second unbind is a no-op.
	h.Unbind()
	Handle{}.Unbind()
}

func TestLoop_BindElement(t *testing.T) {
	loop := New()
	doc := surface.NewDocument()
	div := doc.CreateElement("div")

	var wasInLoop bool
	if _, err := loop.BindElement(Click, div, func(ev *surface.Event) error {
		wasInLoop = loop.IsRunning()
		return nil
	}); err != nil {
		t.Fatalf("BindElement: %v", err)
	}
	var calls int
	h, err := loop.BindElement(Click, div, func(ev *surface.Event) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("BindElement: %v", err)
	}

	click := surface.NewEvent(Click)
	div.DispatchEvent(click)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if !wasInLoop {
		t.Error("handler should run inside the loop")
	}

	h.Unbind()
	div.DispatchEvent(click)
	if calls != 1 {
		t.Errorf("unbound handler was called")
	}
}

func TestLoop_BindElementForcesPointerEvents(t *testing.T) {
	loop := New()
	doc := surface.NewDocument()
	div := doc.CreateElement("div")
	div.SetPointerEvents(surface.PointerNone)

	if _, err := loop.BindElement(Click, div, func(ev *surface.Event) error { return nil }); err != nil {
		t.Fatalf("BindElement: %v", err)
	}

	if div.PointerEvents() != surface.PointerAll {
		t.Errorf("pointer events = %v, want all", div.PointerEvents())
	}
}

func TestLoop_ContainerBindingReceivesBubbledEvents(t *testing.T) {
	loop, doc, container := newTestLoop(t)
	div := doc.CreateElement("div")
	container.AppendChild(div)

	var wasInLoop bool
	mustBind(t, loop, Click, func(ev *surface.Event) error {
		wasInLoop = loop.IsRunning()
		return nil
	})
	var calls int
	h := mustBind(t, loop, Click, func(ev *surface.Event) error {
		calls++
		return nil
	})

	click := surface.NewCustomEvent(Click, true, nil)
	div.DispatchEvent(click)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if !wasInLoop {
		t.Error("handler should run inside the loop")
	}

	h.Unbind()
	div.DispatchEvent(click)
	if calls != 1 {
		t.Errorf("unbound handler was called")
	}
}

func TestLoop_OncePerPropagation(t *testing.T) {
	loop, doc, container := newTestLoop(t)
	child := doc.CreateElement("div")
	container.AppendChild(child)

	var trace []string
	loop.AddInterceptor(func(ev *surface.Event) {
		trace = append(trace, "intercept")
	})
	loop.AddExitListener(func(ev *surface.Event) {
		trace = append(trace, "exit")
	})
	if _, err := loop.BindElement(Click, child, func(ev *surface.Event) error {
		trace = append(trace, "element")
		return nil
	}); err != nil {
		t.Fatalf("BindElement: %v", err)
	}
	mustBind(t, loop, Click, func(ev *surface.Event) error {
		trace = append(trace, "container")
		return nil
	})

	child.DispatchEvent(surface.NewCustomEvent(Click, true, nil))

	want := []string{"intercept", "element", "container", "exit"}
	if len(trace) != len(want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("trace = %v, want %v", trace, want)
		}
	}
}

func TestLoop_WindowGridEventRunsNamedBindings(t *testing.T) {
	loop, doc, _ := newTestLoop(t)

	var calls int
	mustBind(t, loop, GridDraw, func(ev *surface.Event) error {
		calls++
		return nil
	})

	doc.DispatchEvent(surface.NewEvent(GridDraw))
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestLoop_HandlerErrorClosesFrame(t *testing.T) {
	loop := New()
	boom := errors.New("boom")

	var exits, after int
	loop.AddExitListener(func(ev *surface.Event) {
		exits++
	})
	mustBind(t, loop, "fail", func(ev *surface.Event) error {
		return boom
	})
	mustBind(t, loop, "fail", func(ev *surface.Event) error {
		after++
		return nil
	})

	err := loop.Fire("fail")

	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped boom", err)
	}
	var he *HandlerError
	if !errors.As(err, &he) || he.Stage != StageHandler || he.Event != "fail" {
		t.Errorf("err = %#v, want HandlerError for handler on fail", err)
	}
	if loop.IsRunning() {
		t.Error("loop left running after handler error")
	}
	if exits != 1 {
		t.Errorf("exits = %d, want 1", exits)
	}
	if after != 1 {
		t.Errorf("later handler calls = %d, want 1", after)
	}
}

func TestLoop_PanicClosesFrame(t *testing.T) {
	loop := New()

	loop.AddInterceptor(func(ev *surface.Event) {
		panic("interceptor boom")
	})
	mustBind(t, loop, "panic", func(ev *surface.Event) error {
		panic("handler boom")
	})

	err := loop.Fire("panic")

	if !errors.Is(err, ErrHandlerPanic) {
		t.Errorf("err = %v, want ErrHandlerPanic", err)
	}
	if loop.IsRunning() {
		t.Error("loop left running after panic")
	}
	if got := loop.Stats().Handlers.Panicked; got != 2 {
		t.Errorf("panicked = %d, want 2", got)
	}
}

func TestLoop_NativeFailureReported(t *testing.T) {
	var reported []error
	doc := surface.NewDocument()
	div := doc.CreateElement("div")
	loop := New(WithErrorHandler(func(err error) {
		reported = append(reported, err)
	}))
	loop.SetContainer(div)
	mustBind(t, loop, Click, func(ev *surface.Event) error {
		return errors.New("native failure")
	})

	div.DispatchEvent(surface.NewEvent(Click))

	if len(reported) != 1 {
		t.Fatalf("reported = %v, want one error", reported)
	}
	if loop.IsRunning() {
		t.Error("loop left running")
	}
}

func TestLoop_BindValidation(t *testing.T) {
	loop := New()
	noop := func(ev *surface.Event) error { return nil }

	tests := []struct {
		name    string
		event   string
		handler Handler
		wantErr error
	}{
		{"empty name", "", noop, ErrInvalidEventName},
		{"whitespace", "grid draw", noop, ErrInvalidEventName},
		{"uppercase", "Click", noop, ErrInvalidEventName},
		{"leading separator", "-draw", noop, ErrInvalidEventName},
		{"trailing separator", "draw.", noop, ErrInvalidEventName},
		{"double separator", "grid--draw", noop, ErrInvalidEventName},
		{"nil handler", "grid-draw", nil, ErrNilHandler},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loop.Bind(tt.event, tt.handler)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Bind(%q) error = %v, want %v", tt.event, err, tt.wantErr)
			}
		})
	}

	if loop.Stats().Bindings != 0 {
		t.Errorf("rejected bindings were registered")
	}

	var nilEl *surface.Element
	if _, err := loop.BindElement(Click, nilEl, noop); !errors.Is(err, ErrNilTarget) {
		t.Errorf("BindElement(nil) error = %v, want ErrNilTarget", err)
	}
	if err := loop.Fire("bad name"); !errors.Is(err, ErrInvalidEventName) {
		t.Errorf("Fire(bad name) error = %v, want ErrInvalidEventName", err)
	}
}

func TestLoop_UnbindDuringDispatch(t *testing.T) {
	loop := New()

	var second Handle
	var secondCalls, firstCalls int
	mustBind(t, loop, "evt", func(ev *surface.Event) error {
		firstCalls++
		second.Unbind()
		return nil
	})
	second = mustBind(t, loop, "evt", func(ev *surface.Event) error {
		secondCalls++
		return nil
	})

	_ = loop.Fire("evt")
	_ = loop.Fire("evt")

	if firstCalls != 2 {
		t.Errorf("first calls = %d, want 2", firstCalls)
	}
	if secondCalls != 0 {
		t.Errorf("second calls = %d, want 0", secondCalls)
	}
}

func TestLoop_BindDuringDispatch(t *testing.T) {
	loop := New()

	var lateCalls int
	mustBind(t, loop, "evt", func(ev *surface.Event) error {
		_, err := loop.Bind("evt", func(ev *surface.Event) error {
			lateCalls++
			return nil
		})
		return err
	})

	_ = loop.Fire("evt")
	if lateCalls != 0 {
		t.Errorf("binding added during dispatch ran in the same frame")
	}
}

func TestLoop_Close(t *testing.T) {
	loop, doc, container := newTestLoop(t)
	el := doc.CreateElement("div")
	mustBind(t, loop, Click, func(ev *surface.Event) error { return nil })
	if _, err := loop.BindElement(Click, el, func(ev *surface.Event) error { return nil }); err != nil {
		t.Fatalf("BindElement: %v", err)
	}

	loop.Close()

	if container.ListenerCount("") != 0 || el.ListenerCount("") != 0 || doc.ListenerCount("") != 0 {
		t.Error("listeners left after Close")
	}
	if s := loop.Stats(); s.Bindings != 0 || s.Interceptors != 0 || s.ExitListeners != 0 {
		t.Errorf("registrations left after Close: %+v", s)
	}
}

func TestLoop_StaleHandleAfterClose(t *testing.T) {
	loop := New()
	oldInt := loop.AddInterceptor(func(*surface.Event) {})
	oldExit := loop.AddExitListener(func(*surface.Event) {})

	loop.Close()

	var intercepted, exited int
	newInt := loop.AddInterceptor(func(*surface.Event) { intercepted++ })
	newExit := loop.AddExitListener(func(*surface.Event) { exited++ })
	if newInt.ID() == oldInt.ID() || newExit.ID() == oldExit.ID() {
		t.Fatalf("IDs reused after Close: interceptor %d, exit %d", newInt.ID(), newExit.ID())
	}

	oldInt.Unbind()
	oldExit.Unbind()

	if err := loop.Fire("evt"); err != nil {
		t.Fatalf("Fire: %v", err)
	}
	if intercepted != 1 || exited != 1 {
		t.Errorf("intercepted = %d, exited = %d; handles from before Close removed new registrations", intercepted, exited)
	}
}

func mustBind(t *testing.T, loop *Loop, name string, h Handler) Handle {
	t.Helper()
	handle, err := loop.Bind(name, h)
	if err != nil {
		t.Fatalf("Bind(%q): %v", name, err)
	}
	return handle
}

func TestFailureMessages(t *testing.T) {
	src := Source{Event: "grid-draw", Stage: StageExit, ID: 7}
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"handler", &HandlerError{Source: src, Err: errors.New("nope")}, `exit listener 7 failed on event "grid-draw": nope`},
		{"panic", &PanicError{Source: src, Value: "boom"}, `exit listener 7 panicked on event "grid-draw": boom`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
