// Package event provides the grid's reentrant event loop.
//
// The loop sits between the host surface and application logic. Every event
// reaches application code exactly once per logical occurrence, even when a
// handler fires further events before it returns.
//
// # Architecture
//
//	  host surface                      application
//	┌──────────────┐   native events  ┌────────────────────────────────┐
//	│  container   │ ───────────────▶ │ Loop                           │
//	│  elements    │                  │  1. depth++                    │
//	│  window      │ ───────────────▶ │  2. interceptors (in order)    │
//	└──────────────┘   grid events    │  3. matching bindings          │
//	                                  │  4. depth-- (always)           │
//	        Fire / FireEvent ───────▶ │  5. exit listeners at depth 0  │
//	                                  └────────────────────────────────┘
//
// # Event Names
//
// Native names (click, keydown, ...) are delivered by the surface. Bindings
// made without an element attach to the current container and follow it when
// SetContainer replaces it. Grid names (grid-draw, grid-scroll, ...) are
// fired by the widget and resolved from the binding registry at dispatch time.
//
// Names are lowercase words joined by single '-', '.', ':' or '_'
// separators. Malformed names are rejected at bind time.
//
// # Reentrancy
//
// The loop counts open frames rather than keeping a running flag, so a
// nested Fire from inside a handler keeps IsRunning true until the outermost
// frame returns. Exit listeners run only when the outermost frame closes.
// Interceptors run once per propagation: a click that reaches both a bound
// decorator and the container is intercepted once.
//
// # Registrations
//
// Bind, BindElement, AddInterceptor and AddExitListener return a Handle.
// Handle.Unbind removes exactly that registration and is safe to call more
// than once. Dispatch iterates snapshots, so callbacks may register or
// unbind while a frame is running.
//
// # Failures
//
// Handler errors and panics never leave a frame open. Fire returns the joined
// failures as *HandlerError and *PanicError values; errors.Is(err,
// ErrHandlerPanic) detects panics. Failures of natively dispatched events are
// logged and passed to the WithErrorHandler callback.
//
// # Basic Usage
//
//	loop := event.New(event.WithLogger(logger))
//	loop.SetContainer(container)
//
//	h, err := loop.Bind(event.Click, func(ev *surface.Event) error {
//	    return loop.Fire(event.GridCellChange)
//	})
//	defer h.Unbind()
//
//	loop.AddExitListener(func(ev *surface.Event) {
//	    renderer.Draw()
//	})
//
// # Thread Safety
//
// The loop is single-threaded. Producers on other goroutines must hand work
// to the UI goroutine before touching it.
package event
