// Package dispatch runs event handlers with panic recovery.
//
// The grid's event loop is single-threaded and reentrant: a handler may fire
// further events before it returns. The Executor isolates each handler so
// that a failing or panicking handler cannot unwind the dispatch frame that
// invoked it. The frame always closes and the failure is reported in the
// returned Result.
//
// # Usage
//
//	exec := dispatch.NewExecutor(
//	    dispatch.WithPanicHandler(func(event any, v any, stack []byte) {
//	        logger.Error("handler panic", "value", v)
//	    }),
//	)
//	result := exec.Execute(ev, func() error { return handler(ev) })
//	if !result.IsSuccess() {
//	    // Handle error or panic
//	}
package dispatch
