package dispatch

import "time"

// Func is one callback run by an Executor.
type Func func() error

// PanicHandler observes a recovered panic. event is the value passed to
// Execute.
type PanicHandler func(event any, panicValue any, stack []byte)

// Result is the outcome of one Execute call. At most one of Error and
// Panicked is set.
type Result struct {
	Success    bool
	Error      error
	Panicked   bool
	PanicValue any
	PanicStack []byte
	Duration   time.Duration
}

// IsSuccess reports whether the callback returned nil without panicking.
func (r Result) IsSuccess() bool {
	return r.Success && !r.Panicked && r.Error == nil
}

// IsError reports whether the callback returned an error.
func (r Result) IsError() bool {
	return !r.Panicked && r.Error != nil
}

// IsPanic reports whether the callback panicked.
func (r Result) IsPanic() bool {
	return r.Panicked
}
