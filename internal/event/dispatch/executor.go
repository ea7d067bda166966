package dispatch

import (
	"runtime/debug"
	"time"
)

// Executor runs callbacks on the caller's goroutine. It recovers panics,
// times each call and keeps counters. It is not safe for concurrent use.
type Executor struct {
	onPanic PanicHandler
	stats   Stats
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithPanicHandler installs h to observe recovered panics. A panic inside
// h is swallowed.
func WithPanicHandler(h PanicHandler) ExecutorOption {
	return func(e *Executor) { e.onPanic = h }
}

// NewExecutor returns an executor with zeroed stats.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute calls fn and reports how it went. event is passed through to
// the panic handler only.
func (e *Executor) Execute(event any, fn Func) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = Result{Panicked: true, PanicValue: r, PanicStack: debug.Stack()}
			e.notifyPanic(event, r, res.PanicStack)
		}
		res.Duration = time.Since(start)
		e.count(res)
	}()

	res.Error = fn()
	res.Success = res.Error == nil
	return res
}

func (e *Executor) notifyPanic(event, value any, stack []byte) {
	if e.onPanic == nil {
		return
	}
	defer func() { _ = recover() }()
	e.onPanic(event, value, stack)
}

func (e *Executor) count(res Result) {
	s := &e.stats
	s.Executed++
	s.TotalDuration += res.Duration
	switch {
	case res.Panicked:
		s.Panicked++
	case res.Error != nil:
		s.Failed++
	default:
		s.Succeeded++
	}
}

// Stats returns a copy of the counters with AvgDuration filled in.
func (e *Executor) Stats() Stats {
	s := e.stats
	if s.Executed > 0 {
		s.AvgDuration = s.TotalDuration / time.Duration(s.Executed)
	}
	return s
}

// ResetStats zeroes the counters.
func (e *Executor) ResetStats() {
	e.stats = Stats{}
}

// Stats counts Execute outcomes. Executed is always the sum of
// Succeeded, Failed and Panicked.
type Stats struct {
	Executed  uint64
	Succeeded uint64
	Failed    uint64
	Panicked  uint64

	TotalDuration time.Duration
	AvgDuration   time.Duration
}
