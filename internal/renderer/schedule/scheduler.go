// Package schedule provides the cooperative task queue the grid draws on.
//
// Work posted to a Scheduler runs at the next Tick, on the goroutine that
// calls Tick. A Coalescer collapses any number of requests made before a
// tick into a single run at the tick boundary.
package schedule

import (
	"io"
	"log/slog"
	"sync"

	"github.com/dshills/gridcore/internal/event/dispatch"
)

// Scheduler is a FIFO task queue drained by explicit ticks.
//
// Post is safe to call from any goroutine. Tick must be called from a
// single goroutine, normally the UI loop.
type Scheduler struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}

	executor *dispatch.Executor
	logger   *slog.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger used to report failing tasks.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an empty scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		wake:     make(chan struct{}, 1),
		executor: dispatch.NewExecutor(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Post queues task for the next tick. A nil task is ignored.
func (s *Scheduler) Post(task func()) {
	if task == nil {
		return
	}
	s.mu.Lock()
	s.queue = append(s.queue, task)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Wake returns a channel that receives after tasks are posted.
// The channel is buffered by one and may coalesce notifications.
func (s *Scheduler) Wake() <-chan struct{} {
	return s.wake
}

// Pending returns the number of queued tasks.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Tick runs every task queued before the call and returns how many ran.
// Tasks posted while ticking run on the next tick. A panicking task is
// logged and does not stop the rest.
func (s *Scheduler) Tick() int {
	s.mu.Lock()
	tasks := s.queue
	s.queue = nil
	s.mu.Unlock()

	for _, task := range tasks {
		res := s.executor.Execute("tick", func() error {
			task()
			return nil
		})
		if res.IsPanic() {
			s.logger.Error("scheduled task panicked",
				"panic", res.PanicValue,
				"stack", string(res.PanicStack))
		}
	}
	return len(tasks)
}

// Stats returns execution statistics for ticked tasks.
func (s *Scheduler) Stats() dispatch.Stats {
	return s.executor.Stats()
}
