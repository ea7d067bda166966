package schedule

// Coalescer runs fn at most once per tick no matter how often Request is
// called. It replaces timer-based debouncing with a single pending slot.
//
// Coalescer is not safe for concurrent use.
type Coalescer struct {
	sched   *Scheduler
	fn      func()
	pending bool
}

// NewCoalescer creates a Coalescer that runs fn on s.
func NewCoalescer(s *Scheduler, fn func()) *Coalescer {
	return &Coalescer{sched: s, fn: fn}
}

// Request asks for fn to run at the next tick. Requests made while one is
// pending are absorbed.
func (c *Coalescer) Request() {
	if c.pending {
		return
	}
	c.pending = true
	c.sched.Post(c.run)
}

// Pending returns true if a run is queued.
func (c *Coalescer) Pending() bool {
	return c.pending
}

func (c *Coalescer) run() {
	// Cleared first so fn can request a follow-up run.
	c.pending = false
	if c.fn != nil {
		c.fn()
	}
}
