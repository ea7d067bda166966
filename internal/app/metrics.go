package app

import (
	"math"
	"sync/atomic"
	"time"
)

// durationStat aggregates durations without locking.
type durationStat struct {
	n     atomic.Uint64
	total atomic.Int64
	min   atomic.Int64
	max   atomic.Int64
	last  atomic.Int64
}

func newDurationStat() *durationStat {
	s := &durationStat{}
	s.min.Store(math.MaxInt64)
	return s
}

func (s *durationStat) add(d time.Duration) {
	ns := d.Nanoseconds()
	s.n.Add(1)
	s.total.Add(ns)
	s.last.Store(ns)
	for cur := s.min.Load(); ns < cur; cur = s.min.Load() {
		if s.min.CompareAndSwap(cur, ns) {
			break
		}
	}
	for cur := s.max.Load(); ns > cur; cur = s.max.Load() {
		if s.max.CompareAndSwap(cur, ns) {
			break
		}
	}
}

// read returns count, mean, min, max and last in nanoseconds.
// An empty stat reads as all zeros.
func (s *durationStat) read() (n uint64, avg, lo, hi, last int64) {
	n = s.n.Load()
	if n == 0 {
		return 0, 0, 0, 0, 0
	}
	return n, s.total.Load() / int64(n), s.min.Load(), s.max.Load(), s.last.Load()
}

// Metrics counts what the event loop does. All methods are safe for
// concurrent use.
type Metrics struct {
	started time.Time

	frames *durationStat
	inputs *durationStat

	dropped      atomic.Uint64
	ticks        atomic.Uint64
	tasks        atomic.Uint64
	events       atomic.Uint64
	reloads      atomic.Uint64
	reloadErrors atomic.Uint64
}

// NewMetrics returns zeroed metrics with the uptime clock started.
func NewMetrics() *Metrics {
	return &Metrics{
		started: time.Now(),
		frames:  newDurationStat(),
		inputs:  newDurationStat(),
	}
}

// RecordFrame records the time spent painting one frame.
func (m *Metrics) RecordFrame(d time.Duration) { m.frames.add(d) }

// RecordInput records the time spent handling one input event.
func (m *Metrics) RecordInput(d time.Duration) { m.inputs.add(d) }

// RecordInputDropped counts an input event lost to a full queue.
func (m *Metrics) RecordInputDropped() { m.dropped.Add(1) }

// RecordTick records a scheduler tick that ran n tasks. Idle ticks are
// not counted.
func (m *Metrics) RecordTick(n int) {
	if n <= 0 {
		return
	}
	m.ticks.Add(1)
	m.tasks.Add(uint64(n))
}

// RecordEvent counts a grid event fired on the loop.
func (m *Metrics) RecordEvent() { m.events.Add(1) }

// RecordReload counts a configuration reload and whether it failed.
func (m *Metrics) RecordReload(err error) {
	m.reloads.Add(1)
	if err != nil {
		m.reloadErrors.Add(1)
	}
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Uptime time.Duration

	FrameCount     uint64
	AvgFrameTimeNs int64
	MinFrameTimeNs int64
	MaxFrameTimeNs int64
	LastFrameNs    int64

	InputCount     uint64
	AvgInputTimeNs int64
	MaxInputTimeNs int64
	InputDropped   uint64

	TickCount  uint64
	TaskCount  uint64
	EventCount uint64

	ReloadCount  uint64
	ReloadFailed uint64
}

// Snapshot copies the current values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Uptime:       time.Since(m.started),
		InputDropped: m.dropped.Load(),
		TickCount:    m.ticks.Load(),
		TaskCount:    m.tasks.Load(),
		EventCount:   m.events.Load(),
		ReloadCount:  m.reloads.Load(),
		ReloadFailed: m.reloadErrors.Load(),
	}
	s.FrameCount, s.AvgFrameTimeNs, s.MinFrameTimeNs, s.MaxFrameTimeNs, s.LastFrameNs = m.frames.read()
	s.InputCount, s.AvgInputTimeNs, _, s.MaxInputTimeNs, _ = m.inputs.read()
	return s
}

// AvgFPS converts the mean frame time to frames per second.
func (s MetricsSnapshot) AvgFPS() float64 {
	if s.AvgFrameTimeNs <= 0 {
		return 0
	}
	return float64(time.Second) / float64(s.AvgFrameTimeNs)
}

// Timer measures one operation.
type Timer struct {
	start time.Time
}

// StartTimer starts a timer now.
func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the time since the timer started.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// Stop returns the elapsed time and restarts the timer.
func (t *Timer) Stop() time.Duration {
	now := time.Now()
	d := now.Sub(t.start)
	t.start = now
	return d
}
