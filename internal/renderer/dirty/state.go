// Package dirty gates redraw work with a two-state dirty/clean flag.
//
// A State starts dirty so the first draw always happens. Marking a clean
// state dirty runs its callback, normally a request for a coalesced draw.
// The render pipeline marks states clean once a draw has completed, usually
// by binding them to the loop's draw-complete event with CleanOn.
package dirty

import (
	"github.com/dshills/gridcore/internal/event"
	"github.com/dshills/gridcore/internal/surface"
)

// Binder is the part of the event loop a State needs to clean itself.
type Binder interface {
	Bind(name string, handler event.Handler) (event.Handle, error)
}

// State tracks whether a render target needs redrawing.
//
// State is not safe for concurrent use.
type State struct {
	dirty      bool
	onSetDirty func()
}

// New creates a dirty State. onSetDirty runs on every clean to dirty
// transition and may be nil.
func New(onSetDirty func()) *State {
	return &State{
		dirty:      true,
		onSetDirty: onSetDirty,
	}
}

// IsDirty returns true if the target needs redrawing.
func (s *State) IsDirty() bool {
	return s.dirty
}

// IsClean returns true if the target is up to date.
func (s *State) IsClean() bool {
	return !s.dirty
}

// SetDirty marks the target as needing redraw. The callback runs only when
// the state was clean.
func (s *State) SetDirty() {
	if s.dirty {
		return
	}
	s.dirty = true
	if s.onSetDirty != nil {
		s.onSetDirty()
	}
}

// SetClean marks the target as up to date.
func (s *State) SetClean() {
	s.dirty = false
}

// CleanOn binds the state to the named loop event so that it becomes clean
// whenever the event fires.
func (s *State) CleanOn(loop Binder, name string) (event.Handle, error) {
	return loop.Bind(name, func(*surface.Event) error {
		s.SetClean()
		return nil
	})
}
