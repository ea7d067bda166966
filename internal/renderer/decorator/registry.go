package decorator

import (
	"errors"

	"github.com/dshills/gridcore/internal/event"
	"github.com/dshills/gridcore/internal/renderer/dirty"
	"github.com/dshills/gridcore/internal/surface"
)

// Registry errors.
var (
	// ErrNilDecorator is returned when adding a nil decorator.
	ErrNilDecorator = errors.New("decorator cannot be nil")

	// ErrDuplicate is returned when a decorator is already registered.
	ErrDuplicate = errors.New("decorator already registered")
)

// Registry tracks alive decorators and those removed since the last draw.
//
// The registry is itself dirty whenever its alive set changes or an alive
// decorator is marked dirty. Registry is not safe for concurrent use.
type Registry struct {
	*dirty.State

	alive []*Decorator
	dead  []*Decorator
	byID  map[string]*Decorator
}

// NewRegistry creates an empty registry. onSetDirty runs whenever the
// registry goes from clean to dirty and may be nil.
func NewRegistry(onSetDirty func()) *Registry {
	return &Registry{
		State: dirty.New(onSetDirty),
		byID:  make(map[string]*Decorator),
	}
}

// Add registers d as alive and marks the registry dirty.
func (r *Registry) Add(d *Decorator) error {
	if d == nil {
		return ErrNilDecorator
	}
	if _, ok := r.byID[d.ID()]; ok {
		return ErrDuplicate
	}
	r.byID[d.ID()] = d
	r.alive = append(r.alive, d)
	d.notify = r.SetDirty
	d.SetDirty()
	r.SetDirty()
	return nil
}

// Remove moves d from the alive set to the dead set. The renderer tears
// dead decorators down on the next draw. Returns false if d is not alive.
func (r *Registry) Remove(d *Decorator) bool {
	if d == nil {
		return false
	}
	if _, ok := r.byID[d.ID()]; !ok {
		return false
	}
	delete(r.byID, d.ID())
	for i, a := range r.alive {
		if a == d {
			r.alive = append(r.alive[:i], r.alive[i+1:]...)
			break
		}
	}
	d.notify = nil
	r.dead = append(r.dead, d)
	r.SetDirty()
	return true
}

// RemoveAll moves every alive decorator to the dead set.
func (r *Registry) RemoveAll() {
	for _, d := range r.Alive() {
		r.Remove(d)
	}
}

// Get returns an alive decorator by ID.
func (r *Registry) Get(id string) (*Decorator, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// Len returns the number of alive decorators.
func (r *Registry) Len() int {
	return len(r.alive)
}

// Alive returns a snapshot of the alive decorators in insertion order.
func (r *Registry) Alive() []*Decorator {
	out := make([]*Decorator, len(r.alive))
	copy(out, r.alive)
	return out
}

// PopAllDead returns the decorators removed since the last call and
// empties the dead set.
func (r *Registry) PopAllDead() []*Decorator {
	dead := r.dead
	r.dead = nil
	return dead
}

// CleanOn binds the registry to the named loop event. When the event fires
// the registry and every alive decorator become clean.
func (r *Registry) CleanOn(loop dirty.Binder, name string) (event.Handle, error) {
	return loop.Bind(name, func(*surface.Event) error {
		r.SetClean()
		for _, d := range r.alive {
			d.SetClean()
		}
		return nil
	})
}
