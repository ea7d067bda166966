package event

// registry stores registrations in insertion order keyed by ID.
// Dispatch iterates over snapshots so callbacks may add or remove
// registrations while a frame is running.
type registry[T any] struct {
	nextID uint64
	order  []uint64
	items  map[uint64]T
}

type entry[T any] struct {
	id    uint64
	value T
}

func newRegistry[T any]() *registry[T] {
	return &registry[T]{items: make(map[uint64]T)}
}

// add stores v and returns its ID. IDs start at 1.
func (r *registry[T]) add(v T) uint64 {
	r.nextID++
	id := r.nextID
	r.items[id] = v
	r.order = append(r.order, id)
	return id
}

// remove deletes the registration. Removing an unknown ID is a no-op.
func (r *registry[T]) remove(id uint64) (T, bool) {
	v, ok := r.items[id]
	if !ok {
		return v, false
	}
	delete(r.items, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return v, true
}

func (r *registry[T]) has(id uint64) bool {
	_, ok := r.items[id]
	return ok
}

func (r *registry[T]) len() int {
	return len(r.order)
}

// snapshot returns the registrations in insertion order.
func (r *registry[T]) snapshot() []entry[T] {
	out := make([]entry[T], 0, len(r.order))
	for _, id := range r.order {
		out = append(out, entry[T]{id: id, value: r.items[id]})
	}
	return out
}

// clear drops every registration. IDs keep counting so handles issued
// before the clear never match a later registration.
func (r *registry[T]) clear() {
	r.order = nil
	clear(r.items)
}
