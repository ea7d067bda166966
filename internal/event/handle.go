package event

type handleKind uint8

const (
	kindNone handleKind = iota
	kindBinding
	kindInterceptor
	kindExit
)

// Handle identifies a registration made on a Loop.
// The zero Handle is valid and unbinds nothing.
type Handle struct {
	id   uint64
	kind handleKind
	loop *Loop
}

// ID returns the registration ID, unique per registration kind.
func (h Handle) ID() uint64 {
	return h.id
}

// Unbind removes the registration. Calling it more than once, or on a
// registration that was never made, is a no-op.
func (h Handle) Unbind() {
	if h.loop == nil {
		return
	}
	h.loop.unbind(h)
}
