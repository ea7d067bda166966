package event

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEventName rejects names that are empty or contain
	// whitespace.
	ErrInvalidEventName = errors.New("invalid event name")

	ErrNilHandler = errors.New("handler cannot be nil")
	ErrNilTarget  = errors.New("target cannot be nil")

	// ErrHandlerPanic matches every *PanicError through errors.Is.
	ErrHandlerPanic = errors.New("handler panicked")
)

// Stage is the part of a dispatch frame a callback ran in.
type Stage string

const (
	StageInterceptor Stage = "interceptor"
	StageHandler     Stage = "handler"
	StageExit        Stage = "exit listener"
)

// Source locates a failing callback: the event being dispatched, the
// stage and the callback's registration ID.
type Source struct {
	Event string
	Stage Stage
	ID    uint64
}

func (s Source) describe(what string, cause any) string {
	return fmt.Sprintf("%s %d %s on event %q: %v", s.Stage, s.ID, what, s.Event, cause)
}

// HandlerError is a callback that returned an error.
type HandlerError struct {
	Source
	Err error
}

func (e *HandlerError) Error() string { return e.describe("failed", e.Err) }

func (e *HandlerError) Unwrap() error { return e.Err }

// PanicError is a callback that panicked. Stack is captured at recovery.
type PanicError struct {
	Source
	Value any
	Stack string
}

func (e *PanicError) Error() string { return e.describe("panicked", e.Value) }

func (e *PanicError) Is(target error) bool { return target == ErrHandlerPanic }
