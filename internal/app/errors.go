package app

import (
	"errors"
	"strings"
)

var (
	// ErrQuit is returned by key handling to end Run normally.
	ErrQuit = errors.New("quit requested")

	// ErrAlreadyRunning rejects Run and SetBackend while Run is active.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrNoBackend is returned by Run before SetBackend.
	ErrNoBackend = errors.New("no backend")
)

// OpError reports a failed operation of one grid component, such as
// the renderer failing to build.
type OpError struct {
	Component string
	Op        string
	Err       error
}

// NewOpError wraps err with the component and operation that failed.
func NewOpError(component, op string, err error) *OpError {
	return &OpError{Component: component, Op: op, Err: err}
}

func (e *OpError) Error() string {
	if e == nil {
		return ""
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{e.Component, e.Op} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// InitError is returned by New and SetBackend when a part of the
// application cannot be set up.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return "init " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error { return e.Err }
