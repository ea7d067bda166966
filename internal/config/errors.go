package config

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrUnsupportedFormat is returned for a file extension other than
	// .toml, .yaml or .yml.
	ErrUnsupportedFormat = errors.New("unsupported config format")

	// ErrInvalidValue is wrapped by every ValidationError.
	ErrInvalidValue = errors.New("invalid setting value")

	// ErrWatcherClosed is returned by a second Watcher.Close.
	ErrWatcherClosed = errors.New("config watcher closed")
)

// ParseError is a decoder failure in a config file. Line and Column are
// zero when the decoder gives no position.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	where := e.Path
	switch {
	case e.Line > 0 && e.Column > 0:
		where += ":" + strconv.Itoa(e.Line) + ":" + strconv.Itoa(e.Column)
	case e.Line > 0:
		where += ":" + strconv.Itoa(e.Line)
	}
	return "parse " + where + ": " + e.Message
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError names the setting, as a dotted path like
// "grid.cell_width", that Validate rejected.
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string { return e.Path + ": " + e.Message }

func (e *ValidationError) Unwrap() error { return ErrInvalidValue }

// EnvError is a GRIDCORE_ variable whose value did not parse.
type EnvError struct {
	Name  string
	Value string
	Err   error
}

func (e *EnvError) Error() string {
	return fmt.Sprintf("env %s=%q: %v", e.Name, e.Value, e.Err)
}

func (e *EnvError) Unwrap() error { return e.Err }
