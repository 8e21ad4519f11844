package config

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by a closed Service.
	ErrClosed = errors.New("config: service closed")

	// ErrWatching is returned by Watch when the watcher already runs.
	ErrWatching = errors.New("config: already watching")
)

// ParseError reports a malformed preferences file.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
