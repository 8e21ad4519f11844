package effect

import "errors"

var (
	// ErrUnknownType is returned for an unrecognised effect type.
	ErrUnknownType = errors.New("unknown effect type")

	// ErrNotFound is returned when an effect ID does not resolve.
	ErrNotFound = errors.New("effect not found")
)
