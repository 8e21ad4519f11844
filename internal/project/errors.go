package project

import "errors"

var (
	// ErrEffectNotFound is returned when an effect ID does not resolve.
	ErrEffectNotFound = errors.New("effect not found")

	// ErrMissingID is returned for effects without an ID.
	ErrMissingID = errors.New("effect has no id")

	// ErrDuplicateID is returned when adding an effect whose ID is taken.
	ErrDuplicateID = errors.New("duplicate effect id")

	// ErrIndexOutOfRange is returned for invalid list positions.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrUnknownResolution is returned for resolution keys not in the table.
	ErrUnknownResolution = errors.New("unknown resolution")

	// ErrInvalidFrames is returned for non-positive frame counts.
	ErrInvalidFrames = errors.New("frame count must be positive")

	// ErrNotSubEffect is returned when a sub-effect operation targets a
	// top-level effect type.
	ErrNotSubEffect = errors.New("not a secondary or keyframe effect")
)
