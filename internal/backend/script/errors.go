package script

import "errors"

var (
	// ErrStateClosed is returned when using a closed Lua state.
	ErrStateClosed = errors.New("lua state closed")

	// ErrNoEffectTable is returned when a script does not define the
	// global effect table.
	ErrNoEffectTable = errors.New("script does not define an effect table")

	// ErrUnknownEffect is returned when no script provides an effect.
	ErrUnknownEffect = errors.New("unknown effect")

	// ErrLoopRunning is returned when starting a render loop twice.
	ErrLoopRunning = errors.New("render loop already running")

	// ErrBadColor is returned for colors that cannot be parsed.
	ErrBadColor = errors.New("invalid color")
)
