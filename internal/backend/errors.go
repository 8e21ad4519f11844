package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrFailed is matched by every *CallError.
	ErrFailed = errors.New("backend call failed")

	// ErrUnavailable is returned when no backend is connected.
	ErrUnavailable = errors.New("backend unavailable")
)

// CallError reports an engine call that returned Success false.
type CallError struct {
	Op      string
	Message string
}

func (e *CallError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %s", e.Op, ErrFailed)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Is makes errors.Is(err, ErrFailed) true.
func (e *CallError) Is(target error) bool {
	return target == ErrFailed
}

// Check folds a transport error and a result into one error.
//
//	res, err := api.GetEffectDefaults(ctx, name)
//	if err := backend.Check("getEffectDefaults", res.Result, err); err != nil {
//		...
//	}
func Check(op string, r Result, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if r.Failed() {
		return &CallError{Op: op, Message: r.Error}
	}
	return nil
}
