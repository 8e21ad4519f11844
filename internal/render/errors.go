package render

import (
	"errors"
	"fmt"
)

// ErrBusy is returned by Render while another render is in flight.
var ErrBusy = errors.New("render in flight")

// FrameError reports a frame that failed to render or decode.
type FrameError struct {
	Frame   int
	Message string
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d: %s", e.Frame, e.Message)
}
