package dispatch

import (
	"context"
	"runtime/debug"
	"time"
)

// caught is a panic recovered from a handler.
type caught struct {
	value any
	stack []byte
}

// invoke runs handler once under an optional deadline. A panic never
// escapes: it is reported to onPanic and folded into the Result. A context
// that is already done skips the handler.
func invoke(ctx context.Context, event any, handler Handler, timeout time.Duration, onPanic PanicHandler) Result {
	if err := ctx.Err(); err != nil {
		return Result{Error: err, Skipped: true}
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	p, err := call(ctx, event, handler)
	res := Result{Duration: time.Since(start), Error: err}
	if p != nil {
		res.Error = nil
		res.Panicked = true
		res.PanicValue = p.value
		res.PanicStack = p.stack
		report(onPanic, event, p)
	}
	res.Success = !res.Panicked && res.Error == nil
	return res
}

func call(ctx context.Context, event any, handler Handler) (p *caught, err error) {
	defer func() {
		if v := recover(); v != nil {
			p = &caught{value: v, stack: debug.Stack()}
		}
	}()
	return nil, handler.Handle(ctx, event)
}

// report hands p to onPanic. A panic raised by onPanic itself is dropped.
func report(onPanic PanicHandler, event any, p *caught) {
	if onPanic == nil {
		return
	}
	defer func() { _ = recover() }()
	onPanic(event, p.value, p.stack)
}
