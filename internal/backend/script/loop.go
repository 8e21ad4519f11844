package script

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/john-paul-ruf/nft-studio/internal/backend"
	"github.com/john-paul-ruf/nft-studio/internal/project"
)

type renderLoop struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartRenderLoop renders frames RenderStart..RenderEnd-1 of snap over
// and over until stopped. Frames go to the frame sink and, when the
// project has an output directory, to frame-NNNNN.png files in it.
//
// The loop does not inherit ctx; it runs until StopRenderLoop or Close.
func (b *Backend) StartRenderLoop(ctx context.Context, snap project.Snapshot) (backend.Result, error) {
	b.loopMu.Lock()
	defer b.loopMu.Unlock()

	if b.loop != nil {
		return backend.Fail(ErrLoopRunning.Error()), nil
	}

	snap = snap.Clone()
	snap.Normalize()
	if snap.RenderStart >= snap.RenderEnd {
		return backend.Fail(fmt.Sprintf("empty render range %d-%d", snap.RenderStart, snap.RenderEnd)), nil
	}
	if snap.OutputDirectory != "" {
		if err := os.MkdirAll(snap.OutputDirectory, 0o755); err != nil {
			return backend.Fail(fmt.Sprintf("output directory: %v", err)), nil
		}
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	l := &renderLoop{cancel: cancel, done: make(chan struct{})}
	b.loop = l

	go b.runLoop(loopCtx, l, snap)
	b.logger.Info("render loop started for frames %d-%d", snap.RenderStart, snap.RenderEnd-1)
	return backend.OK(), nil
}

// StopRenderLoop stops the render loop and waits for it to exit.
// Stopping a loop that is not running succeeds.
func (b *Backend) StopRenderLoop(ctx context.Context) (backend.Result, error) {
	b.loopMu.Lock()
	l := b.loop
	b.loop = nil
	b.loopMu.Unlock()

	if l == nil {
		return backend.OK(), nil
	}

	l.cancel()
	select {
	case <-l.done:
	case <-ctx.Done():
		return backend.Result{}, ctx.Err()
	}
	b.logger.Info("render loop stopped")
	return backend.OK(), nil
}

// LoopRunning reports whether the render loop is active.
func (b *Backend) LoopRunning() bool {
	b.loopMu.Lock()
	defer b.loopMu.Unlock()
	return b.loop != nil
}

func (b *Backend) runLoop(ctx context.Context, l *renderLoop, snap project.Snapshot) {
	defer close(l.done)

	timer := time.NewTimer(0)
	defer timer.Stop()

	frame := snap.RenderStart
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		res, err := b.RenderFrame(ctx, snap, frame)
		if err != nil {
			return
		}
		if res.Failed() {
			b.logger.Warn("render loop frame %d: %s", frame, res.Error)
		} else if snap.OutputDirectory != "" {
			path := filepath.Join(snap.OutputDirectory, fmt.Sprintf("frame-%05d.png", frame))
			if err := os.WriteFile(path, res.FrameBuffer, 0o644); err != nil {
				b.logger.Warn("render loop write %s: %v", path, err)
			}
		}
		if b.sink != nil {
			b.sink(frame, res)
		}

		frame++
		if frame >= snap.RenderEnd {
			frame = snap.RenderStart
		}
		timer.Reset(b.loopInterval)
	}
}
