package render

import (
	"context"
	"errors"
	"image/color"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/john-paul-ruf/nft-studio/internal/backend"
	"github.com/john-paul-ruf/nft-studio/internal/backend/backendtest"
	"github.com/john-paul-ruf/nft-studio/internal/event"
	"github.com/john-paul-ruf/nft-studio/internal/event/events"
	"github.com/john-paul-ruf/nft-studio/internal/project"
)

type recorder struct {
	mu     sync.Mutex
	counts map[string]int
	failed []events.RenderFailed
	done   chan struct{}
}

func newRecorder(t *testing.T, bus event.Bus) *recorder {
	t.Helper()
	r := &recorder{counts: make(map[string]int), done: make(chan struct{}, 16)}
	_, err := bus.SubscribeFunc("render:*", r.handle)
	if err == nil {
		_, err = bus.SubscribeFunc("renderloop:*", r.handle)
	}
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func (r *recorder) handle(_ context.Context, ev any) error {
	env := event.ToEnvelope(ev)
	r.mu.Lock()
	r.counts[string(env.Topic)]++
	if p, ok := env.Payload.(events.RenderFailed); ok {
		r.failed = append(r.failed, p)
	}
	r.mu.Unlock()
	if env.Topic == events.TopicRenderCompleted || env.Topic == events.TopicRenderFailed {
		r.done <- struct{}{}
	}
	return nil
}

func (r *recorder) count(t string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[t]
}

func (r *recorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(5 * time.Second):
		t.Fatal("render did not finish")
	}
}

func newController(t *testing.T, fake *backendtest.Fake) (*Controller, *recorder) {
	t.Helper()
	bus := event.NewStartedBus()
	t.Cleanup(func() { bus.Stop(context.Background()) })
	rec := newRecorder(t, bus)
	state := project.NewDefault()
	return NewController(fake, state, WithBus(bus)), rec
}

func TestTriggerDropsWhileBusy(t *testing.T) {
	fake := backendtest.New()
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	fake.Render = func(ctx context.Context, snap project.Snapshot, frame int) (backend.RenderResult, error) {
		started <- struct{}{}
		<-release
		return backend.RenderResult{Result: backend.OK(), FrameBuffer: backendtest.PixelPNG(), BufferType: backend.BufferPNG, Method: "test"}, nil
	}
	c, rec := newController(t, fake)
	ctx := context.Background()

	if !c.Trigger(ctx, 1) {
		t.Fatal("first trigger dropped")
	}
	<-started
	if !c.Busy() {
		t.Error("Busy() = false during render")
	}
	if c.Trigger(ctx, 2) {
		t.Error("second trigger should be dropped while busy")
	}
	if _, err := c.Render(ctx, 3); !errors.Is(err, ErrBusy) {
		t.Errorf("Render while busy = %v", err)
	}

	close(release)
	rec.wait(t)
	c.Wait()

	if c.Busy() {
		t.Error("Busy() = true after render")
	}
	if got := fake.CallCount("renderFrame"); got != 1 {
		t.Errorf("renderFrame calls = %d, want 1", got)
	}
	if rec.count("render:started") != 1 || rec.count("render:completed") != 1 {
		t.Errorf("events = %v", rec.counts)
	}
	last, ok := c.Last()
	if !ok || last.Index != 1 || last.Failed || last.Method != "test" {
		t.Errorf("Last() = %+v", last)
	}
}

func TestRenderDecodeSources(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}

	tests := []struct {
		name     string
		result   backend.RenderResult
		files    map[string][]byte
		wantFail bool
	}{
		{
			name:   "buffer",
			result: backend.RenderResult{Result: backend.OK(), FrameBuffer: backendtest.SolidPNG(2, 2, red), BufferType: backend.BufferPNG},
		},
		{
			name:   "file url",
			result: backend.RenderResult{Result: backend.OK(), FileURL: "file:///tmp/frame.png"},
			files:  map[string][]byte{"/tmp/frame.png": backendtest.SolidPNG(2, 2, red)},
		},
		{
			name:     "missing file",
			result:   backend.RenderResult{Result: backend.OK(), FileURL: "/tmp/missing.png"},
			wantFail: true,
		},
		{
			name:     "garbage buffer",
			result:   backend.RenderResult{Result: backend.OK(), FrameBuffer: []byte("not an image")},
			wantFail: true,
		},
		{
			name:     "wrong declared type",
			result:   backend.RenderResult{Result: backend.OK(), FrameBuffer: backendtest.PixelPNG(), BufferType: backend.BufferJPEG},
			wantFail: true,
		},
		{
			name:     "no data",
			result:   backend.RenderResult{Result: backend.OK()},
			wantFail: true,
		},
		{
			name:     "engine refused",
			result:   backend.RenderResult{Result: backend.Fail("effect crashed")},
			wantFail: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := backendtest.New()
			for k, v := range tt.files {
				fake.Files[k] = v
			}
			res := tt.result
			fake.Render = func(context.Context, project.Snapshot, int) (backend.RenderResult, error) {
				return res, nil
			}
			c, rec := newController(t, fake)

			f, err := c.Render(context.Background(), 0)
			if tt.wantFail {
				var fe *FrameError
				if !errors.As(err, &fe) {
					t.Fatalf("err = %v, want *FrameError", err)
				}
				if !f.Failed || f.Image == nil {
					t.Errorf("frame = %+v, want error frame", f)
				}
				if r, _, _, _ := f.Image.At(0, 0).RGBA(); r>>8 != uint32(errorRed.R) {
					t.Error("error frame is not red")
				}
				if rec.count("render:failed") != 1 {
					t.Errorf("render:failed count = %d", rec.count("render:failed"))
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if f.Image.Bounds().Dx() != 2 {
				t.Errorf("bounds = %v", f.Image.Bounds())
			}
			if rec.count("render:completed") != 1 {
				t.Errorf("render:completed count = %d", rec.count("render:completed"))
			}
		})
	}
}

func TestErrorFrameSize(t *testing.T) {
	tests := []struct {
		w, h         int
		wantW, wantH int
	}{
		{1920, 1080, 640, 360},
		{320, 240, 320, 240},
		{1080, 1920, 640, 1137},
		{0, 0, 16, 9},
	}
	for _, tt := range tests {
		b := ErrorFrame(tt.w, tt.h).Bounds()
		if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
			t.Errorf("ErrorFrame(%d, %d) = %dx%d, want %dx%d", tt.w, tt.h, b.Dx(), b.Dy(), tt.wantW, tt.wantH)
		}
	}
}

func TestToggleLoop(t *testing.T) {
	fake := backendtest.New()
	c, rec := newController(t, fake)
	ctx := context.Background()

	if err := c.ToggleLoop(ctx); err != nil {
		t.Fatal(err)
	}
	if !c.Looping() || !fake.Looping() {
		t.Error("loop not started")
	}
	if err := c.ToggleLoop(ctx); err != nil {
		t.Fatal(err)
	}
	if c.Looping() || fake.Looping() {
		t.Error("loop not stopped")
	}
	if rec.count("renderloop:started") != 1 || rec.count("renderloop:stopped") != 1 {
		t.Errorf("events = %v", rec.counts)
	}

	fake.Err = errors.New("ipc down")
	if err := c.ToggleLoop(ctx); err == nil {
		t.Error("expected start failure")
	}
	if c.Looping() {
		t.Error("Looping() = true after failed start")
	}
	if rec.count("renderloop:failed") != 1 {
		t.Error("renderloop:failed not emitted")
	}
}

func TestLoopFrame(t *testing.T) {
	c, rec := newController(t, backendtest.New())

	c.LoopFrame(4, backend.RenderResult{Result: backend.OK(), FrameBuffer: backendtest.PixelPNG(), Method: "lua"})
	if last, ok := c.Last(); !ok || last.Index != 4 || last.Failed {
		t.Errorf("Last() = %+v", last)
	}

	c.LoopFrame(5, backend.RenderResult{Result: backend.Fail("boom")})
	if last, _ := c.Last(); !last.Failed || last.Index != 5 {
		t.Errorf("Last() after failure = %+v", last)
	}
	if rec.count("render:completed") != 1 || rec.count("render:failed") != 1 {
		t.Errorf("events = %v", rec.counts)
	}
}

func TestViewport(t *testing.T) {
	v := NewViewport()
	if v.Zoom() != 1 {
		t.Fatalf("initial zoom = %v", v.Zoom())
	}
	if z := v.ZoomIn(); math.Abs(z-1.2) > 1e-9 {
		t.Errorf("ZoomIn = %v", z)
	}
	if z := v.ZoomOut(); math.Abs(z-1.0) > 1e-9 {
		t.Errorf("ZoomOut = %v", z)
	}

	for i := 0; i < 50; i++ {
		v.ZoomIn()
	}
	if v.Zoom() != MaxZoom {
		t.Errorf("zoom = %v, want clamp at %v", v.Zoom(), MaxZoom)
	}
	for i := 0; i < 50; i++ {
		v.ZoomOut()
	}
	if v.Zoom() != MinZoom {
		t.Errorf("zoom = %v, want clamp at %v", v.Zoom(), MinZoom)
	}
	if v.Reset() != DefaultZoom {
		t.Error("Reset did not restore default")
	}
	if v.SetZoom(9) != MaxZoom {
		t.Error("SetZoom not clamped")
	}
}
