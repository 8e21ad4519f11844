// Package backendtest provides an in-memory backend.API for tests.
package backendtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/john-paul-ruf/nft-studio/internal/backend"
	"github.com/john-paul-ruf/nft-studio/internal/effect"
	"github.com/john-paul-ruf/nft-studio/internal/project"
)

// Fake answers every call from its fields and records the calls it saw.
// The zero value reports success with empty results.
type Fake struct {
	mu sync.Mutex

	Catalog  effect.Catalog
	Defaults map[string]effect.Config
	Files    map[string][]byte
	Projects map[string]project.Snapshot

	// Render, when set, replaces the default single pixel PNG response.
	Render func(ctx context.Context, snap project.Snapshot, frame int) (backend.RenderResult, error)

	// FailDefaults makes GetEffectDefaults report failure for these names.
	FailDefaults map[string]string

	// Err, when set, is returned by every call as a transport error.
	Err error

	calls   []string
	looping bool
}

// New returns a Fake with a small catalog.
func New() *Fake {
	f := &Fake{
		Defaults: make(map[string]effect.Config),
		Files:    make(map[string][]byte),
		Projects: make(map[string]project.Snapshot),
	}
	f.Catalog.Add(effect.Info{Name: "FuzzFlareEffect", Type: effect.TypePrimary})
	f.Catalog.Add(effect.Info{Name: "GlowEffect", Type: effect.TypeSecondary})
	f.Catalog.Add(effect.Info{Name: "FadeKeyframe", Type: effect.TypeKeyframe})
	f.Catalog.Add(effect.Info{Name: "BlurFinal", Type: effect.TypeFinalImage})
	return f
}

// Calls returns the operation names called so far, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallCount returns how many times op was called.
func (f *Fake) CallCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}
	return n
}

// Looping reports whether the render loop is running.
func (f *Fake) Looping() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.looping
}

func (f *Fake) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
	return f.Err
}

func (f *Fake) DiscoverEffects(ctx context.Context) (backend.DiscoverResult, error) {
	if err := f.record("discoverEffects"); err != nil {
		return backend.DiscoverResult{}, err
	}
	return backend.DiscoverResult{Result: backend.OK(), Effects: f.Catalog}, nil
}

func (f *Fake) GetAvailableEffects(ctx context.Context) (backend.DiscoverResult, error) {
	if err := f.record("getAvailableEffects"); err != nil {
		return backend.DiscoverResult{}, err
	}
	return backend.DiscoverResult{Result: backend.OK(), Effects: f.Catalog}, nil
}

func (f *Fake) GetEffectDefaults(ctx context.Context, name string) (backend.DefaultsResult, error) {
	if err := f.record("getEffectDefaults"); err != nil {
		return backend.DefaultsResult{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := f.FailDefaults[name]; ok {
		return backend.DefaultsResult{Result: backend.Fail(msg)}, nil
	}
	cfg := f.Defaults[name]
	if cfg == nil {
		cfg = effect.Config{}
	}
	return backend.DefaultsResult{Result: backend.OK(), Defaults: cfg.Clone()}, nil
}

func (f *Fake) RenderFrame(ctx context.Context, snap project.Snapshot, frame int) (backend.RenderResult, error) {
	if err := f.record("renderFrame"); err != nil {
		return backend.RenderResult{}, err
	}
	if f.Render != nil {
		return f.Render(ctx, snap, frame)
	}
	return backend.RenderResult{
		Result:      backend.OK(),
		FrameBuffer: PixelPNG(),
		BufferType:  backend.BufferPNG,
		Method:      "fake",
	}, nil
}

func (f *Fake) StartRenderLoop(ctx context.Context, snap project.Snapshot) (backend.Result, error) {
	if err := f.record("startRenderLoop"); err != nil {
		return backend.Result{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.looping {
		return backend.Fail("render loop already running"), nil
	}
	f.looping = true
	return backend.OK(), nil
}

func (f *Fake) StopRenderLoop(ctx context.Context) (backend.Result, error) {
	if err := f.record("stopRenderLoop"); err != nil {
		return backend.Result{}, err
	}
	f.mu.Lock()
	f.looping = false
	f.mu.Unlock()
	return backend.OK(), nil
}

func (f *Fake) SelectFile(ctx context.Context, opts backend.FileOptions) (backend.FileResult, error) {
	if err := f.record("selectFile"); err != nil {
		return backend.FileResult{}, err
	}
	if opts.DefaultPath == "" {
		return backend.FileResult{Result: backend.OK(), Canceled: true}, nil
	}
	return backend.FileResult{Result: backend.OK(), FilePaths: []string{opts.DefaultPath}}, nil
}

func (f *Fake) LoadProject(ctx context.Context, path string) (backend.ProjectResult, error) {
	if err := f.record("loadProject"); err != nil {
		return backend.ProjectResult{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, ok := f.Projects[path]
	if !ok {
		return backend.ProjectResult{Result: backend.Fail(fmt.Sprintf("project not found: %s", path))}, nil
	}
	return backend.ProjectResult{Result: backend.OK(), Path: path, Project: snap.Clone()}, nil
}

func (f *Fake) ReadFile(ctx context.Context, path string) (backend.FileContent, error) {
	if err := f.record("readFile"); err != nil {
		return backend.FileContent{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.Files[path]
	if !ok {
		return backend.FileContent{Result: backend.Fail(fmt.Sprintf("file not found: %s", path))}, nil
	}
	return backend.FileContent{Result: backend.OK(), Content: append([]byte(nil), data...)}, nil
}

var _ backend.API = (*Fake)(nil)
