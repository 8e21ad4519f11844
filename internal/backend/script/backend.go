package script

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/john-paul-ruf/nft-studio/internal/backend"
	"github.com/john-paul-ruf/nft-studio/internal/effect"
	"github.com/john-paul-ruf/nft-studio/internal/logging"
	"github.com/john-paul-ruf/nft-studio/internal/project"
)

// RenderMethod is reported in every RenderResult.
const RenderMethod = "lua"

// DefaultLoopInterval is the pause between render loop frames.
const DefaultLoopInterval = 40 * time.Millisecond

// FrameSink receives frames produced by the render loop.
type FrameSink func(frame int, res backend.RenderResult)

// Backend runs effect scripts from a directory.
type Backend struct {
	dir          string
	stateOpts    []StateOption
	logger       *logging.Logger
	sink         FrameSink
	loopInterval time.Duration

	mu         sync.RWMutex
	scripts    []*Script
	catalog    effect.Catalog
	discovered bool

	loopMu sync.Mutex
	loop   *renderLoop
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger. Script print output goes to it at debug
// level.
func WithLogger(l *logging.Logger) Option {
	return func(b *Backend) {
		b.logger = logging.OrNull(l)
	}
}

// WithCallTimeout bounds every script call.
func WithCallTimeout(d time.Duration) Option {
	return func(b *Backend) {
		b.stateOpts = append(b.stateOpts, WithStateCallTimeout(d))
	}
}

// WithFrameSink receives every frame rendered by the render loop.
func WithFrameSink(sink FrameSink) Option {
	return func(b *Backend) {
		b.sink = sink
	}
}

// WithLoopInterval sets the pause between render loop frames.
func WithLoopInterval(d time.Duration) Option {
	return func(b *Backend) {
		b.loopInterval = d
	}
}

// New returns a backend for the scripts in dir. Scripts are loaded on
// the first discovery.
func New(dir string, opts ...Option) *Backend {
	b := &Backend{
		dir:          dir,
		logger:       logging.Null,
		loopInterval: DefaultLoopInterval,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.WithComponent("script-backend")
	b.stateOpts = append(b.stateOpts, WithStateLogger(b.logger))
	return b
}

// Dir returns the effects directory.
func (b *Backend) Dir() string {
	return b.dir
}

// DiscoverEffects reloads every *.lua file in the directory. Scripts
// that fail to load are logged and skipped.
func (b *Backend) DiscoverEffects(ctx context.Context) (backend.DiscoverResult, error) {
	if _, err := os.Stat(b.dir); err != nil {
		return backend.DiscoverResult{Result: backend.Fail(fmt.Sprintf("effects directory: %v", err))}, nil
	}
	paths, err := filepath.Glob(filepath.Join(b.dir, "*.lua"))
	if err != nil {
		return backend.DiscoverResult{Result: backend.Fail(err.Error())}, nil
	}
	sort.Strings(paths)

	var (
		scripts []*Script
		catalog effect.Catalog
	)
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			closeAll(scripts)
			return backend.DiscoverResult{}, err
		}
		s, err := LoadScript(ctx, path, b.stateOpts...)
		if err != nil {
			b.logger.Warn("skipping effect script: %v", err)
			continue
		}
		if dup := findScript(scripts, s.Info.Name); dup != nil {
			b.logger.Warn("effect %s in %s shadowed by %s", s.Info.Name, filepath.Base(path), filepath.Base(dup.Path))
			s.Close()
			continue
		}
		scripts = append(scripts, s)
		catalog.Add(s.Info)
	}

	b.mu.Lock()
	old := b.scripts
	b.scripts = scripts
	b.catalog = catalog
	b.discovered = true
	b.mu.Unlock()
	closeAll(old)

	b.logger.Info("discovered %d effects in %s", len(scripts), b.dir)
	return backend.DiscoverResult{Result: backend.OK(), Effects: catalog}, nil
}

// GetAvailableEffects returns the catalog, discovering on first use.
func (b *Backend) GetAvailableEffects(ctx context.Context) (backend.DiscoverResult, error) {
	b.mu.RLock()
	discovered, catalog := b.discovered, b.catalog
	b.mu.RUnlock()

	if !discovered {
		return b.DiscoverEffects(ctx)
	}
	return backend.DiscoverResult{Result: backend.OK(), Effects: catalog}, nil
}

// GetEffectDefaults returns the config returned by the script's
// defaults function.
func (b *Backend) GetEffectDefaults(ctx context.Context, name string) (backend.DefaultsResult, error) {
	s, err := b.script(ctx, name)
	if err != nil {
		return backend.DefaultsResult{Result: backend.Fail(err.Error())}, nil
	}
	cfg, err := s.Defaults(ctx)
	if err != nil {
		return backend.DefaultsResult{Result: backend.Fail(err.Error())}, nil
	}
	return backend.DefaultsResult{Result: backend.OK(), Defaults: cfg}, nil
}

// RenderFrame composes the visible effects of snap into a PNG.
func (b *Backend) RenderFrame(ctx context.Context, snap project.Snapshot, frame int) (backend.RenderResult, error) {
	if frame < 0 || (snap.NumFrames > 0 && frame >= snap.NumFrames) {
		return backend.RenderResult{Result: backend.Fail(fmt.Sprintf("frame %d out of range 0-%d", frame, snap.NumFrames-1))}, nil
	}

	canvas, err := b.compose(ctx, snap, frame)
	if err != nil {
		if ctx.Err() != nil {
			return backend.RenderResult{}, ctx.Err()
		}
		return backend.RenderResult{Result: backend.Fail(err.Error()), Method: RenderMethod}, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas.Image()); err != nil {
		return backend.RenderResult{Result: backend.Fail(err.Error()), Method: RenderMethod}, nil
	}
	return backend.RenderResult{
		Result:      backend.OK(),
		FrameBuffer: buf.Bytes(),
		BufferType:  backend.BufferPNG,
		Method:      RenderMethod,
	}, nil
}

func (b *Backend) compose(ctx context.Context, snap project.Snapshot, frame int) (*Canvas, error) {
	w, h := snap.Dimensions()
	canvas := NewCanvas(w, h)
	if bg := snap.ColorSchemeData.Background; bg != "" {
		col, err := ParseColor(bg)
		if err != nil {
			return nil, err
		}
		canvas.Fill(col)
	}

	var finals []effect.Effect
	for _, e := range snap.VisibleEffects() {
		if e.Type == effect.TypeFinalImage {
			finals = append(finals, e)
			continue
		}
		if err := b.renderEffect(ctx, canvas, frame, e); err != nil {
			return nil, err
		}
		for _, sub := range e.SecondaryEffects {
			if !sub.Visible {
				continue
			}
			if err := b.renderEffect(ctx, canvas, frame, sub); err != nil {
				return nil, err
			}
		}
		for _, kf := range e.KeyframeEffects {
			if !kf.Visible || kf.Frame != frame {
				continue
			}
			if err := b.renderEffect(ctx, canvas, frame, kf); err != nil {
				return nil, err
			}
		}
	}
	for _, e := range finals {
		if err := b.renderEffect(ctx, canvas, frame, e); err != nil {
			return nil, err
		}
	}
	return canvas, nil
}

func (b *Backend) renderEffect(ctx context.Context, c *Canvas, frame int, e effect.Effect) error {
	var s *Script
	for _, name := range []string{e.RegistryKey, e.ClassName, e.Name} {
		if name == "" {
			continue
		}
		if found, err := b.script(ctx, name); err == nil {
			s = found
			break
		}
	}
	if s == nil {
		return fmt.Errorf("%w: %s", ErrUnknownEffect, effect.DisplayName(e))
	}
	return s.Render(ctx, c, frame, e.Config)
}

// script finds a loaded script by name, discovering on first use.
func (b *Backend) script(ctx context.Context, name string) (*Script, error) {
	b.mu.RLock()
	discovered := b.discovered
	b.mu.RUnlock()
	if !discovered {
		if _, err := b.DiscoverEffects(ctx); err != nil {
			return nil, err
		}
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if s := findScript(b.scripts, name); s != nil {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownEffect, name)
}

// Close stops the render loop and releases every script.
func (b *Backend) Close() error {
	b.StopRenderLoop(context.Background())

	b.mu.Lock()
	scripts := b.scripts
	b.scripts = nil
	b.discovered = false
	b.mu.Unlock()

	closeAll(scripts)
	return nil
}

func findScript(scripts []*Script, name string) *Script {
	for _, s := range scripts {
		if s.Matches(name) {
			return s
		}
	}
	return nil
}

func closeAll(scripts []*Script) {
	for _, s := range scripts {
		s.Close()
	}
}

var _ backend.API = (*Backend)(nil)
