package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/john-paul-ruf/nft-studio/internal/backend"
	"github.com/john-paul-ruf/nft-studio/internal/backend/remote"
	"github.com/john-paul-ruf/nft-studio/internal/backend/script"
	"github.com/john-paul-ruf/nft-studio/internal/config"
	"github.com/john-paul-ruf/nft-studio/internal/event"
	"github.com/john-paul-ruf/nft-studio/internal/logging"
	"github.com/john-paul-ruf/nft-studio/internal/theme"
)

// themeStore lets the toolbar validate theme names against the registry
// and persist the choice in the preferences.
type themeStore struct {
	registry *theme.Registry
	prefs    *config.Service
}

func (s themeStore) Has(name string) bool { return s.registry.Has(name) }

func (s themeStore) SaveTheme(name string) error { return s.prefs.SaveTheme(name) }

// frameRelay forwards render loop frames to a sink set after the backend
// is built, since the render controller needs the backend first.
type frameRelay struct {
	mu   sync.RWMutex
	sink func(frame int, res backend.RenderResult)
}

func (r *frameRelay) set(fn func(frame int, res backend.RenderResult)) {
	r.mu.Lock()
	r.sink = fn
	r.mu.Unlock()
}

func (r *frameRelay) deliver(frame int, res backend.RenderResult) {
	r.mu.RLock()
	fn := r.sink
	r.mu.RUnlock()
	if fn != nil {
		fn(frame, res)
	}
}

// newBackend builds the backend selected in the preferences.
// Remote notifications other than frames are published on the bus
// through notices.
func newBackend(ctx context.Context, cfg config.BackendConfig, prefsPath string, relay *frameRelay, notices *event.BusAdapter, logger *logging.Logger) (backend.API, io.Closer, error) {
	switch cfg.Kind {
	case config.BackendScript:
		dir := cfg.EffectsDir
		if dir == "" {
			dir = filepath.Join(filepath.Dir(prefsPath), "effects")
		}
		b := script.New(dir,
			script.WithLogger(logger),
			script.WithFrameSink(relay.deliver),
		)
		return b, b, nil
	case config.BackendRemote:
		if cfg.URL == "" {
			return nil, nil, ErrNoBackendURL
		}
		c, err := remote.Dial(ctx, cfg.URL,
			remote.WithClientLogger(logger),
			remote.WithFrameHandler(relay.deliver),
			remote.WithNotifyHandler(notices.Publish),
		)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Kind)
}
