package config

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/john-paul-ruf/nft-studio/internal/event"
	"github.com/john-paul-ruf/nft-studio/internal/event/events"
	"github.com/john-paul-ruf/nft-studio/internal/logging"
	"github.com/john-paul-ruf/nft-studio/internal/project"
)

// Service owns the preferences file.
type Service struct {
	path     string
	emitter  *event.Emitter
	logger   *logging.Logger
	debounce time.Duration

	mu        sync.RWMutex
	file      Preferences // as stored on disk
	effective Preferences // file plus environment overrides
	watcher   *fileWatcher
	closed    bool
}

// Option configures a Service.
type Option func(*Service)

// WithBus emits preferences:changed on bus after saves and reloads.
func WithBus(bus event.Bus) Option {
	return func(s *Service) {
		if bus != nil {
			s.emitter = event.NewEmitter(bus, "config", "Preferences")
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithDebounce sets the reload debounce of Watch.
func WithDebounce(d time.Duration) Option {
	return func(s *Service) { s.debounce = d }
}

// NewService returns a service for the preferences file at path, holding
// the defaults until Load.
func NewService(path string, opts ...Option) *Service {
	s := &Service{
		path:      path,
		file:      Default(),
		effective: Default(),
		debounce:  DefaultDebounce,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrNull(s.logger).WithComponent("config")
	return s
}

// Path returns the preferences file path.
func (s *Service) Path() string {
	return s.path
}

// Load reads the file and applies environment overrides. On error the
// previous preferences are kept.
func (s *Service) Load() error {
	file, err := readFile(s.path)
	if err != nil {
		return err
	}
	effective := file.Clone()
	if err := applyEnv(&effective); err != nil {
		return err
	}
	file.Normalize()
	effective.Normalize()

	s.mu.Lock()
	s.file, s.effective = file, effective
	s.mu.Unlock()
	return nil
}

// Get returns the effective preferences.
func (s *Service) Get() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.effective.Clone()
}

// Template returns a new project seeded from the preferences.
func (s *Service) Template() project.Snapshot {
	return s.Get().Template()
}

// Update applies fn to the stored preferences, saves them and emits
// preferences:changed. Environment overrides still win afterwards.
func (s *Service) Update(ctx context.Context, fn func(*Preferences)) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	next := s.file.Clone()
	fn(&next)
	next.Normalize()
	if err := writeFile(s.path, next); err != nil {
		s.mu.Unlock()
		return err
	}
	effective := next.Clone()
	if err := applyEnv(&effective); err != nil {
		s.logger.Warn("environment overrides: %v", err)
		effective = next.Clone()
	}
	effective.Normalize()
	s.file, s.effective = next, effective
	s.mu.Unlock()

	s.changed(ctx)
	return nil
}

// SaveTheme stores the UI theme.
func (s *Service) SaveTheme(name string) error {
	return s.Update(context.Background(), func(p *Preferences) { p.Theme = name })
}

// AddRecent moves path to the front of the recent projects list.
func (s *Service) AddRecent(path string) error {
	return s.Update(context.Background(), func(p *Preferences) { p.addRecent(path) })
}

// ToggleFavorite flips a color scheme's favorite flag and reports the new
// state.
func (s *Service) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	var fav bool
	err := s.Update(ctx, func(p *Preferences) { fav = p.toggleFavorite(id) })
	return fav, err
}

// Watch reloads the preferences whenever the file changes on disk.
func (s *Service) Watch() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.watcher != nil {
		return ErrWatching
	}
	w, err := newFileWatcher(s.path, s.debounce, s.reload, func(err error) {
		s.logger.Warn("watch %s: %v", s.path, err)
	})
	if err != nil {
		return err
	}
	s.watcher = w
	return nil
}

func (s *Service) reload() {
	before := s.Get()
	if err := s.Load(); err != nil {
		s.logger.Error("reload %s: %v", s.path, err)
		return
	}
	if reflect.DeepEqual(before, s.Get()) {
		return
	}
	s.logger.Info("reloaded %s", s.path)
	s.changed(context.Background())
}

func (s *Service) changed(ctx context.Context) {
	if s.emitter == nil {
		return
	}
	if err := s.emitter.Emit(ctx, events.TopicPreferencesChanged, events.PreferencesChanged{Path: s.path}); err != nil {
		s.logger.Warn("emit %s: %v", events.TopicPreferencesChanged, err)
	}
}

// Close stops the watcher.
func (s *Service) Close() error {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.closed = true
	s.mu.Unlock()
	if w != nil {
		return w.Close()
	}
	return nil
}
