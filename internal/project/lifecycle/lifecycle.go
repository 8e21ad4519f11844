// Package lifecycle creates, opens, resumes and saves projects in
// response to project:* events.
package lifecycle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/john-paul-ruf/nft-studio/internal/backend"
	"github.com/john-paul-ruf/nft-studio/internal/event"
	"github.com/john-paul-ruf/nft-studio/internal/event/events"
	"github.com/john-paul-ruf/nft-studio/internal/event/topic"
	"github.com/john-paul-ruf/nft-studio/internal/history"
	"github.com/john-paul-ruf/nft-studio/internal/logging"
	"github.com/john-paul-ruf/nft-studio/internal/project"
)

var (
	// ErrOpen wraps failures to open a project file.
	ErrOpen = errors.New("open project")

	// ErrResume wraps failures to resume from a settings file.
	ErrResume = errors.New("resume project")

	// ErrNoPath is returned by Save when the project has never been
	// saved or opened and no path is given.
	ErrNoPath = errors.New("project has no file path")
)

// Files is the part of the backend used to load projects.
type Files interface {
	LoadProject(ctx context.Context, path string) (backend.ProjectResult, error)
	ReadFile(ctx context.Context, path string) (backend.FileContent, error)
}

// Looper starts the render loop after a resume.
type Looper interface {
	StartLoop(ctx context.Context) error
}

// Clearer drops the effect selection when a project is replaced.
type Clearer interface {
	Clear(ctx context.Context)
}

// Manager handles project lifecycle events.
type Manager struct {
	files    Files
	history  *history.Service
	bus      event.Bus
	emitter  *event.Emitter
	looper   Looper
	selector Clearer
	template func() project.Snapshot
	recent   func(path string)
	logger   *logging.Logger

	mu   sync.Mutex
	subs *event.Subscriber
	path string
}

// Option configures a Manager.
type Option func(*Manager)

// WithLooper starts the render loop after a successful resume.
func WithLooper(l Looper) Option {
	return func(m *Manager) { m.looper = l }
}

// WithSelector clears the selection when the project is replaced.
func WithSelector(c Clearer) Option {
	return func(m *Manager) { m.selector = c }
}

// WithTemplate sets the source of new project defaults.
func WithTemplate(fn func() project.Snapshot) Option {
	return func(m *Manager) { m.template = fn }
}

// WithRecent sets a callback run with every opened or saved path.
func WithRecent(fn func(path string)) Option {
	return func(m *Manager) { m.recent = fn }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// New returns a manager replacing hist's project state.
func New(files Files, hist *history.Service, bus event.Bus, opts ...Option) *Manager {
	m := &Manager{
		files:    files,
		history:  hist,
		bus:      bus,
		emitter:  event.NewEmitter(bus, "project", "ProjectLifecycle"),
		template: project.DefaultSnapshot,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.OrNull(m.logger).WithComponent("lifecycle")
	return m
}

// Start subscribes to project:new, project:open and project:resume.
func (m *Manager) Start() error {
	subs := event.NewSubscriber(m.bus)
	_, err1 := event.SubscribePayload(subs, events.TopicProjectNew, func(ctx context.Context, p events.ProjectNew) error {
		m.New(ctx, p)
		return nil
	})
	_, err2 := event.SubscribePayload(subs, events.TopicProjectOpen, func(ctx context.Context, p events.ProjectOpen) error {
		return m.Open(ctx, p.Path)
	})
	_, err3 := event.SubscribePayload(subs, events.TopicProjectResume, func(ctx context.Context, p events.ProjectResume) error {
		return m.Resume(ctx, p.SettingsPath)
	})
	if err := errors.Join(err1, err2, err3); err != nil {
		subs.Close()
		return fmt.Errorf("lifecycle: subscribe: %w", err)
	}
	m.mu.Lock()
	m.subs = subs
	m.mu.Unlock()
	return nil
}

// Close unsubscribes.
func (m *Manager) Close() {
	m.mu.Lock()
	subs := m.subs
	m.subs = nil
	m.mu.Unlock()
	if subs != nil {
		subs.Close()
	}
}

// Path returns the file the current project was opened from or saved to.
func (m *Manager) Path() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.path
}

// New replaces the project with a fresh one. Zero fields of p fall back
// to the template.
func (m *Manager) New(ctx context.Context, p events.ProjectNew) {
	snap := m.template()
	snap.Effects = nil
	if p.Name != "" {
		snap.Name = p.Name
	}
	if p.Resolution != "" {
		snap.Resolution = p.Resolution
	}
	if p.Frames > 0 {
		snap.NumFrames = p.Frames
		snap.RenderStart, snap.RenderEnd = 0, p.Frames
	}
	if p.Horizontal != nil {
		snap.IsHorizontal = *p.Horizontal
	}

	m.replace(ctx, snap, "")
	m.logger.Info("new project %q", snap.Name)
	m.emit(ctx, events.TopicProjectLoaded, events.ProjectLoaded{ProjectName: snap.Name})
}

// Open loads a project file through the backend.
func (m *Manager) Open(ctx context.Context, path string) error {
	res, err := m.files.LoadProject(ctx, path)
	if err := backend.Check("loadProject", res.Result, err); err != nil {
		err = fmt.Errorf("%w %s: %w", ErrOpen, path, err)
		m.alert(ctx, "Failed to open project", err)
		return err
	}
	if res.Path != "" {
		path = res.Path
	}

	m.replace(ctx, res.Project, path)
	m.logger.Info("opened %s", path)
	m.emit(ctx, events.TopicProjectLoaded, events.ProjectLoaded{Path: path, ProjectName: res.Project.Name})
	return nil
}

// Resume reads a render settings file, replaces the project with it and
// starts the render loop.
func (m *Manager) Resume(ctx context.Context, settingsPath string) error {
	m.emit(ctx, events.TopicProjectResumeStart, events.ProjectResumeStart{SettingsPath: settingsPath})

	snap, err := m.readSettings(ctx, settingsPath)
	if err != nil {
		err = fmt.Errorf("%w %s: %w", ErrResume, settingsPath, err)
		m.logger.Error("%v", err)
		m.emit(ctx, events.TopicProjectResumeFailed, events.ProjectResumeFailed{SettingsPath: settingsPath, Error: err.Error()})
		return err
	}
	if snap.OutputDirectory == "" {
		snap.OutputDirectory = filepath.Dir(settingsPath)
	}

	m.replace(ctx, snap, "")
	m.emit(ctx, events.TopicProjectResumeSuccess, events.ProjectResumeSuccess{SettingsPath: settingsPath, ProjectName: snap.Name})

	if m.looper != nil {
		if err := m.looper.StartLoop(ctx); err != nil {
			m.logger.Warn("resume %s: render loop: %v", settingsPath, err)
		}
	}
	return nil
}

func (m *Manager) readSettings(ctx context.Context, path string) (project.Snapshot, error) {
	res, err := m.files.ReadFile(ctx, path)
	if err := backend.Check("readFile", res.Result, err); err != nil {
		return project.Snapshot{}, err
	}
	return project.Decode(bytes.NewReader(res.Content))
}

// Save writes the project to path, or to the path it came from when path
// is empty.
func (m *Manager) Save(ctx context.Context, path string) error {
	if path == "" {
		path = m.Path()
	}
	if path == "" {
		return ErrNoPath
	}
	if err := project.SaveFile(path, m.history.State().Snapshot()); err != nil {
		return fmt.Errorf("save project: %w", err)
	}

	m.mu.Lock()
	m.path = path
	m.mu.Unlock()
	if m.recent != nil {
		m.recent(path)
	}
	m.logger.Info("saved %s", path)
	return nil
}

func (m *Manager) replace(ctx context.Context, snap project.Snapshot, path string) {
	if m.selector != nil {
		m.selector.Clear(ctx)
	}
	m.history.State().Replace(snap)
	m.history.Clear(ctx)

	m.mu.Lock()
	m.path = path
	m.mu.Unlock()
	if path != "" && m.recent != nil {
		m.recent(path)
	}
}

func (m *Manager) alert(ctx context.Context, title string, err error) {
	m.logger.Error("%s: %v", title, err)
	m.emit(ctx, events.TopicAppError, events.AppError{Title: title, Message: err.Error(), Source: "lifecycle"})
}

func (m *Manager) emit(ctx context.Context, t topic.Topic, payload any) {
	if err := m.emitter.Emit(ctx, t, payload); err != nil {
		m.logger.Warn("emit %s: %v", t, err)
	}
}
