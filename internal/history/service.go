package history

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/john-paul-ruf/nft-studio/internal/event"
	"github.com/john-paul-ruf/nft-studio/internal/event/events"
	"github.com/john-paul-ruf/nft-studio/internal/event/topic"
	"github.com/john-paul-ruf/nft-studio/internal/logging"
	"github.com/john-paul-ruf/nft-studio/internal/project"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrInvalidIndex  = errors.New("history index out of range")
	ErrNilCommand    = errors.New("command cannot be nil")
)

// DefaultMaxEntries bounds the undo stack.
const DefaultMaxEntries = 100

type entry struct {
	command   Command
	timestamp time.Time
}

// Info describes one history entry. Index is the entry's position in
// History(); Applied is false for entries on the redo side.
type Info struct {
	Index       int
	Kind        string
	Description string
	Timestamp   time.Time
	Applied     bool
}

// Service manages undo/redo for one project.
type Service struct {
	mu sync.Mutex

	state *project.State

	undoStack []*entry
	redoStack []*entry

	grouping  bool
	groupName string
	groupCmds []Command

	maxEntries int

	bus     event.Bus
	emitter *event.Emitter
	subs    *event.Subscriber
	logger  *logging.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithBus announces history changes on bus.
func WithBus(bus event.Bus) Option {
	return func(s *Service) {
		s.bus = bus
	}
}

// WithMaxEntries bounds the undo stack.
func WithMaxEntries(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService creates a history for state.
func NewService(state *project.State, opts ...Option) *Service {
	s := &Service{
		state:      state,
		maxEntries: DefaultMaxEntries,
		logger:     logging.Null,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrNull(s.logger).WithComponent("history")
	if s.bus != nil {
		s.emitter = event.NewEmitter(s.bus, "history", "CommandService")
	}
	return s
}

// State returns the project the service edits.
func (s *Service) State() *project.State {
	return s.state
}

// Listen subscribes to undo/redo request events on the service's bus.
func (s *Service) Listen() error {
	if s.bus == nil {
		return nil
	}
	subs := event.NewSubscriber(s.bus)

	_, err := event.SubscribePayload(subs, events.TopicCommandUndo, func(ctx context.Context, _ events.CommandUndo) error {
		return ignoreEmpty(s.Undo(ctx))
	}, event.WithPriority(event.PriorityCritical))
	if err == nil {
		_, err = event.SubscribePayload(subs, events.TopicCommandRedo, func(ctx context.Context, _ events.CommandRedo) error {
			return ignoreEmpty(s.Redo(ctx))
		}, event.WithPriority(event.PriorityCritical))
	}
	if err == nil {
		_, err = event.SubscribePayload(subs, events.TopicCommandUndoToIndex, func(ctx context.Context, p events.CommandToIndex) error {
			return s.UndoToIndex(ctx, p.Index)
		}, event.WithPriority(event.PriorityCritical))
	}
	if err == nil {
		_, err = event.SubscribePayload(subs, events.TopicCommandRedoToIndex, func(ctx context.Context, p events.CommandToIndex) error {
			return s.RedoToIndex(ctx, p.Index)
		}, event.WithPriority(event.PriorityCritical))
	}
	if err != nil {
		subs.Close()
		return fmt.Errorf("history: subscribe: %w", err)
	}

	s.mu.Lock()
	s.subs = subs
	s.mu.Unlock()
	return nil
}

// Close releases bus subscriptions.
func (s *Service) Close() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()
	if subs != nil {
		subs.Close()
	}
}

func ignoreEmpty(err error) error {
	if errors.Is(err, ErrNothingToUndo) || errors.Is(err, ErrNothingToRedo) {
		return nil
	}
	return err
}

// Execute runs cmd and records it. Inside a group the command joins the
// group instead.
func (s *Service) Execute(ctx context.Context, cmd Command) error {
	if cmd == nil {
		return ErrNilCommand
	}
	if err := cmd.Execute(s.state); err != nil {
		s.logger.Warn("%s failed: %v", cmd.Description(), err)
		return fmt.Errorf("%s: %w", cmd.Description(), err)
	}

	s.mu.Lock()
	if s.grouping {
		s.groupCmds = append(s.groupCmds, cmd)
		s.mu.Unlock()
		return nil
	}
	s.pushLocked(cmd)
	s.mu.Unlock()

	s.logger.Debug("executed %s", cmd.Description())
	s.announce(ctx, events.TopicCommandExecuted, cmd)
	return nil
}

func (s *Service) pushLocked(cmd Command) {
	s.undoStack = append(s.undoStack, &entry{command: cmd, timestamp: time.Now()})
	s.redoStack = nil

	if len(s.undoStack) > s.maxEntries {
		excess := len(s.undoStack) - s.maxEntries
		s.undoStack = s.undoStack[excess:]
	}
}

// Undo undoes the last command. The lock is not held while the command
// runs, so project listeners may query the service.
func (s *Service) Undo(ctx context.Context) error {
	s.mu.Lock()
	if len(s.undoStack) == 0 {
		s.mu.Unlock()
		return ErrNothingToUndo
	}
	e := s.undoStack[len(s.undoStack)-1]
	s.undoStack = s.undoStack[:len(s.undoStack)-1]
	s.mu.Unlock()

	if err := e.command.Undo(s.state); err != nil {
		s.mu.Lock()
		s.undoStack = append(s.undoStack, e)
		s.mu.Unlock()
		s.logger.Error("undo %s: %v", e.command.Description(), err)
		return fmt.Errorf("undo %s: %w", e.command.Description(), err)
	}

	s.mu.Lock()
	s.redoStack = append(s.redoStack, e)
	s.mu.Unlock()

	s.announce(ctx, events.TopicCommandUndone, e.command)
	return nil
}

// Redo re-applies the last undone command.
func (s *Service) Redo(ctx context.Context) error {
	s.mu.Lock()
	if len(s.redoStack) == 0 {
		s.mu.Unlock()
		return ErrNothingToRedo
	}
	e := s.redoStack[len(s.redoStack)-1]
	s.redoStack = s.redoStack[:len(s.redoStack)-1]
	s.mu.Unlock()

	if err := e.command.Execute(s.state); err != nil {
		s.mu.Lock()
		s.redoStack = append(s.redoStack, e)
		s.mu.Unlock()
		s.logger.Error("redo %s: %v", e.command.Description(), err)
		return fmt.Errorf("redo %s: %w", e.command.Description(), err)
	}

	s.mu.Lock()
	s.undoStack = append(s.undoStack, e)
	s.mu.Unlock()

	s.announce(ctx, events.TopicCommandRedone, e.command)
	return nil
}

// UndoToIndex undoes commands until the entry at index is the first one
// not applied.
func (s *Service) UndoToIndex(ctx context.Context, index int) error {
	if index < 0 || index >= s.UndoCount() {
		return fmt.Errorf("%w: undo to %d", ErrInvalidIndex, index)
	}
	for s.UndoCount() > index {
		if err := s.Undo(ctx); err != nil {
			return err
		}
	}
	return nil
}

// RedoToIndex redoes commands until the entry at index is the last one
// applied.
func (s *Service) RedoToIndex(ctx context.Context, index int) error {
	undo := s.UndoCount()
	if index < undo || index >= undo+s.RedoCount() {
		return fmt.Errorf("%w: redo to %d", ErrInvalidIndex, index)
	}
	for s.UndoCount() <= index {
		if err := s.Redo(ctx); err != nil {
			return err
		}
	}
	return nil
}

// CanUndo returns true if undo is available.
func (s *Service) CanUndo() bool {
	return s.UndoCount() > 0
}

// CanRedo returns true if redo is available.
func (s *Service) CanRedo() bool {
	return s.RedoCount() > 0
}

// UndoCount returns the number of undo operations available.
func (s *Service) UndoCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undoStack)
}

// RedoCount returns the number of redo operations available.
func (s *Service) RedoCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redoStack)
}

// Clear removes all undo/redo history.
func (s *Service) Clear(ctx context.Context) {
	s.mu.Lock()
	s.undoStack = nil
	s.redoStack = nil
	s.grouping = false
	s.groupCmds = nil
	s.mu.Unlock()

	if s.emitter == nil {
		return
	}
	if err := s.emitter.Emit(ctx, events.TopicCommandCleared, events.CommandCleared{}); err != nil {
		s.logger.Warn("announce %s: %v", events.TopicCommandCleared, err)
	}
}

// History lists applied entries oldest first, followed by undone entries
// in the order Redo would re-apply them.
func (s *Service) History() []Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Info, 0, len(s.undoStack)+len(s.redoStack))
	for _, e := range s.undoStack {
		out = append(out, infoOf(len(out), e, true))
	}
	for i := len(s.redoStack) - 1; i >= 0; i-- {
		out = append(out, infoOf(len(out), s.redoStack[i], false))
	}
	return out
}

// UndoInfo returns the next command Undo would reverse.
func (s *Service) UndoInfo() (Info, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.undoStack) == 0 {
		return Info{}, false
	}
	n := len(s.undoStack) - 1
	return infoOf(n, s.undoStack[n], true), true
}

// RedoInfo returns the next command Redo would re-apply.
func (s *Service) RedoInfo() (Info, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.redoStack) == 0 {
		return Info{}, false
	}
	return infoOf(len(s.undoStack), s.redoStack[len(s.redoStack)-1], false), true
}

func infoOf(index int, e *entry, applied bool) Info {
	return Info{
		Index:       index,
		Kind:        e.command.Kind(),
		Description: e.command.Description(),
		Timestamp:   e.timestamp,
		Applied:     applied,
	}
}

// MaxEntries returns the maximum number of undo entries.
func (s *Service) MaxEntries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxEntries
}

// SetMaxEntries changes the limit, dropping the oldest entries if needed.
func (s *Service) SetMaxEntries(max int) {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxEntries = max
	if len(s.undoStack) > max {
		s.undoStack = s.undoStack[len(s.undoStack)-max:]
	}
}

func (s *Service) announce(ctx context.Context, t topic.Topic, cmd Command) {
	if s.emitter == nil {
		return
	}
	info := events.CommandInfo{
		Kind:        cmd.Kind(),
		Description: cmd.Description(),
		CanUndo:     s.CanUndo(),
		CanRedo:     s.CanRedo(),
	}
	if err := s.emitter.Emit(ctx, t, info); err != nil {
		s.logger.Warn("announce %s: %v", t, err)
	}
}
