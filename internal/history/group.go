package history

import (
	"context"

	"github.com/john-paul-ruf/nft-studio/internal/event/events"
)

// BeginGroup starts a command group. Commands executed until EndGroup
// undo as one step. Nested calls are ignored.
func (s *Service) BeginGroup(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.grouping {
		return
	}
	s.grouping = true
	s.groupName = name
	s.groupCmds = nil
}

// EndGroup closes the group, recording its commands as one compound
// command.
func (s *Service) EndGroup(ctx context.Context) {
	s.mu.Lock()
	if !s.grouping {
		s.mu.Unlock()
		return
	}
	s.grouping = false
	cmds := s.groupCmds
	s.groupCmds = nil
	if len(cmds) == 0 {
		s.mu.Unlock()
		return
	}
	compound := NewCompoundCommand(s.groupName, cmds...)
	s.pushLocked(compound)
	s.mu.Unlock()

	s.announce(ctx, events.TopicCommandExecuted, compound)
}

// CancelGroup abandons the group and reverts the commands it ran.
func (s *Service) CancelGroup() {
	s.mu.Lock()
	cmds := s.groupCmds
	s.grouping = false
	s.groupCmds = nil
	s.mu.Unlock()

	for i := len(cmds) - 1; i >= 0; i-- {
		if err := cmds[i].Undo(s.state); err != nil {
			s.logger.Error("cancel group: undo %s: %v", cmds[i].Description(), err)
		}
	}
}

// IsGrouping returns true while a group is open.
func (s *Service) IsGrouping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grouping
}

// Transaction runs fn inside a group. If fn fails the group is cancelled
// and its commands reverted.
func (s *Service) Transaction(ctx context.Context, name string, fn func() error) error {
	s.BeginGroup(name)
	if err := fn(); err != nil {
		s.CancelGroup()
		return err
	}
	s.EndGroup(ctx)
	return nil
}

// ExecuteGrouped executes cmds as a single undo unit.
func (s *Service) ExecuteGrouped(ctx context.Context, name string, cmds ...Command) error {
	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return s.Execute(ctx, cmds[0])
	}
	return s.Transaction(ctx, name, func() error {
		for _, cmd := range cmds {
			if err := s.Execute(ctx, cmd); err != nil {
				return err
			}
		}
		return nil
	})
}
