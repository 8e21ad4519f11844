package events

import "github.com/john-paul-ruf/nft-studio/internal/event/topic"

// Command history topics. The first four are notifications, the rest are
// requests handled by the history service.
const (
	TopicCommandExecuted topic.Topic = "command:executed"
	TopicCommandUndone   topic.Topic = "command:undone"
	TopicCommandRedone   topic.Topic = "command:redone"
	TopicCommandCleared  topic.Topic = "command:cleared"

	TopicCommandUndo        topic.Topic = "command:undo"
	TopicCommandRedo        topic.Topic = "command:redo"
	TopicCommandUndoToIndex topic.Topic = "command:undo-to-index"
	TopicCommandRedoToIndex topic.Topic = "command:redo-to-index"
)

// CommandInfo describes a command that ran, was undone or was redone.
type CommandInfo struct {
	Kind        string
	Description string
	CanUndo     bool
	CanRedo     bool
}

// CommandCleared is emitted when history is wiped.
type CommandCleared struct{}

// CommandUndo requests one undo step.
type CommandUndo struct{}

// CommandRedo requests one redo step.
type CommandRedo struct{}

// CommandToIndex requests undo or redo down to a history index.
type CommandToIndex struct {
	Index int
}
