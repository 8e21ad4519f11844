// Package history provides undo/redo for project edits.
//
// Every undoable edit is a Command with Execute and Undo methods that act
// on a *project.State. The Service keeps undo and redo stacks, groups
// commands into single undo units, and announces every step on the event
// bus (command:executed, command:undone, command:redone, command:cleared).
// It also answers undo/redo requests arriving as command:undo,
// command:redo, command:undo-to-index and command:redo-to-index events.
//
//	svc := history.NewService(state, history.WithBus(bus))
//	svc.Execute(ctx, history.NewChangeResolutionCommand("4k"))
//	svc.Undo(ctx)
//
// # Grouping
//
//	svc.Transaction(ctx, "Import effects", func() error {
//	    // several svc.Execute calls
//	})
//
// The group undoes and redoes as one step.
package history
