// Package project owns the studio's single mutable project.
//
// A State holds the effect list, output resolution, orientation, frame
// count and color scheme behind a mutex. Readers take a Snapshot, a deep
// copy they may keep and inspect freely. Writers are the command history
// and the project lifecycle; every mutation is id-based and notifies
// OnChange listeners once the lock has been released.
//
// # Resolution rescaling
//
// Effect configs store positions in pixels. Changing the resolution or
// toggling orientation rescales every positional value (maps with numeric
// "x" and "y", and two-element "position" / "center" arrays) by the
// width and height ratio, so effects stay where the user put them.
//
//	prior, err := state.SetResolution("4k")
//	// prior holds the effects before rescaling, for undo.
package project
