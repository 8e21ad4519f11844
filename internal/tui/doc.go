// Package tui is the terminal front-end. It draws the project's effect
// list and a status line with tcell, and turns key presses into bus
// events. It never mutates project state directly; every change goes
// through the controllers listening on the bus.
//
// Keys:
//
//	up/down, j/k   move the cursor
//	a / F          add primary / final image effect (picker)
//	s / f          add secondary / keyframe effect to the cursor effect
//	m              context menu (via effectspanel:effect:rightclick)
//	d              delete
//	J / K          move effect down / up
//	space          toggle visibility
//	enter          edit; opens the config panel for the selection
//	[ / ]          previous / next frame
//	r / l          render / toggle render loop
//	u / U          undo / redo
//	+ - 0          zoom
//	o              toggle orientation
//	t              next theme
//	R              next resolution
//	< / >          one frame fewer / more
//	c              next color scheme
//	w              effect wizard
//	q              quit
package tui
