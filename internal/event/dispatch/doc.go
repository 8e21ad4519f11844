// Package dispatch runs event handlers for the studio event bus.
//
// Two dispatchers are provided:
//
//   - SyncDispatcher runs a handler in the emitter's goroutine. Panel and
//     toolbar events use it so state is settled when Emit returns.
//   - AsyncDispatcher runs handlers on a bounded worker pool. The event
//     monitor and remote relays use it so they never stall the emitter.
//
// Both recover handler panics and report them as a Result, so one broken
// subscriber cannot take down the others or the process.
package dispatch
