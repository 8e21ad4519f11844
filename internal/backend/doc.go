// Package backend defines the boundary between the studio and the
// effects engine that discovers effects, resolves their defaults and
// renders frames.
//
// Every call returns a result carrying Success and Error fields the way
// the engine reports them. A non-nil Go error means the call never
// reached the engine (transport failure, cancelled context); a result
// with Success false means the engine refused the request. Callers
// usually fold both into one error with Check.
//
// Two implementations ship with the studio:
//
//   - script: a local engine whose effects are sandboxed Lua scripts
//   - remote: a websocket client for an engine running elsewhere, plus a
//     Server that exposes any API over websocket
package backend
