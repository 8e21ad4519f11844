// Package remote carries backend.API calls over a websocket.
//
// Client implements backend.API by sending JSON requests to a Server,
// which answers them from any other backend.API. The server can also
// push notifications, used for frames produced by the render loop.
package remote

import (
	"encoding/json"
	"errors"
)

// ProtocolVersion is sent in every message.
const ProtocolVersion = 1

// Message types.
const (
	TypeRequest  = "request"
	TypeResponse = "response"
	TypeNotify   = "notify"
)

// Methods, named after the engine bridge calls.
const (
	MethodDiscoverEffects     = "discoverEffects"
	MethodGetAvailableEffects = "getAvailableEffects"
	MethodGetEffectDefaults   = "getEffectDefaults"
	MethodRenderFrame         = "renderFrame"
	MethodStartRenderLoop     = "startRenderLoop"
	MethodStopRenderLoop      = "stopRenderLoop"
	MethodSelectFile          = "selectFile"
	MethodLoadProject         = "loadProject"
	MethodReadFile            = "readFile"

	// NotifyFrame carries a FrameNotice.
	NotifyFrame = "renderloop:frame"
)

var (
	// ErrClosed is returned by calls on a closed client.
	ErrClosed = errors.New("remote connection closed")

	// ErrUnknownMethod is reported for requests the server cannot route.
	ErrUnknownMethod = errors.New("unknown method")
)

// Message is the single envelope used in both directions.
type Message struct {
	Ver    int             `json:"ver"`
	Type   string          `json:"type"`
	ID     uint64          `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

type nameParams struct {
	Name string `json:"name"`
}

type pathParams struct {
	Path string `json:"path"`
}

type renderParams struct {
	Project json.RawMessage `json:"project"`
	Frame   int             `json:"frame"`
}

type loopParams struct {
	Project json.RawMessage `json:"project"`
}

// FrameNotice is pushed for every render loop frame.
type FrameNotice struct {
	Frame  int             `json:"frame"`
	Result json.RawMessage `json:"result"`
}
