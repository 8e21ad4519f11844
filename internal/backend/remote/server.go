package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/john-paul-ruf/nft-studio/internal/backend"
	"github.com/john-paul-ruf/nft-studio/internal/logging"
	"github.com/john-paul-ruf/nft-studio/internal/project"
)

const writeWait = 10 * time.Second

// Server exposes a backend.API over websocket.
type Server struct {
	api      backend.API
	logger   *logging.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*conn]struct{}
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger sets the server logger.
func WithServerLogger(l *logging.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logging.OrNull(l)
	}
}

// WithCheckOrigin sets the origin check used during upgrade. The default
// accepts every origin.
func WithCheckOrigin(fn func(r *http.Request) bool) ServerOption {
	return func(s *Server) {
		s.upgrader.CheckOrigin = fn
	}
}

// NewServer returns a server answering from api.
func NewServer(api backend.API, opts ...ServerOption) *Server {
	s := &Server{
		api:    api,
		logger: logging.Null,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		conns: make(map[*conn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("remote-server")
	return s
}

// ServeHTTP upgrades the request and serves calls until the peer
// disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}

	c := &conn{ws: ws}
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()
	s.logger.Info("client connected: %s", r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
		s.mu.Lock()
		delete(s.conns, c)
		s.mu.Unlock()
		ws.Close()
		s.logger.Info("client disconnected: %s", r.RemoteAddr)
	}()

	for {
		_, payload, err := ws.ReadMessage()
		if err != nil {
			return
		}

		var msg Message
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logger.Warn("discarding malformed message from %s: %v", r.RemoteAddr, err)
			continue
		}
		if msg.Type != TypeRequest {
			continue
		}

		wg.Add(1)
		go func(msg Message) {
			defer wg.Done()
			resp := s.handle(ctx, msg)
			if err := c.writeJSON(resp); err != nil {
				s.logger.Debug("write response %d: %v", msg.ID, err)
			}
		}(msg)
	}
}

// Notify pushes a notification to every connected client.
func (s *Server) Notify(method string, params any) {
	data, err := json.Marshal(params)
	if err != nil {
		s.logger.Error("marshal %s notification: %v", method, err)
		return
	}
	msg := Message{Ver: ProtocolVersion, Type: TypeNotify, Method: method, Params: data}

	s.mu.Lock()
	conns := make([]*conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		if err := c.writeJSON(msg); err != nil {
			s.logger.Debug("notify %s: %v", method, err)
		}
	}
}

// NotifyFrame pushes a render loop frame. Its signature matches
// script.FrameSink.
func (s *Server) NotifyFrame(frame int, res backend.RenderResult) {
	data, err := json.Marshal(res)
	if err != nil {
		s.logger.Error("marshal frame %d: %v", frame, err)
		return
	}
	s.Notify(NotifyFrame, FrameNotice{Frame: frame, Result: data})
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) handle(ctx context.Context, msg Message) Message {
	resp := Message{Ver: ProtocolVersion, Type: TypeResponse, ID: msg.ID, Method: msg.Method}

	result, err := s.dispatch(ctx, msg.Method, msg.Params)
	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	data, err := json.Marshal(result)
	if err != nil {
		resp.Error = fmt.Sprintf("marshal result: %v", err)
		return resp
	}
	resp.Result = data
	return resp
}

func (s *Server) dispatch(ctx context.Context, method string, params json.RawMessage) (any, error) {
	switch method {
	case MethodDiscoverEffects:
		return s.api.DiscoverEffects(ctx)
	case MethodGetAvailableEffects:
		return s.api.GetAvailableEffects(ctx)
	case MethodGetEffectDefaults:
		var p nameParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("%s params: %w", method, err)
		}
		return s.api.GetEffectDefaults(ctx, p.Name)
	case MethodRenderFrame:
		var p renderParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("%s params: %w", method, err)
		}
		snap, err := decodeSnapshot(p.Project)
		if err != nil {
			return nil, err
		}
		return s.api.RenderFrame(ctx, snap, p.Frame)
	case MethodStartRenderLoop:
		var p loopParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("%s params: %w", method, err)
		}
		snap, err := decodeSnapshot(p.Project)
		if err != nil {
			return nil, err
		}
		return s.api.StartRenderLoop(ctx, snap)
	case MethodStopRenderLoop:
		return s.api.StopRenderLoop(ctx)
	case MethodSelectFile:
		var opts backend.FileOptions
		if err := json.Unmarshal(params, &opts); err != nil {
			return nil, fmt.Errorf("%s params: %w", method, err)
		}
		return s.api.SelectFile(ctx, opts)
	case MethodLoadProject:
		var p pathParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("%s params: %w", method, err)
		}
		return s.api.LoadProject(ctx, p.Path)
	case MethodReadFile:
		var p pathParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("%s params: %w", method, err)
		}
		return s.api.ReadFile(ctx, p.Path)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
}

// decodeSnapshot reads a project through the project codec so missing
// fields get their defaults.
func decodeSnapshot(raw json.RawMessage) (project.Snapshot, error) {
	var snap project.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return snap, fmt.Errorf("project: %w", err)
	}
	snap.Normalize()
	return snap, nil
}

// conn serializes writes; gorilla/websocket allows one concurrent writer.
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(v)
}
