package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/john-paul-ruf/nft-studio/internal/backend"
	"github.com/john-paul-ruf/nft-studio/internal/logging"
	"github.com/john-paul-ruf/nft-studio/internal/project"
)

// FrameHandler receives frames pushed by the server's render loop.
type FrameHandler func(frame int, res backend.RenderResult)

// NotifyHandler receives server notifications other than frames.
type NotifyHandler func(method string, data map[string]any)

// Client is a backend.API talking to a Server.
type Client struct {
	ws       *websocket.Conn
	logger   *logging.Logger
	onFrame  FrameHandler
	onNotify NotifyHandler
	header   http.Header

	nextID    atomic.Uint64
	writeMu   sync.Mutex
	closeOnce sync.Once

	mu      sync.Mutex
	pending map[uint64]chan Message
	closed  bool
	err     error
	done    chan struct{}
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClientLogger sets the client logger.
func WithClientLogger(l *logging.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logging.OrNull(l)
	}
}

// WithFrameHandler receives render loop frames.
func WithFrameHandler(fn FrameHandler) ClientOption {
	return func(c *Client) {
		c.onFrame = fn
	}
}

// WithNotifyHandler receives every other server notification, decoded
// as a map.
func WithNotifyHandler(fn NotifyHandler) ClientOption {
	return func(c *Client) {
		c.onNotify = fn
	}
}

// WithHeader adds headers to the websocket handshake.
func WithHeader(h http.Header) ClientOption {
	return func(c *Client) {
		c.header = h
	}
}

// Dial connects to a server at url (ws:// or wss://).
func Dial(ctx context.Context, url string, opts ...ClientOption) (*Client, error) {
	c := &Client{
		logger:  logging.Null,
		pending: make(map[uint64]chan Message),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithComponent("remote-client")

	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, url, c.header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	c.ws = ws

	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	defer close(c.done)
	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			c.shutdown(err)
			return
		}

		var msg Message
		if err := json.Unmarshal(payload, &msg); err != nil {
			c.logger.Warn("discarding malformed message: %v", err)
			continue
		}

		switch msg.Type {
		case TypeResponse:
			c.mu.Lock()
			ch, ok := c.pending[msg.ID]
			delete(c.pending, msg.ID)
			c.mu.Unlock()
			if ok {
				ch <- msg
			}
		case TypeNotify:
			c.notify(msg)
		}
	}
}

func (c *Client) notify(msg Message) {
	if msg.Method != NotifyFrame {
		c.relay(msg)
		return
	}
	if c.onFrame == nil {
		return
	}
	var notice FrameNotice
	if err := json.Unmarshal(msg.Params, &notice); err != nil {
		c.logger.Warn("bad frame notice: %v", err)
		return
	}
	var res backend.RenderResult
	if err := json.Unmarshal(notice.Result, &res); err != nil {
		c.logger.Warn("bad frame %d: %v", notice.Frame, err)
		return
	}
	c.onFrame(notice.Frame, res)
}

func (c *Client) relay(msg Message) {
	if c.onNotify == nil {
		return
	}
	data := map[string]any{}
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &data); err != nil {
			c.logger.Warn("bad %s notice: %v", msg.Method, err)
			return
		}
	}
	c.onNotify(msg.Method, data)
}

// shutdown fails every pending call with err.
func (c *Client) shutdown(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		c.err = err
	}
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
	c.closed = true
}

// call sends a request and decodes the response result into out.
func (c *Client) call(ctx context.Context, method string, params, out any) error {
	var raw json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("%s params: %w", method, err)
		}
		raw = data
	}

	id := c.nextID.Add(1)
	ch := make(chan Message, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.pending[id] = ch
	c.mu.Unlock()

	msg := Message{Ver: ProtocolVersion, Type: TypeRequest, ID: id, Method: method, Params: raw}
	c.writeMu.Lock()
	err := c.ws.WriteJSON(msg)
	c.writeMu.Unlock()
	if err != nil {
		c.forget(id)
		return fmt.Errorf("%s: %w", method, err)
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			return fmt.Errorf("%s: %w", method, ErrClosed)
		}
		if resp.Error != "" {
			return fmt.Errorf("%s: %s", method, resp.Error)
		}
		if err := json.Unmarshal(resp.Result, out); err != nil {
			return fmt.Errorf("%s result: %w", method, err)
		}
		return nil
	case <-ctx.Done():
		c.forget(id)
		return ctx.Err()
	}
}

func (c *Client) forget(id uint64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// Close closes the connection and fails pending calls.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()

		err = c.ws.Close()
		<-c.done
	})
	return err
}

func (c *Client) DiscoverEffects(ctx context.Context) (backend.DiscoverResult, error) {
	var res backend.DiscoverResult
	err := c.call(ctx, MethodDiscoverEffects, nil, &res)
	return res, err
}

func (c *Client) GetAvailableEffects(ctx context.Context) (backend.DiscoverResult, error) {
	var res backend.DiscoverResult
	err := c.call(ctx, MethodGetAvailableEffects, nil, &res)
	return res, err
}

func (c *Client) GetEffectDefaults(ctx context.Context, name string) (backend.DefaultsResult, error) {
	var res backend.DefaultsResult
	err := c.call(ctx, MethodGetEffectDefaults, nameParams{Name: name}, &res)
	return res, err
}

func (c *Client) RenderFrame(ctx context.Context, snap project.Snapshot, frame int) (backend.RenderResult, error) {
	var res backend.RenderResult
	data, err := json.Marshal(snap)
	if err != nil {
		return res, err
	}
	err = c.call(ctx, MethodRenderFrame, renderParams{Project: data, Frame: frame}, &res)
	return res, err
}

func (c *Client) StartRenderLoop(ctx context.Context, snap project.Snapshot) (backend.Result, error) {
	var res backend.Result
	data, err := json.Marshal(snap)
	if err != nil {
		return res, err
	}
	err = c.call(ctx, MethodStartRenderLoop, loopParams{Project: data}, &res)
	return res, err
}

func (c *Client) StopRenderLoop(ctx context.Context) (backend.Result, error) {
	var res backend.Result
	err := c.call(ctx, MethodStopRenderLoop, nil, &res)
	return res, err
}

func (c *Client) SelectFile(ctx context.Context, opts backend.FileOptions) (backend.FileResult, error) {
	var res backend.FileResult
	err := c.call(ctx, MethodSelectFile, opts, &res)
	return res, err
}

func (c *Client) LoadProject(ctx context.Context, path string) (backend.ProjectResult, error) {
	var res backend.ProjectResult
	err := c.call(ctx, MethodLoadProject, pathParams{Path: path}, &res)
	return res, err
}

func (c *Client) ReadFile(ctx context.Context, path string) (backend.FileContent, error) {
	var res backend.FileContent
	err := c.call(ctx, MethodReadFile, pathParams{Path: path}, &res)
	return res, err
}

var _ backend.API = (*Client)(nil)
