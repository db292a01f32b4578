// Package ws provides the websocket connection core for the push gateway.
package ws

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/lxzan/gws"
	"github.com/rs/zerolog"
)

// FrameHandler is invoked once per inbound text frame. Handlers run on
// the read loop and must not block for extended periods.
type FrameHandler func(data []byte)

// Config holds configuration options for a websocket client.
type Config struct {
	// URL is the websocket server endpoint to connect to.
	URL string
	// PingInterval is the duration between keepalive pings.
	PingInterval time.Duration
	// PongWait is the maximum time to wait for a pong before the
	// connection deadline expires.
	PongWait time.Duration
}

// Client manages a single websocket connection. There is no automatic
// reconnect: a failed connect is terminal for that attempt, and a dropped
// connection stays disconnected until Connect is called again.
type Client struct {
	config  Config
	state   *State
	handler *eventHandler
	logger  zerolog.Logger

	mu            sync.RWMutex
	conn          *gws.Conn
	onFrame       FrameHandler
	connectedChan chan struct{}
	stopChan      chan struct{}
	wg            sync.WaitGroup
}

type eventHandler struct {
	client *Client
}

// NewClient creates a websocket client for the given configuration.
// Default values are applied for any zero-valued fields.
func NewClient(config Config) *Client {
	if config.PingInterval == 0 {
		config.PingInterval = 10 * time.Second
	}
	if config.PongWait == 0 {
		config.PongWait = 20 * time.Second
	}

	client := &Client{
		config:        config,
		state:         &State{},
		connectedChan: make(chan struct{}),
		stopChan:      make(chan struct{}),
		logger:        zerolog.Nop(),
	}
	client.state.Store(StateDisconnected)
	client.handler = &eventHandler{client: client}
	return client
}

// SetLogger configures the logger for the websocket client.
func (c *Client) SetLogger(logger zerolog.Logger) {
	c.logger = logger
}

// OnFrame registers the handler invoked for every inbound text frame.
// It must be set before Connect.
func (c *Client) OnFrame(handler FrameHandler) {
	c.mu.Lock()
	c.onFrame = handler
	c.mu.Unlock()
}

func (h *eventHandler) OnOpen(socket *gws.Conn) {
	h.client.state.Store(StateConnected)

	h.client.mu.Lock()
	select {
	case <-h.client.connectedChan:
	default:
		close(h.client.connectedChan)
	}
	h.client.mu.Unlock()

	h.client.logger.Info().
		Str("url", h.client.config.URL).
		Msg("websocket connected")

	_ = socket.SetDeadline(time.Now().Add(h.client.config.PingInterval + h.client.config.PongWait))
}

func (h *eventHandler) OnClose(socket *gws.Conn, err error) {
	// Keep the closed state terminal; otherwise fall back to disconnected.
	if h.client.state.Load() != StateClosed {
		h.client.state.Store(StateDisconnected)
	}

	h.client.logger.Warn().
		Err(err).
		Str("url", h.client.config.URL).
		Msg("websocket disconnected")
}

func (h *eventHandler) OnPing(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(h.client.config.PingInterval + h.client.config.PongWait))
	_ = socket.WritePong(nil)
}

func (h *eventHandler) OnPong(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(h.client.config.PingInterval + h.client.config.PongWait))
}

func (h *eventHandler) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()
	h.client.dispatchFrame(message.Bytes())
}

// dispatchFrame hands one inbound frame to the registered handler.
// Frames arriving after Close are dropped.
func (c *Client) dispatchFrame(data []byte) {
	if len(data) == 0 {
		return
	}
	if c.state.Load() != StateConnected {
		return
	}

	c.mu.RLock()
	handler := c.onFrame
	c.mu.RUnlock()

	if handler != nil {
		handler(data)
	}
}

// Connect establishes the websocket connection. It blocks until the
// handshake completes, the context is done, or the client is closed.
func (c *Client) Connect(ctx context.Context) error {
	if !c.state.CompareAndSwap(StateDisconnected, StateConnecting) {
		current := c.state.Load()
		if current == StateConnected {
			return nil
		}
		return fmt.Errorf("invalid state for connect: %s", current)
	}

	c.mu.Lock()
	c.connectedChan = make(chan struct{})
	connected := c.connectedChan
	c.mu.Unlock()

	socket, _, err := gws.NewClient(c.handler, &gws.ClientOption{
		Addr: c.config.URL,
	})
	if err != nil {
		c.state.Store(StateDisconnected)
		return fmt.Errorf("connect websocket: %w", err)
	}

	c.mu.Lock()
	c.conn = socket
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		socket.ReadLoop()
	}()

	select {
	case <-connected:
		return nil
	case <-ctx.Done():
		_ = socket.NetConn().Close()
		c.state.Store(StateDisconnected)
		return ctx.Err()
	case <-c.stopChan:
		_ = socket.NetConn().Close()
		c.state.Store(StateClosed)
		return fmt.Errorf("client closed")
	}
}

// Close shuts down the websocket client and releases the socket. It is
// valid from any state and is terminal; no frame handler fires afterward.
func (c *Client) Close() error {
	if !c.state.CompareAndSwap(StateConnected, StateClosed) &&
		!c.state.CompareAndSwap(StateConnecting, StateClosed) &&
		!c.state.CompareAndSwap(StateDisconnected, StateClosed) {
		return nil
	}

	close(c.stopChan)

	c.mu.Lock()
	if c.conn != nil {
		_ = c.conn.NetConn().Close()
	}
	c.mu.Unlock()

	c.wg.Wait()
	return nil
}

// State returns the current connection state.
func (c *Client) State() ConnState {
	return c.state.Load()
}

// IsConnected returns true if the websocket has an active connection.
func (c *Client) IsConnected() bool {
	return c.state.Load() == StateConnected
}

// WriteMessage sends raw bytes over the websocket connection.
func (c *Client) WriteMessage(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.conn == nil || c.state.Load() != StateConnected {
		return fmt.Errorf("websocket not connected")
	}

	return c.conn.WriteMessage(gws.OpcodeText, data)
}

// SendJSON marshals the given value and sends it as a text frame.
func (c *Client) SendJSON(v any) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	return c.WriteMessage(data)
}

// SendPing sends a ping frame to keep the connection alive.
func (c *Client) SendPing() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.conn == nil || c.state.Load() != StateConnected {
		return fmt.Errorf("websocket not connected")
	}

	return c.conn.WritePing(nil)
}
