// Package gateway talks to the native launcher backend over a WebSocket IPC
// channel. Commands are request/response frames correlated by id; download
// progress arrives as pushed event frames.
package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/egoavara/astra-launcher/internal/launcher"
	"github.com/egoavara/astra-launcher/internal/logger"
)

// DefaultURL is the backend IPC endpoint used when none is configured
const DefaultURL = "ws://127.0.0.1:8787/ipc"

const handshakeTimeout = 10 * time.Second

// an absent result decodes like an explicit null
var nullResult = []byte("null")

// Client implements launcher.Backend. The connection is dialed lazily on the
// first command and re-dialed after it drops, so a backend that starts late
// shows up as a failed check the user can retry.
type Client struct {
	url    string
	dialer *websocket.Dialer
	log    *zerolog.Logger

	mu      sync.Mutex
	conn    *connection
	subs    map[uint64]func(launcher.DownloadProgress)
	nextSub uint64
	closed  bool
}

var _ launcher.Backend = (*Client)(nil)

// NewClient creates a client for the backend at url
func NewClient(url string, log *zerolog.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		url: url,
		dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
		},
		log:  log,
		subs: make(map[uint64]func(launcher.DownloadProgress)),
	}
}

// CheckUpdates runs check_updates
func (c *Client) CheckUpdates(ctx context.Context) (launcher.UpdateInfo, error) {
	var payload UpdateInfoPayload
	if err := c.Call(ctx, CommandCheckUpdates, nil, &payload); err != nil {
		return launcher.UpdateInfo{}, err
	}
	return payload.ToUpdateInfo()
}

// DownloadUpdate runs download_game_update and waits for it to finish
func (c *Client) DownloadUpdate(ctx context.Context, version, downloadURL string) error {
	return c.Call(ctx, CommandDownloadUpdate, DownloadArgs{Version: version, DownloadURL: downloadURL}, nil)
}

// LaunchGame runs launch_astra
func (c *Client) LaunchGame(ctx context.Context) error {
	return c.Call(ctx, CommandLaunchGame, nil, nil)
}

// GetConfig runs get_config
func (c *Client) GetConfig(ctx context.Context) (launcher.LauncherConfig, error) {
	var payload ConfigPayload
	if err := c.Call(ctx, CommandGetConfig, nil, &payload); err != nil {
		return launcher.LauncherConfig{}, err
	}
	return payload.ToConfig()
}

// UpdateConfig runs update_config
func (c *Client) UpdateConfig(ctx context.Context, cfg launcher.LauncherConfig) error {
	return c.Call(ctx, CommandUpdateConfig, UpdateConfigArgs{Config: FromConfig(cfg)}, nil)
}

// CurrentVersion runs get_current_version. It returns nil when the game is
// not installed.
func (c *Client) CurrentVersion(ctx context.Context) (*string, error) {
	var version *string
	if err := c.Call(ctx, CommandCurrentVersion, nil, &version); err != nil {
		return nil, err
	}
	return version, nil
}

// SubscribeProgress registers handler for download-progress events. The
// registration outlives reconnects and is released by the returned
// subscription or by Close.
func (c *Client) SubscribeProgress(ctx context.Context, handler func(launcher.DownloadProgress)) (launcher.Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	c.nextSub++
	id := c.nextSub
	c.subs[id] = handler
	return &subscription{client: c, id: id}, nil
}

// Call sends command with args and decodes the result into result when it
// is not nil. A missing result decodes as null. A backend failure is
// returned as *BackendError.
func (c *Client) Call(ctx context.Context, command string, args interface{}, result interface{}) error {
	conn, err := c.connect(ctx)
	if err != nil {
		return err
	}

	resp, err := conn.roundTrip(ctx, Request{
		ID:      uuid.NewString(),
		Command: command,
		Args:    args,
	})
	if err != nil {
		return errors.Wrap(err, command)
	}
	if !resp.OK {
		return &BackendError{Command: command, Message: resp.Error}
	}
	if result != nil {
		raw := resp.Result
		if len(raw) == 0 {
			raw = nullResult
		}
		if err := json.Unmarshal(raw, result); err != nil {
			return errors.Wrapf(err, "%s: decode result", command)
		}
	}
	return nil
}

// Close drops the connection and all progress registrations
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conn := c.conn
	c.conn = nil
	c.subs = make(map[uint64]func(launcher.DownloadProgress))
	c.mu.Unlock()

	if conn != nil {
		return conn.close()
	}
	return nil
}

func (c *Client) connect(ctx context.Context) (*connection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if c.conn != nil && !c.conn.isDone() {
		return c.conn, nil
	}

	ws, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "connect to backend at %s", c.url)
	}
	c.log.Info().Str("url", c.url).Msg("Connected to backend")

	conn := newConnection(ws)
	c.conn = conn
	go c.readLoop(conn)
	return conn, nil
}

func (c *Client) readLoop(conn *connection) {
	defer conn.fail()

	for {
		_, data, err := conn.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Warn().Err(err).Msg("Backend connection lost")
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.log.Warn().Err(err).Msg("Dropping malformed frame")
			continue
		}

		if frame.Event != "" {
			c.dispatch(frame)
			continue
		}
		if !conn.deliver(frame) {
			c.log.Debug().Str("id", frame.ID).Msg("Dropping response for unknown request")
		}
	}
}

func (c *Client) dispatch(frame Frame) {
	if frame.Event != launcher.ProgressEvent {
		c.log.Debug().Str("event", frame.Event).Msg("Ignoring event")
		return
	}

	var payload ProgressPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		c.log.Warn().Err(err).Msg("Dropping malformed progress event")
		return
	}
	progress, err := payload.ToProgress()
	if err != nil {
		c.log.Warn().Err(err).Msg("Dropping malformed progress event")
		return
	}

	c.mu.Lock()
	handlers := make([]func(launcher.DownloadProgress), 0, len(c.subs))
	for _, h := range c.subs {
		handlers = append(handlers, h)
	}
	c.mu.Unlock()

	for _, h := range handlers {
		h(progress)
	}
}

func (c *Client) unsubscribe(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subs, id)
}

type subscription struct {
	client *Client
	id     uint64
	once   sync.Once
}

func (s *subscription) Close() error {
	s.once.Do(func() {
		s.client.unsubscribe(s.id)
	})
	return nil
}

// connection is one dialed WebSocket with its in-flight requests
type connection struct {
	ws      *websocket.Conn
	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan Frame

	done     chan struct{}
	doneOnce sync.Once
}

func newConnection(ws *websocket.Conn) *connection {
	return &connection{
		ws:      ws,
		pending: make(map[string]chan Frame),
		done:    make(chan struct{}),
	}
}

func (c *connection) roundTrip(ctx context.Context, req Request) (Frame, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return Frame{}, errors.Wrap(err, "encode request")
	}

	ch := make(chan Frame, 1)
	c.mu.Lock()
	c.pending[req.ID] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, req.ID)
		c.mu.Unlock()
	}()

	c.writeMu.Lock()
	err = c.ws.WriteMessage(websocket.TextMessage, data)
	c.writeMu.Unlock()
	if err != nil {
		return Frame{}, errors.Wrap(err, "send request")
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-c.done:
		return Frame{}, ErrClosed
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	}
}

func (c *connection) deliver(frame Frame) bool {
	c.mu.Lock()
	ch, ok := c.pending[frame.ID]
	c.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case ch <- frame:
	default:
	}
	return true
}

func (c *connection) isDone() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *connection) fail() {
	c.doneOnce.Do(func() {
		close(c.done)
	})
}

func (c *connection) close() error {
	c.writeMu.Lock()
	_ = c.ws.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	c.writeMu.Unlock()
	c.fail()
	return c.ws.Close()
}
