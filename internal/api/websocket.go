package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/gray-logic-onoff/internal/auth"
	"github.com/nerrad567/gray-logic-onoff/internal/automation"
	"github.com/nerrad567/gray-logic-onoff/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-onoff/internal/infrastructure/logging"
)

// ChannelStateChanged is the frame type pushed for every unit state change.
const ChannelStateChanged = "unit.state_changed"

// Client frame types.
const (
	wsWatch   = "watch"
	wsUnwatch = "unwatch"
	wsCommand = "command"
	wsPing    = "ping"
)

// Server frame types, besides ChannelStateChanged.
const (
	wsAck   = "ack"
	wsError = "error"
	wsPong  = "pong"
)

const (
	// wsQueueSize bounds the frames waiting for a slow client. A client
	// whose queue is full is disconnected and must resynchronise.
	wsQueueSize = 64

	// wsCommandTimeout bounds a command issued over the socket.
	wsCommandTimeout = 5 * time.Second

	wsDefaultPing = 30 * time.Second
)

// wsRequest is a frame received from a client. Ref is echoed on the reply.
type wsRequest struct {
	Type string          `json:"type"`
	Ref  string          `json:"ref,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// wsFrame is a frame sent to a client.
type wsFrame struct {
	Type string    `json:"type"`
	Ref  string    `json:"ref,omitempty"`
	Time time.Time `json:"time"`
	Data any       `json:"data,omitempty"`
}

// watchRequest selects the instances a client receives state frames for.
// An empty list means every instance.
type watchRequest struct {
	Instances []string `json:"instances"`
}

// commandRequest is the data of a command frame.
type commandRequest struct {
	InstanceID string            `json:"instance_id"`
	State      string            `json:"state"`
	Source     automation.Source `json:"source,omitempty"`
}

// commandFunc executes a state command on behalf of a caller.
type commandFunc func(ctx context.Context, claims *auth.Claims, id, state string, source automation.Source) (automation.Status, error)

// Hub pushes unit state changes to connected WebSocket clients.
// It is subscribed to the event bus through Handle.
type Hub struct {
	cfg    config.WebSocketConfig
	logger *logging.Logger

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
	closed  bool
}

// NewHub creates a hub with no clients.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	return &Hub{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[*wsClient]struct{}),
	}
}

// Run blocks until ctx is cancelled, then disconnects every client and
// refuses new ones.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	h.closed = true
	clients := h.snapshotLocked()
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

// Handle delivers ev to every client watching its instance.
func (h *Hub) Handle(_ context.Context, ev automation.Event) error {
	data, err := json.Marshal(wsFrame{Type: ChannelStateChanged, Time: ev.Timestamp, Data: ev})
	if err != nil {
		return err
	}

	h.mu.RLock()
	clients := h.snapshotLocked()
	h.mu.RUnlock()

	for _, c := range clients {
		if c.watching(ev.InstanceID) {
			c.push(data)
		}
	}
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(c *wsClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("websocket client disconnected", "subject", c.claims.Subject, "clients", n)
}

func (h *Hub) snapshotLocked() []*wsClient {
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	return clients
}

// wsClient is one authenticated socket. The queue is never closed; ctx
// cancellation signals shutdown to the writer instead.
type wsClient struct {
	hub    *Hub
	conn   *websocket.Conn
	claims *auth.Claims
	exec   commandFunc

	queue chan []byte
	ctx   context.Context
	stop  context.CancelFunc
	once  sync.Once

	mu      sync.Mutex
	all     bool
	watched map[string]struct{}
}

func newWSClient(h *Hub, conn *websocket.Conn, claims *auth.Claims, exec commandFunc) *wsClient {
	ctx, stop := context.WithCancel(context.Background())
	return &wsClient{
		hub:     h,
		conn:    conn,
		claims:  claims,
		exec:    exec,
		queue:   make(chan []byte, wsQueueSize),
		ctx:     ctx,
		stop:    stop,
		watched: make(map[string]struct{}),
	}
}

// close is idempotent. WriteControl may run concurrently with writeLoop.
func (c *wsClient) close() {
	c.once.Do(func() {
		c.stop()
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "")
		//nolint:errcheck // the peer may already be gone
		c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		c.conn.Close()
		c.hub.remove(c)
	})
}

// push queues a frame, disconnecting the client when it cannot keep up.
func (c *wsClient) push(data []byte) {
	select {
	case <-c.ctx.Done():
	case c.queue <- data:
	default:
		c.hub.logger.Warn("websocket client too slow, disconnecting", "subject", c.claims.Subject)
		c.close()
	}
}

func (c *wsClient) reply(ref, typ string, data any) {
	frame, err := json.Marshal(wsFrame{Type: typ, Ref: ref, Time: time.Now().UTC(), Data: data})
	if err != nil {
		c.hub.logger.Error("encoding websocket reply", "type", typ, "error", err)
		return
	}
	c.push(frame)
}

func (c *wsClient) fail(ref, code, message string) {
	c.reply(ref, wsError, Error{Status: http.StatusBadRequest, Code: code, Message: message})
}

func (c *wsClient) watching(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.all {
		return true
	}
	_, ok := c.watched[id]
	return ok
}

// setWatch adds (or removes) ids. An empty list switches every instance
// on (or everything off).
func (c *wsClient) setWatch(on bool, ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case len(ids) == 0 && on:
		c.all = true
	case len(ids) == 0:
		c.all = false
		c.watched = make(map[string]struct{})
	case on:
		for _, id := range ids {
			c.watched[id] = struct{}{}
		}
	default:
		for _, id := range ids {
			delete(c.watched, id)
		}
	}
}

func (c *wsClient) readLoop() {
	defer c.close()

	cfg := c.hub.cfg
	deadline := time.Duration(cfg.PingInterval+cfg.PongTimeout) * time.Second
	c.conn.SetReadLimit(int64(cfg.MaxMessageSize))
	//nolint:errcheck // a failed deadline surfaces on the next read
	c.conn.SetReadDeadline(time.Now().Add(deadline))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(deadline))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", "subject", c.claims.Subject, "error", err)
			}
			return
		}
		//nolint:errcheck // a failed deadline surfaces on the next read
		c.conn.SetReadDeadline(time.Now().Add(deadline))
		c.dispatch(raw)
	}
}

func (c *wsClient) writeLoop() {
	cfg := c.hub.cfg
	writeWait := time.Duration(cfg.PongTimeout) * time.Second
	pingEvery := time.Duration(cfg.PingInterval) * time.Second
	if pingEvery <= 0 {
		pingEvery = wsDefaultPing
	}
	ticker := time.NewTicker(pingEvery)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		var (
			kind = websocket.TextMessage
			data []byte
		)
		select {
		case <-c.ctx.Done():
			return
		case data = <-c.queue:
		case <-ticker.C:
			kind = websocket.PingMessage
		}

		//nolint:errcheck // a failed deadline surfaces on the write
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(kind, data); err != nil {
			return
		}
	}
}

func (c *wsClient) dispatch(raw []byte) {
	var req wsRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		c.fail("", ErrCodeBadRequest, "invalid JSON frame")
		return
	}

	switch req.Type {
	case wsWatch, wsUnwatch:
		var body watchRequest
		if len(req.Data) > 0 {
			if err := json.Unmarshal(req.Data, &body); err != nil {
				c.fail(req.Ref, ErrCodeBadRequest, "invalid watch data")
				return
			}
		}
		c.setWatch(req.Type == wsWatch, body.Instances)
		c.reply(req.Ref, wsAck, body)

	case wsCommand:
		var body commandRequest
		if err := json.Unmarshal(req.Data, &body); err != nil || body.InstanceID == "" || body.State == "" {
			c.fail(req.Ref, ErrCodeBadRequest, "command needs instance_id and state")
			return
		}
		ctx, cancel := context.WithTimeout(c.ctx, wsCommandTimeout)
		status, err := c.exec(ctx, c.claims, body.InstanceID, body.State, body.Source)
		cancel()
		if err != nil {
			e := errorFor(err)
			if e.Status == http.StatusInternalServerError {
				c.hub.logger.Error("websocket command failed", "instance_id", body.InstanceID, "error", err)
			}
			c.reply(req.Ref, wsError, e)
			return
		}
		c.reply(req.Ref, wsAck, status)

	case wsPing:
		c.reply(req.Ref, wsPong, nil)

	default:
		c.fail(req.Ref, ErrCodeBadRequest, "unknown frame type "+req.Type)
	}
}

// handleWebSocket upgrades an authenticated connection. The caller proves
// identity with a single-use ticket from POST /auth/ws-ticket.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ticket := r.URL.Query().Get("ticket")
	if ticket == "" {
		writeUnauthorized(w, "ticket query parameter is required")
		return
	}
	claims, ok := s.tickets.consume(ticket)
	if !ok {
		writeUnauthorized(w, "invalid or expired ticket")
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || s.isAllowedOrigin(origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	hub := s.Hub()
	c := newWSClient(hub, conn, claims, s.commandUnit)
	if !hub.add(c) {
		conn.Close()
		return
	}
	s.logger.Debug("websocket client connected", "subject", claims.Subject, "role", claims.Role)

	go c.writeLoop()
	go c.readLoop()
}
