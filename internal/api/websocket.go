package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/relayhub-core/internal/infrastructure/config"
	"github.com/nerrad567/relayhub-core/internal/infrastructure/logging"
	"github.com/nerrad567/relayhub-core/internal/state"
)

// WebSocket protocol constants.
const (
	// WSCommandLightOn and WSCommandLightOff are the only recognised
	// subscriber commands, and the commands pushed on every transition.
	WSCommandLightOn  = "light_on"
	WSCommandLightOff = "light_off"

	// wsSendBufferSize is the per-client outbound message buffer size.
	wsSendBufferSize = 256
)

// CommandRouter is the control-plane surface the hub needs for inbound
// subscriber commands.
type CommandRouter interface {
	TurnOn(ctx context.Context) state.Snapshot
	TurnOff(ctx context.Context) state.Snapshot
}

// initMessage is sent to every subscriber immediately on connect, so a
// newly joined subscriber is never left stale even if it misses the next
// broadcast.
type initMessage struct {
	Type      string `json:"type"`
	BulbState string `json:"bulbState"`
	Timestamp string `json:"timestamp"`
}

// commandMessage is pushed to all subscribers on every actuator
// transition, and is the shape subscribers send to request one.
type commandMessage struct {
	Command   string `json:"command"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Hub manages WebSocket subscriber connections and fans out actuator
// transitions.
//
// The hub owns the live set exclusively: handlers and the relay Router
// only ever go through Register/Unregister/BroadcastActuatorChange. A
// subscriber whose send buffer is full or whose connection errors is
// dropped, never retried — it can reconnect and resync via init.
type Hub struct {
	cfg      config.WebSocketConfig
	logger   *logging.Logger
	registry *state.Registry
	clients  map[*WSClient]struct{}
	mu       sync.RWMutex

	// router handles inbound subscriber commands. Set once during server
	// construction, before any client connects.
	router CommandRouter
}

// WSClient represents a connected WebSocket subscriber.
type WSClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// upgrader configures the WebSocket upgrader.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		// Origin checking is handled by CORS middleware
		return true
	},
}

// NewHub creates a new WebSocket hub.
func NewHub(cfg config.WebSocketConfig, registry *state.Registry, logger *logging.Logger) *Hub {
	return &Hub{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		clients:  make(map[*WSClient]struct{}),
	}
}

// SetCommandRouter wires the control plane for inbound commands.
func (h *Hub) SetCommandRouter(router CommandRouter) {
	h.router = router
}

// Run starts the hub's main loop. It blocks until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// Register adds a subscriber to the live set and immediately sends it the
// current actuator state.
func (h *Hub) Register(client *WSClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	h.sendInit(client)

	h.logger.Debug("websocket client connected", "clients", h.ClientCount())
}

// Unregister removes a subscriber from the live set. Idempotent: only the
// goroutine that actually removes the client closes its send channel,
// preventing double-close panics during shutdown.
func (h *Hub) Unregister(client *WSClient) {
	h.mu.Lock()
	_, existed := h.clients[client]
	delete(h.clients, client)
	h.mu.Unlock()

	if existed {
		close(client.send)
	}
	h.logger.Debug("websocket client disconnected", "clients", h.ClientCount())
}

// sendInit pushes the init message carrying the current actuator state.
func (h *Hub) sendInit(client *WSClient) {
	msg := initMessage{
		Type:      "init",
		BulbState: actuatorStateString(h.registry.Get().ActuatorOn),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal init message", "error", err)
		return
	}

	client.trySend(data)
}

// BroadcastActuatorChange pushes a light_on/light_off command to every
// live subscriber.
//
// Each send is independent: a failed or saturated subscriber is dropped
// from the live set rather than blocking delivery to the others.
func (h *Hub) BroadcastActuatorChange(on bool) {
	command := WSCommandLightOff
	if on {
		command = WSCommandLightOn
	}

	msg := commandMessage{
		Command:   command,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal broadcast message", "error", err)
		return
	}

	// Snapshot the live set under the hub lock, then release before sending.
	h.mu.RLock()
	clients := make([]*WSClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if !client.trySend(data) {
			h.logger.Warn("dropping unresponsive websocket client")
			h.Unregister(client)
			client.conn.Close() //nolint:errcheck // Best-effort close of dead connection
		}
	}

	h.logger.Debug("actuator broadcast sent", "command", command, "recipients", len(clients))
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// closeAll disconnects all subscribers and closes their send channels
// so writePump goroutines can exit cleanly.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.send)
		if client.conn != nil {
			client.conn.Close() //nolint:errcheck // Shutdown path
		}
		delete(h.clients, client)
	}
}

// handleWebSocket upgrades the HTTP connection to a WebSocket connection.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &WSClient{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, wsSendBufferSize),
	}

	s.hub.Register(client)

	go client.writePump(s.wsCfg)
	go client.readPump(s.wsCfg)
}

// readPump reads messages from the WebSocket connection.
func (c *WSClient) readPump(cfg config.WebSocketConfig) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close() //nolint:errcheck // Read loop exit
	}()

	c.conn.SetReadLimit(int64(cfg.MaxMessageSize))
	pingInterval := time.Duration(cfg.PingInterval) * time.Second
	pongWait := time.Duration(cfg.PongTimeout) * time.Second
	//nolint:errcheck // Best-effort deadline on connection setup
	c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", "error", err)
			} else {
				c.hub.logger.Debug("websocket closed", "error", err)
			}
			return
		}
		// Any client message resets the read deadline (keeps connection
		// alive even if the client doesn't answer protocol-level pings).
		//nolint:errcheck // Best-effort deadline reset
		c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
		c.handleMessage(message)
	}
}

// writePump writes messages to the WebSocket connection.
func (c *WSClient) writePump(cfg config.WebSocketConfig) {
	pingInterval := time.Duration(cfg.PingInterval) * time.Second
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close() //nolint:errcheck // Write loop exit
	}()

	pongWait := time.Duration(cfg.PongTimeout) * time.Second

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				// Hub closed the channel
				//nolint:errcheck // Best-effort close message
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			//nolint:errcheck // Best-effort deadline; write error caught below
			c.conn.SetWriteDeadline(time.Now().Add(pongWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			//nolint:errcheck // Best-effort deadline; ping error caught below
			c.conn.SetWriteDeadline(time.Now().Add(pongWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes an inbound subscriber message.
//
// Only light_on/light_off commands are recognised; anything else is
// logged and dropped. A malformed message never closes the connection.
func (c *WSClient) handleMessage(data []byte) {
	var msg commandMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.hub.logger.Warn("dropping malformed websocket message", "error", err)
		return
	}

	if c.hub.router == nil {
		c.hub.logger.Warn("websocket command received before router wired")
		return
	}

	switch msg.Command {
	case WSCommandLightOn:
		c.hub.router.TurnOn(context.Background())
	case WSCommandLightOff:
		c.hub.router.TurnOff(context.Background())
	default:
		c.hub.logger.Warn("dropping unrecognised websocket command", "command", msg.Command)
	}
}

// trySend attempts to queue data for the client. It reports false when
// the buffer is full, and absorbs the send-on-closed-channel panic that
// can race with disconnection.
func (c *WSClient) trySend(data []byte) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// actuatorStateString renders the wire form of the actuator state.
func actuatorStateString(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
