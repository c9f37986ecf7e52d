package adminapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/edge-mapper/internal/device"
	"github.com/nerrad567/edge-mapper/internal/model"
)

// wsSendBufferSize is the per-client outbound message buffer size.
const wsSendBufferSize = 256

const (
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
)

// WSEvent is one push-feed message: a device status change or a twin
// report, broadcast to every connected watcher. This is additive surface
// (SPEC_FULL.md §4); it does not replace any GET route from spec.md §4.I.
type WSEvent struct {
	Type      string `json:"type"` // "status" | "twin"
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	Property  string `json:"property,omitempty"`
	Value     string `json:"value,omitempty"`
	Status    string `json:"status,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Hub fans out report events to every connected WebSocket watcher and
// doubles as a device.Reporter target, so it composes with the
// control-plane client via device.NewFanOutReporter.
type Hub struct {
	logger  Logger
	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

func newHub(logger Logger) *Hub {
	return &Hub{logger: logger, clients: make(map[*wsClient]struct{})}
}

// run blocks until ctx is cancelled, then disconnects every client.
func (h *Hub) run(ctx context.Context) {
	<-ctx.Done()
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		c.conn.Close()
		delete(h.clients, c)
	}
}

func (h *Hub) register(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("adminapi: watch client connected", "clients", h.clientCount())
}

func (h *Hub) unregister(c *wsClient) {
	h.mu.Lock()
	_, existed := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if existed {
		close(c.send)
	}
}

func (h *Hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcast(ev WSEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("adminapi: marshal watch event failed", "error", err)
		return
	}
	h.mu.RLock()
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		c.trySend(data)
	}
}

// ReportDeviceStatus implements device.Reporter, broadcasting a status
// change to every watcher.
func (h *Hub) ReportDeviceStatus(_ context.Context, namespace, name string, status model.Status) error {
	h.broadcast(WSEvent{
		Type:      "status",
		Namespace: namespace,
		Name:      name,
		Status:    string(status),
		Timestamp: time.Now().UnixMilli(),
	})
	return nil
}

// ReportTwinKV implements device.Reporter, broadcasting a twin report to
// every watcher.
func (h *Hub) ReportTwinKV(_ context.Context, namespace, name, property, value string, tsMillis int64) error {
	h.broadcast(WSEvent{
		Type:      "twin",
		Namespace: namespace,
		Name:      name,
		Property:  property,
		Value:     value,
		Timestamp: tsMillis,
	})
	return nil
}

type wsClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// handleWatch upgrades the connection and streams report events until the
// client disconnects. It never accepts input beyond protocol-level pongs.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	s.hub.serveWS(w, r, s.logger)
}

// serveWS upgrades the connection and registers it with the hub. Split out
// from handleWatch so the hub can be exercised without a full Server.
func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request, logger Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("adminapi: websocket upgrade failed", "error", err)
		return
	}
	c := &wsClient{hub: h, conn: conn, send: make(chan []byte, wsSendBufferSize)}
	h.register(c)

	go c.writePump()
	c.readPump()
}

// readPump only exists to detect client disconnects and protocol pongs; the
// feed carries no client-originated messages.
func (c *wsClient) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	//nolint:errcheck // best-effort deadline on connection setup
	c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				//nolint:errcheck // best-effort close message
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			//nolint:errcheck // best-effort deadline; write error caught below
			c.conn.SetWriteDeadline(time.Now().Add(pongWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			//nolint:errcheck // best-effort deadline; ping error caught below
			c.conn.SetWriteDeadline(time.Now().Add(pongWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *wsClient) trySend(data []byte) {
	defer func() { recover() }() //nolint:errcheck // absorb send-on-closed-channel panic
	select {
	case c.send <- data:
	default:
	}
}

var _ device.Reporter = (*Hub)(nil)
