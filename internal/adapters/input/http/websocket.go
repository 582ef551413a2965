package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"gaggimate-dashboard/internal/domain/presentation"

	"github.com/go-logr/logr"
	"github.com/gorilla/websocket"
)

const (
	wsTypeView = "view"

	wsSendBufferSize = 16
	wsPingInterval   = 30 * time.Second
	wsPongWait       = 60 * time.Second
	wsMaxMessageSize = 4096
)

type wsMessage struct {
	Type string             `json:"type"`
	View *presentation.View `json:"view,omitempty"`
	HTML string             `json:"html,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub fans rendered views out to the connected browsers.
type Hub struct {
	logger  logr.Logger
	clients map[*wsClient]struct{}
	mu      sync.RWMutex
}

type wsClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func NewHub(logger logr.Logger) *Hub {
	return &Hub{
		logger:  logger.WithName("ws"),
		clients: make(map[*wsClient]struct{}),
	}
}

// Run blocks until ctx is done, then disconnects everyone.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

func (h *Hub) register(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.V(1).Info("client connected", "clients", h.ClientCount())
}

// unregister closes the send channel only if the client was still known, so
// a concurrent closeAll never closes it twice.
func (h *Hub) unregister(c *wsClient) {
	h.mu.Lock()
	_, existed := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()

	if existed {
		close(c.send)
	}
	h.logger.V(1).Info("client disconnected", "clients", h.ClientCount())
}

func (h *Hub) Broadcast(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error(err, "failed to marshal broadcast message")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.trySend(data)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		c.conn.Close()
		delete(h.clients, c)
	}
}

// trySend drops the message when the client is too slow to keep up. The
// next state change brings it up to date again.
func (c *wsClient) trySend(data []byte) {
	select {
	case c.send <- data:
	default:
		c.hub.logger.V(1).Info("client send buffer full, dropping view")
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error(err, "websocket upgrade failed")
		return
	}

	client := &wsClient{hub: s.hub, conn: conn, send: make(chan []byte, wsSendBufferSize)}
	s.hub.register(client)

	if msg, err := s.viewMessage(); err == nil {
		if data, err := json.Marshal(msg); err == nil {
			client.trySend(data)
		}
	}

	go client.writePump()
	go client.readPump()
}

// readPump only watches for the client going away; browsers send nothing.
func (c *wsClient) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(wsMaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Error(err, "websocket read error")
			}
			return
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(wsPingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(wsPongWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsPongWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
