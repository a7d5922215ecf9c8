package trace

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/colorfulnotion/intcode/log"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ErrHubClosed is returned when WriteStep is called after the hub stopped.
var ErrHubClosed = errors.New("trace hub is closed")

// Hub broadcasts trace steps to every connected websocket client.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
	}
}

// Run services the hub until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		h.mu.Lock()
		for conn := range h.clients {
			conn.Close()
			delete(h.clients, conn)
		}
		h.mu.Unlock()
		close(h.done)
	}()
	for {
		select {
		case <-ctx.Done():
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			n := len(h.clients)
			h.mu.Unlock()
			log.Debug(log.TraceMonitoring, "trace client connected", "clients", n)

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			n := len(h.clients)
			h.mu.Unlock()
			log.Debug(log.TraceMonitoring, "trace client disconnected", "clients", n)

		case data := <-h.broadcast:
			h.send(data)
		}
	}
}

// send writes data to every client. A client whose write fails is dropped at once,
// so later broadcasts never reach a dead connection.
func (h *Hub) send(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			delete(h.clients, conn)
			conn.Close()
			log.Debug(log.TraceMonitoring, "trace client dropped", "err", err, "clients", len(h.clients))
		}
	}
}

// WriteStep queues step for broadcast.
func (h *Hub) WriteStep(step *TraceStep) error {
	data, err := json.Marshal(step)
	if err != nil {
		return err
	}
	select {
	case <-h.done:
		return ErrHubClosed
	default:
	}
	select {
	case h.broadcast <- data:
		return nil
	case <-h.done:
		return ErrHubClosed
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Handler upgrades requests to websocket connections and keeps them registered
// until the client goes away.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn(log.TraceMonitoring, "websocket upgrade failed", "err", err)
			return
		}
		select {
		case h.register <- conn:
		case <-h.done:
			conn.Close()
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				select {
				case h.unregister <- conn:
				case <-h.done:
				}
				return
			}
		}
	}
}
