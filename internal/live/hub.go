// Package live fans score events out to WebSocket subscribers.
package live

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"ai-speech-confidence-service/internal/observability/metrics"
)

const writeTimeout = 5 * time.Second

// Hub manages WebSocket connections. All writes happen on the Run goroutine.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan any
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	mu         sync.RWMutex
	upgrader   websocket.Upgrader
	metrics    *metrics.Metrics
}

// NewHub creates a hub that buffers up to buffer pending events.
func NewHub(buffer int) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan any, buffer),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		metrics: metrics.DefaultMetrics,
	}
}

// Run serves registrations and broadcasts until ctx is cancelled, then closes
// every connection.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for conn := range h.clients {
				conn.Close()
				delete(h.clients, conn)
			}
			h.mu.Unlock()
			h.metrics.LiveSubscribers.Set(0)
			return nil

		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.metrics.LiveSubscribers.Set(float64(n))
			log.Debug().Int("clients", n).Msg("Live subscriber connected")

		case conn := <-h.unregister:
			h.remove(conn)

		case event := <-h.broadcast:
			h.mu.RLock()
			var failed []*websocket.Conn
			for conn := range h.clients {
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteJSON(event); err != nil {
					log.Debug().Err(err).Msg("Live subscriber write failed")
					failed = append(failed, conn)
				}
			}
			h.mu.RUnlock()
			for _, conn := range failed {
				h.remove(conn)
			}
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
	n := len(h.clients)
	h.mu.Unlock()
	h.metrics.LiveSubscribers.Set(float64(n))
}

// Broadcast queues event for every subscriber. It never blocks; when the
// buffer is full the event is dropped.
func (h *Hub) Broadcast(event any) bool {
	select {
	case h.broadcast <- event:
		return true
	default:
		log.Warn().Msg("Live feed buffer full, dropping event")
		return false
	}
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and registers the connection. The
// connection is read only to notice disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	select {
	case h.register <- conn:
	case <-h.done:
		conn.Close()
		return
	}

	go func() {
		defer func() {
			select {
			case h.unregister <- conn:
			case <-h.done:
			}
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
