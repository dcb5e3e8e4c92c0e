package ws

import (
	"net/http"
	"sync"
	"time"

	"TelescopeStatus/internal/domain/models"
	"TelescopeStatus/internal/domain/repository"
	"TelescopeStatus/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 16
)

type client struct {
	conn *websocket.Conn
	send chan models.RefreshEvent
}

// Hub fans refresh events out to websocket subscribers.
type Hub struct {
	upgrader     websocket.Upgrader
	log          *logger.Logger
	pingInterval time.Duration

	mu      sync.Mutex
	clients map[*client]struct{}
}

var _ repository.RefreshNotifier = (*Hub)(nil)

// NewHub creates a hub that pings idle subscribers every pingInterval.
func NewHub(l *logger.Logger, pingInterval time.Duration) *Hub {
	if l == nil {
		l = logger.Nop()
	}
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log:          l.Named("ws"),
		pingInterval: pingInterval,
		clients:      make(map[*client]struct{}),
	}
}

func (h *Hub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/refresh", h.Serve)
}

// Publish queues ev for every subscriber. Slow subscribers miss events
// rather than block the publisher.
func (h *Hub) Publish(ev models.RefreshEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		select {
		case cl.send <- ev:
		default:
			h.log.Warn("dropping refresh event for slow subscriber", logger.String("telescope", ev.Telescope))
		}
	}
}

// Clients returns the number of connected subscribers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Serve upgrades the request and streams events until the peer disconnects.
func (h *Hub) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.log.Warn("websocket upgrade failed", logger.Error(err))
		return nil
	}
	defer conn.Close()

	cl := &client{conn: conn, send: make(chan models.RefreshEvent, sendBuffer)}
	h.add(cl)
	defer h.remove(cl)

	done := make(chan struct{})
	go h.writeLoop(cl, done)

	// Subscribers only listen; reading drains control frames and detects close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	close(done)
	return nil
}

func (h *Hub) writeLoop(cl *client, done <-chan struct{}) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case ev := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteJSON(ev); err != nil {
				h.log.Debug("websocket write failed", logger.Error(err))
				_ = cl.conn.Close()
				return
			}
		case <-ticker.C:
			if err := cl.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				_ = cl.conn.Close()
				return
			}
		}
	}
}

func (h *Hub) add(cl *client) {
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(cl *client) {
	h.mu.Lock()
	delete(h.clients, cl)
	h.mu.Unlock()
}
