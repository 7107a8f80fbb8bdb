package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"lab-server/entities"
	"lab-server/logger"
	"lab-server/metrics"
)

const (
	sendBuffer = 256
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub keeps track of live observers of one feed. Each observer has its own
// bounded queue and writer goroutine; a full queue drops the update for that
// observer only.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	feed    string
	log     zerolog.Logger
}

func NewHub(feed string) *Hub {
	metrics.ObserverClients.WithLabelValues(feed).Set(0)
	return &Hub{
		clients: make(map[string]*client),
		feed:    feed,
		log:     logger.WithComponent("observer-hub").With().Str("feed", feed).Logger(),
	}
}

// Register starts streaming to conn and returns the observer id. The initial
// payloads are queued before the observer becomes visible to broadcasts, so
// they always reach it ahead of any live update.
func (h *Hub) Register(conn *websocket.Conn, initial ...[]byte) string {
	c := &client{id: uuid.New().String(), conn: conn, send: make(chan []byte, sendBuffer+len(initial))}
	for _, payload := range initial {
		c.send <- payload
	}

	h.mu.Lock()
	h.clients[c.id] = c
	n := len(h.clients)
	h.mu.Unlock()

	metrics.ObserverClients.WithLabelValues(h.feed).Set(float64(n))
	h.log.Info().Str("observer", c.id).Int("total", n).Msg("observer connected")

	go h.writePump(c)
	return c.id
}

// Unregister stops the observer's writer, which closes the connection.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()

	if ok {
		metrics.ObserverClients.WithLabelValues(h.feed).Set(float64(n))
		h.log.Info().Str("observer", id).Int("total", n).Msg("observer disconnected")
	}
}

func (h *Hub) Broadcast(status entities.ComputerStatus) error {
	payload, err := json.Marshal(status)
	if err != nil {
		return err
	}
	h.BroadcastRaw(payload)
	return nil
}

// Forward queues an already-encoded payload for every observer.
func (h *Hub) Forward(payload []byte) error {
	h.BroadcastRaw(payload)
	return nil
}

// BroadcastRaw queues an already-encoded update for every observer.
func (h *Hub) BroadcastRaw(payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- payload:
		default:
			metrics.ObserverDrops.WithLabelValues(h.feed).Inc()
			h.log.Warn().Str("observer", c.id).Msg("observer too slow, update dropped")
		}
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.log.Debug().Err(err).Str("observer", c.id).Msg("write failed")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump consumes control frames until the observer goes away, then
// unregisters it. Observers are not expected to send data.
func (h *Hub) ReadPump(id string, conn *websocket.Conn) {
	defer h.Unregister(id)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug().Err(err).Str("observer", id).Msg("observer read error")
			}
			return
		}
	}
}
