package signal

import (
	"encoding/json"
	"sync"
	"time"

	"peercall/internal/core/domain"
	"peercall/internal/core/ports"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// client is one WebSocket connection with its outbound queue. All writes to
// the socket happen on the writePump goroutine; everything else only ever
// pushes onto the send channel.
type client struct {
	id   domain.ConnID
	conn *websocket.Conn
	send chan []byte
}

// Hub is the connection table of the transport. It implements the
// MessageSender port: delivery is a non-blocking push onto the target's
// outbound queue, so a stalled peer drops messages instead of delaying the
// relay.
type Hub struct {
	clients map[domain.ConnID]*client
	mu      sync.RWMutex

	writeTimeout time.Duration
	pingInterval time.Duration

	logger *zap.SugaredLogger
}

func NewHub(pingInterval, writeTimeout time.Duration, logger *zap.SugaredLogger) *Hub {
	return &Hub{
		clients:      make(map[domain.ConnID]*client),
		pingInterval: pingInterval,
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

var _ ports.MessageSender = (*Hub)(nil)

// Send queues a message for one connection. An unknown target (already
// disconnected) or a full queue is a dropped delivery, reported as an error
// for the caller to log.
func (h *Hub) Send(id domain.ConnID, msg *domain.SignalMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	// remove closes the send channel under the write lock, so the push must
	// stay under the read lock or a concurrent disconnect panics it. The
	// select never blocks; the hold is bounded.
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, exists := h.clients[id]
	if !exists {
		return domain.ErrConnectionNotFound
	}

	select {
	case c.send <- data:
		return nil
	default:
		h.logger.Warnw("outbound buffer full, dropping message", "conn_id", id, "type", msg.Type)
		return nil
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
}

func (h *Hub) remove(id domain.ConnID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, exists := h.clients[id]; exists {
		delete(h.clients, id)
		close(c.send)
	}
}

// Connections returns the number of live transport connections.
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// writePump drains the client's outbound queue onto the socket and keeps the
// connection alive with periodic pings. It owns all writes for its connection.
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Debugw("write failed", "conn_id", c.id, "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
