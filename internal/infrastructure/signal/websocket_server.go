package signal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"peercall/internal/core/domain"
	"peercall/internal/core/ports"
	"peercall/pkg/tracing"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin filtering, when wanted, belongs to the HTTP middleware chain.
		return true
	},
}

// Server accepts WebSocket connections and feeds their events into the room
// service. Room state is never captured in per-connection closures: every
// message resolves its room through the registry at arrival time.
type Server struct {
	hub   *Hub
	rooms ports.RoomService

	pongTimeout    time.Duration
	maxMessageSize int64
	sendBuffer     int

	logger *zap.SugaredLogger
}

func NewServer(hub *Hub, rooms ports.RoomService, pongTimeout time.Duration, maxMessageSize int64, sendBuffer int, logger *zap.SugaredLogger) *Server {
	return &Server{
		hub:            hub,
		rooms:          rooms,
		pongTimeout:    pongTimeout,
		maxMessageSize: maxMessageSize,
		sendBuffer:     sendBuffer,
		logger:         logger,
	}
}

// HandleWebSocket upgrades the request and runs the connection's read loop
// until the socket closes. One goroutine reads, one (the hub's writePump)
// writes.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}

	id := domain.ConnID(uuid.New().String())
	c := &client{
		id:   id,
		conn: conn,
		send: make(chan []byte, s.sendBuffer),
	}

	ctx := r.Context()
	if err := s.rooms.Connect(ctx, id); err != nil {
		s.logger.Errorw("connection registration failed", "conn_id", id, "error", err)
		conn.Close()
		return
	}

	s.hub.add(c)
	go s.hub.writePump(c)
	s.logger.Infow("connection opened", "conn_id", id, "remote_addr", conn.RemoteAddr())

	// Transport-level close is the one cleanup trigger: unregister exactly
	// once, then drop the writer. Deferred so a panic on the read path cannot
	// strand the registry entry or the room slot.
	defer func() {
		if err := s.rooms.Disconnect(context.Background(), id); err != nil {
			s.logger.Errorw("disconnect cleanup failed", "conn_id", id, "error", err)
		}
		s.hub.remove(id)
		s.logger.Infow("connection closed", "conn_id", id)
	}()

	s.readLoop(c)
}

func (s *Server) readLoop(c *client) {
	c.conn.SetReadLimit(s.maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(s.pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(s.pongTimeout))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Infow("read failed", "conn_id", c.id, "error", err)
			}
			return
		}

		var msg domain.SignalMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Warnw("malformed message dropped", "conn_id", c.id, "error", err)
			continue
		}

		s.handleMessage(c.id, &msg)
	}
}

func (s *Server) handleMessage(id domain.ConnID, msg *domain.SignalMessage) {
	ctx, span := tracing.TraceSignalMessage(context.Background(), msg.Type, string(id))
	defer span.End()

	switch {
	case msg.Type == domain.TypeJoinRoom:
		s.handleJoin(ctx, id, msg)

	case domain.IsRelayable(msg.Type):
		if err := s.rooms.Relay(ctx, id, msg); err != nil {
			tracing.RecordError(ctx, err)
			if errors.Is(err, domain.ErrNotInRoom) {
				s.logger.Infow("message from roomless connection dropped", "conn_id", id, "type", msg.Type)
				return
			}
			s.logger.Errorw("relay failed", "conn_id", id, "type", msg.Type, "error", err)
		}

	default:
		// Forward-compatibility over strictness: unknown kinds are dropped.
		s.logger.Warnw("unknown message type dropped", "conn_id", id, "type", msg.Type)
	}
}

func (s *Server) handleJoin(ctx context.Context, id domain.ConnID, msg *domain.SignalMessage) {
	if msg.Room == "" {
		s.logger.Warnw("join without room identifier dropped", "conn_id", id)
		return
	}
	tracing.TagRoom(ctx, string(msg.Room))

	err := s.rooms.Join(ctx, id, msg.Room)
	switch {
	case err == nil:
		// Admitted. The protocol sends nothing back; the peer learns of the
		// arrival when signaling starts flowing.
	case errors.Is(err, domain.ErrRoomFull):
		tracing.RecordError(ctx, err)
		if sendErr := s.hub.Send(id, &domain.SignalMessage{Type: domain.TypeRoomFull}); sendErr != nil {
			s.logger.Warnw("room-full notice dropped", "conn_id", id, "error", sendErr)
		}
	case errors.Is(err, domain.ErrAlreadyJoined):
		tracing.RecordError(ctx, err)
		s.logger.Warnw("duplicate join dropped", "conn_id", id, "room", msg.Room)
	default:
		tracing.RecordError(ctx, err)
		s.logger.Errorw("join failed", "conn_id", id, "room", msg.Room, "error", err)
	}
}
