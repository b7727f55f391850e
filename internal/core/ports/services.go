package ports

import (
	"context"

	"peercall/internal/core/domain"
)

// RoomService binds the membership lifecycle to the registry and directory and
// routes signaling messages between room peers.
type RoomService interface {
	// Connect records a freshly accepted connection, not yet in any room.
	Connect(ctx context.Context, id domain.ConnID) error
	// Join admits the connection into the room. Fails with ErrAlreadyJoined
	// if the connection already has a room and with ErrRoomFull when the room
	// holds two members; in both cases no state changes.
	Join(ctx context.Context, id domain.ConnID, room domain.RoomID) error
	// Relay forwards the message unchanged to every other member of the
	// sender's room. Fails with ErrNotInRoom when the sender has not joined.
	// Delivery is fire-and-forget: send failures are logged, not returned.
	Relay(ctx context.Context, from domain.ConnID, msg *domain.SignalMessage) error
	// Disconnect removes the connection, cleans up its room membership and
	// notifies the remaining peer. Safe for connections that never joined.
	Disconnect(ctx context.Context, id domain.ConnID) error
}

// MessageSender delivers a message to one connection's transport. Delivery is
// best-effort: a closed or stalled target is a dropped message, never an error
// that delays routing.
type MessageSender interface {
	Send(id domain.ConnID, msg *domain.SignalMessage) error
}

// MetricsSink receives relay events for monitoring backends.
type MetricsSink interface {
	ConnectionOpened()
	ConnectionClosed()
	RoomCreated()
	RoomDeleted()
	MessageRelayed(kind string, targets int)
	JoinRejected(reason string)
}

// NopMetrics discards all events. Used when monitoring is disabled.
type NopMetrics struct{}

func (NopMetrics) ConnectionOpened()          {}
func (NopMetrics) ConnectionClosed()          {}
func (NopMetrics) RoomCreated()               {}
func (NopMetrics) RoomDeleted()               {}
func (NopMetrics) MessageRelayed(string, int) {}
func (NopMetrics) JoinRejected(string)        {}
