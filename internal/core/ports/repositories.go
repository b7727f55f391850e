package ports

import (
	"context"

	"peercall/internal/core/domain"
)

// ConnectionRegistry tracks live connections and their room assignment.
type ConnectionRegistry interface {
	// Register records a new connection with no room assigned.
	Register(ctx context.Context, id domain.ConnID) error
	// RoomOf returns the room currently assigned to the connection.
	// joined is false when the connection has not joined any room.
	RoomOf(ctx context.Context, id domain.ConnID) (room domain.RoomID, joined bool, err error)
	// AssignRoom sets the connection's room. A connection joins at most one
	// room per session; a second assignment fails with ErrAlreadyJoined.
	AssignRoom(ctx context.Context, id domain.ConnID, room domain.RoomID) error
	// Unregister removes the connection and returns the room it had been in,
	// if any, so the caller can run membership cleanup. Called exactly once
	// per connection, at transport-level close.
	Unregister(ctx context.Context, id domain.ConnID) (room domain.RoomID, joined bool, err error)
	// Count returns the number of live connections.
	Count(ctx context.Context) int
}

// RoomDirectory owns the room -> members mapping and enforces the two-member
// capacity invariant. Rooms are created on first join and deleted the moment
// they become empty.
type RoomDirectory interface {
	// Join admits the connection or fails with ErrRoomFull. The capacity
	// check and the insert are atomic with respect to concurrent joins.
	// Returns the member count after the join.
	Join(ctx context.Context, room domain.RoomID, id domain.ConnID) (members int, err error)
	// Leave removes the connection from the room and deletes the room when it
	// empties. Idempotent: unknown rooms and non-members are a no-op.
	// Returns the member count after the leave.
	Leave(ctx context.Context, room domain.RoomID, id domain.ConnID) (members int, err error)
	// Peers returns the room's members other than the given connection.
	Peers(ctx context.Context, room domain.RoomID, excluding domain.ConnID) ([]domain.ConnID, error)
	// Exists reports whether the room currently has any members.
	Exists(ctx context.Context, room domain.RoomID) bool
	// Rooms returns the number of live rooms.
	Rooms(ctx context.Context) int
}
