package domain

type ConnID string

type RoomID string

// Connection is one live client session. It is created when the transport
// accepts a socket and destroyed when that socket closes. RoomID stays empty
// until a join succeeds; a connection joins at most one room per session.
type Connection struct {
	ID     ConnID
	RoomID RoomID
	Joined bool
}
