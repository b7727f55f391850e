package domain

import "encoding/json"

// Message kinds on the wire. The relay only interprets TypeJoinRoom (it carries
// the room identifier); every other client kind is forwarded verbatim.
const (
	TypeJoinRoom         = "join-room"
	TypeRoomFull         = "room-full"
	TypeOffer            = "offer"
	TypeAnswer           = "answer"
	TypeCandidate        = "candidate"
	TypeEndCall          = "endCall"
	TypeChat             = "message"
	TypeTyping           = "typing"
	TypeRecordingStatus  = "recording-status"
	TypeShareScreen      = "share-screen"
	TypeStopShareScreen  = "stop-share-screen"
	TypeUserDisconnected = "user-disconnected"
)

// SignalMessage is the envelope exchanged with clients. Payload is opaque to
// the relay and must never be parsed or rewritten for relayed kinds.
type SignalMessage struct {
	Type    string          `json:"type"`
	Room    RoomID          `json:"room,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

var relayable = map[string]struct{}{
	TypeOffer:           {},
	TypeAnswer:          {},
	TypeCandidate:       {},
	TypeEndCall:         {},
	TypeChat:            {},
	TypeTyping:          {},
	TypeRecordingStatus: {},
	TypeShareScreen:     {},
	TypeStopShareScreen: {},
}

// IsRelayable reports whether a message kind is forwarded to room peers.
// Unknown kinds are not relayable; the transport logs and drops them.
func IsRelayable(kind string) bool {
	_, ok := relayable[kind]
	return ok
}
