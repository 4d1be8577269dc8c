// Package protocol defines the wire format spoken between server and
// clients: one JSON envelope per websocket text frame, the event type
// selecting the payload shape. Both sides import it, so the shapes live
// in one place.
package protocol

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"

	"github.com/YoungCoderboy/chessme-copy/internal/domain"
)

// Event names. Client→server requests, server→client notifications and
// the request/reply pairs that stand in for transport-level callbacks.
const (
	EventUsername   = "username"
	EventCreateRoom = "createRoom"
	EventJoinRoom   = "joinRoom"
	EventCloseRoom  = "closeRoom"
	EventMove       = "move"
	EventMessage    = "message"
	EventPing       = "ping"

	EventConnected          = "connected"
	EventRoomCreated        = "roomCreated"
	EventRoomJoined         = "roomJoined"
	EventOpponentJoined     = "opponentJoined"
	EventPlayerDisconnected = "playerDisconnected"
	EventMessageSend        = "message_send"
	EventError              = "error"
	EventPong               = "pong"

	// Signaling events are relayed in both directions.
	EventOffer        = "offer"
	EventAnswer       = "answer"
	EventICECandidate = "ice-candidate"
)

// Error codes carried in ErrorPayload.
const (
	CodeRoomNotFound = "room_not_found"
	CodeRoomFull     = "room_full"
	CodeRoomEmpty    = "room_empty"
	CodeBadPayload   = "bad_payload"
	CodeInvalidName  = "invalid_name"
)

// Message is the envelope for every frame.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Encode marshals a payload into a ready-to-send envelope frame.
func Encode(event string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return json.Marshal(Message{Type: event, Payload: raw})
}

type UsernamePayload struct {
	Username string `json:"username"`
}

type ConnectedPayload struct {
	ID domain.ConnID `json:"id"`
}

type RoomCreatedPayload struct {
	RoomID domain.RoomID `json:"roomId"`
}

type JoinRoomPayload struct {
	RoomID domain.RoomID `json:"roomId"`
}

type RoomJoinedPayload struct {
	Room domain.RoomSnapshot `json:"room"`
}

// OpponentJoinedPayload carries the same snapshot the joiner received.
type OpponentJoinedPayload struct {
	Room domain.RoomSnapshot `json:"room"`
}

type CloseRoomPayload struct {
	RoomID domain.RoomID `json:"roomId"`
}

type PlayerDisconnectedPayload struct {
	Player domain.Player `json:"player"`
}

// MovePayload is the inbound shape; the move itself stays opaque to the
// server, which relays the raw bytes without interpreting them.
type MovePayload struct {
	Move json.RawMessage `json:"move"`
	Room domain.RoomID   `json:"room"`
}

type ChatPayload struct {
	Message string        `json:"message"`
	Room    domain.RoomID `json:"room"`
}

// ChatDelivery is the outbound chat shape, tagged with the sender.
type ChatDelivery struct {
	Message string        `json:"message"`
	ID      domain.ConnID `json:"id"`
}

// SignalPayload carries an SDP exchange. Offers and answers are
// delivered to the target unmodified except for routing.
type SignalPayload struct {
	Target domain.ConnID              `json:"target"`
	Caller domain.ConnID              `json:"caller,omitempty"`
	SDP    *webrtc.SessionDescription `json:"sdp,omitempty"`
}

// CandidatePayload is the inbound ICE shape. The outbound frame to the
// target carries the bare ICECandidateInit, not this wrapper.
type CandidatePayload struct {
	Target    domain.ConnID           `json:"target"`
	Candidate webrtc.ICECandidateInit `json:"candidate"`
}

type ErrorPayload struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// JoinError maps the domain join failures onto wire codes.
func JoinError(err error) ErrorPayload {
	switch err {
	case domain.ErrRoomNotFound:
		return ErrorPayload{Code: CodeRoomNotFound, Message: err.Error()}
	case domain.ErrRoomFull:
		return ErrorPayload{Code: CodeRoomFull, Message: err.Error()}
	case domain.ErrRoomEmpty:
		return ErrorPayload{Code: CodeRoomEmpty, Message: err.Error()}
	}
	return ErrorPayload{Message: err.Error()}
}
