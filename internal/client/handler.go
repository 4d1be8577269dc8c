package client

import (
	"encoding/json"
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/YoungCoderboy/chessme-copy/internal/chessrules"
	"github.com/YoungCoderboy/chessme-copy/internal/domain"
	"github.com/YoungCoderboy/chessme-copy/internal/protocol"
)

// Handler fans incoming server frames out to typed channels for the room
// flow and feeds signaling straight into the bound Session. Signaling
// that arrives with no session bound is dropped, which is exactly what a
// torn-down game view wants.
type Handler struct {
	transport *Transport

	Connected          chan domain.ConnID
	RoomCreated        chan domain.RoomID
	RoomJoined         chan domain.RoomSnapshot
	OpponentJoined     chan domain.RoomSnapshot
	PlayerDisconnected chan domain.Player
	RoomClosed         chan domain.RoomID
	Chat               chan protocol.ChatDelivery
	Moves              chan chessrules.Move
	Errors             chan protocol.ErrorPayload

	mu      sync.RWMutex
	session *Session
}

func NewHandler(t *Transport) *Handler {
	return &Handler{
		transport:          t,
		Connected:          make(chan domain.ConnID, 1),
		RoomCreated:        make(chan domain.RoomID, 1),
		RoomJoined:         make(chan domain.RoomSnapshot, 1),
		OpponentJoined:     make(chan domain.RoomSnapshot, 1),
		PlayerDisconnected: make(chan domain.Player, 1),
		RoomClosed:         make(chan domain.RoomID, 1),
		Chat:               make(chan protocol.ChatDelivery, 32),
		Moves:              make(chan chessrules.Move, 32),
		Errors:             make(chan protocol.ErrorPayload, 1),
	}
}

// BindSession routes subsequent offer/answer/candidate frames into the
// session. Passing nil unbinds.
func (h *Handler) BindSession(s *Session) {
	h.mu.Lock()
	h.session = s
	h.mu.Unlock()
}

func (h *Handler) boundSession() *Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.session
}

// Run consumes the transport until the connection drops.
func (h *Handler) Run() {
	for msg := range h.transport.Incoming() {
		h.dispatch(msg)
	}
}

func (h *Handler) dispatch(msg protocol.Message) {
	switch msg.Type {
	case protocol.EventConnected:
		var p protocol.ConnectedPayload
		if decode(msg.Payload, &p) {
			deliver(h.Connected, p.ID, msg.Type)
		}
	case protocol.EventRoomCreated:
		var p protocol.RoomCreatedPayload
		if decode(msg.Payload, &p) {
			deliver(h.RoomCreated, p.RoomID, msg.Type)
		}
	case protocol.EventRoomJoined:
		var p protocol.RoomJoinedPayload
		if decode(msg.Payload, &p) {
			deliver(h.RoomJoined, p.Room, msg.Type)
		}
	case protocol.EventOpponentJoined:
		var p protocol.OpponentJoinedPayload
		if decode(msg.Payload, &p) {
			deliver(h.OpponentJoined, p.Room, msg.Type)
		}
	case protocol.EventPlayerDisconnected:
		var p protocol.PlayerDisconnectedPayload
		if decode(msg.Payload, &p) {
			deliver(h.PlayerDisconnected, p.Player, msg.Type)
		}
	case protocol.EventCloseRoom:
		var p protocol.CloseRoomPayload
		if decode(msg.Payload, &p) {
			deliver(h.RoomClosed, p.RoomID, msg.Type)
		}
	case protocol.EventMessageSend:
		var p protocol.ChatDelivery
		if decode(msg.Payload, &p) {
			deliver(h.Chat, p, msg.Type)
		}
	case protocol.EventMove:
		var mv chessrules.Move
		if decode(msg.Payload, &mv) {
			deliver(h.Moves, mv, msg.Type)
		}
	case protocol.EventError:
		var p protocol.ErrorPayload
		if decode(msg.Payload, &p) {
			deliver(h.Errors, p, msg.Type)
		}
	case protocol.EventOffer:
		var p protocol.SignalPayload
		if decode(msg.Payload, &p) && p.SDP != nil {
			if s := h.boundSession(); s != nil {
				s.HandleOffer(p.Caller, *p.SDP)
			}
		}
	case protocol.EventAnswer:
		var p protocol.SignalPayload
		if decode(msg.Payload, &p) && p.SDP != nil {
			if s := h.boundSession(); s != nil {
				s.HandleAnswer(*p.SDP)
			}
		}
	case protocol.EventICECandidate:
		// The server relays the bare candidate, not the routed wrapper.
		var cand webrtc.ICECandidateInit
		if decode(msg.Payload, &cand) {
			if s := h.boundSession(); s != nil {
				s.HandleCandidate(cand)
			}
		}
	case protocol.EventPong:
	default:
		log.Warn().Str("module", "client.handler").Str("type", msg.Type).Msg("unknown event")
	}
}

// deliver hands the event to the listener if it is keeping up; a stalled
// listener loses the event instead of stalling every other channel
// behind it. The channels are notifications, not a durable queue.
func deliver[T any](ch chan T, v T, event string) {
	select {
	case ch <- v:
	default:
		log.Warn().Str("module", "client.handler").Str("type", event).Msg("listener slow, event dropped")
	}
}

func decode(raw json.RawMessage, v any) bool {
	if err := json.Unmarshal(raw, v); err != nil {
		log.Error().Err(err).Str("module", "client.handler").Msg("bad payload")
		return false
	}
	return true
}
