package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/YoungCoderboy/chessme-copy/internal/domain"
	"github.com/YoungCoderboy/chessme-copy/internal/protocol"
)

// The relay router is pure dispatch: room-broadcast excluding the sender
// for game traffic, targeted unicast for signaling. A target that is
// gone means the frame is silently dropped; best-effort is the contract
// for ephemeral traffic.

// RelayMove forwards an opaque move to everyone else in the room. The
// server never validates chess legality.
func (o *Orchestrator) RelayMove(sid domain.ConnID, roomID domain.RoomID, move json.RawMessage) {
	snap, ok := o.Registry.Get(roomID)
	if !ok {
		return
	}
	o.broadcast(snap, sid, protocol.EventMove, move)
}

// RelayChat forwards a chat line to the room, tagged with the sender id.
func (o *Orchestrator) RelayChat(sid domain.ConnID, roomID domain.RoomID, text string) {
	snap, ok := o.Registry.Get(roomID)
	if !ok {
		return
	}
	o.broadcast(snap, sid, protocol.EventMessageSend, protocol.ChatDelivery{Message: text, ID: sid})
}

// RelayOffer and RelayAnswer deliver an SDP payload to its target
// unmodified except for routing.
func (o *Orchestrator) RelayOffer(p protocol.SignalPayload) {
	o.unicast(p.Target, protocol.EventOffer, p)
}

func (o *Orchestrator) RelayAnswer(p protocol.SignalPayload) {
	o.unicast(p.Target, protocol.EventAnswer, p)
}

// RelayCandidate delivers the bare candidate to the target; the wrapper
// with routing fields stays on the inbound side.
func (o *Orchestrator) RelayCandidate(p protocol.CandidatePayload) {
	o.unicast(p.Target, protocol.EventICECandidate, p.Candidate)
}

func (o *Orchestrator) broadcast(snap domain.RoomSnapshot, from domain.ConnID, event string, payload any) {
	frame, err := protocol.Encode(event, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.relay").Str("event", event).Msg("encode broadcast")
		return
	}
	sent := 0
	for _, p := range snap.Opponents(from) {
		if o.deliver(p.ID, frame) {
			sent++
		}
	}
	log.Debug().Str("module", "app.relay").Str("event", event).Str("room", string(snap.RoomID)).Int("sent_to", sent).Msg("broadcast")
}

func (o *Orchestrator) unicast(target domain.ConnID, event string, payload any) {
	frame, err := protocol.Encode(event, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.relay").Str("event", event).Msg("encode unicast")
		return
	}
	o.deliver(target, frame)
}

func (o *Orchestrator) deliver(target domain.ConnID, frame []byte) bool {
	conn, ok := o.Peers.Conn(target)
	if !ok {
		log.Debug().Str("module", "app.relay").Str("target", string(target)).Msg("target gone, frame dropped")
		return false
	}
	if err := conn.TrySend(frame); err != nil {
		log.Debug().Err(err).Str("module", "app.relay").Str("target", string(target)).Msg("send failed, frame dropped")
		return false
	}
	return true
}
