package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/YoungCoderboy/chessme-copy/internal/domain"
	"github.com/YoungCoderboy/chessme-copy/internal/protocol"
)

// Game and signaling traffic only gets unwrapped far enough to route it;
// the payloads themselves stay opaque to the server.

func (ctl *Controller) handleMove(sid domain.ConnID, c *wsConn, payload json.RawMessage) {
	var p protocol.MovePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad move payload")
		return
	}
	ctl.Orch.RelayMove(sid, p.Room, p.Move)
}

func (ctl *Controller) handleChat(sid domain.ConnID, c *wsConn, payload json.RawMessage) {
	var p protocol.ChatPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad chat payload")
		return
	}
	ctl.Orch.RelayChat(sid, p.Room, p.Message)
}

func (ctl *Controller) handleOffer(sid domain.ConnID, c *wsConn, payload json.RawMessage) {
	var p protocol.SignalPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad offer payload")
		return
	}
	log.Debug().Str("module", "signal").Str("sid", string(sid)).Str("target", string(p.Target)).Msg("relay offer")
	ctl.Orch.RelayOffer(p)
}

func (ctl *Controller) handleAnswer(sid domain.ConnID, c *wsConn, payload json.RawMessage) {
	var p protocol.SignalPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad answer payload")
		return
	}
	log.Debug().Str("module", "signal").Str("sid", string(sid)).Str("target", string(p.Target)).Msg("relay answer")
	ctl.Orch.RelayAnswer(p)
}

func (ctl *Controller) handleCandidate(sid domain.ConnID, c *wsConn, payload json.RawMessage) {
	var p protocol.CandidatePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad candidate payload")
		return
	}
	ctl.Orch.RelayCandidate(p)
}
