package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/YoungCoderboy/chessme-copy/internal/domain"
	"github.com/YoungCoderboy/chessme-copy/internal/protocol"
)

func (ctl *Controller) handleUsername(sid domain.ConnID, c *wsConn, payload json.RawMessage) {
	var p protocol.UsernamePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad username payload")
		ctl.sendError(c, protocol.CodeBadPayload, "bad username payload")
		return
	}
	if err := ctl.Orch.Peers.SetUsername(sid, p.Username); err != nil {
		ctl.sendError(c, protocol.CodeInvalidName, err.Error())
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("username", p.Username).Msg("username")
}

func (ctl *Controller) handleCreateRoom(sid domain.ConnID, c *wsConn) {
	snap := ctl.Orch.CreateRoom(sid)
	ctl.sendJSON(c, protocol.EventRoomCreated, protocol.RoomCreatedPayload{RoomID: snap.RoomID})
}

func (ctl *Controller) handleJoinRoom(sid domain.ConnID, c *wsConn, payload json.RawMessage) {
	var p protocol.JoinRoomPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(c, protocol.CodeBadPayload, "bad join payload")
		return
	}
	snap, err := ctl.Orch.JoinRoom(sid, p.RoomID)
	if err != nil {
		e := protocol.JoinError(err)
		ctl.sendError(c, e.Code, e.Message)
		return
	}
	ctl.sendJSON(c, protocol.EventRoomJoined, protocol.RoomJoinedPayload{Room: snap})
}

func (ctl *Controller) handleCloseRoom(sid domain.ConnID, c *wsConn, payload json.RawMessage) {
	var p protocol.CloseRoomPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad close payload")
		return
	}
	ctl.Orch.CloseRoom(sid, p.RoomID)
}
