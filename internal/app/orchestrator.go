package app

import (
	"github.com/rs/zerolog/log"

	"github.com/YoungCoderboy/chessme-copy/internal/core"
	"github.com/YoungCoderboy/chessme-copy/internal/domain"
	"github.com/YoungCoderboy/chessme-copy/internal/protocol"
)

// Orchestrator owns room lifecycle and event relay. Constructed once per
// process and injected into the transport handlers; no ambient state.
type Orchestrator struct {
	Registry *core.RoomRegistry
	Peers    *PeerDirectory
}

func NewOrchestrator(reg *core.RoomRegistry, peers *PeerDirectory) *Orchestrator {
	return &Orchestrator{Registry: reg, Peers: peers}
}

func (o *Orchestrator) player(sid domain.ConnID) domain.Player {
	return domain.Player{ID: sid, Username: o.Peers.Username(sid)}
}

// CreateRoom registers a room with the requester as sole player and
// returns the snapshot holding the fresh id.
func (o *Orchestrator) CreateRoom(sid domain.ConnID) domain.RoomSnapshot {
	return o.Registry.Create(o.player(sid))
}

// JoinRoom appends the requester to the room. On success the other
// occupant(s) get an opponentJoined event carrying the same snapshot the
// joiner receives.
func (o *Orchestrator) JoinRoom(sid domain.ConnID, roomID domain.RoomID) (domain.RoomSnapshot, error) {
	snap, err := o.Registry.AddPlayer(roomID, o.player(sid))
	if err != nil {
		log.Warn().Str("module", "app.orch").Str("sid", string(sid)).Str("room", string(roomID)).Err(err).Msg("join refused")
		return domain.RoomSnapshot{}, err
	}
	o.broadcast(snap, sid, protocol.EventOpponentJoined, protocol.OpponentJoinedPayload{Room: snap})
	return snap, nil
}

// CloseRoom notifies the other occupants that the room is closing and
// removes it from the registry. Repeating the call finds no room and is
// a no-op.
func (o *Orchestrator) CloseRoom(sid domain.ConnID, roomID domain.RoomID) {
	snap, ok := o.Registry.Get(roomID)
	if !ok {
		return
	}
	o.broadcast(snap, sid, protocol.EventCloseRoom, protocol.CloseRoomPayload{RoomID: roomID})
	o.Registry.Delete(roomID)
	log.Info().Str("module", "app.orch").Str("sid", string(sid)).Str("room", string(roomID)).Msg("room closed")
}

// Disconnect handles a dropped connection. The first room containing the
// connection is acted upon: a room the player occupied alone is deleted
// outright, otherwise the remaining occupant(s) are told who left while
// the room itself is retained until its explicit teardown.
func (o *Orchestrator) Disconnect(sid domain.ConnID) {
	defer o.Peers.Unbind(sid)

	snap, player, ok := o.Registry.FindByConn(sid)
	if !ok {
		return
	}
	if len(snap.Players) < domain.MaxPlayers {
		o.Registry.Delete(snap.RoomID)
		log.Info().Str("module", "app.orch").Str("sid", string(sid)).Str("room", string(snap.RoomID)).Msg("lone player left, room deleted")
		return
	}
	o.broadcast(snap, sid, protocol.EventPlayerDisconnected, protocol.PlayerDisconnectedPayload{Player: player})
	log.Info().Str("module", "app.orch").Str("sid", string(sid)).Str("room", string(snap.RoomID)).Msg("player disconnected, room retained")
}
