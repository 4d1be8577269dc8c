package domain

import "errors"

// MaxPlayers is the room capacity. A chess game has exactly two sides;
// the third distinct joiner is always refused.
const MaxPlayers = 2

type RoomID string

// Join-time failures, reported to the requester and never fatal.
var (
	ErrRoomNotFound = errors.New("room does not exist")
	ErrRoomFull     = errors.New("room is full")
	ErrRoomEmpty    = errors.New("room is empty")
)

// Room groups up to two players for one game plus its associated
// signaling and chat traffic. Players keep insertion order: the creator
// is Players[0] and plays white.
type Room struct {
	ID      RoomID
	Players []Player
}

// RoomSnapshot is the read-only view handed to clients. It mirrors the
// wire shape {roomId, players}.
type RoomSnapshot struct {
	RoomID  RoomID   `json:"roomId"`
	Players []Player `json:"players"`
}

// Snapshot copies the membership so callers can hold it without racing
// later mutations.
func (r *Room) Snapshot() RoomSnapshot {
	players := make([]Player, len(r.Players))
	copy(players, r.Players)
	return RoomSnapshot{RoomID: r.ID, Players: players}
}

// Opponents returns the occupants other than the given connection.
func (s RoomSnapshot) Opponents(self ConnID) []Player {
	out := make([]Player, 0, len(s.Players))
	for _, p := range s.Players {
		if p.ID != self {
			out = append(out, p)
		}
	}
	return out
}
