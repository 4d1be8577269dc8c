package core

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/YoungCoderboy/chessme-copy/internal/domain"
)

// RoomRegistry is the single in-memory mapping from room id to room
// state. Lifetime equals process lifetime; nothing is persisted.
//
// Connection handlers run concurrently, so every mutation of a room's
// player list happens under the registry lock. Two simultaneous joins on
// the same room must not both observe len(Players) < 2 and both append.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*domain.Room
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{rooms: make(map[domain.RoomID]*domain.Room)}
}

// Create registers a fresh room with the creator as sole player and
// returns its snapshot. Room ids are 128-bit random, so collisions are
// not rechecked.
func (r *RoomRegistry) Create(creator domain.Player) domain.RoomSnapshot {
	room := &domain.Room{
		ID:      domain.RoomID(uuid.NewString()),
		Players: []domain.Player{creator},
	}
	r.mu.Lock()
	r.rooms[room.ID] = room
	r.mu.Unlock()
	log.Info().Str("module", "core.registry").Str("room", string(room.ID)).Str("creator", string(creator.ID)).Msg("room created")
	return room.Snapshot()
}

// Get returns a snapshot of the room, if registered.
func (r *RoomRegistry) Get(id domain.RoomID) (domain.RoomSnapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[id]
	if !ok {
		return domain.RoomSnapshot{}, false
	}
	return room.Snapshot(), true
}

// AddPlayer appends the joiner to the room. The checks run in join-error
// precedence order inside the lock: unknown id, defensively-empty room,
// full room.
func (r *RoomRegistry) AddPlayer(id domain.RoomID, joiner domain.Player) (domain.RoomSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return domain.RoomSnapshot{}, domain.ErrRoomNotFound
	}
	if len(room.Players) == 0 {
		// Should not occur: creation always seeds one player.
		return domain.RoomSnapshot{}, domain.ErrRoomEmpty
	}
	if len(room.Players) >= domain.MaxPlayers {
		return domain.RoomSnapshot{}, domain.ErrRoomFull
	}
	room.Players = append(room.Players, joiner)
	log.Info().Str("module", "core.registry").Str("room", string(id)).Str("player", string(joiner.ID)).Msg("player joined")
	return room.Snapshot(), nil
}

// Delete removes the room. Deleting an unknown id is a no-op, which makes
// room closure idempotent.
func (r *RoomRegistry) Delete(id domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[id]; !ok {
		return
	}
	delete(r.rooms, id)
	log.Info().Str("module", "core.registry").Str("room", string(id)).Msg("room deleted")
}

// FindByConn scans for the first room containing the connection. A player
// occupies at most one room, so the scan stops at the first match.
func (r *RoomRegistry) FindByConn(id domain.ConnID) (domain.RoomSnapshot, domain.Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, room := range r.rooms {
		for _, p := range room.Players {
			if p.ID == id {
				return room.Snapshot(), p, true
			}
		}
	}
	return domain.RoomSnapshot{}, domain.Player{}, false
}

func (r *RoomRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
