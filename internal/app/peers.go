// Package app wires the room registry to live connections: lifecycle of
// rooms on one side, relay of opaque payloads on the other.
package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/YoungCoderboy/chessme-copy/internal/core"
	"github.com/YoungCoderboy/chessme-copy/internal/domain"
)

type peerEntry struct {
	conn     core.SignalConnection
	username string
}

// PeerDirectory maps live connection ids to their transport endpoint and
// the username the connection asserted. The adapter binds a peer at
// upgrade time and unbinds it on disconnect.
type PeerDirectory struct {
	mu    sync.RWMutex
	peers map[domain.ConnID]*peerEntry
}

func NewPeerDirectory() *PeerDirectory {
	return &PeerDirectory{peers: make(map[domain.ConnID]*peerEntry)}
}

func (d *PeerDirectory) Bind(id domain.ConnID, conn core.SignalConnection) {
	d.mu.Lock()
	d.peers[id] = &peerEntry{conn: conn}
	d.mu.Unlock()
	log.Info().Str("module", "app.peers").Str("sid", string(id)).Msg("peer bound")
}

func (d *PeerDirectory) Unbind(id domain.ConnID) {
	d.mu.Lock()
	delete(d.peers, id)
	d.mu.Unlock()
	log.Info().Str("module", "app.peers").Str("sid", string(id)).Msg("peer unbound")
}

// SetUsername records the self-asserted display name. Set once per
// connection before use; only the owning connection can change it.
func (d *PeerDirectory) SetUsername(id domain.ConnID, name string) error {
	if err := domain.ValidateUsername(name); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := d.peers[id]; ok {
		e.username = name
		log.Info().Str("module", "app.peers").Str("sid", string(id)).Str("username", name).Msg("username set")
	}
	return nil
}

func (d *PeerDirectory) Username(id domain.ConnID) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if e, ok := d.peers[id]; ok {
		return e.username
	}
	return ""
}

// Conn returns the live endpoint for a connection, if still bound.
func (d *PeerDirectory) Conn(id domain.ConnID) (core.SignalConnection, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.peers[id]
	if !ok {
		return nil, false
	}
	return e.conn, true
}
