package app

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoungCoderboy/chessme-copy/internal/core"
	"github.com/YoungCoderboy/chessme-copy/internal/domain"
	"github.com/YoungCoderboy/chessme-copy/internal/protocol"
)

// fakeConn captures everything sent to one peer.
type fakeConn struct {
	frames []core.Frame
	dead   bool
}

func (f *fakeConn) TrySend(frame core.Frame) error {
	if f.dead {
		return errors.New("connection closed")
	}
	f.frames = append(f.frames, frame)
	return nil
}

func (f *fakeConn) Close() { f.dead = true }

// events decodes the captured frames into envelopes.
func (f *fakeConn) events(t *testing.T) []protocol.Message {
	t.Helper()
	out := make([]protocol.Message, 0, len(f.frames))
	for _, frame := range f.frames {
		var msg protocol.Message
		require.NoError(t, json.Unmarshal(frame, &msg))
		out = append(out, msg)
	}
	return out
}

func (f *fakeConn) eventsOfType(t *testing.T, typ string) []protocol.Message {
	t.Helper()
	var out []protocol.Message
	for _, msg := range f.events(t) {
		if msg.Type == typ {
			out = append(out, msg)
		}
	}
	return out
}

func newTestOrch() *Orchestrator {
	return NewOrchestrator(core.NewRoomRegistry(), NewPeerDirectory())
}

func bind(o *Orchestrator, id domain.ConnID, name string) *fakeConn {
	conn := &fakeConn{}
	o.Peers.Bind(id, conn)
	_ = o.Peers.SetUsername(id, name)
	return conn
}

func TestCreateAndJoinRoom(t *testing.T) {
	o := newTestOrch()
	connA := bind(o, "a", "alice")
	bind(o, "b", "bob")

	created := o.CreateRoom("a")
	require.Len(t, created.Players, 1)

	joined, err := o.JoinRoom("b", created.RoomID)
	require.NoError(t, err)
	require.Len(t, joined.Players, 2)
	assert.Equal(t, "alice", joined.Players[0].Username)
	assert.Equal(t, "bob", joined.Players[1].Username)

	// The creator gets exactly one opponentJoined carrying the same
	// snapshot the joiner received.
	notifs := connA.eventsOfType(t, protocol.EventOpponentJoined)
	require.Len(t, notifs, 1)
	var p protocol.OpponentJoinedPayload
	require.NoError(t, json.Unmarshal(notifs[0].Payload, &p))
	assert.Equal(t, joined, p.Room)
}

func TestJoinUnknownRoom(t *testing.T) {
	o := newTestOrch()
	bind(o, "b", "bob")

	_, err := o.JoinRoom("b", "never-created")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestThirdJoinerRefused(t *testing.T) {
	o := newTestOrch()
	bind(o, "a", "alice")
	bind(o, "b", "bob")
	connC := bind(o, "c", "carol")

	room := o.CreateRoom("a")
	_, err := o.JoinRoom("b", room.RoomID)
	require.NoError(t, err)

	_, err = o.JoinRoom("c", room.RoomID)
	assert.ErrorIs(t, err, domain.ErrRoomFull)
	assert.Empty(t, connC.frames)
}

func TestCloseRoom(t *testing.T) {
	o := newTestOrch()
	connA := bind(o, "a", "alice")
	bind(o, "b", "bob")

	room := o.CreateRoom("a")
	_, err := o.JoinRoom("b", room.RoomID)
	require.NoError(t, err)

	o.CloseRoom("b", room.RoomID)

	notifs := connA.eventsOfType(t, protocol.EventCloseRoom)
	require.Len(t, notifs, 1)
	var p protocol.CloseRoomPayload
	require.NoError(t, json.Unmarshal(notifs[0].Payload, &p))
	assert.Equal(t, room.RoomID, p.RoomID)

	// Join after close behaves like the room never existed.
	_, err = o.JoinRoom("b", room.RoomID)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)

	// Repeating the close is a no-op.
	o.CloseRoom("b", room.RoomID)
	assert.Len(t, connA.eventsOfType(t, protocol.EventCloseRoom), 1)
}

func TestDisconnectAloneDeletesRoom(t *testing.T) {
	o := newTestOrch()
	bind(o, "a", "alice")
	room := o.CreateRoom("a")

	o.Disconnect("a")

	assert.Equal(t, 0, o.Registry.Len())
	_, ok := o.Registry.Get(room.RoomID)
	assert.False(t, ok)
	_, ok = o.Peers.Conn("a")
	assert.False(t, ok)
}

func TestDisconnectWithPeerRetainsRoom(t *testing.T) {
	o := newTestOrch()
	bind(o, "a", "alice")
	connB := bind(o, "b", "bob")

	room := o.CreateRoom("a")
	_, err := o.JoinRoom("b", room.RoomID)
	require.NoError(t, err)

	o.Disconnect("a")

	// Room retained, survivor told exactly once who left.
	_, ok := o.Registry.Get(room.RoomID)
	assert.True(t, ok)
	notifs := connB.eventsOfType(t, protocol.EventPlayerDisconnected)
	require.Len(t, notifs, 1)
	var p protocol.PlayerDisconnectedPayload
	require.NoError(t, json.Unmarshal(notifs[0].Payload, &p))
	assert.Equal(t, domain.ConnID("a"), p.Player.ID)
	assert.Equal(t, "alice", p.Player.Username)
}

func TestDisconnectUnknownConn(t *testing.T) {
	o := newTestOrch()
	bind(o, "a", "alice")
	o.CreateRoom("a")

	// A connection that never joined a room touches nothing.
	o.Disconnect("stranger")
	assert.Equal(t, 1, o.Registry.Len())
}
