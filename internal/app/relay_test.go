package app

import (
	"encoding/json"
	"testing"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoungCoderboy/chessme-copy/internal/domain"
	"github.com/YoungCoderboy/chessme-copy/internal/protocol"
)

func twoPlayerRoom(t *testing.T) (*Orchestrator, domain.RoomID, *fakeConn, *fakeConn) {
	t.Helper()
	o := newTestOrch()
	connA := bind(o, "a", "alice")
	connB := bind(o, "b", "bob")
	room := o.CreateRoom("a")
	_, err := o.JoinRoom("b", room.RoomID)
	require.NoError(t, err)
	return o, room.RoomID, connA, connB
}

func TestMoveRelayOrderPreserved(t *testing.T) {
	o, roomID, connA, connB := twoPlayerRoom(t)

	m1 := json.RawMessage(`{"from":"e2","to":"e4","color":"w"}`)
	m2 := json.RawMessage(`{"from":"d2","to":"d4","color":"w"}`)
	o.RelayMove("a", roomID, m1)
	o.RelayMove("a", roomID, m2)

	moves := connB.eventsOfType(t, protocol.EventMove)
	require.Len(t, moves, 2)
	assert.JSONEq(t, string(m1), string(moves[0].Payload))
	assert.JSONEq(t, string(m2), string(moves[1].Payload))

	// Broadcast excludes the sender.
	assert.Empty(t, connA.eventsOfType(t, protocol.EventMove))
}

func TestMoveRelayUnknownRoomDropped(t *testing.T) {
	o, _, _, connB := twoPlayerRoom(t)
	o.RelayMove("a", "gone", json.RawMessage(`{}`))
	assert.Empty(t, connB.eventsOfType(t, protocol.EventMove))
}

func TestChatTaggedWithSender(t *testing.T) {
	o, roomID, _, connB := twoPlayerRoom(t)

	o.RelayChat("a", roomID, "good luck")

	msgs := connB.eventsOfType(t, protocol.EventMessageSend)
	require.Len(t, msgs, 1)
	var p protocol.ChatDelivery
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &p))
	assert.Equal(t, "good luck", p.Message)
	assert.Equal(t, domain.ConnID("a"), p.ID)
}

func TestOfferAnswerRoutedUnmodified(t *testing.T) {
	o, _, connA, connB := twoPlayerRoom(t)

	offer := protocol.SignalPayload{Target: "b", Caller: "a"}
	o.RelayOffer(offer)

	got := connB.eventsOfType(t, protocol.EventOffer)
	require.Len(t, got, 1)
	var p protocol.SignalPayload
	require.NoError(t, json.Unmarshal(got[0].Payload, &p))
	assert.Equal(t, offer, p)

	answer := protocol.SignalPayload{Target: "a", Caller: "b"}
	o.RelayAnswer(answer)

	got = connA.eventsOfType(t, protocol.EventAnswer)
	require.Len(t, got, 1)
	require.NoError(t, json.Unmarshal(got[0].Payload, &p))
	assert.Equal(t, answer, p)
}

func TestCandidateRelayedBare(t *testing.T) {
	o, _, _, connB := twoPlayerRoom(t)

	o.RelayCandidate(protocol.CandidatePayload{
		Target:    "b",
		Candidate: webrtc.ICECandidateInit{Candidate: "candidate:1 1 udp 2130706431 192.0.2.1 54400 typ host"},
	})

	got := connB.eventsOfType(t, protocol.EventICECandidate)
	require.Len(t, got, 1)
	// The target receives the bare candidate, not the routed wrapper.
	var bare map[string]any
	require.NoError(t, json.Unmarshal(got[0].Payload, &bare))
	assert.Contains(t, bare, "candidate")
	assert.NotContains(t, bare, "target")
}

func TestUnicastToGoneTargetSilentlyDropped(t *testing.T) {
	o, _, _, _ := twoPlayerRoom(t)

	// Must not panic or error; best-effort semantics.
	o.RelayOffer(protocol.SignalPayload{Target: "ghost", Caller: "a"})
	o.RelayCandidate(protocol.CandidatePayload{Target: "ghost"})
}

func TestBroadcastSkipsBackpressuredConn(t *testing.T) {
	o, roomID, _, connB := twoPlayerRoom(t)
	connB.dead = true

	// Frame to the dead peer drops without affecting the room.
	o.RelayChat("a", roomID, "anyone there?")
	assert.Empty(t, connB.frames)
}
