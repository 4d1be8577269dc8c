package signal_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/YoungCoderboy/chessme-copy/internal/adapters/http"
	"github.com/YoungCoderboy/chessme-copy/internal/app"
	"github.com/YoungCoderboy/chessme-copy/internal/config"
	"github.com/YoungCoderboy/chessme-copy/internal/core"
	"github.com/YoungCoderboy/chessme-copy/internal/domain"
	"github.com/YoungCoderboy/chessme-copy/internal/protocol"
)

type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
	id   domain.ConnID
}

func startServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	cfg := &config.Config{Mode: "release", Secret: "test", ReadLimit: 65536}
	orch := app.NewOrchestrator(core.NewRoomRegistry(), app.NewPeerDirectory())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	srv := httptest.NewServer(httpadapter.SetupRouter(ctx, cfg, orch))
	t.Cleanup(srv.Close)
	return srv, "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
}

func dial(t *testing.T, url, username string) *wsClient {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	c := &wsClient{t: t, conn: conn}
	var welcome protocol.ConnectedPayload
	c.expect(protocol.EventConnected, &welcome)
	require.NotEmpty(t, welcome.ID)
	c.id = welcome.ID

	c.send(protocol.EventUsername, protocol.UsernamePayload{Username: username})
	return c
}

func (c *wsClient) send(event string, payload any) {
	c.t.Helper()
	frame, err := protocol.Encode(event, payload)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteMessage(websocket.TextMessage, frame))
}

// expect reads frames until one of the wanted type arrives, decoding its
// payload into v. Unrelated events in between are skipped.
func (c *wsClient) expect(event string, v any) {
	c.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		require.NoError(c.t, c.conn.SetReadDeadline(deadline))
		_, data, err := c.conn.ReadMessage()
		require.NoError(c.t, err, "waiting for %s", event)

		var msg protocol.Message
		require.NoError(c.t, json.Unmarshal(data, &msg))
		if msg.Type != event {
			continue
		}
		if v != nil {
			require.NoError(c.t, json.Unmarshal(msg.Payload, v))
		}
		return
	}
}

func createAndJoin(t *testing.T, url string) (*wsClient, *wsClient, domain.RoomID) {
	t.Helper()
	alice := dial(t, url, "alice")
	bob := dial(t, url, "bob")

	alice.send(protocol.EventCreateRoom, nil)
	var created protocol.RoomCreatedPayload
	alice.expect(protocol.EventRoomCreated, &created)

	bob.send(protocol.EventJoinRoom, protocol.JoinRoomPayload{RoomID: created.RoomID})
	var joined protocol.RoomJoinedPayload
	bob.expect(protocol.EventRoomJoined, &joined)
	var notified protocol.OpponentJoinedPayload
	alice.expect(protocol.EventOpponentJoined, &notified)

	assert.Equal(t, joined.Room, notified.Room)
	return alice, bob, created.RoomID
}

func TestCreateJoinAndSnapshotsMatch(t *testing.T) {
	_, url := startServer(t)
	alice := dial(t, url, "alice")
	bob := dial(t, url, "bob")

	alice.send(protocol.EventCreateRoom, nil)
	var created protocol.RoomCreatedPayload
	alice.expect(protocol.EventRoomCreated, &created)
	require.NotEmpty(t, created.RoomID)

	bob.send(protocol.EventJoinRoom, protocol.JoinRoomPayload{RoomID: created.RoomID})
	var joined protocol.RoomJoinedPayload
	bob.expect(protocol.EventRoomJoined, &joined)
	var notified protocol.OpponentJoinedPayload
	alice.expect(protocol.EventOpponentJoined, &notified)

	assert.Equal(t, joined.Room, notified.Room)
	require.Len(t, joined.Room.Players, domain.MaxPlayers)
	assert.Equal(t, created.RoomID, joined.Room.RoomID)
	assert.Equal(t, alice.id, joined.Room.Players[0].ID)
	assert.Equal(t, "alice", joined.Room.Players[0].Username)
	assert.Equal(t, bob.id, joined.Room.Players[1].ID)
	assert.Equal(t, "bob", joined.Room.Players[1].Username)
}

func TestJoinUnknownRoomReturnsError(t *testing.T) {
	_, url := startServer(t)
	bob := dial(t, url, "bob")

	bob.send(protocol.EventJoinRoom, protocol.JoinRoomPayload{RoomID: "nope"})
	var e protocol.ErrorPayload
	bob.expect(protocol.EventError, &e)
	assert.Equal(t, protocol.CodeRoomNotFound, e.Code)
}

func TestMovesRelayedInOrder(t *testing.T) {
	_, url := startServer(t)
	alice, bob, roomID := createAndJoin(t, url)

	m1 := json.RawMessage(`{"from":"e2","to":"e4","color":"w"}`)
	m2 := json.RawMessage(`{"from":"g1","to":"f3","color":"w"}`)
	alice.send(protocol.EventMove, protocol.MovePayload{Move: m1, Room: roomID})
	alice.send(protocol.EventMove, protocol.MovePayload{Move: m2, Room: roomID})

	var got json.RawMessage
	bob.expect(protocol.EventMove, &got)
	assert.JSONEq(t, string(m1), string(got))
	bob.expect(protocol.EventMove, &got)
	assert.JSONEq(t, string(m2), string(got))
}

func TestOfferRoutedToTarget(t *testing.T) {
	_, url := startServer(t)
	alice, bob, _ := createAndJoin(t, url)

	bob.send(protocol.EventOffer, protocol.SignalPayload{Target: alice.id, Caller: bob.id})
	var offer protocol.SignalPayload
	alice.expect(protocol.EventOffer, &offer)
	assert.Equal(t, bob.id, offer.Caller)
	assert.Equal(t, alice.id, offer.Target)
}

func TestChatTaggedWithSenderID(t *testing.T) {
	_, url := startServer(t)
	alice, bob, roomID := createAndJoin(t, url)

	alice.send(protocol.EventMessage, protocol.ChatPayload{Message: "hi", Room: roomID})
	var chat protocol.ChatDelivery
	bob.expect(protocol.EventMessageSend, &chat)
	assert.Equal(t, "hi", chat.Message)
	assert.Equal(t, alice.id, chat.ID)
}

func TestCloseRoomNotifiesPeerAndDeletes(t *testing.T) {
	_, url := startServer(t)
	alice, bob, roomID := createAndJoin(t, url)

	alice.send(protocol.EventCloseRoom, protocol.CloseRoomPayload{RoomID: roomID})
	var closed protocol.CloseRoomPayload
	bob.expect(protocol.EventCloseRoom, &closed)
	assert.Equal(t, roomID, closed.RoomID)

	// The room is gone; rejoining reports not found.
	bob.send(protocol.EventJoinRoom, protocol.JoinRoomPayload{RoomID: roomID})
	var e protocol.ErrorPayload
	bob.expect(protocol.EventError, &e)
	assert.Equal(t, protocol.CodeRoomNotFound, e.Code)
}

func TestDisconnectNotifiesRemainingPlayer(t *testing.T) {
	_, url := startServer(t)
	alice, bob, _ := createAndJoin(t, url)

	require.NoError(t, alice.conn.Close())

	var gone protocol.PlayerDisconnectedPayload
	bob.expect(protocol.EventPlayerDisconnected, &gone)
	assert.Equal(t, alice.id, gone.Player.ID)
	assert.Equal(t, "alice", gone.Player.Username)
}

func TestMalformedFrameReportsBadPayload(t *testing.T) {
	_, url := startServer(t)
	alice := dial(t, url, "alice")

	require.NoError(t, alice.conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	var e protocol.ErrorPayload
	alice.expect(protocol.EventError, &e)
	assert.Equal(t, protocol.CodeBadPayload, e.Code)
}

func TestPingPong(t *testing.T) {
	_, url := startServer(t)
	alice := dial(t, url, "alice")

	alice.send(protocol.EventPing, nil)
	alice.expect(protocol.EventPong, nil)
}
