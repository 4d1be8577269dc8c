package client

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/YoungCoderboy/chessme-copy/internal/chessrules"
	"github.com/YoungCoderboy/chessme-copy/internal/domain"
	"github.com/YoungCoderboy/chessme-copy/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Transport manages the websocket connection to the relay server.
type Transport struct {
	serverURL string
	conn      *websocket.Conn
	incoming  chan protocol.Message
	outgoing  chan []byte
	done      chan struct{}

	mu     sync.Mutex
	closed bool
}

func NewTransport(serverURL string) *Transport {
	return &Transport{
		serverURL: serverURL,
		incoming:  make(chan protocol.Message, 32),
		outgoing:  make(chan []byte, 32),
		done:      make(chan struct{}),
	}
}

// Connect dials the server and starts the pumps.
func (t *Transport) Connect() error {
	conn, _, err := websocket.DefaultDialer.Dial(t.serverURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	t.conn = conn
	t.conn.SetReadLimit(maxMessageSize)
	t.conn.SetPongHandler(func(string) error {
		return t.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go t.readPump()
	go t.writePump()
	return nil
}

func (t *Transport) readPump() {
	defer func() {
		t.conn.Close()
		close(t.incoming)
	}()

	_ = t.conn.SetReadDeadline(time.Now().Add(pongWait))
	for {
		var msg protocol.Message
		if err := t.conn.ReadJSON(&msg); err != nil {
			return
		}
		t.incoming <- msg
	}
}

func (t *Transport) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		t.conn.Close()
	}()

	for {
		select {
		case frame := <-t.outgoing:
			_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := t.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := t.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-t.done:
			_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = t.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// Send encodes and queues one event frame.
func (t *Transport) Send(event string, payload any) error {
	frame, err := protocol.Encode(event, payload)
	if err != nil {
		return err
	}
	select {
	case t.outgoing <- frame:
		return nil
	default:
		return fmt.Errorf("outgoing queue full")
	}
}

// Incoming returns the channel of decoded server frames. Closed when the
// connection drops.
func (t *Transport) Incoming() <-chan protocol.Message {
	return t.incoming
}

func (t *Transport) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	close(t.done)
}

// Typed sends for the room protocol.

func (t *Transport) SendUsername(name string) error {
	return t.Send(protocol.EventUsername, protocol.UsernamePayload{Username: name})
}

func (t *Transport) SendCreateRoom() error {
	return t.Send(protocol.EventCreateRoom, nil)
}

func (t *Transport) SendJoinRoom(roomID domain.RoomID) error {
	return t.Send(protocol.EventJoinRoom, protocol.JoinRoomPayload{RoomID: roomID})
}

func (t *Transport) SendCloseRoom(roomID domain.RoomID) error {
	return t.Send(protocol.EventCloseRoom, protocol.CloseRoomPayload{RoomID: roomID})
}

func (t *Transport) SendChat(roomID domain.RoomID, text string) error {
	return t.Send(protocol.EventMessage, protocol.ChatPayload{Message: text, Room: roomID})
}

// SendMove relays an applied move; the server treats it as opaque bytes.
func (t *Transport) SendMove(roomID domain.RoomID, mv chessrules.Move) error {
	raw, err := json.Marshal(mv)
	if err != nil {
		return err
	}
	return t.Send(protocol.EventMove, protocol.MovePayload{Move: raw, Room: roomID})
}

// SignalSender implementation used by the signaling session.

func (t *Transport) SendOffer(target, caller domain.ConnID, sdp *webrtc.SessionDescription) error {
	return t.Send(protocol.EventOffer, protocol.SignalPayload{Target: target, Caller: caller, SDP: sdp})
}

func (t *Transport) SendAnswer(target, caller domain.ConnID, sdp *webrtc.SessionDescription) error {
	return t.Send(protocol.EventAnswer, protocol.SignalPayload{Target: target, Caller: caller, SDP: sdp})
}

func (t *Transport) SendCandidate(target domain.ConnID, cand webrtc.ICECandidateInit) error {
	err := t.Send(protocol.EventICECandidate, protocol.CandidatePayload{Target: target, Candidate: cand})
	if err != nil {
		log.Warn().Err(err).Str("module", "client.transport").Msg("send candidate")
	}
	return err
}
