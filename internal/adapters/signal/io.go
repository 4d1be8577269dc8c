package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/YoungCoderboy/chessme-copy/internal/domain"
	"github.com/YoungCoderboy/chessme-copy/internal/protocol"
)

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, sid domain.ConnID, c *wsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		ctl.Orch.Disconnect(sid)
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				return
			}
			ctl.dispatch(sid, c, data)
		}
	}
}

// dispatch routes one inbound frame. A fault in a single frame never
// takes the connection down, let alone the process.
func (ctl *Controller) dispatch(sid domain.ConnID, c *wsConn, data []byte) {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		ctl.sendError(c, protocol.CodeBadPayload, "malformed frame")
		return
	}

	switch msg.Type {
	case protocol.EventUsername:
		ctl.handleUsername(sid, c, msg.Payload)
	case protocol.EventCreateRoom:
		ctl.handleCreateRoom(sid, c)
	case protocol.EventJoinRoom:
		ctl.handleJoinRoom(sid, c, msg.Payload)
	case protocol.EventCloseRoom:
		ctl.handleCloseRoom(sid, c, msg.Payload)
	case protocol.EventMove:
		ctl.handleMove(sid, c, msg.Payload)
	case protocol.EventMessage:
		ctl.handleChat(sid, c, msg.Payload)
	case protocol.EventOffer:
		ctl.handleOffer(sid, c, msg.Payload)
	case protocol.EventAnswer:
		ctl.handleAnswer(sid, c, msg.Payload)
	case protocol.EventICECandidate:
		ctl.handleCandidate(sid, c, msg.Payload)
	case protocol.EventPing:
		ctl.sendJSON(c, protocol.EventPong, nil)
	default:
		log.Warn().Str("module", "signal").Str("type", msg.Type).Msg("unknown event")
	}
}

func (ctl *Controller) sendJSON(c *wsConn, event string, payload any) {
	frame, err := protocol.Encode(event, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("event", event).Msg("encode")
		return
	}
	_ = c.TrySend(frame)
}

func (ctl *Controller) sendError(c *wsConn, code, message string) {
	ctl.sendJSON(c, protocol.EventError, protocol.ErrorPayload{Code: code, Message: message})
}
