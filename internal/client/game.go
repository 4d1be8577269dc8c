package client

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/YoungCoderboy/chessme-copy/internal/chessrules"
	"github.com/YoungCoderboy/chessme-copy/internal/domain"
)

// MoveSender relays an accepted local move to the opponent.
type MoveSender interface {
	SendMove(roomID domain.RoomID, mv chessrules.Move) error
}

// Outcome is a terminal-state notification derived after a move.
type Outcome struct {
	Result chessrules.Result
	// Winner is set for checkmate: the side that made the mating move.
	Winner chessrules.Color
}

// Message renders the outcome the way the game-over dialog shows it.
func (o Outcome) Message() string {
	switch o.Result {
	case chessrules.ResultCheckmate:
		return fmt.Sprintf("Checkmate! %s wins!", o.Winner)
	case chessrules.ResultDraw:
		return "Draw"
	}
	return ""
}

// Game coordinates moves for one client: local moves are gated and
// validated before relay, remote moves are trusted because they already
// passed the sender's legality check. Both sides converge by replaying
// the same sequence in relay order.
type Game struct {
	mu          sync.Mutex
	eng         chessrules.Engine
	orientation chessrules.Color
	room        domain.RoomID
	players     int
	send        MoveSender
}

// NewGame starts a coordinator for a room. Orientation is fixed at join
// time: the creator plays white, the joiner black.
func NewGame(room domain.RoomID, orientation chessrules.Color, players int, send MoveSender) *Game {
	return &Game{
		eng:         chessrules.NewEngine(),
		orientation: orientation,
		room:        room,
		players:     players,
		send:        send,
	}
}

// SetPlayerCount tracks room occupancy; moves are disallowed until the
// opponent has joined.
func (g *Game) SetPlayerCount(n int) {
	g.mu.Lock()
	g.players = n
	g.mu.Unlock()
}

// AttemptLocalMove applies a move the local user tried. Rejections, in
// order: not this side's turn, opponent not present, illegal per the
// rule engine. An accepted move is relayed to the room.
func (g *Game) AttemptLocalMove(from, to, promotion string) (chessrules.Move, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.eng.Turn() != g.orientation {
		return chessrules.Move{}, false
	}
	if g.players < domain.MaxPlayers {
		return chessrules.Move{}, false
	}
	mv, err := g.eng.ApplyMove(from, to, promotion)
	if err != nil {
		return chessrules.Move{}, false
	}
	if err := g.send.SendMove(g.room, mv); err != nil {
		log.Warn().Err(err).Str("module", "client.game").Msg("relay move")
	}
	return mv, true
}

// ApplyRemoteMove replays the opponent's move without turn or occupancy
// gating. An illegal remote move means the two sides diverged; it is
// logged and dropped rather than applied blindly.
func (g *Game) ApplyRemoteMove(mv chessrules.Move) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, err := g.eng.ApplyMove(mv.From, mv.To, mv.Promotion); err != nil {
		log.Error().Str("module", "client.game").Str("from", mv.From).Str("to", mv.To).Msg("remote move illegal, dropped")
		return false
	}
	return true
}

// Outcome evaluates the terminal state of the current position. For
// checkmate the winner is the side that just moved, i.e. the one not on
// turn.
func (g *Game) Outcome() Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch g.eng.Terminal() {
	case chessrules.ResultCheckmate:
		winner := chessrules.White
		if g.eng.Turn() == chessrules.White {
			winner = chessrules.Black
		}
		return Outcome{Result: chessrules.ResultCheckmate, Winner: winner}
	case chessrules.ResultDraw:
		return Outcome{Result: chessrules.ResultDraw}
	}
	return Outcome{}
}

func (g *Game) FEN() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.eng.FEN()
}

func (g *Game) Room() domain.RoomID { return g.room }

func (g *Game) Orientation() chessrules.Color { return g.orientation }
