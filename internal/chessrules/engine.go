// Package chessrules is the boundary to the chess rule engine. The rest
// of the client treats it as opaque: apply a move or learn it is
// illegal, and ask whether the position is terminal.
package chessrules

import (
	"errors"

	"github.com/corentings/chess"
)

var ErrIllegalMove = errors.New("illegal move")

// Color is a board orientation, fixed per client at room join time.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Short returns the single-letter color used in move payloads.
func (c Color) Short() string {
	if c == Black {
		return "b"
	}
	return "w"
}

// Result classifies a terminal position.
type Result int

const (
	ResultNone Result = iota
	ResultCheckmate
	ResultDraw
)

// Move is the wire shape of one move, mirroring what the rule engine
// needs to replay it on the other side.
type Move struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
	Color     string `json:"color"`
}

// Engine validates and applies moves against an evolving position.
type Engine interface {
	// ApplyMove plays from→to, promoting per preference where the
	// position allows it. ErrIllegalMove leaves the position unchanged.
	ApplyMove(from, to, promotion string) (Move, error)
	Turn() Color
	Terminal() Result
	FEN() string
}

type engine struct {
	game *chess.Game
}

// NewEngine starts a game from the standard initial position.
func NewEngine() Engine {
	return &engine{game: chess.NewGame()}
}

func (e *engine) ApplyMove(from, to, promotion string) (Move, error) {
	mv := e.findMove(from, to, promotion)
	if mv == nil {
		return Move{}, ErrIllegalMove
	}
	color := e.Turn().Short()
	if err := e.game.Move(mv); err != nil {
		return Move{}, ErrIllegalMove
	}
	out := Move{From: from, To: to, Color: color}
	if mv.Promo() != chess.NoPieceType {
		out.Promotion = pieceLetter(mv.Promo())
	}
	return out, nil
}

// findMove matches against the legal-move list rather than parsing
// notation, so a bogus square string is just another illegal move.
func (e *engine) findMove(from, to, promotion string) *chess.Move {
	want := promoPiece(promotion)
	var fallback *chess.Move
	for _, mv := range e.game.ValidMoves() {
		if mv.S1().String() != from || mv.S2().String() != to {
			continue
		}
		if mv.Promo() == chess.NoPieceType {
			return mv
		}
		if mv.Promo() == want {
			return mv
		}
		if fallback == nil {
			fallback = mv
		}
	}
	return fallback
}

func (e *engine) Turn() Color {
	if e.game.Position().Turn() == chess.Black {
		return Black
	}
	return White
}

func (e *engine) Terminal() Result {
	switch e.game.Outcome() {
	case chess.NoOutcome:
		return ResultNone
	case chess.Draw:
		return ResultDraw
	default:
		// WhiteWon or BlackWon; over the board that is checkmate.
		if e.game.Method() == chess.Checkmate {
			return ResultCheckmate
		}
		return ResultDraw
	}
}

func (e *engine) FEN() string {
	return e.game.Position().String()
}

func promoPiece(letter string) chess.PieceType {
	switch letter {
	case "n":
		return chess.Knight
	case "b":
		return chess.Bishop
	case "r":
		return chess.Rook
	default:
		// Queen is the default preference, as in the reference client.
		return chess.Queen
	}
}

func pieceLetter(p chess.PieceType) string {
	switch p {
	case chess.Knight:
		return "n"
	case chess.Bishop:
		return "b"
	case chess.Rook:
		return "r"
	case chess.Queen:
		return "q"
	}
	return ""
}
