package chess

import (
	"errors"
	"fmt"
	"math/rand"
)

var (
	// ErrGameOver is returned when a move is attempted after the game ended.
	ErrGameOver = errors.New("game over")
	// ErrNotYourTurn is returned when moving a piece of the side not to move.
	ErrNotYourTurn = errors.New("not your turn")
)

// Outcome describes how a game ended.
type Outcome int

const (
	InProgress Outcome = iota
	// KingCaptured ends the game when a king is taken.
	KingCaptured
	// NoMoves ends the game when the side to move has nothing to play.
	NoMoves
)

func (o Outcome) String() string {
	switch o {
	case InProgress:
		return "in progress"
	case KingCaptured:
		return "king captured"
	case NoMoves:
		return "no moves"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Game is a board plus turn order, white moving first.
type Game struct {
	board   *Board
	turn    Color
	outcome Outcome
	winner  Color
	history []Move
}

// NewGame starts a game from the standard position.
func NewGame() *Game {
	return NewGameFrom(NewBoard(), White)
}

// NewGameFrom starts a game from an arbitrary position.
func NewGameFrom(b *Board, turn Color) *Game {
	g := &Game{board: b, turn: turn}
	g.checkOver()
	return g
}

// Board returns the game's board. Callers must not modify it directly.
func (g *Game) Board() *Board {
	return g.board
}

// Turn returns the side to move.
func (g *Game) Turn() Color {
	return g.turn
}

// Over reports whether the game has ended.
func (g *Game) Over() bool {
	return g.outcome != InProgress
}

// Outcome returns how the game ended.
func (g *Game) Outcome() Outcome {
	return g.outcome
}

// Winner returns the winning side. Only meaningful when Over is true.
func (g *Game) Winner() Color {
	return g.winner
}

// History returns the moves played so far.
func (g *Game) History() []Move {
	return g.history
}

// Play moves the piece on from to to for the side to move.
//
// Parameters:
//   - from: the square of the moving piece
//   - to: the destination square
//
// Returns:
//   - Move: the move played, with Capture set if a piece was taken
//   - error: ErrGameOver, ErrNoPiece, ErrNotYourTurn or ErrIllegalMove
func (g *Game) Play(from, to Square) (Move, error) {
	if g.Over() {
		return Move{}, ErrGameOver
	}
	p := g.board.At(from)
	if p.Empty() {
		return Move{}, fmt.Errorf("play %s: %w", from, ErrNoPiece)
	}
	if p.Color != g.turn {
		return Move{}, fmt.Errorf("play %s: %w", p, ErrNotYourTurn)
	}
	if !g.board.Legal(from, to) {
		return Move{}, fmt.Errorf("play %s %s-%s: %w", p, from, to, ErrIllegalMove)
	}

	captured, err := g.board.Apply(from, to)
	if err != nil {
		return Move{}, err
	}
	m := Move{From: from, To: to, Capture: !captured.Empty()}
	g.history = append(g.history, m)

	mover := g.turn
	g.turn = mover.Opponent()
	if captured.Kind == King {
		g.outcome = KingCaptured
		g.winner = mover
		return m, nil
	}
	g.checkOver()
	return m, nil
}

// PlayAI lets ChooseMove pick and play a move for the side to move.
//
// Parameters:
//   - rng: the random source
//
// Returns:
//   - Move: the move played
//   - error: ErrGameOver if the game ended before or no move exists
func (g *Game) PlayAI(rng *rand.Rand) (Move, error) {
	if g.Over() {
		return Move{}, ErrGameOver
	}
	m, ok := ChooseMove(g.board, g.turn, rng)
	if !ok {
		g.checkOver()
		return Move{}, ErrGameOver
	}
	return g.Play(m.From, m.To)
}

func (g *Game) checkOver() {
	switch {
	case !g.board.HasKing(g.turn):
		g.outcome = KingCaptured
		g.winner = g.turn.Opponent()
	case len(g.board.Moves(g.turn)) == 0:
		g.outcome = NoMoves
		g.winner = g.turn.Opponent()
	}
}
