package chess

import (
	"errors"
	"fmt"
	"slices"
)

// ErrIllegalMove is returned when a move is not among the piece's move or capture tiles.
var ErrIllegalMove = errors.New("illegal move")

type offset struct {
	rows, columns int
}

var (
	rookDirections   = []offset{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
	bishopDirections = []offset{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	knightJumps      = []offset{{2, -1}, {2, 1}, {1, -2}, {1, 2}, {-2, 1}, {-2, -1}, {-1, 2}, {-1, -2}}
	kingSteps        = []offset{{0, 1}, {1, 1}, {-1, 1}, {1, 0}, {-1, 0}, {0, -1}, {1, -1}, {-1, -1}}
)

func (o offset) from(sq Square) Square {
	return SquareAt(sq.Row()+o.rows, sq.Column()+o.columns)
}

// pawnForward returns the row step of a pawn of color.
func pawnForward(color Color) int {
	if color == White {
		return 1
	}
	return -1
}

// Move is one move of a piece.
type Move struct {
	From, To Square
	Capture  bool
}

func (m Move) String() string {
	sep := "-"
	if m.Capture {
		sep = "x"
	}
	return m.From.String() + sep + m.To.String()
}

// MoveTiles returns the empty squares the piece on sq can move to without capturing.
// There is no check detection, castling, en passant or promotion.
//
// Parameters:
//   - sq: the square of the piece
//
// Returns:
//   - []Square: the reachable empty squares, nil if sq is empty
func (b *Board) MoveTiles(sq Square) []Square {
	p := b.At(sq)
	var out []Square
	switch p.Kind {
	case Pawn:
		step := pawnForward(p.Color)
		one := offset{step, 0}.from(sq)
		if one.Valid() && b.At(one).Empty() {
			out = append(out, one)
			two := offset{2 * step, 0}.from(sq)
			if !p.Moved && two.Valid() && b.At(two).Empty() {
				out = append(out, two)
			}
		}
	case Rook:
		out = b.slide(sq, rookDirections, out)
	case Bishop:
		out = b.slide(sq, bishopDirections, out)
	case Queen:
		out = b.slide(sq, rookDirections, out)
		out = b.slide(sq, bishopDirections, out)
	case Knight:
		out = b.steps(sq, knightJumps, out)
	case King:
		out = b.steps(sq, kingSteps, out)
	}
	return out
}

// CaptureTiles returns the squares holding enemy pieces the piece on sq can capture.
//
// Parameters:
//   - sq: the square of the piece
//
// Returns:
//   - []Square: the capturable squares, nil if sq is empty
func (b *Board) CaptureTiles(sq Square) []Square {
	p := b.At(sq)
	var out []Square
	switch p.Kind {
	case Pawn:
		step := pawnForward(p.Color)
		for _, o := range []offset{{step, -1}, {step, 1}} {
			out = b.captureAt(o.from(sq), p.Color, out)
		}
	case Rook:
		out = b.slideCaptures(sq, p.Color, rookDirections, out)
	case Bishop:
		out = b.slideCaptures(sq, p.Color, bishopDirections, out)
	case Queen:
		out = b.slideCaptures(sq, p.Color, rookDirections, out)
		out = b.slideCaptures(sq, p.Color, bishopDirections, out)
	case Knight:
		for _, o := range knightJumps {
			out = b.captureAt(o.from(sq), p.Color, out)
		}
	case King:
		for _, o := range kingSteps {
			out = b.captureAt(o.from(sq), p.Color, out)
		}
	}
	return out
}

func (b *Board) slide(sq Square, dirs []offset, out []Square) []Square {
	for _, d := range dirs {
		for n := 1; ; n++ {
			to := offset{d.rows * n, d.columns * n}.from(sq)
			if !to.Valid() || !b.At(to).Empty() {
				break
			}
			out = append(out, to)
		}
	}
	return out
}

func (b *Board) slideCaptures(sq Square, color Color, dirs []offset, out []Square) []Square {
	for _, d := range dirs {
		for n := 1; ; n++ {
			to := offset{d.rows * n, d.columns * n}.from(sq)
			if !to.Valid() {
				break
			}
			if !b.At(to).Empty() {
				out = b.captureAt(to, color, out)
				break
			}
		}
	}
	return out
}

func (b *Board) steps(sq Square, offsets []offset, out []Square) []Square {
	for _, o := range offsets {
		if to := o.from(sq); to.Valid() && b.At(to).Empty() {
			out = append(out, to)
		}
	}
	return out
}

func (b *Board) captureAt(to Square, color Color, out []Square) []Square {
	if target := b.At(to); to.Valid() && !target.Empty() && target.Color != color {
		out = append(out, to)
	}
	return out
}

// Moves returns every move and capture available to color, quiet moves of each piece first,
// pieces in ascending square order.
func (b *Board) Moves(color Color) []Move {
	var out []Move
	b.Squares(func(sq Square, p Piece) {
		if p.Color != color {
			return
		}
		for _, to := range b.MoveTiles(sq) {
			out = append(out, Move{From: sq, To: to})
		}
		for _, to := range b.CaptureTiles(sq) {
			out = append(out, Move{From: sq, To: to, Capture: true})
		}
	})
	return out
}

// Controlled returns the set of squares color could capture on right now.
func (b *Board) Controlled(color Color) map[Square]bool {
	out := make(map[Square]bool)
	b.Squares(func(sq Square, p Piece) {
		if p.Color != color {
			return
		}
		for _, to := range b.CaptureTiles(sq) {
			out[to] = true
		}
	})
	return out
}

// Legal reports whether moving the piece on from to to is one of its move or capture tiles.
func (b *Board) Legal(from, to Square) bool {
	return slices.Contains(b.MoveTiles(from), to) || slices.Contains(b.CaptureTiles(from), to)
}

// Apply moves the piece on from to to, removing any piece on to, and marks it moved.
// Legality is not checked; use Legal first.
//
// Parameters:
//   - from: the square of the moving piece
//   - to: the destination square
//
// Returns:
//   - Piece: the captured piece, empty if none
//   - error: ErrOffBoard or ErrNoPiece
func (b *Board) Apply(from, to Square) (Piece, error) {
	if !from.Valid() || !to.Valid() {
		return Piece{}, fmt.Errorf("move %s-%s: %w", from, to, ErrOffBoard)
	}
	p := b.squares[from]
	if p.Empty() {
		return Piece{}, fmt.Errorf("move from %s: %w", from, ErrNoPiece)
	}
	captured := b.squares[to]
	p.Moved = true
	b.squares[to] = p
	b.squares[from] = Piece{}
	return captured, nil
}
