package chess

import (
	"errors"
	"fmt"
)

var (
	// ErrOccupied is returned when placing a piece on an occupied square.
	ErrOccupied = errors.New("square occupied")
	// ErrNoPiece is returned when moving from an empty square.
	ErrNoPiece = errors.New("no piece on square")
	// ErrOffBoard is returned for squares outside the board.
	ErrOffBoard = errors.New("square off board")
)

// Board is an 8x8 chess board.
type Board struct {
	squares [64]Piece
}

// backRank is the piece order on the first and last rows.
var backRank = [8]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewBoard returns a board in the starting position, white on rows 0 and 1.
func NewBoard() *Board {
	b := &Board{}
	for column := range 8 {
		b.squares[SquareAt(0, column)] = Piece{Kind: backRank[column], Color: White}
		b.squares[SquareAt(1, column)] = Piece{Kind: Pawn, Color: White}
		b.squares[SquareAt(6, column)] = Piece{Kind: Pawn, Color: Black}
		b.squares[SquareAt(7, column)] = Piece{Kind: backRank[column], Color: Black}
	}
	return b
}

// NewEmptyBoard returns a board with no pieces.
func NewEmptyBoard() *Board {
	return &Board{}
}

// At returns the piece on sq, or an empty Piece when sq is empty or off the board.
func (b *Board) At(sq Square) Piece {
	if !sq.Valid() {
		return Piece{}
	}
	return b.squares[sq]
}

// Place puts p on an empty square.
//
// Parameters:
//   - sq: the target square
//   - p: the piece to place
//
// Returns:
//   - error: ErrOffBoard or ErrOccupied
func (b *Board) Place(sq Square, p Piece) error {
	if !sq.Valid() {
		return fmt.Errorf("place %s: %w", p, ErrOffBoard)
	}
	if !b.squares[sq].Empty() {
		return fmt.Errorf("place %s on %s: %w", p, sq, ErrOccupied)
	}
	b.squares[sq] = p
	return nil
}

// Remove clears sq.
func (b *Board) Remove(sq Square) {
	if sq.Valid() {
		b.squares[sq] = Piece{}
	}
}

// Squares calls fn for every occupied square in ascending order.
func (b *Board) Squares(fn func(sq Square, p Piece)) {
	for i, p := range b.squares {
		if !p.Empty() {
			fn(Square(i), p)
		}
	}
}

// Count returns the number of pieces of color on the board.
func (b *Board) Count(color Color) int {
	n := 0
	b.Squares(func(_ Square, p Piece) {
		if p.Color == color {
			n++
		}
	})
	return n
}

// HasKing reports whether color still has a king on the board.
func (b *Board) HasKing(color Color) bool {
	for _, p := range b.squares {
		if p.Kind == King && p.Color == color {
			return true
		}
	}
	return false
}

// Clone returns a copy of the board.
func (b *Board) Clone() *Board {
	c := *b
	return &c
}
