package chess

import "fmt"

// Color is the side a piece belongs to.
type Color int

const (
	White Color = iota
	Black
)

// Opponent returns the other side.
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	}
	return fmt.Sprintf("color(%d)", int(c))
}

// Kind is the type of a piece. The zero Kind marks an empty square.
type Kind int

const (
	NoKind Kind = iota
	Pawn
	Rook
	Knight
	Bishop
	Queen
	King
)

func (k Kind) String() string {
	switch k {
	case NoKind:
		return "none"
	case Pawn:
		return "pawn"
	case Rook:
		return "rook"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Queen:
		return "queen"
	case King:
		return "king"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Piece is the content of one board square.
type Piece struct {
	Kind  Kind
	Color Color
	// Moved is set once the piece has left its starting square. Pawns lose their double step.
	Moved bool
}

// Empty reports whether p represents an empty square.
func (p Piece) Empty() bool {
	return p.Kind == NoKind
}

func (p Piece) String() string {
	if p.Empty() {
		return "empty"
	}
	return p.Color.String() + " " + p.Kind.String()
}

// Square is a board position in [0, 64): column + 8*row, with row 0 on white's side.
type Square int

// NoSquare is returned where no square applies.
const NoSquare Square = -1

// SquareAt returns the square at row and column, or NoSquare when either is off the board.
func SquareAt(row, column int) Square {
	if row < 0 || row > 7 || column < 0 || column > 7 {
		return NoSquare
	}
	return Square(column + 8*row)
}

// Row returns the square's row, 0 at the bottom.
func (s Square) Row() int {
	return int(s) / 8
}

// Column returns the square's column, 0 at the left.
func (s Square) Column() int {
	return int(s) % 8
}

// Valid reports whether s is on the board.
func (s Square) Valid() bool {
	return s >= 0 && s < 64
}

func (s Square) String() string {
	if !s.Valid() {
		return "none"
	}
	return fmt.Sprintf("%c%d", 'a'+s.Column(), s.Row()+1)
}
