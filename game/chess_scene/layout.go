package chess_scene

import (
	"math"

	"github.com/Carmen-Shannon/oxy-chess/engine/sprite"
	"github.com/Carmen-Shannon/oxy-chess/game/chess"
)

// Texture table of the chess manifest. Pieces occupy 1 to 12, white odd and black even.
const (
	TextureBoard            sprite.TextureID = 0
	TextureCursor           sprite.TextureID = 13
	TextureCursorHighlight  sprite.TextureID = 14
	TextureCursorSelect     sprite.TextureID = 15
	TextureMoveHighlight    sprite.TextureID = 16
	TextureCaptureHighlight sprite.TextureID = 17

	// TextureCount is the number of textures the scene indexes into.
	TextureCount = 18
)

// tileExtent is the half-extent of a piece or outline sprite: 100px of an 800px board.
const tileExtent = float32(100.0 / 800.0)

// PieceTexture returns the texture of a piece.
//
// Parameters:
//   - p: a non-empty piece
//
// Returns:
//   - sprite.TextureID: the piece's texture in [1, 12]
func PieceTexture(p chess.Piece) sprite.TextureID {
	id := sprite.TextureID(2*(int(p.Kind)-1) + 1)
	if p.Color == chess.Black {
		id++
	}
	return id
}

// columnToX returns the x coordinate of a column's center.
func columnToX(column int) float32 {
	return -1 + 0.25*float32(column) + 1.0/8.0
}

// rowToY returns the y coordinate of a row's center.
func rowToY(row int) float32 {
	return -1 + 0.25*float32(row) + 1.0/8.0
}

func xToColumn(x float32) int {
	return int(math.Floor(float64(x*4 + 4)))
}

func yToRow(y float32) int {
	return int(math.Floor(float64(y*4 + 4)))
}

// SquareCenter returns the center of a square in normalized device coordinates.
func SquareCenter(sq chess.Square) (x, y float32) {
	return columnToX(sq.Column()), rowToY(sq.Row())
}

// SquareAtPoint returns the square under a point, or chess.NoSquare off the board.
func SquareAtPoint(x, y float32) chess.Square {
	return chess.SquareAt(yToRow(y), xToColumn(x))
}
