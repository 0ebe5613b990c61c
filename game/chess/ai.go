package chess

import "math/rand"

// ChooseMove picks a move for color. Quiet moves to squares the opponent controls are avoided
// once at least one candidate exists; captures are always candidates. The candidates are
// shuffled with rng and the last one is played.
//
// Parameters:
//   - b: the board
//   - color: the side to move
//   - rng: the random source
//
// Returns:
//   - Move: the chosen move
//   - bool: false when color has no move
func ChooseMove(b *Board, color Color, rng *rand.Rand) (Move, bool) {
	controlled := b.Controlled(color.Opponent())

	var candidates []Move
	b.Squares(func(sq Square, p Piece) {
		if p.Color != color {
			return
		}
		for _, to := range b.MoveTiles(sq) {
			if !controlled[to] || len(candidates) == 0 {
				candidates = append(candidates, Move{From: sq, To: to})
			}
		}
	})
	b.Squares(func(sq Square, p Piece) {
		if p.Color != color {
			return
		}
		for _, to := range b.CaptureTiles(sq) {
			candidates = append(candidates, Move{From: sq, To: to, Capture: true})
		}
	})

	if len(candidates) == 0 {
		return Move{}, false
	}
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	return candidates[len(candidates)-1], true
}
