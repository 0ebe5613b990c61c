package chess_scene

import (
	"github.com/Carmen-Shannon/oxy-chess/engine/sprite"
	"github.com/Carmen-Shannon/oxy-chess/game/chess"
)

type outlineKind int

const (
	// outlineNone shows no cursor outline.
	outlineNone outlineKind = iota
	// outlineAtCursor highlights a movable piece under the cursor.
	outlineAtCursor
	// outlineOnSelected marks the selected piece while the cursor is elsewhere.
	outlineOnSelected
)

func (k outlineKind) String() string {
	switch k {
	case outlineAtCursor:
		return "atCursor"
	case outlineOnSelected:
		return "onSelected"
	}
	return "none"
}

type outlineState struct {
	kind outlineKind
	tile chess.Square
}

var noOutline = outlineState{kind: outlineNone, tile: chess.NoSquare}

func (o outlineState) texture() sprite.TextureID {
	if o.kind == outlineOnSelected {
		return TextureCursorSelect
	}
	return TextureCursorHighlight
}

// nextOutline is the outline transition function. canPick is false whenever no human may pick a
// piece: on the AI's turn, in autoplay and after the game ended.
func nextOutline(b *chess.Board, turn chess.Color, canPick bool, cursor, selected chess.Square) outlineState {
	if !canPick {
		return noOutline
	}
	if cursor.Valid() && cursor != selected {
		if p := b.At(cursor); !p.Empty() && p.Color == turn {
			return outlineState{kind: outlineAtCursor, tile: cursor}
		}
	}
	if selected.Valid() {
		return outlineState{kind: outlineOnSelected, tile: selected}
	}
	return noOutline
}
