package chess_scene

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-chess/common"
	"github.com/Carmen-Shannon/oxy-chess/engine/input"
	"github.com/Carmen-Shannon/oxy-chess/engine/renderer"
	"github.com/Carmen-Shannon/oxy-chess/engine/scene"
	"github.com/Carmen-Shannon/oxy-chess/engine/sprite"
	"github.com/Carmen-Shannon/oxy-chess/game/chess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSceneContext(t *testing.T) scene.Context {
	t.Helper()
	r := renderer.NewRenderer(renderer.BackendTypeHeadless, nil, renderer.WithSize(800, 800))
	staging := make([]common.TextureStagingData, TextureCount)
	for i := range staging {
		staging[i] = common.TextureStagingData{Pixels: make([]byte, 4), Width: 1, Height: 1}
	}
	require.NoError(t, r.UploadTextures(staging, common.SamplerStagingData{}))

	p, err := sprite.NewPool(r, sprite.WithCapacity(128))
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return scene.Context{Renderer: r, Pool: p}
}

func newTestScene(t *testing.T, options ...ChessSceneBuilderOption) (*chessScene, scene.Context) {
	t.Helper()
	ctx := newSceneContext(t)
	s := NewChessScene(append([]ChessSceneBuilderOption{WithSeed(7), WithMusic("")}, options...)...).(*chessScene)
	require.NoError(t, s.Init(ctx))
	return s, ctx
}

// clickAt moves the cursor to a pixel of the 800x800 surface, clicks and runs one update.
func clickAt(t *testing.T, s *chessScene, st *input.State, x, y float64) {
	t.Helper()
	st.Apply(input.Event{Type: input.EventCursorMove, X: x, Y: y})
	st.Apply(input.Event{Type: input.EventKeyDown, Key: common.MouseLeft})
	require.NoError(t, s.Update(0.01, st))
	st.EndUpdate()
	st.Apply(input.Event{Type: input.EventKeyUp, Key: common.MouseLeft})
}

// clickOn clicks the center of a named square.
func clickOn(t *testing.T, s *chessScene, st *input.State, name string) {
	t.Helper()
	sq := square(name)
	clickAt(t, s, st, float64(sq.Column())*100+50, 800-float64(sq.Row())*100-50)
}

func place(t *testing.T, b *chess.Board, sq string, kind chess.Kind, color chess.Color) {
	t.Helper()
	require.NoError(t, b.Place(square(sq), chess.Piece{Kind: kind, Color: color}))
}

func square(name string) chess.Square {
	return chess.SquareAt(int(name[1]-'1'), int(name[0]-'a'))
}

func assertPiecesInPlace(t *testing.T, s *chessScene) {
	t.Helper()
	b := s.Game().Board()
	assert.Len(t, s.pieces, b.Count(chess.White)+b.Count(chess.Black))
	for sq, key := range s.pieces {
		p := b.At(sq)
		require.False(t, p.Empty(), "sprite left on empty square %s", sq)
		obj := s.Get(key)
		require.NotNil(t, obj)
		x, y := obj.Position()
		cx, cy := SquareCenter(sq)
		assert.InDelta(t, cx, x, 1e-6)
		assert.InDelta(t, cy, y, 1e-6)
		assert.Equal(t, PieceTexture(p), obj.Desc().Texture)
	}
}

func TestPieceTexture(t *testing.T) {
	tests := []struct {
		piece chess.Piece
		want  sprite.TextureID
	}{
		{chess.Piece{Kind: chess.Pawn, Color: chess.White}, 1},
		{chess.Piece{Kind: chess.Pawn, Color: chess.Black}, 2},
		{chess.Piece{Kind: chess.Rook, Color: chess.White}, 3},
		{chess.Piece{Kind: chess.Knight, Color: chess.Black}, 6},
		{chess.Piece{Kind: chess.Bishop, Color: chess.White}, 7},
		{chess.Piece{Kind: chess.Queen, Color: chess.Black}, 10},
		{chess.Piece{Kind: chess.King, Color: chess.White}, 11},
		{chess.Piece{Kind: chess.King, Color: chess.Black}, 12},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PieceTexture(tt.piece), tt.piece.String())
	}
}

func TestLayout(t *testing.T) {
	x, y := SquareCenter(square("a1"))
	assert.InDelta(t, -0.875, x, 1e-6)
	assert.InDelta(t, -0.875, y, 1e-6)
	x, y = SquareCenter(square("h8"))
	assert.InDelta(t, 0.875, x, 1e-6)
	assert.InDelta(t, 0.875, y, 1e-6)

	tests := []struct {
		x, y float32
		want chess.Square
	}{
		{-0.99, -0.99, square("a1")},
		{0.125, -0.625, square("e2")},
		{0, 0, square("e5")},
		{-0.01, -0.01, square("d4")},
		{0.99, 0.99, square("h8")},
		{1, 0, chess.NoSquare},
		{0, -1.01, chess.NoSquare},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SquareAtPoint(tt.x, tt.y), "point (%v, %v)", tt.x, tt.y)
	}

	for sq := chess.Square(0); sq < 64; sq++ {
		x, y := SquareCenter(sq)
		assert.Equal(t, sq, SquareAtPoint(x, y))
	}
}

func TestNextOutline(t *testing.T) {
	b := chess.NewBoard()
	e2, e4, e7 := square("e2"), square("e4"), square("e7")

	tests := []struct {
		name     string
		turn     chess.Color
		canPick  bool
		cursor   chess.Square
		selected chess.Square
		want     outlineState
	}{
		{"cannot pick", chess.White, false, e2, chess.NoSquare, noOutline},
		{"own piece", chess.White, true, e2, chess.NoSquare, outlineState{outlineAtCursor, e2}},
		{"enemy piece", chess.White, true, e7, chess.NoSquare, noOutline},
		{"empty tile", chess.White, true, e4, chess.NoSquare, noOutline},
		{"off board", chess.White, true, chess.NoSquare, chess.NoSquare, noOutline},
		{"selected under cursor", chess.White, true, e2, e2, outlineState{outlineOnSelected, e2}},
		{"selected elsewhere", chess.White, true, e4, e2, outlineState{outlineOnSelected, e2}},
		{"black to move", chess.Black, true, e7, chess.NoSquare, outlineState{outlineAtCursor, e7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextOutline(b, tt.turn, tt.canPick, tt.cursor, tt.selected))
		})
	}

	assert.Equal(t, TextureCursorHighlight, outlineState{outlineAtCursor, e2}.texture())
	assert.Equal(t, TextureCursorSelect, outlineState{outlineOnSelected, e2}.texture())
}

func TestInitBuildsBoard(t *testing.T) {
	s, ctx := newTestScene(t)

	assert.Equal(t, "chess", s.Name())
	// board, 32 pieces and the cursor; the outline starts hidden
	assert.Equal(t, 34, ctx.Pool.LiveCount())
	assert.Equal(t, chess.NoSquare, s.Selected())
	assert.False(t, s.outline.Visible())
	assertPiecesInPlace(t, s)

	size := float32(20.0 / 800.0)
	assert.Equal(t, sprite.LayerOverlay, s.cursor.Desc().Layer)
	assert.Equal(t, TextureCursor, s.cursor.Desc().Texture)
	assert.InDelta(t, size, s.cursor.Desc().Width, 1e-6)
	x, y := s.cursor.Position()
	assert.InDelta(t, size, x, 1e-6)
	assert.InDelta(t, -size, y, 1e-6)
}

func TestUpdateBeforeInit(t *testing.T) {
	s := NewChessScene()
	assert.ErrorIs(t, s.Update(0.01, input.NewState(800, 800)), scene.ErrNotInitialized)
}

func TestSelectAndMove(t *testing.T) {
	s, ctx := newTestScene(t)
	st := input.NewState(800, 800)

	clickAt(t, s, st, 450, 650)
	assert.Equal(t, square("e2"), s.Selected())
	assert.Len(t, s.highlights, 2)
	assert.True(t, s.targets[square("e3")])
	assert.True(t, s.targets[square("e4")])
	assert.Equal(t, outlineState{outlineOnSelected, square("e2")}, s.outlineState)
	assert.True(t, s.outline.Visible())
	assert.Equal(t, TextureCursorSelect, s.outline.Desc().Texture)
	assert.Equal(t, 37, ctx.Pool.LiveCount())

	pawn := s.pieces[square("e2")]
	clickAt(t, s, st, 450, 450)
	assert.Equal(t, chess.NoSquare, s.Selected())
	assert.Empty(t, s.highlights)

	history := s.Game().History()
	require.Len(t, history, 2, "the AI answers in the same update")
	assert.Equal(t, chess.Move{From: square("e2"), To: square("e4")}, history[0])
	assert.Equal(t, chess.White, s.Game().Turn())
	assert.Equal(t, pawn, s.pieces[square("e4")])
	assertPiecesInPlace(t, s)

	// the cursor rests on the moved pawn, which white can pick again
	assert.Equal(t, outlineState{outlineAtCursor, square("e4")}, s.outlineState)
	assert.Equal(t, TextureCursorHighlight, s.outline.Desc().Texture)
}

func TestClickElsewhereReselects(t *testing.T) {
	s, _ := newTestScene(t)
	st := input.NewState(800, 800)

	clickOn(t, s, st, "e2")
	require.Equal(t, square("e2"), s.Selected())

	clickOn(t, s, st, "g1")
	assert.Equal(t, square("g1"), s.Selected())
	assert.Len(t, s.highlights, 2)
	assert.Empty(t, s.Game().History())

	clickOn(t, s, st, "e7")
	assert.Equal(t, chess.NoSquare, s.Selected())
	assert.Empty(t, s.highlights)
	assert.False(t, s.outline.Visible())
}

func TestCaptureRemovesPiece(t *testing.T) {
	b := chess.NewEmptyBoard()
	place(t, b, "a1", chess.Rook, chess.White)
	place(t, b, "h1", chess.King, chess.White)
	place(t, b, "a5", chess.Pawn, chess.Black)
	place(t, b, "e8", chess.King, chess.Black)
	s, ctx := newTestScene(t, WithStartPosition(b, chess.White))
	st := input.NewState(800, 800)

	// board, four pieces and the cursor
	assert.Equal(t, 6, ctx.Pool.LiveCount())

	clickOn(t, s, st, "a1")
	assert.True(t, s.targets[square("a5")])
	captures := 0
	for _, key := range s.highlights {
		if s.Get(key).Desc().Texture == TextureCaptureHighlight {
			captures++
		}
	}
	assert.Equal(t, 1, captures)

	clickOn(t, s, st, "a5")
	history := s.Game().History()
	require.NotEmpty(t, history)
	assert.True(t, history[0].Capture)
	assert.Equal(t, chess.Rook, s.Game().Board().At(square("a5")).Kind)
	assert.Equal(t, 1, s.Game().Board().Count(chess.Black))
	assertPiecesInPlace(t, s)

	// the start position is not modified by play
	assert.Equal(t, chess.Pawn, b.At(square("a5")).Kind)
}

func TestGameOverAndReset(t *testing.T) {
	b := chess.NewEmptyBoard()
	place(t, b, "a1", chess.Rook, chess.White)
	place(t, b, "h1", chess.King, chess.White)
	place(t, b, "a8", chess.King, chess.Black)
	s, ctx := newTestScene(t, WithStartPosition(b, chess.White))
	st := input.NewState(800, 800)

	clickOn(t, s, st, "a1")
	clickOn(t, s, st, "a8")
	require.True(t, s.Game().Over())
	assert.Equal(t, chess.KingCaptured, s.Game().Outcome())
	assert.Equal(t, chess.White, s.Game().Winner())
	assert.Len(t, s.Game().History(), 1)
	assert.False(t, s.outline.Visible())

	// clicks after the end change nothing
	clickOn(t, s, st, "h1")
	assert.Equal(t, chess.NoSquare, s.Selected())

	st.Apply(input.Event{Type: input.EventKeyDown, Key: common.KeyR})
	require.NoError(t, s.Update(0.01, st))
	st.EndUpdate()

	assert.False(t, s.Game().Over())
	assert.Empty(t, s.Game().History())
	assert.Equal(t, chess.King, s.Game().Board().At(square("a8")).Kind)
	assert.Equal(t, 5, ctx.Pool.LiveCount())
	assertPiecesInPlace(t, s)
}

func TestRecreateAfterClear(t *testing.T) {
	s, ctx := newTestScene(t)
	st := input.NewState(800, 800)
	clickAt(t, s, st, 450, 650)
	require.Equal(t, 37, ctx.Pool.LiveCount())

	require.NoError(t, ctx.Pool.Clear())
	assert.Equal(t, 0, ctx.Pool.LiveCount())
	require.NoError(t, s.Recreate())
	assert.Equal(t, 37, ctx.Pool.LiveCount())
	assertPiecesInPlace(t, s)
}

func TestAutoplay(t *testing.T) {
	s, ctx := newTestScene(t, WithAutoplay(true), WithAIDelay(0.05))
	st := input.NewState(800, 800)

	require.NoError(t, s.Update(0.01, st))
	assert.Empty(t, s.Game().History(), "the AI waits for its delay")

	for i := 0; i < 300 && !s.Game().Over(); i++ {
		clickAt(t, s, st, 450, 650)
		require.NoError(t, ctx.Pool.Tick(i%2))
	}
	assert.True(t, s.Game().Over() || len(s.Game().History()) >= 30, "plies played: %d", len(s.Game().History()))
	assert.Equal(t, chess.NoSquare, s.Selected(), "clicks are ignored in autoplay")
	assertPiecesInPlace(t, s)
}

func TestHumanPlaysBlack(t *testing.T) {
	s, _ := newTestScene(t, WithHumanColor(chess.Black))
	st := input.NewState(800, 800)

	require.NoError(t, s.Update(0.01, st))
	require.Len(t, s.Game().History(), 1)
	assert.Equal(t, chess.Black, s.Game().Turn())

	clickOn(t, s, st, "e7")
	assert.Equal(t, square("e7"), s.Selected())
}
