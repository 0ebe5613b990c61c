package chess_scene

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/Carmen-Shannon/oxy-chess/common"
	"github.com/Carmen-Shannon/oxy-chess/engine/game_object"
	"github.com/Carmen-Shannon/oxy-chess/engine/input"
	"github.com/Carmen-Shannon/oxy-chess/engine/scene"
	"github.com/Carmen-Shannon/oxy-chess/engine/sprite"
	"github.com/Carmen-Shannon/oxy-chess/game/chess"
	"go.uber.org/zap"
)

// Sound names the scene plays.
const (
	SoundMove    = "thud"
	SoundCapture = "clang"
	MusicTheme   = "violin"
)

// ChessScene is a game of chess between a human and the random AI, drawn as sprites.
//
// The human clicks a movable piece to select it, which highlights its moves and captures, then clicks a
// highlighted tile to play. Clicking anywhere else re-selects. The AI answers in the same update.
// R starts a new game.
type ChessScene interface {
	scene.Scene

	// Game returns the game being played.
	//
	// Returns:
	//   - *chess.Game: the current game
	Game() *chess.Game

	// Selected returns the selected square, or chess.NoSquare.
	//
	// Returns:
	//   - chess.Square: the selection
	Selected() chess.Square

	// Reset discards the current game and sprites and starts a new game.
	//
	// Returns:
	//   - error: any allocation error
	Reset() error
}

type chessScene struct {
	*scene.Base

	seed       int64
	rng        *rand.Rand
	human      chess.Color
	autoplay   bool
	aiDelay    float32
	aiWait     float32
	cursorSize float32
	music      string
	start      *chess.Board
	startTurn  chess.Color

	game *chess.Game

	board      game_object.GameObject
	cursor     game_object.GameObject
	outline    game_object.GameObject
	pieces     map[chess.Square]uint64
	highlights []uint64

	selected     chess.Square
	targets      map[chess.Square]bool
	outlineState outlineState
	reported     bool
}

var _ ChessScene = &chessScene{}

// NewChessScene creates a chess scene with white played by the human.
//
// Parameters:
//   - options: functional options to configure the scene
//
// Returns:
//   - ChessScene: the new scene, built on Init
func NewChessScene(options ...ChessSceneBuilderOption) ChessScene {
	s := &chessScene{
		Base:      scene.NewBase(scene.WithName("chess")),
		seed:      rand.Int63(),
		human:     chess.White,
		music:     MusicTheme,
		startTurn: chess.White,
		selected:  chess.NoSquare,
	}
	for _, opt := range options {
		opt(s)
	}
	s.rng = rand.New(rand.NewSource(s.seed))
	return s
}

func (s *chessScene) Game() *chess.Game {
	return s.game
}

func (s *chessScene) Selected() chess.Square {
	return s.selected
}

func (s *chessScene) Init(ctx scene.Context) error {
	if err := s.Base.Init(ctx); err != nil {
		return err
	}
	if s.cursorSize <= 0 {
		s.cursorSize = 20
		if ctx.Config != nil && ctx.Config.Cursor.Size > 0 {
			s.cursorSize = ctx.Config.Cursor.Size
		}
	}
	if n := ctx.Pool.Capacity(); n < 64 {
		s.Logger().Warn("sprite pool may be too small for a chess game", zap.Int("capacity", n))
	}
	if err := s.build(); err != nil {
		return err
	}
	s.startMusic()
	s.Logger().Info("chess scene ready",
		zap.Int64("seed", s.seed),
		zap.Bool("autoplay", s.autoplay),
		zap.Stringer("human", s.human),
	)
	return nil
}

// build creates the game and every sprite of a fresh board.
func (s *chessScene) build() error {
	if s.start != nil {
		s.game = chess.NewGameFrom(s.start.Clone(), s.startTurn)
	} else {
		s.game = chess.NewGame()
	}
	s.pieces = make(map[chess.Square]uint64)
	s.highlights = s.highlights[:0]
	s.selected = chess.NoSquare
	s.targets = nil
	s.outlineState = noOutline
	s.aiWait = 0
	s.reported = false

	s.board = game_object.NewGameObject(
		game_object.WithLayer(sprite.LayerBackground),
		game_object.WithTexture(TextureBoard),
	)
	if _, err := s.Add(s.board); err != nil {
		return err
	}

	var placeErr error
	s.game.Board().Squares(func(sq chess.Square, p chess.Piece) {
		if placeErr != nil || p.Empty() {
			return
		}
		placeErr = s.addPiece(sq, p)
	})
	if placeErr != nil {
		return placeErr
	}

	size := s.cursorSize / 800
	s.cursor = game_object.NewGameObject(
		game_object.WithLayer(sprite.LayerOverlay),
		game_object.WithSize(size, size),
		game_object.WithPosition(size, -size),
		game_object.WithTexture(TextureCursor),
	)
	if _, err := s.Add(s.cursor); err != nil {
		return err
	}

	s.outline = game_object.NewGameObject(
		game_object.WithEnabled(false),
		game_object.WithLayer(sprite.LayerAir),
		game_object.WithSize(tileExtent, tileExtent),
		game_object.WithTexture(TextureCursorHighlight),
	)
	_, err := s.Add(s.outline)
	return err
}

func (s *chessScene) addPiece(sq chess.Square, p chess.Piece) error {
	x, y := SquareCenter(sq)
	obj := game_object.NewGameObject(
		game_object.WithID(uint64(sq)+1),
		game_object.WithLayer(sprite.LayerGround),
		game_object.WithSize(tileExtent, tileExtent),
		game_object.WithPosition(x, y),
		game_object.WithTexture(PieceTexture(p)),
	)
	key, err := s.Add(obj)
	if err != nil {
		return fmt.Errorf("place %s on %s: %w", p, sq, err)
	}
	s.pieces[sq] = key
	return nil
}

func (s *chessScene) Reset() error {
	s.Base.Release()
	if err := s.build(); err != nil {
		return err
	}
	s.startMusic()
	s.Logger().Info("new game")
	return nil
}

func (s *chessScene) startMusic() {
	a := s.Context().Audio
	if a == nil || s.music == "" {
		return
	}
	if err := a.StartMusic(s.music, true); err != nil {
		s.Logger().Warn("music unavailable", zap.String("music", s.music), zap.Error(err))
	}
}

func (s *chessScene) playSound(name string) {
	a := s.Context().Audio
	if a == nil {
		return
	}
	if err := a.PlaySound(name); err != nil {
		s.Logger().Debug("sound unavailable", zap.String("sound", name), zap.Error(err))
	}
}

func (s *chessScene) Update(dt float32, state *input.State) error {
	if !s.Initialized() {
		return scene.ErrNotInitialized
	}
	if state == nil {
		state = input.NewState(0, 0)
	}
	if state.Pressed(common.KeyR) {
		return s.Reset()
	}

	cx, cy := state.Cursor()
	if err := s.moveCursor(cx, cy); err != nil {
		return err
	}
	tile := SquareAtPoint(cx, cy)

	if !s.game.Over() {
		if state.Pressed(common.MouseLeft) && s.humanToMove() {
			if err := s.click(tile); err != nil {
				return err
			}
		}
		if !s.game.Over() && !s.humanToMove() {
			if err := s.stepAI(dt); err != nil {
				return err
			}
		}
	}
	if s.game.Over() {
		s.reportGameOver()
	}
	return s.setOutline(nextOutline(s.game.Board(), s.game.Turn(), s.humanToMove() && !s.game.Over(), tile, s.selected))
}

func (s *chessScene) humanToMove() bool {
	return !s.autoplay && s.game.Turn() == s.human
}

func (s *chessScene) moveCursor(x, y float32) error {
	size := s.cursorSize / 800
	if px, py := s.cursor.Position(); px == x+size && py == y-size {
		return nil
	}
	return s.cursor.MoveTo(x+size, y-size)
}

// click selects the piece under the cursor or, with a piece selected, plays to a highlighted tile.
func (s *chessScene) click(tile chess.Square) error {
	if s.selected.Valid() && s.targets[tile] {
		from := s.selected
		if err := s.selectPiece(chess.NoSquare); err != nil {
			return err
		}
		m, err := s.game.Play(from, tile)
		if err != nil {
			return fmt.Errorf("play highlighted move: %w", err)
		}
		return s.applyMove(m)
	}

	p := s.game.Board().At(tile)
	if tile.Valid() && !p.Empty() && p.Color == s.game.Turn() {
		return s.selectPiece(tile)
	}
	return s.selectPiece(chess.NoSquare)
}

// selectPiece replaces the selection and its move and capture highlights.
func (s *chessScene) selectPiece(sq chess.Square) error {
	for _, key := range s.highlights {
		if err := s.Remove(key); err != nil {
			return err
		}
	}
	s.highlights = s.highlights[:0]
	s.targets = nil
	s.selected = sq
	if !sq.Valid() {
		return nil
	}

	b := s.game.Board()
	s.targets = make(map[chess.Square]bool)
	add := func(tiles []chess.Square, texture sprite.TextureID) error {
		for _, t := range tiles {
			x, y := SquareCenter(t)
			key, err := s.Add(game_object.NewGameObject(
				game_object.WithLayer(sprite.LayerAir),
				game_object.WithSize(tileExtent, tileExtent),
				game_object.WithPosition(x, y),
				game_object.WithTexture(texture),
			))
			if err != nil {
				return err
			}
			s.highlights = append(s.highlights, key)
			s.targets[t] = true
		}
		return nil
	}
	if err := add(b.MoveTiles(sq), TextureMoveHighlight); err != nil {
		return err
	}
	if err := add(b.CaptureTiles(sq), TextureCaptureHighlight); err != nil {
		return err
	}
	s.Logger().Debug("selected piece",
		zap.Stringer("square", sq),
		zap.Stringer("piece", b.At(sq)),
		zap.Int("targets", len(s.targets)),
	)
	return nil
}

// stepAI plays the AI's move once aiDelay seconds have passed on its turn.
func (s *chessScene) stepAI(dt float32) error {
	s.aiWait += dt
	if s.aiWait < s.aiDelay {
		return nil
	}
	s.aiWait = 0

	m, err := s.game.PlayAI(s.rng)
	if errors.Is(err, chess.ErrGameOver) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("ai move: %w", err)
	}
	return s.applyMove(m)
}

// applyMove mirrors a played move on the piece sprites.
func (s *chessScene) applyMove(m chess.Move) error {
	if m.Capture {
		if key, ok := s.pieces[m.To]; ok {
			if err := s.Remove(key); err != nil {
				return err
			}
		}
		s.playSound(SoundCapture)
	} else {
		s.playSound(SoundMove)
	}

	key, ok := s.pieces[m.From]
	if !ok {
		return fmt.Errorf("no sprite for the piece on %s", m.From)
	}
	delete(s.pieces, m.From)
	s.pieces[m.To] = key
	x, y := SquareCenter(m.To)
	if err := s.Get(key).MoveTo(x, y); err != nil {
		return err
	}

	s.Logger().Debug("move",
		zap.Stringer("move", m),
		zap.Stringer("next", s.game.Turn()),
		zap.Int("ply", len(s.game.History())),
	)
	return nil
}

func (s *chessScene) reportGameOver() {
	if s.reported {
		return
	}
	s.reported = true
	if s.selected.Valid() {
		_ = s.selectPiece(chess.NoSquare)
	}
	s.Logger().Info("game over",
		zap.Stringer("outcome", s.game.Outcome()),
		zap.Stringer("winner", s.game.Winner()),
		zap.Int("ply", len(s.game.History())),
	)
}

// setOutline reconciles the outline sprite with a new state. Nothing is allocated while the state holds.
func (s *chessScene) setOutline(next outlineState) error {
	if next == s.outlineState {
		return nil
	}
	s.outlineState = next
	if next.kind == outlineNone {
		return s.outline.SetEnabled(false)
	}
	x, y := SquareCenter(next.tile)
	if err := s.outline.MoveTo(x, y); err != nil {
		return err
	}
	if err := s.outline.SetTexture(next.texture()); err != nil {
		return err
	}
	return s.outline.SetEnabled(true)
}

func (s *chessScene) Release() {
	if a := s.Context().Audio; a != nil && s.music != "" {
		a.StopMusic(s.music)
	}
	s.Base.Release()
}
