package chess_scene

import "github.com/Carmen-Shannon/oxy-chess/game/chess"

// ChessSceneBuilderOption is a functional option for configuring a ChessScene.
type ChessSceneBuilderOption func(*chessScene)

// WithSeed seeds the AI's random source. Scenes with the same seed and input play the same game.
//
// Parameters:
//   - seed: the random seed
//
// Returns:
//   - ChessSceneBuilderOption: option function to apply
func WithSeed(seed int64) ChessSceneBuilderOption {
	return func(s *chessScene) {
		s.seed = seed
	}
}

// WithHumanColor sets the side the mouse plays. The AI plays the other side.
//
// Parameters:
//   - color: the human side
//
// Returns:
//   - ChessSceneBuilderOption: option function to apply
func WithHumanColor(color chess.Color) ChessSceneBuilderOption {
	return func(s *chessScene) {
		s.human = color
	}
}

// WithAutoplay lets the AI play both sides.
//
// Parameters:
//   - autoplay: true to disable mouse play
//
// Returns:
//   - ChessSceneBuilderOption: option function to apply
func WithAutoplay(autoplay bool) ChessSceneBuilderOption {
	return func(s *chessScene) {
		s.autoplay = autoplay
	}
}

// WithAIDelay sets how long the AI waits before moving, in seconds.
func WithAIDelay(seconds float32) ChessSceneBuilderOption {
	return func(s *chessScene) {
		s.aiDelay = max(seconds, 0)
	}
}

// WithCursorSize sets the cursor size in pixels of an 800 pixel board.
// Defaults to the configured cursor size.
func WithCursorSize(size float32) ChessSceneBuilderOption {
	return func(s *chessScene) {
		s.cursorSize = size
	}
}

// WithMusic sets the looping music track. An empty name plays no music.
func WithMusic(name string) ChessSceneBuilderOption {
	return func(s *chessScene) {
		s.music = name
	}
}

// WithStartPosition starts every game from a copy of b with turn to move.
//
// Parameters:
//   - b: the starting board
//   - turn: the side to move first
//
// Returns:
//   - ChessSceneBuilderOption: option function to apply
func WithStartPosition(b *chess.Board, turn chess.Color) ChessSceneBuilderOption {
	return func(s *chessScene) {
		s.start = b.Clone()
		s.startTurn = turn
	}
}
