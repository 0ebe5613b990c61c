package engine

import (
	"github.com/Carmen-Shannon/oxy-chess/config"
	"github.com/Carmen-Shannon/oxy-chess/engine/audio"
	"github.com/Carmen-Shannon/oxy-chess/engine/renderer"
	"github.com/Carmen-Shannon/oxy-chess/engine/scene"
	"github.com/Carmen-Shannon/oxy-chess/engine/sprite"
	"github.com/Carmen-Shannon/oxy-chess/engine/window"
	"go.uber.org/zap"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithUpdateRate sets the fixed update rate. Values <= 0 are treated as the default (100Hz).
//
// Parameters:
//   - hz: updates per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithUpdateRate(hz float64) EngineBuilderOption {
	return func(e *engine) {
		e.SetUpdateRate(hz)
	}
}

// WithMaxUpdatesPerFrame caps the fixed updates run before each frame. Values below 1 are ignored.
//
// Parameters:
//   - n: the update cap
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithMaxUpdatesPerFrame(n int) EngineBuilderOption {
	return func(e *engine) {
		if n >= 1 {
			e.maxUpdates = n
		}
	}
}

// WithWindow sets the window whose events feed the engine. Without one the engine runs headless.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets the renderer driving the frames.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithPool sets the sprite pool, which must be built over the engine's renderer.
//
// Parameters:
//   - p: the sprite pool
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPool(p sprite.Pool) EngineBuilderOption {
	return func(e *engine) {
		e.pool = p
	}
}

// WithAudio sets the audio engine handed to scenes. Defaults to a disabled engine.
//
// Parameters:
//   - a: the audio engine
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithAudio(a audio.Engine) EngineBuilderOption {
	return func(e *engine) {
		e.audio = a
	}
}

// WithConfig sets the configuration handed to scenes and used for shader paths.
//
// Parameters:
//   - cfg: the configuration
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithConfig(cfg *config.Config) EngineBuilderOption {
	return func(e *engine) {
		e.cfg = cfg
	}
}

// WithLogger sets the logger used by the engine and handed to scenes.
//
// Parameters:
//   - logger: the zap logger
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) EngineBuilderOption {
	return func(e *engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithScene registers a scene at the given z-index key during engine construction.
//
// Parameters:
//   - key: the z-index determining update and draw order (lower first)
//   - s: the Scene to register
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(key int, s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scenes[key] = s
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.SetRenderFrameLimit(fps)
	}
}

// WithFrameLimit stops the engine after a number of rendered frames.
//
// Parameters:
//   - frames: the frame count (0 = run until closed)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameLimit(frames uint64) EngineBuilderOption {
	return func(e *engine) {
		e.frameLimit = frames
	}
}

// WithSpritePipelineKey sets the pipeline key sprites are registered and drawn with. Defaults to "sprite".
//
// Parameters:
//   - key: the pipeline key
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSpritePipelineKey(key string) EngineBuilderOption {
	return func(e *engine) {
		if key != "" {
			e.spritePipeline = key
		}
	}
}
