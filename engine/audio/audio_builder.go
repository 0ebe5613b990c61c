package audio

import (
	"time"

	"github.com/gopxl/beep"
	"go.uber.org/zap"
)

// EngineBuilderOption is a functional option for configuring an engine.
// Use the With* functions to create options.
type EngineBuilderOption func(e *engine)

// WithEnabled sets whether the engine opens an output device. A disabled engine still decodes
// sounds so missing or broken files are reported.
//
// Parameters:
//   - enabled: whether to open the speaker
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithEnabled(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.enabled = enabled
	}
}

// WithSampleRate sets the output sample rate. Sounds at other rates are resampled on load.
//
// Parameters:
//   - rate: the sample rate in Hz
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSampleRate(rate int) EngineBuilderOption {
	return func(e *engine) {
		if rate > 0 {
			e.sampleRate = beep.SampleRate(rate)
		}
	}
}

// WithBufferLength sets the speaker buffer length.
//
// Parameters:
//   - d: the buffer duration
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBufferLength(d time.Duration) EngineBuilderOption {
	return func(e *engine) {
		if d > 0 {
			e.bufferLength = d
		}
	}
}

// WithMusicVolume sets the initial music volume in [0, 100].
func WithMusicVolume(volume float64) EngineBuilderOption {
	return func(e *engine) {
		e.musicVolume = clampVolume(volume)
	}
}

// WithSoundVolume sets the initial sound effect volume in [0, 100].
func WithSoundVolume(volume float64) EngineBuilderOption {
	return func(e *engine) {
		e.soundVolume = clampVolume(volume)
	}
}

// WithLogger sets the engine's logger.
func WithLogger(logger *zap.Logger) EngineBuilderOption {
	return func(e *engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}
