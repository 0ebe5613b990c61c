package fractal_scene

import "github.com/Carmen-Shannon/oxy-chess/engine/camera"

// FractalSceneBuilderOption is a functional option for configuring a FractalScene.
type FractalSceneBuilderOption func(*fractalScene)

// WithCamera replaces the default camera.
//
// Parameters:
//   - cam: the camera to raymarch from
//
// Returns:
//   - FractalSceneBuilderOption: option function to apply
func WithCamera(cam camera.Camera) FractalSceneBuilderOption {
	return func(s *fractalScene) {
		s.cam = cam
	}
}

// WithMoveSpeed sets the camera speed in world units per second, overriding the configuration.
func WithMoveSpeed(speed float32) FractalSceneBuilderOption {
	return func(s *fractalScene) {
		s.controller.SetMoveSpeed(speed)
		s.speedSet = true
	}
}

// WithSteps sets the maximum raymarch steps per pixel, overriding the configuration.
func WithSteps(steps int) FractalSceneBuilderOption {
	return func(s *fractalScene) {
		s.steps = max(steps, 1)
		s.stepsSet = true
	}
}

// WithIterations sets the starting iteration count, overriding the configuration.
// Clamped to [1, 64].
func WithIterations(iterations int) FractalSceneBuilderOption {
	return func(s *fractalScene) {
		s.iterations = iterations
		s.iterationsSet = true
	}
}

// WithFractal selects the starting fractal.
func WithFractal(f Fractal) FractalSceneBuilderOption {
	return func(s *fractalScene) {
		s.fractal = f % fractalCount
	}
}

// WithPipelineKey sets the key the raymarch pipeline registers under.
func WithPipelineKey(key string) FractalSceneBuilderOption {
	return func(s *fractalScene) {
		s.pipelineKey = key
	}
}

// WithFragmentShaderPath loads the raymarch fragment stage from a file instead of the embedded source.
func WithFragmentShaderPath(path string) FractalSceneBuilderOption {
	return func(s *fractalScene) {
		s.fragmentPath = path
	}
}
