package renderer

import (
	"go.uber.org/zap"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.presentMode = mode
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithFramesInFlight sets how many frames may be outstanding on the GPU at once. Values below 1 are ignored.
//
// Parameters:
//   - n: the frames-in-flight count
//
// Returns:
//   - RendererBuilderOption: a function that sets the frames-in-flight count
func WithFramesInFlight(n int) RendererBuilderOption {
	return func(r *renderer) {
		if n >= 1 {
			r.framesInFlight = n
		}
	}
}

// WithMaxTextures caps the number of textures UploadTextures accepts.
//
// Parameters:
//   - n: the texture limit
//
// Returns:
//   - RendererBuilderOption: a function that sets the texture limit
func WithMaxTextures(n int) RendererBuilderOption {
	return func(r *renderer) {
		if n >= 1 {
			r.maxTextures = n
		}
	}
}

// WithSize sets the surface size used when no window is attached (headless backend).
//
// Parameters:
//   - width: surface width in pixels
//   - height: surface height in pixels
//
// Returns:
//   - RendererBuilderOption: a function that sets the surface size
func WithSize(width, height int) RendererBuilderOption {
	return func(r *renderer) {
		r.width = width
		r.height = height
	}
}

// WithLogger sets the logger used by the renderer and its backend.
//
// Parameters:
//   - logger: the zap logger
//
// Returns:
//   - RendererBuilderOption: a function that sets the logger
func WithLogger(logger *zap.Logger) RendererBuilderOption {
	return func(r *renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}
