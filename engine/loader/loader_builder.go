package loader

import "go.uber.org/zap"

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithWorkers sets the number of goroutines decoding textures in parallel.
//
// Parameters:
//   - n: the worker count (minimum 1)
//
// Returns:
//   - LoaderBuilderOption: a function that applies the option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		l.workers = max(n, 1)
	}
}

// WithMaxTextureSize sets the largest texture edge. Larger images are downscaled to fit while
// keeping their aspect ratio. Zero disables downscaling.
//
// Parameters:
//   - size: the maximum edge length in pixels
//
// Returns:
//   - LoaderBuilderOption: a function that applies the option to a loader
func WithMaxTextureSize(size int) LoaderBuilderOption {
	return func(l *loader) {
		l.maxTextureSize = max(size, 0)
	}
}

// WithLogger sets the loader's logger. Missing assets are reported at warn level.
func WithLogger(logger *zap.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// withBackend replaces the image decoding backend.
func withBackend(b loaderBackend) LoaderBuilderOption {
	return func(l *loader) {
		l.backend = b
	}
}
