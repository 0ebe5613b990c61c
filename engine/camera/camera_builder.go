package camera

import (
	"github.com/Carmen-Shannon/oxy-chess/engine/renderer/bind_group_provider"
)

type CameraBuilderOption func(*cameraImpl)

// WithPosition sets the camera's initial world-space position.
//
// Parameters:
//   - x, y, z: position components
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's position
func WithPosition(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = [3]float32{x, y, z}
	}
}

// WithFocalLength sets the camera's initial focal length.
//
// Parameters:
//   - f: the focal length
//
// Returns:
//   - CameraBuilderOption: a function that sets the focal length
func WithFocalLength(f float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.focalLength = f
	}
}

// WithFocalLimits sets the range the focal length is clamped to.
//
// Parameters:
//   - lo: the minimum focal length
//   - hi: the maximum focal length
//
// Returns:
//   - CameraBuilderOption: a function that sets the limits
func WithFocalLimits(lo, hi float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if lo > 0 && hi >= lo {
			c.minFocalLength, c.maxFocalLength = lo, hi
		}
	}
}

// WithBindGroupProvider sets the camera's bind group provider.
//
// Parameters:
//   - provider: the bind group provider to set
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's bind group provider
func WithBindGroupProvider(provider bind_group_provider.BindGroupProvider) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.bindGroupProvider = provider
	}
}
