package camera

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-chess/engine/renderer/bind_group_provider"
)

// cameraCount is an atomic counter used to generate unique bind group provider names for each camera instance.
var cameraCount atomic.Uint64

type cameraImpl struct {
	mu *sync.Mutex

	position    [3]float32
	focalLength float32

	minFocalLength float32
	maxFocalLength float32

	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Camera is a pinhole camera for the fullscreen raymarch: a position and the distance from the
// eye to the image plane. Rays leave the eye through the image plane spanning [-1, 1] on the
// short axis, so a longer focal length narrows the field of view.
// Thread-safe for concurrent access.
type Camera interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - x, y, z: world-space camera position
	Position() (x, y, z float32)

	// SetPosition sets the camera's world-space position.
	//
	// Parameters:
	//   - x, y, z: world-space coordinates
	SetPosition(x, y, z float32)

	// Translate moves the camera by a world-space offset.
	//
	// Parameters:
	//   - dx, dy, dz: the offset
	Translate(dx, dy, dz float32)

	// FocalLength returns the distance from the eye to the image plane.
	//
	// Returns:
	//   - float32: the focal length
	FocalLength() float32

	// SetFocalLength sets the focal length, clamped to the camera's limits.
	//
	// Parameters:
	//   - f: the focal length
	SetFocalLength(f float32)

	// Zoom adds delta to the focal length, clamped to the camera's limits.
	// Positive delta zooms in.
	//
	// Parameters:
	//   - delta: the focal length change
	Zoom(delta float32)

	// Uniform builds the GPU uniform for one frame.
	//
	// Parameters:
	//   - width, height: the surface size in pixels
	//   - time: seconds since the scene started
	//   - steps: the maximum number of raymarch steps
	//   - iterations: the fractal iteration count
	//   - sceneID: the fractal to render
	//
	// Returns:
	//   - GPURaymarchUniform: the uniform ready to marshal
	Uniform(width, height int, time, steps, iterations float32, sceneID uint32) GPURaymarchUniform

	// BindGroupProvider returns the camera's bind group provider for GPU resources.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the bind group provider
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetBindGroupProvider sets the camera's bind group provider.
	//
	// Parameters:
	//   - provider: the bind group provider to set
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera at the origin with a focal length of 1.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:             &sync.Mutex{},
		focalLength:    1,
		minFocalLength: 0.1,
		maxFocalLength: 10,
		bindGroupProvider: bind_group_provider.NewBindGroupProvider(
			"camera_" + strconv.FormatUint(cameraCount.Load(), 10),
		),
	}
	for _, option := range options {
		option(c)
	}
	c.focalLength = c.clampFocal(c.focalLength)
	cameraCount.Add(1)
	return c
}

func (c *cameraImpl) Position() (x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position[0], c.position[1], c.position[2]
}

func (c *cameraImpl) SetPosition(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = [3]float32{x, y, z}
}

func (c *cameraImpl) Translate(dx, dy, dz float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position[0] += dx
	c.position[1] += dy
	c.position[2] += dz
}

func (c *cameraImpl) FocalLength() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focalLength
}

func (c *cameraImpl) SetFocalLength(f float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.focalLength = c.clampFocal(f)
}

func (c *cameraImpl) Zoom(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.focalLength = c.clampFocal(c.focalLength + delta)
}

func (c *cameraImpl) Uniform(width, height int, time, steps, iterations float32, sceneID uint32) GPURaymarchUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return GPURaymarchUniform{
		Position:    c.position,
		FocalLength: c.focalLength,
		Resolution:  [2]float32{float32(width), float32(height)},
		Time:        time,
		Steps:       steps,
		Iterations:  iterations,
		SceneID:     sceneID,
	}
}

func (c *cameraImpl) BindGroupProvider() bind_group_provider.BindGroupProvider {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bindGroupProvider
}

func (c *cameraImpl) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindGroupProvider = provider
}

func (c *cameraImpl) clampFocal(f float32) float32 {
	return min(max(f, c.minFocalLength), c.maxFocalLength)
}
