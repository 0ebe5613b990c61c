package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-chess/common"
	"github.com/Carmen-Shannon/oxy-chess/engine/input"
)

// CameraController moves a Camera from keyboard and scroll input.
// Arrow keys pan along x and y, A and D move along z, and the scroll wheel changes the focal length.
type CameraController interface {
	// Update applies one fixed update of input to cam.
	//
	// Parameters:
	//   - cam: the camera to move
	//   - state: the input state of this update
	//   - dt: the update step in seconds
	Update(cam Camera, state *input.State, dt float32)

	// MoveSpeed returns the pan speed in world units per second.
	//
	// Returns:
	//   - float32: the pan speed
	MoveSpeed() float32

	// SetMoveSpeed sets the pan speed in world units per second.
	//
	// Parameters:
	//   - speed: the pan speed
	SetMoveSpeed(speed float32)

	// ZoomSpeed returns the focal length change per scroll notch.
	//
	// Returns:
	//   - float32: the zoom speed
	ZoomSpeed() float32
}

type cameraControllerImpl struct {
	mu *sync.Mutex

	moveSpeed float32
	zoomSpeed float32
}

// Compile-time interface compliance check
var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a controller moving one world unit per second and changing the
// focal length by 0.1 per scroll notch.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:        &sync.Mutex{},
		moveSpeed: 1,
		zoomSpeed: 0.1,
	}
	for _, option := range options {
		option(cc)
	}
	return cc
}

func (cc *cameraControllerImpl) Update(cam Camera, state *input.State, dt float32) {
	cc.mu.Lock()
	step := cc.moveSpeed * dt
	zoom := cc.zoomSpeed
	cc.mu.Unlock()

	var dx, dy, dz float32
	if state.Down(common.KeyRight) {
		dx += step
	}
	if state.Down(common.KeyLeft) {
		dx -= step
	}
	if state.Down(common.KeyUp) {
		dy += step
	}
	if state.Down(common.KeyDown) {
		dy -= step
	}
	if state.Down(common.KeyD) {
		dz += step
	}
	if state.Down(common.KeyA) {
		dz -= step
	}
	if dx != 0 || dy != 0 || dz != 0 {
		cam.Translate(dx, dy, dz)
	}
	if scroll := state.Scroll(); scroll != 0 {
		cam.Zoom(scroll * zoom)
	}
}

func (cc *cameraControllerImpl) MoveSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.moveSpeed
}

func (cc *cameraControllerImpl) SetMoveSpeed(speed float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.moveSpeed = speed
}

func (cc *cameraControllerImpl) ZoomSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.zoomSpeed
}
