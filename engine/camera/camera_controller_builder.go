package camera

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithMoveSpeed sets the pan speed in world units per second.
//
// Parameters:
//   - speed: the pan speed
//
// Returns:
//   - CameraControllerOption: functional option to set the move speed
func WithMoveSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.moveSpeed = speed
	}
}

// WithZoomSpeed sets the focal length change per scroll notch.
//
// Parameters:
//   - speed: the zoom speed
//
// Returns:
//   - CameraControllerOption: functional option to set the zoom speed
func WithZoomSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoomSpeed = speed
	}
}
