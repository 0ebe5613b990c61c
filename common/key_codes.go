package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyA     = 65  // A key (ASCII)
	KeyD     = 68  // D key (ASCII)
	KeyK     = 75  // K key (ASCII)
	KeyP     = 80  // P key (ASCII)
	KeyR     = 82  // R key (ASCII)
	KeyS     = 83  // S key (ASCII)
	KeySpace = 32  // Spacebar (ASCII)
	KeyEsc   = 256 // Escape key (GLFW)

	KeyRight = 262 // Right arrow (GLFW)
	KeyLeft  = 263 // Left arrow (GLFW)
	KeyDown  = 264 // Down arrow (GLFW)
	KeyUp    = 265 // Up arrow (GLFW)
)

// Mouse buttons share the key state table. GLFW numbers mouse buttons from 0, so they are
// offset past the last GLFW key code (348) to avoid colliding with printable keys.
const (
	MouseButtonOffset = 400

	MouseLeft   = MouseButtonOffset + 0 // GLFW_MOUSE_BUTTON_LEFT
	MouseRight  = MouseButtonOffset + 1 // GLFW_MOUSE_BUTTON_RIGHT
	MouseMiddle = MouseButtonOffset + 2 // GLFW_MOUSE_BUTTON_MIDDLE
)

// MappedKeys lists the keys whose pressed/held state is tracked every update.
var MappedKeys = []uint32{
	KeyEsc, KeySpace, KeyUp, KeyDown, KeyLeft, KeyRight,
	KeyK, KeyP, KeyA, KeyD, KeyS, KeyR,
	MouseLeft,
}
