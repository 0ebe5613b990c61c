package window

// CursorMode controls the visibility of the system cursor over the window.
type CursorMode int

const (
	// CursorNormal shows the system cursor.
	CursorNormal CursorMode = iota

	// CursorHidden hides the system cursor while it is over the window. Scenes that draw
	// their own cursor sprite use this.
	CursorHidden
)

// WindowBuilderOption is a functional option for configuring an engineWindow.
// Use the With* functions to create options.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the window title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithWidth sets the initial window width.
//
// Parameters:
//   - width: initial width in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithWidth(width int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.width = width
	}
}

// WithHeight sets the initial window height.
//
// Parameters:
//   - height: initial height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithHeight(height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.height = height
	}
}

// WithResizable allows the user to resize the window.
//
// Parameters:
//   - resizable: whether the window can be resized
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithResizable(resizable bool) WindowBuilderOption {
	return func(w *engineWindow) {
		w.resizable = resizable
	}
}

// WithCursorMode sets the system cursor mode.
//
// Parameters:
//   - mode: CursorNormal or CursorHidden
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithCursorMode(mode CursorMode) WindowBuilderOption {
	return func(w *engineWindow) {
		w.cursorMode = mode
	}
}
