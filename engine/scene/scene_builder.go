package scene

// SceneBuilderOption is a functional option for configuring a Base scene.
type SceneBuilderOption func(*Base)

// WithName sets the scene's identifier.
//
// Parameters:
//   - name: the scene name
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithName(name string) SceneBuilderOption {
	return func(b *Base) {
		b.name = name
	}
}

// WithActive sets whether the scene starts active. Scenes are active by default.
//
// Parameters:
//   - active: the initial active flag
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(b *Base) {
		b.active = active
	}
}
