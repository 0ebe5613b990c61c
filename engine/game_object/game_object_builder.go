package game_object

import "github.com/Carmen-Shannon/oxy-chess/engine/sprite"

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithID sets the ID of the GameObject.
//
// Parameters:
//   - id: identifier for the GameObject
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the ID
func WithID(id uint64) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.id = id
	}
}

// WithEnabled sets whether the GameObject is visible once attached. Defaults to true.
//
// Parameters:
//   - enabled: true to draw the object, false to keep it hidden
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Enabled state
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.enabled = enabled
	}
}

// WithPosition sets the initial position in normalized device coordinates.
//
// Parameters:
//   - x, y: the position
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the position
func WithPosition(x, y float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.desc.X, obj.desc.Y = x, y
	}
}

// WithSize sets the sprite half-extents.
//
// Parameters:
//   - width, height: the half-extents of the quad
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the size
func WithSize(width, height float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.desc.Width, obj.desc.Height = width, height
	}
}

// WithLayer sets the sprite layer.
func WithLayer(layer sprite.Layer) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.desc.Layer = layer
	}
}

// WithRotation sets the sprite rotation in radians.
func WithRotation(rotation float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.desc.Rotation = rotation
	}
}

// WithTexture sets the sprite texture.
func WithTexture(texture sprite.TextureID) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.desc.Texture = texture
	}
}

// WithDesc replaces the whole placement.
//
// Parameters:
//   - desc: the placement
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the placement
func WithDesc(desc sprite.Desc) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.desc = desc
	}
}
