package game_object

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-chess/engine/sprite"
)

type gameObject struct {
	id      uint64
	enabled bool
	desc    sprite.Desc

	pool   sprite.Pool
	handle sprite.Handle
}

// GameObject is a domain entity drawn as one sprite. The object keeps its placement even while
// it has no sprite, so it can be disabled, re-enabled and rebuilt after the pool is cleared.
// Not safe for concurrent use; objects live on the render goroutine with the pool.
type GameObject interface {
	// ID returns the object's identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Enabled returns whether the object wants to be visible.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Visible reports whether the object currently owns a live sprite.
	//
	// Returns:
	//   - bool: true if a sprite is allocated for the object
	Visible() bool

	// Desc returns the object's placement.
	//
	// Returns:
	//   - sprite.Desc: the current placement
	Desc() sprite.Desc

	// Position returns the object's position in normalized device coordinates.
	//
	// Returns:
	//   - x, y: position components
	Position() (x, y float32)

	// Handle returns the object's sprite handle. The handle is owned by the object.
	//
	// Returns:
	//   - *sprite.Handle: the handle, empty while the object is not visible
	Handle() *sprite.Handle

	// Attach binds the object to a pool and allocates its sprite if the object is enabled.
	//
	// Parameters:
	//   - pool: the sprite pool to draw from
	//
	// Returns:
	//   - error: any allocation error
	Attach(pool sprite.Pool) error

	// SetEnabled shows or hides the object, allocating or releasing its sprite.
	//
	// Parameters:
	//   - enabled: true to show the object
	//
	// Returns:
	//   - error: any allocation or release error
	SetEnabled(enabled bool) error

	// MoveTo moves the object and its sprite.
	//
	// Parameters:
	//   - x, y: the new position
	//
	// Returns:
	//   - error: any error from the sprite handle
	MoveTo(x, y float32) error

	// SetTexture changes the object's texture. A visible object gets a new sprite and the old one
	// is released.
	//
	// Parameters:
	//   - texture: the new texture
	//
	// Returns:
	//   - error: any allocation or release error
	SetTexture(texture sprite.TextureID) error

	// Recreate allocates a fresh sprite for an enabled object whose sprite was dropped by
	// Pool.Clear. Visible objects are left as they are.
	//
	// Returns:
	//   - error: any allocation error
	Recreate() error

	// Release drops the object's sprite. The object stays attached and keeps its enabled flag.
	//
	// Returns:
	//   - error: any release error
	Release() error
}

var _ GameObject = &gameObject{}

// NewGameObject creates a detached GameObject. It has no sprite until Attach is called.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		enabled: true,
		desc: sprite.Desc{
			Width:  1,
			Height: 1,
		},
	}
	for _, opt := range options {
		opt(obj)
	}
	return obj
}

func (o *gameObject) ID() uint64 {
	return o.id
}

func (o *gameObject) Enabled() bool {
	return o.enabled
}

func (o *gameObject) Visible() bool {
	return o.handle.Valid()
}

func (o *gameObject) Desc() sprite.Desc {
	return o.desc
}

func (o *gameObject) Position() (x, y float32) {
	return o.desc.X, o.desc.Y
}

func (o *gameObject) Handle() *sprite.Handle {
	return &o.handle
}

func (o *gameObject) Attach(pool sprite.Pool) error {
	if o.pool != nil && o.pool != pool {
		if err := o.handle.Release(); err != nil {
			return err
		}
	}
	o.pool = pool
	if !o.enabled {
		return nil
	}
	return o.spawn()
}

func (o *gameObject) SetEnabled(enabled bool) error {
	if o.enabled == enabled {
		return nil
	}
	o.enabled = enabled
	if !enabled {
		return o.handle.Release()
	}
	if o.pool == nil {
		return nil
	}
	return o.spawn()
}

func (o *gameObject) MoveTo(x, y float32) error {
	o.desc.X, o.desc.Y = x, y
	return o.handle.MoveTo(x, y)
}

func (o *gameObject) SetTexture(texture sprite.TextureID) error {
	if o.desc.Texture == texture {
		return nil
	}
	o.desc.Texture = texture
	if !o.handle.Valid() {
		return nil
	}
	h, err := o.pool.Allocate(o.desc)
	if err != nil {
		return fmt.Errorf("object %d: %w", o.id, err)
	}
	return o.handle.Replace(h)
}

func (o *gameObject) Recreate() error {
	if !o.enabled || o.pool == nil || o.handle.Valid() {
		return nil
	}
	return o.spawn()
}

func (o *gameObject) Release() error {
	return o.handle.Release()
}

// spawn allocates a sprite for the object unless it already has one.
func (o *gameObject) spawn() error {
	if o.handle.Valid() {
		return nil
	}
	h, err := o.pool.Allocate(o.desc)
	if err != nil {
		return fmt.Errorf("object %d: %w", o.id, err)
	}
	// the previous handle can only be one retired by Pool.Clear, so dropping it is safe
	o.handle = h
	return nil
}
