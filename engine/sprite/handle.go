package sprite

import "fmt"

// SpriteID is a stable, generation-counted identifier for a sprite. Unlike a slot index it
// survives recycling; once the sprite is removed the ID no longer resolves.
type SpriteID struct {
	key        uint32
	generation uint32
	epoch      uint32
}

// IsZero reports whether id identifies no sprite.
func (id SpriteID) IsZero() bool {
	return id.generation == 0
}

func (id SpriteID) String() string {
	if id.IsZero() {
		return "sprite(none)"
	}
	return fmt.Sprintf("sprite(%d:%d@%d)", id.key, id.generation, id.epoch)
}

// Handle is the unique owner of one pool slot from the perspective of domain code.
// Handles are values but must not be copied: transfer ownership with Take, Replace or Swap.
// The zero Handle owns nothing and every method on it is a no-op.
type Handle struct {
	pool *pool
	id   SpriteID
}

// ID returns the sprite's stable identifier.
func (h *Handle) ID() SpriteID {
	return h.id
}

// Index returns the slot's current position in the pool, or -1 when the handle owns nothing.
// The value changes whenever the pool recycles another slot into a lower position.
func (h *Handle) Index() int {
	if h.pool == nil {
		return -1
	}
	return h.pool.IndexOf(h.id)
}

// Valid reports whether the handle currently owns a live slot.
func (h *Handle) Valid() bool {
	return h.Index() >= 0
}

// MoveTo moves the sprite to (x, y) in normalized device coordinates.
//
// Parameters:
//   - x: the new x position
//   - y: the new y position
//
// Returns:
//   - error: ErrStaleHandle if the handle's slot was removed behind its back
func (h *Handle) MoveTo(x, y float32) error {
	if h.pool == nil {
		return nil
	}
	return h.pool.move(h.id, x, y)
}

// Release marks the owned slot as removed and empties the handle. Releasing an empty handle,
// or one invalidated by Pool.Clear, does nothing.
//
// Returns:
//   - error: ErrStaleHandle or ErrAlreadyRemoved on a double release through a copied handle
func (h *Handle) Release() error {
	if h.pool == nil {
		return nil
	}
	err := h.pool.release(h.id)
	*h = Handle{}
	return err
}

// Take transfers ownership out of h, leaving h empty.
//
// Returns:
//   - Handle: a handle owning h's former slot
func (h *Handle) Take() Handle {
	out := *h
	*h = Handle{}
	return out
}

// Replace releases the slot owned by h and takes ownership of other's slot.
//
// Parameters:
//   - other: the handle to take over; it must not be used afterwards
//
// Returns:
//   - error: any error from releasing h's previous slot
func (h *Handle) Replace(other Handle) error {
	err := h.Release()
	*h = other
	return err
}

// Swap exchanges the slots owned by h and other. Either side may be empty.
//
// Parameters:
//   - other: the handle to swap with
func (h *Handle) Swap(other *Handle) {
	*h, *other = *other, *h
}
