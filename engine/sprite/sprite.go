package sprite

// Sprite is a read-only view of a live slot handed to draw recording.
type Sprite struct {
	// Index is the slot's current position in the pool. It is only valid until the next Tick.
	Index int
	// ID identifies the handle that owns the slot, or is zero for an anonymous slot.
	ID SpriteID
	// Desc is the slot's current placement.
	Desc Desc

	sets []DescriptorSetID
}

// DescriptorSet returns the descriptor set to bind when drawing the sprite in frameIndex.
//
// Parameters:
//   - frameIndex: the frame being recorded, in [0, FramesInFlight())
//
// Returns:
//   - DescriptorSetID: the frame's descriptor set
func (s Sprite) DescriptorSet(frameIndex int) DescriptorSetID {
	return s.sets[frameIndex]
}
