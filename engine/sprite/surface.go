package sprite

// TextureID identifies a texture and sampler pair uploaded to the resource surface.
type TextureID int

// BufferID identifies a host-visible transform buffer owned by the resource surface.
type BufferID uint32

// DescriptorSetID identifies a bindable set of {transform buffer, texture, sampler}.
type DescriptorSetID uint32

// Surface is the GPU resource surface consumed by the Pool.
// Every method is called from the render goroutine only.
type Surface interface {
	// AllocateTransformBuffer allocates a host-visible buffer large enough for one GPUSpriteUniform.
	//
	// Returns:
	//   - BufferID: the new buffer
	//   - error: error if the surface is out of memory
	AllocateTransformBuffer() (BufferID, error)

	// Map returns the host-visible memory of a transform buffer.
	// Writes become visible to the GPU no later than the next submitted frame.
	//
	// Parameters:
	//   - id: the buffer to map
	//
	// Returns:
	//   - []byte: the mapped memory
	//   - error: error if the buffer is unknown
	Map(id BufferID) ([]byte, error)

	// FreeBuffer releases a transform buffer. Unknown IDs are ignored.
	//
	// Parameters:
	//   - id: the buffer to free
	FreeBuffer(id BufferID)

	// AllocateDescriptorSet allocates an unbound descriptor set.
	//
	// Returns:
	//   - DescriptorSetID: the new descriptor set
	//   - error: error if the surface is out of descriptor sets
	AllocateDescriptorSet() (DescriptorSetID, error)

	// Bind points a descriptor set at a transform buffer and a texture with its sampler.
	//
	// Parameters:
	//   - set: the descriptor set to bind
	//   - buffer: the transform buffer
	//   - texture: the texture to sample
	//
	// Returns:
	//   - error: error if any of the IDs are unknown
	Bind(set DescriptorSetID, buffer BufferID, texture TextureID) error

	// FreeDescriptorSet releases a descriptor set. Unknown IDs are ignored.
	//
	// Parameters:
	//   - set: the descriptor set to free
	FreeDescriptorSet(set DescriptorSetID)

	// FramesInFlight returns the number of frames that may be outstanding on the GPU at once.
	// The value is constant for the lifetime of the surface.
	//
	// Returns:
	//   - int: the frames-in-flight count (N)
	FramesInFlight() int

	// CurrentFrameIndex returns the frame slot currently being prepared, in [0, FramesInFlight()).
	//
	// Returns:
	//   - int: the current frame index
	CurrentFrameIndex() int

	// TextureCount returns the number of textures available for binding.
	//
	// Returns:
	//   - int: the texture count
	TextureCount() int

	// WaitIdle blocks until the GPU has finished every submitted frame.
	WaitIdle()
}
