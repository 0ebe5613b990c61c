package sprite

import "fmt"

// slot is one renderable quad's GPU-facing state. Buffers and descriptor sets are provisioned
// once per frame in flight and stay allocated for as long as the slot is part of the pool.
type slot struct {
	desc    Desc
	buffers []BufferID
	sets    []DescriptorSetID
	pending int
	removed bool
	owner   SpriteID
}

// provision allocates one unbound transform buffer and descriptor set per frame in flight.
// On failure everything allocated so far is released again.
func (s *slot) provision(surface Surface) error {
	n := surface.FramesInFlight()
	s.buffers = make([]BufferID, 0, n)
	s.sets = make([]DescriptorSetID, 0, n)
	for range n {
		buf, err := surface.AllocateTransformBuffer()
		if err != nil {
			s.destroy(surface)
			return fmt.Errorf("allocate transform buffer: %w", err)
		}
		s.buffers = append(s.buffers, buf)

		set, err := surface.AllocateDescriptorSet()
		if err != nil {
			s.destroy(surface)
			return fmt.Errorf("allocate descriptor set: %w", err)
		}
		s.sets = append(s.sets, set)
	}
	return nil
}

// instantiate binds the slot to a placement and owner, writes the transform into every frame's
// buffer and binds every frame's descriptor set. It allocates nothing.
func (s *slot) instantiate(surface Surface, desc Desc, owner SpriteID) error {
	s.desc = desc
	s.owner = owner
	s.removed = false
	s.pending = 0

	uniform := GPUSpriteUniform{MVP: desc.Transform()}
	for f := range s.buffers {
		if err := s.write(surface, f, &uniform); err != nil {
			return err
		}
		if err := surface.Bind(s.sets[f], s.buffers[f], desc.Texture); err != nil {
			return fmt.Errorf("bind descriptor set %d: %w", s.sets[f], err)
		}
	}
	return nil
}

// move records a new position; the GPU replicas catch up over the next FramesInFlight updates.
func (s *slot) move(x, y float32) {
	s.desc.X = x
	s.desc.Y = y
	s.pending = len(s.buffers)
}

// update writes the current transform into frameIndex's buffer if any replica is still stale.
func (s *slot) update(surface Surface, frameIndex int) error {
	if s.pending == 0 {
		return nil
	}
	uniform := GPUSpriteUniform{MVP: s.desc.Transform()}
	if err := s.write(surface, frameIndex, &uniform); err != nil {
		return err
	}
	s.pending--
	return nil
}

func (s *slot) write(surface Surface, frameIndex int, uniform *GPUSpriteUniform) error {
	mem, err := surface.Map(s.buffers[frameIndex])
	if err != nil {
		return fmt.Errorf("map transform buffer %d: %w", s.buffers[frameIndex], err)
	}
	if len(mem) < uniform.Size() {
		return fmt.Errorf("transform buffer %d holds %d bytes, need %d", s.buffers[frameIndex], len(mem), uniform.Size())
	}
	uniform.MarshalTo(mem)
	return nil
}

// destroy returns the slot's buffers and descriptor sets to the surface.
func (s *slot) destroy(surface Surface) {
	for _, set := range s.sets {
		surface.FreeDescriptorSet(set)
	}
	for _, buf := range s.buffers {
		surface.FreeBuffer(buf)
	}
	*s = slot{}
}
