package sprite

import "errors"

var errFakeExhausted = errors.New("fake surface exhausted")

type fakeBinding struct {
	buffer  BufferID
	texture TextureID
}

// fakeSurface is an in-memory Surface that records every allocation, free, bind and write.
type fakeSurface struct {
	frames     int
	textures   int
	frameIndex int

	nextBuffer BufferID
	nextSet    DescriptorSetID
	buffers    map[BufferID][]byte
	sets       map[DescriptorSetID]*fakeBinding

	allocatedBuffers int
	allocatedSets    int
	freedBuffers     []BufferID
	freedSets        []DescriptorSetID
	maps             int
	binds            int
	waitIdle         int

	// bufferBudget limits the number of live buffers when positive.
	bufferBudget int
}

var _ Surface = &fakeSurface{}

func newFakeSurface(frames, textures int) *fakeSurface {
	return &fakeSurface{
		frames:   frames,
		textures: textures,
		buffers:  make(map[BufferID][]byte),
		sets:     make(map[DescriptorSetID]*fakeBinding),
	}
}

func (f *fakeSurface) AllocateTransformBuffer() (BufferID, error) {
	if f.bufferBudget > 0 && len(f.buffers) >= f.bufferBudget {
		return 0, errFakeExhausted
	}
	f.nextBuffer++
	f.buffers[f.nextBuffer] = make([]byte, 64)
	f.allocatedBuffers++
	return f.nextBuffer, nil
}

func (f *fakeSurface) Map(id BufferID) ([]byte, error) {
	mem, ok := f.buffers[id]
	if !ok {
		return nil, errors.New("unknown buffer")
	}
	f.maps++
	return mem, nil
}

func (f *fakeSurface) FreeBuffer(id BufferID) {
	if _, ok := f.buffers[id]; !ok {
		return
	}
	delete(f.buffers, id)
	f.freedBuffers = append(f.freedBuffers, id)
}

func (f *fakeSurface) AllocateDescriptorSet() (DescriptorSetID, error) {
	f.nextSet++
	f.sets[f.nextSet] = nil
	f.allocatedSets++
	return f.nextSet, nil
}

func (f *fakeSurface) Bind(set DescriptorSetID, buffer BufferID, texture TextureID) error {
	if _, ok := f.sets[set]; !ok {
		return errors.New("unknown descriptor set")
	}
	if _, ok := f.buffers[buffer]; !ok {
		return errors.New("unknown buffer")
	}
	f.sets[set] = &fakeBinding{buffer: buffer, texture: texture}
	f.binds++
	return nil
}

func (f *fakeSurface) FreeDescriptorSet(set DescriptorSetID) {
	if _, ok := f.sets[set]; !ok {
		return
	}
	delete(f.sets, set)
	f.freedSets = append(f.freedSets, set)
}

func (f *fakeSurface) FramesInFlight() int    { return f.frames }
func (f *fakeSurface) CurrentFrameIndex() int { return f.frameIndex }
func (f *fakeSurface) TextureCount() int      { return f.textures }
func (f *fakeSurface) WaitIdle()              { f.waitIdle++ }

func (f *fakeSurface) transform(id BufferID) [16]float32 {
	return UnmarshalSpriteUniform(f.buffers[id]).MVP
}
