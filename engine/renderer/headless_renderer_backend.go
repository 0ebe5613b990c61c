package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-chess/common"
	"github.com/Carmen-Shannon/oxy-chess/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-chess/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-chess/engine/sprite"
	"github.com/cogentcore/webgpu/wgpu"
)

type headlessBinding struct {
	bound   bool
	buffer  sprite.BufferID
	texture sprite.TextureID
}

// headlessFrame tracks the resources referenced by one frame slot's last submission.
type headlessFrame struct {
	sets    map[sprite.DescriptorSetID]struct{}
	buffers map[sprite.BufferID]struct{}
}

// headlessRendererBackendImpl executes the frame protocol on the CPU. A frame slot's submission
// is treated as complete when the slot is waited on again, so freeing or writing a resource that
// an unfinished submission references is counted as a violation.
type headlessRendererBackendImpl struct {
	nextBuffer sprite.BufferID
	nextSet    sprite.DescriptorSetID
	buffers    map[sprite.BufferID][]byte
	sets       map[sprite.DescriptorSetID]*headlessBinding
	textures   int

	providers map[bind_group_provider.BindGroupProvider]map[int][]byte

	frames    []headlessFrame
	recording int

	frameCount uint64
	draws      []DrawRecord
	lastDraws  []DrawRecord
	violations int
}

var _ RendererBackend = &headlessRendererBackendImpl{}

func newHeadlessRendererBackend(framesInFlight int) *headlessRendererBackendImpl {
	b := &headlessRendererBackendImpl{
		buffers:   make(map[sprite.BufferID][]byte),
		sets:      make(map[sprite.DescriptorSetID]*headlessBinding),
		providers: make(map[bind_group_provider.BindGroupProvider]map[int][]byte),
		frames:    make([]headlessFrame, framesInFlight),
		recording: -1,
	}
	for i := range b.frames {
		b.frames[i] = newHeadlessFrame()
	}
	return b
}

func newHeadlessFrame() headlessFrame {
	return headlessFrame{
		sets:    make(map[sprite.DescriptorSetID]struct{}),
		buffers: make(map[sprite.BufferID]struct{}),
	}
}

func (b *headlessRendererBackendImpl) bufferInUse(id sprite.BufferID) bool {
	for _, f := range b.frames {
		if _, ok := f.buffers[id]; ok {
			return true
		}
	}
	return false
}

func (b *headlessRendererBackendImpl) setInUse(id sprite.DescriptorSetID) bool {
	for _, f := range b.frames {
		if _, ok := f.sets[id]; ok {
			return true
		}
	}
	return false
}

func (b *headlessRendererBackendImpl) AllocateTransformBuffer() (sprite.BufferID, error) {
	b.nextBuffer++
	b.buffers[b.nextBuffer] = make([]byte, (&sprite.GPUSpriteUniform{}).Size())
	return b.nextBuffer, nil
}

func (b *headlessRendererBackendImpl) Map(id sprite.BufferID) ([]byte, error) {
	mem, ok := b.buffers[id]
	if !ok {
		return nil, fmt.Errorf("buffer %d: %w", id, ErrUnknownResource)
	}
	if b.bufferInUse(id) {
		b.violations++
	}
	return mem, nil
}

func (b *headlessRendererBackendImpl) FreeBuffer(id sprite.BufferID) {
	if _, ok := b.buffers[id]; !ok {
		return
	}
	if b.bufferInUse(id) {
		b.violations++
	}
	delete(b.buffers, id)
}

func (b *headlessRendererBackendImpl) AllocateDescriptorSet() (sprite.DescriptorSetID, error) {
	b.nextSet++
	b.sets[b.nextSet] = &headlessBinding{}
	return b.nextSet, nil
}

func (b *headlessRendererBackendImpl) Bind(set sprite.DescriptorSetID, buffer sprite.BufferID, texture sprite.TextureID) error {
	binding, ok := b.sets[set]
	if !ok {
		return fmt.Errorf("descriptor set %d: %w", set, ErrUnknownResource)
	}
	if _, ok := b.buffers[buffer]; !ok {
		return fmt.Errorf("buffer %d: %w", buffer, ErrUnknownResource)
	}
	if int(texture) < 0 || int(texture) >= b.textures {
		return fmt.Errorf("texture %d: %w", texture, ErrUnknownResource)
	}
	if b.setInUse(set) {
		b.violations++
	}
	*binding = headlessBinding{bound: true, buffer: buffer, texture: texture}
	return nil
}

func (b *headlessRendererBackendImpl) FreeDescriptorSet(set sprite.DescriptorSetID) {
	if _, ok := b.sets[set]; !ok {
		return
	}
	if b.setInUse(set) {
		b.violations++
	}
	delete(b.sets, set)
}

func (b *headlessRendererBackendImpl) TextureCount() int {
	return b.textures
}

func (b *headlessRendererBackendImpl) WaitIdle() {
	for i := range b.frames {
		if i != b.recording {
			b.frames[i] = newHeadlessFrame()
		}
	}
}

func (b *headlessRendererBackendImpl) ConfigureSurface(width, height int) {}

func (b *headlessRendererBackendImpl) SetPresentMode(mode PresentMode) {}

func (b *headlessRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline) error {
	return nil
}

func (b *headlessRendererBackendImpl) UploadTextures(textures []common.TextureStagingData, sampler common.SamplerStagingData) error {
	for i, t := range textures {
		if t.Width == 0 || t.Height == 0 || len(t.Pixels) < int(t.Width*t.Height*4) {
			return fmt.Errorf("texture %d: invalid staging data %dx%d", i, t.Width, t.Height)
		}
	}
	b.textures = len(textures)
	return nil
}

func (b *headlessRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error {
	buffers := make(map[int][]byte, len(descriptor.Entries))
	sizes := make(map[int]uint64, len(descriptor.Entries))
	for _, entry := range descriptor.Entries {
		binding := int(entry.Binding)
		if entry.Buffer.Type == wgpu.BufferBindingTypeUndefined {
			return fmt.Errorf("%s binding %d: only buffer bindings are supported", provider.Label(), binding)
		}
		size := entry.Buffer.MinBindingSize
		if override, ok := bufferSizeOverrides[binding]; ok {
			size = override
		}
		buffers[binding] = make([]byte, size)
		sizes[binding] = size
	}
	b.providers[provider] = buffers
	provider.Attach(nil, nil, sizes)
	return nil
}

func (b *headlessRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	for _, w := range writes {
		data, ok := w.Clipped()
		buf, known := b.providers[w.Provider][w.Binding]
		if !ok || !known {
			continue
		}
		copy(buf[w.Offset:], data)
	}
}

func (b *headlessRendererBackendImpl) WaitFrame(frame int) {
	b.frames[frame] = newHeadlessFrame()
}

func (b *headlessRendererBackendImpl) BeginFrame(frame int) error {
	b.recording = frame
	b.draws = b.draws[:0]
	return nil
}

func (b *headlessRendererBackendImpl) DrawSprite(p pipeline.Pipeline, set sprite.DescriptorSetID) error {
	binding, ok := b.sets[set]
	if !ok || !binding.bound {
		return fmt.Errorf("descriptor set %d: %w", set, ErrUnknownResource)
	}
	frame := b.frames[b.recording]
	frame.sets[set] = struct{}{}
	frame.buffers[binding.buffer] = struct{}{}
	b.draws = append(b.draws, DrawRecord{
		Pipeline: p.Key(),
		Set:      set,
		Texture:  binding.texture,
		MVP:      sprite.UnmarshalSpriteUniform(b.buffers[binding.buffer]).MVP,
	})
	return nil
}

func (b *headlessRendererBackendImpl) DrawFullscreen(p pipeline.Pipeline, bindGroups []bind_group_provider.BindGroupProvider) error {
	for _, bg := range bindGroups {
		if _, ok := b.providers[bg]; !ok || !bg.Bound() {
			return fmt.Errorf("%s: bind group not initialized", bg.Label())
		}
	}
	b.draws = append(b.draws, DrawRecord{Pipeline: p.Key(), Texture: -1})
	return nil
}

func (b *headlessRendererBackendImpl) EndFrame(frame int) error {
	b.recording = -1
	b.frameCount++
	b.lastDraws = append(b.lastDraws[:0], b.draws...)
	return nil
}

func (b *headlessRendererBackendImpl) Present() {}

func (b *headlessRendererBackendImpl) Stats() FrameStats {
	return FrameStats{
		Frame:      b.frameCount,
		DrawCalls:  len(b.lastDraws),
		Draws:      append([]DrawRecord(nil), b.lastDraws...),
		Violations: b.violations,
	}
}

func (b *headlessRendererBackendImpl) Release() {
	clear(b.buffers)
	clear(b.sets)
	clear(b.providers)
	b.textures = 0
}
