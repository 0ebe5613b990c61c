package bind_group_provider

import (
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// BindGroupProvider owns the uniform buffers and bind group of a component drawn outside the
// sprite pool, such as the raymarch camera. The renderer fills it once through Attach; the
// layout stays in the renderer's layout cache.
//
// Usage pattern:
//  1. Component creates a BindGroupProvider with a label and group index
//  2. Scene calls Renderer.InitBindGroup(provider, layout, sizes), which Attaches the resources
//  3. Scene calls Renderer.WriteBuffers with BufferWrite values to update uniforms
//  4. Scene passes the provider to Renderer.DrawFullscreen
type BindGroupProvider interface {
	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// Group returns the bind group index this provider binds to.
	//
	// Returns:
	//   - int: the group index
	Group() int

	// Bound reports whether a renderer has attached resources since creation or the last Release.
	Bound() bool

	// BindGroup returns the attached bind group, or nil. The headless renderer attaches none.
	BindGroup() *wgpu.BindGroup

	// Buffer returns the GPU buffer at a binding index, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	// Size returns the byte size of the buffer at a binding index, or 0 when unbound.
	Size(binding int) uint64

	// Attach stores the resources a renderer created for the provider, releasing any earlier
	// bind group. Buffers already held for a binding are kept when buffers omits it.
	//
	// Parameters:
	//   - bindGroup: the created bind group, nil for renderers without GPU objects
	//   - buffers: the created buffers by binding
	//   - sizes: the byte size of every binding
	Attach(bindGroup *wgpu.BindGroup, buffers map[int]*wgpu.Buffer, sizes map[int]uint64)

	// Release releases the buffers and bind group and marks the provider unbound.
	Release()
}

type bindGroupProvider struct {
	mu    *sync.Mutex
	label string
	group int

	bindGroup *wgpu.BindGroup
	buffers   map[int]*wgpu.Buffer
	sizes     map[int]uint64
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates an unbound BindGroupProvider.
//
// Parameters:
//   - label: debug label for the provider
//   - options: a variadic list of options to configure the provider
//
// Returns:
//   - BindGroupProvider: the new provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		mu:      &sync.Mutex{},
		label:   label,
		buffers: make(map[int]*wgpu.Buffer),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) Group() int {
	return p.group
}

func (p *bindGroupProvider) Bound() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sizes != nil
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bindGroup
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buffers[binding]
}

func (p *bindGroupProvider) Size(binding int) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sizes[binding]
}

func (p *bindGroupProvider) Attach(bindGroup *wgpu.BindGroup, buffers map[int]*wgpu.Buffer, sizes map[int]uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bindGroup != nil && p.bindGroup != bindGroup {
		p.bindGroup.Release()
	}
	p.bindGroup = bindGroup
	for binding, buf := range buffers {
		p.buffers[binding] = buf
	}
	p.sizes = make(map[int]uint64, len(sizes))
	for binding, size := range sizes {
		p.sizes[binding] = size
	}
}

func (p *bindGroupProvider) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, buf := range p.buffers {
		if buf != nil {
			buf.Release()
		}
		delete(p.buffers, i)
	}
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	p.sizes = nil
}
