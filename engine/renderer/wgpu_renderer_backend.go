package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-chess/common"
	"github.com/Carmen-Shannon/oxy-chess/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-chess/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-chess/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-chess/engine/sprite"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// quadVertices is the shared sprite quad: position xy in [-1, 1] followed by uv.
var quadVertices = []float32{
	-1, -1, 0, 1,
	1, -1, 1, 1,
	1, 1, 1, 0,
	-1, 1, 0, 0,
}

// quadIndices has an even count so the index buffer stays 4-byte aligned.
var quadIndices = []uint16{0, 1, 2, 2, 3, 0}

type wgpuTransformBuffer struct {
	buffer *wgpu.Buffer
	// shadow is the host-visible copy handed out by Map, flushed to buffer when dirty.
	shadow []byte
	dirty  bool
}

type wgpuTexture struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

type wgpuFrameFence struct {
	pending bool
	done    atomic.Bool
}

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	logger *zap.Logger

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceFormat        wgpu.TextureFormat
	presentMode          wgpu.PresentMode
	depthTexture         *wgpu.Texture
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	quadVertexBuffer *wgpu.Buffer
	quadIndexBuffer  *wgpu.Buffer

	// layouts caches bind group layouts by descriptor signature so sprite descriptor sets and the
	// sprite pipeline share one layout object.
	layouts map[string]*wgpu.BindGroupLayout

	nextBuffer sprite.BufferID
	nextSet    sprite.DescriptorSetID
	buffers    map[sprite.BufferID]*wgpuTransformBuffer
	sets       map[sprite.DescriptorSetID]*wgpu.BindGroup
	textures   []wgpuTexture
	sampler    *wgpu.Sampler

	fences []*wgpuFrameFence

	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView

	frames    uint64
	drawCalls int
	lastDraws int
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, framesInFlight int, logger *zap.Logger) *wgpuRendererBackendImpl {
	runtime.LockOSThread()
	b := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		logger:      logger,
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
		layouts:     make(map[string]*wgpu.BindGroupLayout),
		buffers:     make(map[sprite.BufferID]*wgpuTransformBuffer),
		sets:        make(map[sprite.DescriptorSetID]*wgpu.BindGroup),
		fences:      make([]*wgpuFrameFence, framesInFlight),
	}
	for i := range b.fences {
		b.fences[i] = &wgpuFrameFence{}
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		panic(err)
	}
	b.adapter = a

	limits := wgpu.DefaultLimits()
	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		panic(err)
	}
	b.device = d
	b.queue = d.GetQueue()

	if b.quadVertexBuffer, err = b.createInitializedBuffer("Quad Vertex Buffer", wgpu.BufferUsageVertex, common.SliceToBytes(quadVertices)); err != nil {
		panic(err)
	}
	if b.quadIndexBuffer, err = b.createInitializedBuffer("Quad Index Buffer", wgpu.BufferUsageIndex, common.SliceToBytes(quadIndices)); err != nil {
		panic(err)
	}

	logger.Debug("wgpu device ready", zap.Bool("fallbackAdapter", forceFallbackAdapter))
	return b
}

func (b *wgpuRendererBackendImpl) createInitializedBuffer(label string, usage wgpu.BufferUsage, data []byte) (*wgpu.Buffer, error) {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	b.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	b.releaseDepth()
	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	b.depthTexture = depthTexture
	b.depthTextureView, err = depthTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}

	// View is set per frame to the swapchain view
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: wgpu.StoreOpStore,
				ClearValue: wgpu.Color{
					R: 0, G: 0, B: 0, A: 1.0,
				},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
}

func (b *wgpuRendererBackendImpl) releaseDepth() {
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}
	if b.depthTexture != nil {
		b.depthTexture.Release()
		b.depthTexture = nil
	}
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	case PresentModeVSync:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *wgpuRendererBackendImpl) AllocateTransformBuffer() (sprite.BufferID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	size := (&sprite.GPUSpriteUniform{}).Size()
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Sprite Transform Buffer",
		Size:  uint64(size),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return 0, err
	}
	b.nextBuffer++
	b.buffers[b.nextBuffer] = &wgpuTransformBuffer{buffer: buf, shadow: make([]byte, size)}
	return b.nextBuffer, nil
}

func (b *wgpuRendererBackendImpl) Map(id sprite.BufferID) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tb, ok := b.buffers[id]
	if !ok {
		return nil, fmt.Errorf("buffer %d: %w", id, ErrUnknownResource)
	}
	tb.dirty = true
	return tb.shadow, nil
}

func (b *wgpuRendererBackendImpl) FreeBuffer(id sprite.BufferID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if tb, ok := b.buffers[id]; ok {
		tb.buffer.Release()
		delete(b.buffers, id)
	}
}

func (b *wgpuRendererBackendImpl) AllocateDescriptorSet() (sprite.DescriptorSetID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// the GPU bind group is created by Bind
	b.nextSet++
	b.sets[b.nextSet] = nil
	return b.nextSet, nil
}

func (b *wgpuRendererBackendImpl) Bind(set sprite.DescriptorSetID, buffer sprite.BufferID, texture sprite.TextureID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	old, ok := b.sets[set]
	if !ok {
		return fmt.Errorf("descriptor set %d: %w", set, ErrUnknownResource)
	}
	tb, ok := b.buffers[buffer]
	if !ok {
		return fmt.Errorf("buffer %d: %w", buffer, ErrUnknownResource)
	}
	if int(texture) < 0 || int(texture) >= len(b.textures) || b.sampler == nil {
		return fmt.Errorf("texture %d: %w", texture, ErrUnknownResource)
	}

	layout, err := b.layoutFor(spriteSetLayout())
	if err != nil {
		return err
	}
	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Sprite Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: tb.buffer, Size: wgpu.WholeSize},
			{Binding: 1, TextureView: b.textures[texture].view},
			{Binding: 2, Sampler: b.sampler},
		},
	})
	if err != nil {
		return err
	}
	if old != nil {
		old.Release()
	}
	b.sets[set] = bindGroup
	return nil
}

func (b *wgpuRendererBackendImpl) FreeDescriptorSet(set sprite.DescriptorSetID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	bg, ok := b.sets[set]
	if !ok {
		return
	}
	if bg != nil {
		bg.Release()
	}
	delete(b.sets, set)
}

func (b *wgpuRendererBackendImpl) TextureCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.textures)
}

func (b *wgpuRendererBackendImpl) WaitIdle() {
	b.device.Poll(true, nil)
	for _, f := range b.fences {
		f.pending = false
	}
}

// layoutFor returns the cached layout for a descriptor, creating it on first use.
// Callers hold b.mu.
func (b *wgpuRendererBackendImpl) layoutFor(descriptor wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error) {
	sig := layoutSignature(descriptor)
	if layout, ok := b.layouts[sig]; ok {
		return layout, nil
	}
	layout, err := b.device.CreateBindGroupLayout(&descriptor)
	if err != nil {
		return nil, err
	}
	b.layouts[sig] = layout
	return layout, nil
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline) error {
	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)
	if vertexShader == nil || fragmentShader == nil {
		return errors.New("both vertex and fragment shaders must be set to create a render pipeline")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	vs, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          vertexShader.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: vertexShader.Source()},
	})
	if err != nil {
		return err
	}
	defer vs.Release()
	fs, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          fragmentShader.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: fragmentShader.Source()},
	})
	if err != nil {
		return err
	}
	defer fs.Release()

	merged := mergeBindGroupLayouts(vertexShader.BindGroupLayoutDescriptors(), fragmentShader.BindGroupLayoutDescriptors())
	maxGroup := -1
	for g := range merged {
		maxGroup = max(maxGroup, g)
	}
	bindGroupLayouts := make([]*wgpu.BindGroupLayout, maxGroup+1)
	for g := range bindGroupLayouts {
		layout, layoutErr := b.layoutFor(merged[g])
		if layoutErr != nil {
			return fmt.Errorf("failed to create bind group layout for group %d: %w", g, layoutErr)
		}
		bindGroupLayouts[g] = layout
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.Key(),
		BindGroupLayouts: bindGroupLayouts,
	})
	if err != nil {
		return err
	}
	defer pipelineLayout.Release()

	var vertexLayouts []wgpu.VertexBufferLayout
	if p.UsesVertexBuffer() {
		vertexLayouts = vertexShader.VertexLayouts()
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.Key() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
			Buffers:    vertexLayouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets: []wgpu.ColorTargetState{{
				Format:    b.surfaceFormat,
				Blend:     p.BlendState(),
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: p.DepthWriteEnabled(),
			DepthCompare:      p.DepthCompare(),
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
	})
	if err != nil {
		return err
	}
	p.SetRenderPipeline(created)
	return nil
}

func (b *wgpuRendererBackendImpl) UploadTextures(textures []common.TextureStagingData, samplerData common.SamplerStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseTextures()
	for i, stagingData := range textures {
		tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:     fmt.Sprintf("Sprite Texture %d", i),
			Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
			Dimension: wgpu.TextureDimension2D,
			Size: wgpu.Extent3D{
				Width:              stagingData.Width,
				Height:             stagingData.Height,
				DepthOrArrayLayers: 1,
			},
			Format:        wgpu.TextureFormatRGBA8UnormSrgb,
			MipLevelCount: 1,
			SampleCount:   1,
		})
		if err != nil {
			return fmt.Errorf("texture %d: %w", i, err)
		}
		b.queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture: tex,
				Aspect:  wgpu.TextureAspectAll,
			},
			stagingData.Pixels,
			&wgpu.TextureDataLayout{
				BytesPerRow:  stagingData.Width * 4,
				RowsPerImage: stagingData.Height,
			},
			&wgpu.Extent3D{
				Width:              stagingData.Width,
				Height:             stagingData.Height,
				DepthOrArrayLayers: 1,
			},
		)
		view, err := tex.CreateView(nil)
		if err != nil {
			tex.Release()
			return fmt.Errorf("texture %d view: %w", i, err)
		}
		b.textures = append(b.textures, wgpuTexture{texture: tex, view: view})
	}

	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Sprite Sampler",
		AddressModeU:  common.Coalesce(samplerData.AddressModeU, wgpu.AddressModeClampToEdge),
		AddressModeV:  common.Coalesce(samplerData.AddressModeV, wgpu.AddressModeClampToEdge),
		AddressModeW:  common.Coalesce(samplerData.AddressModeW, wgpu.AddressModeClampToEdge),
		MagFilter:     common.Coalesce(samplerData.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(samplerData.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(samplerData.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   common.Coalesce(samplerData.LodMinClamp, 0.0),
		LodMaxClamp:   common.Coalesce(samplerData.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(samplerData.MaxAnisotropy, 16),
	})
	if err != nil {
		return err
	}
	b.sampler = samp

	b.logger.Debug("uploaded textures", zap.Int("count", len(b.textures)))
	return nil
}

func (b *wgpuRendererBackendImpl) releaseTextures() {
	for _, t := range b.textures {
		t.view.Release()
		t.texture.Release()
	}
	b.textures = nil
	if b.sampler != nil {
		b.sampler.Release()
		b.sampler = nil
	}
}

func (b *wgpuRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(descriptor.Entries) == 0 {
		return nil
	}
	layout, err := b.layoutFor(descriptor)
	if err != nil {
		return err
	}

	entries := make([]wgpu.BindGroupEntry, len(descriptor.Entries))
	created := make(map[int]*wgpu.Buffer, len(descriptor.Entries))
	sizes := make(map[int]uint64, len(descriptor.Entries))
	release := func() {
		for _, buf := range created {
			buf.Release()
		}
	}
	for i, entry := range descriptor.Entries {
		binding := int(entry.Binding)
		if entry.Buffer.Type == wgpu.BufferBindingTypeUndefined {
			release()
			return fmt.Errorf("%s binding %d: only buffer bindings are supported", provider.Label(), binding)
		}
		usage := wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
		if entry.Buffer.Type != wgpu.BufferBindingTypeUniform {
			usage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
		}
		size := entry.Buffer.MinBindingSize
		if override, ok := bufferSizeOverrides[binding]; ok {
			size = override
		}
		sizes[binding] = size

		// a re-init of a bound provider keeps buffers that are still large enough
		buf := provider.Buffer(binding)
		if buf == nil || provider.Size(binding) < size {
			buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
				Label: provider.Label() + " Buffer",
				Size:  size,
				Usage: usage,
			})
			if err != nil {
				release()
				return err
			}
			created[binding] = buf
		}
		entries[i] = wgpu.BindGroupEntry{
			Binding: entry.Binding,
			Buffer:  buf,
			Size:    wgpu.WholeSize,
		}
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		release()
		return err
	}
	for binding := range created {
		if old := provider.Buffer(binding); old != nil {
			old.Release()
		}
	}
	provider.Attach(bindGroup, created, sizes)
	return nil
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		data, ok := w.Clipped()
		buf := w.Provider.Buffer(w.Binding)
		if !ok || buf == nil {
			continue
		}
		b.queue.WriteBuffer(buf, w.Offset, data)
	}
}

func (b *wgpuRendererBackendImpl) WaitFrame(frame int) {
	fence := b.fences[frame]
	for fence.pending && !fence.done.Load() {
		if queueEmpty := b.device.Poll(true, nil); queueEmpty {
			break
		}
	}
	fence.pending = false
}

func (b *wgpuRendererBackendImpl) BeginFrame(frame int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil {
		return errors.New("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	b.renderPassDescriptor.ColorAttachments[0].View = view
	b.framePass = encoder.BeginRenderPass(b.renderPassDescriptor)
	b.frameEncoder = encoder
	b.frameSurface = surfaceTexture
	b.frameView = view
	b.drawCalls = 0
	return nil
}

func (b *wgpuRendererBackendImpl) DrawSprite(p pipeline.Pipeline, set sprite.DescriptorSetID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	bindGroup := b.sets[set]
	if bindGroup == nil {
		return fmt.Errorf("descriptor set %d: %w", set, ErrUnknownResource)
	}
	b.framePass.SetPipeline(p.RenderPipeline())
	b.framePass.SetBindGroup(0, bindGroup, nil)
	b.framePass.SetVertexBuffer(0, b.quadVertexBuffer, 0, wgpu.WholeSize)
	b.framePass.SetIndexBuffer(b.quadIndexBuffer, wgpu.IndexFormatUint16, 0, wgpu.WholeSize)
	b.framePass.DrawIndexed(uint32(len(quadIndices)), 1, 0, 0, 0)
	b.drawCalls++
	return nil
}

func (b *wgpuRendererBackendImpl) DrawFullscreen(p pipeline.Pipeline, bindGroups []bind_group_provider.BindGroupProvider) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.framePass.SetPipeline(p.RenderPipeline())
	for _, bg := range bindGroups {
		if !bg.Bound() || bg.BindGroup() == nil {
			return fmt.Errorf("%s: bind group not initialized", bg.Label())
		}
		b.framePass.SetBindGroup(uint32(bg.Group()), bg.BindGroup(), nil)
	}
	b.framePass.Draw(3, 1, 0, 0)
	b.drawCalls++
	return nil
}

func (b *wgpuRendererBackendImpl) EndFrame(frame int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.framePass.End()
	b.framePass.Release()
	b.framePass = nil

	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err != nil {
		return err
	}
	defer commandBuffer.Release()

	for _, tb := range b.buffers {
		if tb.dirty {
			b.queue.WriteBuffer(tb.buffer, 0, tb.shadow)
			tb.dirty = false
		}
	}
	b.queue.Submit(commandBuffer)

	fence := b.fences[frame]
	fence.done.Store(false)
	fence.pending = true
	b.queue.OnSubmittedWorkDone(func(wgpu.QueueWorkDoneStatus) {
		fence.done.Store(true)
	})

	b.frames++
	b.lastDraws = b.drawCalls
	return nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}
	b.surface.Present()
	b.frameView.Release()
	b.frameView = nil
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuRendererBackendImpl) Stats() FrameStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return FrameStats{Frame: b.frames, DrawCalls: b.lastDraws}
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, tb := range b.buffers {
		tb.buffer.Release()
		delete(b.buffers, id)
	}
	for id, bg := range b.sets {
		if bg != nil {
			bg.Release()
		}
		delete(b.sets, id)
	}
	b.releaseTextures()
	for sig, layout := range b.layouts {
		layout.Release()
		delete(b.layouts, sig)
	}
	b.releaseDepth()
	b.quadVertexBuffer.Release()
	b.quadIndexBuffer.Release()
	b.queue.Release()
	b.device.Release()
	b.adapter.Release()
	b.surface.Release()
	b.instance.Release()
}

// spriteSetLayout is the group 0 layout of the sprite pipeline: the transform uniform for the
// vertex stage, then the texture and sampler for the fragment stage.
func spriteSetLayout() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: uint64((&sprite.GPUSpriteUniform{}).Size()),
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
			},
		},
	}
}

// layoutSignature identifies a layout descriptor by its entries, ignoring labels.
func layoutSignature(descriptor wgpu.BindGroupLayoutDescriptor) string {
	entries := append([]wgpu.BindGroupLayoutEntry(nil), descriptor.Entries...)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Binding < entries[j].Binding
	})
	var sb strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&sb, "%d:%d:%d:%d:%d:%d:%d;",
			e.Binding, e.Visibility,
			e.Buffer.Type, e.Buffer.MinBindingSize,
			e.Texture.SampleType, e.Texture.ViewDimension,
			e.Sampler.Type,
		)
	}
	return sb.String()
}

// mergeBindGroupLayouts combines the vertex and fragment layouts of a pipeline. Entries sharing
// a binding number have their visibility ORed together.
//
// Parameters:
//   - vertexLayouts: bind group layout descriptors from the vertex shader
//   - fragmentLayouts: bind group layout descriptors from the fragment shader
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: the merged descriptors keyed by group index
func mergeBindGroupLayouts(vertexLayouts, fragmentLayouts map[int]wgpu.BindGroupLayoutDescriptor) map[int]wgpu.BindGroupLayoutDescriptor {
	merged := make(map[int]wgpu.BindGroupLayoutDescriptor)
	for _, layouts := range []map[int]wgpu.BindGroupLayoutDescriptor{vertexLayouts, fragmentLayouts} {
		for g, desc := range layouts {
			entryMap := make(map[uint32]wgpu.BindGroupLayoutEntry)
			for _, e := range merged[g].Entries {
				entryMap[e.Binding] = e
			}
			for _, e := range desc.Entries {
				if existing, ok := entryMap[e.Binding]; ok {
					existing.Visibility |= e.Visibility
					entryMap[e.Binding] = existing
				} else {
					entryMap[e.Binding] = e
				}
			}
			entries := make([]wgpu.BindGroupLayoutEntry, 0, len(entryMap))
			for _, e := range entryMap {
				entries = append(entries, e)
			}
			sort.Slice(entries, func(i, j int) bool {
				return entries[i].Binding < entries[j].Binding
			})
			merged[g] = wgpu.BindGroupLayoutDescriptor{Entries: entries}
		}
	}
	return merged
}
