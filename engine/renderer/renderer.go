package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-chess/common"
	"github.com/Carmen-Shannon/oxy-chess/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-chess/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-chess/engine/sprite"
	"github.com/Carmen-Shannon/oxy-chess/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu     *sync.Mutex
	logger *zap.Logger

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	// config collected from builder options before the backend is created
	forceFallbackAdapter bool
	presentMode          PresentMode
	framesInFlight       int
	maxTextures          int

	width, height int

	frameIndex int
	recording  bool
}

// Renderer is the frame-synchronized rendering API used by the engine loop and scenes.
//
// A Renderer is also the sprite.Surface of the sprite pool: per-sprite transform buffers and
// descriptor sets are allocated through it, and it owns the per-frame fences that make deferred
// sprite deletion safe. Every method must be called from the render goroutine.
//
// Frame protocol:
//  1. BeginFrame waits the current frame slot's fence, acquires the surface and returns the slot
//  2. the caller ticks the sprite pool with that slot and records DrawSprite/DrawFullscreen calls
//  3. EndFrame flushes mapped transform memory, submits and arms the slot's fence
//  4. Present presents and advances the slot to (slot + 1) % FramesInFlight
type Renderer interface {
	sprite.Surface

	// Pipeline retrieves the registered Pipeline for a key, or nil.
	//
	// Parameters:
	//   - key: the pipeline key
	//
	// Returns:
	//   - pipeline.Pipeline: the pipeline or nil
	Pipeline(key string) pipeline.Pipeline

	// RegisterPipelines compiles and caches pipelines by key. Already registered keys are skipped.
	//
	// Parameters:
	//   - pipelines: the pipelines to register
	//
	// Returns:
	//   - error: an error if compilation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// UploadTextures uploads the texture table sprites index into, replacing any previous table.
	// Texture i of the slice becomes TextureID i.
	//
	// Parameters:
	//   - textures: decoded RGBA8 textures
	//   - sampler: the sampler shared by every texture
	//
	// Returns:
	//   - error: ErrTooManyTextures or a backend error
	UploadTextures(textures []common.TextureStagingData, sampler common.SamplerStagingData) error

	// InitBindGroup creates uniform buffers and a bind group for a provider.
	//
	// Parameters:
	//   - provider: the provider receiving the GPU resources
	//   - descriptor: the layout descriptor of the group
	//   - bufferSizeOverrides: buffer sizes to use instead of MinBindingSize, keyed by binding (nil safe)
	//
	// Returns:
	//   - error: an error if resource creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error

	// WriteBuffers queues uniform writes. They are visible to the next submitted frame.
	//
	// Parameters:
	//   - writes: the writes to queue
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame waits for the current frame slot to retire and begins recording it.
	//
	// Returns:
	//   - int: the frame slot in [0, FramesInFlight())
	//   - error: ErrFrameInProgress or a surface acquisition error
	BeginFrame() (int, error)

	// DrawSprite records one quad draw with a sprite's descriptor set for the current frame.
	//
	// Parameters:
	//   - pipelineKey: the sprite pipeline key
	//   - set: the descriptor set returned by Sprite.DescriptorSet(frameIndex)
	//
	// Returns:
	//   - error: ErrPipelineNotFound, ErrFrameNotStarted or a backend error
	DrawSprite(pipelineKey string, set sprite.DescriptorSetID) error

	// DrawFullscreen records a fullscreen triangle draw.
	//
	// Parameters:
	//   - pipelineKey: the fullscreen pipeline key
	//   - bindGroups: providers bound in order of their Group()
	//
	// Returns:
	//   - error: ErrPipelineNotFound, ErrFrameNotStarted or a backend error
	DrawFullscreen(pipelineKey string, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndFrame flushes mapped memory and submits the recorded frame.
	//
	// Returns:
	//   - error: ErrFrameNotStarted or a submission error
	EndFrame() error

	// Present presents the frame and advances the frame slot.
	Present()

	// Resize waits for the GPU to idle and reconfigures the surface. Zero sizes are ignored.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// SetPresentMode changes the present mode. Takes effect on the next Resize.
	//
	// Parameters:
	//   - mode: the present mode
	SetPresentMode(mode PresentMode)

	// Width returns the configured surface width.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the configured surface height.
	//
	// Returns:
	//   - int: height in pixels
	Height() int

	// BackendType returns the backend in use.
	//
	// Returns:
	//   - RendererBackendType: the backend type
	BackendType() RendererBackendType

	// Stats returns statistics for the last submitted frame.
	//
	// Returns:
	//   - FrameStats: the frame statistics
	Stats() FrameStats

	// Release waits for the GPU and releases every resource.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer. The WGPU backend panics if the adapter, device or surface
// cannot be created. win may be nil for the headless backend, whose size comes from WithSize.
//
// Parameters:
//   - backendType: the backend to use
//   - win: the window providing the surface descriptor and initial size
//   - options: variadic list of RendererBuilderOption functions
//
// Returns:
//   - Renderer: the configured renderer
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:             &sync.Mutex{},
		logger:         zap.NewNop(),
		pipelineCache:  make(map[string]pipeline.Pipeline),
		backendType:    backendType,
		framesInFlight: 2,
		maxTextures:    64,
		width:          800,
		height:         800,
	}
	for _, opt := range options {
		opt(r)
	}
	if win != nil {
		r.width, r.height = win.Width(), win.Height()
	}

	switch backendType {
	case BackendTypeHeadless:
		r.backend = newHeadlessRendererBackend(r.framesInFlight)
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(win.SurfaceDescriptor(), r.forceFallbackAdapter, r.framesInFlight, r.logger)
	}
	r.backend.SetPresentMode(r.presentMode)
	r.backend.ConfigureSurface(r.width, r.height)

	r.logger.Info("renderer ready",
		zap.Stringer("backend", backendType),
		zap.Int("framesInFlight", r.framesInFlight),
		zap.Int("width", r.width),
		zap.Int("height", r.height),
	)
	return r
}

func (r *renderer) AllocateTransformBuffer() (sprite.BufferID, error) {
	return r.backend.AllocateTransformBuffer()
}

func (r *renderer) Map(id sprite.BufferID) ([]byte, error) {
	return r.backend.Map(id)
}

func (r *renderer) FreeBuffer(id sprite.BufferID) {
	r.backend.FreeBuffer(id)
}

func (r *renderer) AllocateDescriptorSet() (sprite.DescriptorSetID, error) {
	return r.backend.AllocateDescriptorSet()
}

func (r *renderer) Bind(set sprite.DescriptorSetID, buffer sprite.BufferID, texture sprite.TextureID) error {
	return r.backend.Bind(set, buffer, texture)
}

func (r *renderer) FreeDescriptorSet(set sprite.DescriptorSetID) {
	r.backend.FreeDescriptorSet(set)
}

func (r *renderer) FramesInFlight() int {
	return r.framesInFlight
}

func (r *renderer) CurrentFrameIndex() int {
	return r.frameIndex
}

func (r *renderer) TextureCount() int {
	return r.backend.TextureCount()
}

func (r *renderer) WaitIdle() {
	r.backend.WaitIdle()
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.Key()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return fmt.Errorf("register pipeline %s: %w", key, err)
		}
		r.pipelineCache[key] = p
	}
	return nil
}

func (r *renderer) UploadTextures(textures []common.TextureStagingData, sampler common.SamplerStagingData) error {
	if len(textures) > r.maxTextures {
		return fmt.Errorf("upload %d textures (limit %d): %w", len(textures), r.maxTextures, ErrTooManyTextures)
	}
	return r.backend.UploadTextures(textures, sampler)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error {
	return r.backend.InitBindGroup(provider, descriptor, bufferSizeOverrides)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.backend.WriteBuffers(writes)
}

func (r *renderer) BeginFrame() (int, error) {
	if r.recording {
		return r.frameIndex, ErrFrameInProgress
	}
	r.backend.WaitFrame(r.frameIndex)
	if err := r.backend.BeginFrame(r.frameIndex); err != nil {
		return r.frameIndex, err
	}
	r.recording = true
	return r.frameIndex, nil
}

func (r *renderer) lookup(key string) (pipeline.Pipeline, error) {
	r.mu.Lock()
	p, exists := r.pipelineCache[key]
	r.mu.Unlock()
	if !exists {
		return nil, fmt.Errorf("%q: %w", key, ErrPipelineNotFound)
	}
	if !r.recording {
		return nil, ErrFrameNotStarted
	}
	return p, nil
}

func (r *renderer) DrawSprite(pipelineKey string, set sprite.DescriptorSetID) error {
	p, err := r.lookup(pipelineKey)
	if err != nil {
		return err
	}
	return r.backend.DrawSprite(p, set)
}

func (r *renderer) DrawFullscreen(pipelineKey string, bindGroups []bind_group_provider.BindGroupProvider) error {
	p, err := r.lookup(pipelineKey)
	if err != nil {
		return err
	}
	return r.backend.DrawFullscreen(p, bindGroups)
}

func (r *renderer) EndFrame() error {
	if !r.recording {
		return ErrFrameNotStarted
	}
	r.recording = false
	return r.backend.EndFrame(r.frameIndex)
}

func (r *renderer) Present() {
	r.backend.Present()
	r.frameIndex = (r.frameIndex + 1) % r.framesInFlight
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.backend.WaitIdle()
	r.width, r.height = width, height
	r.backend.ConfigureSurface(width, height)
	r.logger.Debug("surface configured", zap.Int("width", width), zap.Int("height", height))
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.presentMode = mode
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Width() int {
	return r.width
}

func (r *renderer) Height() int {
	return r.height
}

func (r *renderer) BackendType() RendererBackendType {
	return r.backendType
}

func (r *renderer) Stats() FrameStats {
	return r.backend.Stats()
}

func (r *renderer) Release() {
	r.backend.WaitIdle()
	r.backend.Release()
}
