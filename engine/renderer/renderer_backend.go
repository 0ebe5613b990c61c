package renderer

import (
	"github.com/Carmen-Shannon/oxy-chess/common"
	"github.com/Carmen-Shannon/oxy-chess/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-chess/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-chess/engine/sprite"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU rendering backend drawing to a window surface.
	BackendTypeWGPU RendererBackendType = iota

	// BackendTypeHeadless selects the in-memory backend that records draws instead of
	// submitting them to a GPU. Used by tests and --headless runs.
	BackendTypeHeadless
)

func (t RendererBackendType) String() string {
	switch t {
	case BackendTypeWGPU:
		return "wgpu"
	case BackendTypeHeadless:
		return "headless"
	}
	return "unknown"
}

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately. May tear.
	PresentModeUncapped
)

// ParsePresentMode maps a configuration string to a PresentMode. Unknown values select VSync.
//
// Parameters:
//   - s: "vsync" or "uncapped"
//
// Returns:
//   - PresentMode: the parsed mode
func ParsePresentMode(s string) PresentMode {
	if s == "uncapped" {
		return PresentModeUncapped
	}
	return PresentModeVSync
}

// DrawRecord is one draw captured by the headless backend.
type DrawRecord struct {
	Pipeline string
	Set      sprite.DescriptorSetID
	Texture  sprite.TextureID
	MVP      [16]float32
}

// FrameStats describes the most recently submitted frame.
type FrameStats struct {
	// Frame is the number of frames submitted so far.
	Frame uint64
	// DrawCalls is the number of draws recorded in the last frame.
	DrawCalls int
	// Draws holds the recorded draws of the last frame. Only the headless backend fills it.
	Draws []DrawRecord
	// Violations counts frees or writes of resources still referenced by an unfinished frame.
	// Only the headless backend tracks it.
	Violations int
}

// RendererBackend is the backend interface behind the Renderer. Frame indices passed to it are
// always in [0, framesInFlight).
type RendererBackend interface {
	AllocateTransformBuffer() (sprite.BufferID, error)
	Map(id sprite.BufferID) ([]byte, error)
	FreeBuffer(id sprite.BufferID)
	AllocateDescriptorSet() (sprite.DescriptorSetID, error)
	Bind(set sprite.DescriptorSetID, buffer sprite.BufferID, texture sprite.TextureID) error
	FreeDescriptorSet(set sprite.DescriptorSetID)
	TextureCount() int
	WaitIdle()

	// ConfigureSurface (re)creates the swapchain and depth attachment for a new surface size.
	ConfigureSurface(width, height int)

	// SetPresentMode sets the present mode used by the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// RegisterRenderPipeline compiles a pipeline description.
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// UploadTextures creates one texture per staging entry, indexed by position, sharing one sampler.
	UploadTextures(textures []common.TextureStagingData, sampler common.SamplerStagingData) error

	// InitBindGroup creates buffers and a bind group for a provider from a layout descriptor.
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error

	// WriteBuffers queues uniform writes for providers created by InitBindGroup.
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// WaitFrame blocks until the last submission made from frame slot frame has completed.
	WaitFrame(frame int)

	// BeginFrame acquires the surface texture and opens the render pass for frame slot frame.
	BeginFrame(frame int) error

	// DrawSprite draws the shared quad with a sprite descriptor set bound at group 0.
	DrawSprite(p pipeline.Pipeline, set sprite.DescriptorSetID) error

	// DrawFullscreen draws a generated fullscreen triangle with the providers' bind groups.
	DrawFullscreen(p pipeline.Pipeline, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndFrame flushes mapped transform memory, submits the frame and arms the frame's fence.
	EndFrame(frame int) error

	// Present presents the acquired surface texture.
	Present()

	// Stats returns statistics of the last submitted frame.
	Stats() FrameStats

	// Release frees every backend resource.
	Release()
}
