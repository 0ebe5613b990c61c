package pipeline

import (
	"github.com/Carmen-Shannon/oxy-chess/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	key string

	vertexShader, fragmentShader shader.Shader

	// renderPipeline is nil until the renderer backend compiles the pipeline
	renderPipeline *wgpu.RenderPipeline

	depthTestEnabled  bool
	depthWriteEnabled bool
	depthCompare      wgpu.CompareFunction
	blendEnabled      bool
	blendState        *wgpu.BlendState
	topology          wgpu.PrimitiveTopology
	cullMode          wgpu.CullMode
	vertexBuffer      bool
}

// Pipeline describes a render pipeline: its shader stages plus the fixed-function state used
// when the renderer backend compiles it. Sprites and the fullscreen raymarch both draw through one.
type Pipeline interface {
	// Key returns the unique key of this pipeline used for lookups in the renderer.
	//
	// Returns:
	//   - string: the pipeline key
	Key() string

	// Shader returns the shader bound to the given stage, or nil if none is set.
	//
	// Parameters:
	//   - shaderType: the stage to look up
	//
	// Returns:
	//   - shader.Shader: the stage shader
	Shader(shaderType shader.ShaderType) shader.Shader

	// DepthTestEnabled reports whether fragments are depth tested.
	//
	// Returns:
	//   - bool: true if depth testing is enabled
	DepthTestEnabled() bool

	// DepthWriteEnabled reports whether fragments write depth.
	//
	// Returns:
	//   - bool: true if depth writing is enabled
	DepthWriteEnabled() bool

	// DepthCompare returns the depth comparison used when depth testing is enabled.
	//
	// Returns:
	//   - wgpu.CompareFunction: the depth compare function
	DepthCompare() wgpu.CompareFunction

	// BlendState returns the color blend state, or nil when blending is disabled.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state
	BlendState() *wgpu.BlendState

	// Topology returns the primitive topology.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the primitive topology
	Topology() wgpu.PrimitiveTopology

	// CullMode returns the face culling mode.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode
	CullMode() wgpu.CullMode

	// UsesVertexBuffer reports whether draws bind the shared quad vertex and index buffers.
	// Fullscreen pipelines generate their vertices from the vertex index instead.
	//
	// Returns:
	//   - bool: true if the quad buffers are bound
	UsesVertexBuffer() bool

	// RenderPipeline returns the compiled pipeline, or nil before the backend has compiled it.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the compiled pipeline
	RenderPipeline() *wgpu.RenderPipeline

	// SetRenderPipeline stores the compiled pipeline.
	//
	// Parameters:
	//   - rp: the compiled WebGPU render pipeline
	SetRenderPipeline(rp *wgpu.RenderPipeline)
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a pipeline description. Defaults: depth test and write enabled with a
// Less comparison, alpha blending on, triangle list, no culling, quad vertex buffer bound.
//
// Parameters:
//   - key: the unique key for this pipeline
//   - opts: a variadic list of PipelineBuilderOption functions
//
// Returns:
//   - Pipeline: the new pipeline description
func NewPipeline(key string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		key:               key,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		depthCompare:      wgpu.CompareFunctionLess,
		blendEnabled:      true,
		blendState:        alphaBlend(),
		topology:          wgpu.PrimitiveTopologyTriangleList,
		cullMode:          wgpu.CullModeNone,
		vertexBuffer:      true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func alphaBlend() *wgpu.BlendState {
	return &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorSrcAlpha,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			Operation: wgpu.BlendOperationAdd,
		},
		Alpha: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			Operation: wgpu.BlendOperationAdd,
		},
	}
}

func (p *pipeline) Key() string {
	return p.key
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	default:
		return nil
	}
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) DepthCompare() wgpu.CompareFunction {
	if !p.depthTestEnabled {
		return wgpu.CompareFunctionAlways
	}
	return p.depthCompare
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	if !p.blendEnabled {
		return nil
	}
	return p.blendState
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) UsesVertexBuffer() bool {
	return p.vertexBuffer
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}
