package pipeline

import (
	"github.com/Carmen-Shannon/oxy-chess/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithVertexShader sets the vertex stage.
//
// Parameters:
//   - s: the vertex shader
//
// Returns:
//   - PipelineBuilderOption: a function that sets the vertex shader
func WithVertexShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexShader = s
	}
}

// WithFragmentShader sets the fragment stage.
//
// Parameters:
//   - s: the fragment shader
//
// Returns:
//   - PipelineBuilderOption: a function that sets the fragment shader
func WithFragmentShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.fragmentShader = s
	}
}

// WithDepthTest enables or disables depth testing and depth writes together.
//
// Parameters:
//   - enabled: whether depth testing and writing are enabled
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth state
func WithDepthTest(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthTestEnabled = enabled
		p.depthWriteEnabled = enabled
	}
}

// WithDepthCompare sets the depth comparison function.
//
// Parameters:
//   - compare: the compare function
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth compare function
func WithDepthCompare(compare wgpu.CompareFunction) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthCompare = compare
	}
}

// WithBlendEnabled enables or disables alpha blending.
//
// Parameters:
//   - enabled: whether blending is enabled
//
// Returns:
//   - PipelineBuilderOption: a function that sets the blend toggle
func WithBlendEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendEnabled = enabled
	}
}

// WithCullMode sets the face culling mode.
//
// Parameters:
//   - mode: the cull mode
//
// Returns:
//   - PipelineBuilderOption: a function that sets the cull mode
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithFullscreen marks the pipeline as a fullscreen pass: no vertex buffer, no depth, no blending.
//
// Returns:
//   - PipelineBuilderOption: a function that configures a fullscreen pass
func WithFullscreen() PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexBuffer = false
		p.depthTestEnabled = false
		p.depthWriteEnabled = false
		p.blendEnabled = false
	}
}
