package engine

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-chess/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-chess/engine/renderer/shader"
)

// NewSpritePipeline builds the textured quad pipeline every sprite is drawn with.
// Empty paths select the embedded WGSL sources.
//
// Parameters:
//   - key: the pipeline key sprites are drawn with
//   - vertexPath: optional vertex shader file
//   - fragmentPath: optional fragment shader file
//
// Returns:
//   - pipeline.Pipeline: the pipeline description, ready for RegisterPipelines
//   - error: an error if a shader cannot be read or has no entry point
func NewSpritePipeline(key, vertexPath, fragmentPath string) (pipeline.Pipeline, error) {
	vs, err := shader.NewShaderFromPath(key+"_vs", shader.ShaderTypeVertex, vertexPath, shader.SpriteVertexSource)
	if err != nil {
		return nil, fmt.Errorf("sprite pipeline: %w", err)
	}
	fs, err := shader.NewShaderFromPath(key+"_fs", shader.ShaderTypeFragment, fragmentPath, shader.SpriteFragmentSource)
	if err != nil {
		return nil, fmt.Errorf("sprite pipeline: %w", err)
	}
	return pipeline.NewPipeline(key,
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
	), nil
}
