package fractal_scene

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-chess/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-chess/engine/renderer/shader"
)

// NewFractalPipeline builds the fullscreen raymarch pipeline. An empty fragmentPath selects the
// embedded WGSL source.
//
// Parameters:
//   - key: the pipeline key
//   - fragmentPath: optional raymarch fragment shader file
//
// Returns:
//   - pipeline.Pipeline: the pipeline description, ready for RegisterPipelines
//   - error: an error if the shader cannot be read or has no entry point
func NewFractalPipeline(key, fragmentPath string) (pipeline.Pipeline, error) {
	vs, err := shader.NewShader(key+"_vs", shader.ShaderTypeVertex, shader.FractalVertexSource)
	if err != nil {
		return nil, fmt.Errorf("fractal pipeline: %w", err)
	}
	fs, err := shader.NewShaderFromPath(key+"_fs", shader.ShaderTypeFragment, fragmentPath, shader.FractalFragmentSource)
	if err != nil {
		return nil, fmt.Errorf("fractal pipeline: %w", err)
	}
	return pipeline.NewPipeline(key,
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithFullscreen(),
	), nil
}
