package shader

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
)

// SpriteVertexSource is the default vertex stage for textured sprite quads.
//
//go:embed assets/sprite_vertex.wgsl
var SpriteVertexSource string

// SpriteFragmentSource is the default fragment stage for textured sprite quads.
//
//go:embed assets/sprite_fragment.wgsl
var SpriteFragmentSource string

// FractalVertexSource emits the fullscreen triangle of the raymarch pass.
//
//go:embed assets/fractal_vertex.wgsl
var FractalVertexSource string

// FractalFragmentSource raymarches the selected fractal from the camera uniform.
//
//go:embed assets/fractal_fragment.wgsl
var FractalFragmentSource string

// ShaderType identifies the pipeline stage a shader runs in.
type ShaderType int

const (
	// ShaderTypeVertex is a vertex stage shader.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is a fragment stage shader.
	ShaderTypeFragment
)

func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	}
	return fmt.Sprintf("shader(%d)", int(t))
}

type shader struct {
	key                        string
	source                     string
	shaderType                 ShaderType
	entryPoint                 string
	vertexLayouts              []wgpu.VertexBufferLayout
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
}

// Shader is a WGSL shader stage together with the layouts reflected from its source.
type Shader interface {
	// Key returns the unique identifier for this shader.
	//
	// Returns:
	//   - string: the shader key
	Key() string

	// Source returns the WGSL source code.
	//
	// Returns:
	//   - string: the WGSL source
	Source() string

	// ShaderType returns the stage this shader runs in.
	//
	// Returns:
	//   - ShaderType: the shader stage
	ShaderType() ShaderType

	// EntryPoint returns the name of the stage's entry function.
	//
	// Returns:
	//   - string: the entry point name
	EntryPoint() string

	// VertexLayouts returns the vertex buffer layouts reflected from vertex input structs.
	// Fragment shaders and vertex shaders without vertex inputs return nil.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the vertex buffer layouts in declaration order
	VertexLayouts() []wgpu.VertexBufferLayout

	// BindGroupLayoutDescriptors returns the bind group layouts declared by the shader keyed by group index.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: the layout descriptors
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor
}

var _ Shader = &shader{}

// NewShader creates a Shader from WGSL source and reflects its entry point and layouts.
//
// Parameters:
//   - key: unique identifier for the shader
//   - shaderType: the stage the shader runs in
//   - source: WGSL source code
//
// Returns:
//   - Shader: the new shader
//   - error: error if the source has no entry point for the stage
func NewShader(key string, shaderType ShaderType, source string) (Shader, error) {
	s := &shader{
		key:        key,
		source:     source,
		shaderType: shaderType,
	}
	s.entryPoint = parseEntryPoint(source, shaderType)
	if s.entryPoint == "" {
		return nil, fmt.Errorf("shader %s: no @%s entry point", key, shaderType)
	}

	visibility := wgpu.ShaderStageFragment
	if shaderType == ShaderTypeVertex {
		visibility = wgpu.ShaderStageVertex
		s.vertexLayouts = parseVertexLayouts(source)
	}
	s.bindGroupLayoutDescriptors = parseBindGroupLayouts(source, visibility)
	return s, nil
}

// NewShaderFromPath reads WGSL source from path, falling back to fallback when path is empty.
//
// Parameters:
//   - key: unique identifier for the shader
//   - shaderType: the stage the shader runs in
//   - path: file to read, or empty to use fallback
//   - fallback: source used when path is empty
//
// Returns:
//   - Shader: the new shader
//   - error: error if the file cannot be read or has no entry point
func NewShaderFromPath(key string, shaderType ShaderType, path, fallback string) (Shader, error) {
	if path == "" {
		return NewShader(key, shaderType, fallback)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shader %s: read %s: %w", key, path, err)
	}
	return NewShader(key, shaderType, string(data))
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) VertexLayouts() []wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}
