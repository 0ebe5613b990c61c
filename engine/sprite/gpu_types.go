package sprite

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUSpriteUniformSource is the canonical WGSL definition of the SpriteUniform struct.
// Matches GPUSpriteUniform layout exactly (64 bytes).
//
//go:embed assets/sprite_uniform.wgsl
var GPUSpriteUniformSource string

// GPUSpriteUniform is the GPU-aligned representation of one sprite's transform buffer.
// Size: 64 bytes.
type GPUSpriteUniform struct {
	MVP [16]float32 // offset 0: model-view-projection matrix (mat4x4<f32>)
}

// Size returns the size of the GPUSpriteUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPUSpriteUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSpriteUniform struct into a new byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUSpriteUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	g.MarshalTo(buf)
	return buf
}

// MarshalTo serializes the uniform into dst, which must hold at least Size() bytes.
//
// Parameters:
//   - dst: destination memory, typically a mapped transform buffer
func (g *GPUSpriteUniform) MarshalTo(dst []byte) {
	for i := range 16 {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(g.MVP[i]))
	}
}

// UnmarshalSpriteUniform decodes a transform buffer written by MarshalTo.
//
// Parameters:
//   - src: at least 64 bytes of uniform data
//
// Returns:
//   - GPUSpriteUniform: the decoded uniform
func UnmarshalSpriteUniform(src []byte) GPUSpriteUniform {
	var g GPUSpriteUniform
	for i := range 16 {
		g.MVP[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
	}
	return g
}
