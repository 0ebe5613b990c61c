package camera

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPURaymarchUniform is the GPU-aligned representation of the raymarch uniform buffer.
// Matches the RaymarchUniform struct of the fractal shader.
// Size: 48 bytes (WGSL uniform aligned).
type GPURaymarchUniform struct {
	Position    [3]float32 // offset  0: camera position (vec3<f32>)
	FocalLength float32    // offset 12: eye to image plane distance (f32)
	Resolution  [2]float32 // offset 16: surface size in pixels (vec2<f32>)
	Time        float32    // offset 24: seconds since scene start (f32)
	Steps       float32    // offset 28: maximum march steps (f32)
	Iterations  float32    // offset 32: fractal iterations (f32)
	SceneID     uint32     // offset 36: fractal selector (u32)
	_pad        [2]float32 // offset 40: padding to 48 bytes
}

// Size returns the size of the GPURaymarchUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (g *GPURaymarchUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPURaymarchUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPURaymarchUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Position[i]))
	}
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(g.FocalLength))
	binary.LittleEndian.PutUint32(buf[16:], math.Float32bits(g.Resolution[0]))
	binary.LittleEndian.PutUint32(buf[20:], math.Float32bits(g.Resolution[1]))
	binary.LittleEndian.PutUint32(buf[24:], math.Float32bits(g.Time))
	binary.LittleEndian.PutUint32(buf[28:], math.Float32bits(g.Steps))
	binary.LittleEndian.PutUint32(buf[32:], math.Float32bits(g.Iterations))
	binary.LittleEndian.PutUint32(buf[36:], g.SceneID)
	return buf
}
