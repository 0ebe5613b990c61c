package common

import (
	"math"
	"unsafe"
)

// Identity resets a 4x4 matrix (flat slice) to the identity matrix.
// The matrix is stored in column-major order.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// The returned slice shares memory with the input and must not outlive it.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), int(size)*len(data))
}

// Mul4 multiplies two 4x4 matrices and stores the result in out.
// All matrices are stored in column-major order (WebGPU convention).
// Result: out = a * b. out may alias a or b.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - a: left-hand matrix (16 elements)
//   - b: right-hand matrix (16 elements)
func Mul4(out, a, b []float32) {
	var buf [16]float32
	for i := 0; i < 4; i++ { // column of B
		for j := 0; j < 4; j++ { // row of A
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += a[k*4+j] * b[i*4+k]
			}
			buf[i*4+j] = sum
		}
	}
	copy(out, buf[:])
}

// Ortho creates a right-handed orthographic projection matrix mapping depth into
// the WebGPU clip range [0, 1]. A point at z = near maps to depth 0 and z = far to depth 1,
// measured along -Z.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - left, right: horizontal extents of the view volume
//   - bottom, top: vertical extents of the view volume
//   - near, far: depth extents of the view volume (must differ)
func Ortho(out []float32, left, right, bottom, top, near, far float32) {
	Identity(out)
	out[0] = 2 / (right - left)
	out[5] = 2 / (top - bottom)
	out[10] = -1 / (far - near)
	out[12] = -(right + left) / (right - left)
	out[13] = -(top + bottom) / (top - bottom)
	out[14] = -near / (far - near)
}

// Translate writes a translation matrix into out.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - x, y, z: translation along each axis
func Translate(out []float32, x, y, z float32) {
	Identity(out)
	out[12] = x
	out[13] = y
	out[14] = z
}

// RotateZ writes a rotation of angle radians around the Z axis into out.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - angle: counter-clockwise rotation in radians
func RotateZ(out []float32, angle float32) {
	c := float32(math.Cos(float64(angle)))
	s := float32(math.Sin(float64(angle)))
	Identity(out)
	out[0] = c
	out[1] = s
	out[4] = -s
	out[5] = c
}

// Scale writes a non-uniform scale matrix into out.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - x, y, z: scale factors along each axis
func Scale(out []float32, x, y, z float32) {
	Identity(out)
	out[0] = x
	out[5] = y
	out[10] = z
}

// TransformPoint multiplies the column vector (x, y, z, 1) by m and returns the
// result after the perspective divide.
//
// Parameters:
//   - m: column-major 4x4 matrix (16 elements)
//   - x, y, z: point coordinates
//
// Returns:
//   - [3]float32: the transformed point
func TransformPoint(m []float32, x, y, z float32) [3]float32 {
	w := m[3]*x + m[7]*y + m[11]*z + m[15]
	if w == 0 {
		w = 1
	}
	return [3]float32{
		(m[0]*x + m[4]*y + m[8]*z + m[12]) / w,
		(m[1]*x + m[5]*y + m[9]*z + m[13]) / w,
		(m[2]*x + m[6]*y + m[10]*z + m[14]) / w,
	}
}
