package sprite

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-chess/common"
)

// Layer is the z-layer of a sprite. Higher layers are drawn on top of lower ones regardless of
// insertion order because the layer is encoded in the transform's depth.
type Layer int

const (
	LayerBackground Layer = iota
	LayerGround
	LayerAir
	LayerOverlay
)

// Depth returns the view-space z used for the layer.
func (l Layer) Depth() float32 {
	return float32(l) / 10
}

// Valid reports whether l is one of the defined layers.
func (l Layer) Valid() bool {
	return l >= LayerBackground && l <= LayerOverlay
}

func (l Layer) String() string {
	switch l {
	case LayerBackground:
		return "background"
	case LayerGround:
		return "ground"
	case LayerAir:
		return "air"
	case LayerOverlay:
		return "overlay"
	}
	return fmt.Sprintf("layer(%d)", int(l))
}

// Desc is the placement of one sprite. X and Y are in normalized device coordinates, Width and
// Height are half-extents of the unit quad, Rotation is in radians around the Z axis.
type Desc struct {
	X, Y          float32
	Layer         Layer
	Width, Height float32
	Rotation      float32
	Texture       TextureID
}

// Transform computes the model-view-projection matrix for the sprite:
// ortho * translate(x, y, depth(layer)) * rotateZ(rotation) * scale(width, height, 1).
//
// Returns:
//   - [16]float32: the column-major MVP matrix
func (d Desc) Transform() [16]float32 {
	var proj, step, out [16]float32
	common.Ortho(proj[:], -1, 1, -1, 1, -1, 1)

	common.Translate(step[:], d.X, d.Y, d.Layer.Depth())
	common.Mul4(out[:], proj[:], step[:])

	common.RotateZ(step[:], d.Rotation)
	common.Mul4(out[:], out[:], step[:])

	common.Scale(step[:], d.Width, d.Height, 1)
	common.Mul4(out[:], out[:], step[:])
	return out
}
