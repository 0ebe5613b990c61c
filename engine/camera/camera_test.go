package camera

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-chess/common"
	"github.com/Carmen-Shannon/oxy-chess/engine/input"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCameraDefaults(t *testing.T) {
	c := NewCamera()
	x, y, z := c.Position()
	assert.Equal(t, [3]float32{0, 0, 0}, [3]float32{x, y, z})
	assert.Equal(t, float32(1), c.FocalLength())
	require.NotNil(t, c.BindGroupProvider())
}

func TestFocalLengthClamps(t *testing.T) {
	c := NewCamera(WithFocalLength(2), WithFocalLimits(0.5, 4))
	c.Zoom(10)
	assert.Equal(t, float32(4), c.FocalLength())
	c.SetFocalLength(0.1)
	assert.Equal(t, float32(0.5), c.FocalLength())
	c.Zoom(0.25)
	assert.Equal(t, float32(0.75), c.FocalLength())
}

func TestTranslate(t *testing.T) {
	c := NewCamera(WithPosition(1, 2, 3))
	c.Translate(0.5, -1, 2)
	x, y, z := c.Position()
	assert.Equal(t, [3]float32{1.5, 1, 5}, [3]float32{x, y, z})
}

func TestUniformMarshal(t *testing.T) {
	c := NewCamera(WithPosition(1, -2, 3), WithFocalLength(1.5))
	u := c.Uniform(800, 600, 2.5, 128, 8, 2)
	assert.Equal(t, 48, u.Size())

	buf := u.Marshal()
	require.Len(t, buf, 48)
	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	assert.Equal(t, float32(1), f(0))
	assert.Equal(t, float32(-2), f(4))
	assert.Equal(t, float32(3), f(8))
	assert.Equal(t, float32(1.5), f(12))
	assert.Equal(t, float32(800), f(16))
	assert.Equal(t, float32(600), f(20))
	assert.Equal(t, float32(2.5), f(24))
	assert.Equal(t, float32(128), f(28))
	assert.Equal(t, float32(8), f(32))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(buf[36:]))
}

func TestControllerMovesCamera(t *testing.T) {
	c := NewCamera()
	cc := NewCameraController(WithMoveSpeed(2), WithZoomSpeed(0.5))
	state := input.NewState(800, 800)

	state.Apply(input.Event{Type: input.EventKeyDown, Key: common.KeyRight})
	state.Apply(input.Event{Type: input.EventKeyDown, Key: common.KeyUp})
	state.Apply(input.Event{Type: input.EventKeyDown, Key: common.KeyA})
	state.Apply(input.Event{Type: input.EventScroll, Delta: 1})
	cc.Update(c, state, 0.5)

	x, y, z := c.Position()
	assert.Equal(t, [3]float32{1, 1, -1}, [3]float32{x, y, z})
	assert.Equal(t, float32(1.5), c.FocalLength())

	// opposite keys cancel
	state.EndUpdate()
	state.Apply(input.Event{Type: input.EventKeyDown, Key: common.KeyLeft})
	state.Apply(input.Event{Type: input.EventKeyUp, Key: common.KeyUp})
	state.Apply(input.Event{Type: input.EventKeyUp, Key: common.KeyA})
	cc.Update(c, state, 0.5)
	x, y, z = c.Position()
	assert.Equal(t, [3]float32{1, 1, -1}, [3]float32{x, y, z})
	assert.Equal(t, float32(1.5), c.FocalLength())

	cc.SetMoveSpeed(4)
	assert.Equal(t, float32(4), cc.MoveSpeed())
	assert.Equal(t, float32(0.5), cc.ZoomSpeed())
}
