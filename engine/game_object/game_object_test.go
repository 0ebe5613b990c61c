package game_object

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-chess/common"
	"github.com/Carmen-Shannon/oxy-chess/engine/renderer"
	"github.com/Carmen-Shannon/oxy-chess/engine/sprite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPool(t *testing.T, capacity int) sprite.Pool {
	t.Helper()
	r := renderer.NewRenderer(renderer.BackendTypeHeadless, nil)
	staging := make([]common.TextureStagingData, 4)
	for i := range staging {
		staging[i] = common.TextureStagingData{Pixels: make([]byte, 4), Width: 1, Height: 1}
	}
	require.NoError(t, r.UploadTextures(staging, common.SamplerStagingData{}))

	p, err := sprite.NewPool(r, sprite.WithCapacity(capacity))
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

func TestAttachSpawnsEnabledObjects(t *testing.T) {
	p := newPool(t, 4)
	shown := NewGameObject(WithID(1), WithPosition(0.25, -0.5), WithLayer(sprite.LayerGround), WithTexture(2))
	hidden := NewGameObject(WithID(2), WithEnabled(false))

	require.NoError(t, shown.Attach(p))
	require.NoError(t, hidden.Attach(p))

	assert.True(t, shown.Visible())
	assert.False(t, hidden.Visible())
	assert.Equal(t, 1, p.LiveCount())

	s, ok := p.Sprite(shown.Handle().Index())
	require.True(t, ok)
	assert.Equal(t, shown.Desc(), s.Desc)
	assert.Equal(t, shown.Handle().ID(), s.ID)
}

func TestMoveToUpdatesDescAndSprite(t *testing.T) {
	p := newPool(t, 2)
	obj := NewGameObject()
	require.NoError(t, obj.MoveTo(0.5, 0.5))
	require.NoError(t, obj.Attach(p))

	require.NoError(t, obj.MoveTo(-0.75, 0.125))
	x, y := obj.Position()
	assert.Equal(t, float32(-0.75), x)
	assert.Equal(t, float32(0.125), y)

	s, ok := p.Sprite(obj.Handle().Index())
	require.True(t, ok)
	assert.Equal(t, float32(-0.75), s.Desc.X)
	assert.Equal(t, float32(0.125), s.Desc.Y)
}

func TestSetEnabledTogglesSprite(t *testing.T) {
	p := newPool(t, 2)
	obj := NewGameObject()
	require.NoError(t, obj.Attach(p))

	require.NoError(t, obj.SetEnabled(false))
	assert.False(t, obj.Visible())
	assert.False(t, obj.Enabled())
	assert.Equal(t, 0, p.LiveCount())

	require.NoError(t, obj.SetEnabled(false))
	require.NoError(t, obj.SetEnabled(true))
	assert.True(t, obj.Visible())
	assert.Equal(t, 1, p.LiveCount())
}

func TestSetTextureReplacesSprite(t *testing.T) {
	p := newPool(t, 4)
	obj := NewGameObject(WithTexture(1))
	require.NoError(t, obj.Attach(p))
	before := obj.Handle().ID()

	require.NoError(t, obj.SetTexture(3))
	assert.NotEqual(t, before, obj.Handle().ID())
	assert.Equal(t, 1, p.LiveCount())
	assert.Equal(t, 2, p.ActiveCount())

	s, ok := p.Sprite(obj.Handle().Index())
	require.True(t, ok)
	assert.Equal(t, sprite.TextureID(3), s.Desc.Texture)

	detached := NewGameObject(WithTexture(1))
	require.NoError(t, detached.SetTexture(2))
	assert.Equal(t, sprite.TextureID(2), detached.Desc().Texture)
	assert.False(t, detached.Visible())
}

func TestRecreateAfterClear(t *testing.T) {
	p := newPool(t, 4)
	shown := NewGameObject()
	hidden := NewGameObject(WithEnabled(false))
	require.NoError(t, shown.Attach(p))
	require.NoError(t, hidden.Attach(p))

	require.NoError(t, p.Clear())
	assert.False(t, shown.Visible())

	require.NoError(t, shown.Recreate())
	require.NoError(t, hidden.Recreate())
	assert.True(t, shown.Visible())
	assert.False(t, hidden.Visible())
	assert.Equal(t, 1, p.LiveCount())

	// a second Recreate keeps the existing sprite
	id := shown.Handle().ID()
	require.NoError(t, shown.Recreate())
	assert.Equal(t, id, shown.Handle().ID())
}

func TestAttachPropagatesCapacityErrors(t *testing.T) {
	p := newPool(t, 1)
	require.NoError(t, NewGameObject().Attach(p))
	err := NewGameObject(WithID(9)).Attach(p)
	assert.ErrorIs(t, err, sprite.ErrCapacityExceeded)
}

func TestReleaseKeepsEnabled(t *testing.T) {
	p := newPool(t, 2)
	obj := NewGameObject()
	require.NoError(t, obj.Attach(p))
	require.NoError(t, obj.Release())
	assert.True(t, obj.Enabled())
	assert.False(t, obj.Visible())
	require.NoError(t, obj.Release())
}
