package scene

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-chess/common"
	"github.com/Carmen-Shannon/oxy-chess/engine/game_object"
	"github.com/Carmen-Shannon/oxy-chess/engine/renderer"
	"github.com/Carmen-Shannon/oxy-chess/engine/sprite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(t *testing.T, capacity int) Context {
	t.Helper()
	r := renderer.NewRenderer(renderer.BackendTypeHeadless, nil)
	staging := make([]common.TextureStagingData, 2)
	for i := range staging {
		staging[i] = common.TextureStagingData{Pixels: make([]byte, 4), Width: 1, Height: 1}
	}
	require.NoError(t, r.UploadTextures(staging, common.SamplerStagingData{}))

	p, err := sprite.NewPool(r, sprite.WithCapacity(capacity))
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return Context{Renderer: r, Pool: p}
}

func TestNewBaseDefaults(t *testing.T) {
	b := NewBase()
	assert.Equal(t, "scene", b.Name())
	assert.True(t, b.Active())
	assert.False(t, b.Initialized())

	b = NewBase(WithName("menu"), WithActive(false))
	assert.Equal(t, "menu", b.Name())
	assert.False(t, b.Active())
	b.SetActive(true)
	b.SetName("board")
	assert.True(t, b.Active())
	assert.Equal(t, "board", b.Name())
}

func TestInitAttachesRegisteredObjects(t *testing.T) {
	ctx := newContext(t, 4)
	b := NewBase()

	first := game_object.NewGameObject(game_object.WithID(1))
	hidden := game_object.NewGameObject(game_object.WithID(2), game_object.WithEnabled(false))
	_, err := b.Add(first)
	require.NoError(t, err)
	_, err = b.Add(hidden)
	require.NoError(t, err)
	assert.False(t, first.Visible())

	require.NoError(t, b.Init(ctx))
	assert.True(t, b.Initialized())
	assert.True(t, first.Visible())
	assert.False(t, hidden.Visible())
	assert.Equal(t, 1, ctx.Pool.LiveCount())
	assert.NotNil(t, b.Logger())

	late := game_object.NewGameObject(game_object.WithID(3))
	id, err := b.Add(late)
	require.NoError(t, err)
	assert.True(t, late.Visible())
	assert.Same(t, late, b.Get(id))
	assert.Equal(t, 3, b.Count())
}

func TestInitRequiresPool(t *testing.T) {
	assert.Error(t, NewBase().Init(Context{}))
}

func TestRemoveReleasesSprite(t *testing.T) {
	ctx := newContext(t, 4)
	b := NewBase()
	require.NoError(t, b.Init(ctx))

	a := game_object.NewGameObject(game_object.WithID(1))
	c := game_object.NewGameObject(game_object.WithID(2))
	idA, err := b.Add(a)
	require.NoError(t, err)
	_, err = b.Add(c)
	require.NoError(t, err)

	require.NoError(t, b.Remove(idA))
	assert.False(t, a.Visible())
	assert.Nil(t, b.Get(idA))
	assert.Equal(t, []game_object.GameObject{c}, b.Objects())
	assert.Equal(t, 1, ctx.Pool.LiveCount())

	// unknown ids are ignored
	assert.NoError(t, b.Remove(idA))
}

func TestRecreateAfterPoolClear(t *testing.T) {
	ctx := newContext(t, 4)
	b := NewBase()
	require.NoError(t, b.Init(ctx))

	objs := []game_object.GameObject{
		game_object.NewGameObject(game_object.WithID(1)),
		game_object.NewGameObject(game_object.WithID(2), game_object.WithEnabled(false)),
		game_object.NewGameObject(game_object.WithID(3), game_object.WithTexture(1)),
	}
	for _, obj := range objs {
		_, err := b.Add(obj)
		require.NoError(t, err)
	}
	require.Equal(t, 2, ctx.Pool.LiveCount())

	require.NoError(t, ctx.Pool.Clear())
	assert.False(t, objs[0].Visible())
	assert.Equal(t, 0, ctx.Pool.LiveCount())

	require.NoError(t, b.Recreate())
	assert.True(t, objs[0].Visible())
	assert.False(t, objs[1].Visible())
	assert.True(t, objs[2].Visible())
	assert.Equal(t, 2, ctx.Pool.LiveCount())
}

func TestReleaseEmptiesRegistry(t *testing.T) {
	ctx := newContext(t, 4)
	b := NewBase()
	require.NoError(t, b.Init(ctx))
	for i := range 3 {
		_, err := b.Add(game_object.NewGameObject(game_object.WithID(uint64(i + 1))))
		require.NoError(t, err)
	}

	b.Release()
	assert.Equal(t, 0, b.Count())
	assert.Equal(t, 0, ctx.Pool.LiveCount())
	assert.NoError(t, b.Update(0.01, nil))
	assert.NoError(t, b.Draw(0))
}
