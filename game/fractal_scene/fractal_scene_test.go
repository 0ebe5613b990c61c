package fractal_scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-chess/common"
	"github.com/Carmen-Shannon/oxy-chess/config"
	"github.com/Carmen-Shannon/oxy-chess/engine/input"
	"github.com/Carmen-Shannon/oxy-chess/engine/renderer"
	"github.com/Carmen-Shannon/oxy-chess/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-chess/engine/scene"
	"github.com/Carmen-Shannon/oxy-chess/engine/sprite"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSceneContext(t *testing.T) scene.Context {
	t.Helper()
	r := renderer.NewRenderer(renderer.BackendTypeHeadless, nil, renderer.WithSize(1024, 768))
	t.Cleanup(r.Release)
	p, err := sprite.NewPool(r, sprite.WithCapacity(4))
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return scene.Context{Renderer: r, Pool: p}
}

func press(st *input.State, keys ...uint32) {
	for _, k := range keys {
		st.Apply(input.Event{Type: input.EventKeyDown, Key: k})
	}
}

func release(st *input.State, keys ...uint32) {
	st.EndUpdate()
	for _, k := range keys {
		st.Apply(input.Event{Type: input.EventKeyUp, Key: k})
	}
}

func TestFractalPipeline(t *testing.T) {
	p, err := NewFractalPipeline("fractal", "")
	require.NoError(t, err)
	assert.False(t, p.UsesVertexBuffer())
	assert.False(t, p.DepthTestEnabled())
	assert.Nil(t, p.BlendState())

	vs := p.Shader(shader.ShaderTypeVertex)
	assert.Equal(t, "vs_main", vs.EntryPoint())
	assert.Empty(t, vs.VertexLayouts())

	fs := p.Shader(shader.ShaderTypeFragment)
	assert.Equal(t, "fs_main", fs.EntryPoint())
	layout, ok := fs.BindGroupLayoutDescriptors()[0]
	require.True(t, ok)
	require.Len(t, layout.Entries, 1)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, layout.Entries[0].Buffer.Type)
	// the reflected uniform size matches the host struct
	u := NewFractalScene().Uniform()
	assert.Equal(t, uint64(u.Size()), layout.Entries[0].Buffer.MinBindingSize)

	_, err = NewFractalPipeline("fractal", filepath.Join(t.TempDir(), "missing.wgsl"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestInitRequiresRenderer(t *testing.T) {
	s := NewFractalScene()
	assert.ErrorIs(t, s.Init(scene.Context{}), ErrNoRenderer)
	assert.ErrorIs(t, s.Update(0.01, input.NewState(1, 1)), scene.ErrNotInitialized)
	assert.ErrorIs(t, s.Draw(0), scene.ErrNotInitialized)
}

func TestDefaultsAndConfig(t *testing.T) {
	s := NewFractalScene()
	assert.Equal(t, "fractal", s.Name())
	assert.Equal(t, Mandelbulb, s.Fractal())
	assert.Equal(t, 8, s.Iterations())
	x, y, z := s.Camera().Position()
	assert.Equal(t, [3]float32{0, 0, -3}, [3]float32{x, y, z})

	cfg := config.Default()
	cfg.Fractal.Steps = 64
	cfg.Fractal.Iterations = 200
	ctx := newSceneContext(t)
	ctx.Config = cfg
	require.NoError(t, s.Init(ctx))
	assert.Equal(t, maxIterations, s.Iterations())
	assert.Equal(t, float32(64), s.Uniform().Steps)

	// explicit options win over the configuration
	s = NewFractalScene(WithSteps(32), WithIterations(3), WithFractal(SphereLattice), WithPipelineKey("fractal_b"))
	ctx.Config = cfg
	require.NoError(t, s.Init(ctx))
	u := s.Uniform()
	assert.Equal(t, float32(32), u.Steps)
	assert.Equal(t, float32(3), u.Iterations)
	assert.Equal(t, uint32(SphereLattice), u.SceneID)
	assert.Equal(t, [2]float32{1024, 768}, u.Resolution)
}

func TestUpdateHandlesInput(t *testing.T) {
	ctx := newSceneContext(t)
	s := NewFractalScene(WithMoveSpeed(2))
	require.NoError(t, s.Init(ctx))
	st := input.NewState(1024, 768)

	press(st, common.KeyP, common.KeyRight)
	require.NoError(t, s.Update(0.5, st))
	release(st, common.KeyP, common.KeyRight)
	assert.Equal(t, 9, s.Iterations())
	x, _, _ := s.Camera().Position()
	assert.InDelta(t, 1.0, x, 1e-6)

	for range 20 {
		press(st, common.KeyK)
		require.NoError(t, s.Update(0.01, st))
		release(st, common.KeyK)
	}
	assert.Equal(t, minIterations, s.Iterations())

	// a held key only counts once
	press(st, common.KeyP)
	for range 5 {
		require.NoError(t, s.Update(0.01, st))
		st.EndUpdate()
	}
	release(st, common.KeyP)
	assert.Equal(t, minIterations+1, s.Iterations())

	want := []Fractal{MengerSponge, SphereLattice, Mandelbulb}
	for _, f := range want {
		press(st, common.KeyS)
		require.NoError(t, s.Update(0.01, st))
		release(st, common.KeyS)
		assert.Equal(t, f, s.Fractal())
	}

	st.Apply(input.Event{Type: input.EventScroll, Delta: 2})
	require.NoError(t, s.Update(0.01, st))
	st.EndUpdate()
	assert.InDelta(t, 1.2, s.Camera().FocalLength(), 1e-6)
	assert.Greater(t, s.Uniform().Time, float32(0.5))
}

func TestDrawRecordsFullscreenPass(t *testing.T) {
	ctx := newSceneContext(t)
	s := NewFractalScene()
	require.NoError(t, s.Init(ctx))

	frame, err := ctx.Renderer.BeginFrame()
	require.NoError(t, err)
	require.NoError(t, s.Draw(frame))
	require.NoError(t, ctx.Renderer.EndFrame())
	ctx.Renderer.Present()

	stats := ctx.Renderer.Stats()
	require.Equal(t, 1, stats.DrawCalls)
	assert.Equal(t, "fractal", stats.Draws[0].Pipeline)
	assert.Equal(t, sprite.TextureID(-1), stats.Draws[0].Texture)

	assert.ErrorIs(t, s.Draw(frame), renderer.ErrFrameNotStarted)

	s.Release()
	assert.ErrorIs(t, s.Draw(frame), scene.ErrNotInitialized)
}
