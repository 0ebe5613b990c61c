package renderer

import (
	"errors"
	"image/color"
	"math/rand"
	"testing"

	"github.com/Carmen-Shannon/oxy-chess/common"
	"github.com/Carmen-Shannon/oxy-chess/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-chess/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-chess/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-chess/engine/sprite"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHeadless(t *testing.T, frames, textures int) Renderer {
	t.Helper()
	r := NewRenderer(BackendTypeHeadless, nil, WithFramesInFlight(frames), WithSize(640, 480))

	vs, err := shader.NewShader("sprite_vs", shader.ShaderTypeVertex, shader.SpriteVertexSource)
	require.NoError(t, err)
	fs, err := shader.NewShader("sprite_fs", shader.ShaderTypeFragment, shader.SpriteFragmentSource)
	require.NoError(t, err)
	require.NoError(t, r.RegisterPipelines(pipeline.NewPipeline("sprite",
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
	)))

	staging := make([]common.TextureStagingData, textures)
	for i := range staging {
		staging[i] = common.TextureStagingData{Pixels: make([]byte, 4*4*4), Width: 4, Height: 4}
	}
	require.NoError(t, r.UploadTextures(staging, common.SamplerStagingData{}))
	return r
}

// renderFrame runs one frame of the protocol the engine loop follows.
func renderFrame(t *testing.T, r Renderer, p sprite.Pool) {
	t.Helper()
	frame, err := r.BeginFrame()
	require.NoError(t, err)
	require.NoError(t, p.Tick(frame))
	p.ForEachLive(func(s sprite.Sprite) {
		require.NoError(t, r.DrawSprite("sprite", s.DescriptorSet(frame)))
	})
	require.NoError(t, r.EndFrame())
	r.Present()
}

func TestFrameIndexCycles(t *testing.T) {
	r := newHeadless(t, 3, 1)
	assert.Equal(t, 3, r.FramesInFlight())
	assert.Equal(t, 640, r.Width())

	for want := range 7 {
		frame, err := r.BeginFrame()
		require.NoError(t, err)
		assert.Equal(t, want%3, frame)
		assert.Equal(t, frame, r.CurrentFrameIndex())
		require.NoError(t, r.EndFrame())
		r.Present()
	}
	assert.Equal(t, uint64(7), r.Stats().Frame)
}

func TestFrameProtocolErrors(t *testing.T) {
	r := newHeadless(t, 2, 1)

	assert.ErrorIs(t, r.EndFrame(), ErrFrameNotStarted)
	assert.ErrorIs(t, r.DrawSprite("sprite", 1), ErrFrameNotStarted)

	_, err := r.BeginFrame()
	require.NoError(t, err)
	_, err = r.BeginFrame()
	assert.ErrorIs(t, err, ErrFrameInProgress)
	assert.ErrorIs(t, r.DrawSprite("missing", 1), ErrPipelineNotFound)
	assert.ErrorIs(t, r.DrawSprite("sprite", 999), ErrUnknownResource)
	require.NoError(t, r.EndFrame())
}

func TestUploadTexturesLimit(t *testing.T) {
	r := NewRenderer(BackendTypeHeadless, nil, WithMaxTextures(2))
	staging := []common.TextureStagingData{
		common.SolidTexture(color.RGBA{R: 255, G: 255, B: 255, A: 255}, 2),
		common.SolidTexture(color.RGBA{R: 255, G: 255, B: 255, A: 255}, 2),
		common.SolidTexture(color.RGBA{R: 255, G: 255, B: 255, A: 255}, 2),
	}
	assert.ErrorIs(t, r.UploadTextures(staging, common.SamplerStagingData{}), ErrTooManyTextures)
	require.NoError(t, r.UploadTextures(staging[:2], common.SamplerStagingData{}))
	assert.Equal(t, 2, r.TextureCount())
}

func TestSpriteDrawsCarryTransforms(t *testing.T) {
	r := newHeadless(t, 2, 3)
	p, err := sprite.NewPool(r, sprite.WithCapacity(8))
	require.NoError(t, err)

	desc := sprite.Desc{X: 0.25, Y: -0.5, Layer: sprite.LayerGround, Width: 0.1, Height: 0.1, Texture: 2}
	h, err := p.Allocate(desc)
	require.NoError(t, err)

	renderFrame(t, r, p)
	draws := r.Stats().Draws
	require.Len(t, draws, 1)
	assert.Equal(t, "sprite", draws[0].Pipeline)
	assert.Equal(t, sprite.TextureID(2), draws[0].Texture)
	assert.Equal(t, desc.Transform(), draws[0].MVP)

	require.NoError(t, h.MoveTo(0.5, 0.5))
	moved := desc
	moved.X, moved.Y = 0.5, 0.5
	for range 2 {
		renderFrame(t, r, p)
		assert.Equal(t, moved.Transform(), r.Stats().Draws[0].MVP)
	}
}

func TestChurnHasNoInFlightViolations(t *testing.T) {
	for _, frames := range []int{1, 2, 3} {
		r := newHeadless(t, frames, 4)
		p, err := sprite.NewPool(r, sprite.WithCapacity(32))
		require.NoError(t, err)

		rng := rand.New(rand.NewSource(7))
		var handles []sprite.Handle
		for step := 0; step < 400; step++ {
			switch op := rng.Intn(4); {
			case op == 0 && len(handles) > 0:
				i := rng.Intn(len(handles))
				require.NoError(t, handles[i].Release())
				handles = append(handles[:i], handles[i+1:]...)
			case op == 1 && len(handles) > 0:
				i := rng.Intn(len(handles))
				require.NoError(t, handles[i].MoveTo(rng.Float32()*2-1, rng.Float32()*2-1))
			default:
				h, err := p.Allocate(sprite.Desc{Width: 0.1, Height: 0.1, Texture: sprite.TextureID(rng.Intn(4))})
				if errors.Is(err, sprite.ErrCapacityExceeded) {
					continue
				}
				require.NoError(t, err)
				handles = append(handles, h)
			}
			renderFrame(t, r, p)
			assert.Equal(t, p.LiveCount(), r.Stats().DrawCalls)
		}
		require.NoError(t, p.Clear())
		renderFrame(t, r, p)
		assert.Zero(t, r.Stats().Violations, "frames in flight %d", frames)
	}
}

func TestFreeingInFlightSetIsAViolation(t *testing.T) {
	r := newHeadless(t, 2, 1)
	buf, err := r.AllocateTransformBuffer()
	require.NoError(t, err)
	set, err := r.AllocateDescriptorSet()
	require.NoError(t, err)
	require.NoError(t, r.Bind(set, buf, 0))

	_, err = r.BeginFrame()
	require.NoError(t, err)
	require.NoError(t, r.DrawSprite("sprite", set))
	require.NoError(t, r.EndFrame())
	r.Present()

	r.FreeDescriptorSet(set)
	r.FreeBuffer(buf)
	assert.Equal(t, 2, r.Stats().Violations)
}

func TestWaitIdleRetiresFrames(t *testing.T) {
	r := newHeadless(t, 2, 1)
	buf, _ := r.AllocateTransformBuffer()
	set, _ := r.AllocateDescriptorSet()
	require.NoError(t, r.Bind(set, buf, 0))

	_, err := r.BeginFrame()
	require.NoError(t, err)
	require.NoError(t, r.DrawSprite("sprite", set))
	require.NoError(t, r.EndFrame())
	r.Present()

	r.WaitIdle()
	r.FreeDescriptorSet(set)
	r.FreeBuffer(buf)
	assert.Zero(t, r.Stats().Violations)
}

func TestFullscreenDrawNeedsInitializedGroups(t *testing.T) {
	r := newHeadless(t, 2, 1)
	vs, err := shader.NewShader("fs_vs", shader.ShaderTypeVertex, `
@vertex
fn vs(@builtin(vertex_index) i: u32) -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }`)
	require.NoError(t, err)
	fs, err := shader.NewShader("fs_fs", shader.ShaderTypeFragment, shader.SpriteFragmentSource)
	require.NoError(t, err)
	require.NoError(t, r.RegisterPipelines(pipeline.NewPipeline("fullscreen",
		pipeline.WithVertexShader(vs), pipeline.WithFragmentShader(fs), pipeline.WithFullscreen())))

	provider := bind_group_provider.NewBindGroupProvider("camera", bind_group_provider.WithGroup(0))
	_, err = r.BeginFrame()
	require.NoError(t, err)
	assert.Error(t, r.DrawFullscreen("fullscreen", []bind_group_provider.BindGroupProvider{provider}))

	require.NoError(t, r.InitBindGroup(provider, wgpu.BindGroupLayoutDescriptor{
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding: 0,
			Buffer:  wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: 16},
		}},
	}, nil))
	r.WriteBuffers([]bind_group_provider.BufferWrite{{Provider: provider, Data: []byte{1, 2, 3, 4}}})
	require.NoError(t, r.DrawFullscreen("fullscreen", []bind_group_provider.BindGroupProvider{provider}))
	require.NoError(t, r.EndFrame())

	draws := r.Stats().Draws
	require.Len(t, draws, 1)
	assert.Equal(t, sprite.TextureID(-1), draws[0].Texture)
	assert.Equal(t, uint64(16), provider.Size(0))

	provider.Release()
	_, err = r.BeginFrame()
	require.NoError(t, err)
	assert.Error(t, r.DrawFullscreen("fullscreen", []bind_group_provider.BindGroupProvider{provider}))
	require.NoError(t, r.EndFrame())
}

func TestSpriteSetLayoutMatchesShaders(t *testing.T) {
	vs, err := shader.NewShader("sprite_vs", shader.ShaderTypeVertex, shader.SpriteVertexSource)
	require.NoError(t, err)
	fs, err := shader.NewShader("sprite_fs", shader.ShaderTypeFragment, shader.SpriteFragmentSource)
	require.NoError(t, err)

	merged := mergeBindGroupLayouts(vs.BindGroupLayoutDescriptors(), fs.BindGroupLayoutDescriptors())
	require.Len(t, merged, 1)
	assert.Equal(t, layoutSignature(spriteSetLayout()), layoutSignature(merged[0]))
}

func TestMergeBindGroupLayoutsOrsVisibility(t *testing.T) {
	uniform := wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: 16}
	merged := mergeBindGroupLayouts(
		map[int]wgpu.BindGroupLayoutDescriptor{0: {Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageVertex, Buffer: uniform},
		}}},
		map[int]wgpu.BindGroupLayoutDescriptor{0: {Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageFragment, Buffer: uniform},
		}}, 1: {Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageFragment, Buffer: uniform},
		}}},
	)
	require.Len(t, merged, 2)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, merged[0].Entries[0].Visibility)
	assert.Equal(t, wgpu.ShaderStageFragment, merged[1].Entries[0].Visibility)
}

func TestParsePresentMode(t *testing.T) {
	assert.Equal(t, PresentModeUncapped, ParsePresentMode("uncapped"))
	assert.Equal(t, PresentModeVSync, ParsePresentMode("vsync"))
	assert.Equal(t, PresentModeVSync, ParsePresentMode(""))
}
