package sprite

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T, capacity, frames int) (*pool, *fakeSurface) {
	t.Helper()
	surface := newFakeSurface(frames, 4)
	p, err := NewPool(surface, WithCapacity(capacity))
	require.NoError(t, err)
	return p.(*pool), surface
}

func piece(x, y float32) Desc {
	return Desc{X: x, Y: y, Layer: LayerGround, Width: 0.125, Height: 0.125, Texture: 1}
}

func TestNewPoolProvisionsEverySlot(t *testing.T) {
	p, surface := newTestPool(t, 4, 2)

	assert.Equal(t, 8, surface.allocatedBuffers)
	assert.Equal(t, 8, surface.allocatedSets)
	assert.Equal(t, 0, surface.binds)
	assert.Equal(t, 0, p.ActiveCount())
	assert.Equal(t, 4, p.Capacity())
}

func TestNewPoolErrors(t *testing.T) {
	_, err := NewPool(newFakeSurface(2, 1), WithCapacity(0))
	assert.Error(t, err)

	_, err = NewPool(newFakeSurface(0, 1))
	assert.Error(t, err)

	surface := newFakeSurface(2, 1)
	surface.bufferBudget = 3
	_, err = NewPool(surface, WithCapacity(4))
	assert.ErrorIs(t, err, errFakeExhausted)
	assert.Empty(t, surface.buffers)
	assert.Empty(t, surface.sets)
}

func TestAllocateCapacity(t *testing.T) {
	p, _ := newTestPool(t, 3, 2)

	handles := make([]Handle, 0, 3)
	for i := range 3 {
		h, err := p.Allocate(piece(0, 0))
		require.NoError(t, err)
		assert.Equal(t, i, h.Index())
		handles = append(handles, h)
	}

	_, err := p.Allocate(piece(0, 0))
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, 3, p.ActiveCount())
}

func TestAllocateValidation(t *testing.T) {
	p, surface := newTestPool(t, 2, 2)

	tests := []struct {
		name string
		desc Desc
		err  error
	}{
		{"negative texture", Desc{Texture: -1}, ErrInvalidTexture},
		{"texture out of range", Desc{Texture: TextureID(surface.textures)}, ErrInvalidTexture},
		{"negative layer", Desc{Layer: -1}, ErrInvalidLayer},
		{"layer past overlay", Desc{Layer: LayerOverlay + 1}, ErrInvalidLayer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Allocate(tt.desc)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, 0, p.ActiveCount())
		})
	}
}

func TestAllocateWritesAndBindsEveryFrame(t *testing.T) {
	p, surface := newTestPool(t, 2, 3)

	desc := piece(0.25, -0.5)
	desc.Texture = 3
	h, err := p.Allocate(desc)
	require.NoError(t, err)

	s, ok := p.Sprite(h.Index())
	require.True(t, ok)
	want := desc.Transform()
	slot := p.slots[h.Index()]
	for f := range 3 {
		binding := surface.sets[s.DescriptorSet(f)]
		require.NotNil(t, binding)
		assert.Equal(t, slot.buffers[f], binding.buffer)
		assert.Equal(t, TextureID(3), binding.texture)
		assert.Equal(t, want, surface.transform(slot.buffers[f]))
	}
	assert.Equal(t, 3, surface.binds)
}

func TestMarkRemovedErrors(t *testing.T) {
	p, _ := newTestPool(t, 3, 2)
	_, err := p.Allocate(piece(0, 0))
	require.NoError(t, err)

	assert.ErrorIs(t, p.MarkRemoved(1), ErrStaleIndex)
	assert.ErrorIs(t, p.MarkRemoved(-1), ErrStaleIndex)

	require.NoError(t, p.MarkRemoved(0))
	assert.ErrorIs(t, p.MarkRemoved(0), ErrAlreadyRemoved)
	assert.Equal(t, 1, p.ActiveCount())
	assert.Equal(t, 0, p.LiveCount())
}

func TestRecycleScenario(t *testing.T) {
	p, surface := newTestPool(t, 3, 2)

	a, err := p.Allocate(piece(-0.5, 0))
	require.NoError(t, err)
	b, err := p.Allocate(piece(0, 0))
	require.NoError(t, err)
	c, err := p.Allocate(piece(0.5, 0))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, []int{a.Index(), b.Index(), c.Index()})

	cID := c.ID()
	bBuffers := append([]BufferID(nil), p.slots[1].buffers...)
	require.NoError(t, b.Release())
	assert.Equal(t, -1, b.Index())

	require.NoError(t, p.Tick(0))
	assert.Equal(t, 1, p.frameCounts[1])
	assert.True(t, p.slots[1].removed)
	assert.Equal(t, 3, p.ActiveCount())
	assert.Empty(t, surface.freedBuffers)

	require.NoError(t, p.Tick(1))
	assert.Equal(t, 2, p.ActiveCount())
	assert.Equal(t, 0, a.Index())
	assert.Equal(t, 1, c.Index())
	assert.Equal(t, cID, p.Owner(1))
	assert.ElementsMatch(t, bBuffers, surface.freedBuffers)
	assert.Len(t, surface.freedSets, 2)

	// the freed slot is provisioned again with fresh resources
	assert.Len(t, p.slots[2].buffers, 2)
	assert.Equal(t, 8, surface.allocatedBuffers)
}

func TestDeferredDeletion(t *testing.T) {
	for _, frames := range []int{1, 2, 3} {
		p, surface := newTestPool(t, 2, frames)
		h, err := p.Allocate(piece(0, 0))
		require.NoError(t, err)
		require.NoError(t, h.Release())

		for tick := 1; tick < frames; tick++ {
			require.NoError(t, p.Tick(tick%frames))
			assert.Empty(t, surface.freedBuffers, "frames=%d tick=%d", frames, tick)
			assert.Equal(t, 1, p.ActiveCount())
		}
		require.NoError(t, p.Tick(0))
		assert.Len(t, surface.freedBuffers, frames, "frames=%d", frames)
		assert.Equal(t, 0, p.ActiveCount())
	}
}

func TestSwapRecycleMovesLastIntoHole(t *testing.T) {
	p, _ := newTestPool(t, 5, 2)
	handles := make([]Handle, 5)
	for i := range handles {
		h, err := p.Allocate(piece(float32(i)/10, 0))
		require.NoError(t, err)
		handles[i] = h
	}
	lastID := handles[4].ID()

	require.NoError(t, handles[1].Release())
	require.NoError(t, p.Tick(0))
	require.NoError(t, p.Tick(1))

	assert.Equal(t, 4, p.ActiveCount())
	assert.Equal(t, 1, handles[4].Index())
	assert.Equal(t, lastID, p.Owner(1))
	assert.Equal(t, float32(0.4), p.slots[1].desc.X)
	assert.Equal(t, 0, handles[0].Index())
	assert.Equal(t, 2, handles[2].Index())
	assert.Equal(t, 3, handles[3].Index())
}

func TestRecycleChainOfRemovedSlots(t *testing.T) {
	p, _ := newTestPool(t, 4, 2)
	handles := make([]Handle, 4)
	for i := range handles {
		h, err := p.Allocate(piece(0, 0))
		require.NoError(t, err)
		handles[i] = h
	}

	// removing 0 and 3 together recycles 3 into 0 first, then recycles 3 itself
	require.NoError(t, handles[0].Release())
	require.NoError(t, handles[3].Release())
	require.NoError(t, p.Tick(0))
	require.NoError(t, p.Tick(1))

	assert.Equal(t, 2, p.ActiveCount())
	assert.Equal(t, 2, p.LiveCount())
	assert.ElementsMatch(t, []int{0, 1}, []int{handles[1].Index(), handles[2].Index()})
}

func TestMoveConvergesAfterFramesInFlightTicks(t *testing.T) {
	p, surface := newTestPool(t, 2, 2)
	h, err := p.Allocate(piece(0, 0))
	require.NoError(t, err)
	before := piece(0, 0).Transform()

	require.NoError(t, h.MoveTo(0.5, -0.5))
	slot := &p.slots[h.Index()]
	assert.Equal(t, 2, slot.pending)
	assert.Equal(t, before, surface.transform(slot.buffers[0]))

	after := piece(0.5, -0.5).Transform()
	require.NoError(t, p.Tick(0))
	assert.Equal(t, after, surface.transform(slot.buffers[0]))
	assert.Equal(t, before, surface.transform(slot.buffers[1]))

	require.NoError(t, p.Tick(1))
	assert.Equal(t, after, surface.transform(slot.buffers[1]))
	assert.Equal(t, 0, slot.pending)

	maps := surface.maps
	require.NoError(t, p.Tick(0))
	assert.Equal(t, maps, surface.maps)
}

func TestMoveTwiceBeforeReplicasSettle(t *testing.T) {
	p, surface := newTestPool(t, 1, 2)
	h, err := p.Allocate(piece(0, 0))
	require.NoError(t, err)

	require.NoError(t, h.MoveTo(0.1, 0.1))
	require.NoError(t, p.Tick(0))
	require.NoError(t, h.MoveTo(0.7, 0.7))
	require.NoError(t, p.Tick(1))
	require.NoError(t, p.Tick(0))

	want := piece(0.7, 0.7).Transform()
	for _, buf := range p.slots[0].buffers {
		assert.Equal(t, want, surface.transform(buf))
	}
}

func TestTickEmptyPoolIsNoop(t *testing.T) {
	p, surface := newTestPool(t, 4, 2)
	maps := surface.maps

	for f := range 4 {
		require.NoError(t, p.Tick(f%2))
	}
	assert.Equal(t, maps, surface.maps)
	assert.Empty(t, surface.freedBuffers)
	assert.Empty(t, surface.freedSets)
}

func TestTickInvalidFrame(t *testing.T) {
	p, _ := newTestPool(t, 1, 2)
	assert.ErrorIs(t, p.Tick(2), ErrInvalidFrame)
	assert.ErrorIs(t, p.Tick(-1), ErrInvalidFrame)
}

func TestForEachLiveSkipsRemoved(t *testing.T) {
	p, _ := newTestPool(t, 3, 2)
	a, err := p.Allocate(piece(0, 0))
	require.NoError(t, err)
	b, err := p.Allocate(piece(0, 0))
	require.NoError(t, err)
	require.NoError(t, b.Release())

	var seen []SpriteID
	p.ForEachLive(func(s Sprite) {
		seen = append(seen, s.ID)
	})
	assert.Equal(t, []SpriteID{a.ID()}, seen)

	_, ok := p.Sprite(1)
	assert.False(t, ok)
}

func TestClear(t *testing.T) {
	p, surface := newTestPool(t, 3, 2)
	a, err := p.Allocate(piece(0, 0))
	require.NoError(t, err)
	b, err := p.Allocate(piece(0, 0))
	require.NoError(t, err)
	require.NoError(t, b.Release())

	require.NoError(t, p.Clear())
	assert.Equal(t, 1, surface.waitIdle)
	assert.Equal(t, 0, p.ActiveCount())
	assert.Len(t, surface.freedBuffers, 6)
	assert.Len(t, surface.buffers, 6)

	assert.False(t, a.Valid())
	assert.NoError(t, a.MoveTo(1, 1))
	assert.NoError(t, a.Release())

	c, err := p.Allocate(piece(0, 0))
	require.NoError(t, err)
	assert.Equal(t, 0, c.Index())
	assert.NotEqual(t, a.ID(), c.ID())
}

func TestClose(t *testing.T) {
	p, surface := newTestPool(t, 2, 2)
	_, err := p.Allocate(piece(0, 0))
	require.NoError(t, err)

	p.Close()
	assert.Empty(t, surface.buffers)
	assert.Empty(t, surface.sets)
	_, err = p.Allocate(piece(0, 0))
	assert.ErrorIs(t, err, ErrPoolClosed)
	assert.ErrorIs(t, p.Clear(), ErrPoolClosed)
}

func TestHandleIndexMatchesSlotUnderRandomChurn(t *testing.T) {
	const frames = 2
	p, _ := newTestPool(t, 16, frames)
	rng := rand.New(rand.NewSource(42))

	var handles []Handle
	frame := 0
	for step := 0; step < 2000; step++ {
		switch op := rng.Intn(3); {
		case op == 0 && p.ActiveCount() < p.Capacity():
			h, err := p.Allocate(piece(rng.Float32(), rng.Float32()))
			require.NoError(t, err)
			handles = append(handles, h)
		case op == 1 && len(handles) > 0:
			i := rng.Intn(len(handles))
			require.NoError(t, handles[i].Release())
			handles = append(handles[:i], handles[i+1:]...)
		case len(handles) > 0:
			h := &handles[rng.Intn(len(handles))]
			require.NoError(t, h.MoveTo(rng.Float32(), rng.Float32()))
		}

		require.NoError(t, p.Tick(frame))
		frame = (frame + 1) % frames

		assert.Equal(t, len(handles), p.LiveCount())
		for i := range handles {
			index := handles[i].Index()
			require.GreaterOrEqual(t, index, 0)
			require.Equal(t, handles[i].ID(), p.Owner(index), "step %d", step)
		}
	}
}

func TestLayerDepthOrdering(t *testing.T) {
	depth := func(layer Layer) float32 {
		m := Desc{Layer: layer, Width: 1, Height: 1}.Transform()
		return m[14]
	}
	assert.Less(t, depth(LayerOverlay), depth(LayerAir))
	assert.Less(t, depth(LayerAir), depth(LayerGround))
	assert.Less(t, depth(LayerGround), depth(LayerBackground))
	assert.Equal(t, "ground", LayerGround.String())
}
