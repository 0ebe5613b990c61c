package sprite

import (
	"fmt"

	"go.uber.org/zap"
)

const defaultCapacity = 512

// Pool is the central broker for sprite lifetime. It owns a fixed array of slots whose live
// prefix [0, ActiveCount()) is kept contiguous by swap-with-last recycling, and defers the
// destruction of removed slots until no frame in flight can still reference them.
type Pool interface {
	// Allocate instantiates the next free slot and returns the Handle that owns it.
	//
	// Parameters:
	//   - desc: the sprite's placement, layer, size and texture
	//
	// Returns:
	//   - Handle: the owning handle
	//   - error: ErrCapacityExceeded, ErrInvalidTexture, ErrInvalidLayer, or a surface error
	Allocate(desc Desc) (Handle, error)

	// MarkRemoved flags the slot at index as removed. The slot keeps its array position and
	// GPU resources until FramesInFlight() ticks have passed.
	//
	// Parameters:
	//   - index: the slot's current position
	//
	// Returns:
	//   - error: ErrStaleIndex if index is outside the active range, ErrAlreadyRemoved on a double removal
	MarkRemoved(index int) error

	// Tick advances deferred deletions and writes pending transforms for frameIndex.
	// It must run once per rendered frame after the frame's fence wait and before recording.
	//
	// Parameters:
	//   - frameIndex: the frame being prepared, in [0, FramesInFlight())
	//
	// Returns:
	//   - error: ErrInvalidFrame, or a surface error
	Tick(frameIndex int) error

	// ForEachLive calls fn for every slot in the active range that is not marked removed.
	//
	// Parameters:
	//   - fn: callback receiving a read-only view of the slot
	ForEachLive(fn func(Sprite))

	// Clear waits for the surface to go idle, then destroys and re-provisions every slot at once.
	// Every outstanding Handle becomes empty.
	//
	// Returns:
	//   - error: a surface error while re-provisioning
	Clear() error

	// Close waits for the surface to go idle and frees every GPU resource held by the pool.
	Close()

	// ActiveCount returns the number of slots in the active prefix, including removed slots awaiting recycle.
	//
	// Returns:
	//   - int: the active count
	ActiveCount() int

	// LiveCount returns the number of active slots that are not marked removed.
	//
	// Returns:
	//   - int: the live count
	LiveCount() int

	// Capacity returns the fixed number of slots.
	//
	// Returns:
	//   - int: the capacity
	Capacity() int

	// IndexOf returns the current slot index of the sprite identified by id, or -1 if it has none.
	//
	// Parameters:
	//   - id: the sprite identifier
	//
	// Returns:
	//   - int: the slot index or -1
	IndexOf(id SpriteID) int

	// Owner returns the identifier of the handle owning the slot at index, or a zero SpriteID.
	//
	// Parameters:
	//   - index: the slot position
	//
	// Returns:
	//   - SpriteID: the owning sprite's identifier
	Owner(index int) SpriteID

	// Sprite returns a view of the slot at index and whether it is live.
	//
	// Parameters:
	//   - index: the slot position
	//
	// Returns:
	//   - Sprite: the slot view
	//   - bool: true if index is in the active range and not marked removed
	Sprite(index int) (Sprite, bool)
}

// keyEntry maps a stable sprite key to its current slot index. index is -1 once the key is retired.
type keyEntry struct {
	index      int
	generation uint32
}

type pool struct {
	surface  Surface
	logger   *zap.Logger
	capacity int

	slots       []slot
	frameCounts []int
	active      int

	keys     []keyEntry
	freeKeys []uint32
	epoch    uint32
	closed   bool
}

var _ Pool = &pool{}

// NewPool creates a Pool over surface and provisions every slot's per-frame resources up front.
//
// Parameters:
//   - surface: the resource surface that owns buffers and descriptor sets
//   - options: functional options to configure the pool
//
// Returns:
//   - Pool: the new pool
//   - error: error if provisioning fails
func NewPool(surface Surface, options ...PoolBuilderOption) (Pool, error) {
	p := &pool{
		surface:  surface,
		logger:   zap.NewNop(),
		capacity: defaultCapacity,
		epoch:    1,
	}
	for _, opt := range options {
		opt(p)
	}
	if p.capacity < 1 {
		return nil, fmt.Errorf("sprite pool capacity must be positive, got %d", p.capacity)
	}
	if surface.FramesInFlight() < 1 {
		return nil, fmt.Errorf("frames in flight must be positive, got %d", surface.FramesInFlight())
	}

	p.slots = make([]slot, p.capacity)
	p.frameCounts = make([]int, p.capacity)
	for i := range p.slots {
		if err := p.slots[i].provision(surface); err != nil {
			p.destroyAll()
			return nil, fmt.Errorf("provision slot %d: %w", i, err)
		}
	}
	return p, nil
}

func (p *pool) Allocate(desc Desc) (Handle, error) {
	if p.closed {
		return Handle{}, ErrPoolClosed
	}
	if p.active == p.capacity {
		return Handle{}, fmt.Errorf("allocate sprite: %w (capacity %d)", ErrCapacityExceeded, p.capacity)
	}
	if desc.Texture < 0 || int(desc.Texture) >= p.surface.TextureCount() {
		return Handle{}, fmt.Errorf("allocate sprite: %w: %d of %d", ErrInvalidTexture, desc.Texture, p.surface.TextureCount())
	}
	if !desc.Layer.Valid() {
		return Handle{}, fmt.Errorf("allocate sprite: %w: %d", ErrInvalidLayer, desc.Layer)
	}

	index := p.active
	id := p.issueKey(index)
	if err := p.slots[index].instantiate(p.surface, desc, id); err != nil {
		p.retireKey(id)
		return Handle{}, fmt.Errorf("instantiate sprite %d: %w", index, err)
	}
	p.frameCounts[index] = 0
	p.active++

	p.logger.Debug("instantiated sprite",
		zap.Int("index", index),
		zap.Int("texture", int(desc.Texture)),
		zap.Stringer("layer", desc.Layer),
	)
	return Handle{pool: p, id: id}, nil
}

func (p *pool) MarkRemoved(index int) error {
	if index < 0 || index >= p.active {
		return fmt.Errorf("remove sprite %d: %w (active %d)", index, ErrStaleIndex, p.active)
	}
	s := &p.slots[index]
	if s.removed {
		return fmt.Errorf("remove sprite %d: %w", index, ErrAlreadyRemoved)
	}
	p.retireKey(s.owner)
	s.removed = true
	s.owner = SpriteID{}
	p.frameCounts[index] = 0

	p.logger.Debug("removed sprite", zap.Int("index", index))
	return nil
}

func (p *pool) Tick(frameIndex int) error {
	n := p.surface.FramesInFlight()
	if frameIndex < 0 || frameIndex >= n {
		return fmt.Errorf("tick: %w: %d of %d", ErrInvalidFrame, frameIndex, n)
	}

	for i := 0; i < p.active; i++ {
		s := &p.slots[i]
		if s.removed {
			p.frameCounts[i]++
			if p.frameCounts[i] >= n {
				if err := p.recycle(i); err != nil {
					return err
				}
				// the slot swapped into i has not been visited yet
				i--
			}
			continue
		}
		if err := s.update(p.surface, frameIndex); err != nil {
			return fmt.Errorf("update sprite %d: %w", i, err)
		}
	}
	return nil
}

// recycle swaps the removed slot at i with the last active slot, fixes the moved slot's key,
// then destroys and re-provisions the removed slot's resources.
func (p *pool) recycle(i int) error {
	last := p.active - 1
	if i != last {
		p.slots[i], p.slots[last] = p.slots[last], p.slots[i]
		p.frameCounts[i], p.frameCounts[last] = p.frameCounts[last], p.frameCounts[i]
		if moved := p.slots[i]; !moved.removed && !moved.owner.IsZero() {
			p.keys[moved.owner.key].index = i
		}
		p.logger.Debug("swapped sprites", zap.Int("from", last), zap.Int("to", i))
	}
	p.active--

	p.slots[last].destroy(p.surface)
	p.frameCounts[last] = 0
	if err := p.slots[last].provision(p.surface); err != nil {
		return fmt.Errorf("reprovision slot %d: %w", last, err)
	}
	return nil
}

func (p *pool) ForEachLive(fn func(Sprite)) {
	for i := 0; i < p.active; i++ {
		s := &p.slots[i]
		if s.removed {
			continue
		}
		fn(Sprite{Index: i, ID: s.owner, Desc: s.desc, sets: s.sets})
	}
}

func (p *pool) Clear() error {
	if p.closed {
		return ErrPoolClosed
	}
	p.surface.WaitIdle()

	count := p.active
	p.retireAllKeys()
	p.destroyAll()
	p.active = 0
	for i := range p.slots {
		if err := p.slots[i].provision(p.surface); err != nil {
			return fmt.Errorf("reprovision slot %d: %w", i, err)
		}
	}
	p.logger.Debug("destroyed all sprites", zap.Int("count", count))
	return nil
}

func (p *pool) Close() {
	if p.closed {
		return
	}
	p.surface.WaitIdle()
	p.retireAllKeys()
	p.destroyAll()
	p.active = 0
	p.closed = true
}

func (p *pool) destroyAll() {
	for i := range p.slots {
		p.slots[i].destroy(p.surface)
		p.frameCounts[i] = 0
	}
}

func (p *pool) ActiveCount() int {
	return p.active
}

func (p *pool) LiveCount() int {
	live := 0
	for i := 0; i < p.active; i++ {
		if !p.slots[i].removed {
			live++
		}
	}
	return live
}

func (p *pool) Capacity() int {
	return p.capacity
}

func (p *pool) IndexOf(id SpriteID) int {
	index, err := p.resolve(id)
	if err != nil {
		return -1
	}
	return index
}

func (p *pool) Owner(index int) SpriteID {
	if index < 0 || index >= p.active {
		return SpriteID{}
	}
	return p.slots[index].owner
}

func (p *pool) Sprite(index int) (Sprite, bool) {
	if index < 0 || index >= p.active || p.slots[index].removed {
		return Sprite{}, false
	}
	s := &p.slots[index]
	return Sprite{Index: index, ID: s.owner, Desc: s.desc, sets: s.sets}, true
}

// move forwards a position change to the slot owned by id.
func (p *pool) move(id SpriteID, x, y float32) error {
	index, err := p.resolve(id)
	if err != nil || index < 0 {
		return err
	}
	p.slots[index].move(x, y)
	return nil
}

// release marks the slot owned by id as removed.
func (p *pool) release(id SpriteID) error {
	index, err := p.resolve(id)
	if err != nil || index < 0 {
		return err
	}
	return p.MarkRemoved(index)
}

// resolve maps id to its slot index. Identifiers issued before the last Clear resolve to -1
// without an error; identifiers whose slot was removed resolve to ErrStaleHandle.
func (p *pool) resolve(id SpriteID) (int, error) {
	if id.IsZero() || id.epoch != p.epoch {
		return -1, nil
	}
	if int(id.key) >= len(p.keys) {
		return -1, fmt.Errorf("sprite %s: %w", id, ErrStaleHandle)
	}
	entry := p.keys[id.key]
	if entry.generation != id.generation || entry.index < 0 {
		return -1, fmt.Errorf("sprite %s: %w", id, ErrStaleHandle)
	}
	return entry.index, nil
}

func (p *pool) issueKey(index int) SpriteID {
	var key uint32
	if n := len(p.freeKeys); n > 0 {
		key = p.freeKeys[n-1]
		p.freeKeys = p.freeKeys[:n-1]
	} else {
		key = uint32(len(p.keys))
		p.keys = append(p.keys, keyEntry{index: -1})
	}
	entry := &p.keys[key]
	entry.generation++
	entry.index = index
	return SpriteID{key: key, generation: entry.generation, epoch: p.epoch}
}

func (p *pool) retireKey(id SpriteID) {
	if id.IsZero() || id.epoch != p.epoch || int(id.key) >= len(p.keys) {
		return
	}
	entry := &p.keys[id.key]
	if entry.generation != id.generation || entry.index < 0 {
		return
	}
	entry.index = -1
	p.freeKeys = append(p.freeKeys, id.key)
}

func (p *pool) retireAllKeys() {
	p.keys = p.keys[:0]
	p.freeKeys = p.freeKeys[:0]
	p.epoch++
	for i := 0; i < p.active; i++ {
		p.slots[i].owner = SpriteID{}
	}
}
