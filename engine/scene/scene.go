package scene

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-chess/config"
	"github.com/Carmen-Shannon/oxy-chess/engine/audio"
	"github.com/Carmen-Shannon/oxy-chess/engine/game_object"
	"github.com/Carmen-Shannon/oxy-chess/engine/input"
	"github.com/Carmen-Shannon/oxy-chess/engine/renderer"
	"github.com/Carmen-Shannon/oxy-chess/engine/sprite"
	"go.uber.org/zap"
)

// ErrNotInitialized is returned when a scene is used before Init.
var ErrNotInitialized = errors.New("scene not initialized")

// Context carries the engine services a scene draws on. Audio may be a disabled engine but is never nil
// once the engine has initialized the scene.
type Context struct {
	Renderer renderer.Renderer
	Pool     sprite.Pool
	Audio    audio.Engine
	Config   *config.Config
	Logger   *zap.Logger
}

// Scene is the contract between the engine loop and game code.
// Every method is called from the render goroutine. Sprites drawn by a scene's objects are recorded
// by the engine from the shared pool; Draw only records the scene's extra passes.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Active returns whether the scene is updated and drawn.
	Active() bool

	// SetActive sets whether the scene is updated and drawn.
	SetActive(active bool)

	// Init hands the scene its engine services and builds its initial objects.
	//
	// Parameters:
	//   - ctx: the engine services
	//
	// Returns:
	//   - error: an error if the scene cannot be built
	Init(ctx Context) error

	// Update advances the scene by one fixed step.
	//
	// Parameters:
	//   - dt: the fixed step in seconds
	//   - state: the input state for this step
	//
	// Returns:
	//   - error: a fatal error that stops the engine
	Update(dt float32, state *input.State) error

	// Draw records the scene's non-sprite draws for the current frame.
	//
	// Parameters:
	//   - frameIndex: the frame slot being recorded
	//
	// Returns:
	//   - error: a fatal error that stops the engine
	Draw(frameIndex int) error

	// Recreate rebuilds the scene's sprites after the pool was cleared.
	//
	// Returns:
	//   - error: any allocation error
	Recreate() error

	// Release drops every sprite the scene owns.
	Release()
}

// Base is a Scene holding a registry of GameObjects. Game scenes embed it and override the
// methods they need; on its own it draws its objects and does nothing on Update.
type Base struct {
	mu     *sync.Mutex
	name   string
	active bool
	ctx    Context
	ready  bool

	nextID  uint64
	objects map[uint64]game_object.GameObject
	order   []uint64
}

var _ Scene = &Base{}

// NewBase creates an active, empty Base scene.
//
// Parameters:
//   - options: functional options to configure the scene
//
// Returns:
//   - *Base: the new scene
func NewBase(options ...SceneBuilderOption) *Base {
	b := &Base{
		mu:      &sync.Mutex{},
		name:    "scene",
		active:  true,
		objects: make(map[uint64]game_object.GameObject),
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

func (b *Base) Name() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.name
}

// SetName sets the scene's identifier.
func (b *Base) SetName(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.name = name
}

func (b *Base) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

func (b *Base) SetActive(active bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.active = active
}

// Context returns the services handed to Init.
func (b *Base) Context() Context {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ctx
}

// Logger returns the scene's logger, named after the scene.
func (b *Base) Logger() *zap.Logger {
	ctx := b.Context()
	if ctx.Logger == nil {
		return zap.NewNop()
	}
	return ctx.Logger
}

// Init stores ctx and attaches every registered object to the pool.
func (b *Base) Init(ctx Context) error {
	if ctx.Pool == nil {
		return fmt.Errorf("scene %s: nil sprite pool", b.Name())
	}
	if ctx.Logger == nil {
		ctx.Logger = zap.NewNop()
	}
	ctx.Logger = ctx.Logger.Named(b.Name())
	b.mu.Lock()
	b.ctx = ctx
	b.ready = true
	objs := b.objectsLocked()
	b.mu.Unlock()

	for _, obj := range objs {
		if err := obj.Attach(ctx.Pool); err != nil {
			return fmt.Errorf("scene %s: %w", b.Name(), err)
		}
	}
	return nil
}

func (b *Base) Update(dt float32, state *input.State) error {
	return nil
}

func (b *Base) Draw(frameIndex int) error {
	return nil
}

// Recreate allocates fresh sprites for every enabled object.
func (b *Base) Recreate() error {
	for _, obj := range b.Objects() {
		if err := obj.Recreate(); err != nil {
			return fmt.Errorf("scene %s: recreate: %w", b.Name(), err)
		}
	}
	return nil
}

// Release drops the sprites of every object and empties the registry.
func (b *Base) Release() {
	b.mu.Lock()
	objs := b.objectsLocked()
	clear(b.objects)
	b.order = b.order[:0]
	b.mu.Unlock()

	for _, obj := range objs {
		if err := obj.Release(); err != nil {
			b.Logger().Warn("release object", zap.Uint64("object", obj.ID()), zap.Error(err))
		}
	}
}

// Add registers obj and, once the scene is initialized, attaches it to the pool.
//
// Parameters:
//   - obj: the object to add
//
// Returns:
//   - uint64: the registry key of the object
//   - error: any allocation error from attaching the object
func (b *Base) Add(obj game_object.GameObject) (uint64, error) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.objects[id] = obj
	b.order = append(b.order, id)
	ready, pool := b.ready, b.ctx.Pool
	b.mu.Unlock()

	if !ready {
		return id, nil
	}
	if err := obj.Attach(pool); err != nil {
		return id, fmt.Errorf("scene %s: add: %w", b.Name(), err)
	}
	return id, nil
}

// Get returns the object registered under id, or nil.
func (b *Base) Get(id uint64) game_object.GameObject {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.objects[id]
}

// Remove unregisters the object under id and releases its sprite. Unknown ids are ignored.
//
// Parameters:
//   - id: the registry key returned by Add
//
// Returns:
//   - error: any error releasing the sprite
func (b *Base) Remove(id uint64) error {
	b.mu.Lock()
	obj, ok := b.objects[id]
	if ok {
		delete(b.objects, id)
		for i, k := range b.order {
			if k == id {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	}
	b.mu.Unlock()

	if !ok {
		return nil
	}
	return obj.Release()
}

// Count returns the number of registered objects.
func (b *Base) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}

// Objects returns the registered objects in insertion order.
func (b *Base) Objects() []game_object.GameObject {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.objectsLocked()
}

func (b *Base) objectsLocked() []game_object.GameObject {
	out := make([]game_object.GameObject, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.objects[id])
	}
	return out
}

// Initialized reports whether Init has run.
func (b *Base) Initialized() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ready
}
