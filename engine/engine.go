package engine

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-chess/common"
	"github.com/Carmen-Shannon/oxy-chess/config"
	"github.com/Carmen-Shannon/oxy-chess/engine/audio"
	"github.com/Carmen-Shannon/oxy-chess/engine/input"
	"github.com/Carmen-Shannon/oxy-chess/engine/profiler"
	"github.com/Carmen-Shannon/oxy-chess/engine/renderer"
	"github.com/Carmen-Shannon/oxy-chess/engine/scene"
	"github.com/Carmen-Shannon/oxy-chess/engine/sprite"
	"github.com/Carmen-Shannon/oxy-chess/engine/window"
	"go.uber.org/zap"
)

var (
	// ErrNoRenderer is returned by Init when the engine was built without a renderer or pool.
	ErrNoRenderer = errors.New("engine has no renderer or sprite pool")
	// ErrRenderPanic wraps a panic recovered on the render goroutine.
	ErrRenderPanic = errors.New("render goroutine panicked")
)

// inputQueueSize bounds the events buffered between two frames.
const inputQueueSize = 256

// engine implements the Engine interface.
// The window message loop runs on the calling goroutine; updates and frames run on the render goroutine.
type engine struct {
	logger *zap.Logger
	cfg    *config.Config

	window   window.Window
	renderer renderer.Renderer
	pool     sprite.Pool
	audio    audio.Engine

	queue *input.Queue
	state *input.State

	scenes map[int]scene.Scene

	spritePipeline string

	updateStep  time.Duration
	maxUpdates  int
	accumulator time.Duration

	frameLimit       uint64
	renderFrameLimit time.Duration
	frames           uint64

	profiler         *profiler.Profiler
	profilingEnabled bool

	recreatePending bool
	pendingWidth    int
	pendingHeight   int

	now         func() time.Time
	initialized bool

	quitChannel chan struct{}
	quitOnce    sync.Once
	wg          sync.WaitGroup

	errMu sync.Mutex
	err   error
}

// Engine runs the fixed-rate update loop and the frame driver over a renderer and its sprite pool.
//
// Each frame drains queued window input, runs at most MaxUpdatesPerFrame fixed updates on the active
// scenes, recreates the swapchain if requested, then waits the frame slot's fence, ticks the pool,
// records the scenes' own draws followed by one draw per live sprite, submits and presents.
type Engine interface {
	// Window returns the window, or nil for headless engines.
	Window() window.Window

	// Renderer returns the renderer driving the frames.
	Renderer() renderer.Renderer

	// Pool returns the sprite pool shared by every scene.
	Pool() sprite.Pool

	// Audio returns the audio engine handed to scenes.
	Audio() audio.Engine

	// Input returns the queue window events are pushed to. Headless callers may push events directly.
	Input() *input.Queue

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetUpdateRate sets the fixed update rate.
	//
	// Parameters:
	//   - hz: updates per second (defaults to 100 if <= 0)
	SetUpdateRate(hz float64)

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// SetFrameLimit stops the engine after a number of rendered frames.
	//
	// Parameters:
	//   - frames: the frame count (0 = run until closed)
	SetFrameLimit(frames uint64)

	// AddScene registers a scene at the given z-index key, initializing it if the engine already is.
	//
	// Parameters:
	//   - key: the z-index determining update and draw order (lower first)
	//   - s: the Scene to register
	//
	// Returns:
	//   - error: any error from the scene's Init
	AddScene(key int, s scene.Scene) error

	// RemoveScene releases and removes the scene at the given z-index key.
	//
	// Parameters:
	//   - key: the z-index of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given z-index key, or nil.
	//
	// Parameters:
	//   - key: the z-index of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by z-index.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the scenes map
	Scenes() map[int]scene.Scene

	// Init registers the sprite pipeline and initializes every registered scene. Run calls it if needed.
	//
	// Returns:
	//   - error: ErrNoRenderer, a pipeline error or a scene error
	Init() error

	// Step runs one frame: input, fixed updates, swapchain recreation and rendering.
	//
	// Parameters:
	//   - dt: wall time elapsed since the previous frame
	//
	// Returns:
	//   - error: a fatal update, recreation or frame error
	Step(dt time.Duration) error

	// RequestRecreate schedules a swapchain recreation before the next frame.
	RequestRecreate()

	// Frames returns how many frames have been rendered.
	Frames() uint64

	// Run drives frames until the window closes, Quit is called or the frame limit is reached.
	// With a window, Run must be called from the main goroutine; frames run on a render goroutine.
	//
	// Returns:
	//   - error: the first fatal error, or nil on a clean shutdown
	Run() error

	// Quit signals the engine to stop. Safe to call multiple times and from any goroutine.
	Quit()

	// Release waits for the GPU and releases the scenes, pool, audio and renderer.
	Release()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine with a 100 Hz update rate and at most 5 updates per frame.
// Window callbacks are wired to the engine's input queue when a window is given.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		logger:         zap.NewNop(),
		queue:          input.NewQueue(inputQueueSize),
		scenes:         make(map[int]scene.Scene),
		spritePipeline: "sprite",
		updateStep:     time.Second / 100,
		maxUpdates:     5,
		now:            time.Now,
		quitChannel:    make(chan struct{}),
	}
	for _, opt := range options {
		opt(e)
	}
	if e.cfg == nil {
		e.cfg = config.Default()
	}
	if e.audio == nil {
		e.audio = audio.NewEngine(audio.WithEnabled(false), audio.WithLogger(e.logger))
	}
	e.profiler = profiler.NewProfiler(e.logger.Named("profiler"))

	if e.window != nil {
		e.wireWindow()
	}
	return e
}

// wireWindow forwards window callbacks to the input queue. Callbacks run on the main goroutine.
func (e *engine) wireWindow() {
	push := func(ev input.Event) {
		if !e.queue.Push(ev) {
			e.logger.Debug("input queue full, dropping event", zap.Int("type", int(ev.Type)))
		}
	}
	e.window.SetKeyDownCallback(func(key uint32) {
		push(input.Event{Type: input.EventKeyDown, Key: key})
	})
	e.window.SetKeyUpCallback(func(key uint32) {
		push(input.Event{Type: input.EventKeyUp, Key: key})
	})
	e.window.SetMouseMoveCallback(func(x, y float64) {
		push(input.Event{Type: input.EventCursorMove, X: x, Y: y})
	})
	e.window.SetScrollCallback(func(delta float32) {
		push(input.Event{Type: input.EventScroll, Delta: delta})
	})
	e.window.SetResizeCallback(func(width, height int) {
		push(input.Event{Type: input.EventResize, Width: width, Height: height})
	})
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Pool() sprite.Pool {
	return e.pool
}

func (e *engine) Audio() audio.Engine {
	return e.audio
}

func (e *engine) Input() *input.Queue {
	return e.queue
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetUpdateRate(hz float64) {
	if hz <= 0 {
		hz = 100
	}
	e.updateStep = time.Duration(float64(time.Second) / hz)
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) SetFrameLimit(frames uint64) {
	e.frameLimit = frames
}

func (e *engine) AddScene(key int, s scene.Scene) error {
	e.scenes[key] = s
	if !e.initialized {
		return nil
	}
	return s.Init(e.sceneContext())
}

func (e *engine) RemoveScene(key int) {
	if s, ok := e.scenes[key]; ok {
		s.Release()
		delete(e.scenes, key)
	}
}

func (e *engine) Scene(key int) scene.Scene {
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, v := range e.scenes {
		cp[k] = v
	}
	return cp
}

// orderedScenes returns the scenes in ascending key order, optionally only the active ones.
func (e *engine) orderedScenes(activeOnly bool) []scene.Scene {
	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out := make([]scene.Scene, 0, len(keys))
	for _, k := range keys {
		s := e.scenes[k]
		if activeOnly && !s.Active() {
			continue
		}
		out = append(out, s)
	}
	return out
}

func (e *engine) sceneContext() scene.Context {
	return scene.Context{
		Renderer: e.renderer,
		Pool:     e.pool,
		Audio:    e.audio,
		Config:   e.cfg,
		Logger:   e.logger,
	}
}

func (e *engine) Init() error {
	if e.initialized {
		return nil
	}
	if e.renderer == nil || e.pool == nil {
		return ErrNoRenderer
	}

	p, err := NewSpritePipeline(e.spritePipeline, e.cfg.Shaders.VertexPath, e.cfg.Shaders.FragmentPath)
	if err != nil {
		return err
	}
	if err := e.renderer.RegisterPipelines(p); err != nil {
		return err
	}

	e.state = input.NewState(e.renderer.Width(), e.renderer.Height())
	ctx := e.sceneContext()
	for _, s := range e.orderedScenes(false) {
		if err := s.Init(ctx); err != nil {
			return fmt.Errorf("init scene %s: %w", s.Name(), err)
		}
	}
	e.initialized = true
	e.logger.Info("engine initialized",
		zap.Int("scenes", len(e.scenes)),
		zap.Duration("updateStep", e.updateStep),
		zap.Int("maxUpdatesPerFrame", e.maxUpdates),
		zap.Uint64("frameLimit", e.frameLimit),
	)
	return nil
}

func (e *engine) RequestRecreate() {
	e.recreatePending = true
}

func (e *engine) Frames() uint64 {
	return e.frames
}

func (e *engine) Step(dt time.Duration) error {
	if !e.initialized {
		return ErrNoRenderer
	}

	e.drainInput()
	if e.quitting() {
		return nil
	}

	updates, err := e.update(dt)
	if err != nil {
		return err
	}

	if e.recreatePending {
		if err := e.recreate(); err != nil {
			return fmt.Errorf("recreate swapchain: %w", err)
		}
	}

	if err := e.render(); err != nil {
		return err
	}
	e.frames++

	if e.profilingEnabled {
		e.profiler.Tick(profiler.Sample{
			LiveSprites:   e.pool.LiveCount(),
			ActiveSprites: e.pool.ActiveCount(),
			DrawCalls:     e.renderer.Stats().DrawCalls,
			Updates:       updates,
		})
	}
	if e.frameLimit > 0 && e.frames >= e.frameLimit {
		e.logger.Info("frame limit reached", zap.Uint64("frames", e.frames))
		e.Quit()
	}
	return nil
}

// drainInput folds queued events into the input state. Escape, Space and resizes are handled here
// rather than per update so they act exactly once even on frames without an update.
func (e *engine) drainInput() {
	e.queue.Drain(func(ev input.Event) {
		switch {
		case ev.Type == input.EventKeyDown && ev.Key == common.KeyEsc:
			e.Quit()
		case ev.Type == input.EventKeyDown && ev.Key == common.KeySpace && !e.state.Down(ev.Key):
			e.recreatePending = true
		case ev.Type == input.EventResize && ev.Width > 0 && ev.Height > 0:
			e.recreatePending = true
			e.pendingWidth, e.pendingHeight = ev.Width, ev.Height
		}
		e.state.Apply(ev)
	})
}

// update runs fixed steps on the active scenes. When the cap is hit the remaining time is dropped
// so rendering can catch up.
func (e *engine) update(dt time.Duration) (int, error) {
	e.accumulator += dt
	step := float32(e.updateStep.Seconds())
	updates := 0
	for e.accumulator >= e.updateStep {
		for _, s := range e.orderedScenes(true) {
			if err := s.Update(step, e.state); err != nil {
				return updates, fmt.Errorf("update scene %s: %w", s.Name(), err)
			}
		}
		e.state.EndUpdate()
		e.accumulator -= e.updateStep
		updates++
		if updates >= e.maxUpdates {
			e.accumulator = 0
			break
		}
	}
	return updates, nil
}

// recreate reconfigures the surface, destroys every sprite and lets the scenes rebuild theirs.
func (e *engine) recreate() error {
	e.recreatePending = false
	width := common.Coalesce(e.pendingWidth, e.renderer.Width())
	height := common.Coalesce(e.pendingHeight, e.renderer.Height())
	e.pendingWidth, e.pendingHeight = 0, 0

	e.renderer.WaitIdle()
	e.renderer.Resize(width, height)
	if err := e.pool.Clear(); err != nil {
		return err
	}
	for _, s := range e.orderedScenes(false) {
		if err := s.Recreate(); err != nil {
			return fmt.Errorf("scene %s: %w", s.Name(), err)
		}
	}
	e.logger.Info("swapchain recreated",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("sprites", e.pool.LiveCount()),
	)
	return nil
}

// render records and presents one frame. A surface that cannot be acquired skips the frame and
// schedules a recreation.
func (e *engine) render() error {
	frame, err := e.renderer.BeginFrame()
	if err != nil {
		if errors.Is(err, renderer.ErrFrameInProgress) {
			return err
		}
		e.logger.Warn("skipping frame", zap.Error(err))
		e.recreatePending = true
		return nil
	}

	if err := e.record(frame); err != nil {
		_ = e.renderer.EndFrame()
		e.renderer.Present()
		return err
	}
	if err := e.renderer.EndFrame(); err != nil {
		return fmt.Errorf("end frame: %w", err)
	}
	e.renderer.Present()
	return nil
}

func (e *engine) record(frame int) error {
	if err := e.pool.Tick(frame); err != nil {
		return fmt.Errorf("tick pool: %w", err)
	}
	for _, s := range e.orderedScenes(true) {
		if err := s.Draw(frame); err != nil {
			return fmt.Errorf("draw scene %s: %w", s.Name(), err)
		}
	}
	var drawErr error
	e.pool.ForEachLive(func(s sprite.Sprite) {
		if drawErr != nil {
			return
		}
		drawErr = e.renderer.DrawSprite(e.spritePipeline, s.DescriptorSet(frame))
	})
	if drawErr != nil {
		return fmt.Errorf("draw sprites: %w", drawErr)
	}
	return nil
}

func (e *engine) Run() error {
	if err := e.Init(); err != nil {
		return err
	}
	if e.window == nil {
		e.renderLoop()
		return e.firstError()
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.renderLoop()
		e.window.RequestClose()
	}()
	e.window.ProcessMessages()
	e.Quit()
	e.wg.Wait()
	return e.firstError()
}

// renderLoop steps frames until quit. Panics are recovered, logged and turned into the run error.
func (e *engine) renderLoop() {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("render goroutine recovered from panic", zap.Any("panic", r), zap.Stack("stack"))
			e.fail(fmt.Errorf("%w: %v", ErrRenderPanic, r))
		}
	}()

	last := e.now()
	for !e.quitting() {
		start := e.now()
		dt := start.Sub(last)
		last = start

		if err := e.Step(dt); err != nil {
			e.logger.Error("frame failed", zap.Uint64("frame", e.frames), zap.Error(err))
			e.fail(err)
			return
		}

		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - e.now().Sub(start); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
		if e.window != nil {
			e.window.RequestClose()
		}
	})
}

func (e *engine) quitting() bool {
	select {
	case <-e.quitChannel:
		return true
	default:
		return false
	}
}

func (e *engine) fail(err error) {
	e.errMu.Lock()
	if e.err == nil {
		e.err = err
	}
	e.errMu.Unlock()
	e.Quit()
}

func (e *engine) firstError() error {
	e.errMu.Lock()
	defer e.errMu.Unlock()
	return e.err
}

func (e *engine) Release() {
	if e.renderer != nil {
		e.renderer.WaitIdle()
	}
	for _, s := range e.orderedScenes(false) {
		s.Release()
	}
	if e.pool != nil {
		e.pool.Close()
	}
	if e.audio != nil {
		e.audio.Close()
	}
	if e.renderer != nil {
		e.renderer.Release()
	}
	if dropped := e.queue.Dropped(); dropped > 0 {
		e.logger.Warn("input events dropped", zap.Int64("count", dropped))
	}
}
