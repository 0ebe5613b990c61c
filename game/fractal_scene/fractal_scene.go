package fractal_scene

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-chess/common"
	"github.com/Carmen-Shannon/oxy-chess/engine/camera"
	"github.com/Carmen-Shannon/oxy-chess/engine/input"
	"github.com/Carmen-Shannon/oxy-chess/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-chess/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-chess/engine/scene"
	"go.uber.org/zap"
)

// Fractal selects the distance estimator the raymarch shader uses.
type Fractal uint32

const (
	Mandelbulb Fractal = iota
	MengerSponge
	SphereLattice

	fractalCount
)

func (f Fractal) String() string {
	switch f {
	case Mandelbulb:
		return "mandelbulb"
	case MengerSponge:
		return "menger sponge"
	case SphereLattice:
		return "sphere lattice"
	}
	return fmt.Sprintf("fractal(%d)", uint32(f))
}

const (
	minIterations = 1
	maxIterations = 64
)

// ErrNoRenderer is returned by Init when the scene context carries no renderer.
var ErrNoRenderer = errors.New("fractal scene needs a renderer")

// FractalScene raymarches a fractal over the whole surface from a movable camera.
//
// Arrow keys pan, A and D move along the view axis, the scroll wheel zooms, K and P lower and
// raise the iteration count and S cycles through the fractals.
type FractalScene interface {
	scene.Scene

	// Camera returns the raymarch camera.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Fractal returns the fractal being drawn.
	//
	// Returns:
	//   - Fractal: the current fractal
	Fractal() Fractal

	// Iterations returns the fractal iteration count.
	//
	// Returns:
	//   - int: iterations in [1, 64]
	Iterations() int

	// Uniform returns the uniform the next Draw uploads.
	//
	// Returns:
	//   - camera.GPURaymarchUniform: the raymarch parameters
	Uniform() camera.GPURaymarchUniform
}

type fractalScene struct {
	*scene.Base

	pipelineKey  string
	fragmentPath string

	cam        camera.Camera
	controller camera.CameraController

	steps      int
	iterations int
	fractal    Fractal
	time       float32

	stepsSet      bool
	iterationsSet bool
	speedSet      bool
	bound         bool
}

var _ FractalScene = &fractalScene{}

// NewFractalScene creates a fractal scene looking down +z at the origin from z = -3.
//
// Parameters:
//   - options: functional options to configure the scene
//
// Returns:
//   - FractalScene: the new scene, built on Init
func NewFractalScene(options ...FractalSceneBuilderOption) FractalScene {
	s := &fractalScene{
		Base:        scene.NewBase(scene.WithName("fractal")),
		pipelineKey: "fractal",
		cam:         camera.NewCamera(camera.WithPosition(0, 0, -3)),
		controller:  camera.NewCameraController(),
		steps:       128,
		iterations:  8,
	}
	for _, opt := range options {
		opt(s)
	}
	s.iterations = common.Clamp(s.iterations, minIterations, maxIterations)
	return s
}

func (s *fractalScene) Camera() camera.Camera {
	return s.cam
}

func (s *fractalScene) Fractal() Fractal {
	return s.fractal
}

func (s *fractalScene) Iterations() int {
	return s.iterations
}

func (s *fractalScene) Init(ctx scene.Context) error {
	if ctx.Renderer == nil {
		return ErrNoRenderer
	}
	if err := s.Base.Init(ctx); err != nil {
		return err
	}
	if cfg := ctx.Config; cfg != nil {
		if !s.stepsSet {
			s.steps = cfg.Fractal.Steps
		}
		if !s.iterationsSet {
			s.iterations = common.Clamp(cfg.Fractal.Iterations, minIterations, maxIterations)
		}
		if !s.speedSet && cfg.Fractal.MoveSpeed > 0 {
			s.controller.SetMoveSpeed(cfg.Fractal.MoveSpeed)
		}
		if s.fragmentPath == "" {
			s.fragmentPath = cfg.Shaders.FractalPath
		}
	}

	p, err := NewFractalPipeline(s.pipelineKey, s.fragmentPath)
	if err != nil {
		return err
	}
	if err := ctx.Renderer.RegisterPipelines(p); err != nil {
		return err
	}

	layouts := p.Shader(shader.ShaderTypeFragment).BindGroupLayoutDescriptors()
	descriptor, ok := layouts[s.cam.BindGroupProvider().Group()]
	if !ok {
		return fmt.Errorf("fractal shader declares no group %d", s.cam.BindGroupProvider().Group())
	}
	u := s.Uniform()
	if err := ctx.Renderer.InitBindGroup(s.cam.BindGroupProvider(), descriptor, map[int]uint64{0: uint64(u.Size())}); err != nil {
		return fmt.Errorf("fractal uniform: %w", err)
	}
	s.bound = true

	s.Logger().Info("fractal scene ready",
		zap.Stringer("fractal", s.fractal),
		zap.Int("steps", s.steps),
		zap.Int("iterations", s.iterations),
	)
	return nil
}

func (s *fractalScene) Update(dt float32, state *input.State) error {
	if !s.bound {
		return scene.ErrNotInitialized
	}
	s.time += dt
	if state == nil {
		return nil
	}
	s.controller.Update(s.cam, state, dt)

	iterations := s.iterations
	if state.Pressed(common.KeyK) {
		iterations--
	}
	if state.Pressed(common.KeyP) {
		iterations++
	}
	if iterations = common.Clamp(iterations, minIterations, maxIterations); iterations != s.iterations {
		s.iterations = iterations
		s.Logger().Debug("iterations changed", zap.Int("iterations", iterations))
	}
	if state.Pressed(common.KeyS) {
		s.fractal = (s.fractal + 1) % fractalCount
		s.Logger().Info("fractal changed", zap.Stringer("fractal", s.fractal))
	}
	return nil
}

func (s *fractalScene) Uniform() camera.GPURaymarchUniform {
	width, height := 0, 0
	if r := s.Context().Renderer; r != nil {
		width, height = r.Width(), r.Height()
	}
	return s.cam.Uniform(width, height, s.time, float32(s.steps), float32(s.iterations), uint32(s.fractal))
}

func (s *fractalScene) Draw(frameIndex int) error {
	if !s.bound {
		return scene.ErrNotInitialized
	}
	r := s.Context().Renderer
	u := s.Uniform()
	provider := s.cam.BindGroupProvider()
	r.WriteBuffers([]bind_group_provider.BufferWrite{{
		Provider: provider,
		Binding:  0,
		Data:     u.Marshal(),
	}})
	return r.DrawFullscreen(s.pipelineKey, []bind_group_provider.BindGroupProvider{provider})
}

func (s *fractalScene) Release() {
	if s.bound {
		s.cam.BindGroupProvider().Release()
		s.bound = false
	}
	s.Base.Release()
}
