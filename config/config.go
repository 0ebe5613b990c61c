package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Window   WindowConfig   `toml:"window"`
	Cursor   CursorConfig   `toml:"cursor"`
	Shaders  ShaderConfig   `toml:"shaders"`
	Renderer RendererConfig `toml:"renderer"`
	Engine   EngineConfig   `toml:"engine"`
	Assets   AssetConfig    `toml:"assets"`
	Audio    AudioConfig    `toml:"audio"`
	Fractal  FractalConfig  `toml:"fractal"`
	Logging  LoggingConfig  `toml:"logging"`
}

type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

type CursorConfig struct {
	Size float32 `toml:"size"` // in pixels of an 800px board
}

type ShaderConfig struct {
	VertexPath   string `toml:"vertex_path"`   // empty = embedded WGSL
	FragmentPath string `toml:"fragment_path"` // empty = embedded WGSL
	FractalPath  string `toml:"fractal_path"`  // raymarch fragment stage, empty = embedded WGSL
}

type RendererConfig struct {
	FramesInFlight int    `toml:"frames_in_flight"`
	MaxSprites     int    `toml:"max_sprites"`
	MaxTextures    int    `toml:"max_textures"`
	PresentMode    string `toml:"present_mode"` // "vsync" or "uncapped"
	ForceSoftware  bool   `toml:"force_software"`
}

type EngineConfig struct {
	UpdateRate         int  `toml:"update_rate"` // fixed updates per second
	MaxUpdatesPerFrame int  `toml:"max_updates_per_frame"`
	FrameLimit         int  `toml:"frame_limit"` // 0 = unlimited
	Profiling          bool `toml:"profiling"`
}

type AssetConfig struct {
	Manifest       string `toml:"manifest"`
	Workers        int    `toml:"workers"`
	MaxTextureSize int    `toml:"max_texture_size"`
}

type AudioConfig struct {
	Enabled     bool    `toml:"enabled"`
	MusicVolume float64 `toml:"music_volume"` // 0-100
	SoundVolume float64 `toml:"sound_volume"` // 0-100
}

type FractalConfig struct {
	Steps      int     `toml:"steps"`      // maximum raymarch steps per pixel
	Iterations int     `toml:"iterations"` // starting fractal iteration count
	MoveSpeed  float32 `toml:"move_speed"` // camera units per second
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path, falling back to the built-in defaults when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaults()
}

func (c *Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	case c.Renderer.FramesInFlight < 1:
		return fmt.Errorf("frames_in_flight must be at least 1, got %d", c.Renderer.FramesInFlight)
	case c.Renderer.MaxSprites < 1:
		return fmt.Errorf("max_sprites must be at least 1, got %d", c.Renderer.MaxSprites)
	case c.Renderer.MaxTextures < 1:
		return fmt.Errorf("max_textures must be at least 1, got %d", c.Renderer.MaxTextures)
	case c.Engine.UpdateRate < 1:
		return fmt.Errorf("update_rate must be at least 1, got %d", c.Engine.UpdateRate)
	case c.Engine.MaxUpdatesPerFrame < 1:
		return fmt.Errorf("max_updates_per_frame must be at least 1, got %d", c.Engine.MaxUpdatesPerFrame)
	case c.Fractal.Steps < 1:
		return fmt.Errorf("fractal steps must be at least 1, got %d", c.Fractal.Steps)
	case c.Fractal.Iterations < 1:
		return fmt.Errorf("fractal iterations must be at least 1, got %d", c.Fractal.Iterations)
	case c.Renderer.PresentMode != "vsync" && c.Renderer.PresentMode != "uncapped":
		return fmt.Errorf("present_mode must be \"vsync\" or \"uncapped\", got %q", c.Renderer.PresentMode)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "oxy-chess",
			Width:  800,
			Height: 800,
		},
		Cursor: CursorConfig{
			Size: 20,
		},
		Renderer: RendererConfig{
			FramesInFlight: 2,
			MaxSprites:     512,
			MaxTextures:    64,
			PresentMode:    "vsync",
		},
		Engine: EngineConfig{
			UpdateRate:         100,
			MaxUpdatesPerFrame: 5,
		},
		Assets: AssetConfig{
			Manifest:       "assets/manifest.yaml",
			Workers:        4,
			MaxTextureSize: 2048,
		},
		Audio: AudioConfig{
			Enabled:     true,
			MusicVolume: 10,
			SoundVolume: 100,
		},
		Fractal: FractalConfig{
			Steps:      128,
			Iterations: 8,
			MoveSpeed:  1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
