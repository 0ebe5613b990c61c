package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-chess/common"
	"github.com/Carmen-Shannon/oxy-chess/config"
	"github.com/Carmen-Shannon/oxy-chess/engine"
	"github.com/Carmen-Shannon/oxy-chess/engine/audio"
	"github.com/Carmen-Shannon/oxy-chess/engine/loader"
	"github.com/Carmen-Shannon/oxy-chess/engine/renderer"
	"github.com/Carmen-Shannon/oxy-chess/engine/scene"
	"github.com/Carmen-Shannon/oxy-chess/engine/sprite"
	"github.com/Carmen-Shannon/oxy-chess/engine/window"
	"github.com/Carmen-Shannon/oxy-chess/game/chess"
	"github.com/Carmen-Shannon/oxy-chess/game/chess_scene"
	"github.com/Carmen-Shannon/oxy-chess/game/fractal_scene"
	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// headlessFrames is the frame limit of a headless run without --frames.
const headlessFrames = 120

func main() {
	app := cli.NewApp()
	app.Name = "oxy-chess"
	app.Usage = "chess against a random AI, or a fractal raymarcher, on WebGPU"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "Path to the TOML configuration",
			Value: "config.toml",
		},
		cli.StringFlag{
			Name:  "scene",
			Usage: "Scene to run: chess or fractal",
			Value: "chess",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Render without a window or GPU",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: fmt.Sprintf("Stop after N frames (0 = config value, %d when headless)", headlessFrames),
		},
		cli.Int64Flag{
			Name:  "seed",
			Usage: "Seed of the chess AI (0 = random)",
		},
		cli.BoolFlag{
			Name:  "autoplay",
			Usage: "Let the AI play both sides",
		},
		cli.StringFlag{
			Name:  "color",
			Usage: "Side the mouse plays: white or black",
			Value: "white",
		},
		cli.StringFlag{
			Name:  "manifest",
			Usage: "Asset manifest, overrides [assets] manifest",
		},
		cli.BoolFlag{
			Name:  "mute",
			Usage: "Disable audio output",
		},
		cli.BoolFlag{
			Name:  "profile",
			Usage: "Log frame statistics once per second",
		},
		cli.BoolFlag{
			Name:  "uncapped",
			Usage: "Present without vsync",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level, overrides [logging] level",
		},
		cli.StringFlag{
			Name:  "log-format",
			Usage: "Log format, console or json",
		},
	}
	app.Action = run

	// the action logs its own failures; this covers flag parsing and logger setup
	if err := app.Run(os.Args); err != nil {
		logger, _ := zap.NewProduction()
		logger.Fatal("oxy-chess failed", zap.Error(err))
	}
}

func run(c *cli.Context) error {
	cfg, err := config.LoadOrDefault(c.String("config"))
	if err != nil {
		return err
	}
	applyFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	if err := runGame(c, cfg, logger); err != nil {
		logger.Error("game stopped", zap.Error(err))
		return err
	}
	return nil
}

// applyFlags copies command line overrides into cfg.
func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.Bool("headless") {
		cfg.Engine.FrameLimit = common.Coalesce(c.Int("frames"), cfg.Engine.FrameLimit, headlessFrames)
		cfg.Audio.Enabled = false
	} else if n := c.Int("frames"); n > 0 {
		cfg.Engine.FrameLimit = n
	}
	if c.Bool("mute") {
		cfg.Audio.Enabled = false
	}
	if c.Bool("profile") {
		cfg.Engine.Profiling = true
	}
	if c.Bool("uncapped") {
		cfg.Renderer.PresentMode = "uncapped"
	}
	cfg.Assets.Manifest = common.Coalesce(c.String("manifest"), cfg.Assets.Manifest)
	cfg.Logging.Level = common.Coalesce(c.String("log-level"), cfg.Logging.Level)
	cfg.Logging.Format = common.Coalesce(c.String("log-format"), cfg.Logging.Format)
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

func runGame(c *cli.Context, cfg *config.Config, logger *zap.Logger) error {
	headless := c.Bool("headless")
	sceneName := strings.ToLower(c.String("scene"))
	if sceneName != "chess" && sceneName != "fractal" {
		return fmt.Errorf("unknown scene %q, want chess or fractal", sceneName)
	}

	rendererOpts := []renderer.RendererBuilderOption{
		renderer.WithFramesInFlight(cfg.Renderer.FramesInFlight),
		renderer.WithMaxTextures(cfg.Renderer.MaxTextures),
		renderer.WithPresentMode(renderer.ParsePresentMode(cfg.Renderer.PresentMode)),
		renderer.WithForceSoftwareRenderer(cfg.Renderer.ForceSoftware),
		renderer.WithLogger(logger.Named("renderer")),
	}
	var win window.Window
	var r renderer.Renderer
	if headless {
		r = renderer.NewRenderer(renderer.BackendTypeHeadless, nil,
			append(rendererOpts, renderer.WithSize(cfg.Window.Width, cfg.Window.Height))...)
	} else {
		cursor := window.CursorNormal
		if sceneName == "chess" {
			cursor = window.CursorHidden
		}
		win = window.NewWindow(
			window.WithTitle(cfg.Window.Title),
			window.WithWidth(cfg.Window.Width),
			window.WithHeight(cfg.Window.Height),
			window.WithCursorMode(cursor),
		)
		r = renderer.NewRenderer(renderer.BackendTypeWGPU, win, rendererOpts...)
	}

	manifest, err := loader.LoadManifest(cfg.Assets.Manifest)
	if err != nil {
		r.Release()
		return err
	}
	ld := loader.NewLoader(
		loader.WithWorkers(cfg.Assets.Workers),
		loader.WithMaxTextureSize(cfg.Assets.MaxTextureSize),
		loader.WithLogger(logger.Named("loader")),
	)
	textures, err := ld.LoadTextures(manifest)
	if err != nil {
		r.Release()
		return err
	}
	if sceneName == "chess" && len(textures) < chess_scene.TextureCount {
		r.Release()
		return fmt.Errorf("chess needs %d textures, manifest %s lists %d", chess_scene.TextureCount, cfg.Assets.Manifest, len(textures))
	}
	if err := r.UploadTextures(textures, common.SamplerStagingData{}); err != nil {
		r.Release()
		return err
	}

	sound := audio.NewEngine(
		audio.WithEnabled(cfg.Audio.Enabled),
		audio.WithMusicVolume(cfg.Audio.MusicVolume),
		audio.WithSoundVolume(cfg.Audio.SoundVolume),
		audio.WithLogger(logger.Named("audio")),
	)
	ld.LoadSounds(manifest, sound)

	pool, err := sprite.NewPool(r,
		sprite.WithCapacity(cfg.Renderer.MaxSprites),
		sprite.WithLogger(logger.Named("pool")),
	)
	if err != nil {
		sound.Close()
		r.Release()
		return err
	}

	s, err := newScene(c, sceneName)
	if err != nil {
		pool.Close()
		sound.Close()
		r.Release()
		return err
	}

	e := engine.NewEngine(
		engine.WithLogger(logger),
		engine.WithConfig(cfg),
		engine.WithWindow(win),
		engine.WithRenderer(r),
		engine.WithPool(pool),
		engine.WithAudio(sound),
		engine.WithUpdateRate(float64(cfg.Engine.UpdateRate)),
		engine.WithMaxUpdatesPerFrame(cfg.Engine.MaxUpdatesPerFrame),
		engine.WithFrameLimit(uint64(cfg.Engine.FrameLimit)),
		engine.WithProfiling(cfg.Engine.Profiling),
		engine.WithScene(0, s),
	)
	defer e.Release()

	logger.Info("starting",
		zap.String("scene", sceneName),
		zap.Bool("headless", headless),
		zap.Int("textures", len(textures)),
		zap.Int("max_sprites", cfg.Renderer.MaxSprites),
	)
	if err := e.Run(); err != nil {
		return err
	}
	logger.Info("stopped", zap.Uint64("frames", e.Frames()))
	return nil
}

func newScene(c *cli.Context, name string) (scene.Scene, error) {
	if name == "fractal" {
		return fractal_scene.NewFractalScene(), nil
	}

	var human chess.Color
	switch strings.ToLower(c.String("color")) {
	case "white":
		human = chess.White
	case "black":
		human = chess.Black
	default:
		return nil, errors.New("--color must be white or black")
	}
	opts := []chess_scene.ChessSceneBuilderOption{
		chess_scene.WithHumanColor(human),
		chess_scene.WithAutoplay(c.Bool("autoplay")),
	}
	if seed := c.Int64("seed"); seed != 0 {
		opts = append(opts, chess_scene.WithSeed(seed))
	}
	if c.Bool("autoplay") {
		opts = append(opts, chess_scene.WithAIDelay(0.25))
	}
	return chess_scene.NewChessScene(opts...), nil
}
