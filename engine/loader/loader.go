package loader

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-chess/common"
	"github.com/Carmen-Shannon/oxy-chess/engine/audio"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

const (
	// placeholderSize is the edge length of textures substituted for missing files.
	placeholderSize = 4
	// workerIdleTimeout is how long an idle decode worker lingers before exiting.
	workerIdleTimeout = time.Second
)

// placeholderColor is used when a texture has no valid fallback color.
var placeholderColor = color.RGBA{R: 255, G: 0, B: 255, A: 255}

// Loader turns a Manifest into GPU-ready textures and loaded sounds.
// Missing or broken assets never fail a load: textures are replaced by placeholders and sounds
// are skipped, each with a warning.
type Loader interface {
	// LoadTextures decodes every texture of the manifest in parallel, in manifest order.
	//
	// Parameters:
	//   - m: the manifest
	//
	// Returns:
	//   - []common.TextureStagingData: one texture per manifest entry
	//   - error: ErrEmptyManifest if m lists no textures
	LoadTextures(m *Manifest) ([]common.TextureStagingData, error)

	// LoadSounds loads every sound and music track of the manifest into engine.
	//
	// Parameters:
	//   - m: the manifest
	//   - engine: the audio engine receiving the sounds
	//
	// Returns:
	//   - int: the number of sounds and tracks loaded
	LoadSounds(m *Manifest, engine audio.Engine) int
}

type loader struct {
	logger         *zap.Logger
	backend        loaderBackend
	workers        int
	maxTextureSize int
}

var _ Loader = &loader{}

// NewLoader creates a Loader with 4 workers and a 2048 pixel texture limit.
//
// Parameters:
//   - options: functional options to configure the loader
//
// Returns:
//   - Loader: the configured loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		logger:         zap.NewNop(),
		backend:        fileLoaderBackend{},
		workers:        4,
		maxTextureSize: 2048,
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

func (l *loader) LoadTextures(m *Manifest) ([]common.TextureStagingData, error) {
	if m == nil || len(m.Textures) == 0 {
		return nil, ErrEmptyManifest
	}

	out := make([]common.TextureStagingData, len(m.Textures))
	pool := worker.NewDynamicWorkerPool(l.workers, len(m.Textures), workerIdleTimeout)

	var wg sync.WaitGroup
	for i, entry := range m.Textures {
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				out[i] = l.loadTexture(m, entry)
				return nil, nil
			},
		})
	}
	wg.Wait()

	l.logger.Info("textures loaded", zap.Int("count", len(out)), zap.Int("workers", l.workers))
	return out, nil
}

// loadTexture decodes one entry, falling back to a placeholder on any failure.
func (l *loader) loadTexture(m *Manifest, entry TextureEntry) common.TextureStagingData {
	src := common.TextureSource{Name: entry.Name, Path: m.Resolve(entry.Path)}
	img, err := l.backend.Decode(src)
	if err != nil {
		l.logger.Warn("texture unavailable, using placeholder",
			zap.String("texture", entry.Name),
			zap.String("path", src.Path),
			zap.Error(err),
		)
		return l.placeholder(entry)
	}

	if scaled, ok := downscale(img, l.maxTextureSize); ok {
		l.logger.Debug("downscaled texture",
			zap.String("texture", entry.Name),
			zap.Int("from", max(img.Bounds().Dx(), img.Bounds().Dy())),
			zap.Int("to", l.maxTextureSize),
		)
		img = scaled
	}
	return common.ImageToStaging(img)
}

func (l *loader) placeholder(entry TextureEntry) common.TextureStagingData {
	c := placeholderColor
	if entry.Fallback != "" {
		parsed, err := common.ParseHexColor(entry.Fallback)
		if err != nil {
			l.logger.Warn("invalid fallback color", zap.String("texture", entry.Name), zap.Error(err))
		} else {
			c = parsed
		}
	}
	return common.SolidTexture(c, placeholderSize)
}

// downscale shrinks img so neither edge exceeds limit, keeping the aspect ratio.
// It reports false when img already fits or limit is zero.
func downscale(img image.Image, limit int) (image.Image, bool) {
	b := img.Bounds()
	longest := max(b.Dx(), b.Dy())
	if limit <= 0 || longest <= limit {
		return img, false
	}
	scale := float64(limit) / float64(longest)
	w := max(1, int(math.Round(float64(b.Dx())*scale)))
	h := max(1, int(math.Round(float64(b.Dy())*scale)))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst, true
}

func (l *loader) LoadSounds(m *Manifest, engine audio.Engine) int {
	if m == nil || engine == nil {
		return 0
	}
	loaded := 0
	load := func(kind string, entry SoundEntry, fn func(name, path string) error) {
		path := m.Resolve(entry.Path)
		if err := fn(entry.Name, path); err != nil {
			l.logger.Warn(fmt.Sprintf("%s unavailable, skipping", kind),
				zap.String("name", entry.Name),
				zap.String("path", path),
				zap.Error(err),
			)
			return
		}
		loaded++
	}
	for _, s := range m.Sounds {
		load("sound", s, engine.LoadSound)
	}
	for _, s := range m.Music {
		load("music", s, engine.LoadMusic)
	}
	l.logger.Info("sounds loaded", zap.Int("count", loaded), zap.Int("listed", len(m.Sounds)+len(m.Music)))
	return loaded
}
